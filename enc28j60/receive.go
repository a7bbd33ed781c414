package enc28j60

import (
	"fmt"

	"github.com/moffa90/go-enc28j60/protocol"
)

// rxState is the receive pipeline state. One Receive call walks a frame
// through the full cycle; errors mid-frame drop back to rxIdle after the
// ring has been made consistent.
type rxState uint8

const (
	rxIdle rxState = iota
	rxHeaderRead
	rxPayloadRead
	rxPointerAdvance
)

func (s rxState) String() string {
	switch s {
	case rxIdle:
		return "idle"
	case rxHeaderRead:
		return "header-read"
	case rxPayloadRead:
		return "payload-read"
	case rxPointerAdvance:
		return "pointer-advance"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(s))
	}
}

// rxCanTransition reports whether the receive state machine allows the
// given transition. Any state may abort back to idle.
func rxCanTransition(from, to rxState) bool {
	if to == rxIdle {
		return true
	}
	switch from {
	case rxIdle:
		return to == rxHeaderRead
	case rxHeaderRead:
		return to == rxPayloadRead
	case rxPayloadRead:
		return to == rxPointerAdvance
	default:
		return false
	}
}

func (d *Driver) rxEnter(to rxState) {
	if !rxCanTransition(d.rx, to) {
		// A skipped state means a bug in the pipeline itself, not a
		// hardware condition.
		panic(fmt.Sprintf("enc28j60: invalid receive transition %s -> %s", d.rx, to))
	}
	d.rx = to
}

// Receive drains one completed frame from the receive ring. It never
// blocks: when no frame is pending it returns (nil, nil).
//
// A damaged frame is skipped, the ring stays consistent, and the call
// returns a *FrameError; the next call delivers the next frame. A receive
// ring overflow triggers the mandatory recovery sequence internally and is
// reported through the event callback, not as an error.
func (d *Driver) Receive() (*Frame, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}

	// Overflow leaves the receiver stalled until the recovery sequence
	// runs, so it is checked before looking for pending frames.
	eir, err := d.regs.read(protocol.EIR)
	if err != nil {
		return nil, err
	}
	if eir&protocol.EIR_RXERIF != 0 {
		if err := d.recoverOverrun(); err != nil {
			return nil, err
		}
	}

	count, err := d.regs.read(protocol.EPKTCNT)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	d.rxEnter(rxHeaderRead)
	defer func() { d.rx = rxIdle }()

	// The frame header sits at the tracked next-packet address. Position
	// the read pointer explicitly: transmit status reads move ERDPT.
	if err := d.regs.writePair(protocol.ERDPTL, protocol.ERDPTH, d.buf.nextPacket); err != nil {
		return nil, err
	}

	var header [protocol.ReceiveHeaderLength]byte
	if err := d.dev.ReadBufferMemory(header[:]); err != nil {
		return nil, err
	}
	next, rsv, err := protocol.ParseReceiveHeader(header[:])
	if err != nil {
		return nil, err
	}

	// A next-packet pointer outside the ring, or on an odd address, means
	// hardware and software disagree about the ring layout. The only safe
	// exit is the same sequence that recovers from an overrun.
	if !d.buf.contains(next) || next%2 != 0 {
		d.logError("receive pointer desync", "next", next, "ring_end", d.buf.rxEnd)
		d.emit(Event{Type: EventRxDesync, Detail: fmt.Sprintf("next-packet pointer 0x%04X outside ring", next)})
		d.stats.FramesDropped++
		if err := d.recoverOverrun(); err != nil {
			return nil, err
		}
		return nil, &FrameError{Reason: ReasonDesync, Length: int(rsv.ByteCount), Status: rsv}
	}

	if !rsv.ReceivedOK || int(rsv.ByteCount) > protocol.MaxFrameLength+protocol.CRCLength {
		reason := ReasonCorrupt
		if rsv.ReceivedOK {
			reason = ReasonOversize
		}
		// The payload still has to be walked past so the ring and the
		// pending counter stay in step with the hardware.
		if err := d.skipFrame(rsv, next); err != nil {
			return nil, err
		}
		d.stats.FramesDropped++
		if rsv.CRCError {
			d.stats.CRCErrors++
		}
		d.logDebug("dropped frame", "reason", reason.String(), "len", rsv.ByteCount)
		d.emit(Event{Type: EventFrameDropped, Detail: reason.String()})
		return nil, &FrameError{Reason: reason, Length: int(rsv.ByteCount), Status: rsv}
	}

	d.rxEnter(rxPayloadRead)

	payload := make([]byte, rsv.PayloadLength())
	if err := d.dev.ReadBufferMemory(payload); err != nil {
		return nil, err
	}

	d.rxEnter(rxPointerAdvance)

	if err := d.finishFrame(next); err != nil {
		return nil, err
	}

	d.stats.FramesReceived++
	return &Frame{Data: payload, Status: rsv}, nil
}

// skipFrame discards a damaged frame's payload in chunks, then advances the
// ring past it exactly as a successful read would.
func (d *Driver) skipFrame(rsv protocol.ReceiveStatusVector, next uint16) error {
	remaining := rsv.PayloadLength()
	if remaining > d.buf.ringSize() {
		// The byte count itself is suspect; the pointer advance alone
		// repositions the ring.
		remaining = 0
	}

	var scratch [64]byte
	for remaining > 0 {
		n := remaining
		if n > len(scratch) {
			n = len(scratch)
		}
		if err := d.dev.ReadBufferMemory(scratch[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return d.finishFrame(next)
}

// finishFrame advances the ring read pointer to the next frame header and
// acknowledges one frame to the hardware. The PKTDEC strobe is mandatory:
// it keeps the pending counter in step with the count sampled at the top of
// Receive.
func (d *Driver) finishFrame(next uint16) error {
	if err := d.buf.advanceReadPointer(next); err != nil {
		return err
	}
	return d.regs.setBits(protocol.ECON2, protocol.ECON2_PKTDEC)
}

// recoverOverrun runs the mandatory receive overflow recovery sequence:
// disable reception, reset the receive logic and read pointers, clear the
// overflow flag, re-enable reception. The controller does not self-recover;
// skipping any step leaves reception permanently stalled.
func (d *Driver) recoverOverrun() error {
	d.logInfo("receive overrun, running recovery sequence")

	if err := d.regs.clearBits(protocol.ECON1, protocol.ECON1_RXEN); err != nil {
		return err
	}
	if err := d.regs.setBits(protocol.ECON1, protocol.ECON1_RXRST); err != nil {
		return err
	}
	if err := d.regs.clearBits(protocol.ECON1, protocol.ECON1_RXRST); err != nil {
		return err
	}
	if err := d.buf.resetReadPointer(); err != nil {
		return err
	}
	if err := d.regs.clearBits(protocol.EIR, protocol.EIR_RXERIF); err != nil {
		return err
	}
	if err := d.regs.setBits(protocol.ECON1, protocol.ECON1_RXEN); err != nil {
		return err
	}

	d.stats.RxOverruns++
	d.emit(Event{Type: EventRxOverrun, Detail: "receive ring reset, pending frames lost"})
	return nil
}
