package enc28j60

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-enc28j60/protocol"
)

// txState is the transmit pipeline state.
type txState uint8

const (
	txIdle txState = iota
	txStaged
	txSending
	txDone
	txFailed
)

func (s txState) String() string {
	switch s {
	case txIdle:
		return "idle"
	case txStaged:
		return "staged"
	case txSending:
		return "sending"
	case txDone:
		return "done"
	case txFailed:
		return "failed"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(s))
	}
}

// txCanTransition reports whether the transmit state machine allows the
// given transition.
func txCanTransition(from, to txState) bool {
	switch from {
	case txIdle:
		return to == txStaged
	case txStaged:
		return to == txSending || to == txIdle
	case txSending:
		return to == txDone || to == txFailed
	case txDone, txFailed:
		return to == txIdle
	default:
		return false
	}
}

func (d *Driver) txEnter(to txState) {
	if !txCanTransition(d.tx, to) {
		panic(fmt.Sprintf("enc28j60: invalid transmit transition %s -> %s", d.tx, to))
	}
	d.tx = to
}

// Send stages frame in the transmit window and transmits it, blocking until
// the hardware reports completion. The wait is bounded by the configured
// transmit timeout and by ctx; on expiry the transmit logic is reset and a
// *TransmitTimeoutError is returned.
//
// frame must be a complete Ethernet frame without the trailing CRC; the
// hardware appends the CRC and pads short frames. An aborted transmission
// returns a *TransmitError classifying the cause; nothing is retried
// automatically.
func (d *Driver) Send(ctx context.Context, frame []byte) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if len(frame) == 0 {
		return fmt.Errorf("frame cannot be empty")
	}
	if len(frame) > protocol.MaxFrameLength-protocol.CRCLength {
		return fmt.Errorf("frame length %d exceeds maximum %d bytes",
			len(frame), protocol.MaxFrameLength-protocol.CRCLength)
	}

	txStart := d.buf.txStart()

	d.txEnter(txStaged)
	if err := d.stage(txStart, frame); err != nil {
		d.tx = txIdle
		return err
	}

	// Acknowledge any previous completion and request transmission. The
	// hardware refuses a new request while the done flag is pending.
	if err := d.regs.clearBits(protocol.EIR, protocol.EIR_TXIF|protocol.EIR_TXERIF); err != nil {
		d.tx = txIdle
		return err
	}
	if err := d.regs.setBits(protocol.ECON1, protocol.ECON1_TXRTS); err != nil {
		d.tx = txIdle
		return err
	}
	d.txEnter(txSending)

	if err := d.waitTransmit(ctx); err != nil {
		d.txEnter(txFailed)
		d.tx = txIdle
		return err
	}

	tsv, estat, err := d.collectStatus(txStart, len(frame))
	if err != nil {
		d.txEnter(txFailed)
		d.tx = txIdle
		return err
	}

	if estat&protocol.ESTAT_TXABRT != 0 {
		// Acknowledge the abort so the next request is accepted.
		if err := d.regs.clearBits(protocol.ESTAT, protocol.ESTAT_TXABRT); err != nil {
			d.tx = txIdle
			return err
		}
		d.txEnter(txFailed)
		d.tx = txIdle

		cause := transmitCause(tsv)
		d.stats.TxAborts++
		d.logError("transmit aborted", "cause", cause.String(), "collisions", tsv.CollisionCount)
		d.emit(Event{Type: EventTxAborted, Detail: cause.String()})
		return &TransmitError{Cause: cause, Status: tsv}
	}

	d.txEnter(txDone)
	d.tx = txIdle

	d.stats.FramesSent++
	d.stats.TxCollisions += uint64(tsv.CollisionCount)
	d.logDebug("frame sent", "len", len(frame), "collisions", tsv.CollisionCount)
	return nil
}

// stage writes the per-packet control byte and the frame into the transmit
// window and brackets it with the transmit start/end pointers.
func (d *Driver) stage(txStart uint16, frame []byte) error {
	if err := d.regs.writePair(protocol.EWRPTL, protocol.EWRPTH, txStart); err != nil {
		return err
	}

	// Control byte 0x00: use the MACON3 defaults for padding and CRC.
	staged := make([]byte, 0, len(frame)+protocol.ControlByteLength)
	staged = append(staged, 0x00)
	staged = append(staged, frame...)
	if err := d.dev.WriteBufferMemory(staged); err != nil {
		return err
	}

	if err := d.regs.writePair(protocol.ETXSTL, protocol.ETXSTH, txStart); err != nil {
		return err
	}
	txEnd := txStart + uint16(len(staged)) - 1
	return d.regs.writePair(protocol.ETXNDL, protocol.ETXNDH, txEnd)
}

// waitTransmit polls for request-to-send to clear, bounded by the transmit
// timeout and ctx. On timeout the transmit logic is reset (TXRTS can stay
// stuck after certain aborts on early silicon) before reporting the error.
func (d *Driver) waitTransmit(ctx context.Context) error {
	deadline := time.Now().Add(d.cfg.TransmitTimeout)
	for {
		econ1, err := d.regs.read(protocol.ECON1)
		if err != nil {
			return err
		}
		if econ1&protocol.ECON1_TXRTS == 0 {
			return nil
		}

		if err := ctx.Err(); err != nil {
			d.resetTransmitLogic()
			return fmt.Errorf("transmit cancelled: %w", err)
		}
		if time.Now().After(deadline) {
			d.resetTransmitLogic()
			return &TransmitTimeoutError{Timeout: d.cfg.TransmitTimeout}
		}
		time.Sleep(d.cfg.PollInterval)
	}
}

func (d *Driver) resetTransmitLogic() {
	// Best effort: the caller already has an error to report.
	_ = d.regs.setBits(protocol.ECON1, protocol.ECON1_TXRST)
	_ = d.regs.clearBits(protocol.ECON1, protocol.ECON1_TXRST)
	_ = d.regs.clearBits(protocol.ECON1, protocol.ECON1_TXRTS)
}

// collectStatus reads the transmit status vector the hardware wrote behind
// the frame, plus ESTAT for the abort flag.
func (d *Driver) collectStatus(txStart uint16, frameLen int) (protocol.TransmitStatusVector, byte, error) {
	statusAddr := txStart + uint16(frameLen) + protocol.ControlByteLength

	if err := d.regs.writePair(protocol.ERDPTL, protocol.ERDPTH, statusAddr); err != nil {
		return protocol.TransmitStatusVector{}, 0, err
	}
	var raw [protocol.TransmitStatusLength]byte
	if err := d.dev.ReadBufferMemory(raw[:]); err != nil {
		return protocol.TransmitStatusVector{}, 0, err
	}
	tsv, err := protocol.ParseTransmitStatusVector(raw[:])
	if err != nil {
		return protocol.TransmitStatusVector{}, 0, err
	}

	estat, err := d.regs.read(protocol.ESTAT)
	if err != nil {
		return protocol.TransmitStatusVector{}, 0, err
	}
	return tsv, estat, nil
}
