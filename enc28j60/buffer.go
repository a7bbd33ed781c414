package enc28j60

import "github.com/moffa90/go-enc28j60/protocol"

// minReceiveSize is the smallest accepted receive ring. Below this even a
// single minimum frame plus header cannot fit.
const minReceiveSize = 64

// txWindowSize is the packet memory the transmit window must retain: the
// per-packet control byte, one maximum-length frame, and the transmit
// status vector the hardware writes behind it.
const txWindowSize = protocol.ControlByteLength + protocol.MaxFrameLength + protocol.TransmitStatusLength

// bufferManager owns the receive ring boundary registers and the pointer
// bookkeeping for the 8 KB packet memory. The ring occupies [rxStart,
// rxEnd] inclusive; the transmit window is the complement above it.
//
// The receive ring is pinned at address 0: per silicon errata, receive
// buffers not starting at 0 corrupt the write pointer.
type bufferManager struct {
	regs *regFile

	rxStart uint16
	rxEnd   uint16

	// nextPacket tracks the address of the next unread frame header in
	// the ring: where the next Receive must position the read pointer.
	nextPacket uint16
}

func newBufferManager(regs *regFile) *bufferManager {
	return &bufferManager{regs: regs}
}

// configure validates the ring size, programs the boundary registers and
// parks the read pointers at the ring start.
func (b *bufferManager) configure(size uint16) error {
	if size < minReceiveSize {
		return &ConfigError{Size: size, Reason: "below minimum ring size"}
	}
	if size%2 != 0 {
		return &ConfigError{Size: size, Reason: "ring size must be even"}
	}
	if int(size) > protocol.MemorySize-txWindowSize {
		return &ConfigError{Size: size, Reason: "transmit window cannot hold a maximum-length frame"}
	}

	b.rxStart = 0
	b.rxEnd = size - 1
	b.nextPacket = b.rxStart

	if err := b.regs.writePair(protocol.ERXSTL, protocol.ERXSTH, b.rxStart); err != nil {
		return err
	}
	if err := b.regs.writePair(protocol.ERXNDL, protocol.ERXNDH, b.rxEnd); err != nil {
		return err
	}
	// ERXRDPT tracks the consumed boundary; parked at start until the
	// first frame is drained.
	if err := b.regs.writePair(protocol.ERXRDPTL, protocol.ERXRDPTH, b.rxStart); err != nil {
		return err
	}
	return b.regs.writePair(protocol.ERDPTL, protocol.ERDPTH, b.rxStart)
}

// contains reports whether addr lies inside the receive ring.
func (b *bufferManager) contains(addr uint16) bool {
	return addr >= b.rxStart && addr <= b.rxEnd
}

// advanceReadPointer frees the ring up to next, the next-packet pointer
// taken from the just-consumed frame header. ERXRDPT must never be
// programmed with the ring start itself: the hardware treats ERXRDPT as
// exclusive, so the freed boundary is the byte before next, wrapping to
// rxEnd when next sits at the ring start. Keeping ERXRDPT odd this way also
// sidesteps the even-value pointer corruption erratum.
func (b *bufferManager) advanceReadPointer(next uint16) error {
	var rdpt uint16
	if next == b.rxStart {
		rdpt = b.rxEnd
	} else {
		rdpt = next - 1
	}

	if err := b.regs.writePair(protocol.ERXRDPTL, protocol.ERXRDPTH, rdpt); err != nil {
		return err
	}
	b.nextPacket = next
	return nil
}

// resetReadPointer rewinds all software and hardware read state to the ring
// start. Part of the overrun recovery sequence.
func (b *bufferManager) resetReadPointer() error {
	b.nextPacket = b.rxStart
	if err := b.regs.writePair(protocol.ERDPTL, protocol.ERDPTH, b.rxStart); err != nil {
		return err
	}
	return b.regs.writePair(protocol.ERXRDPTL, protocol.ERXRDPTH, b.rxStart)
}

// txStart returns the first address of the transmit window.
func (b *bufferManager) txStart() uint16 {
	return b.rxEnd + 1
}

// ringSize returns the receive ring capacity in bytes.
func (b *bufferManager) ringSize() int {
	return int(b.rxEnd) - int(b.rxStart) + 1
}
