package sim

import (
	"encoding/binary"
	"fmt"

	"github.com/moffa90/go-enc28j60/protocol"
)

// Inject delivers a good frame to the receive ring, as if it had arrived
// on the wire and passed the filters. A zeroed 4-byte CRC is appended, the
// way the hardware stores frames when CRC writing is enabled.
//
// Returns an error when the receiver is disabled or the ring cannot hold
// the frame; a full ring also raises the overflow flag, exactly like the
// hardware, so the driver's recovery path can be exercised.
func (c *Chip) Inject(payload []byte) error {
	return c.inject(payload, 0x80) // received OK
}

// InjectDamaged delivers a frame whose status vector reports a CRC error
// with the received-OK flag clear.
func (c *Chip) InjectDamaged(payload []byte) error {
	return c.inject(payload, 0x10) // CRC error, not OK
}

// InjectWithStatus delivers a frame with an arbitrary third status byte
// (the byte holding received-OK, CRC error and length flags).
func (c *Chip) InjectWithStatus(payload []byte, statusByte byte) error {
	return c.inject(payload, statusByte)
}

func (c *Chip) inject(payload []byte, statusByte byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	econ1 := *c.reg(protocol.Bank0, protocol.ECON1.Addr)
	if econ1&protocol.ECON1_RXEN == 0 {
		return fmt.Errorf("sim: receiver disabled, frame not injected")
	}

	erxst := c.pair(protocol.ERXSTL)
	erxnd := c.pair(protocol.ERXNDL)
	if erxnd <= erxst {
		return fmt.Errorf("sim: receive ring not configured")
	}
	ringSize := int(erxnd) - int(erxst) + 1

	total := protocol.ReceiveHeaderLength + len(payload) + protocol.CRCLength
	if total%2 != 0 {
		total++ // frames start on even addresses
	}

	cnt := c.reg(protocol.EPKTCNT.Bank, protocol.EPKTCNT.Addr)
	rdpt := c.pair(protocol.ERXRDPTL)
	free := (int(rdpt) - int(c.rxWritePtr) - 1 + ringSize) % ringSize
	if total > free || *cnt == 0xFF {
		eir := c.reg(protocol.Bank0, protocol.EIR.Addr)
		*eir |= protocol.EIR_RXERIF
		estat := c.reg(protocol.Bank0, protocol.ESTAT.Addr)
		*estat |= protocol.ESTAT_BUFER
		return fmt.Errorf("sim: receive ring full, frame dropped")
	}

	// next-packet pointer: even, wrapped into the ring.
	next := c.rxWritePtr
	for i := 0; i < total; i++ {
		next = c.ringNext(next, erxst, erxnd)
	}

	var header [protocol.ReceiveHeaderLength]byte
	binary.LittleEndian.PutUint16(header[0:2], next)
	binary.LittleEndian.PutUint16(header[2:4], uint16(len(payload)+protocol.CRCLength))
	header[4] = statusByte

	ptr := c.rxWritePtr
	ptr = c.ringWrite(ptr, erxst, erxnd, header[:])
	ptr = c.ringWrite(ptr, erxst, erxnd, payload)
	c.ringWrite(ptr, erxst, erxnd, make([]byte, protocol.CRCLength))

	c.rxWritePtr = next
	c.setPair(protocol.ERXWRPTL, next)
	*cnt++

	eir := c.reg(protocol.Bank0, protocol.EIR.Addr)
	*eir |= protocol.EIR_PKTIF
	return nil
}

func (c *Chip) ringNext(ptr, erxst, erxnd uint16) uint16 {
	if ptr == erxnd {
		return erxst
	}
	return ptr + 1
}

func (c *Chip) ringWrite(ptr, erxst, erxnd uint16, data []byte) uint16 {
	for _, b := range data {
		c.ram[ptr] = b
		ptr = c.ringNext(ptr, erxst, erxnd)
	}
	return ptr
}

// SetTransmitOutcome scripts the result of subsequent transmissions. The
// zero value means success with no collisions.
func (c *Chip) SetTransmitOutcome(o TxOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcome = o
}

// SetLink drives the PHY link status bit.
func (c *Chip) SetLink(up bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if up {
		c.phy[protocol.PHSTAT2.Addr] |= protocol.PHSTAT2_LSTAT
	} else {
		c.phy[protocol.PHSTAT2.Addr] &^= protocol.PHSTAT2_LSTAT
	}
}

// FailWith makes every subsequent Exchange return err. Pass nil to restore
// normal operation.
func (c *Chip) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failErr = err
}

// Sent returns the frames the model has transmitted, without their
// per-packet control bytes.
func (c *Chip) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

// Ops returns a copy of the recorded bus operation log.
func (c *Chip) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Op, len(c.ops))
	copy(out, c.ops)
	return out
}

// ClearOps empties the op log, typically right before the sequence under
// test.
func (c *Chip) ClearOps() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = nil
}

// PendingCount returns the hardware pending-packet counter.
func (c *Chip) PendingCount() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.reg(protocol.EPKTCNT.Bank, protocol.EPKTCNT.Addr)
}

// Register reads a control register cell directly, without bus traffic.
func (c *Chip) Register(reg protocol.ControlRegister) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.reg(reg.Bank, reg.Addr)
}

// PHYRegister reads a PHY register directly.
func (c *Chip) PHYRegister(reg protocol.PhyRegister) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phy[reg.Addr&protocol.AddrMask]
}

// Peek reads a packet memory byte directly.
func (c *Chip) Peek(addr uint16) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ram[addr%protocol.MemorySize]
}

// Poke writes a packet memory byte directly. Tests use it to corrupt frame
// headers in place.
func (c *Chip) Poke(addr uint16, b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ram[addr%protocol.MemorySize] = b
}
