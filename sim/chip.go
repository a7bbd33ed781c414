package sim

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/moffa90/go-enc28j60/protocol"
)

// DefaultRevision is the silicon revision the model reports (rev B4).
const DefaultRevision = 0x04

// TxOutcome scripts the result of subsequent transmissions.
type TxOutcome struct {
	// Collisions is reported in the status vector's collision count
	Collisions uint8

	LateCollision      bool
	ExcessiveCollision bool
	ExcessiveDefer     bool
	Underrun           bool

	// NoCarrier aborts the transmission with no cause flags and zero
	// bytes on the wire
	NoCarrier bool

	// Hang leaves the request-to-send bit stuck, forcing the driver's
	// transmit timeout path
	Hang bool
}

func (o TxOutcome) aborted() bool {
	return o.LateCollision || o.ExcessiveCollision || o.ExcessiveDefer || o.Underrun || o.NoCarrier
}

// Chip is a behavioral ENC28J60 model implementing spi.Transport.
//
// The driver side is single-owner, but tests inject frames and read
// recorded state from their own goroutine, so the model locks internally.
type Chip struct {
	mu sync.Mutex

	ram  [protocol.MemorySize]byte
	regs [protocol.BankCount][32]byte
	phy  [32]uint16

	// rxWritePtr mirrors the hardware's ERXWRPT: where the next injected
	// frame header lands
	rxWritePtr uint16

	sent    [][]byte
	outcome TxOutcome
	ops     []Op
	failErr error
}

// NewChip returns a model in its power-on state.
func NewChip() *Chip {
	c := &Chip{}
	c.powerOn()
	return c
}

func (c *Chip) powerOn() {
	c.regs = [protocol.BankCount][32]byte{}
	c.phy = [32]uint16{}

	// Reset defaults the driver relies on.
	c.setReg(protocol.Bank0, protocol.ESTAT.Addr, protocol.ESTAT_CLKRDY)
	c.setReg(protocol.Bank0, protocol.ECON2.Addr, protocol.ECON2_AUTOINC)
	c.setReg(protocol.EREVID.Bank, protocol.EREVID.Addr, DefaultRevision)
	c.rxWritePtr = 0
}

// reg returns a pointer to the register cell. Common registers (0x1B and
// up) are stored once and visible from every bank.
func (c *Chip) reg(bank protocol.Bank, addr byte) *byte {
	addr &= protocol.AddrMask
	if addr >= protocol.EIE.Addr {
		return &c.regs[protocol.Bank0][addr]
	}
	return &c.regs[bank][addr]
}

func (c *Chip) setReg(bank protocol.Bank, addr, v byte) { *c.reg(bank, addr) = v }

func (c *Chip) bank() protocol.Bank {
	return protocol.Bank(*c.reg(protocol.Bank0, protocol.ECON1.Addr) & protocol.ECON1_BSEL_MASK)
}

// pair reads a 16-bit low/high register pair in the current bank layout.
func (c *Chip) pair(lo protocol.ControlRegister) uint16 {
	l := *c.reg(lo.Bank, lo.Addr)
	h := *c.reg(lo.Bank, lo.Addr+1)
	return uint16(l) | uint16(h)<<8
}

func (c *Chip) setPair(lo protocol.ControlRegister, v uint16) {
	*c.reg(lo.Bank, lo.Addr) = byte(v)
	*c.reg(lo.Bank, lo.Addr+1) = byte(v >> 8)
}

func (c *Chip) regName(addr byte) string {
	if r, ok := protocol.LookupRegister(c.bank(), addr); ok {
		return r.Name
	}
	return fmt.Sprintf("reg(%d,0x%02X)", c.bank(), addr&protocol.AddrMask)
}

func (c *Chip) log(op Op) { c.ops = append(c.ops, op) }

// Exchange decodes and executes one SPI transaction.
func (c *Chip) Exchange(tx, rx []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failErr != nil {
		return c.failErr
	}
	if len(tx) == 0 {
		return fmt.Errorf("sim: empty transaction")
	}

	cmd := tx[0]
	if cmd == byte(protocol.OpSRC) {
		c.powerOn()
		c.log(Op{Kind: OpReset})
		return nil
	}

	op := protocol.Op(cmd & 0xE0)
	addr := cmd & protocol.AddrMask

	switch op {
	case protocol.OpRCR:
		v := c.readRegister(addr)
		c.log(Op{Kind: OpRead, Target: c.regName(addr), Value: int(v)})
		if rx != nil {
			// The value arrives in the last clocked byte; MAC/MII
			// reads use a 3-byte transaction for the dummy byte.
			rx[len(tx)-1] = v
		}

	case protocol.OpWCR:
		if len(tx) < 2 {
			return fmt.Errorf("sim: wcr without data byte")
		}
		c.log(Op{Kind: OpWrite, Target: c.regName(addr), Value: int(tx[1])})
		c.writeRegister(addr, tx[1])

	case protocol.OpBFS:
		if len(tx) < 2 {
			return fmt.Errorf("sim: bfs without mask byte")
		}
		c.log(Op{Kind: OpBitSet, Target: c.regName(addr), Value: int(tx[1])})
		c.bitField(addr, tx[1], true)

	case protocol.OpBFC:
		if len(tx) < 2 {
			return fmt.Errorf("sim: bfc without mask byte")
		}
		c.log(Op{Kind: OpBitClear, Target: c.regName(addr), Value: int(tx[1])})
		c.bitField(addr, tx[1], false)

	case protocol.OpRBM:
		n := len(tx) - 1
		c.log(Op{Kind: OpReadBuffer, Value: n})
		if rx == nil || len(rx) < len(tx) {
			return fmt.Errorf("sim: rbm needs an rx buffer")
		}
		c.readBuffer(rx[1 : 1+n])

	case protocol.OpWBM:
		c.log(Op{Kind: OpWriteBuffer, Value: len(tx) - 1})
		c.writeBuffer(tx[1:])

	default:
		return fmt.Errorf("sim: unknown opcode 0x%02X", cmd)
	}
	return nil
}

// Close is a no-op; the model holds no resources.
func (c *Chip) Close() error { return nil }

func (c *Chip) readRegister(addr byte) byte {
	return *c.reg(c.bank(), addr)
}

func (c *Chip) writeRegister(addr, v byte) {
	bank := c.bank()
	*c.reg(bank, addr) = v
	c.sideEffects(bank, addr)
}

func (c *Chip) bitField(addr, mask byte, set bool) {
	bank := c.bank()
	cell := c.reg(bank, addr)

	if addr == protocol.ECON2.Addr && set && mask&protocol.ECON2_PKTDEC != 0 {
		// PKTDEC is a strobe, not a stored bit.
		cnt := c.reg(protocol.EPKTCNT.Bank, protocol.EPKTCNT.Addr)
		if *cnt > 0 {
			*cnt--
		}
		mask &^= protocol.ECON2_PKTDEC
	}

	if set {
		*cell |= mask
	} else {
		*cell &^= mask
	}
	c.sideEffects(bank, addr)
}

// sideEffects applies the hardware behavior attached to register writes.
func (c *Chip) sideEffects(bank protocol.Bank, addr byte) {
	econ1 := c.reg(protocol.Bank0, protocol.ECON1.Addr)

	if addr == protocol.ECON1.Addr {
		if *econ1&protocol.ECON1_RXRST != 0 {
			// Receive logic reset: pending frames and the write
			// pointer are gone.
			c.setReg(protocol.EPKTCNT.Bank, protocol.EPKTCNT.Addr, 0)
			c.rxWritePtr = c.pair(protocol.ERXSTL)
			c.setPair(protocol.ERXWRPTL, c.rxWritePtr)
		}
		if *econ1&protocol.ECON1_TXRTS != 0 {
			c.transmit()
		}
		return
	}

	if bank == protocol.MICMD.Bank && addr == protocol.MICMD.Addr {
		if *c.reg(bank, addr)&protocol.MICMD_MIIRD != 0 {
			phyAddr := *c.reg(protocol.MIREGADR.Bank, protocol.MIREGADR.Addr) & protocol.AddrMask
			c.setPair(protocol.MIRDL, c.phy[phyAddr])
		}
		return
	}

	if bank == protocol.MIWRH.Bank && addr == protocol.MIWRH.Addr {
		phyAddr := *c.reg(protocol.MIREGADR.Bank, protocol.MIREGADR.Addr) & protocol.AddrMask
		c.phy[phyAddr] = c.pair(protocol.MIWRL)
	}
}

// readBuffer serves an RBM burst from ERDPT with auto-increment, wrapping
// at the receive ring end exactly as the hardware does.
func (c *Chip) readBuffer(out []byte) {
	ptr := c.pair(protocol.ERDPTL)
	erxnd := c.pair(protocol.ERXNDL)
	erxst := c.pair(protocol.ERXSTL)
	autoinc := *c.reg(protocol.Bank0, protocol.ECON2.Addr)&protocol.ECON2_AUTOINC != 0

	for i := range out {
		out[i] = c.ram[ptr%protocol.MemorySize]
		if !autoinc {
			continue
		}
		if ptr == erxnd {
			ptr = erxst
		} else {
			ptr = (ptr + 1) % protocol.MemorySize
		}
	}
	c.setPair(protocol.ERDPTL, ptr)
}

// writeBuffer serves a WBM burst at EWRPT with auto-increment.
func (c *Chip) writeBuffer(data []byte) {
	ptr := c.pair(protocol.EWRPTL)
	for _, b := range data {
		c.ram[ptr%protocol.MemorySize] = b
		ptr = (ptr + 1) % protocol.MemorySize
	}
	c.setPair(protocol.EWRPTL, ptr)
}

// transmit runs the transmit engine when request-to-send is raised.
func (c *Chip) transmit() {
	if c.outcome.Hang {
		return
	}

	st := c.pair(protocol.ETXSTL)
	nd := c.pair(protocol.ETXNDL)
	if nd < st || int(nd) >= protocol.MemorySize {
		return
	}

	// Skip the per-packet control byte.
	frame := make([]byte, nd-st)
	copy(frame, c.ram[st+1:nd+1])
	c.sent = append(c.sent, frame)

	tsv := c.buildTSV(len(frame))
	copy(c.ram[nd+1:nd+1+protocol.TransmitStatusLength], tsv[:])

	econ1 := c.reg(protocol.Bank0, protocol.ECON1.Addr)
	*econ1 &^= protocol.ECON1_TXRTS

	eir := c.reg(protocol.Bank0, protocol.EIR.Addr)
	estat := c.reg(protocol.Bank0, protocol.ESTAT.Addr)
	if c.outcome.aborted() {
		*estat |= protocol.ESTAT_TXABRT
		if c.outcome.LateCollision {
			*estat |= protocol.ESTAT_LATECOL
		}
		*eir |= protocol.EIR_TXERIF
	} else {
		*eir |= protocol.EIR_TXIF
	}
}

func (c *Chip) buildTSV(frameLen int) [protocol.TransmitStatusLength]byte {
	var tsv [protocol.TransmitStatusLength]byte
	binary.LittleEndian.PutUint16(tsv[0:2], uint16(frameLen))
	tsv[2] = c.outcome.Collisions & 0x0F

	if c.outcome.aborted() {
		if c.outcome.ExcessiveDefer {
			tsv[3] |= 0x08
		}
		if c.outcome.ExcessiveCollision {
			tsv[3] |= 0x10
		}
		if c.outcome.LateCollision {
			tsv[3] |= 0x20
		}
		if c.outcome.Underrun {
			tsv[3] |= 0x80
		}
		// NoCarrier: no cause flags, done clear, nothing on the wire.
		return tsv
	}

	tsv[2] |= 0x80 // done
	binary.LittleEndian.PutUint16(tsv[4:6], uint16(frameLen+protocol.CRCLength))
	return tsv
}
