package spi

import (
	"fmt"

	"github.com/moffa90/go-enc28j60/protocol"
)

// Device issues ENC28J60 control opcodes over a Transport. Every method is
// exactly one bus transaction.
//
// Device carries no chip state; bank selection, pointer tracking and all
// other chip semantics belong to the driver above it.
type Device struct {
	t Transport
}

// NewDevice wraps a Transport.
func NewDevice(t Transport) *Device {
	if t == nil {
		panic("transport cannot be nil")
	}
	return &Device{t: t}
}

// ReadControl reads a control register with the RCR opcode. MAC and MII
// registers shift a dummy byte ahead of the value; the extra clock byte is
// handled here so callers always get the register value.
func (d *Device) ReadControl(reg protocol.ControlRegister) (byte, error) {
	n := 2
	if reg.NeedsDummyByte() {
		n = 3
	}

	tx := make([]byte, n)
	rx := make([]byte, n)
	tx[0] = reg.Opcode(protocol.OpRCR)

	if err := d.t.Exchange(tx, rx); err != nil {
		return 0, busErr(fmt.Sprintf("read control register %s", reg), err)
	}
	return rx[n-1], nil
}

// WriteControl writes a control register with the WCR opcode.
func (d *Device) WriteControl(reg protocol.ControlRegister, value byte) error {
	tx := []byte{reg.Opcode(protocol.OpWCR), value}
	return busErr(fmt.Sprintf("write control register %s", reg), d.t.Exchange(tx, nil))
}

// BitSet sets the masked bits of an ETH register with the BFS opcode.
// The hardware only implements bit field opcodes for ETH registers;
// targeting a MAC or MII register is a programming error.
func (d *Device) BitSet(reg protocol.ControlRegister, mask byte) error {
	if !reg.BitFieldCapable() {
		return fmt.Errorf("bit field set on %s: opcode only valid for ETH registers", reg)
	}
	tx := []byte{reg.Opcode(protocol.OpBFS), mask}
	return busErr(fmt.Sprintf("bit field set %s", reg), d.t.Exchange(tx, nil))
}

// BitClear clears the masked bits of an ETH register with the BFC opcode.
func (d *Device) BitClear(reg protocol.ControlRegister, mask byte) error {
	if !reg.BitFieldCapable() {
		return fmt.Errorf("bit field clear on %s: opcode only valid for ETH registers", reg)
	}
	tx := []byte{reg.Opcode(protocol.OpBFC), mask}
	return busErr(fmt.Sprintf("bit field clear %s", reg), d.t.Exchange(tx, nil))
}

// ReadBufferMemory fills buf from packet memory at the chip's read pointer
// using the RBM opcode. With auto-increment enabled the pointer advances,
// wrapping at the receive ring boundary.
func (d *Device) ReadBufferMemory(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	tx := make([]byte, len(buf)+1)
	rx := make([]byte, len(buf)+1)
	tx[0] = byte(protocol.OpRBM) | protocol.BufferArg

	if err := d.t.Exchange(tx, rx); err != nil {
		return busErr("read buffer memory", err)
	}
	copy(buf, rx[1:])
	return nil
}

// WriteBufferMemory writes data into packet memory at the chip's write
// pointer using the WBM opcode.
func (d *Device) WriteBufferMemory(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	tx := make([]byte, 0, len(data)+1)
	tx = append(tx, byte(protocol.OpWBM)|protocol.BufferArg)
	tx = append(tx, data...)

	return busErr("write buffer memory", d.t.Exchange(tx, nil))
}

// SoftReset issues the single-byte System Reset Command. All control
// registers return to their defaults; the caller must assume any cached
// chip state is stale afterwards.
func (d *Device) SoftReset() error {
	tx := []byte{byte(protocol.OpSRC)}
	return busErr("system reset", d.t.Exchange(tx, nil))
}

// Close closes the underlying transport.
func (d *Device) Close() error {
	return d.t.Close()
}
