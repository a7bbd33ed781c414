package enc28j60

import (
	"fmt"

	"github.com/moffa90/go-enc28j60/protocol"
	"github.com/moffa90/go-enc28j60/spi"
)

// phyPollLimit bounds the MISTAT busy polls of an MII operation. An MII
// transaction takes 10.24 us; at SPI rates a handful of polls suffice.
const phyPollLimit = 1000

// regFile is the register access layer. It is the sole holder of the cached
// current-bank state and elides bank-select writes when consecutive accesses
// stay within one bank.
//
// The cache must always reflect hardware truth: anything that may knock the
// hardware bank out from under the cache (a reset, most notably) must call
// invalidateBank so the next banked access reselects.
type regFile struct {
	dev *spi.Device

	currentBank protocol.Bank
	bankValid   bool
}

func newRegFile(dev *spi.Device) *regFile {
	return &regFile{dev: dev}
}

// invalidateBank forces a bank reselect on the next banked access.
func (f *regFile) invalidateBank() {
	f.bankValid = false
}

// ensureBank switches the hardware to the register's bank if the cached
// bank differs. Common registers never reach here.
func (f *regFile) ensureBank(reg protocol.ControlRegister) error {
	if f.bankValid && f.currentBank == reg.Bank {
		return nil
	}

	// BSEL lives in ECON1, which is reachable from any bank.
	if err := f.dev.BitClear(protocol.ECON1, protocol.ECON1_BSEL_MASK); err != nil {
		return err
	}
	if err := f.dev.BitSet(protocol.ECON1, byte(reg.Bank)&protocol.ECON1_BSEL_MASK); err != nil {
		return err
	}

	f.currentBank = reg.Bank
	f.bankValid = true
	return nil
}

func (f *regFile) read(reg protocol.ControlRegister) (byte, error) {
	if !reg.Common {
		if err := f.ensureBank(reg); err != nil {
			return 0, err
		}
	}
	return f.dev.ReadControl(reg)
}

func (f *regFile) write(reg protocol.ControlRegister, value byte) error {
	if !reg.Common {
		if err := f.ensureBank(reg); err != nil {
			return err
		}
	}
	return f.dev.WriteControl(reg, value)
}

func (f *regFile) setBits(reg protocol.ControlRegister, mask byte) error {
	if !reg.Common {
		if err := f.ensureBank(reg); err != nil {
			return err
		}
	}
	return f.dev.BitSet(reg, mask)
}

func (f *regFile) clearBits(reg protocol.ControlRegister, mask byte) error {
	if !reg.Common {
		if err := f.ensureBank(reg); err != nil {
			return err
		}
	}
	return f.dev.BitClear(reg, mask)
}

// readPair reads a 16-bit value spread across a low/high register pair.
func (f *regFile) readPair(lo, hi protocol.ControlRegister) (uint16, error) {
	l, err := f.read(lo)
	if err != nil {
		return 0, err
	}
	h, err := f.read(hi)
	if err != nil {
		return 0, err
	}
	return uint16(l) | uint16(h)<<8, nil
}

// writePair writes a 16-bit value across a low/high register pair. Low byte
// first; the hardware latches pointer pairs on the high byte write.
func (f *regFile) writePair(lo, hi protocol.ControlRegister, value uint16) error {
	if err := f.write(lo, byte(value)); err != nil {
		return err
	}
	return f.write(hi, byte(value>>8))
}

// readPHY reads a 16-bit PHY register through the MII interface:
// program MIREGADR, start the read with MICMD.MIIRD, poll MISTAT.BUSY,
// stop the read, then collect MIRDL/MIRDH.
func (f *regFile) readPHY(reg protocol.PhyRegister) (uint16, error) {
	if err := f.write(protocol.MIREGADR, reg.Addr); err != nil {
		return 0, err
	}
	if err := f.write(protocol.MICMD, protocol.MICMD_MIIRD); err != nil {
		return 0, err
	}
	if err := f.waitMII(reg); err != nil {
		return 0, err
	}
	if err := f.write(protocol.MICMD, 0); err != nil {
		return 0, err
	}
	return f.readPair(protocol.MIRDL, protocol.MIRDH)
}

// writePHY writes a 16-bit PHY register through the MII interface. The
// hardware starts the write when MIWRH is written.
func (f *regFile) writePHY(reg protocol.PhyRegister, value uint16) error {
	if err := f.write(protocol.MIREGADR, reg.Addr); err != nil {
		return err
	}
	if err := f.writePair(protocol.MIWRL, protocol.MIWRH, value); err != nil {
		return err
	}
	return f.waitMII(reg)
}

func (f *regFile) waitMII(reg protocol.PhyRegister) error {
	for i := 0; i < phyPollLimit; i++ {
		mistat, err := f.read(protocol.MISTAT)
		if err != nil {
			return err
		}
		if mistat&protocol.MISTAT_BUSY == 0 {
			return nil
		}
	}
	return fmt.Errorf("mii access to %s: busy flag stuck after %d polls", reg, phyPollLimit)
}
