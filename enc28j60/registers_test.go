package enc28j60

import (
	"testing"

	"github.com/moffa90/go-enc28j60/protocol"
	"github.com/moffa90/go-enc28j60/sim"
	"github.com/moffa90/go-enc28j60/spi"
)

func newTestRegFile() (*regFile, *sim.Chip) {
	chip := sim.NewChip()
	return newRegFile(spi.NewDevice(chip)), chip
}

// countBankSelects counts bank switch sequences in the op log. Every switch
// starts by clearing both BSEL bits, which no other code path does.
func countBankSelects(ops []sim.Op) int {
	n := 0
	for _, op := range ops {
		if op.Matches(sim.OpBitClear, "ECON1", int(protocol.ECON1_BSEL_MASK)) {
			n++
		}
	}
	return n
}

func TestBankSwitchElision(t *testing.T) {
	regs, chip := newTestRegFile()

	// Repeated access within one bank selects the bank exactly once.
	for i := 0; i < 3; i++ {
		if _, err := regs.read(protocol.ERXFCON); err != nil {
			t.Fatalf("read(ERXFCON) error = %v", err)
		}
	}
	if got := countBankSelects(chip.Ops()); got != 1 {
		t.Errorf("bank selects after three same-bank reads = %d, want 1", got)
	}

	// Another register of the same bank still costs nothing.
	if _, err := regs.read(protocol.EPKTCNT); err != nil {
		t.Fatalf("read(EPKTCNT) error = %v", err)
	}
	if got := countBankSelects(chip.Ops()); got != 1 {
		t.Errorf("bank selects after second same-bank register = %d, want 1", got)
	}

	// Crossing into another bank costs one switch.
	if _, err := regs.read(protocol.MACON1); err != nil {
		t.Fatalf("read(MACON1) error = %v", err)
	}
	if got := countBankSelects(chip.Ops()); got != 2 {
		t.Errorf("bank selects after bank change = %d, want 2", got)
	}
}

func TestCommonRegistersSkipBankSelect(t *testing.T) {
	regs, chip := newTestRegFile()

	common := []protocol.ControlRegister{
		protocol.EIE, protocol.EIR, protocol.ESTAT, protocol.ECON2, protocol.ECON1,
	}
	for _, reg := range common {
		if _, err := regs.read(reg); err != nil {
			t.Fatalf("read(%s) error = %v", reg.Name, err)
		}
	}
	if got := countBankSelects(chip.Ops()); got != 0 {
		t.Errorf("bank selects for common registers = %d, want 0", got)
	}

	// Interleaved common access must not disturb the cached bank.
	if _, err := regs.read(protocol.ERXFCON); err != nil {
		t.Fatal(err)
	}
	if _, err := regs.read(protocol.ESTAT); err != nil {
		t.Fatal(err)
	}
	if _, err := regs.read(protocol.EPKTCNT); err != nil {
		t.Fatal(err)
	}
	if got := countBankSelects(chip.Ops()); got != 1 {
		t.Errorf("bank selects with interleaved common reads = %d, want 1", got)
	}
}

func TestInvalidateBankForcesSelect(t *testing.T) {
	regs, chip := newTestRegFile()

	if _, err := regs.read(protocol.ERXFCON); err != nil {
		t.Fatal(err)
	}
	regs.invalidateBank()
	if _, err := regs.read(protocol.ERXFCON); err != nil {
		t.Fatal(err)
	}

	if got := countBankSelects(chip.Ops()); got != 2 {
		t.Errorf("bank selects across invalidation = %d, want 2", got)
	}
}

func TestWritePairLowFirst(t *testing.T) {
	regs, chip := newTestRegFile()

	if err := regs.writePair(protocol.ERDPTL, protocol.ERDPTH, 0x1234); err != nil {
		t.Fatalf("writePair() error = %v", err)
	}
	if got := chip.Register(protocol.ERDPTL); got != 0x34 {
		t.Errorf("ERDPTL = 0x%02X, want 0x34", got)
	}
	if got := chip.Register(protocol.ERDPTH); got != 0x12 {
		t.Errorf("ERDPTH = 0x%02X, want 0x12", got)
	}

	assertOpsInOrder(t, chip.Ops(), []sim.Op{
		{Kind: sim.OpWrite, Target: "ERDPTL", Value: 0x34},
		{Kind: sim.OpWrite, Target: "ERDPTH", Value: 0x12},
	})

	v, err := regs.readPair(protocol.ERDPTL, protocol.ERDPTH)
	if err != nil {
		t.Fatalf("readPair() error = %v", err)
	}
	if v != 0x1234 {
		t.Errorf("readPair() = 0x%04X, want 0x1234", v)
	}
}

func TestPHYAccess(t *testing.T) {
	regs, chip := newTestRegFile()

	if err := regs.writePHY(protocol.PHCON1, protocol.PHCON1_PDPXMD); err != nil {
		t.Fatalf("writePHY() error = %v", err)
	}
	if got := chip.PHYRegister(protocol.PHCON1); got != protocol.PHCON1_PDPXMD {
		t.Errorf("PHCON1 = 0x%04X, want 0x%04X", got, protocol.PHCON1_PDPXMD)
	}

	v, err := regs.readPHY(protocol.PHCON1)
	if err != nil {
		t.Fatalf("readPHY() error = %v", err)
	}
	if v != protocol.PHCON1_PDPXMD {
		t.Errorf("readPHY() = 0x%04X, want 0x%04X", v, protocol.PHCON1_PDPXMD)
	}

	chip.SetLink(true)
	phstat2, err := regs.readPHY(protocol.PHSTAT2)
	if err != nil {
		t.Fatalf("readPHY(PHSTAT2) error = %v", err)
	}
	if phstat2&protocol.PHSTAT2_LSTAT == 0 {
		t.Errorf("PHSTAT2 = 0x%04X, link bit not set", phstat2)
	}
}
