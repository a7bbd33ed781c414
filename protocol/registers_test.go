package protocol

import "testing"

func TestOpcodeEncoding(t *testing.T) {
	tests := []struct {
		name string
		reg  ControlRegister
		op   Op
		want byte
	}{
		{"rcr low address", ERDPTL, OpRCR, 0x00},
		{"rcr common", ESTAT, OpRCR, 0x1D},
		{"wcr mac address register", MAADR1, OpWCR, 0x44},
		{"bfs econ1", ECON1, OpBFS, 0x9F},
		{"bfc eir", EIR, OpBFC, 0xBC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reg.Opcode(tt.op); got != tt.want {
				t.Errorf("Opcode() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestNeedsDummyByte(t *testing.T) {
	tests := []struct {
		reg  ControlRegister
		want bool
	}{
		{ESTAT, false},
		{ERXFCON, false},
		{EREVID, false},
		{MACON1, true},
		{MAADR6, true},
		{MISTAT, true},
		{MIRDL, true},
	}

	for _, tt := range tests {
		if got := tt.reg.NeedsDummyByte(); got != tt.want {
			t.Errorf("%s.NeedsDummyByte() = %v, want %v", tt.reg.Name, got, tt.want)
		}
	}
}

func TestBitFieldCapable(t *testing.T) {
	if !ECON1.BitFieldCapable() {
		t.Error("ECON1 should accept bit field opcodes")
	}
	if MACON1.BitFieldCapable() {
		t.Error("MACON1 is a MAC register and must not accept bit field opcodes")
	}
	if MISTAT.BitFieldCapable() {
		t.Error("MISTAT is a MII register and must not accept bit field opcodes")
	}
}

func TestLookupRegister(t *testing.T) {
	if r, ok := LookupRegister(Bank1, 0x19); !ok || r.Name != "EPKTCNT" {
		t.Errorf("LookupRegister(Bank1, 0x19) = %v, %v; want EPKTCNT", r, ok)
	}

	// Common registers resolve from any bank.
	for b := Bank0; b < BankCount; b++ {
		if r, ok := LookupRegister(b, ECON1.Addr); !ok || r.Name != "ECON1" {
			t.Errorf("LookupRegister(%d, ECON1) = %v, %v; want ECON1", b, r, ok)
		}
	}

	if _, ok := LookupRegister(Bank3, 0x1A); ok {
		t.Error("LookupRegister should not resolve an unmapped address")
	}
}

func TestRegisterAddressesAreFiveBit(t *testing.T) {
	for _, r := range ControlRegisters {
		if r.Addr&^byte(AddrMask) != 0 {
			t.Errorf("%s address 0x%02X exceeds 5 bits", r.Name, r.Addr)
		}
	}
}
