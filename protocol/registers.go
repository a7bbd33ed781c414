package protocol

import "fmt"

// Bank identifies one of the four control register banks, selected through
// the BSEL bits of ECON1.
type Bank uint8

const (
	Bank0 Bank = iota
	Bank1
	Bank2
	Bank3

	// BankCount is the number of register banks
	BankCount = 4
)

// Block classifies a control register by its hardware module. ETH registers
// support the bit field opcodes; MAC and MII registers do not, and their
// reads shift out a dummy byte before the value.
type Block uint8

const (
	BlockETH Block = iota
	BlockMAC
	BlockMII
)

// ControlRegister identifies a control register by bank and 5-bit address.
type ControlRegister struct {
	// Name is the data sheet register name, used in errors and logs
	Name string

	// Addr is the 5-bit address within the bank
	Addr byte

	// Bank holds the register's bank; meaningless when Common is set
	Bank Bank

	// Common marks registers mapped at the same address into every bank,
	// which can be accessed without a bank switch
	Common bool

	// Block is the hardware module the register belongs to
	Block Block
}

// Opcode builds the SPI command byte for the given instruction targeting
// this register.
func (r ControlRegister) Opcode(op Op) byte {
	return byte(op) | r.Addr&AddrMask
}

// NeedsDummyByte reports whether reads of this register shift out a dummy
// byte before the register value. True for all MAC and MII registers.
func (r ControlRegister) NeedsDummyByte() bool {
	return r.Block == BlockMAC || r.Block == BlockMII
}

// BitFieldCapable reports whether the BFS/BFC opcodes may target this
// register. The hardware only implements them for ETH registers.
func (r ControlRegister) BitFieldCapable() bool {
	return r.Block == BlockETH
}

func (r ControlRegister) String() string {
	if r.Common {
		return r.Name
	}
	return fmt.Sprintf("%s(bank%d)", r.Name, r.Bank)
}

func common(name string, addr byte) ControlRegister {
	return ControlRegister{Name: name, Addr: addr, Common: true, Block: BlockETH}
}

func banked(name string, addr byte, bank Bank, block Block) ControlRegister {
	return ControlRegister{Name: name, Addr: addr, Bank: bank, Block: block}
}

// Common registers, mapped into every bank.
var (
	EIE   = common("EIE", 0x1B)
	EIR   = common("EIR", 0x1C)
	ESTAT = common("ESTAT", 0x1D)
	ECON2 = common("ECON2", 0x1E)
	ECON1 = common("ECON1", 0x1F)
)

// Bank 0: buffer pointer registers.
var (
	ERDPTL   = banked("ERDPTL", 0x00, Bank0, BlockETH)
	ERDPTH   = banked("ERDPTH", 0x01, Bank0, BlockETH)
	EWRPTL   = banked("EWRPTL", 0x02, Bank0, BlockETH)
	EWRPTH   = banked("EWRPTH", 0x03, Bank0, BlockETH)
	ETXSTL   = banked("ETXSTL", 0x04, Bank0, BlockETH)
	ETXSTH   = banked("ETXSTH", 0x05, Bank0, BlockETH)
	ETXNDL   = banked("ETXNDL", 0x06, Bank0, BlockETH)
	ETXNDH   = banked("ETXNDH", 0x07, Bank0, BlockETH)
	ERXSTL   = banked("ERXSTL", 0x08, Bank0, BlockETH)
	ERXSTH   = banked("ERXSTH", 0x09, Bank0, BlockETH)
	ERXNDL   = banked("ERXNDL", 0x0A, Bank0, BlockETH)
	ERXNDH   = banked("ERXNDH", 0x0B, Bank0, BlockETH)
	ERXRDPTL = banked("ERXRDPTL", 0x0C, Bank0, BlockETH)
	ERXRDPTH = banked("ERXRDPTH", 0x0D, Bank0, BlockETH)
	ERXWRPTL = banked("ERXWRPTL", 0x0E, Bank0, BlockETH)
	ERXWRPTH = banked("ERXWRPTH", 0x0F, Bank0, BlockETH)
)

// Bank 1: receive filter and packet counter.
var (
	ERXFCON = banked("ERXFCON", 0x18, Bank1, BlockETH)
	EPKTCNT = banked("EPKTCNT", 0x19, Bank1, BlockETH)
)

// Bank 2: MAC and MII control.
var (
	MACON1   = banked("MACON1", 0x00, Bank2, BlockMAC)
	MACON3   = banked("MACON3", 0x02, Bank2, BlockMAC)
	MACON4   = banked("MACON4", 0x03, Bank2, BlockMAC)
	MABBIPG  = banked("MABBIPG", 0x04, Bank2, BlockMAC)
	MAIPGL   = banked("MAIPGL", 0x06, Bank2, BlockMAC)
	MAIPGH   = banked("MAIPGH", 0x07, Bank2, BlockMAC)
	MAMXFLL  = banked("MAMXFLL", 0x0A, Bank2, BlockMAC)
	MAMXFLH  = banked("MAMXFLH", 0x0B, Bank2, BlockMAC)
	MICMD    = banked("MICMD", 0x12, Bank2, BlockMII)
	MIREGADR = banked("MIREGADR", 0x14, Bank2, BlockMII)
	MIWRL    = banked("MIWRL", 0x16, Bank2, BlockMII)
	MIWRH    = banked("MIWRH", 0x17, Bank2, BlockMII)
	MIRDL    = banked("MIRDL", 0x18, Bank2, BlockMII)
	MIRDH    = banked("MIRDH", 0x19, Bank2, BlockMII)
)

// Bank 3: MAC address, MII status and chip revision.
var (
	MAADR5 = banked("MAADR5", 0x00, Bank3, BlockMAC)
	MAADR6 = banked("MAADR6", 0x01, Bank3, BlockMAC)
	MAADR3 = banked("MAADR3", 0x02, Bank3, BlockMAC)
	MAADR4 = banked("MAADR4", 0x03, Bank3, BlockMAC)
	MAADR1 = banked("MAADR1", 0x04, Bank3, BlockMAC)
	MAADR2 = banked("MAADR2", 0x05, Bank3, BlockMAC)
	MISTAT = banked("MISTAT", 0x0A, Bank3, BlockMII)
	EREVID = banked("EREVID", 0x12, Bank3, BlockETH)
)

// ControlRegisters lists every control register this package defines.
var ControlRegisters = []ControlRegister{
	EIE, EIR, ESTAT, ECON2, ECON1,
	ERDPTL, ERDPTH, EWRPTL, EWRPTH, ETXSTL, ETXSTH, ETXNDL, ETXNDH,
	ERXSTL, ERXSTH, ERXNDL, ERXNDH, ERXRDPTL, ERXRDPTH, ERXWRPTL, ERXWRPTH,
	ERXFCON, EPKTCNT,
	MACON1, MACON3, MACON4, MABBIPG, MAIPGL, MAIPGH, MAMXFLL, MAMXFLH,
	MICMD, MIREGADR, MIWRL, MIWRH, MIRDL, MIRDH,
	MAADR5, MAADR6, MAADR3, MAADR4, MAADR1, MAADR2, MISTAT, EREVID,
}

var registerIndex = buildRegisterIndex()

func buildRegisterIndex() map[uint16]ControlRegister {
	idx := make(map[uint16]ControlRegister, len(ControlRegisters)*2)
	for _, r := range ControlRegisters {
		if r.Common {
			// Visible at the same address in all four banks.
			for b := Bank0; b < BankCount; b++ {
				idx[uint16(b)<<8|uint16(r.Addr)] = r
			}
			continue
		}
		idx[uint16(r.Bank)<<8|uint16(r.Addr)] = r
	}
	return idx
}

// LookupRegister resolves a (bank, address) pair to a control register.
// Used by simulated hardware and diagnostics; the driver itself always works
// from the named register values.
func LookupRegister(bank Bank, addr byte) (ControlRegister, bool) {
	r, ok := registerIndex[uint16(bank)<<8|uint16(addr&AddrMask)]
	return r, ok
}

// PhyRegister identifies a PHY register, reached indirectly through the MII
// interface rather than by SPI command.
type PhyRegister struct {
	// Name is the data sheet register name
	Name string

	// Addr is the 5-bit MII register address
	Addr byte
}

func (r PhyRegister) String() string { return r.Name }

// PHY registers per data sheet table 3-3.
var (
	PHCON1  = PhyRegister{"PHCON1", 0x00}
	PHSTAT1 = PhyRegister{"PHSTAT1", 0x01}
	PHID1   = PhyRegister{"PHID1", 0x02}
	PHID2   = PhyRegister{"PHID2", 0x03}
	PHCON2  = PhyRegister{"PHCON2", 0x10}
	PHSTAT2 = PhyRegister{"PHSTAT2", 0x11}
	PHIE    = PhyRegister{"PHIE", 0x12}
	PHIR    = PhyRegister{"PHIR", 0x13}
	PHLCON  = PhyRegister{"PHLCON", 0x14}
)
