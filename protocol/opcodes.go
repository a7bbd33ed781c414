package protocol

// Op is a 3-bit SPI instruction opcode, stored in the top three bits of the
// command byte. The low five bits carry the opcode argument, usually a
// register address.
type Op byte

// SPI instruction opcodes per data sheet table 4-1.
const (
	// OpRCR reads a control register
	OpRCR Op = 0x00

	// OpRBM reads buffer memory at the ERDPT pointer
	OpRBM Op = 0x20

	// OpWCR writes a control register
	OpWCR Op = 0x40

	// OpWBM writes buffer memory at the EWRPT pointer
	OpWBM Op = 0x60

	// OpBFS sets bits in an ETH control register
	OpBFS Op = 0x80

	// OpBFC clears bits in an ETH control register
	OpBFC Op = 0xA0

	// OpSRC is the single-byte System Reset Command
	OpSRC Op = 0xFF
)

// AddrMask extracts the 5-bit address argument of a command byte.
const AddrMask = 0x1F

// BufferArg is the fixed 5-bit argument carried by the RBM and WBM opcodes.
const BufferArg = 0x1A
