// Package protocol implements the ENC28J60 SPI command set and register model.
//
// This package is pure data: opcode encoding, the banked control register map,
// PHY register addresses, control/status bit definitions, and parsers for the
// status vectors the hardware writes around received and transmitted frames.
// It performs no I/O.
//
// # Command Set
//
// Every SPI transaction starts with a command byte carrying a 3-bit opcode in
// the upper bits and a 5-bit argument in the lower bits:
//
//	RCR  000 aaaaa  Read Control Register
//	RBM  001 11010  Read Buffer Memory
//	WCR  010 aaaaa  Write Control Register
//	WBM  011 11010  Write Buffer Memory
//	BFS  100 aaaaa  Bit Field Set (ETH registers only)
//	BFC  101 aaaaa  Bit Field Clear (ETH registers only)
//	SRC  111 11111  System Reset Command
//
// Use ControlRegister.Opcode to build the command byte:
//
//	cmd := protocol.ECON1.Opcode(protocol.OpBFS)
//
// # Register Banks
//
// Control registers live in four banks of 32 addresses, selected through the
// BSEL bits of ECON1. The registers at 0x1B-0x1F (EIE, EIR, ESTAT, ECON2,
// ECON1) are mapped into every bank and need no bank switch; their Common
// field is true.
//
// MAC and MII registers shift a dummy byte out before the register value when
// read, so an RCR transaction for them is one byte longer. Use
// ControlRegister.NeedsDummyByte to size the transaction.
//
// # Status Vectors
//
// The hardware prefixes every received frame with a six byte header: a 16-bit
// next packet pointer followed by a four byte receive status vector. After a
// transmission it writes a seven byte transmit status vector behind the frame.
// ParseReceiveHeader and ParseTransmitStatusVector decode them:
//
//	next, rsv, err := protocol.ParseReceiveHeader(hdr)
//	if !rsv.ReceivedOK {
//	    // frame arrived damaged
//	}
//
// # Reference
//
// Register addresses, bit positions and vector layouts follow the Microchip
// ENC28J60 Data Sheet (DS39662E) sections 3, 4 and 7.
package protocol
