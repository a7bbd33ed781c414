package protocol

// Packet memory geometry and frame limits.
const (
	// MemorySize is the size of the on-chip packet buffer SRAM (8 KB)
	MemorySize = 8192

	// MaxFrameLength is the largest on-wire frame the MAC accepts,
	// including the 4-byte CRC (untagged 802.3 maximum)
	MaxFrameLength = 1518

	// CRCLength is the length of the frame check sequence the hardware
	// appends on transmit and includes in receive byte counts
	CRCLength = 4

	// ControlByteLength is the per-packet control byte that precedes
	// every staged transmit frame
	ControlByteLength = 1

	// ReceiveHeaderLength is the next-packet pointer plus receive status
	// vector the hardware writes before each received frame
	ReceiveHeaderLength = 6

	// TransmitStatusLength is the transmit status vector the hardware
	// writes after the end of a transmitted frame
	TransmitStatusLength = 7
)

// ECON1 bits.
const (
	ECON1_BSEL0  = 0x01
	ECON1_BSEL1  = 0x02
	ECON1_RXEN   = 0x04
	ECON1_TXRTS  = 0x08
	ECON1_CSUMEN = 0x10
	ECON1_DMAST  = 0x20
	ECON1_RXRST  = 0x40
	ECON1_TXRST  = 0x80

	// ECON1_BSEL_MASK covers both bank select bits
	ECON1_BSEL_MASK = ECON1_BSEL1 | ECON1_BSEL0
)

// ECON2 bits.
const (
	ECON2_VRPS    = 0x08
	ECON2_PWRSV   = 0x20
	ECON2_PKTDEC  = 0x40
	ECON2_AUTOINC = 0x80
)

// ESTAT bits.
const (
	ESTAT_CLKRDY  = 0x01
	ESTAT_TXABRT  = 0x02
	ESTAT_RXBUSY  = 0x04
	ESTAT_LATECOL = 0x10
	ESTAT_BUFER   = 0x40
	ESTAT_INT     = 0x80
)

// EIR interrupt flag bits.
const (
	EIR_RXERIF = 0x01
	EIR_TXERIF = 0x02
	EIR_TXIF   = 0x08
	EIR_LINKIF = 0x10
	EIR_DMAIF  = 0x20
	EIR_PKTIF  = 0x40
)

// EIE interrupt enable bits.
const (
	EIE_RXERIE = 0x01
	EIE_TXERIE = 0x02
	EIE_TXIE   = 0x08
	EIE_LINKIE = 0x10
	EIE_DMAIE  = 0x20
	EIE_PKTIE  = 0x40
	EIE_INTIE  = 0x80
)

// MACON1 bits.
const (
	MACON1_MARXEN  = 0x01
	MACON1_PASSALL = 0x02
	MACON1_RXPAUS  = 0x04
	MACON1_TXPAUS  = 0x08
)

// MACON3 bits.
const (
	MACON3_FULDPX  = 0x01
	MACON3_FRMLNEN = 0x02
	MACON3_HFRMEN  = 0x04
	MACON3_PHDREN  = 0x08
	MACON3_TXCRCEN = 0x10
	MACON3_PADCFG0 = 0x20
	MACON3_PADCFG1 = 0x40
	MACON3_PADCFG2 = 0x80
)

// ERXFCON receive filter bits.
const (
	ERXFCON_BCEN  = 0x01
	ERXFCON_MCEN  = 0x02
	ERXFCON_HTEN  = 0x04
	ERXFCON_MPEN  = 0x08
	ERXFCON_PMEN  = 0x10
	ERXFCON_CRCEN = 0x20
	ERXFCON_ANDOR = 0x40
	ERXFCON_UCEN  = 0x80
)

// MICMD and MISTAT bits.
const (
	MICMD_MIIRD   = 0x01
	MICMD_MIISCAN = 0x02

	MISTAT_BUSY   = 0x01
	MISTAT_SCAN   = 0x02
	MISTAT_NVALID = 0x04
)

// PHY register bits (16-bit registers).
const (
	PHCON1_PDPXMD  = 0x0100
	PHCON1_PPWRSV  = 0x0800
	PHCON1_PLOOPBK = 0x4000
	PHCON1_PRST    = 0x8000

	PHCON2_HDLDIS = 0x0100

	PHSTAT1_JBSTAT = 0x0002
	PHSTAT1_LLSTAT = 0x0004

	PHSTAT2_PLRITY  = 0x0020
	PHSTAT2_DPXSTAT = 0x0200
	PHSTAT2_LSTAT   = 0x0400
	PHSTAT2_COLSTAT = 0x0800
	PHSTAT2_RXSTAT  = 0x1000
	PHSTAT2_TXSTAT  = 0x2000
)
