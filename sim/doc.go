// Package sim provides a software-simulated ENC28J60 for tests and
// development without hardware.
//
// Chip implements spi.Transport as a behavioral model of the controller:
// a banked register file, 8 KB of packet memory, the receive ring write
// engine with overflow detection, and a transmit engine with scriptable
// outcomes. Test code injects frames with Inject and collects transmitted
// frames from Sent; every bus operation is recorded in an op log so tests
// can assert exact register sequences.
//
//	chip := sim.NewChip()
//	drv := enc28j60.New(chip)
//	if err := drv.Initialize(context.Background()); err != nil { ... }
//
//	chip.Inject([]byte{...})
//	frame, err := drv.Receive()
//
// The model covers what the driver exercises. Known simplifications: MII
// operations complete instantly (MISTAT.BUSY never reads set), a receive
// logic reset discards all pending frames, and DMA and pattern-match
// features are absent.
package sim
