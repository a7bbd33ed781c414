// Package spi provides the bus transport layer for the ENC28J60 driver.
//
// Transport abstracts a single-device SPI link: one Exchange call is one
// atomic chip-select-bracketed full-duplex transfer. Device sits on top of a
// Transport and issues the chip's control opcodes (register read/write, bit
// field set/clear, buffer memory access, soft reset) as single transactions,
// with no knowledge of registers beyond their address and block.
//
// Two Transport implementations ship with the package: Spidev drives a real
// controller through the Linux /dev/spidevB.C interface (Linux only), and
// ScriptedTransport is an in-memory record/replay link for unit tests. The
// higher-level sim package implements Transport as a behavioral chip model.
//
// Transport failures surface as *BusError; the cause is wrapped and reachable
// through errors.Unwrap. No retries happen at this layer.
package spi
