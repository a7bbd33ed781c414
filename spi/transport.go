package spi

import "fmt"

// Transport is a byte-oriented SPI link to a single device.
//
// Implementations must treat each Exchange call as one atomic transaction:
// assert chip select, clock every byte, deassert chip select. The driver
// relies on that framing; splitting a transfer across chip-select cycles
// corrupts the chip's command state.
type Transport interface {
	// Exchange clocks len(tx) bytes out while simultaneously reading the
	// same number of bytes. rx may be nil for write-only transactions;
	// when non-nil it must be at least len(tx) bytes and receives the
	// full-duplex read data, including the bytes clocked in while the
	// command itself was shifting out.
	Exchange(tx, rx []byte) error

	// Close releases the underlying link.
	Close() error
}

// BusError reports a failed bus transaction. The underlying transport error
// is wrapped and available through errors.Unwrap.
type BusError struct {
	// Op names the failed operation, e.g. "read control register"
	Op string

	// Cause is the error returned by the transport
	Cause error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("spi: %s: %v", e.Op, e.Cause)
}

func (e *BusError) Unwrap() error { return e.Cause }

func busErr(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &BusError{Op: op, Cause: cause}
}
