// Package enc28j60 implements a driver core for the Microchip ENC28J60
// SPI Ethernet controller.
//
// # Overview
//
// The driver covers the chip-interaction core: register access with
// bank-switch elision, receive ring management, frame reception with
// per-frame status validation and overrun recovery, and frame transmission
// with completion status classification. It does not include an IP stack,
// interrupt wiring or board support; a network stack integration layer is
// expected to sit on top and poll Receive.
//
// # Basic Usage
//
//	transport, err := spi.Open("/dev/spidev0.0", 8_000_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer transport.Close()
//
//	drv := enc28j60.New(transport,
//	    enc28j60.WithMACAddress([6]byte{0x02, 0x00, 0xC0, 0xFF, 0xEE, 0x01}),
//	)
//	if err := drv.Initialize(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    frame, err := drv.Receive()
//	    if err != nil {
//	        var fe *enc28j60.FrameError
//	        if errors.As(err, &fe) {
//	            continue // single damaged frame, pipeline keeps going
//	        }
//	        log.Fatal(err)
//	    }
//	    if frame == nil {
//	        time.Sleep(time.Millisecond) // nothing pending
//	        continue
//	    }
//	    handle(frame.Data)
//	}
//
// Receive never blocks; polling is the expected usage pattern. Send blocks
// until the hardware reports completion, bounded by the configured transmit
// timeout and the caller's context.
//
// # Concurrency
//
// A Driver is a single exclusive owner of its transport and of the chip
// state it mirrors (current register bank, ring pointers). It has no
// internal locking and is not safe for concurrent use. Callers that share a
// Driver across goroutines must hold an external lock for the duration of a
// whole logical operation, an entire Receive or Send, not a fraction of
// one. Independent Driver instances over independent transports are fully
// isolated.
//
// # Error Handling
//
// The package reports structured error types:
//   - spi.BusError: the underlying transport failed (fatal, not retried)
//   - ConfigError: invalid receive ring sizing
//   - InitTimeoutError, TransmitTimeoutError: a bounded wait expired
//   - FrameError: one received frame was damaged; the ring has advanced
//     past it and later frames are unaffected
//   - TransmitError: the hardware aborted a transmission, with the cause
//     classified from the transmit status vector
//
// Receive ring overruns are recovered internally with the chip's mandatory
// recovery sequence and surfaced through the event callback rather than as
// errors.
//
// # Hardware Independence
//
// The driver talks to hardware only through spi.Transport. On Linux,
// spi.Open provides a spidev-backed transport; the sim package provides a
// behavioral chip model for tests and development without hardware.
package enc28j60
