package enc28j60

import (
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-enc28j60/protocol"
)

// ErrNotInitialized is returned when Receive, Send or LinkUp is called
// before a successful Initialize, or after Reset.
var ErrNotInitialized = errors.New("driver not initialized")

// ConfigError indicates an invalid receive ring configuration. It is a
// caller programming error and is surfaced before any pointer register is
// touched.
type ConfigError struct {
	// Size is the requested receive ring size in bytes
	Size uint16

	// Reason explains why the size was rejected
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid receive ring size %d: %s", e.Size, e.Reason)
}

// InitTimeoutError indicates the controller did not report clock ready
// within the configured initialization timeout.
type InitTimeoutError struct {
	Timeout time.Duration
}

func (e *InitTimeoutError) Error() string {
	return fmt.Sprintf("initialization timed out: clock not ready after %s", e.Timeout)
}

// TransmitTimeoutError indicates a transmission did not complete within the
// configured transmit timeout. The transmit logic has been reset; the frame
// may or may not have gone out. Retrying is the caller's decision.
type TransmitTimeoutError struct {
	Timeout time.Duration
}

func (e *TransmitTimeoutError) Error() string {
	return fmt.Sprintf("transmit timed out: request-to-send still pending after %s", e.Timeout)
}

// FrameReason classifies why a received frame was discarded.
type FrameReason uint8

const (
	// ReasonCorrupt marks a frame whose received-OK flag was clear
	// (CRC error, symbol error or carrier fault)
	ReasonCorrupt FrameReason = iota

	// ReasonOversize marks a frame whose reported byte count exceeds the
	// maximum frame length
	ReasonOversize

	// ReasonDesync marks a frame header whose next-packet pointer fell
	// outside the receive ring; the ring was reset to recover
	ReasonDesync
)

func (r FrameReason) String() string {
	switch r {
	case ReasonCorrupt:
		return "corrupt"
	case ReasonOversize:
		return "oversize"
	case ReasonDesync:
		return "pointer desync"
	default:
		return fmt.Sprintf("unknown reason %d", uint8(r))
	}
}

// FrameError reports a single damaged received frame. The frame has already
// been skipped and the ring advanced past it; subsequent Receive calls
// return later frames normally.
type FrameError struct {
	Reason FrameReason

	// Length is the byte count the status vector claimed for the frame
	Length int

	// Status is the raw receive status vector of the discarded frame
	Status protocol.ReceiveStatusVector
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("dropped %s frame (%d bytes)", e.Reason, e.Length)
}

// TransmitCause classifies an aborted transmission, drawn from the transmit
// status vector.
type TransmitCause uint8

const (
	CauseUnknown TransmitCause = iota
	CauseLateCollision
	CauseExcessiveCollision
	CauseExcessiveDeferral
	CauseNoCarrier
	CauseUnderrun
	CauseGiant
)

func (c TransmitCause) String() string {
	switch c {
	case CauseLateCollision:
		return "late collision"
	case CauseExcessiveCollision:
		return "excessive collisions"
	case CauseExcessiveDeferral:
		return "excessive deferral"
	case CauseNoCarrier:
		return "no carrier"
	case CauseUnderrun:
		return "transmit underrun"
	case CauseGiant:
		return "frame too long"
	default:
		return "unknown cause"
	}
}

// TransmitError reports an aborted transmission. The abort flag has been
// acknowledged and the transmit logic is ready for the next frame; no
// automatic retry is attempted.
type TransmitError struct {
	Cause TransmitCause

	// Status is the transmit status vector read after the abort
	Status protocol.TransmitStatusVector
}

func (e *TransmitError) Error() string {
	return fmt.Sprintf("transmit aborted: %s (%d collisions)", e.Cause, e.Status.CollisionCount)
}

// transmitCause maps status vector flags to the dominant abort cause.
func transmitCause(tsv protocol.TransmitStatusVector) TransmitCause {
	switch {
	case tsv.LateCollision:
		return CauseLateCollision
	case tsv.ExcessiveCollision:
		return CauseExcessiveCollision
	case tsv.ExcessiveDefer:
		return CauseExcessiveDeferral
	case tsv.Underrun:
		return CauseUnderrun
	case tsv.Giant:
		return CauseGiant
	case !tsv.Done && tsv.TotalTransmitted == 0:
		return CauseNoCarrier
	default:
		return CauseUnknown
	}
}
