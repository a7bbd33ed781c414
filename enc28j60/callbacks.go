package enc28j60

// EventType identifies a notable driver event.
type EventType uint8

const (
	// EventRxOverrun fires when the receive ring overflowed and the
	// mandatory recovery sequence ran. Frames pending at that moment
	// were lost.
	EventRxOverrun EventType = iota

	// EventRxDesync fires when a frame header carried a next-packet
	// pointer outside the ring and the ring was reset
	EventRxDesync

	// EventFrameDropped fires for every corrupt or oversize frame
	// skipped by the receive pipeline
	EventFrameDropped

	// EventTxAborted fires when the hardware aborted a transmission
	EventTxAborted
)

func (t EventType) String() string {
	switch t {
	case EventRxOverrun:
		return "receive overrun"
	case EventRxDesync:
		return "receive pointer desync"
	case EventFrameDropped:
		return "frame dropped"
	case EventTxAborted:
		return "transmit aborted"
	default:
		return "unknown event"
	}
}

// Event describes a recoverable condition the driver handled internally.
type Event struct {
	Type EventType

	// Detail carries a short human-readable description
	Detail string
}

// EventCallback receives recoverable driver events, such as receive
// overruns. Implementations should return quickly; the callback runs on the
// caller's goroutine in the middle of a driver operation.
//
// Example:
//
//	drv := enc28j60.New(transport,
//	    enc28j60.WithEventCallback(func(e enc28j60.Event) {
//	        log.Printf("enc28j60: %s: %s", e.Type, e.Detail)
//	    }),
//	)
type EventCallback func(Event)

// Logger is an optional logging interface. It matches any structured logger
// that takes a message and alternating key-value pairs.
//
// Example with the standard library:
//
//	type StdLogger struct{}
//	func (StdLogger) Debug(msg string, kv ...interface{}) { log.Println("DEBUG:", msg, kv) }
//	func (StdLogger) Info(msg string, kv ...interface{})  { log.Println("INFO:", msg, kv) }
//	func (StdLogger) Error(msg string, kv ...interface{}) { log.Println("ERROR:", msg, kv) }
//
//	drv := enc28j60.New(transport, enc28j60.WithLogger(StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Stats holds cumulative driver counters. Counters are maintained by the
// driver's own goroutine discipline (single exclusive owner) and are not
// synchronized.
type Stats struct {
	// FramesReceived counts frames delivered to the caller
	FramesReceived uint64

	// FramesDropped counts corrupt, oversize and desynced frames skipped
	// by the receive pipeline
	FramesDropped uint64

	// CRCErrors counts dropped frames whose status vector flagged a CRC
	// mismatch; a subset of FramesDropped
	CRCErrors uint64

	// RxOverruns counts receive ring overflows recovered from
	RxOverruns uint64

	// FramesSent counts successfully transmitted frames
	FramesSent uint64

	// TxCollisions accumulates the collision counts of sent frames
	TxCollisions uint64

	// TxAborts counts aborted transmissions
	TxAborts uint64
}
