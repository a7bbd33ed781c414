package sim

import "fmt"

// OpKind classifies a recorded bus operation.
type OpKind uint8

const (
	OpRead OpKind = iota
	OpWrite
	OpBitSet
	OpBitClear
	OpReadBuffer
	OpWriteBuffer
	OpReset
)

func (k OpKind) String() string {
	switch k {
	case OpRead:
		return "rcr"
	case OpWrite:
		return "wcr"
	case OpBitSet:
		return "bfs"
	case OpBitClear:
		return "bfc"
	case OpReadBuffer:
		return "rbm"
	case OpWriteBuffer:
		return "wbm"
	case OpReset:
		return "src"
	default:
		return "???"
	}
}

// Op is one recorded bus operation.
type Op struct {
	Kind OpKind

	// Target is the register name for register operations, empty for
	// buffer access and reset
	Target string

	// Value is the written value or bit mask for register writes, and
	// the byte count for buffer operations
	Value int
}

func (o Op) String() string {
	if o.Target == "" {
		return fmt.Sprintf("%s %d", o.Kind, o.Value)
	}
	return fmt.Sprintf("%s %s 0x%02X", o.Kind, o.Target, o.Value)
}

// Matches reports whether the op has the given kind, target and value.
// Used by tests asserting register sequences.
func (o Op) Matches(kind OpKind, target string, value int) bool {
	return o.Kind == kind && o.Target == target && o.Value == value
}
