package spi

// ScriptedTransport is an in-memory Transport for unit tests. It records
// every transmitted frame and answers reads from a queue of canned replies.
//
// A reply covers one Exchange call and is copied into the rx buffer from
// offset zero; queue a full-length slice including the byte clocked in while
// the command shifts out. Exchanges with no queued reply read as zeros.
type ScriptedTransport struct {
	// Writes holds a copy of the tx buffer of every Exchange, in order.
	Writes [][]byte

	replies [][]byte
	err     error
	closed  bool
}

// QueueReply appends a canned rx buffer for a future Exchange.
func (s *ScriptedTransport) QueueReply(rx []byte) {
	s.replies = append(s.replies, rx)
}

// FailWith makes every subsequent Exchange return err.
func (s *ScriptedTransport) FailWith(err error) {
	s.err = err
}

// Exchange records tx and serves the next queued reply, if any.
func (s *ScriptedTransport) Exchange(tx, rx []byte) error {
	if s.err != nil {
		return s.err
	}

	w := make([]byte, len(tx))
	copy(w, tx)
	s.Writes = append(s.Writes, w)

	if rx == nil {
		return nil
	}
	for i := range rx {
		rx[i] = 0
	}
	if len(s.replies) > 0 {
		copy(rx, s.replies[0])
		s.replies = s.replies[1:]
	}
	return nil
}

// Close marks the transport closed.
func (s *ScriptedTransport) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *ScriptedTransport) Closed() bool { return s.closed }
