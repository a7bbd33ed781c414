package enc28j60

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moffa90/go-enc28j60/protocol"
	"github.com/moffa90/go-enc28j60/sim"
)

func TestSendRoundTrip(t *testing.T) {
	d, chip := newTestDriver(t)

	frame := make([]byte, 80)
	for i := range frame {
		frame[i] = byte(i * 3)
	}
	if err := d.Send(context.Background(), frame); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	sent := chip.Sent()
	if len(sent) != 1 {
		t.Fatalf("chip transmitted %d frames, want 1", len(sent))
	}
	if !bytes.Equal(sent[0], frame) {
		t.Errorf("transmitted frame mismatch:\ngot  %v\nwant %v", sent[0], frame)
	}
	if got := d.Stats().FramesSent; got != 1 {
		t.Errorf("Stats().FramesSent = %d, want 1", got)
	}
}

func TestSendValidation(t *testing.T) {
	d, chip := newTestDriver(t)
	ctx := context.Background()

	if err := d.Send(ctx, nil); err == nil {
		t.Error("Send(nil) must fail")
	}
	if err := d.Send(ctx, []byte{}); err == nil {
		t.Error("Send of an empty frame must fail")
	}
	if err := d.Send(ctx, make([]byte, 1515)); err == nil {
		t.Error("Send of an oversized frame must fail")
	}
	if len(chip.Sent()) != 0 {
		t.Errorf("rejected frames reached the wire: %d", len(chip.Sent()))
	}
}

func TestSendNotInitialized(t *testing.T) {
	d := New(sim.NewChip())
	if err := d.Send(context.Background(), []byte{0x01}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Send() error = %v, want ErrNotInitialized", err)
	}
}

func TestSendAbortCauses(t *testing.T) {
	tests := []struct {
		name    string
		outcome sim.TxOutcome
		want    TransmitCause
	}{
		{"late collision", sim.TxOutcome{Collisions: 1, LateCollision: true}, CauseLateCollision},
		{"excessive collisions", sim.TxOutcome{Collisions: 15, ExcessiveCollision: true}, CauseExcessiveCollision},
		{"excessive deferral", sim.TxOutcome{ExcessiveDefer: true}, CauseExcessiveDeferral},
		{"underrun", sim.TxOutcome{Underrun: true}, CauseUnderrun},
		{"no carrier", sim.TxOutcome{NoCarrier: true}, CauseNoCarrier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, chip := newTestDriver(t)
			chip.SetTransmitOutcome(tt.outcome)

			err := d.Send(context.Background(), make([]byte, 100))
			var te *TransmitError
			if !errors.As(err, &te) {
				t.Fatalf("Send() error = %v, want *TransmitError", err)
			}
			if te.Cause != tt.want {
				t.Errorf("TransmitError.Cause = %v, want %v", te.Cause, tt.want)
			}
			if got := d.Stats().TxAborts; got != 1 {
				t.Errorf("Stats().TxAborts = %d, want 1", got)
			}

			// The abort is acknowledged; the next frame goes out clean.
			chip.SetTransmitOutcome(sim.TxOutcome{})
			if err := d.Send(context.Background(), make([]byte, 60)); err != nil {
				t.Fatalf("Send() after abort error = %v", err)
			}
		})
	}
}

func TestSendCountsCollisions(t *testing.T) {
	d, chip := newTestDriver(t, WithFullDuplex(false))
	chip.SetTransmitOutcome(sim.TxOutcome{Collisions: 2})

	if err := d.Send(context.Background(), make([]byte, 60)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := d.Stats().TxCollisions; got != 2 {
		t.Errorf("Stats().TxCollisions = %d, want 2", got)
	}
}

func TestSendTimeout(t *testing.T) {
	d, chip := newTestDriver(t, WithTransmitTimeout(2*time.Millisecond))
	chip.SetTransmitOutcome(sim.TxOutcome{Hang: true})

	err := d.Send(context.Background(), make([]byte, 60))
	var tte *TransmitTimeoutError
	if !errors.As(err, &tte) {
		t.Fatalf("Send() error = %v, want *TransmitTimeoutError", err)
	}

	// The transmit logic was reset: request-to-send no longer pending.
	if econ1 := chip.Register(protocol.ECON1); econ1&protocol.ECON1_TXRTS != 0 {
		t.Errorf("ECON1 = 0x%02X, TXRTS still set after timeout reset", econ1)
	}

	// The driver accepts new frames afterwards.
	chip.SetTransmitOutcome(sim.TxOutcome{})
	if err := d.Send(context.Background(), make([]byte, 60)); err != nil {
		t.Fatalf("Send() after timeout error = %v", err)
	}
}

func TestSendCancelled(t *testing.T) {
	d, chip := newTestDriver(t, WithTransmitTimeout(time.Second))
	chip.SetTransmitOutcome(sim.TxOutcome{Hang: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Send(ctx, make([]byte, 60)); !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, want context.Canceled", err)
	}
	if econ1 := chip.Register(protocol.ECON1); econ1&protocol.ECON1_TXRTS != 0 {
		t.Error("TXRTS still set after cancellation")
	}
}

func TestSendTo(t *testing.T) {
	d, chip := newTestDriver(t)

	dst := [6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	payload := []byte("who has 192.168.1.1")
	if err := d.SendTo(context.Background(), dst, EtherTypeARP, payload); err != nil {
		t.Fatalf("SendTo() error = %v", err)
	}

	sent := chip.Sent()
	if len(sent) != 1 {
		t.Fatalf("chip transmitted %d frames, want 1", len(sent))
	}
	frame := sent[0]

	if !bytes.Equal(frame[0:6], dst[:]) {
		t.Errorf("destination = %v, want %v", frame[0:6], dst)
	}
	mac := d.MACAddress()
	if !bytes.Equal(frame[6:12], mac[:]) {
		t.Errorf("source = %v, want %v", frame[6:12], mac)
	}
	if frame[12] != 0x08 || frame[13] != 0x06 {
		t.Errorf("ethertype = %02X%02X, want 0806", frame[12], frame[13])
	}
	if !bytes.Equal(frame[14:], payload) {
		t.Errorf("payload = %q, want %q", frame[14:], payload)
	}
}

func TestTransmitStateTransitions(t *testing.T) {
	tests := []struct {
		from, to txState
		want     bool
	}{
		{txIdle, txStaged, true},
		{txStaged, txSending, true},
		{txStaged, txIdle, true},
		{txSending, txDone, true},
		{txSending, txFailed, true},
		{txDone, txIdle, true},
		{txFailed, txIdle, true},
		{txIdle, txSending, false},
		{txStaged, txDone, false},
		{txSending, txStaged, false},
		{txDone, txSending, false},
	}

	for _, tt := range tests {
		if got := txCanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("txCanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
