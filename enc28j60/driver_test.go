package enc28j60

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/moffa90/go-enc28j60/protocol"
	"github.com/moffa90/go-enc28j60/sim"
	"github.com/moffa90/go-enc28j60/spi"
)

// newTestDriver builds an initialized driver over a simulated chip. The
// poll interval is dropped to keep timeout tests fast.
func newTestDriver(t *testing.T, opts ...Option) (*Driver, *sim.Chip) {
	t.Helper()

	chip := sim.NewChip()
	all := append([]Option{WithPollInterval(10 * time.Microsecond)}, opts...)
	d := New(chip, all...)
	if err := d.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return d, chip
}

// assertOpsInOrder checks that want appears as a subsequence of ops,
// ignoring unrelated operations in between.
func assertOpsInOrder(t *testing.T, ops []sim.Op, want []sim.Op) {
	t.Helper()

	i := 0
	for _, op := range ops {
		if i < len(want) && op.Matches(want[i].Kind, want[i].Target, want[i].Value) {
			i++
		}
	}
	if i != len(want) {
		var log strings.Builder
		for _, op := range ops {
			log.WriteString("  " + op.String() + "\n")
		}
		t.Fatalf("missing op %v (step %d of %d) in log:\n%s", want[i], i+1, len(want), log.String())
	}
}

func TestInitializeProgramsController(t *testing.T) {
	d, chip := newTestDriver(t)

	if got := d.Revision(); got != sim.DefaultRevision {
		t.Errorf("Revision() = 0x%02X, want 0x%02X", got, sim.DefaultRevision)
	}

	checks := []struct {
		name string
		reg  protocol.ControlRegister
		want byte
	}{
		{"ring start low", protocol.ERXSTL, 0x00},
		{"ring start high", protocol.ERXSTH, 0x00},
		{"ring end low", protocol.ERXNDL, 0xFF},
		{"ring end high", protocol.ERXNDH, 0x0F},
		{"max frame low", protocol.MAMXFLL, 0xEE},
		{"max frame high", protocol.MAMXFLH, 0x05},
		{"back-to-back gap", protocol.MABBIPG, 0x15},
		{"filters", protocol.ERXFCON, protocol.ERXFCON_UCEN | protocol.ERXFCON_CRCEN | protocol.ERXFCON_BCEN},
		{"interrupts", protocol.EIE, protocol.EIE_INTIE | protocol.EIE_PKTIE},
	}
	for _, c := range checks {
		if got := chip.Register(c.reg); got != c.want {
			t.Errorf("%s: %s = 0x%02X, want 0x%02X", c.name, c.reg.Name, got, c.want)
		}
	}

	if macon1 := chip.Register(protocol.MACON1); macon1&protocol.MACON1_MARXEN == 0 {
		t.Errorf("MACON1 = 0x%02X, MAC receive not enabled", macon1)
	}
	if macon3 := chip.Register(protocol.MACON3); macon3&protocol.MACON3_FULDPX == 0 {
		t.Errorf("MACON3 = 0x%02X, full duplex not set by default", macon3)
	}
	if econ1 := chip.Register(protocol.ECON1); econ1&protocol.ECON1_RXEN == 0 {
		t.Errorf("ECON1 = 0x%02X, receive not enabled", econ1)
	}
	if econ2 := chip.Register(protocol.ECON2); econ2&protocol.ECON2_AUTOINC == 0 {
		t.Errorf("ECON2 = 0x%02X, pointer auto-increment not enabled", econ2)
	}

	mac := d.MACAddress()
	macRegs := []protocol.ControlRegister{
		protocol.MAADR1, protocol.MAADR2, protocol.MAADR3,
		protocol.MAADR4, protocol.MAADR5, protocol.MAADR6,
	}
	for i, reg := range macRegs {
		if got := chip.Register(reg); got != mac[i] {
			t.Errorf("%s = 0x%02X, want 0x%02X", reg.Name, got, mac[i])
		}
	}
}

func TestInitializeHalfDuplex(t *testing.T) {
	_, chip := newTestDriver(t, WithFullDuplex(false))

	if macon3 := chip.Register(protocol.MACON3); macon3&protocol.MACON3_FULDPX != 0 {
		t.Errorf("MACON3 = 0x%02X, full duplex set in half-duplex mode", macon3)
	}
	if got := chip.Register(protocol.MABBIPG); got != 0x12 {
		t.Errorf("MABBIPG = 0x%02X, want 0x12", got)
	}
	if got := chip.Register(protocol.MAIPGH); got != 0x0C {
		t.Errorf("MAIPGH = 0x%02X, want 0x0C", got)
	}
	if phcon1 := chip.PHYRegister(protocol.PHCON1); phcon1&protocol.PHCON1_PDPXMD != 0 {
		t.Errorf("PHCON1 = 0x%04X, PHY forced to full duplex", phcon1)
	}
	if phcon2 := chip.PHYRegister(protocol.PHCON2); phcon2&protocol.PHCON2_HDLDIS == 0 {
		t.Errorf("PHCON2 = 0x%04X, half-duplex loopback not disabled", phcon2)
	}
}

func TestInitializePromiscuous(t *testing.T) {
	_, chip := newTestDriver(t, WithPromiscuous(true))

	if got := chip.Register(protocol.ERXFCON); got != 0 {
		t.Errorf("ERXFCON = 0x%02X, want 0 in promiscuous mode", got)
	}
}

func TestInitializeCustomMAC(t *testing.T) {
	mac := [6]byte{0x02, 0x12, 0x34, 0x56, 0x78, 0x9A}
	d, chip := newTestDriver(t, WithMACAddress(mac))

	if got := d.MACAddress(); got != mac {
		t.Errorf("MACAddress() = %v, want %v", got, mac)
	}
	if got := chip.Register(protocol.MAADR1); got != mac[0] {
		t.Errorf("MAADR1 = 0x%02X, want 0x%02X", got, mac[0])
	}
	if got := chip.Register(protocol.MAADR6); got != mac[5] {
		t.Errorf("MAADR6 = 0x%02X, want 0x%02X", got, mac[5])
	}
}

func TestInitializeClockTimeout(t *testing.T) {
	// A scripted transport answers every read with zero, so clock ready
	// never comes and the revision is not in the erratum set.
	st := &spi.ScriptedTransport{}
	d := New(st,
		WithInitTimeout(2*time.Millisecond),
		WithPollInterval(100*time.Microsecond),
	)

	err := d.Initialize(context.Background())

	var ite *InitTimeoutError
	if !errors.As(err, &ite) {
		t.Fatalf("Initialize() error = %v, want *InitTimeoutError", err)
	}
	if ite.Timeout != 2*time.Millisecond {
		t.Errorf("Timeout = %v, want 2ms", ite.Timeout)
	}

	if _, err := d.Receive(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Receive() after failed init = %v, want ErrNotInitialized", err)
	}
}

func TestInitializeCancelled(t *testing.T) {
	st := &spi.ScriptedTransport{}
	d := New(st, WithInitTimeout(time.Second), WithPollInterval(100*time.Microsecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Initialize(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Initialize() error = %v, want context.Canceled", err)
	}
}

func TestLinkUp(t *testing.T) {
	d, chip := newTestDriver(t)

	chip.SetLink(true)
	for i := 0; i < 2; i++ {
		up, err := d.LinkUp()
		if err != nil {
			t.Fatalf("LinkUp() error = %v", err)
		}
		if !up {
			t.Fatalf("LinkUp() call %d = false, want true", i+1)
		}
	}

	// The status is re-read from the PHY every call, never cached.
	chip.SetLink(false)
	up, err := d.LinkUp()
	if err != nil {
		t.Fatalf("LinkUp() error = %v", err)
	}
	if up {
		t.Error("LinkUp() = true after link down")
	}
}

func TestLinkUpNotInitialized(t *testing.T) {
	d := New(sim.NewChip())
	if _, err := d.LinkUp(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("LinkUp() error = %v, want ErrNotInitialized", err)
	}
}

func TestResetLeavesDriverUninitialized(t *testing.T) {
	d, chip := newTestDriver(t)

	if err := d.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if _, err := d.Receive(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Receive() after Reset = %v, want ErrNotInitialized", err)
	}
	if err := d.Send(context.Background(), []byte{0x01}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Send() after Reset = %v, want ErrNotInitialized", err)
	}

	// A second Initialize brings the controller back.
	if err := d.Initialize(context.Background()); err != nil {
		t.Fatalf("re-Initialize() error = %v", err)
	}
	if err := chip.Inject([]byte{0xAA, 0xBB, 0xCC}); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if f, err := d.Receive(); err != nil || f == nil {
		t.Fatalf("Receive() after re-init = %v, %v", f, err)
	}
}

func TestNewNilTransport(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) must panic")
		}
	}()
	New(nil)
}
