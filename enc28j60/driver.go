package enc28j60

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-enc28j60/protocol"
	"github.com/moffa90/go-enc28j60/spi"
)

// DefaultMAC is the station address programmed when no WithMACAddress
// option is given. The ENC28J60 ships without a factory-burned address;
// real deployments should always supply their own.
var DefaultMAC = [6]byte{0x02, 0x00, 0xC0, 0x28, 0x16, 0x60}

// resetSettle is the delay after a system reset before register access.
// The data sheet asks for 50 us before touching PHY registers; one
// millisecond keeps the margin comfortable on any host.
const resetSettle = time.Millisecond

// buggyRevisions lists silicon revisions whose CLKRDY flag is unreliable
// after a soft reset (errata issue 2). For these the driver waits out the
// oscillator startup time instead of polling.
var buggyRevisions = map[byte]bool{0x02: true, 0x05: true, 0x06: true, 0x08: true}

// Driver is the ENC28J60 driver handle. It owns exclusive access to the
// bus transport and all chip-mirroring state (current register bank, ring
// pointers), so it is NOT safe for concurrent use: callers needing access
// from several goroutines must serialize whole operations externally.
// Independent Driver instances over independent transports do not interfere.
type Driver struct {
	dev  *spi.Device
	regs *regFile
	buf  *bufferManager
	cfg  Config

	rx rxState
	tx txState

	mac         [6]byte
	revision    byte
	initialized bool
	stats       Stats
}

// New creates a Driver over the given transport with the given options.
// The chip is not touched until Initialize.
//
// Example:
//
//	transport, err := spi.Open("/dev/spidev0.0", 8_000_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	drv := enc28j60.New(transport,
//	    enc28j60.WithMACAddress(mac),
//	    enc28j60.WithReceiveBufferSize(0x1800),
//	)
func New(t spi.Transport, opts ...Option) *Driver {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	dev := spi.NewDevice(t)
	regs := newRegFile(dev)
	return &Driver{
		dev:  dev,
		regs: regs,
		buf:  newBufferManager(regs),
		cfg:  cfg,
		mac:  cfg.MAC,
	}
}

// Initialize resets the controller and brings it to a receiving state:
// soft reset, clock-ready wait, buffer and filter configuration, MAC and
// PHY initialization, then receive enable.
//
// The clock-ready wait is bounded by the configured init timeout and by
// ctx; on expiry it returns a *InitTimeoutError and the driver stays
// uninitialized.
func (d *Driver) Initialize(ctx context.Context) error {
	if err := d.reset(); err != nil {
		return err
	}

	revision, err := d.regs.read(protocol.EREVID)
	if err != nil {
		return err
	}
	d.revision = revision & 0x1F

	if err := d.waitClockReady(ctx); err != nil {
		return err
	}

	// Buffer pointer auto-increment is assumed by every RBM/WBM burst.
	if err := d.regs.setBits(protocol.ECON2, protocol.ECON2_AUTOINC); err != nil {
		return err
	}

	if err := d.buf.configure(d.cfg.ReceiveBufferSize); err != nil {
		return err
	}
	if err := d.configureFilters(); err != nil {
		return err
	}
	if err := d.configureMAC(); err != nil {
		return err
	}
	if err := d.configurePHY(); err != nil {
		return err
	}

	// Interrupt pin on packet arrival, so callers wired to INT can sleep
	// between polls.
	if err := d.regs.write(protocol.EIE, protocol.EIE_INTIE|protocol.EIE_PKTIE); err != nil {
		return err
	}

	if err := d.regs.setBits(protocol.ECON1, protocol.ECON1_RXEN); err != nil {
		return err
	}

	d.initialized = true
	d.rx = rxIdle
	d.tx = txIdle

	d.logInfo("controller initialized",
		"revision", fmt.Sprintf("0x%02X", d.revision),
		"mac", fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
			d.mac[0], d.mac[1], d.mac[2], d.mac[3], d.mac[4], d.mac[5]),
		"rx_ring", d.cfg.ReceiveBufferSize,
		"full_duplex", d.cfg.FullDuplex,
	)
	return nil
}

// reset issues the soft reset command and invalidates all cached chip
// state.
func (d *Driver) reset() error {
	if err := d.dev.SoftReset(); err != nil {
		return err
	}
	d.regs.invalidateBank()
	d.initialized = false
	time.Sleep(resetSettle)
	return nil
}

// waitClockReady polls ESTAT.CLKRDY until set, bounded by the init timeout.
// Revisions with the unreliable-CLKRDY erratum get a fixed delay instead.
func (d *Driver) waitClockReady(ctx context.Context) error {
	if buggyRevisions[d.revision] {
		d.logDebug("clkrdy erratum revision, using fixed delay", "revision", d.revision)
		time.Sleep(resetSettle)
		return nil
	}

	deadline := time.Now().Add(d.cfg.InitTimeout)
	for {
		estat, err := d.regs.read(protocol.ESTAT)
		if err != nil {
			return err
		}
		if estat&protocol.ESTAT_CLKRDY != 0 {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("initialization cancelled: %w", err)
		}
		if time.Now().After(deadline) {
			return &InitTimeoutError{Timeout: d.cfg.InitTimeout}
		}
		time.Sleep(d.cfg.PollInterval)
	}
}

func (d *Driver) configureFilters() error {
	filter := byte(protocol.ERXFCON_UCEN | protocol.ERXFCON_CRCEN | protocol.ERXFCON_BCEN)
	if d.cfg.Promiscuous {
		filter = 0
	}
	return d.regs.write(protocol.ERXFCON, filter)
}

// configureMAC brings the MAC out of reset: receive enable, frame checks,
// padding and CRC generation, maximum frame length, inter-packet gaps, and
// the station address.
func (d *Driver) configureMAC() error {
	macon1 := byte(protocol.MACON1_MARXEN)
	if d.cfg.FullDuplex {
		// Honor pause frames both ways in full duplex.
		macon1 |= protocol.MACON1_RXPAUS | protocol.MACON1_TXPAUS
	}
	if err := d.regs.write(protocol.MACON1, macon1); err != nil {
		return err
	}

	// Pad to 60 bytes, append CRC, check frame lengths.
	macon3 := byte(protocol.MACON3_PADCFG0 | protocol.MACON3_TXCRCEN | protocol.MACON3_FRMLNEN)
	if d.cfg.FullDuplex {
		macon3 |= protocol.MACON3_FULDPX
	}
	if err := d.regs.write(protocol.MACON3, macon3); err != nil {
		return err
	}

	if err := d.regs.writePair(protocol.MAMXFLL, protocol.MAMXFLH, protocol.MaxFrameLength); err != nil {
		return err
	}

	// Recommended inter-packet gap values per data sheet section 6.5.
	bbipg := byte(0x12)
	if d.cfg.FullDuplex {
		bbipg = 0x15
	}
	if err := d.regs.write(protocol.MABBIPG, bbipg); err != nil {
		return err
	}
	if err := d.regs.write(protocol.MAIPGL, 0x12); err != nil {
		return err
	}
	if !d.cfg.FullDuplex {
		if err := d.regs.write(protocol.MAIPGH, 0x0C); err != nil {
			return err
		}
	}

	return d.programMAC(d.mac)
}

// programMAC writes the station address and reads it back. MAC registers
// sit in the dummy-byte block, so the read-back also proves the transport
// handles that path.
func (d *Driver) programMAC(mac [6]byte) error {
	regs := [6]protocol.ControlRegister{
		protocol.MAADR1, protocol.MAADR2, protocol.MAADR3,
		protocol.MAADR4, protocol.MAADR5, protocol.MAADR6,
	}

	for i, reg := range regs {
		if err := d.regs.write(reg, mac[i]); err != nil {
			return err
		}
	}

	for i, reg := range regs {
		got, err := d.regs.read(reg)
		if err != nil {
			return err
		}
		if got != mac[i] {
			return fmt.Errorf("mac address verify failed: %s = 0x%02X, want 0x%02X", reg.Name, got, mac[i])
		}
	}
	return nil
}

// configurePHY matches PHY duplex to the MAC and, in half duplex, disables
// loopback of transmitted frames.
func (d *Driver) configurePHY() error {
	var phcon1 uint16
	if d.cfg.FullDuplex {
		phcon1 = protocol.PHCON1_PDPXMD
	}
	if err := d.regs.writePHY(protocol.PHCON1, phcon1); err != nil {
		return err
	}

	var phcon2 uint16
	if !d.cfg.FullDuplex {
		phcon2 = protocol.PHCON2_HDLDIS
	}
	return d.regs.writePHY(protocol.PHCON2, phcon2)
}

// LinkUp reads the PHY link status. The value is always re-read from
// hardware, never cached: callers that want a last-known value can keep
// their own copy.
func (d *Driver) LinkUp() (bool, error) {
	if !d.initialized {
		return false, ErrNotInitialized
	}
	phstat2, err := d.regs.readPHY(protocol.PHSTAT2)
	if err != nil {
		return false, err
	}
	return phstat2&protocol.PHSTAT2_LSTAT != 0, nil
}

// MACAddress returns the station address the driver programs during
// Initialize.
func (d *Driver) MACAddress() [6]byte {
	return d.mac
}

// Revision returns the silicon revision read during Initialize.
func (d *Driver) Revision() byte {
	return d.revision
}

// Stats returns a copy of the driver's cumulative counters.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Reset issues a soft reset and leaves the driver uninitialized. Call
// Initialize to bring the controller back up.
func (d *Driver) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.reset()
}

// Close resets the controller and releases the transport.
func (d *Driver) Close() error {
	_ = d.reset()
	return d.dev.Close()
}

func (d *Driver) emit(e Event) {
	if d.cfg.EventCallback != nil {
		d.cfg.EventCallback(e)
	}
}

func (d *Driver) logDebug(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Debug(msg, keysAndValues...)
	}
}

func (d *Driver) logInfo(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Info(msg, keysAndValues...)
	}
}

func (d *Driver) logError(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Error(msg, keysAndValues...)
	}
}
