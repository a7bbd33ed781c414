package enc28j60

import "time"

// Config holds the driver configuration.
type Config struct {
	// MAC is the station address programmed into the MAADR registers
	MAC [6]byte

	// ReceiveBufferSize is the receive ring size in bytes. The ring
	// starts at address 0; the remaining packet memory is the transmit
	// window. Validated during Initialize.
	ReceiveBufferSize uint16

	// FullDuplex selects full-duplex MAC and PHY operation
	FullDuplex bool

	// Promiscuous disables the receive filters so every frame on the
	// wire is accepted
	Promiscuous bool

	// InitTimeout bounds the wait for the clock-ready flag after reset
	InitTimeout time.Duration

	// TransmitTimeout bounds the wait for transmit completion
	TransmitTimeout time.Duration

	// PollInterval is the sleep between status polls while waiting for
	// reset or transmit completion
	PollInterval time.Duration

	// Logger receives driver logs (optional)
	Logger Logger

	// EventCallback receives recoverable events (optional)
	EventCallback EventCallback
}

// defaultConfig returns the default configuration: a 4 KB receive ring,
// full duplex, unicast+broadcast filtering with CRC checking.
func defaultConfig() Config {
	return Config{
		MAC:               DefaultMAC,
		ReceiveBufferSize: 0x1000,
		FullDuplex:        true,
		InitTimeout:       50 * time.Millisecond,
		TransmitTimeout:   100 * time.Millisecond,
		PollInterval:      100 * time.Microsecond,
	}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithMACAddress sets the station MAC address programmed during
// initialization.
//
// Example:
//
//	drv := enc28j60.New(transport,
//	    enc28j60.WithMACAddress([6]byte{0x02, 0x00, 0xC0, 0xFF, 0xEE, 0x01}),
//	)
func WithMACAddress(mac [6]byte) Option {
	return func(c *Config) {
		c.MAC = mac
	}
}

// WithReceiveBufferSize sets the receive ring size in bytes. The transmit
// window gets the rest of the 8 KB packet memory and must still hold one
// maximum-length frame; Initialize rejects sizes that violate that.
func WithReceiveBufferSize(size uint16) Option {
	return func(c *Config) {
		c.ReceiveBufferSize = size
	}
}

// WithFullDuplex selects full or half duplex operation. Default is full
// duplex.
func WithFullDuplex(full bool) Option {
	return func(c *Config) {
		c.FullDuplex = full
	}
}

// WithPromiscuous disables the receive filters, delivering every frame
// regardless of destination address or CRC filter.
func WithPromiscuous(promiscuous bool) Option {
	return func(c *Config) {
		c.Promiscuous = promiscuous
	}
}

// WithInitTimeout bounds the wait for the controller's clock-ready flag
// during Initialize.
func WithInitTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.InitTimeout = timeout
		}
	}
}

// WithTransmitTimeout bounds the wait for transmit completion in Send.
func WithTransmitTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.TransmitTimeout = timeout
		}
	}
}

// WithPollInterval sets the sleep between status polls. Shorter intervals
// lower latency at the cost of bus traffic.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithLogger sets a logger for driver operations.
//
// Example:
//
//	drv := enc28j60.New(transport, enc28j60.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithEventCallback sets a callback for recoverable driver events.
func WithEventCallback(callback EventCallback) Option {
	return func(c *Config) {
		c.EventCallback = callback
	}
}
