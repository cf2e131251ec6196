package wireless

import (
	"flag"
	"os"

	"github.com/robotalks/datalink.go/pkg/stats"
)

// Config provides common options to setup a Bus.
type Config struct {
	// ListenHost is the local address sockets bind to, all if empty.
	ListenHost    string
	MaxFrameSize  int
	QueueCapacity int
}

var defaultConfig = Config{
	MaxFrameSize: DefaultMaxFrameSize,
}

func init() {
	if val := os.Getenv("DATALINK_LISTEN_HOST"); val != "" {
		defaultConfig.ListenHost = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ListenHost, "listen-host", defaultConfig.ListenHost, "Local address for UDP sockets.")
	flag.IntVar(&defaultConfig.MaxFrameSize, "udp-frame-size", defaultConfig.MaxFrameSize, "Max datagram size in bytes.")
	flag.IntVar(&defaultConfig.QueueCapacity, "udp-queue", defaultConfig.QueueCapacity, "Inbound queue bound per channel, 0 for unbounded.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewBus creates a Bus using current config. Metrics are counted under
// the "udp" transport of the default prometheus registry.
func (c *Config) NewBus() *Bus {
	b := NewBus(&UDPNetwork{Host: c.ListenHost})
	if c.MaxFrameSize > 0 {
		b.MaxFrameSize = c.MaxFrameSize
	}
	b.QueueCapacity = c.QueueCapacity
	b.Metrics = stats.Default("udp")
	return b
}
