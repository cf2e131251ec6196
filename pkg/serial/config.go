package serial

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tarm "github.com/tarm/serial"

	"github.com/robotalks/datalink.go/pkg/framing"
	"github.com/robotalks/datalink.go/pkg/framing/cobs"
	"github.com/robotalks/datalink.go/pkg/framing/stream"
	"github.com/robotalks/datalink.go/pkg/framing/websocket"
	"github.com/robotalks/datalink.go/pkg/stats"
)

// Framing names.
const (
	FramingCOBS      = "cobs"
	FramingStream    = "stream"
	FramingWebsocket = "websocket"
)

// Config provides common options to setup a Link.
type Config struct {
	// Device is the serial port, e.g. /dev/ttyUSB0, or a ws:// URL of a
	// serial-over-websocket bridge.
	Device string
	Baud   int
	// Framing is cobs (PacketSerial compatible), stream or websocket.
	// A ws:// device always uses websocket.
	Framing       string
	MaxFrameSize  int
	QueueCapacity int
}

var defaultConfig = Config{
	Baud:         9600,
	Framing:      FramingCOBS,
	MaxFrameSize: DefaultMaxFrameSize,
}

func init() {
	if val := os.Getenv("DATALINK_SERIAL_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv("DATALINK_SERIAL_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil && baud > 0 {
			defaultConfig.Baud = baud
		}
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "serial-dev", defaultConfig.Device, "Serial device.")
	flag.IntVar(&defaultConfig.Baud, "serial-baud", defaultConfig.Baud, "Serial baud rate.")
	flag.StringVar(&defaultConfig.Framing, "serial-framing", defaultConfig.Framing, "Serial framing: cobs, stream or websocket.")
	flag.IntVar(&defaultConfig.MaxFrameSize, "serial-frame-size", defaultConfig.MaxFrameSize, "Max serial frame size in bytes.")
	flag.IntVar(&defaultConfig.QueueCapacity, "serial-queue", defaultConfig.QueueCapacity, "Inbound queue bound, 0 for unbounded.")
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

// FramingFactory resolves the configured framing.
func (c *Config) FramingFactory() (framing.Factory, error) {
	framingName := c.Framing
	if c.isWebsocket() {
		framingName = FramingWebsocket
	}
	switch framingName {
	case "", FramingCOBS:
		return cobs.Factory(c.MaxFrameSize), nil
	case FramingStream:
		return stream.Factory(c.MaxFrameSize), nil
	case FramingWebsocket:
		return websocket.Factory(c.MaxFrameSize), nil
	default:
		return nil, fmt.Errorf("unknown serial framing: %q", c.Framing)
	}
}

func (c *Config) isWebsocket() bool {
	return strings.HasPrefix(c.Device, "ws://") || strings.HasPrefix(c.Device, "wss://")
}

// Opener returns an Opener of the configured serial port.
func (c *Config) Opener() Opener {
	if c.isWebsocket() {
		url := c.Device
		return func() (io.ReadWriteCloser, error) {
			return websocket.Dial(url)
		}
	}
	conf := &tarm.Config{Name: c.Device, Baud: c.Baud}
	return func() (io.ReadWriteCloser, error) {
		if conf.Name == "" {
			return nil, ErrNoDevice
		}
		return tarm.OpenPort(conf)
	}
}

// NewLink creates a Link using current config. Metrics are counted under
// the "serial" transport of the default prometheus registry.
func (c *Config) NewLink() (*Link, error) {
	factory, err := c.FramingFactory()
	if err != nil {
		return nil, err
	}
	l := NewLink(c.Opener())
	if c.MaxFrameSize > 0 {
		l.MaxFrameSize = c.MaxFrameSize
	}
	l.Framing = factory
	l.QueueCapacity = c.QueueCapacity
	l.Metrics = stats.Default("serial")
	return l, nil
}
