package mqtt

import (
	"flag"
	"os"
	"strings"

	"github.com/robotalks/datalink.go/pkg/env"
)

// Config provides common options to setup a Bridge.
type Config struct {
	// BrokerURL e.g. mqtt://host:port/topic-prefix/
	BrokerURL string
	// Format of payloads, raw or json.
	Format string
	Routes []string
}

type routesFlag struct {
	routes *[]string
}

func (f routesFlag) String() string {
	if f.routes == nil {
		return ""
	}
	return strings.Join(*f.routes, ",")
}

func (f routesFlag) Set(s string) error {
	*f.routes = append(*f.routes, s)
	return nil
}

var defaultConfig = Config{
	BrokerURL: "mqtt://localhost:1883/datalink/",
	Format:    "raw",
}

func init() {
	if val := os.Getenv("DATALINK_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt-url", defaultConfig.BrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.Format, "mqtt-format", defaultConfig.Format, "Payload format: raw or json.")
	flag.Var(routesFlag{&defaultConfig.Routes}, "route", "Route up:<channel>=<topic> or down:<channel>=<topic>, repeatable.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Routes = append([]string(nil), defaultConfig.Routes...)
	return &conf
}

// NewClient creates a Client of the broker. The client ID defaults to one
// derived from the machine ID.
func (c *Config) NewClient() (*Client, error) {
	opts, prefix, err := ClientOptionsFromURL(c.BrokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID(env.ClientID("datalink"))
	}
	return NewClient(opts, prefix), nil
}

// NewBridge creates a Bridge over transport. The client is returned
// unconnected for the caller to Connect and Close.
func (c *Config) NewBridge(transport Transport) (*Bridge, *Client, error) {
	routes, err := ParseRoutes(c.Routes)
	if err != nil {
		return nil, nil, err
	}
	format, err := FormatByName(c.Format)
	if err != nil {
		return nil, nil, err
	}
	client, err := c.NewClient()
	if err != nil {
		return nil, nil, err
	}
	return &Bridge{
		Transport: transport,
		PubSub:    client,
		Format:    format,
		Routes:    routes,
	}, client, nil
}
