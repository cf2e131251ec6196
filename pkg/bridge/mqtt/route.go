package mqtt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/data/pbdata"
)

// Direction of a Route.
type Direction int

const (
	// Up forwards values received on a channel to a topic.
	Up Direction = iota
	// Down writes messages of a topic to a channel.
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Route connects a channel with a topic.
type Route struct {
	Direction Direction
	Channel   channel.ID
	Topic     string
}

// ParseRoute parses up:<channel>=<topic> or down:<channel>=<topic>.
func ParseRoute(s string) (r Route, err error) {
	dir, rest, ok := strings.Cut(s, ":")
	if !ok {
		return r, fmt.Errorf("invalid route %q: missing direction", s)
	}
	switch dir {
	case "up":
		r.Direction = Up
	case "down":
		r.Direction = Down
	default:
		return r, fmt.Errorf("invalid route %q: unknown direction %q", s, dir)
	}
	ch, topic, ok := strings.Cut(rest, "=")
	if !ok || topic == "" {
		return r, fmt.Errorf("invalid route %q: missing topic", s)
	}
	id, err := strconv.ParseUint(ch, 10, 8)
	if err != nil {
		return r, fmt.Errorf("invalid route %q: bad channel %q", s, ch)
	}
	if r.Direction == Up && isWildcard(topic) {
		return r, fmt.Errorf("invalid route %q: can't publish to a wildcard", s)
	}
	r.Channel, r.Topic = channel.ID(id), topic
	return r, nil
}

// ParseRoutes parses routes and rejects more than one up route per channel
// as they would compete for the same queued values.
func ParseRoutes(specs []string) ([]Route, error) {
	routes := make([]Route, 0, len(specs))
	ups := make(map[channel.ID]bool)
	for _, s := range specs {
		r, err := ParseRoute(s)
		if err != nil {
			return nil, err
		}
		if r.Direction == Up {
			if ups[r.Channel] {
				return nil, fmt.Errorf("channel %d is routed up more than once", r.Channel)
			}
			ups[r.Channel] = true
		}
		routes = append(routes, r)
	}
	return routes, nil
}

func (r Route) String() string {
	return fmt.Sprintf("%s:%d=%s", r.Direction, r.Channel, r.Topic)
}

// Format converts values to and from message payloads.
type Format interface {
	Marshal(data.Value) ([]byte, error)
	Unmarshal([]byte) (data.Value, error)
}

// RawFormat carries the wire encoding as is.
type RawFormat struct{}

// Marshal implements Format.
func (RawFormat) Marshal(v data.Value) ([]byte, error) {
	return data.Marshal(v)
}

// Unmarshal implements Format.
func (RawFormat) Unmarshal(payload []byte) (data.Value, error) {
	return data.Unmarshal(payload)
}

// JSONFormat carries values as JSON. Integer widths are not preserved.
type JSONFormat struct{}

// Marshal implements Format.
func (JSONFormat) Marshal(v data.Value) ([]byte, error) {
	s, err := pbdata.MarshalJSON(v)
	return []byte(s), err
}

// Unmarshal implements Format.
func (JSONFormat) Unmarshal(payload []byte) (data.Value, error) {
	return pbdata.UnmarshalJSON(string(payload))
}

// FormatByName resolves raw or json.
func FormatByName(name string) (Format, error) {
	switch name {
	case "", "raw":
		return RawFormat{}, nil
	case "json":
		return JSONFormat{}, nil
	default:
		return nil, fmt.Errorf("unknown payload format %q", name)
	}
}
