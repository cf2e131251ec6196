// Package monitor prints values received on channels, polled on a loop.
package monitor

import (
	"fmt"
	"io"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/data/pbdata"
	"github.com/robotalks/datalink.go/pkg/framework"
	"github.com/robotalks/datalink.go/pkg/serial"
)

// Source is polled for queued values. *wireless.Bus satisfies it.
type Source interface {
	ReadBatch(buf []data.Value, ch channel.ID) int
}

// SerialSource adapts a serial link to Source; it only has the default
// channel.
type SerialSource struct {
	Link *serial.Link
}

// ReadBatch implements Source.
func (s SerialSource) ReadBatch(buf []data.Value, ch channel.ID) int {
	if ch != channel.Default {
		return 0
	}
	return s.Link.ReadBatch(buf)
}

// Monitor drains channels of a Source on each loop iteration.
type Monitor struct {
	Source   Source
	Channels []channel.ID
	Output   io.Writer
	JSON     bool
	// BatchSize bounds values read per channel per iteration.
	BatchSize int
}

// AddToLoop implements framework.LoopAdder.
func (m *Monitor) AddToLoop(l *framework.Loop) {
	l.AddController(m)
}

// Control implements framework.Controller. When a channel fills a whole
// batch the next iteration is triggered immediately.
func (m *Monitor) Control(cc framework.ControlContext) error {
	size := m.BatchSize
	if size <= 0 {
		size = 16
	}
	buf := make([]data.Value, size)
	for _, ch := range m.Channels {
		n := m.Source.ReadBatch(buf, ch)
		for _, v := range buf[:n] {
			if err := m.print(cc, ch, v); err != nil {
				return err
			}
		}
		if n == size {
			cc.TriggerNext()
		}
	}
	return nil
}

func (m *Monitor) print(cc framework.ControlContext, ch channel.ID, v data.Value) error {
	ts := cc.Time().Format("15:04:05.000")
	if !m.JSON {
		_, err := fmt.Fprintf(m.Output, "%s [%d] %s\n", ts, ch, v)
		return err
	}
	out, err := pbdata.MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(m.Output, `{"time":%q,"channel":%d,"value":%s}`+"\n", ts, ch, out)
	return err
}
