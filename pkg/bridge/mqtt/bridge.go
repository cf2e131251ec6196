package mqtt

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/framework"
	"github.com/robotalks/datalink.go/pkg/serial"
)

// Transport is the channel side of a Bridge. *wireless.Bus satisfies it,
// a serial link does through SerialTransport.
type Transport interface {
	Write(v data.Value, ch channel.ID) error
	ReadWait(ctx context.Context, ch channel.ID) (data.Value, error)
}

// SerialTransport adapts a serial link, which only has the default
// channel, to Transport. Channel IDs are ignored.
type SerialTransport struct {
	Link *serial.Link
}

// Write implements Transport.
func (t SerialTransport) Write(v data.Value, _ channel.ID) error {
	return t.Link.Write(v)
}

// ReadWait implements Transport.
func (t SerialTransport) ReadWait(ctx context.Context, _ channel.ID) (data.Value, error) {
	return t.Link.ReadWait(ctx)
}

// Bridge forwards values between a Transport and a broker.
type Bridge struct {
	Transport Transport
	PubSub    PubSub
	Format    Format
	Routes    []Route
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "mqtt-bridge"
}

// Run implements framework.Runnable. Down routes are subscribed first;
// one task per up route then waits on its channel until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	format := b.Format
	if format == nil {
		format = RawFormat{}
	}
	var subs []Unsubscriber
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()
	runner := framework.NewRunnerWith(ctx)
	for _, r := range b.Routes {
		r := r
		switch r.Direction {
		case Down:
			sub, err := b.PubSub.Subscribe(r.Topic, func(topic string, payload []byte) {
				b.down(format, r, topic, payload)
			})
			if err != nil {
				runner.Stop()
				return err
			}
			subs = append(subs, sub)
		case Up:
			runner.Go(framework.NamedRun(r.String(), framework.RunFunc(func(ctx context.Context) error {
				return b.up(ctx, format, r)
			})))
		}
		glog.Infof("route %s", r)
	}
	<-ctx.Done()
	return runner.Wait()
}

func (b *Bridge) up(ctx context.Context, format Format, r Route) error {
	for {
		v, err := b.Transport.ReadWait(ctx, r.Channel)
		if err != nil {
			return err
		}
		payload, err := format.Marshal(v)
		if err != nil {
			glog.Warningf("route %s: drop %v: %v", r, v, err)
			continue
		}
		if err = b.PubSub.Publish(r.Topic, payload); err != nil {
			glog.Warningf("route %s: publish: %v", r, err)
		}
	}
}

func (b *Bridge) down(format Format, r Route, topic string, payload []byte) {
	v, err := format.Unmarshal(payload)
	if err != nil {
		glog.V(1).Infof("route %s: drop message on %q: %v", r, topic, err)
		return
	}
	if err = b.Transport.Write(v, r.Channel); err != nil {
		glog.Warningf("route %s: write: %v", r, err)
	}
}
