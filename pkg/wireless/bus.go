// Package wireless multiplexes logical channels over UDP datagrams.
// Each datagram carries exactly one encoded value. A channel transmits to
// any number of endpoints and receives from any number of local ports;
// a port may serve several channels, each receiving its own copy.
package wireless

import (
	"context"
	"net"
	"sort"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/framework"
	"github.com/robotalks/datalink.go/pkg/framing"
	"github.com/robotalks/datalink.go/pkg/stats"
)

// DefaultMaxFrameSize is the default datagram size limit.
const DefaultMaxFrameSize = 1024

// Bus is a wireless transport. Use NewBus or Config.NewBus.
type Bus struct {
	Network       Network
	MaxFrameSize  int
	QueueCapacity int
	DropPolicy    channel.DropPolicy
	Metrics       *stats.Metrics
	// OnReceive is called outside the lock for every queued copy.
	OnReceive func(channel.ID, data.Value)

	// rxLock serializes listener creation and teardown, including joins.
	rxLock sync.Mutex

	// lock guards everything below.
	lock      sync.Mutex
	tx        txTable
	listeners map[int]*listener
	inbox     *channel.Inbox
	sender    net.PacketConn
}

type listener struct {
	bus      *Bus
	port     int
	conn     net.PacketConn
	channels channelSet
	task     *framework.Task
}

// NewBus creates a Bus on network.
func NewBus(network Network) *Bus {
	return &Bus{Network: network, MaxFrameSize: DefaultMaxFrameSize}
}

func (b *Bus) maxFrameSize() int {
	if b.MaxFrameSize > 0 {
		return b.MaxFrameSize
	}
	return DefaultMaxFrameSize
}

func (b *Bus) network() Network {
	if b.Network == nil {
		return &UDPNetwork{}
	}
	return b.Network
}

func (b *Bus) txLocked() txTable {
	if b.tx == nil {
		b.tx = make(txTable)
	}
	return b.tx
}

func (b *Bus) inboxLocked() *channel.Inbox {
	if b.inbox == nil {
		b.inbox = channel.NewInbox(b.QueueCapacity, b.DropPolicy)
	}
	return b.inbox
}

// TxAttach adds a destination of a channel. Attaching twice is a no-op.
func (b *Bus) TxAttach(ep Endpoint, ch channel.ID) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.txLocked().attach(ep, ch)
}

// TxDetach removes a destination of a channel.
func (b *Bus) TxDetach(ep Endpoint, ch channel.ID) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.txLocked().detach(ep, ch)
}

// TxDetachIP removes all destinations of a channel with the address.
func (b *Bus) TxDetachIP(ip net.IP, ch channel.ID) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.txLocked().detachIP(ip, ch)
}

// TxDetachPort removes all destinations of a channel with the port.
func (b *Bus) TxDetachPort(port int, ch channel.ID) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.txLocked().detachPort(port, ch)
}

// Endpoints returns a snapshot of the destinations of a channel.
func (b *Bus) Endpoints(ch channel.ID) []Endpoint {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.txLocked().endpoints(ch)
}

// Write sends v to every destination of ch. Nothing is sent when the
// encoding exceeds MaxFrameSize; framing.ErrFrameTooLarge is returned.
// A channel without destinations drops v silently. Socket errors are
// collected and returned after trying every destination.
func (b *Bus) Write(v data.Value, ch channel.ID) error {
	buf := make([]byte, b.maxFrameSize())
	n := data.Encode(buf, v)
	if n == 0 {
		b.Metrics.Dropped(stats.ReasonEncode)
		glog.V(1).Infof("wireless: drop value for channel %d: encoding exceeds %d bytes", ch, len(buf))
		return framing.ErrFrameTooLarge
	}
	b.lock.Lock()
	eps := b.txLocked().endpoints(ch)
	if len(eps) == 0 {
		b.lock.Unlock()
		return nil
	}
	conn, err := b.senderLocked()
	b.lock.Unlock()
	if err != nil {
		return err
	}
	errs := &framework.AggregatedError{}
	for _, ep := range eps {
		if _, err := conn.WriteTo(buf[:n], ep.UDPAddr()); err != nil {
			errs.Add(err)
			continue
		}
		b.Metrics.Sent()
		glog.V(3).Infof("wireless: sent %d bytes to %s on channel %d", n, ep, ch)
	}
	return errs.Aggregate()
}

// WriteBatch writes values in order. A value too large is skipped; the
// errors are aggregated.
func (b *Bus) WriteBatch(vs []data.Value, ch channel.ID) error {
	errs := &framework.AggregatedError{}
	for _, v := range vs {
		errs.Add(b.Write(v, ch))
	}
	return errs.Aggregate()
}

func (b *Bus) senderLocked() (net.PacketConn, error) {
	if b.sender == nil {
		conn, err := b.network().ListenPacket(0)
		if err != nil {
			return nil, err
		}
		b.sender = conn
	}
	return b.sender, nil
}

// RxAttach delivers datagrams received on port to ch. The first channel
// attached to a port opens the listener, as does any channel attached
// after the listener failed.
func (b *Bus) RxAttach(port int, ch channel.ID) error {
	b.rxLock.Lock()
	defer b.rxLock.Unlock()

	channels := channelSet{ch}
	b.lock.Lock()
	if l := b.listeners[port]; l != nil {
		select {
		case <-l.task.Done():
			// the listener failed, reopen the port for all its channels.
			channels = l.channels.add(ch)
			glog.Warningf("wireless: reopen port %d: %v", port, l.task.Err())
		default:
			l.channels = l.channels.add(ch)
			b.lock.Unlock()
			return nil
		}
	}
	b.lock.Unlock()

	conn, err := b.network().ListenPacket(port)
	if err != nil {
		return err
	}
	l := &listener{bus: b, port: port, conn: conn, channels: channels}
	b.lock.Lock()
	if b.listeners == nil {
		b.listeners = make(map[int]*listener)
	}
	b.listeners[port] = l
	b.inboxLocked()
	b.lock.Unlock()
	l.task = framework.Go(context.Background(), l)
	glog.V(1).Infof("wireless: listening on port %d", port)
	return nil
}

// RxDetach stops delivering datagrams from port to ch. The listener is
// closed once no channel is left.
func (b *Bus) RxDetach(port int, ch channel.ID) {
	b.rxLock.Lock()
	defer b.rxLock.Unlock()

	b.lock.Lock()
	l := b.listeners[port]
	if l == nil {
		b.lock.Unlock()
		return
	}
	l.channels = l.channels.remove(ch)
	if len(l.channels) > 0 {
		b.lock.Unlock()
		return
	}
	delete(b.listeners, port)
	b.lock.Unlock()

	l.task.Stop()
	glog.V(1).Infof("wireless: stopped listening on port %d", port)
}

// RxChannels returns the channels attached to port.
func (b *Bus) RxChannels(port int) []channel.ID {
	b.lock.Lock()
	defer b.lock.Unlock()
	if l := b.listeners[port]; l != nil {
		return append([]channel.ID(nil), l.channels...)
	}
	return nil
}

// RxPorts returns the ports being listened on, sorted.
func (b *Bus) RxPorts() []int {
	b.lock.Lock()
	defer b.lock.Unlock()
	ports := make([]int, 0, len(b.listeners))
	for port := range b.listeners {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports
}

// Available returns the number of values queued on ch.
func (b *Bus) Available(ch channel.ID) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.inboxLocked().Len(ch)
}

// Read pops the oldest value of ch. It never blocks and returns
// (Null, false) when nothing is queued.
func (b *Bus) Read(ch channel.ID) (data.Value, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.inboxLocked().Pop(ch)
}

// ReadBatch pops up to len(buf) values of ch and returns the count.
func (b *Bus) ReadBatch(buf []data.Value, ch channel.ID) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.inboxLocked().PopN(ch, buf)
}

// ReadWait pops the oldest value of ch, waiting until one arrives or ctx
// is done.
func (b *Bus) ReadWait(ctx context.Context, ch channel.ID) (data.Value, error) {
	b.lock.Lock()
	in := b.inboxLocked()
	b.lock.Unlock()
	return channel.Wait(ctx, &b.lock, in, ch)
}

// Close stops all listeners and closes the sending socket.
// Queued values stay readable.
func (b *Bus) Close() error {
	b.rxLock.Lock()
	defer b.rxLock.Unlock()

	b.lock.Lock()
	listeners, sender := b.listeners, b.sender
	b.listeners, b.sender = nil, nil
	b.lock.Unlock()

	errs := &framework.AggregatedError{}
	for _, l := range listeners {
		errs.Add(l.task.Stop())
	}
	if sender != nil {
		errs.Add(sender.Close())
	}
	return errs.Aggregate()
}

// Name implements framework.Named.
func (l *listener) Name() string {
	return "udp-listener"
}

// Run implements framework.Runnable.
func (l *listener) Run(ctx context.Context) error {
	return framework.RunWithContextCloser(ctx, l.conn, func() error {
		// one extra byte tells an oversized datagram from a full one.
		buf := make([]byte, l.bus.maxFrameSize()+1)
		for {
			n, addr, err := l.conn.ReadFrom(buf)
			if err != nil {
				return err
			}
			l.bus.Metrics.Received()
			if n > l.bus.maxFrameSize() {
				l.bus.Metrics.Dropped(stats.ReasonOversize)
				glog.V(2).Infof("wireless: drop oversized datagram from %v on port %d", addr, l.port)
				continue
			}
			v, err := data.Unmarshal(buf[:n])
			if err != nil {
				l.bus.Metrics.Dropped(stats.ReasonMalformed)
				glog.V(2).Infof("wireless: drop datagram from %v on port %d: %v", addr, l.port, err)
				continue
			}
			l.bus.deliver(l, v)
		}
	})
}

func (b *Bus) deliver(l *listener, v data.Value) {
	b.lock.Lock()
	channels := append(channelSet(nil), l.channels...)
	in := b.inboxLocked()
	for _, ch := range channels {
		admitted := in.Push(ch, v)
		if !admitted {
			b.Metrics.Dropped(stats.ReasonOverflow)
		}
		if admitted || b.DropPolicy == channel.DropOldest {
			b.Metrics.Queued(ch)
		}
	}
	b.lock.Unlock()
	if fn := b.OnReceive; fn != nil {
		for _, ch := range channels {
			fn(ch, v)
		}
	}
}
