package wireless

import (
	"fmt"
	"net"
	"sync"
	"time"
)

type memPacket struct {
	from    net.Addr
	to      *net.UDPAddr
	payload []byte
}

// memNetwork routes datagrams between memConns by port.
type memNetwork struct {
	lock     sync.Mutex
	conns    map[int]*memConn
	nextPort int
	sent     []memPacket
}

func newMemNetwork() *memNetwork {
	return &memNetwork{conns: make(map[int]*memConn), nextPort: 40000}
}

func (n *memNetwork) ListenPacket(port int) (net.PacketConn, error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	if port == 0 {
		port = n.nextPort
		n.nextPort++
	}
	if n.conns[port] != nil {
		return nil, fmt.Errorf("port %d in use", port)
	}
	c := &memConn{
		net:     n,
		addr:    &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port},
		recvCh:  make(chan memPacket, 1024),
		failCh:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	n.conns[port] = c
	return c, nil
}

func (n *memNetwork) listening(port int) bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.conns[port] != nil
}

func (n *memNetwork) sentPackets() []memPacket {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]memPacket(nil), n.sent...)
}

// inject delivers a datagram to port as if from a remote peer.
func (n *memNetwork) inject(port int, payload []byte) bool {
	n.lock.Lock()
	c := n.conns[port]
	n.lock.Unlock()
	if c == nil {
		return false
	}
	c.recvCh <- memPacket{
		from:    &net.UDPAddr{IP: net.IPv4(10, 0, 0, 9), Port: 1234},
		to:      c.addr,
		payload: append([]byte(nil), payload...),
	}
	return true
}

// fail makes the pending read on port return err.
func (n *memNetwork) fail(port int, err error) bool {
	n.lock.Lock()
	c := n.conns[port]
	n.lock.Unlock()
	if c == nil {
		return false
	}
	c.failCh <- err
	return true
}

type memConn struct {
	net       *memNetwork
	addr      *net.UDPAddr
	recvCh    chan memPacket
	failCh    chan error
	closeCh   chan struct{}
	closeOnce sync.Once
}

func (c *memConn) ReadFrom(p []byte) (int, net.Addr, error) {
	select {
	case pkt := <-c.recvCh:
		return copy(p, pkt.payload), pkt.from, nil
	case err := <-c.failCh:
		return 0, nil, err
	case <-c.closeCh:
		return 0, nil, net.ErrClosed
	}
}

func (c *memConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	to := addr.(*net.UDPAddr)
	pkt := memPacket{from: c.addr, to: to, payload: append([]byte(nil), p...)}
	c.net.lock.Lock()
	c.net.sent = append(c.net.sent, pkt)
	dest := c.net.conns[to.Port]
	c.net.lock.Unlock()
	if dest != nil {
		select {
		case dest.recvCh <- pkt:
		default:
		}
	}
	return len(p), nil
}

func (c *memConn) Close() error {
	c.closeOnce.Do(func() {
		c.net.lock.Lock()
		delete(c.net.conns, c.addr.Port)
		c.net.lock.Unlock()
		close(c.closeCh)
	})
	return nil
}

func (c *memConn) LocalAddr() net.Addr                { return c.addr }
func (c *memConn) SetDeadline(t time.Time) error      { return nil }
func (c *memConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *memConn) SetWriteDeadline(t time.Time) error { return nil }
