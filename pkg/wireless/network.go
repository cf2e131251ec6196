package wireless

import (
	"net"
	"strconv"
)

// Network opens datagram sockets. Port 0 asks for an ephemeral port,
// used for sending.
type Network interface {
	ListenPacket(port int) (net.PacketConn, error)
}

// UDPNetwork is the Network of UDP sockets bound on Host, all interfaces
// if empty.
type UDPNetwork struct {
	Host string
}

// ListenPacket implements Network.
func (n *UDPNetwork) ListenPacket(port int) (net.PacketConn, error) {
	return net.ListenPacket("udp", net.JoinHostPort(n.Host, strconv.Itoa(port)))
}
