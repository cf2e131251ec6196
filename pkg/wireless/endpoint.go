package wireless

import (
	"fmt"
	"net"
	"strconv"
)

// Endpoint is a destination address and port.
type Endpoint struct {
	IP   net.IP
	Port int
}

// ParseEndpoint parses host:port, the host must be an IP literal.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return Endpoint{}, fmt.Errorf("invalid IP address %q", host)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 0xffff {
		return Endpoint{}, fmt.Errorf("invalid port %q", portStr)
	}
	return Endpoint{IP: ip, Port: port}, nil
}

// Equal compares address and port; IPv4 and IPv4-in-IPv6 forms are equal.
func (e Endpoint) Equal(o Endpoint) bool {
	return e.Port == o.Port && e.IP.Equal(o.IP)
}

// UDPAddr converts the endpoint to a net.UDPAddr.
func (e Endpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: e.IP, Port: e.Port}
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP.String(), strconv.Itoa(e.Port))
}
