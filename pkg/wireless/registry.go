package wireless

import (
	"net"

	"github.com/robotalks/datalink.go/pkg/channel"
)

// txTable maps a channel to its destinations, in attach order.
type txTable map[channel.ID][]Endpoint

func (t txTable) attach(ep Endpoint, ch channel.ID) {
	for _, e := range t[ch] {
		if e.Equal(ep) {
			return
		}
	}
	t[ch] = append(t[ch], ep)
}

func (t txTable) remove(ch channel.ID, match func(Endpoint) bool) {
	eps := t[ch]
	kept := eps[:0]
	for _, e := range eps {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(t, ch)
		return
	}
	t[ch] = kept
}

func (t txTable) detach(ep Endpoint, ch channel.ID) {
	t.remove(ch, ep.Equal)
}

func (t txTable) detachIP(ip net.IP, ch channel.ID) {
	t.remove(ch, func(e Endpoint) bool { return e.IP.Equal(ip) })
}

func (t txTable) detachPort(port int, ch channel.ID) {
	t.remove(ch, func(e Endpoint) bool { return e.Port == port })
}

func (t txTable) endpoints(ch channel.ID) []Endpoint {
	eps := t[ch]
	if len(eps) == 0 {
		return nil
	}
	return append([]Endpoint(nil), eps...)
}

// channelSet is an ordered set of channels sharing a listener.
type channelSet []channel.ID

func (s channelSet) add(ch channel.ID) channelSet {
	for _, c := range s {
		if c == ch {
			return s
		}
	}
	return append(s, ch)
}

func (s channelSet) remove(ch channel.ID) channelSet {
	for n, c := range s {
		if c == ch {
			return append(s[:n], s[n+1:]...)
		}
	}
	return s
}
