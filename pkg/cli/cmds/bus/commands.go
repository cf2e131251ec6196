// Package bus adds wireless bus commands to the shell.
package bus

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/cli/sh"
	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/wireless"
)

func parseChannel(s string) (channel.ID, error) {
	id, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid channel %q", s)
	}
	return channel.ID(id), nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port <= 0 || port > 0xffff {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}

// TxAttach attaches IP:PORT to CH.
func TxAttach(s *sh.Shell, args []string) ([]string, error) {
	if len(args) != 2 {
		return nil, sh.Usage("tx.attach", "IP:PORT CH")
	}
	ep, err := wireless.ParseEndpoint(args[0])
	if err != nil {
		return nil, err
	}
	ch, err := parseChannel(args[1])
	if err != nil {
		return nil, err
	}
	s.Bus.TxAttach(ep, ch)
	return nil, nil
}

// TxDetach detaches IP:PORT, all of IP or all of :PORT from CH.
func TxDetach(s *sh.Shell, args []string) ([]string, error) {
	if len(args) != 2 {
		return nil, sh.Usage("tx.detach", "IP:PORT|IP|:PORT CH")
	}
	ch, err := parseChannel(args[1])
	if err != nil {
		return nil, err
	}
	target := args[0]
	switch {
	case strings.HasPrefix(target, ":"):
		port, err := parsePort(target[1:])
		if err != nil {
			return nil, err
		}
		s.Bus.TxDetachPort(port, ch)
	case net.ParseIP(target) != nil:
		s.Bus.TxDetachIP(net.ParseIP(target), ch)
	default:
		ep, err := wireless.ParseEndpoint(target)
		if err != nil {
			return nil, err
		}
		s.Bus.TxDetach(ep, ch)
	}
	return nil, nil
}

// TxList lists the endpoints of CH.
func TxList(s *sh.Shell, args []string) ([]string, error) {
	if len(args) != 1 {
		return nil, sh.Usage("tx.list", "CH")
	}
	ch, err := parseChannel(args[0])
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, ep := range s.Bus.Endpoints(ch) {
		lines = append(lines, ep.String())
	}
	return lines, nil
}

// RxAttach listens on PORT for CH.
func RxAttach(s *sh.Shell, args []string) ([]string, error) {
	if len(args) != 2 {
		return nil, sh.Usage("rx.attach", "PORT CH")
	}
	port, err := parsePort(args[0])
	if err != nil {
		return nil, err
	}
	ch, err := parseChannel(args[1])
	if err != nil {
		return nil, err
	}
	return nil, s.Bus.RxAttach(port, ch)
}

// RxDetach stops delivering PORT to CH.
func RxDetach(s *sh.Shell, args []string) ([]string, error) {
	if len(args) != 2 {
		return nil, sh.Usage("rx.detach", "PORT CH")
	}
	port, err := parsePort(args[0])
	if err != nil {
		return nil, err
	}
	ch, err := parseChannel(args[1])
	if err != nil {
		return nil, err
	}
	s.Bus.RxDetach(port, ch)
	return nil, nil
}

// RxList lists listening ports with their channels.
func RxList(s *sh.Shell, args []string) ([]string, error) {
	var lines []string
	for _, port := range s.Bus.RxPorts() {
		chs := s.Bus.RxChannels(port)
		names := make([]string, len(chs))
		for n, ch := range chs {
			names[n] = strconv.Itoa(int(ch))
		}
		lines = append(lines, fmt.Sprintf("%d: %s", port, strings.Join(names, " ")))
	}
	return lines, nil
}

// Write sends VALUE on CH. VALUE uses the display syntax, e.g. [i8(1), "a"].
func Write(s *sh.Shell, args []string) ([]string, error) {
	if len(args) < 2 {
		return nil, sh.Usage("write", "CH VALUE")
	}
	ch, err := parseChannel(args[0])
	if err != nil {
		return nil, err
	}
	v, err := data.Parse(strings.Join(args[1:], " "))
	if err != nil {
		return nil, err
	}
	return nil, s.Bus.Write(v, ch)
}

// Read pops up to COUNT values of CH.
func Read(s *sh.Shell, args []string) ([]string, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, sh.Usage("read", "CH [COUNT]")
	}
	ch, err := parseChannel(args[0])
	if err != nil {
		return nil, err
	}
	count := 1
	if len(args) > 1 {
		if count, err = strconv.Atoi(args[1]); err != nil || count <= 0 {
			return nil, fmt.Errorf("invalid count %q", args[1])
		}
	}
	buf := make([]data.Value, count)
	n := s.Bus.ReadBatch(buf, ch)
	if n == 0 {
		return []string{"(empty)"}, nil
	}
	lines := make([]string, n)
	for i, v := range buf[:n] {
		lines[i] = s.FormatValue(v)
	}
	return lines, nil
}

// Avail shows the queue depth of CH.
func Avail(s *sh.Shell, args []string) ([]string, error) {
	if len(args) != 1 {
		return nil, sh.Usage("avail", "CH")
	}
	ch, err := parseChannel(args[0])
	if err != nil {
		return nil, err
	}
	return []string{strconv.Itoa(s.Bus.Available(ch))}, nil
}

// Wait blocks until a value arrives on CH, up to TIMEOUT (default 5s).
func Wait(s *sh.Shell, args []string) ([]string, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, sh.Usage("wait", "CH [TIMEOUT]")
	}
	ch, err := parseChannel(args[0])
	if err != nil {
		return nil, err
	}
	timeout := 5 * time.Second
	if len(args) > 1 {
		if timeout, err = time.ParseDuration(args[1]); err != nil {
			return nil, err
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	v, err := s.Bus.ReadWait(ctx, ch)
	if err != nil {
		return nil, err
	}
	return []string{s.FormatValue(v)}, nil
}

var (
	// TxAttachCmd exposes TxAttach.
	TxAttachCmd = ishell.Cmd{Name: "tx.attach", Aliases: []string{"ta"}, Help: "IP:PORT CH", Func: sh.Func(TxAttach)}
	// TxDetachCmd exposes TxDetach.
	TxDetachCmd = ishell.Cmd{Name: "tx.detach", Aliases: []string{"td"}, Help: "IP:PORT|IP|:PORT CH", Func: sh.Func(TxDetach)}
	// TxListCmd exposes TxList.
	TxListCmd = ishell.Cmd{Name: "tx.list", Aliases: []string{"tl"}, Help: "CH", Func: sh.Func(TxList)}
	// RxAttachCmd exposes RxAttach.
	RxAttachCmd = ishell.Cmd{Name: "rx.attach", Aliases: []string{"ra"}, Help: "PORT CH", Func: sh.Func(RxAttach)}
	// RxDetachCmd exposes RxDetach.
	RxDetachCmd = ishell.Cmd{Name: "rx.detach", Aliases: []string{"rd"}, Help: "PORT CH", Func: sh.Func(RxDetach)}
	// RxListCmd exposes RxList.
	RxListCmd = ishell.Cmd{Name: "rx.list", Aliases: []string{"rl"}, Help: "", Func: sh.Func(RxList)}
	// WriteCmd exposes Write.
	WriteCmd = ishell.Cmd{Name: "write", Aliases: []string{"w"}, Help: "CH VALUE", Func: sh.Func(Write)}
	// ReadCmd exposes Read.
	ReadCmd = ishell.Cmd{Name: "read", Aliases: []string{"r"}, Help: "CH [COUNT]", Func: sh.Func(Read)}
	// AvailCmd exposes Avail.
	AvailCmd = ishell.Cmd{Name: "avail", Aliases: []string{"a"}, Help: "CH", Func: sh.Func(Avail)}
	// WaitCmd exposes Wait.
	WaitCmd = ishell.Cmd{Name: "wait", Help: "CH [TIMEOUT]", Func: sh.Func(Wait)}
)

func init() {
	sh.AddCmds(
		&TxAttachCmd,
		&TxDetachCmd,
		&TxListCmd,
		&RxAttachCmd,
		&RxDetachCmd,
		&RxListCmd,
		&WriteCmd,
		&ReadCmd,
		&AvailCmd,
		&WaitCmd,
	)
}
