package main

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/framework"
	"github.com/robotalks/datalink.go/pkg/monitor"
	"github.com/robotalks/datalink.go/pkg/serial"
	"github.com/robotalks/datalink.go/pkg/wireless"
)

//go-build: CGO_ENABLED=0

var (
	useSerial  bool
	outputJSON bool
	port       int
	channels   = "0"
)

func init() {
	wireless.SetupFlags()
	serial.SetupFlags()
	flag.BoolVar(&useSerial, "serial", useSerial, "Monitor the serial link instead of a UDP port.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print values in JSON.")
	flag.IntVar(&port, "port", port, "UDP port to listen on.")
	flag.StringVar(&channels, "channels", channels, "Comma separated channels delivered from the port.")
}

func parseChannels(s string) ([]channel.ID, error) {
	var ids []channel.ID
	for _, item := range strings.Split(s, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(item), 10, 8)
		if err != nil {
			return nil, err
		}
		ids = append(ids, channel.ID(id))
	}
	return ids, nil
}

func main() {
	flag.Parse()

	m := &monitor.Monitor{Output: os.Stdout, JSON: outputJSON}
	if useSerial {
		link, err := serial.Default().NewLink()
		if err != nil {
			glog.Exit(err)
		}
		if err = link.Begin(); err != nil {
			glog.Exit(err)
		}
		defer link.End()
		m.Source, m.Channels = monitor.SerialSource{Link: link}, []channel.ID{channel.Default}
	} else {
		ids, err := parseChannels(channels)
		if err != nil {
			glog.Exit(err)
		}
		if port <= 0 {
			glog.Exit("-port is required")
		}
		bus := wireless.Default().NewBus()
		defer bus.Close()
		for _, id := range ids {
			if err = bus.RxAttach(port, id); err != nil {
				glog.Exit(err)
			}
		}
		m.Source, m.Channels = bus, ids
	}

	runner := framework.NewRunner().HandleSignals()
	framework.NewLoop().Add(m).RunOrFail(runner.Context)
}
