package main

import (
	"flag"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/datalink.go/pkg/bridge/mqtt"
	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/framework"
	"github.com/robotalks/datalink.go/pkg/serial"
	"github.com/robotalks/datalink.go/pkg/wireless"
)

//go-build: CGO_ENABLED=0

var (
	useSerial   bool
	metricsAddr string
	rxPorts     string
	txTargets   string
)

func init() {
	wireless.SetupFlags()
	serial.SetupFlags()
	mqtt.SetupFlags()
	flag.BoolVar(&useSerial, "serial", useSerial, "Bridge the serial link instead of the UDP bus.")
	flag.StringVar(&metricsAddr, "metrics", metricsAddr, "Serve prometheus metrics on this address, e.g. :9100.")
	flag.StringVar(&rxPorts, "rx", rxPorts, "Comma separated PORT:CH to listen on.")
	flag.StringVar(&txTargets, "tx", txTargets, "Comma separated IP:PORT/CH destinations.")
}

func setupBus() (*wireless.Bus, error) {
	bus := wireless.Default().NewBus()
	for _, item := range splitList(rxPorts) {
		portStr, chStr, _ := strings.Cut(item, ":")
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, err
		}
		ch, err := strconv.ParseUint(chStr, 10, 8)
		if err != nil {
			return nil, err
		}
		if err = bus.RxAttach(port, channel.ID(ch)); err != nil {
			return nil, err
		}
	}
	for _, item := range splitList(txTargets) {
		epStr, chStr, _ := strings.Cut(item, "/")
		ep, err := wireless.ParseEndpoint(epStr)
		if err != nil {
			return nil, err
		}
		ch, err := strconv.ParseUint(chStr, 10, 8)
		if err != nil {
			return nil, err
		}
		bus.TxAttach(ep, channel.ID(ch))
	}
	return bus, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func main() {
	flag.Parse()

	var transport mqtt.Transport
	if useSerial {
		link, err := serial.Default().NewLink()
		if err != nil {
			glog.Exit(err)
		}
		if err = link.Begin(); err != nil {
			glog.Exit(err)
		}
		defer link.End()
		transport = mqtt.SerialTransport{Link: link}
	} else {
		bus, err := setupBus()
		if err != nil {
			glog.Exit(err)
		}
		defer bus.Close()
		transport = bus
	}

	bridge, client, err := mqtt.Default().NewBridge(transport)
	if err != nil {
		glog.Exit(err)
	}
	if err = client.Connect(); err != nil {
		glog.Exit(err)
	}
	defer client.Close()

	if metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			glog.Exit(http.ListenAndServe(metricsAddr, nil))
		}()
	}

	runner := framework.NewRunner().HandleSignals().Go(bridge)
	if err := runner.Wait(); err != nil {
		glog.Error(err)
	}
}
