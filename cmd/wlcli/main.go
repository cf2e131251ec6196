package main

import (
	"flag"

	"github.com/robotalks/datalink.go/pkg/cli/sh"
	"github.com/robotalks/datalink.go/pkg/wireless"

	_ "github.com/robotalks/datalink.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	wireless.SetupFlags()
}

func main() {
	flag.Parse()
	bus := wireless.Default().NewBus()
	defer bus.Close()
	sh.New(bus).Run(flag.Args()...)
}
