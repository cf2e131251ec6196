// Package all registers all shell commands.
package all

import (
	// register commands
	_ "github.com/robotalks/datalink.go/pkg/cli/cmds/bus"
)
