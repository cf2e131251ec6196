// Package sh provides an interactive shell over a wireless bus.
package sh

import (
	"flag"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/data/pbdata"
	"github.com/robotalks/datalink.go/pkg/wireless"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell *ishell.Shell
	Bus   *wireless.Bus
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool

	commands []*ishell.Cmd
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print values in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(bus *wireless.Bus) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell: ishell.New(),
		Bus:   bus,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("datalink > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// FormatValue renders v for display, in JSON if requested.
func (s *Shell) FormatValue(v data.Value) string {
	if s.OutputJSON {
		out, err := pbdata.MarshalJSON(v)
		if err != nil {
			return v.String()
		}
		return out
	}
	return v.String()
}

// Action is the shell independent part of a command.
type Action func(s *Shell, args []string) ([]string, error)

// Func adapts an Action to an ishell command func.
func Func(action Action) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		lines, err := action(ShellFrom(c), c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		for _, line := range lines {
			c.Println(line)
		}
	}
}

// Run runs the shell, or the command given as args.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

// Usage formats an argument error.
func Usage(name, args string) error {
	return fmt.Errorf("usage: %s %s", name, strings.TrimSpace(args))
}
