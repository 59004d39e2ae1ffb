// Package maincmd implements the weave command-line dispatch, adapted
// directly from the teacher's own github.com/mna/mainer-based Cmd: a flag
// struct parsed by mainer.Parser, and command methods found by reflection
// over Cmd's own method set (buildCmds).
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"

	"github.com/weavelang/weave/lang/ast"
)

const binName = "weave"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<arg>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Interpreter for the weave programming language: a dataflow evaluator for a
small lazy functional language (SPEC_FULL.md).

The <command> can be one of:
       run <file>                Compile and force the module in <file>,
                                  printing its result.
       eval                      Compile and force a small built-in test
                                  expression, printing its result. Useful
                                  for exercising the machine without a
                                  parser.
       serve                     Start the debug HTTP server.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --root <dir>              Base directory for file:// resource
                                  retrieval (default: current directory).
       --addr <addr>             Listen address for the serve command
                                  (default: from WEAVE_DEBUG_ADDR, see
                                  internal/config).

More information on the weave repository:
       https://github.com/weavelang/weave
`, binName)
)

// Cmd is the flag/command struct mainer.Parser populates from argv.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	// Parser is the injection point for a concrete lexer/parser: lexing and
	// parsing weave's concrete syntax is out of scope for this repository
	// (SPEC_FULL.md §1), so `run` reports a clear Compile error if this is
	// left nil rather than attempting to guess at syntax.
	Parser ast.Parser

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Root string `flag:"root"`
	Addr string `flag:"addr"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if cmdName == "run" && len(c.args[1:]) == 0 {
		return fmt.Errorf("run: a file must be provided")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command prints its own error before returning it
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds finds every method on v matching the (context.Context,
// mainer.Stdio, []string) error signature and exposes it under its
// lower-cased name, the same reflection trick the teacher's own CLI uses.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}
