package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"

	"github.com/weavelang/weave/internal/config"
	"github.com/weavelang/weave/internal/werr"
)

// Run compiles and forces the module in args[0], printing its result.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if c.Parser == nil {
		return printError(stdio, werr.New(werr.Compile, "run: no ast.Parser configured (lexing/parsing weave source is out of scope for this repository; inject one via Cmd.Parser)"))
	}
	filename := args[0]
	src, err := os.ReadFile(filename)
	if err != nil {
		return printError(stdio, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return printError(stdio, err)
	}
	m, s, _ := c.buildMachine(cfg)

	moduleH, err := m.Compiler().CompileModule(c.Parser, filename, string(src))
	if err != nil {
		return printError(stdio, err)
	}
	result, err := m.Force(ctx, moduleH)
	if err != nil {
		return printError(stdio, err)
	}
	return printResult(stdio.Stdout, s, result)
}
