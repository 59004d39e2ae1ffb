package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/weavelang/weave/internal/config"
	"github.com/weavelang/weave/lang/ast"
	"github.com/weavelang/weave/lang/store"
)

// Eval compiles and forces a small built-in expression, ignoring args. It
// exists to exercise the machine end-to-end without depending on a
// concrete lexer/parser: `let x = 41 in add(x, 1)`.
func (c *Cmd) Eval(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return printError(stdio, err)
	}
	m, s, _ := c.buildMachine(cfg)

	e := &ast.LetIn{
		Bind: &ast.NonRec{Name: "x", Value: &ast.Literal{Lit: ast.Lit{Kind: ast.LitInt, Int: 41}}},
		Body: &ast.Builtin{
			Name: "add",
			Args: []ast.Expr{
				&ast.Var{Name: "x"},
				&ast.Literal{Lit: ast.Lit{Kind: ast.LitInt, Int: 1}},
			},
		},
	}

	codeH, _, err := m.Compiler().CompileExpr(e)
	if err != nil {
		return printError(stdio, err)
	}
	thunkH, err := s.Insert(store.MakeThunk(codeH))
	if err != nil {
		return printError(stdio, err)
	}
	result, err := m.Force(ctx, thunkH)
	if err != nil {
		return printError(stdio, err)
	}
	return printResult(stdio.Stdout, s, result)
}
