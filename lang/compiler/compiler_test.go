package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavelang/weave/lang/ast"
	"github.com/weavelang/weave/lang/compiler"
	"github.com/weavelang/weave/lang/store"
)

func intLit(i int64) ast.Expr {
	return &ast.Literal{Lit: ast.Lit{Kind: ast.LitInt, Int: i}}
}

func strLit(s string) ast.Expr {
	return &ast.Literal{Lit: ast.Lit{Kind: ast.LitString, Str: s}}
}

// TestCompileLiteral covers the compile half of S1: compile(Literal(Int 42))
// is a code object holding a single SetValue op.
func TestCompileLiteral(t *testing.T) {
	s := store.New()
	c := compiler.New(s)

	h, free, err := c.CompileExpr(intLit(42))
	require.NoError(t, err)
	require.Empty(t, free)

	r, err := s.Reader(h)
	require.NoError(t, err)
	require.Equal(t, store.Code, r.Kind())

	code, err := r.Code()
	require.NoError(t, err)
	require.Len(t, code.Ops, 1)
	require.Equal(t, store.OpSetValue, code.Ops[0].Kind)
}

// TestCompileLetIn covers the compile half of S3: in
// compile(LetIn(NonRec x = Int 5, Var x)) the Var resolves to the same node
// as the literal, so no extra op is emitted for the reference.
func TestCompileLetIn(t *testing.T) {
	s := store.New()
	c := compiler.New(s)

	e := &ast.LetIn{
		Bind: &ast.NonRec{Name: "x", Value: intLit(5)},
		Body: &ast.Var{Name: "x"},
	}
	h, free, err := c.CompileExpr(e)
	require.NoError(t, err)
	require.Empty(t, free)

	r, err := s.Reader(h)
	require.NoError(t, err)
	code, err := r.Code()
	require.NoError(t, err)
	require.Len(t, code.Ops, 1, "Var x should reuse the literal's node, not add one")
}

// TestCompileUnboundVariable covers the compiler's Compile-kind error for a
// reference to a name with nothing in scope.
func TestCompileUnboundVariable(t *testing.T) {
	s := store.New()
	c := compiler.New(s)

	_, _, err := c.CompileExpr(&ast.Var{Name: "nope"})
	require.Error(t, err)
}

// TestCompileLambdaFreeVars covers P6: a lambda's free variables become
// leading inputs of its sub-graph, reported through the outer Bind node.
func TestCompileLambdaFreeVars(t *testing.T) {
	s := store.New()
	c := compiler.New(s)

	// let y = 1 in \x -> add(x, y)
	e := &ast.LetIn{
		Bind: &ast.NonRec{Name: "y", Value: intLit(1)},
		Body: &ast.Lambda{
			Params: []string{"x"},
			Body: &ast.Builtin{
				Name: "add",
				Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}},
			},
		},
	}
	h, free, err := c.CompileExpr(e)
	require.NoError(t, err)
	require.Empty(t, free)

	r, err := s.Reader(h)
	require.NoError(t, err)
	code, err := r.Code()
	require.NoError(t, err)

	var sawBind bool
	for _, op := range code.Ops {
		if op.Kind == store.OpBind {
			sawBind = true
			require.Len(t, op.Args, 1, "one free variable (y) should be bound into the lambda's closure")
		}
	}
	require.True(t, sawBind, "expected a Bind op closing over the lambda's free variable")
}

// TestCompileBuiltinUnknownName covers the compiler's Compile-kind error for
// an unrecognized builtin name.
func TestCompileBuiltinUnknownName(t *testing.T) {
	s := store.New()
	c := compiler.New(s)

	_, _, err := c.CompileExpr(&ast.Builtin{Name: "not_a_builtin", Args: []ast.Expr{intLit(1)}})
	require.Error(t, err)
}

// TestCompileModuleWrapsThunk checks the module protocol: CompileModule
// returns a thunk, not a bare code handle.
func TestCompileModuleWrapsThunk(t *testing.T) {
	s := store.New()
	c := compiler.New(s)

	h, err := c.CompileModule(stubParser{expr: strLit("hi")}, "mod.weave", "")
	require.NoError(t, err)

	r, err := s.Reader(h)
	require.NoError(t, err)
	require.Equal(t, store.Thunk, r.Kind())
}

type stubParser struct{ expr ast.Expr }

func (p stubParser) Parse(filename, src string) (ast.Expr, error) {
	return p.expr, nil
}
