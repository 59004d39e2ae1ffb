package machine_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/ast"
	"github.com/weavelang/weave/lang/machine"
	"github.com/weavelang/weave/lang/resource"
	"github.com/weavelang/weave/lang/store"
	"github.com/weavelang/weave/lang/syscall"
)

func intLit(i int64) ast.Expr {
	return &ast.Literal{Lit: ast.Lit{Kind: ast.LitInt, Int: i}}
}

func floatLit(f float64) ast.Expr {
	return &ast.Literal{Lit: ast.Lit{Kind: ast.LitFloat, Float: f}}
}

// forceExpr compiles e against a fresh store, wraps it as a module thunk,
// and forces it, returning the resulting WHNF reader.
func forceExpr(t *testing.T, s *store.Store, m *machine.Machine, e ast.Expr) *store.Reader {
	t.Helper()
	c := m.Compiler()
	h, free, err := c.CompileExpr(e)
	require.NoError(t, err)
	require.Empty(t, free)

	th, err := s.Insert(store.MakeThunk(h))
	require.NoError(t, err)

	result, err := m.Force(context.Background(), th)
	require.NoError(t, err)

	r, err := s.Reader(result)
	require.NoError(t, err)
	return r
}

// TestForceLiteral covers S1: forcing a thunk wrapping a bare literal yields
// that literal's value.
func TestForceLiteral(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, nil, nil)

	r := forceExpr(t, s, m, intLit(42))
	n, err := r.AsNumeric()
	require.NoError(t, err)
	require.Equal(t, int64(42), n.I)
}

// TestArithMixedPromotesToFloat covers the pinned Open Question: any float
// operand promotes the whole operation to float.
func TestArithMixedPromotesToFloat(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, nil, nil)

	e := &ast.Builtin{Name: "add", Args: []ast.Expr{intLit(1), floatLit(2.5)}}
	r := forceExpr(t, s, m, e)
	n, err := r.AsNumeric()
	require.NoError(t, err)
	require.True(t, n.IsFloat)
	require.Equal(t, 3.5, n.F)
}

// TestIntDivByZeroIsBadType covers B3 / the div-by-zero Open Question: int
// division by zero is a BadType error, not a panic or an IEEE-754 result.
func TestIntDivByZeroIsBadType(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, nil, nil)
	c := m.Compiler()

	e := &ast.Builtin{Name: "div", Args: []ast.Expr{intLit(1), intLit(0)}}
	h, _, err := c.CompileExpr(e)
	require.NoError(t, err)
	th, err := s.Insert(store.MakeThunk(h))
	require.NoError(t, err)

	_, err = m.Force(context.Background(), th)
	require.Error(t, err)
	require.Equal(t, werr.BadType, werr.KindOf(err))
}

// TestFloatDivByZeroIsInf covers the other half of that Open Question:
// float division by zero follows IEEE 754 rather than erroring.
func TestFloatDivByZeroIsInf(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, nil, nil)

	e := &ast.Builtin{Name: "div", Args: []ast.Expr{floatLit(1), floatLit(0)}}
	r := forceExpr(t, s, m, e)
	n, err := r.AsNumeric()
	require.NoError(t, err)
	require.True(t, n.IsFloat)
	require.True(t, n.F > 0 && n.F*2 == n.F, "expected +Inf")
}

// TestLambdaAppClosesOverFreeVariable covers P6/App: a lambda closing over
// an outer binding, applied through App, sees the closed-over value.
func TestLambdaAppClosesOverFreeVariable(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, nil, nil)

	// let y = 10 in (\x -> add(x, y))(5)
	e := &ast.LetIn{
		Bind: &ast.NonRec{Name: "y", Value: intLit(10)},
		Body: &ast.App{
			Fn: &ast.Lambda{
				Params: []string{"x"},
				Body: &ast.Builtin{
					Name: "add",
					Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}},
				},
			},
			Args: []ast.Expr{intLit(5)},
		},
	}
	r := forceExpr(t, s, m, e)
	n, err := r.AsNumeric()
	require.NoError(t, err)
	require.Equal(t, int64(15), n.I)
}

// TestMatchCaseTag covers Match dispatch on a Variant's tag (I3-adjacent
// case equality via store.Equal). There is no surface AST form for a
// pre-built compound literal, so this builds the Code object directly, the
// way the compiler's flattener would, rather than going through CompileExpr.
func TestMatchCaseTag(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, nil, nil)

	tagH, err := s.Insert(store.MakeString("Some"))
	require.NoError(t, err)
	payloadH, err := s.Insert(store.MakeInt(7))
	require.NoError(t, err)
	variantH, err := s.Insert(store.MakeVariant(tagH, payloadH))
	require.NoError(t, err)

	noneTagH, err := s.Insert(store.MakeString("None"))
	require.NoError(t, err)
	someTagH, err := s.Insert(store.MakeString("Some"))
	require.NoError(t, err)
	int0H, err := s.Insert(store.MakeInt(0))
	require.NoError(t, err)
	int1H, err := s.Insert(store.MakeInt(1))
	require.NoError(t, err)

	code := store.Code{
		Ret:   3,
		Ready: []store.OpAddr{0, 1, 2},
		Constants: []store.Handle{
			variantH, noneTagH, someTagH, int0H, int1H,
		},
		Ops: []store.Op{
			{Kind: store.OpSetValue, Value: 0, Dest: store.Dest{Reg: 0, Uses: []store.OpAddr{3}}},
			{Kind: store.OpSetValue, Value: 3, Dest: store.Dest{Reg: 1, Uses: []store.OpAddr{3}}},
			{Kind: store.OpSetValue, Value: 4, Dest: store.Dest{Reg: 2, Uses: []store.OpAddr{3}}},
			{
				Kind:   store.OpMatch,
				Target: 0,
				Dest:   store.Dest{Reg: 3},
				Cases: []store.OpCase{
					{Kind: store.CaseTag, Literal: 1, Target: 1},
					{Kind: store.CaseTag, Literal: 2, Target: 2},
				},
			},
		},
	}

	codeH, err := s.Insert(store.MakeCode(code))
	require.NoError(t, err)
	th, err := s.Insert(store.MakeThunk(codeH))
	require.NoError(t, err)

	result, err := m.Force(context.Background(), th)
	require.NoError(t, err)
	r, err := s.Reader(result)
	require.NoError(t, err)
	n, err := r.AsNumeric()
	require.NoError(t, err)
	require.Equal(t, int64(1), n.I)
}

// TestMatchNoCaseNoDefaultIsBadFormat covers B4: a Match with no satisfied
// case and no Default arm fails with BadFormat at run time.
func TestMatchNoCaseNoDefaultIsBadFormat(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, nil, nil)
	c := m.Compiler()

	e := &ast.Match{
		Scrutinee: intLit(5),
		Cases: []ast.Case{
			&ast.CaseEq{Lit: ast.Lit{Kind: ast.LitInt, Int: 99}, Body: intLit(0)},
		},
	}
	h, _, err := c.CompileExpr(e)
	require.NoError(t, err)
	th, err := s.Insert(store.MakeThunk(h))
	require.NoError(t, err)

	_, err = m.Force(context.Background(), th)
	require.Error(t, err)
	require.Equal(t, werr.BadFormat, werr.KindOf(err))
}

// TestConcurrentForceIsDeduped covers P3/S6: many goroutines forcing
// the same thunk handle concurrently must not trigger the memo's
// write-twice panic, and must all observe the same result.
func TestConcurrentForceIsDeduped(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, nil, nil)
	c := m.Compiler()

	h, _, err := c.CompileExpr(&ast.Builtin{Name: "add", Args: []ast.Expr{intLit(20), intLit(22)}})
	require.NoError(t, err)
	th, err := s.Insert(store.MakeThunk(h))
	require.NoError(t, err)

	const n = 32
	results := make([]store.Handle, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Force(context.Background(), th)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, results[0], results[i])
	}
	r, err := s.Reader(results[0])
	require.NoError(t, err)
	num, err := r.AsNumeric()
	require.NoError(t, err)
	require.Equal(t, int64(42), num.I)
}

// TestFetchBuiltinRetrievesFileBytes covers C6/C8's wiring between the
// fetch builtin and a lang/resource.Provider: forcing fetch("file://...")
// yields the buffer a File provider read off disk.
func TestFetchBuiltinRetrievesFileBytes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.txt"), []byte("hi"), 0o644))

	s := store.New()
	provider := &resource.File{Store: s, Root: dir}
	m := machine.New(s, nil, provider, nil, nil)

	e := &ast.Builtin{Name: "fetch", Args: []ast.Expr{
		&ast.Literal{Lit: ast.Lit{Kind: ast.LitString, Str: "file:///greeting.txt"}},
	}}
	r := forceExpr(t, s, m, e)
	buf, err := r.AsBuffer()
	require.NoError(t, err)
	require.Equal(t, "hi", string(buf))
}

// TestSysDispatchesToRegisteredHandler covers C9: the sys builtin forwards
// to whatever Handler is registered under the requested name, and reports
// NotFound for an unregistered one.
func TestSysDispatchesToRegisteredHandler(t *testing.T) {
	s := store.New()
	reg := syscall.NewRegistry()
	reg.Register("double", syscall.HandlerFunc(func(ctx context.Context, c syscall.Caller, args []store.Handle) (store.Handle, error) {
		forced, err := c.Force(ctx, args[0])
		if err != nil {
			return store.Handle{}, err
		}
		r, err := c.Heap().Reader(forced)
		if err != nil {
			return store.Handle{}, err
		}
		n, err := r.AsNumeric()
		if err != nil {
			return store.Handle{}, err
		}
		return c.Heap().Insert(store.MakeInt(n.I * 2))
	}))
	m := machine.New(s, nil, nil, reg, nil)

	e := &ast.Builtin{Name: "sys", Args: []ast.Expr{
		&ast.Literal{Lit: ast.Lit{Kind: ast.LitString, Str: "double"}},
		intLit(21),
	}}
	r := forceExpr(t, s, m, e)
	n, err := r.AsNumeric()
	require.NoError(t, err)
	require.Equal(t, int64(42), n.I)
}

func TestSysUnregisteredNameIsNotFound(t *testing.T) {
	s := store.New()
	m := machine.New(s, nil, nil, syscall.NewRegistry(), nil)
	c := m.Compiler()

	e := &ast.Builtin{Name: "sys", Args: []ast.Expr{
		&ast.Literal{Lit: ast.Lit{Kind: ast.LitString, Str: "nope"}},
	}}
	h, _, err := c.CompileExpr(e)
	require.NoError(t, err)
	th, err := s.Insert(store.MakeThunk(h))
	require.NoError(t, err)

	_, err = m.Force(context.Background(), th)
	require.Error(t, err)
	require.Equal(t, werr.NotFound, werr.KindOf(err))
}
