// Package compiler lowers an AST expression (lang/ast) into an op graph
// (lang/opgraph), flattens it, and stores the result as a code object in a
// lang/store.Store (C5). One Compile method-ish case per AST node kind,
// mirroring the strategy in the specification's component design: variable
// resolution through a compile-time scope chain, free-variable lifting for
// lambdas, and thunk-wrapping sub-graphs for App, Invoke, and Match so that
// laziness is realized by constructing thunk values rather than suspending
// host control flow.
package compiler

import (
	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/ast"
	"github.com/weavelang/weave/lang/opgraph"
	"github.com/weavelang/weave/lang/store"
)

// Compiler holds the Store expressions are compiled against. It carries no
// other mutable state between calls; a single Compiler may compile many
// independent expressions.
type Compiler struct {
	store *store.Store
}

// New returns a Compiler that stores compiled values in s.
func New(s *store.Store) *Compiler {
	return &Compiler{store: s}
}

// CompileExpr compiles e into a stored code handle. The returned names list
// is e's free variables in the order they were assigned as the code's
// leading inputs (P6): binding the code with that many arguments, in that
// order, closes it. A closed expression returns an empty names list.
func (c *Compiler) CompileExpr(e ast.Expr) (store.Handle, []string, error) {
	names := freeVars(e, nil)

	g := opgraph.New()
	var sc *scope
	for i, name := range names {
		ref := g.Insert(opgraph.OpNode{Kind: opgraph.NInput, InputIdx: i})
		sc = sc.extend(name, ref)
	}

	root, err := c.compile(g, sc, e)
	if err != nil {
		return store.Handle{}, nil, err
	}
	g.SetRoot(root)

	h, err := g.StoreIn(c.store)
	if err != nil {
		return store.Handle{}, nil, err
	}
	return h, names, nil
}

// CompileModule parses src with p, compiles the result, and wraps it in a
// thunk (the module protocol of SPEC_FULL.md §6: a compiled module is a
// thunk whose WHNF is a record). A module with unbound free variables is a
// compile error, since the returned thunk's code is run with no inputs.
func (c *Compiler) CompileModule(p ast.Parser, filename, src string) (store.Handle, error) {
	e, err := p.Parse(filename, src)
	if err != nil {
		return store.Handle{}, werr.Wrap(werr.Compile, err)
	}
	h, names, err := c.CompileExpr(e)
	if err != nil {
		return store.Handle{}, err
	}
	if len(names) > 0 {
		return store.Handle{}, werr.Newf(werr.Compile, "module %s has unbound free variables: %v", filename, names)
	}
	return c.store.Insert(store.MakeThunk(h))
}

func (c *Compiler) compile(g *opgraph.Graph, sc *scope, e ast.Expr) (opgraph.NodeRef, error) {
	switch n := e.(type) {
	case *ast.Var:
		ref, ok := sc.lookup(n.Name)
		if !ok {
			return 0, werr.Newf(werr.Compile, "unbound variable %q", n.Name)
		}
		return ref, nil

	case *ast.Literal:
		h, err := c.store.Insert(literalValue(n.Lit))
		if err != nil {
			return 0, err
		}
		return g.InsertHandle(h), nil

	case *ast.LetIn:
		return c.compileLetIn(g, sc, n)

	case *ast.Lambda:
		return c.compileLambda(g, sc, n)

	case *ast.App:
		return c.compileApp(g, sc, n)

	case *ast.Invoke:
		return c.compileInvoke(g, sc, n)

	case *ast.Match:
		return c.compileMatch(g, sc, n)

	case *ast.Builtin:
		return c.compileBuiltin(g, sc, n)

	default:
		return 0, werr.Newf(werr.Compile, "unknown expression kind %T", e)
	}
}

func (c *Compiler) compileLetIn(g *opgraph.Graph, sc *scope, n *ast.LetIn) (opgraph.NodeRef, error) {
	switch b := n.Bind.(type) {
	case *ast.NonRec:
		valRef, err := c.compile(g, sc, b.Value)
		if err != nil {
			return 0, err
		}
		return c.compile(g, sc.extend(b.Name, valRef), n.Body)

	case *ast.Rec:
		inner := sc
		temps := make([]opgraph.NodeRef, len(b.Bindings))
		for i, rb := range b.Bindings {
			temps[i] = g.Temp()
			inner = inner.extend(rb.Name, temps[i])
		}
		for i, rb := range b.Bindings {
			valRef, err := c.compile(g, inner, rb.Value)
			if err != nil {
				return 0, err
			}
			g.SetTo(temps[i], valRef)
		}
		return c.compile(g, inner, n.Body)

	default:
		return 0, werr.Newf(werr.Compile, "unknown bind kind %T", n.Bind)
	}
}

func (c *Compiler) compileLambda(g *opgraph.Graph, sc *scope, n *ast.Lambda) (opgraph.NodeRef, error) {
	bound := map[string]bool{}
	for _, p := range n.Params {
		bound[p] = true
	}
	free := freeVars(n.Body, bound)

	sub := opgraph.New()
	var subSc *scope
	idx := 0
	for _, name := range free {
		ref := sub.Insert(opgraph.OpNode{Kind: opgraph.NInput, InputIdx: idx})
		subSc = subSc.extend(name, ref)
		idx++
	}
	for _, p := range n.Params {
		ref := sub.Insert(opgraph.OpNode{Kind: opgraph.NInput, InputIdx: idx})
		subSc = subSc.extend(p, ref)
		idx++
	}

	bodyRef, err := c.compile(sub, subSc, n.Body)
	if err != nil {
		return 0, err
	}
	forceRef := sub.Insert(opgraph.OpNode{Kind: opgraph.NForce, Force: bodyRef})
	sub.SetRoot(forceRef)

	graphRef := g.InsertGraph(sub)
	if len(free) == 0 {
		return graphRef, nil
	}

	args := make([]opgraph.NodeRef, len(free))
	for i, name := range free {
		ref, ok := sc.lookup(name)
		if !ok {
			return 0, werr.Newf(werr.Compile, "unbound free variable %q", name)
		}
		args[i] = ref
	}
	return g.Insert(opgraph.OpNode{Kind: opgraph.NBind, BindFn: graphRef, BindArgs: args}), nil
}

func (c *Compiler) compileApp(g *opgraph.Graph, sc *scope, n *ast.App) (opgraph.NodeRef, error) {
	sub := opgraph.New()
	in0 := sub.Insert(opgraph.OpNode{Kind: opgraph.NInput, InputIdx: 0})
	forceFn := sub.Insert(opgraph.OpNode{Kind: opgraph.NForce, Force: in0})
	subArgs := make([]opgraph.NodeRef, len(n.Args))
	for i := range n.Args {
		subArgs[i] = sub.Insert(opgraph.OpNode{Kind: opgraph.NInput, InputIdx: i + 1})
	}
	bindRef := sub.Insert(opgraph.OpNode{Kind: opgraph.NBind, BindFn: forceFn, BindArgs: subArgs})
	// Binding may produce a fully-saturated Partial rather than a final
	// value (applying all of a function's remaining parameters doesn't run
	// it, it just builds the call). Wrapping it in Invoke turns that
	// Partial into a thunk, so the force loop in lang/machine takes another
	// pass and actually runs it instead of handing back an unreduced call.
	invokeRef := sub.Insert(opgraph.OpNode{Kind: opgraph.NInvoke, Invoke: bindRef})
	sub.SetRoot(invokeRef)

	graphRef := g.InsertGraph(sub)

	fnRef, err := c.compile(g, sc, n.Fn)
	if err != nil {
		return 0, err
	}
	outerArgs := make([]opgraph.NodeRef, len(n.Args)+1)
	outerArgs[0] = fnRef
	for i, a := range n.Args {
		ar, err := c.compile(g, sc, a)
		if err != nil {
			return 0, err
		}
		outerArgs[i+1] = ar
	}

	outerBind := g.Insert(opgraph.OpNode{Kind: opgraph.NBind, BindFn: graphRef, BindArgs: outerArgs})
	return g.Insert(opgraph.OpNode{Kind: opgraph.NInvoke, Invoke: outerBind}), nil
}

func (c *Compiler) compileInvoke(g *opgraph.Graph, sc *scope, n *ast.Invoke) (opgraph.NodeRef, error) {
	sub := opgraph.New()
	in0 := sub.Insert(opgraph.OpNode{Kind: opgraph.NInput, InputIdx: 0})
	forceRef := sub.Insert(opgraph.OpNode{Kind: opgraph.NForce, Force: in0})
	// As in compileApp: Force alone only reduces to WHNF, which may still be
	// an unevaluated Partial or bare Code. Invoke turns that into a thunk so
	// the outer force loop keeps chasing it down to a run value.
	invokeRef := sub.Insert(opgraph.OpNode{Kind: opgraph.NInvoke, Invoke: forceRef})
	sub.SetRoot(invokeRef)

	graphRef := g.InsertGraph(sub)

	targetRef, err := c.compile(g, sc, n.Target)
	if err != nil {
		return 0, err
	}
	bindRef := g.Insert(opgraph.OpNode{Kind: opgraph.NBind, BindFn: graphRef, BindArgs: []opgraph.NodeRef{targetRef}})
	return g.Insert(opgraph.OpNode{Kind: opgraph.NInvoke, Invoke: bindRef}), nil
}

func (c *Compiler) compileMatch(g *opgraph.Graph, sc *scope, n *ast.Match) (opgraph.NodeRef, error) {
	sub := opgraph.New()
	scrutIn := sub.Insert(opgraph.OpNode{Kind: opgraph.NInput, InputIdx: 0})
	forceScrut := sub.Insert(opgraph.OpNode{Kind: opgraph.NForce, Force: scrutIn})

	cases := make([]opgraph.MatchCase, len(n.Cases))
	bodies := make([]ast.Expr, len(n.Cases))
	for i, cs := range n.Cases {
		inputRef := sub.Insert(opgraph.OpNode{Kind: opgraph.NInput, InputIdx: i + 1})
		switch cc := cs.(type) {
		case *ast.CaseTag:
			h, err := c.store.Insert(store.MakeString(cc.Tag))
			if err != nil {
				return 0, err
			}
			cases[i] = opgraph.MatchCase{Kind: opgraph.CaseTag, Literal: h, Target: inputRef}
			bodies[i] = cc.Body
		case *ast.CaseEq:
			h, err := c.store.Insert(literalValue(cc.Lit))
			if err != nil {
				return 0, err
			}
			cases[i] = opgraph.MatchCase{Kind: opgraph.CaseEq, Literal: h, Target: inputRef}
			bodies[i] = cc.Body
		case *ast.CaseDefault:
			cases[i] = opgraph.MatchCase{Kind: opgraph.CaseDefault, Target: inputRef}
			bodies[i] = cc.Body
		default:
			return 0, werr.Newf(werr.Compile, "unknown case kind %T", cs)
		}
	}

	matchRef := sub.Insert(opgraph.OpNode{Kind: opgraph.NMatch, MatchScrut: forceScrut, MatchCases: cases})
	forceResult := sub.Insert(opgraph.OpNode{Kind: opgraph.NForce, Force: matchRef})
	sub.SetRoot(forceResult)

	graphRef := g.InsertGraph(sub)

	scrutRef, err := c.compile(g, sc, n.Scrutinee)
	if err != nil {
		return 0, err
	}
	outerArgs := make([]opgraph.NodeRef, len(n.Cases)+1)
	outerArgs[0] = scrutRef
	for i, body := range bodies {
		br, err := c.compile(g, sc, body)
		if err != nil {
			return 0, err
		}
		outerArgs[i+1] = br
	}

	outerBind := g.Insert(opgraph.OpNode{Kind: opgraph.NBind, BindFn: graphRef, BindArgs: outerArgs})
	return g.Insert(opgraph.OpNode{Kind: opgraph.NInvoke, Invoke: outerBind}), nil
}

func (c *Compiler) compileBuiltin(g *opgraph.Graph, sc *scope, n *ast.Builtin) (opgraph.NodeRef, error) {
	if n.Name == "force" {
		if len(n.Args) != 1 {
			return 0, werr.Newf(werr.Compile, "force expects exactly 1 argument, got %d", len(n.Args))
		}
		argRef, err := c.compile(g, sc, n.Args[0])
		if err != nil {
			return 0, err
		}
		return g.Insert(opgraph.OpNode{Kind: opgraph.NForce, Force: argRef}), nil
	}

	op, ok := store.ParseBuiltinOp(n.Name)
	if !ok {
		return 0, werr.Newf(werr.Compile, "unknown builtin %q", n.Name)
	}
	args := make([]opgraph.NodeRef, len(n.Args))
	for i, a := range n.Args {
		ar, err := c.compile(g, sc, a)
		if err != nil {
			return 0, err
		}
		args[i] = ar
	}
	return g.Insert(opgraph.OpNode{Kind: opgraph.NBuiltin, BuiltinOp: op, BuiltinArgs: args}), nil
}
