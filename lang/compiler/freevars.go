package compiler

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/weavelang/weave/lang/ast"
)

// freeVars returns the names referenced by e that are not in bound, sorted
// so that lambda/top-level free-variable lists are assigned to input
// positions deterministically (P6 requires a stable env order).
func freeVars(e ast.Expr, bound map[string]bool) []string {
	found := map[string]bool{}
	walkFreeVars(e, bound, found)
	names := maps.Keys(found)
	sort.Strings(names)
	return names
}

func extendBound(bound map[string]bool, name string) map[string]bool {
	next := make(map[string]bool, len(bound)+1)
	for k := range bound {
		next[k] = true
	}
	next[name] = true
	return next
}

func walkFreeVars(e ast.Expr, bound, found map[string]bool) {
	switch n := e.(type) {
	case *ast.Var:
		if !bound[n.Name] {
			found[n.Name] = true
		}
	case *ast.Literal:
		// no references
	case *ast.LetIn:
		switch b := n.Bind.(type) {
		case *ast.NonRec:
			walkFreeVars(b.Value, bound, found)
			walkFreeVars(n.Body, extendBound(bound, b.Name), found)
		case *ast.Rec:
			inner := bound
			for _, rb := range b.Bindings {
				inner = extendBound(inner, rb.Name)
			}
			for _, rb := range b.Bindings {
				walkFreeVars(rb.Value, inner, found)
			}
			walkFreeVars(n.Body, inner, found)
		}
	case *ast.Lambda:
		inner := bound
		for _, p := range n.Params {
			inner = extendBound(inner, p)
		}
		walkFreeVars(n.Body, inner, found)
	case *ast.App:
		walkFreeVars(n.Fn, bound, found)
		for _, a := range n.Args {
			walkFreeVars(a, bound, found)
		}
	case *ast.Invoke:
		walkFreeVars(n.Target, bound, found)
	case *ast.Match:
		walkFreeVars(n.Scrutinee, bound, found)
		for _, c := range n.Cases {
			switch cc := c.(type) {
			case *ast.CaseTag:
				walkFreeVars(cc.Body, bound, found)
			case *ast.CaseEq:
				walkFreeVars(cc.Body, bound, found)
			case *ast.CaseDefault:
				walkFreeVars(cc.Body, bound, found)
			}
		}
	case *ast.Builtin:
		for _, a := range n.Args {
			walkFreeVars(a, bound, found)
		}
	}
}
