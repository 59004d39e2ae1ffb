package compiler

import (
	"github.com/weavelang/weave/lang/ast"
	"github.com/weavelang/weave/lang/store"
)

func literalValue(l ast.Lit) store.Value {
	switch l.Kind {
	case ast.LitUnit:
		return store.Unit()
	case ast.LitBool:
		return store.MakeBool(l.Bool)
	case ast.LitChar:
		return store.MakeChar(l.Char)
	case ast.LitInt:
		return store.MakeInt(l.Int)
	case ast.LitFloat:
		return store.MakeFloat(l.Float)
	case ast.LitString:
		return store.MakeString(l.Str)
	default:
		panic("compiler: unknown literal kind")
	}
}
