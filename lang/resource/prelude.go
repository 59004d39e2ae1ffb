package resource

import "github.com/weavelang/weave/lang/ast"

// Prelude builds the standard environment bound to builtin://prelude: a
// record of small helper functions, reachable through
// fetch(builtin://prelude) when the Builtin provider is configured.
//
// identity(x) = x
// compose(f, g) = \x -> f(g(x))
func Prelude() ast.Expr {
	record := &ast.Builtin{Name: "empty_record"}
	record = insertField(record, "identity", &ast.Lambda{
		Params: []string{"x"},
		Body:   &ast.Var{Name: "x"},
	})
	record = insertField(record, "compose", &ast.Lambda{
		Params: []string{"f", "g"},
		Body: &ast.Lambda{
			Params: []string{"x"},
			Body: &ast.App{
				Fn:   &ast.Var{Name: "f"},
				Args: []ast.Expr{&ast.App{Fn: &ast.Var{Name: "g"}, Args: []ast.Expr{&ast.Var{Name: "x"}}}},
			},
		},
	})
	return record
}

func insertField(record ast.Expr, name string, value ast.Expr) *ast.Builtin {
	return &ast.Builtin{
		Name: "insert",
		Args: []ast.Expr{
			record,
			&ast.Literal{Lit: ast.Lit{Kind: ast.LitString, Str: name}},
			value,
		},
	}
}
