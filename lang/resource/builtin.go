package resource

import (
	"context"
	"net/url"
	"strings"

	"github.com/weavelang/weave/internal/werr"
	"github.com/weavelang/weave/lang/compiler"
	"github.com/weavelang/weave/lang/store"
)

// Builtin serves builtin:// URLs by compiling a hand-built ast.Expr
// embedded in this binary, rather than reading source text from anywhere —
// the same role the teacher's std prelude module plays, but expressed
// directly as AST since this repository has no lexer/parser of its own
// (SPEC_FULL.md §6).
type Builtin struct {
	Store    *store.Store
	Compiler *compiler.Compiler
}

func (p *Builtin) Retrieve(ctx context.Context, rawurl string) (store.Handle, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return store.Handle{}, werr.Wrap(werr.BadFormat, err)
	}
	if u.Scheme != "builtin" {
		return store.Handle{}, werr.Newf(werr.NotFound, "builtin provider does not serve scheme %q", u.Scheme)
	}

	name := u.Opaque
	if name == "" {
		name = u.Host + strings.TrimPrefix(u.Path, "/")
	}

	switch name {
	case "prelude":
		codeH, _, err := p.Compiler.CompileExpr(Prelude())
		if err != nil {
			return store.Handle{}, err
		}
		return p.Store.Insert(store.MakeThunk(codeH))
	default:
		return store.Handle{}, werr.Newf(werr.NotFound, "no such builtin resource %q", name)
	}
}
