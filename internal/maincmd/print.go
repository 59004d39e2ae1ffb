package maincmd

import (
	"fmt"
	"io"

	"github.com/weavelang/weave/lang/store"
)

// printResult writes a short, one-line rendering of h's top level to w. It
// does not attempt to be a full pretty-printer (there is no surface syntax
// to render back into); it exists so `run`/`eval` can show something
// legible for the WHNF a module forces to.
func printResult(w io.Writer, s *store.Store, h store.Handle) error {
	r, err := s.Reader(h)
	if err != nil {
		return err
	}
	switch r.Kind() {
	case store.Unit:
		fmt.Fprintln(w, "unit")
	case store.Bool:
		b, _ := r.AsBool()
		fmt.Fprintln(w, b)
	case store.Char:
		c, _ := r.AsChar()
		fmt.Fprintf(w, "%q\n", c)
	case store.Int, store.Float:
		n, _ := r.AsNumeric()
		if n.IsFloat {
			fmt.Fprintln(w, n.F)
		} else {
			fmt.Fprintln(w, n.I)
		}
	case store.String:
		str, _ := r.AsString()
		fmt.Fprintf(w, "%q\n", str)
	case store.Buffer:
		buf, _ := r.AsBuffer()
		fmt.Fprintf(w, "<%d bytes>\n", len(buf))
	case store.Nil:
		fmt.Fprintln(w, "[]")
	case store.Record:
		rr, _ := r.Record(s)
		fmt.Fprintf(w, "record(%d entries)\n", rr.Len())
	case store.Tuple:
		tr, _ := r.Tuple()
		fmt.Fprintf(w, "tuple(%d elements)\n", tr.Len())
	case store.Variant:
		fmt.Fprintln(w, "variant")
	case store.Cons:
		fmt.Fprintln(w, "cons")
	case store.Partial:
		fmt.Fprintln(w, "<partial>")
	default:
		fmt.Fprintf(w, "%s\n", r.Kind())
	}
	return nil
}
