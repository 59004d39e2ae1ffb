// Package ast defines the AST contract the compiler (lang/compiler) consumes.
// Producing this tree — lexing and parsing concrete syntax — is out of scope
// for this repository; a Parser implementation is expected to be supplied by
// a caller (the embedded prelude in lang/resource builds one by hand instead
// of going through a real parser).
package ast

// Node is any node of the tree. Every concrete node type implements Walk so
// that free-variable analysis (lang/compiler) and other passes can visit a
// tree generically without a type switch at every call site.
type Node interface {
	Walk(v Visitor)
}

// Expr is an expression node: Var, Literal, LetIn, Lambda, App, Invoke,
// Match, or Builtin.
type Expr interface {
	Node
	exprNode()
}

// Bind is a let-binding: either a single non-recursive binding or a group of
// mutually recursive ones.
type Bind interface {
	Node
	bindNode()
}

// Case is one arm of a Match expression.
type Case interface {
	Node
	caseNode()
}

type (
	// Var references a name bound by an enclosing Lambda or LetIn.
	Var struct {
		Name string
	}

	// Literal wraps a constant value.
	Literal struct {
		Lit Lit
	}

	// LetIn introduces a binding (possibly recursive) in scope for Body.
	LetIn struct {
		Bind Bind
		Body Expr
	}

	// Lambda is a function literal: Params are bound within Body.
	Lambda struct {
		Params []string
		Body   Expr
	}

	// App applies Fn to Args. Fn need not already be in weak-head-normal
	// form; compiling an App produces a thunk (spec.md §4.4).
	App struct {
		Fn   Expr
		Args []Expr
	}

	// Invoke forces a fully-saturated code or partial value with no further
	// arguments, as distinct from App (which may itself be under-saturated).
	Invoke struct {
		Target Expr
	}

	// Match forces Scrutinee to WHNF and dispatches to the first matching
	// Case.
	Match struct {
		Scrutinee Expr
		Cases     []Case
	}

	// Builtin invokes a named primitive operation (lang/store.BuiltinOp)
	// with Args.
	Builtin struct {
		Name string
		Args []Expr
	}
)

func (*Var) exprNode()     {}
func (*Literal) exprNode() {}
func (*LetIn) exprNode()   {}
func (*Lambda) exprNode()  {}
func (*App) exprNode()     {}
func (*Invoke) exprNode()  {}
func (*Match) exprNode()   {}
func (*Builtin) exprNode() {}

func (n *Var) Walk(v Visitor) {
	v.Visit(n)
}
func (n *Literal) Walk(v Visitor) {
	v.Visit(n)
}
func (n *LetIn) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Bind.Walk(v)
	n.Body.Walk(v)
}
func (n *Lambda) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Body.Walk(v)
}
func (n *App) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Fn.Walk(v)
	for _, a := range n.Args {
		a.Walk(v)
	}
}
func (n *Invoke) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Target.Walk(v)
}
func (n *Match) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Scrutinee.Walk(v)
	for _, c := range n.Cases {
		c.Walk(v)
	}
}
func (n *Builtin) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, a := range n.Args {
		a.Walk(v)
	}
}

type (
	// NonRec is a single, non-recursive binding: Value cannot refer to Name.
	NonRec struct {
		Name  string
		Value Expr
	}

	// Rec is a group of mutually recursive bindings: every Value may refer
	// to any Name in the group (including its own).
	Rec struct {
		Bindings []RecBinding
	}

	// RecBinding is one member of a Rec group.
	RecBinding struct {
		Name  string
		Value Expr
	}
)

func (*NonRec) bindNode() {}
func (*Rec) bindNode()    {}

func (n *NonRec) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Value.Walk(v)
}
func (n *Rec) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, b := range n.Bindings {
		b.Value.Walk(v)
	}
}

type (
	// CaseTag matches a Variant cell whose tag equals Tag.
	CaseTag struct {
		Tag  string
		Body Expr
	}

	// CaseEq matches a value structurally equal to Lit.
	CaseEq struct {
		Lit  Lit
		Body Expr
	}

	// CaseDefault matches unconditionally; it must be the last Case in a
	// Match, if present (B4: a Match with no matching arm and no
	// CaseDefault is a BadFormat error at run time).
	CaseDefault struct {
		Body Expr
	}
)

func (*CaseTag) caseNode()     {}
func (*CaseEq) caseNode()      {}
func (*CaseDefault) caseNode() {}

func (n *CaseTag) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Body.Walk(v)
}
func (n *CaseEq) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Body.Walk(v)
}
func (n *CaseDefault) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Body.Walk(v)
}

// LitKind tags the variant held by a Lit.
type LitKind int

const (
	LitUnit LitKind = iota
	LitBool
	LitChar
	LitInt
	LitFloat
	LitString
)

// Lit is a literal constant, covering the scalar kinds the specification's
// AST contract names: unit, bool, char, int, float, string.
type Lit struct {
	Kind  LitKind
	Bool  bool
	Char  rune
	Int   int64
	Float float64
	Str   string
}
