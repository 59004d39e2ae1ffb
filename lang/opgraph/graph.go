// Package opgraph implements the higher-level DAG the compiler builds before
// flattening it into a register-form lang/store.Code object (C4).
package opgraph

import "github.com/weavelang/weave/lang/store"

// NodeRef is a small index into a Graph's arena. Arena indices start at 0,
// so the zero value refers to the first node inserted; the "unset" sentinel
// is -1 (noRef).
type NodeRef int

const noRef NodeRef = -1

// NodeKind tags the variant of an OpNode.
type NodeKind int

const (
	NInput NodeKind = iota
	NValue
	NGraph
	NForce
	NBind
	NInvoke
	NBuiltin
	NMatch
	// nTemp is an internal placeholder used to tie recursive-let knots
	// (DESIGN NOTES §9): it forwards to whatever node SetTo later assigns.
	nTemp
)

// CaseKind distinguishes a Match arm's selection rule.
type CaseKind int

const (
	CaseTag CaseKind = iota
	CaseEq
	CaseDefault
)

// MatchCase is one arm of a Match node: a literal tag (compared against the
// scrutinee's variant tag), a literal value (compared for equality), or an
// unconditional default.
type MatchCase struct {
	Kind CaseKind
	// Literal is the handle to compare the scrutinee against: a stored
	// string for CaseTag (compared against a variant's tag), or a stored
	// literal for CaseEq. Unused for CaseDefault.
	Literal store.Handle
	Target  NodeRef
}

// OpNode is one node of the op graph. Exactly one of its fields is
// meaningful, selected by Kind — see the specification's §4.3 for the
// semantics of each variant.
type OpNode struct {
	Kind NodeKind

	InputIdx int          // NInput
	Handle   store.Handle // NValue: a handle already stored via the Store
	Sub      *Graph       // NGraph: a nested, not-yet-flattened sub-graph

	Force NodeRef // NForce

	BindFn   NodeRef // NBind
	BindArgs []NodeRef

	Invoke NodeRef // NInvoke

	BuiltinOp   store.BuiltinOp // NBuiltin
	BuiltinArgs []NodeRef

	MatchScrut NodeRef // NMatch
	MatchCases []MatchCase

	tempTarget NodeRef // nTemp
}

func (n *OpNode) outEdges() []NodeRef {
	switch n.Kind {
	case NBind:
		return append([]NodeRef{n.BindFn}, n.BindArgs...)
	case NInvoke:
		return []NodeRef{n.Invoke}
	case NForce:
		return []NodeRef{n.Force}
	case NBuiltin:
		return append([]NodeRef(nil), n.BuiltinArgs...)
	case NMatch:
		edges := []NodeRef{n.MatchScrut}
		for _, c := range n.MatchCases {
			edges = append(edges, c.Target)
		}
		return edges
	case nTemp:
		return []NodeRef{n.tempTarget}
	default: // NInput, NValue, NGraph
		return nil
	}
}

// Graph is the arena of OpNodes being assembled by the compiler for one
// code object (one lambda body, match branch set, or application thunk).
type Graph struct {
	nodes []*OpNode
	root  NodeRef
}

// New creates an empty Graph with no root set yet.
func New() *Graph { return &Graph{root: noRef} }

// Insert appends node to the arena and returns its reference.
func (g *Graph) Insert(node OpNode) NodeRef {
	g.nodes = append(g.nodes, &node)
	return NodeRef(len(g.nodes) - 1)
}

// Temp allocates a placeholder node for a recursive-let binder: the
// definition of a `rec` binding may reference its own NodeRef before that
// definition has been compiled. SetTo must be called exactly once before
// ToCode resolves the graph.
func (g *Graph) Temp() NodeRef {
	return g.Insert(OpNode{Kind: nTemp, tempTarget: noRef})
}

// SetTo resolves a Temp placeholder to point at the real node real.
func (g *Graph) SetTo(temp, real NodeRef) {
	n := g.nodes[temp]
	if n.Kind != nTemp {
		panic("opgraph: SetTo called on a non-temp node")
	}
	n.tempTarget = real
}

// SetRoot marks ref as this graph's output node.
func (g *Graph) SetRoot(ref NodeRef) { g.root = ref }

// Root returns the graph's output node reference.
func (g *Graph) Root() NodeRef { return g.root }

// resolve follows temp-node forwarding until it reaches a concrete node.
func (g *Graph) resolve(ref NodeRef) NodeRef {
	for {
		n := g.nodes[ref]
		if n.Kind != nTemp {
			return ref
		}
		if n.tempTarget == noRef {
			panic("opgraph: unresolved temp node (SetTo was never called)")
		}
		ref = n.tempTarget
	}
}

func (g *Graph) get(ref NodeRef) *OpNode {
	return g.nodes[g.resolve(ref)]
}

// InsertHandle inserts a node referencing an already-stored handle: used
// both for literal constants (the compiler stores the literal first) and
// for free variables captured from an outer compile-time environment.
func (g *Graph) InsertHandle(h store.Handle) NodeRef {
	return g.Insert(OpNode{Kind: NValue, Handle: h})
}

// InsertGraph embeds a fully-built sub-graph as a single node: at flatten
// time it becomes a SetValue of the sub-graph's own flattened Code object.
func (g *Graph) InsertGraph(sub *Graph) NodeRef {
	return g.Insert(OpNode{Kind: NGraph, Sub: sub})
}
