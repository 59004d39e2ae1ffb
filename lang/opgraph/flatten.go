package opgraph

import "github.com/weavelang/weave/lang/store"

// ToCode flattens g into a register-form store.Code, storing any nested
// sub-graphs (and literal match-tag/constant handles already embedded by
// the compiler) into s along the way. This is a reverse-postorder
// traversal from the root (§4.3): a depth-first walk that visits every
// operand of a node before the node itself, which for this graph's "edges
// point at dependencies" shape already places producers ahead of their
// consumers in the flattened op list.
func (g *Graph) ToCode(s *store.Store) (store.Code, error) {
	if g.root == noRef {
		panic("opgraph: ToCode called before SetRoot")
	}

	var order []NodeRef
	visited := make(map[NodeRef]bool)
	var visit func(ref NodeRef)
	visit = func(ref NodeRef) {
		ref = g.resolve(ref)
		if visited[ref] {
			return
		}
		visited[ref] = true
		for _, child := range g.get(ref).outEdges() {
			visit(child)
		}
		order = append(order, ref)
	}
	visit(g.root)

	// addr/reg for a node is simply its position in `order`: one op per
	// node, written to the register matching its own address.
	addr := make(map[NodeRef]store.OpAddr, len(order))
	for i, ref := range order {
		addr[ref] = store.OpAddr(i)
	}

	// in-edges: for each node, which other (already-addressed) nodes
	// consume it. This becomes each op's Dest.Uses (I4).
	inEdges := make(map[NodeRef][]store.OpAddr)
	for _, ref := range order {
		n := g.get(ref)
		for _, child := range n.outEdges() {
			child = g.resolve(child)
			inEdges[child] = append(inEdges[child], addr[ref])
		}
	}

	makeDest := func(ref NodeRef) store.Dest {
		return store.Dest{Reg: addr[ref], Uses: inEdges[ref]}
	}

	var ops []store.Op
	var constants []store.Handle
	var ready []store.OpAddr
	addConst := func(h store.Handle) store.ValueID {
		id := store.ValueID(len(constants))
		constants = append(constants, h)
		return id
	}

	for _, ref := range order {
		n := g.get(ref)
		dest := makeDest(ref)
		var op store.Op
		switch n.Kind {
		case NInput:
			ready = append(ready, addr[ref])
			op = store.Op{Kind: store.OpSetInput, Dest: dest, Input: store.InputID(n.InputIdx)}
		case NValue:
			ready = append(ready, addr[ref])
			op = store.Op{Kind: store.OpSetValue, Dest: dest, Value: addConst(n.Handle)}
		case NGraph:
			sub, err := n.Sub.ToCode(s)
			if err != nil {
				return store.Code{}, err
			}
			h, err := s.Insert(store.MakeCode(sub))
			if err != nil {
				return store.Code{}, err
			}
			ready = append(ready, addr[ref])
			op = store.Op{Kind: store.OpSetValue, Dest: dest, Value: addConst(h)}
		case NForce:
			op = store.Op{Kind: store.OpForce, Dest: dest, Src: addr[g.resolve(n.Force)]}
		case NBind:
			args := make([]store.RegID, len(n.BindArgs))
			for i, a := range n.BindArgs {
				args[i] = addr[g.resolve(a)]
			}
			op = store.Op{Kind: store.OpBind, Dest: dest, Fn: addr[g.resolve(n.BindFn)], Args: args}
		case NInvoke:
			op = store.Op{Kind: store.OpInvoke, Dest: dest, Target: addr[g.resolve(n.Invoke)]}
		case NBuiltin:
			if len(n.BuiltinArgs) == 0 {
				ready = append(ready, addr[ref])
			}
			args := make([]store.RegID, len(n.BuiltinArgs))
			for i, a := range n.BuiltinArgs {
				args[i] = addr[g.resolve(a)]
			}
			op = store.Op{Kind: store.OpBuiltin, Dest: dest, Builtin: n.BuiltinOp, Args: args}
		case NMatch:
			cases := make([]store.OpCase, len(n.MatchCases))
			for i, c := range n.MatchCases {
				switch c.Kind {
				case CaseTag:
					cases[i] = store.OpCase{Kind: store.CaseTag, Literal: addConst(c.Literal), Target: addr[g.resolve(c.Target)]}
				case CaseEq:
					cases[i] = store.OpCase{Kind: store.CaseEq, Literal: addConst(c.Literal), Target: addr[g.resolve(c.Target)]}
				default:
					cases[i] = store.OpCase{Kind: store.CaseDefault, Target: addr[g.resolve(c.Target)]}
				}
			}
			op = store.Op{Kind: store.OpMatch, Dest: dest, Target: addr[g.resolve(n.MatchScrut)], Cases: cases}
		default:
			panic("opgraph: unresolved temp node reached ToCode")
		}
		ops = append(ops, op)
	}

	return store.Code{
		Ret:       addr[g.resolve(g.root)],
		Ready:     ready,
		Ops:       ops,
		Constants: constants,
	}, nil
}

// StoreIn flattens and stores g as a Code value, returning its handle. This
// is the op-graph analogue of the specification's Storable trait.
func (g *Graph) StoreIn(s *store.Store) (store.Handle, error) {
	code, err := g.ToCode(s)
	if err != nil {
		return store.Handle{}, err
	}
	return s.Insert(store.MakeCode(code))
}
