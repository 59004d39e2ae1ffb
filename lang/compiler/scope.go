package compiler

import "github.com/weavelang/weave/lang/opgraph"

// scope is a compile-time lexical environment: an immutable linked list of
// (name, node) bindings. Extending a scope never mutates an existing one,
// so a closure over an outer scope stays valid while an inner one is built
// and discarded (e.g. across sibling Lambda bodies).
type scope struct {
	parent *scope
	name   string
	ref    opgraph.NodeRef
}

func (s *scope) lookup(name string) (opgraph.NodeRef, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.ref, true
		}
	}
	return 0, false
}

func (s *scope) extend(name string, ref opgraph.NodeRef) *scope {
	return &scope{parent: s, name: name, ref: ref}
}
