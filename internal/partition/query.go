package partition

import "github.com/Faultbox/clothsim/internal/proxy"

// ForEachCandidate calls fn for every proxy that shares an ancestor or
// descendant relationship with id: proxies listed at id's node and its
// ancestors, and proxies anywhere below id's node. Iteration stops when fn
// returns false.
func (t *Tree) ForEachCandidate(id proxy.ID, fn func(other proxy.ID) bool) {
	start := t.NodeOf(id)
	if start == NoNode {
		return
	}
	for n := start; n != NoNode; n = t.nodes[n].parent {
		for _, other := range t.nodes[n].items {
			if other == id {
				continue
			}
			if !fn(other) {
				return
			}
		}
	}
	if t.nodes[start].split {
		for _, c := range t.nodes[start].children {
			if !t.forEachBelow(c, fn) {
				return
			}
		}
	}
}

func (t *Tree) forEachBelow(n NodeID, fn func(other proxy.ID) bool) bool {
	nd := &t.nodes[n]
	for _, other := range nd.items {
		if !fn(other) {
			return false
		}
	}
	if nd.split {
		for _, c := range nd.children {
			if !t.forEachBelow(c, fn) {
				return false
			}
		}
	}
	return true
}

// ForEachPair calls fn once for every unordered pair of proxies that are
// listed at the same node or where one is listed at an ancestor of the
// other's node.
func (t *Tree) ForEachPair(fn func(a, b proxy.ID)) {
	var stack []proxy.ID
	var visit func(n NodeID)
	visit = func(n NodeID) {
		items := t.nodes[n].items
		for i, a := range items {
			for _, up := range stack {
				fn(up, a)
			}
			for _, b := range items[i+1:] {
				fn(a, b)
			}
		}
		if !t.nodes[n].split {
			return
		}
		mark := len(stack)
		stack = append(stack, items...)
		for _, c := range t.nodes[n].children {
			visit(c)
		}
		stack = stack[:mark]
	}
	visit(Root)
}
