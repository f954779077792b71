// Package partition implements the octree broad phase over collision proxies.
package partition

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clothsim/internal/proxy"
)

// NodeID is a handle into the tree's node arena.
type NodeID = int32

// NoNode marks the absence of a node.
const NoNode NodeID = proxy.NoNode

// Root is the handle of the root node.
const Root NodeID = 0

const (
	DefaultMaxDepth  = 3
	DefaultThreshold = 8
)

// Config controls the tree extent and subdivision.
type Config struct {
	Min, Max  mgl32.Vec3
	MaxDepth  int
	Threshold int
}

type node struct {
	min, max mgl32.Vec3
	depth    int
	parent   NodeID
	children [8]NodeID
	split    bool
	items    []proxy.ID
}

// Tree is an octree whose nodes are never freed. Proxies migrate between
// nodes as they move.
type Tree struct {
	cfg   Config
	pool  *proxy.Pool
	nodes []node
}

// New builds a tree over pool. The root is subdivided immediately.
func New(cfg Config, pool *proxy.Pool) *Tree {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	t := &Tree{cfg: cfg, pool: pool}
	t.nodes = append(t.nodes, node{min: cfg.Min, max: cfg.Max, parent: NoNode})
	t.subdivide(Root)
	return t
}

// Config returns the tree configuration with defaults applied.
func (t *Tree) Config() Config {
	return t.cfg
}

func (t *Tree) subdivide(n NodeID) {
	parent := t.nodes[n]
	center := parent.min.Add(parent.max).Mul(0.5)
	var kids [8]NodeID
	for i := 0; i < 8; i++ {
		lo, hi := parent.min, center
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				lo[a], hi[a] = center[a], parent.max[a]
			}
		}
		kids[i] = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, node{min: lo, max: hi, depth: parent.depth + 1, parent: n})
	}
	t.nodes[n].children = kids
	t.nodes[n].split = true

	// Drain the direct list; straddling proxies land back on n.
	items := t.nodes[n].items
	t.nodes[n].items = nil
	for _, id := range items {
		t.place(n, id)
	}
}

func inside(min, max, p mgl32.Vec3) bool {
	return p[0] >= min[0] && p[0] <= max[0] &&
		p[1] >= min[1] && p[1] <= max[1] &&
		p[2] >= min[2] && p[2] <= max[2]
}

func (t *Tree) anyCornerInside(n NodeID, p *proxy.Proxy) bool {
	nd := &t.nodes[n]
	for _, c := range p.Corners {
		if inside(nd.min, nd.max, c) {
			return true
		}
	}
	return false
}

func (t *Tree) allCornersInside(n NodeID, p *proxy.Proxy) bool {
	nd := &t.nodes[n]
	for _, c := range p.Corners {
		if !inside(nd.min, nd.max, c) {
			return false
		}
	}
	return true
}

// place descends from n and stores id at the deepest node that fully
// contains it without straddling children.
func (t *Tree) place(n NodeID, id proxy.ID) {
	p := t.pool.Get(id)
	for {
		nd := &t.nodes[n]
		if !nd.split {
			nd.items = append(nd.items, id)
			p.Node = n
			if len(nd.items) > t.cfg.Threshold && nd.depth < t.cfg.MaxDepth {
				t.subdivide(n)
			}
			return
		}
		hit, count := NoNode, 0
		for _, c := range nd.children {
			if t.anyCornerInside(c, p) {
				hit = c
				count++
			}
		}
		if count != 1 || !t.allCornersInside(hit, p) {
			nd.items = append(nd.items, id)
			p.Node = n
			return
		}
		n = hit
	}
}

// Insert adds a live proxy to the tree.
func (t *Tree) Insert(id proxy.ID) {
	if p := t.pool.Get(id); p == nil || p.Node != NoNode {
		return
	}
	t.place(Root, id)
}

// Update re-homes id after its corners changed. It climbs while the current
// node does not fully contain the proxy, then descends again from there.
func (t *Tree) Update(id proxy.ID) {
	p := t.pool.Get(id)
	if p == nil {
		return
	}
	if p.Node == NoNode {
		t.place(Root, id)
		return
	}
	n := p.Node
	for n != Root && !t.allCornersInside(n, p) {
		n = t.nodes[n].parent
	}
	if n == p.Node && !t.nodes[n].split {
		return
	}
	t.detach(p.Node, id)
	p.Node = NoNode
	t.place(n, id)
}

// Remove detaches id from its node and clears its node handle.
func (t *Tree) Remove(id proxy.ID) {
	p := t.pool.Get(id)
	if p == nil || p.Node == NoNode {
		return
	}
	t.detach(p.Node, id)
	p.Node = NoNode
}

func (t *Tree) detach(n NodeID, id proxy.ID) {
	items := t.nodes[n].items
	for i, v := range items {
		if v == id {
			last := len(items) - 1
			items[i] = items[last]
			t.nodes[n].items = items[:last]
			return
		}
	}
}

// NodeOf returns the node listing id.
func (t *Tree) NodeOf(id proxy.ID) NodeID {
	if p := t.pool.Get(id); p != nil {
		return p.Node
	}
	return NoNode
}

// Contains reports whether node n lists id directly.
func (t *Tree) Contains(n NodeID, id proxy.ID) bool {
	for _, v := range t.nodes[n].items {
		if v == id {
			return true
		}
	}
	return false
}

// Bounds returns the extent of node n.
func (t *Tree) Bounds(n NodeID) (min, max mgl32.Vec3) {
	return t.nodes[n].min, t.nodes[n].max
}

// Depth returns the depth of node n; the root is 0.
func (t *Tree) Depth(n NodeID) int {
	return t.nodes[n].depth
}

// Parent returns the parent of n, or NoNode for the root.
func (t *Tree) Parent(n NodeID) NodeID {
	return t.nodes[n].parent
}

// Children returns the children of n, or nil if n is a leaf.
func (t *Tree) Children(n NodeID) []NodeID {
	if !t.nodes[n].split {
		return nil
	}
	kids := t.nodes[n].children
	return kids[:]
}

// Items returns the proxies listed directly at n. The slice must not be modified.
func (t *Tree) Items(n NodeID) []proxy.ID {
	return t.nodes[n].items
}

// FullyContains reports whether all corners of id lie inside n.
func (t *Tree) FullyContains(n NodeID, id proxy.ID) bool {
	p := t.pool.Get(id)
	return p != nil && t.allCornersInside(n, p)
}

// Straddles reports whether the corners of id touch two or more children of n.
func (t *Tree) Straddles(n NodeID, id proxy.ID) bool {
	p := t.pool.Get(id)
	if p == nil || !t.nodes[n].split {
		return false
	}
	count := 0
	for _, c := range t.nodes[n].children {
		if t.anyCornerInside(c, p) {
			count++
		}
	}
	return count >= 2
}

// Walk visits every node depth-first from the root.
func (t *Tree) Walk(fn func(n NodeID)) {
	var visit func(n NodeID)
	visit = func(n NodeID) {
		fn(n)
		if t.nodes[n].split {
			for _, c := range t.nodes[n].children {
				visit(c)
			}
		}
	}
	visit(Root)
}

// Stats summarises the tree shape.
type Stats struct {
	Nodes    int
	Leaves   int
	Proxies  int
	MaxDepth int
	PerDepth []int
}

// Stats counts nodes and listed proxies.
func (t *Tree) Stats() Stats {
	s := Stats{Nodes: len(t.nodes), PerDepth: make([]int, t.cfg.MaxDepth+1)}
	for i := range t.nodes {
		nd := &t.nodes[i]
		if !nd.split {
			s.Leaves++
		}
		if nd.depth > s.MaxDepth {
			s.MaxDepth = nd.depth
		}
		s.Proxies += len(nd.items)
		if nd.depth < len(s.PerDepth) {
			s.PerDepth[nd.depth] += len(nd.items)
		}
	}
	return s
}
