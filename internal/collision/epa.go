package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultEPAIterations = 64
	DefaultEPATolerance  = 1e-4
)

// Penetration is the minimum translation that separates A from B: moving A
// by Normal*Depth removes the overlap.
type Penetration struct {
	Normal mgl32.Vec3
	Depth  float32
}

type face struct {
	idx    [3]int
	normal mgl32.Vec3
	dist   float32
}

type polytope struct {
	verts []mgl32.Vec3
	faces []face
	// inner stays inside the polytope as it grows. The origin may sit on
	// the boundary, so faces are oriented against this point instead.
	inner mgl32.Vec3
}

// addFace appends the triangle with its normal oriented away from inner.
func (p *polytope) addFace(i, j, k int) {
	a, b, c := p.verts[i], p.verts[j], p.verts[k]
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < 1e-12 {
		return
	}
	n = n.Mul(1 / l)
	if n.Dot(a.Sub(p.inner)) < 0 {
		n = n.Mul(-1)
		j, k = k, j
	}
	d := n.Dot(a)
	if d < 0 {
		d = 0
	}
	p.faces = append(p.faces, face{idx: [3]int{i, j, k}, normal: n, dist: d})
}

func (p *polytope) closest() int {
	best, bestDist := -1, float32(math.MaxFloat32)
	for i, f := range p.faces {
		if f.dist < bestDist {
			best, bestDist = i, f.dist
		}
	}
	return best
}

type edge [2]int

// expand removes every face visible from vertex v and stitches the horizon
// to it.
func (p *polytope) expand(v int) {
	pt := p.verts[v]
	var horizon []edge
	kept := p.faces[:0]
	for _, f := range p.faces {
		if f.normal.Dot(pt.Sub(p.verts[f.idx[0]])) > 0 {
			for e := 0; e < 3; e++ {
				ed := edge{f.idx[e], f.idx[(e+1)%3]}
				shared := false
				for h, other := range horizon {
					if other[0] == ed[1] && other[1] == ed[0] {
						horizon = append(horizon[:h], horizon[h+1:]...)
						shared = true
						break
					}
				}
				if !shared {
					horizon = append(horizon, ed)
				}
			}
			continue
		}
		kept = append(kept, f)
	}
	p.faces = kept
	for _, e := range horizon {
		p.addFace(e[0], e[1], v)
	}
}

// EPA expands a GJK tetrahedron containing the origin until it finds the
// face of the Minkowski difference closest to the origin. It returns false
// when the simplex is not a tetrahedron or the polytope degenerates.
func EPA(a, b []mgl32.Vec3, s Simplex, maxIter int, tol float32) (Penetration, bool) {
	if s.Count < 4 {
		return Penetration{}, false
	}
	if maxIter <= 0 {
		maxIter = DefaultEPAIterations
	}
	if tol <= 0 {
		tol = DefaultEPATolerance
	}

	poly := &polytope{verts: append([]mgl32.Vec3(nil), s.Slice()...)}
	for _, v := range poly.verts {
		poly.inner = poly.inner.Add(v.Mul(0.25))
	}
	poly.addFace(0, 1, 2)
	poly.addFace(0, 3, 1)
	poly.addFace(0, 2, 3)
	poly.addFace(1, 3, 2)

	var best face
	found := false
	for i := 0; i < maxIter; i++ {
		ci := poly.closest()
		if ci < 0 {
			break
		}
		best, found = poly.faces[ci], true
		sp := Support(a, b, best.normal)
		if sp.Dot(best.normal)-best.dist < tol {
			return Penetration{Normal: best.normal.Mul(-1), Depth: best.dist}, true
		}
		poly.verts = append(poly.verts, sp)
		poly.expand(len(poly.verts) - 1)
	}
	if !found {
		return Penetration{}, false
	}
	return Penetration{Normal: best.normal.Mul(-1), Depth: best.dist}, false
}
