// Package collision detects and resolves contacts between cloth particles,
// scene obstacles and the world bounds.
package collision

import (
	"github.com/go-gl/mathgl/mgl32"

	cmath "github.com/Faultbox/clothsim/pkg/math"
)

// DefaultGJKIterations caps the GJK refinement loop.
const DefaultGJKIterations = 30

const degenerate = 1e-10

// Simplex holds up to four Minkowski-difference points. The most recent
// point is always last.
type Simplex struct {
	Points [4]mgl32.Vec3
	Count  int
}

func (s *Simplex) push(p mgl32.Vec3) {
	s.Points[s.Count] = p
	s.Count++
}

func (s *Simplex) set(pts ...mgl32.Vec3) {
	s.Count = copy(s.Points[:], pts)
}

// Slice returns the live points.
func (s *Simplex) Slice() []mgl32.Vec3 {
	return s.Points[:s.Count]
}

// FindFurthestPoint returns the vertex with the largest projection on d.
// Ties keep the first vertex seen.
func FindFurthestPoint(verts []mgl32.Vec3, d mgl32.Vec3) mgl32.Vec3 {
	best := verts[0]
	bestDot := best.Dot(d)
	for _, v := range verts[1:] {
		if dot := v.Dot(d); dot > bestDot {
			best, bestDot = v, dot
		}
	}
	return best
}

// Support returns the Minkowski-difference support point a - b along d.
func Support(a, b []mgl32.Vec3, d mgl32.Vec3) mgl32.Vec3 {
	return FindFurthestPoint(a, d).Sub(FindFurthestPoint(b, d.Mul(-1)))
}

// Result is the outcome of a GJK query.
type Result struct {
	Hit        bool
	Simplex    Simplex
	Iterations int
}

// GJK reports whether the convex hulls of a and b overlap. It never runs
// more than maxIter refinement steps.
func GJK(a, b []mgl32.Vec3, maxIter int) Result {
	var res Result
	if len(a) == 0 || len(b) == 0 {
		return res
	}
	if maxIter <= 0 {
		maxIter = DefaultGJKIterations
	}

	dir := b[0].Sub(a[0])
	if dir.LenSqr() < degenerate {
		dir = mgl32.Vec3{1, 0, 0}
	}
	first := Support(a, b, dir)
	res.Simplex.push(first)
	dir = first.Mul(-1)
	if dir.LenSqr() < degenerate {
		res.Hit = true
		return res
	}

	for res.Iterations < maxIter {
		res.Iterations++
		p := Support(a, b, dir)
		if p.Dot(dir) <= 0 {
			return res
		}
		res.Simplex.push(p)
		if nextSimplex(&res.Simplex, &dir) {
			res.Hit = true
			return res
		}
		if dir.LenSqr() < degenerate {
			// Origin lies on the current feature: touching.
			res.Hit = true
			return res
		}
	}
	return res
}

func nextSimplex(s *Simplex, dir *mgl32.Vec3) bool {
	switch s.Count {
	case 2:
		return line(s, dir)
	case 3:
		return triangle(s, dir)
	case 4:
		return tetrahedron(s, dir)
	}
	return false
}

func line(s *Simplex, dir *mgl32.Vec3) bool {
	a, b := s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < degenerate || ab.Dot(ao) <= 0 {
		s.set(a)
		*dir = ao
		return false
	}
	perp := cmath.TripleCross(ab, ao, ab)
	if perp.LenSqr() < degenerate {
		// Origin on the segment. Keep growing so EPA gets a tetrahedron.
		*dir = cmath.AnyPerpendicular(ab)
		return false
	}
	*dir = perp
	return false
}

func triangle(s *Simplex, dir *mgl32.Vec3) bool {
	a, b, c := s.Points[2], s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	if abc.LenSqr() < degenerate {
		s.set(b, a)
		return line(s, dir)
	}
	if ab.Cross(abc).Dot(ao) > 0 {
		s.set(b, a)
		*dir = cmath.TripleCross(ab, ao, ab)
		return false
	}
	if abc.Cross(ac).Dot(ao) > 0 {
		s.set(c, a)
		*dir = cmath.TripleCross(ac, ao, ac)
		return false
	}
	if abc.Dot(ao) > 0 {
		*dir = abc
	} else {
		s.set(b, c, a)
		*dir = abc.Mul(-1)
	}
	return false
}

// tetrahedron tests the origin against the three faces that contain the
// newest point. The base face was already checked on the previous step.
func tetrahedron(s *Simplex, dir *mgl32.Vec3) bool {
	a, b, c, d := s.Points[3], s.Points[2], s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.LenSqr() < degenerate || acd.LenSqr() < degenerate || adb.LenSqr() < degenerate {
		s.set(c, b, a)
		return triangle(s, dir)
	}

	switch {
	case abc.Dot(ao) > 0:
		s.set(c, b, a)
		return triangle(s, dir)
	case acd.Dot(ao) > 0:
		s.set(d, c, a)
		return triangle(s, dir)
	case adb.Dot(ao) > 0:
		s.set(b, d, a)
		return triangle(s, dir)
	}
	return true
}
