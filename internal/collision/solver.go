package collision

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clothsim/internal/partition"
	"github.com/Faultbox/clothsim/internal/proxy"
	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

// Bounds is the axis-aligned world box particles are kept inside.
// Min.Y is the ground height.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Config controls the collision solver.
type Config struct {
	Bounds        Bounds
	SelfCollision bool
	GJKIterations int
	EPAIterations int
	EPATolerance  float32
}

// Stats counts the work done by one Solve call.
type Stats struct {
	Pairs         int
	Tested        int
	Contacts      int
	WallHits      int
	GJKCalls      int
	GJKIterations int
	Fallbacks     int
}

// Solver resolves contacts by direct position correction.
type Solver struct {
	cfg   Config
	stats Stats
}

// NewSolver creates a solver with defaults filled in.
func NewSolver(cfg Config) *Solver {
	if cfg.GJKIterations <= 0 {
		cfg.GJKIterations = DefaultGJKIterations
	}
	if cfg.EPAIterations <= 0 {
		cfg.EPAIterations = DefaultEPAIterations
	}
	if cfg.EPATolerance <= 0 {
		cfg.EPATolerance = DefaultEPATolerance
	}
	return &Solver{cfg: cfg}
}

// Config returns the active configuration.
func (s *Solver) Config() Config {
	return s.cfg
}

// SetSelfCollision toggles particle-particle resolution.
func (s *Solver) SetSelfCollision(on bool) {
	s.cfg.SelfCollision = on
}

// Stats returns the counters of the last Solve call.
func (s *Solver) Stats() Stats {
	return s.stats
}

// SolveGroundCollision lifts pos back to the ground height if it is below it.
func (s *Solver) SolveGroundCollision(pos mgl32.Vec3) (mgl32.Vec3, bool) {
	if ground := s.cfg.Bounds.Min.Y(); pos.Y() < ground {
		pos[1] = ground
		return pos, true
	}
	return pos, false
}

// SolveWalls clamps pos against the six faces of the world box. Each axis
// is corrected independently.
func (s *Solver) SolveWalls(pos mgl32.Vec3) (mgl32.Vec3, bool) {
	b := s.cfg.Bounds
	hit := false
	for a := 0; a < 3; a++ {
		if pos[a] < b.Min[a] {
			pos[a] += b.Min[a] - pos[a]
			hit = true
		}
		if pos[a] > b.Max[a] {
			pos[a] -= pos[a] - b.Max[a]
			hit = true
		}
	}
	return pos, hit
}

// apply hands correction to the proxy owner and mirrors what was applied
// into the proxy cache.
func apply(p *proxy.Proxy, correction mgl32.Vec3, other shape.Kind) {
	if !cmath.IsFinite(correction) || p.Resolve == nil {
		return
	}
	applied := p.Resolve(correction, other)
	p.Translate(applied)
}

// ResolveParticles separates two overlapping dynamic spheres, each moving by
// half of the overlap along the line between their centers.
func ResolveParticles(a, b *proxy.Proxy) bool {
	d := b.Center.Sub(a.Center)
	overlap := a.Radius + b.Radius - d.Len()
	if overlap <= 0 {
		return false
	}
	n := cmath.SafeNormalize(d, cmath.Up)
	half := n.Mul(overlap / 2)
	apply(a, half.Mul(-1), b.Kind())
	apply(b, half, a.Kind())
	return true
}

// ResolveSphere pushes dynamic proxy dyn fully out of sphere obstacle.
func ResolveSphere(dyn, sphere *proxy.Proxy) bool {
	d := dyn.Center.Sub(sphere.Center)
	overlap := dyn.Radius + sphere.Radius - d.Len()
	if overlap <= 0 {
		return false
	}
	n := cmath.SafeNormalize(d, cmath.Up)
	apply(dyn, n.Mul(overlap), shape.KindSphere)
	return true
}

// ResolveHull tests dyn against a convex hull with GJK and pushes it out by
// the EPA penetration vector. dyn may be a particle or a dynamic obstacle.
func (s *Solver) ResolveHull(dyn, hull *proxy.Proxy) bool {
	if dyn.Center.Sub(hull.Center).Len() > dyn.Radius+hull.Radius {
		return false
	}
	res := GJK(dyn.WorldVertices, hull.WorldVertices, s.cfg.GJKIterations)
	s.stats.GJKCalls++
	if res.Iterations > s.stats.GJKIterations {
		s.stats.GJKIterations = res.Iterations
	}
	if !res.Hit {
		return false
	}

	var correction mgl32.Vec3
	pen, ok := EPA(dyn.WorldVertices, hull.WorldVertices, res.Simplex, s.cfg.EPAIterations, s.cfg.EPATolerance)
	if ok && cmath.IsFinite(pen.Normal) {
		correction = pen.Normal.Mul(pen.Depth)
	} else {
		s.stats.Fallbacks++
		correction = separateAlongCenters(dyn, hull)
	}
	apply(dyn, correction, hull.Kind())
	return true
}

// separateAlongCenters projects both shapes on the center axis and returns
// the push that clears their overlap on that axis.
func separateAlongCenters(dyn, hull *proxy.Proxy) mgl32.Vec3 {
	n := cmath.SafeNormalize(dyn.Center.Sub(hull.Center), cmath.Up)
	hullMax := FindFurthestPoint(hull.WorldVertices, n).Dot(n)
	dynMin := FindFurthestPoint(dyn.WorldVertices, n.Mul(-1)).Dot(n)
	depth := hullMax - dynMin
	if depth <= 0 {
		return mgl32.Vec3{}
	}
	return n.Mul(depth)
}

// Solve resolves every candidate pair from the tree and then clamps all
// dynamic particles against the world box.
func (s *Solver) Solve(tree *partition.Tree, pool *proxy.Pool) Stats {
	s.stats = Stats{}
	tree.ForEachPair(func(ia, ib proxy.ID) {
		s.stats.Pairs++
		a, b := pool.Get(ia), pool.Get(ib)
		if a == nil || b == nil {
			return
		}
		if s.resolvePair(a, b) {
			s.stats.Contacts++
		}
	})
	s.stats.WallHits = s.SolveBounds(pool)
	return s.stats
}

// SolveBounds clamps every dynamic particle proxy in pool against the world
// box and returns how many were moved.
func (s *Solver) SolveBounds(pool *proxy.Pool) int {
	hits := 0
	pool.Each(func(_ proxy.ID, p *proxy.Proxy) bool {
		if !p.Dynamic || p.Layer != proxy.LayerParticle {
			return true
		}
		if pos, hit := s.SolveWalls(p.Center); hit {
			hits++
			apply(p, pos.Sub(p.Center), shape.KindNone)
		}
		return true
	})
	return hits
}

// SolveObstacles resolves only the obstacle pairs from the tree, pushing
// dynamic obstacles out of the others. It resets the stats like Solve and
// returns the number of contacts.
func (s *Solver) SolveObstacles(tree *partition.Tree, pool *proxy.Pool) int {
	s.stats = Stats{}
	tree.ForEachPair(func(ia, ib proxy.ID) {
		a, b := pool.Get(ia), pool.Get(ib)
		if a == nil || b == nil || a.Layer == proxy.LayerParticle || b.Layer == proxy.LayerParticle {
			return
		}
		s.stats.Pairs++
		if s.resolveObstacles(a, b) {
			s.stats.Contacts++
		}
	})
	return s.stats.Contacts
}

// resolveObstacles pushes the dynamic one of two obstacles out of the other
// through the hull path. When both are dynamic only a moves.
func (s *Solver) resolveObstacles(a, b *proxy.Proxy) bool {
	if !a.Dynamic {
		a, b = b, a
	}
	if !a.Dynamic {
		return false
	}
	s.stats.Tested++
	return s.ResolveHull(a, b)
}

func (s *Solver) resolvePair(a, b *proxy.Proxy) bool {
	if a.Layer == proxy.LayerParticle && b.Layer == proxy.LayerParticle {
		if !s.cfg.SelfCollision {
			return false
		}
		s.stats.Tested++
		return ResolveParticles(a, b)
	}
	if a.Layer != proxy.LayerParticle && b.Layer != proxy.LayerParticle {
		return s.resolveObstacles(a, b)
	}
	if b.Layer == proxy.LayerParticle {
		a, b = b, a
	}
	if a.Layer != proxy.LayerParticle || !a.Dynamic {
		return false
	}
	s.stats.Tested++
	switch b.Kind() {
	case shape.KindSphere:
		return ResolveSphere(a, b)
	case shape.KindBox, shape.KindCylinder:
		return s.ResolveHull(a, b)
	}
	return false
}
