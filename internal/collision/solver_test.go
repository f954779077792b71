package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/clothsim/internal/partition"
	"github.com/Faultbox/clothsim/internal/proxy"
	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

var worldBounds = Bounds{Min: mgl32.Vec3{-10, 0, -10}, Max: mgl32.Vec3{10, 20, 10}}

// body is a minimal owner that records corrections applied to it.
type body struct {
	pos    mgl32.Vec3
	pinned bool
	hits   []shape.Kind
}

func (b *body) resolve(c mgl32.Vec3, other shape.Kind) mgl32.Vec3 {
	b.hits = append(b.hits, other)
	if b.pinned {
		return mgl32.Vec3{}
	}
	b.pos = b.pos.Add(c)
	return c
}

func makeProxy(t *testing.T, s shape.Shape, layer proxy.Layer, pos mgl32.Vec3, owner *body) proxy.Proxy {
	t.Helper()
	g, err := shape.Build(s)
	require.NoError(t, err)
	p := proxy.New(g, layer, 0)
	p.FullUpdate(cmath.Compose(pos, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}))
	if owner != nil {
		owner.pos = pos
		p.Dynamic = true
		p.Resolve = owner.resolve
	}
	return p
}

func TestSolveGroundCollision(t *testing.T) {
	s := NewSolver(Config{Bounds: worldBounds})
	pos, hit := s.SolveGroundCollision(mgl32.Vec3{1, -0.37, 2})
	assert.True(t, hit)
	assert.Equal(t, mgl32.Vec3{1, 0, 2}, pos)

	pos, hit = s.SolveGroundCollision(mgl32.Vec3{1, 0.5, 2})
	assert.False(t, hit)
	assert.Equal(t, float32(0.5), pos.Y())
}

func TestSolveWallsPerAxis(t *testing.T) {
	s := NewSolver(Config{Bounds: worldBounds})
	pos, hit := s.SolveWalls(mgl32.Vec3{-12, 25, 3})
	assert.True(t, hit)
	assert.Equal(t, mgl32.Vec3{-10, 20, 3}, pos)

	pos, hit = s.SolveWalls(mgl32.Vec3{1, 1, 1})
	assert.False(t, hit)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, pos)
}

func TestResolveParticlesSplitsOverlap(t *testing.T) {
	ba, bb := &body{}, &body{}
	a := makeProxy(t, shape.Sphere{Radius: 0.5}, proxy.LayerParticle, mgl32.Vec3{0, 1, 0}, ba)
	b := makeProxy(t, shape.Sphere{Radius: 0.5}, proxy.LayerParticle, mgl32.Vec3{0.6, 1, 0}, bb)

	require.True(t, ResolveParticles(&a, &b))
	assert.InDelta(t, -0.2, ba.pos.X(), 1e-5)
	assert.InDelta(t, 0.8, bb.pos.X(), 1e-5)
	assert.InDelta(t, 1.0, b.Center.Sub(a.Center).Len(), 1e-5)
}

func TestResolveParticlesCoincident(t *testing.T) {
	ba, bb := &body{}, &body{}
	a := makeProxy(t, shape.Sphere{Radius: 0.5}, proxy.LayerParticle, mgl32.Vec3{0, 1, 0}, ba)
	b := makeProxy(t, shape.Sphere{Radius: 0.5}, proxy.LayerParticle, mgl32.Vec3{0, 1, 0}, bb)

	require.True(t, ResolveParticles(&a, &b))
	assert.True(t, cmath.IsFinite(ba.pos))
	assert.True(t, cmath.IsFinite(bb.pos))
	assert.InDelta(t, 1.0, bb.pos.Sub(ba.pos).Len(), 1e-5)
}

func TestResolveSphereFullDepth(t *testing.T) {
	owner := &body{}
	p := makeProxy(t, shape.Sphere{Radius: 0.1}, proxy.LayerParticle, mgl32.Vec3{0, 1.5, 0}, owner)
	ball := makeProxy(t, shape.Sphere{Radius: 1}, proxy.LayerObstacle, mgl32.Vec3{0, 0.5, 0}, nil)

	require.True(t, ResolveSphere(&p, &ball))
	assert.InDelta(t, 1.6, owner.pos.Y(), 1e-5)
	assert.Equal(t, []shape.Kind{shape.KindSphere}, owner.hits)
}

func TestResolveHullPushesOut(t *testing.T) {
	s := NewSolver(Config{Bounds: worldBounds})
	owner := &body{}
	p := makeProxy(t, shape.Sphere{Radius: 0.1}, proxy.LayerParticle, mgl32.Vec3{0, 1.05, 0}, owner)
	box := makeProxy(t, shape.Box{Width: 2, Height: 2, Depth: 2}, proxy.LayerObstacle, mgl32.Vec3{}, nil)

	require.True(t, s.ResolveHull(&p, &box))
	assert.GreaterOrEqual(t, owner.pos.Y(), float32(1.09))
	assert.InDelta(t, 0, owner.pos.X(), 1e-3)
	assert.Equal(t, owner.pos, p.Center)
	assert.Equal(t, 1, s.Stats().GJKCalls)
}

func TestResolveHullSkipsByRadius(t *testing.T) {
	s := NewSolver(Config{Bounds: worldBounds})
	owner := &body{}
	p := makeProxy(t, shape.Sphere{Radius: 0.1}, proxy.LayerParticle, mgl32.Vec3{0, 5, 0}, owner)
	box := makeProxy(t, shape.Box{Width: 2, Height: 2, Depth: 2}, proxy.LayerObstacle, mgl32.Vec3{}, nil)

	assert.False(t, s.ResolveHull(&p, &box))
	assert.Zero(t, s.Stats().GJKCalls)
}

func TestPinnedOwnerKeepsProxy(t *testing.T) {
	owner := &body{pinned: true}
	p := makeProxy(t, shape.Sphere{Radius: 0.1}, proxy.LayerParticle, mgl32.Vec3{0, 1.5, 0}, owner)
	owner.pinned = true
	ball := makeProxy(t, shape.Sphere{Radius: 1}, proxy.LayerObstacle, mgl32.Vec3{0, 0.5, 0}, nil)

	require.True(t, ResolveSphere(&p, &ball))
	assert.Equal(t, mgl32.Vec3{0, 1.5, 0}, owner.pos)
	assert.Equal(t, mgl32.Vec3{0, 1.5, 0}, p.Center)
}

func TestSolveThroughTree(t *testing.T) {
	pool := proxy.NewPool()
	tree := partition.New(partition.Config{Min: mgl32.Vec3{-16, -16, -16}, Max: mgl32.Vec3{16, 16, 16}}, pool)
	s := NewSolver(Config{Bounds: worldBounds, SelfCollision: true})

	owner := &body{}
	fallen := &body{}
	boxID := pool.Add(makeProxy(t, shape.Box{Width: 2, Height: 2, Depth: 2}, proxy.LayerObstacle, mgl32.Vec3{3, 3, 3}, nil))
	pID := pool.Add(makeProxy(t, shape.Sphere{Radius: 0.1}, proxy.LayerParticle, mgl32.Vec3{3, 4.05, 3}, owner))
	fID := pool.Add(makeProxy(t, shape.Sphere{Radius: 0.1}, proxy.LayerParticle, mgl32.Vec3{-3, -1, -3}, fallen))
	for _, id := range []proxy.ID{boxID, pID, fID} {
		tree.Insert(id)
	}

	stats := s.Solve(tree, pool)
	assert.Equal(t, 1, stats.Contacts)
	assert.Equal(t, 1, stats.WallHits)
	assert.GreaterOrEqual(t, owner.pos.Y(), float32(4.09))
	assert.Equal(t, float32(0), fallen.pos.Y())
}

func TestResolveHullFallsBackOnVertexContact(t *testing.T) {
	s := NewSolver(Config{Bounds: worldBounds})
	box := makeProxy(t, shape.Box{Width: 1, Height: 1, Depth: 1}, proxy.LayerObstacle, mgl32.Vec3{}, nil)
	corner := box.WorldVertices[0]

	// A point body sitting exactly on a box corner gives GJK a one-point simplex.
	owner := &body{}
	p := makeProxy(t, shape.Sphere{Radius: 0.1}, proxy.LayerParticle, corner, owner)
	p.WorldVertices = []mgl32.Vec3{corner}

	require.True(t, s.ResolveHull(&p, &box))
	st := s.Stats()
	assert.Equal(t, 1, st.GJKCalls)
	assert.Equal(t, 1, st.Fallbacks)
	assert.True(t, cmath.IsFinite(owner.pos))
	assert.Equal(t, []shape.Kind{shape.KindBox}, owner.hits)
}

func TestSolveObstaclesPushesDynamicOnly(t *testing.T) {
	pool := proxy.NewPool()
	tree := partition.New(partition.Config{Min: mgl32.Vec3{-16, -16, -16}, Max: mgl32.Vec3{16, 16, 16}}, pool)
	s := NewSolver(Config{Bounds: worldBounds})

	crate := &body{}
	floorID := pool.Add(makeProxy(t, shape.Box{Width: 4, Height: 1, Depth: 4}, proxy.LayerObstacle, mgl32.Vec3{0, 0.5, 0}, nil))
	crateID := pool.Add(makeProxy(t, shape.Box{Width: 1, Height: 1, Depth: 1}, proxy.LayerObstacle, mgl32.Vec3{0, 1.3, 0}, crate))
	stoneID := pool.Add(makeProxy(t, shape.Box{Width: 1, Height: 1, Depth: 1}, proxy.LayerObstacle, mgl32.Vec3{1.5, 1.3, 1.5}, nil))
	for _, id := range []proxy.ID{floorID, crateID, stoneID} {
		tree.Insert(id)
	}

	assert.Equal(t, 1, s.SolveObstacles(tree, pool))
	assert.InDelta(t, 1.5, crate.pos.Y(), 1e-3)
	assert.InDelta(t, 0, crate.pos.X(), 1e-3)
	assert.Equal(t, crate.pos, pool.Get(crateID).Center)
	assert.Equal(t, mgl32.Vec3{1.5, 1.3, 1.5}, pool.Get(stoneID).Center)
	assert.Equal(t, mgl32.Vec3{0, 0.5, 0}, pool.Get(floorID).Center)
}

func TestResolveHullCylinderCap(t *testing.T) {
	s := NewSolver(Config{Bounds: worldBounds})
	owner := &body{}
	p := makeProxy(t, shape.Sphere{Radius: 0.1}, proxy.LayerParticle, mgl32.Vec3{0, 0.95, 0}, owner)
	pole := makeProxy(t, shape.Cylinder{Radius: 1, Length: 2}, proxy.LayerObstacle, mgl32.Vec3{}, nil)

	require.True(t, s.ResolveHull(&p, &pole))
	assert.InDelta(t, 1.1, owner.pos.Y(), 1e-3)
	assert.InDelta(t, 0, owner.pos.X(), 1e-3)
	assert.InDelta(t, 0, owner.pos.Z(), 1e-3)
}
