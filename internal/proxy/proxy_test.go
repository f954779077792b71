package proxy

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

func boxProxy(t *testing.T) Proxy {
	t.Helper()
	g, err := shape.Build(shape.Box{Width: 2, Height: 2, Depth: 2})
	require.NoError(t, err)
	return New(g, LayerObstacle, 0)
}

func TestFullUpdate(t *testing.T) {
	p := boxProxy(t)
	p.FullUpdate(cmath.Compose(mgl32.Vec3{5, 0, 0}, mgl32.QuatIdent(), mgl32.Vec3{2, 1, 1}))

	assert.Equal(t, mgl32.Vec3{5, 0, 0}, p.Center)
	assert.InDelta(t, 2*mgl32.Vec3{1, 1, 1}.Len(), p.Radius, 1e-5)

	min, max := p.Bounds()
	assert.True(t, min.ApproxEqual(mgl32.Vec3{3, -1, -1}), "min = %v", min)
	assert.True(t, max.ApproxEqual(mgl32.Vec3{7, 1, 1}), "max = %v", max)
	assert.Equal(t, shape.KindBox, p.Kind())
}

func TestFullUpdateRotated(t *testing.T) {
	p := boxProxy(t)
	rot := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})
	p.FullUpdate(cmath.Compose(mgl32.Vec3{}, rot, mgl32.Vec3{1, 1, 1}))

	_, max := p.Bounds()
	assert.InDelta(t, 1.41421, max.X(), 1e-4)
	assert.InDelta(t, 1, max.Y(), 1e-5)
}

func TestPositionalUpdate(t *testing.T) {
	p := boxProxy(t)
	p.FullUpdate(mgl32.Ident4())
	p.PositionalUpdate(mgl32.Vec3{0, 3, 0})

	assert.Equal(t, mgl32.Vec3{0, 3, 0}, p.Center)
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, cmath.Translation(p.Transform))
	for i, v := range p.WorldVertices {
		assert.True(t, v.ApproxEqual(p.Geometry.Vertices[i].Add(mgl32.Vec3{0, 3, 0})))
	}
}

func TestPoolReuse(t *testing.T) {
	pool := NewPool()
	a := pool.Add(boxProxy(t))
	b := pool.Add(boxProxy(t))
	assert.Equal(t, 2, pool.Len())

	require.True(t, pool.Remove(a))
	assert.False(t, pool.Live(a))
	assert.Nil(t, pool.Get(a))
	assert.False(t, pool.Remove(a))

	c := pool.Add(boxProxy(t))
	assert.Equal(t, a, c)
	assert.True(t, pool.Live(b))

	seen := 0
	pool.Each(func(id ID, p *Proxy) bool {
		seen++
		return true
	})
	assert.Equal(t, 2, seen)
	assert.Nil(t, pool.Get(NoID))
}
