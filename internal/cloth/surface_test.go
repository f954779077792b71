package cloth

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceFlatNormals(t *testing.T) {
	c := newCloth(t, nil)
	s := c.Surface()
	assert.Equal(t, 25, s.VertexCount())
	assert.Len(t, s.Indices, 4*4*6)
	for i, n := range s.Normals {
		assert.True(t, n.ApproxEqual(mgl32.Vec3{0, 1, 0}), "normal %d = %v", i, n)
	}
}

func TestSurfaceSubdivision(t *testing.T) {
	c := newCloth(t, nil)
	c.SetSubdivide(true)
	c.RebuildSurface()
	s := c.Surface()

	require.Equal(t, 25+16, s.VertexCount())
	assert.Len(t, s.Indices, 16*4*3)
	// Centroid of the first quad.
	assert.True(t, s.Positions[25].ApproxEqual(mgl32.Vec3{0.5, 0, 0.5}))
	assert.True(t, s.UVs[25].ApproxEqual(mgl32.Vec2{0.125, 0.125}))
	assert.True(t, s.Normals[25].ApproxEqual(mgl32.Vec3{0, 1, 0}))

	c.SetSubdivide(false)
	c.RebuildSurface()
	assert.Equal(t, 25, c.Surface().VertexCount())
}

func TestSurfaceSmoothing(t *testing.T) {
	c := newCloth(t, func(p *Params) { p.Rows = 5; p.Smoothing = 0.5 })
	c.Particle(2, 2).Position = mgl32.Vec3{2, 4, 2}
	c.RebuildSurface()

	// Diagonal neighbours two cells away are all at y=0.
	assert.InDelta(t, 2, c.Surface().Positions[12].Y(), 1e-6)
	// Border vertices are not smoothed.
	assert.Equal(t, c.Particle(0, 0).Position, c.Surface().Positions[0])
}

func TestSurfaceTracksParticles(t *testing.T) {
	c := newCloth(t, nil)
	c.Particle(4, 4).Position = mgl32.Vec3{4, -1, 4}
	c.RebuildSurface()
	assert.Equal(t, mgl32.Vec3{4, -1, 4}, c.Surface().Positions[24])
	for _, n := range c.Surface().Normals {
		assert.InDelta(t, 1, n.Len(), 1e-5)
	}
}
