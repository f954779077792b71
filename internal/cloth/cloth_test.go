package cloth

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

func newCloth(t *testing.T, mutate func(*Params)) *Cloth {
	t.Helper()
	p := DefaultParams()
	p.Rows = 5
	p.Spacing = 1
	p.Origin = mgl32.Vec3{}
	if mutate != nil {
		mutate(&p)
	}
	c, err := New(p)
	require.NoError(t, err)
	return c
}

func TestSpringTopologyCounts(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8} {
		c := newCloth(t, func(p *Params) { p.Rows = n })
		counts := map[SpringKind]int{}
		for _, s := range c.Springs() {
			counts[s.Kind]++
		}
		stretch, shear, bend := SpringCounts(n)
		assert.Equal(t, 2*n*(n-1), counts[Stretch], "stretch n=%d", n)
		assert.Equal(t, 2*(n-1)*(n-1), counts[Shear], "shear n=%d", n)
		assert.Equal(t, 2*n*(n-2), counts[Bend], "bend n=%d", n)
		assert.Equal(t, stretch+shear+bend, len(c.Springs()))
		assert.Len(t, c.Particles(), n*n)
	}
}

func TestRestLengths(t *testing.T) {
	c := newCloth(t, func(p *Params) { p.Spacing = 0.5 })
	for _, s := range c.Springs() {
		switch s.Kind {
		case Stretch:
			assert.InDelta(t, 0.5, s.RestLength, 1e-6)
		case Shear:
			assert.InDelta(t, 0.5*math.Sqrt2, s.RestLength, 1e-6)
		case Bend:
			assert.InDelta(t, 1.0, s.RestLength, 1e-6)
		}
	}
}

func TestInvalidConfigurationKeepsState(t *testing.T) {
	c := newCloth(t, nil)
	before := len(c.Particles())

	assert.ErrorIs(t, c.SetRows(1), ErrInvalidRows)
	assert.ErrorIs(t, c.SetRows(MaxRows+1), ErrInvalidRows)
	assert.ErrorIs(t, c.SetSpacing(0), ErrInvalidSpacing)
	assert.ErrorIs(t, c.SetSpacing(float32(math.NaN())), ErrInvalidSpacing)
	assert.ErrorIs(t, c.SetIterations(0), ErrInvalidIterations)
	assert.ErrorIs(t, c.SetSmoothing(1.5), ErrInvalidSmoothing)

	assert.Len(t, c.Particles(), before)
	assert.Equal(t, float32(1), c.Params().Spacing)
	assert.Equal(t, 2, c.Params().Iterations)
}

func TestNewRejectsInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.Rows = 0
	_, err := New(p)
	assert.ErrorIs(t, err, ErrInvalidRows)
}

func TestResizeReusesParticles(t *testing.T) {
	c := newCloth(t, func(p *Params) { p.Rows = 8 })
	first := &c.Particles()[0]
	require.NoError(t, c.SetRows(6))
	assert.Same(t, first, &c.Particles()[0])
	assert.Len(t, c.Particles(), 36)
	assert.True(t, c.Particle(0, 3).Pinned)
}

func TestPinnedParticlesInvariant(t *testing.T) {
	c := newCloth(t, nil)
	var pinned []mgl32.Vec3
	for _, i := range c.RowIndices(RowTop) {
		pinned = append(pinned, c.Particles()[i].Position)
	}
	for tick := 0; tick < 50; tick++ {
		c.Update(0.02)
	}
	for k, i := range c.RowIndices(RowTop) {
		assert.Equal(t, pinned[k], c.Particles()[i].Position)
	}
}

func TestClothSagsAndStaysFinite(t *testing.T) {
	c := newCloth(t, nil)
	initial := c.AverageHeight()
	for tick := 0; tick < 100; tick++ {
		c.Update(0.02)
		c.RebuildSurface()
	}
	assert.Less(t, c.AverageHeight(), initial)
	for _, p := range c.Particles() {
		assert.True(t, cmath.IsFinite(p.Position), "particle %d = %v", p.Index, p.Position)
	}
}

func TestGravityToggleAndPause(t *testing.T) {
	c := newCloth(t, nil)
	assert.False(t, c.ToggleGravity())
	for tick := 0; tick < 10; tick++ {
		c.Update(0.02)
	}
	assert.InDelta(t, 0, c.AverageHeight(), 1e-6)

	c.ToggleGravity()
	c.SetSimulating(false)
	c.Update(0.02)
	assert.InDelta(t, 0, c.AverageHeight(), 1e-6)
}

func TestReset(t *testing.T) {
	c := newCloth(t, nil)
	for tick := 0; tick < 20; tick++ {
		c.Update(0.02)
	}
	c.Reset()
	for _, p := range c.Particles() {
		assert.Equal(t, p.RestPosition, p.Position)
		assert.Equal(t, mgl32.Vec3{}, p.Velocity())
	}
	assert.True(t, c.Particle(0, 0).Pinned)
}

func TestSanitizeRestoresNonFinite(t *testing.T) {
	c := newCloth(t, nil)
	nan := float32(math.NaN())
	p := c.Particle(2, 2)
	good := p.Position
	p.Position = mgl32.Vec3{nan, 0, 0}
	q := c.Particle(3, 3)
	q.Position = mgl32.Vec3{nan, 0, 0}
	q.PrevPosition = mgl32.Vec3{0, float32(math.Inf(1)), 0}

	repaired := c.Sanitize()
	assert.ElementsMatch(t, []int{p.Index, q.Index}, repaired)
	assert.Equal(t, good, p.Position)
	assert.Equal(t, q.RestPosition, q.Position)
}

func TestResolverSkipsPinned(t *testing.T) {
	c := newCloth(t, nil)
	top := c.Resolver(0)
	applied := top(mgl32.Vec3{0, 1, 0}, shape.KindBox)
	assert.Equal(t, mgl32.Vec3{}, applied)

	free := c.Resolver(12)
	applied = free(mgl32.Vec3{0, 1, 0}, shape.KindBox)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, applied)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Particles()[12].InteractingVelocity)

	c.ClearInteracting()
	assert.Equal(t, mgl32.Vec3{}, c.Particles()[12].InteractingVelocity)
}
