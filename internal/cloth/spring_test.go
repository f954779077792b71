package cloth

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	cmath "github.com/Faultbox/clothsim/pkg/math"
)

func pair(a, b mgl32.Vec3) []Particle {
	ps := make([]Particle, 2)
	ps[0].reset(0, a, mgl32.Vec2{})
	ps[1].reset(1, b, mgl32.Vec2{})
	return ps
}

func TestSpringConvergesToRestLength(t *testing.T) {
	ps := pair(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{3, 4, 0})
	s := Spring{A: 0, B: 1, RestLength: 1}

	for i := 0; i < 10; i++ {
		s.Solve(ps)
	}
	assert.InDelta(t, 1, s.Length(ps), 1e-5)
	// Even split keeps the midpoint fixed.
	mid := ps[0].Position.Add(ps[1].Position).Mul(0.5)
	assert.True(t, mid.ApproxEqualThreshold(mgl32.Vec3{1.5, 2, 0}, 1e-5), "mid = %v", mid)
}

func TestSpringCompressedPushesApart(t *testing.T) {
	ps := pair(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.2, 0, 0})
	s := Spring{A: 0, B: 1, RestLength: 1}
	s.Solve(ps)
	assert.InDelta(t, 1, s.Length(ps), 1e-5)
	assert.InDelta(t, -0.4, ps[0].Position.X(), 1e-5)
}

func TestSpringZeroLengthStaysFinite(t *testing.T) {
	ps := pair(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1})
	s := Spring{A: 0, B: 1, RestLength: 0.5}
	s.Solve(ps)
	assert.True(t, cmath.IsFinite(ps[0].Position))
	assert.True(t, cmath.IsFinite(ps[1].Position))
	assert.InDelta(t, 0.5, s.Length(ps), 1e-5)
}

func TestSpringPinnedEndpointAbsorbsNothing(t *testing.T) {
	ps := pair(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -3, 0})
	ps[0].Pinned = true
	s := Spring{A: 0, B: 1, RestLength: 1}

	s.Solve(ps)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, ps[0].Position)
	assert.InDelta(t, -1, ps[1].Position.Y(), 1e-5)
}

func TestSpringBothPinned(t *testing.T) {
	ps := pair(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -3, 0})
	ps[0].Pinned, ps[1].Pinned = true, true
	s := Spring{A: 0, B: 1, RestLength: 1}
	s.Solve(ps)
	assert.Equal(t, mgl32.Vec3{0, -3, 0}, ps[1].Position)
}

func TestSpringInteractingBias(t *testing.T) {
	ps := pair(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 0, 0})
	ps[0].InteractingVelocity = mgl32.Vec3{0, 0.1, 0}
	ps[1].InteractingVelocity = mgl32.Vec3{0, 0.5, 0}
	s := Spring{A: 0, B: 1, RestLength: 1}

	s.Solve(ps)
	// A is pushed less, so it takes 90% of the 1.0 correction.
	assert.InDelta(t, 0.9, ps[0].Position.X(), 1e-5)
	assert.InDelta(t, 1.9, ps[1].Position.X(), 1e-5)
}

func TestSpringEqualInteractingUsesEvenSplit(t *testing.T) {
	ps := pair(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 0, 0})
	v := mgl32.Vec3{0, 0.3, 0}
	ps[0].InteractingVelocity, ps[1].InteractingVelocity = v, v
	s := Spring{A: 0, B: 1, RestLength: 1}

	s.Solve(ps)
	assert.InDelta(t, 0.5, ps[0].Position.X(), 1e-5)
	assert.InDelta(t, 1.5, ps[1].Position.X(), 1e-5)
}

func TestSpringKindColor(t *testing.T) {
	assert.NotEqual(t, Stretch.Color(), Shear.Color())
	assert.NotEqual(t, Shear.Color(), Bend.Color())
	assert.Equal(t, "bend", Bend.String())
}

func TestParticleIntegrate(t *testing.T) {
	var p Particle
	p.reset(0, mgl32.Vec3{0, 10, 0}, mgl32.Vec2{})
	p.PrevPosition = mgl32.Vec3{0, 10.1, 0}
	p.AddForce(mgl32.Vec3{0, -10, 0})

	p.Integrate(0, 0.01)
	assert.InDelta(t, 10-0.1-0.1, p.Position.Y(), 1e-5)
	assert.Equal(t, float32(10), p.PrevPosition.Y())
	assert.Equal(t, mgl32.Vec3{}, p.Acceleration)
}

func TestParticleIntegrateDamping(t *testing.T) {
	var p Particle
	p.reset(0, mgl32.Vec3{1, 0, 0}, mgl32.Vec2{})
	p.PrevPosition = mgl32.Vec3{0, 0, 0}
	p.Integrate(0.5, 0.01)
	assert.InDelta(t, 1.5, p.Position.X(), 1e-6)
}

func TestPinnedParticleIgnoresForces(t *testing.T) {
	var p Particle
	p.reset(0, mgl32.Vec3{1, 2, 3}, mgl32.Vec2{})
	p.Pinned = true
	p.AddForce(mgl32.Vec3{0, -100, 0})
	p.Integrate(0, 1)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, p.Position)

	p.Move(mgl32.Vec3{0, 1, 0})
	assert.Equal(t, mgl32.Vec3{1, 3, 3}, p.Position)
	assert.Equal(t, mgl32.Vec3{}, p.Velocity())
}
