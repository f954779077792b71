// Package cloth implements the mass-spring cloth grid.
package cloth

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clothsim/internal/proxy"
)

// Particle is a unit point mass. Velocity is implied by the difference
// between Position and PrevPosition.
type Particle struct {
	Index        int
	Position     mgl32.Vec3
	PrevPosition mgl32.Vec3
	Acceleration mgl32.Vec3
	RestPosition mgl32.Vec3
	UV           mgl32.Vec2

	Pinned   bool
	Selected bool

	// InteractingVelocity accumulates collision corrections since the
	// collision stage last cleared it.
	InteractingVelocity mgl32.Vec3

	Proxy proxy.ID
}

func (p *Particle) reset(index int, pos mgl32.Vec3, uv mgl32.Vec2) {
	*p = Particle{
		Index:        index,
		Position:     pos,
		PrevPosition: pos,
		RestPosition: pos,
		UV:           uv,
		Proxy:        proxy.NoID,
	}
}

// AddForce accumulates a force for the next integration step.
func (p *Particle) AddForce(f mgl32.Vec3) {
	if p.Pinned {
		return
	}
	p.Acceleration = p.Acceleration.Add(f)
}

// Integrate advances the particle one Verlet step and clears the
// accumulated acceleration. Pinned particles do not move.
func (p *Particle) Integrate(damping, dt2 float32) {
	if p.Pinned {
		p.Acceleration = mgl32.Vec3{}
		return
	}
	velocity := p.Position.Sub(p.PrevPosition).Mul(1 - damping)
	next := p.Position.Add(velocity).Add(p.Acceleration.Mul(dt2))
	p.PrevPosition = p.Position
	p.Position = next
	p.Acceleration = mgl32.Vec3{}
}

// Move translates the particle without adding velocity. This is the only
// way a pinned particle changes position.
func (p *Particle) Move(delta mgl32.Vec3) {
	p.Position = p.Position.Add(delta)
	p.PrevPosition = p.PrevPosition.Add(delta)
}

// SetPinned fixes or releases the particle. A newly pinned particle loses
// any pending force and velocity.
func (p *Particle) SetPinned(pinned bool) {
	if pinned && !p.Pinned {
		p.Acceleration = mgl32.Vec3{}
		p.PrevPosition = p.Position
	}
	p.Pinned = pinned
}

// Velocity returns the implied per-step displacement.
func (p *Particle) Velocity() mgl32.Vec3 {
	return p.Position.Sub(p.PrevPosition)
}
