package cloth

import (
	"github.com/go-gl/mathgl/mgl32"

	cmath "github.com/Faultbox/clothsim/pkg/math"
)

// SpringKind only affects diagnostics; every kind uses the same correction.
type SpringKind int

const (
	Stretch SpringKind = iota
	Shear
	Bend
)

// String returns the kind name.
func (k SpringKind) String() string {
	switch k {
	case Stretch:
		return "stretch"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	}
	return "unknown"
}

// Color is the debug line color for the kind.
func (k SpringKind) Color() mgl32.Vec4 {
	switch k {
	case Stretch:
		return mgl32.Vec4{1, 0, 0, 1}
	case Shear:
		return mgl32.Vec4{0, 1, 0, 1}
	default:
		return mgl32.Vec4{0, 0, 1, 1}
	}
}

// Spring links particles A and B (indices into the owning cloth) at a
// fixed rest length.
type Spring struct {
	A, B       int
	RestLength float32
	Kind       SpringKind
}

const (
	evenShare   = 0.5
	favourShare = 0.9
)

// Solve moves both endpoints toward the rest length. The split is even
// unless both particles carry different non-zero interacting velocities,
// in which case the one pushed less takes 90% of the move. Pinned
// endpoints take none.
func (s *Spring) Solve(particles []Particle) {
	a, b := &particles[s.A], &particles[s.B]
	if a.Pinned && b.Pinned {
		return
	}

	diff := b.Position.Sub(a.Position)
	dir := cmath.SafeNormalize(diff, cmath.Up)
	err := diff.Sub(dir.Mul(s.RestLength))

	wa, wb := float32(evenShare), float32(evenShare)
	va, vb := a.InteractingVelocity, b.InteractingVelocity
	if va != (mgl32.Vec3{}) && vb != (mgl32.Vec3{}) && va != vb {
		if va.LenSqr() < vb.LenSqr() {
			wa, wb = favourShare, 1-favourShare
		} else {
			wa, wb = 1-favourShare, favourShare
		}
	}
	switch {
	case a.Pinned:
		wa, wb = 0, 1
	case b.Pinned:
		wa, wb = 1, 0
	}

	if wa > 0 {
		a.Position = a.Position.Add(err.Mul(wa))
	}
	if wb > 0 {
		b.Position = b.Position.Sub(err.Mul(wb))
	}
}

// Length returns the current distance between the endpoints.
func (s *Spring) Length(particles []Particle) float32 {
	return particles[s.B].Position.Sub(particles[s.A].Position).Len()
}
