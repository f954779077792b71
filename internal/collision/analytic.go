package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clothsim/internal/proxy"
	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

// ObjectSolver resolves particle contacts with closed-form tests per shape.
// It is the simplified alternative to the GJK path.
type ObjectSolver struct {
	GroundY float32
}

// ResolveGround lifts pos to the ground plane.
func (o *ObjectSolver) ResolveGround(pos mgl32.Vec3) (mgl32.Vec3, bool) {
	if pos.Y() < o.GroundY {
		pos[1] = o.GroundY
		return pos, true
	}
	return pos, false
}

// ResolveSphere pushes a particle of radius r out of a sphere.
func (o *ObjectSolver) ResolveSphere(pos mgl32.Vec3, r float32, center mgl32.Vec3, radius float32) (mgl32.Vec3, bool) {
	d := pos.Sub(center)
	reach := r + radius
	if d.LenSqr() >= reach*reach {
		return pos, false
	}
	return center.Add(cmath.SafeNormalize(d, cmath.Up).Mul(reach)), true
}

func axisScales(world mgl32.Mat4) mgl32.Vec3 {
	s := mgl32.Vec3{world.Col(0).Vec3().Len(), world.Col(1).Vec3().Len(), world.Col(2).Vec3().Len()}
	for a := range s {
		if s[a] < cmath.Epsilon {
			s[a] = 1
		}
	}
	return s
}

// ResolveBox pushes a particle out of an oriented box with local half
// extents half, through the face of least penetration.
func (o *ObjectSolver) ResolveBox(pos mgl32.Vec3, r float32, world mgl32.Mat4, half mgl32.Vec3) (mgl32.Vec3, bool) {
	scale := axisScales(world)
	local := cmath.TransformPoint(world.Inv(), pos)

	axis, best := -1, float32(math.MaxFloat32)
	for a := 0; a < 3; a++ {
		reach := half[a] + r/scale[a]
		pen := (reach - cmath.Abs(local[a])) * scale[a]
		if pen <= 0 {
			return pos, false
		}
		if pen < best {
			axis, best = a, pen
		}
	}
	reach := half[axis] + r/scale[axis]
	if local[axis] < 0 {
		local[axis] = -reach
	} else {
		local[axis] = reach
	}
	return cmath.TransformPoint(world, local), true
}

// ResolveCylinder pushes a particle out of a Y-aligned cylinder through its
// side or cap, whichever is closer.
func (o *ObjectSolver) ResolveCylinder(pos mgl32.Vec3, r float32, world mgl32.Mat4, radius, halfLength float32) (mgl32.Vec3, bool) {
	scale := axisScales(world)
	radial := scale.X()
	if scale.Z() > radial {
		radial = scale.Z()
	}
	local := cmath.TransformPoint(world.Inv(), pos)

	rho := float32(math.Hypot(float64(local.X()), float64(local.Z())))
	reachR := radius + r/radial
	reachY := halfLength + r/scale.Y()
	sidePen := (reachR - rho) * radial
	capPen := (reachY - cmath.Abs(local.Y())) * scale.Y()
	if sidePen <= 0 || capPen <= 0 {
		return pos, false
	}

	if sidePen < capPen {
		dir := cmath.SafeNormalize(mgl32.Vec3{local.X(), 0, local.Z()}, mgl32.Vec3{1, 0, 0})
		local[0] = dir.X() * reachR
		local[2] = dir.Z() * reachR
	} else if local.Y() < 0 {
		local[1] = -reachY
	} else {
		local[1] = reachY
	}
	return cmath.TransformPoint(world, local), true
}

// Resolve dispatches on the obstacle shape.
func (o *ObjectSolver) Resolve(pos mgl32.Vec3, r float32, obstacle *proxy.Proxy) (mgl32.Vec3, bool) {
	if obstacle.Geometry == nil {
		return pos, false
	}
	switch s := obstacle.Geometry.Shape.(type) {
	case shape.Sphere:
		return o.ResolveSphere(pos, r, obstacle.Center, obstacle.Radius)
	case shape.Box:
		return o.ResolveBox(pos, r, obstacle.Transform, obstacle.Geometry.HalfExtents)
	case shape.Cylinder:
		return o.ResolveCylinder(pos, r, obstacle.Transform, s.Radius, s.Length/2)
	}
	return pos, false
}

// SolveParticle resolves one particle proxy against every obstacle and the
// ground, applying each correction through the proxy resolver. It returns
// the number of contacts.
func (o *ObjectSolver) SolveParticle(p *proxy.Proxy, obstacles []*proxy.Proxy) int {
	contacts := 0
	for _, ob := range obstacles {
		if pos, hit := o.Resolve(p.Center, p.Radius, ob); hit {
			apply(p, pos.Sub(p.Center), ob.Kind())
			contacts++
		}
	}
	if pos, hit := o.ResolveGround(p.Center); hit {
		apply(p, pos.Sub(p.Center), shape.KindNone)
		contacts++
	}
	return contacts
}
