// Package picking provides ray casting against particles and proxies.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// NewRay normalizes dir. A zero direction yields a ray that hits nothing.
func NewRay(origin, dir mgl32.Vec3) Ray {
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return Ray{Origin: origin, Direction: dir}
}

// ScreenToRay converts screen coordinates to a world-space ray.
// invViewProj is the inverse of the host's view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	near := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	if near.W() != 0 {
		near = near.Mul(1 / near.W())
	}
	if far.W() != 0 {
		far = far.Mul(1 / far.W())
	}

	return NewRay(near.Vec3(), far.Vec3().Sub(near.Vec3()))
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectPlaneY intersects the ray with a horizontal plane at planeY.
func (r Ray) IntersectPlaneY(planeY float32) (mgl32.Vec3, bool) {
	if gomath.Abs(float64(r.Direction.Y())) < 0.001 {
		return mgl32.Vec3{}, false
	}
	t := (planeY - r.Origin.Y()) / r.Direction.Y()
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return r.At(t), true
}

// IntersectSphere returns the distance to the first hit in front of the
// origin. A ray starting inside the sphere returns the exit distance.
func (r Ray) IntersectSphere(center mgl32.Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(gomath.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectAABB tests the ray against an axis-aligned box with the slab
// method. If the ray starts inside the box, it returns the exit distance.
func (r Ray) IntersectAABB(min, max mgl32.Vec3) (float32, bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for a := 0; a < 3; a++ {
		if r.Direction[a] == 0 {
			if r.Origin[a] < min[a] || r.Origin[a] > max[a] {
				return 0, false
			}
			continue
		}
		t1 := (min[a] - r.Origin[a]) / r.Direction[a]
		t2 := (max[a] - r.Origin[a]) / r.Direction[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// PickNearest returns the index of the closest sphere of the given radius
// around centers hit by the ray, or -1.
func PickNearest(r Ray, centers []mgl32.Vec3, radius float32) (int, float32) {
	best, bestT := -1, float32(gomath.MaxFloat32)
	for i, c := range centers {
		if t, ok := r.IntersectSphere(c, radius); ok && t < bestT {
			best, bestT = i, t
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestT
}
