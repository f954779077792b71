// Package math provides epsilon-guarded vector helpers on top of mgl32.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-6

// Up is the world up axis, used as the default fallback direction.
var Up = mgl32.Vec3{0, 1, 0}

// SafeNormalize returns a unit vector, or fallback if v is too short or not finite.
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if !IsFinite(v) {
		return fallback
	}
	l := v.Len()
	if l < Epsilon {
		return fallback
	}
	return v.Mul(1 / l)
}

// IsFinite reports whether every component is neither NaN nor Inf.
func IsFinite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// TripleCross returns (a x b) x c.
func TripleCross(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return a.Cross(b).Cross(c)
}

// AnyPerpendicular returns a unit vector perpendicular to v.
func AnyPerpendicular(v mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if Abs(v.X()) > Abs(v.Y()) {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return SafeNormalize(v.Cross(axis), mgl32.Vec3{0, 0, 1})
}

// BoxCorners returns the 8 corners of the axis-aligned box [min, max].
// Bit 0 of the index selects X, bit 1 Y and bit 2 Z.
func BoxCorners(min, max mgl32.Vec3) [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := range out {
		c := min
		if i&1 != 0 {
			c[0] = max[0]
		}
		if i&2 != 0 {
			c[1] = max[1]
		}
		if i&4 != 0 {
			c[2] = max[2]
		}
		out[i] = c
	}
	return out
}

// Abs returns |f|.
func Abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// Clamp limits f to [lo, hi].
func Clamp(f, lo, hi float32) float32 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// Lerp blends a toward b by t.
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
