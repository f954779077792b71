package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Compose builds a world transform as T * R * S.
func Compose(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(rotation.Normalize().Mat4()).Mul4(s)
}

// TransformPoint applies m to p as a position (w = 1).
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// Translation returns the translation column of m.
func Translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// MaxScale returns the largest axis scale encoded in the upper 3x3 of m.
func MaxScale(m mgl32.Mat4) float32 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	s := sx
	if sy > s {
		s = sy
	}
	if sz > s {
		s = sz
	}
	return s
}
