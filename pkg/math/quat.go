package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// QuatFromEulerDegrees builds a rotation from XYZ Euler angles in degrees.
func QuatFromEulerDegrees(angles [3]float32) mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(angles[0]),
		mgl32.DegToRad(angles[1]),
		mgl32.DegToRad(angles[2]),
		mgl32.XYZ,
	)
}
