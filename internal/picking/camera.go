package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a center point. Hosts use it to turn screen
// coordinates into pick rays.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	FOV        float32 // Vertical field of view, radians
	Near, Far  float32
	MinPitch   float32
	MaxPitch   float32
	MinDist    float32
	MaxDist    float32
	DragFactor float32
	ZoomFactor float32
}

// NewOrbitCamera creates an orbit camera sized for a cloth a few units wide.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:   8,
		Pitch:      0.5,
		FOV:        mgl32.DegToRad(45),
		Near:       0.1,
		Far:        100,
		MinPitch:   -1.5,
		MaxPitch:   1.5,
		MinDist:    1,
		MaxDist:    50,
		DragFactor: 0.005,
		ZoomFactor: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp, sp := gomath.Cos(float64(c.Pitch)), gomath.Sin(float64(c.Pitch))
	cy, sy := gomath.Cos(float64(c.Yaw)), gomath.Sin(float64(c.Yaw))
	return c.Center.Add(mgl32.Vec3{
		c.Distance * float32(cp*sy),
		c.Distance * float32(sp),
		c.Distance * float32(cp*cy),
	})
}

// View returns the view matrix.
func (c *OrbitCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for a viewport aspect ratio.
func (c *OrbitCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ScreenRay returns the world ray under a pixel.
func (c *OrbitCamera) ScreenRay(x, y, viewportW, viewportH float32) Ray {
	viewProj := c.Projection(viewportW / viewportH).Mul4(c.View())
	return ScreenToRay(x, y, viewportW, viewportH, viewProj.Inv())
}

// HandleDrag rotates the camera by a pointer drag delta.
func (c *OrbitCamera) HandleDrag(dx, dy float32) {
	c.Yaw -= dx * c.DragFactor
	c.Pitch = clamp(c.Pitch+dy*c.DragFactor, c.MinPitch, c.MaxPitch)
}

// HandleZoom scales the distance by a scroll delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomFactor, c.MinDist, c.MaxDist)
}

// FitToBounds centers the camera on a box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(min, max mgl32.Vec3) {
	c.Center = min.Add(max).Mul(0.5)
	size := max.Sub(min).Len()
	c.Distance = clamp(size/(2*float32(gomath.Tan(float64(c.FOV)/2))), c.MinDist, c.MaxDist)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
