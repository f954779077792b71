// Package shape describes collision shapes and their shared local geometry.
package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidShape is returned when a shape has non-positive dimensions.
var ErrInvalidShape = errors.New("invalid shape")

// Kind tags the shape variant.
type Kind int

const (
	KindNone Kind = iota
	KindBox
	KindSphere
	KindCylinder
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindCylinder:
		return "cylinder"
	default:
		return "none"
	}
}

// ParseKind converts a name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "box":
		return KindBox, nil
	case "sphere":
		return KindSphere, nil
	case "cylinder":
		return KindCylinder, nil
	}
	return KindNone, fmt.Errorf("%w: unknown kind %q", ErrInvalidShape, name)
}

// Shape is one of Box, Sphere or Cylinder.
type Shape interface {
	Kind() Kind
	isShape()
}

// Box is centered on the origin with full side lengths.
type Box struct {
	Width, Height, Depth float32
}

// Sphere is centered on the origin.
type Sphere struct {
	Radius float32
}

// Cylinder is centered on the origin with its axis along Y.
type Cylinder struct {
	Radius, Length float32
}

func (Box) Kind() Kind      { return KindBox }
func (Sphere) Kind() Kind   { return KindSphere }
func (Cylinder) Kind() Kind { return KindCylinder }

func (Box) isShape()      {}
func (Sphere) isShape()   {}
func (Cylinder) isShape() {}

// CylinderSegments is the number of rim vertices per cylinder cap.
const CylinderSegments = 12

// Geometry is the local-space hull of a shape. It is shared by every proxy
// that uses the same shape value and must not be mutated.
type Geometry struct {
	Shape       Shape
	Vertices    []mgl32.Vec3
	HalfExtents mgl32.Vec3
	Radius      float32
}

// Validate checks that all dimensions are positive and finite.
func Validate(s Shape) error {
	ok := func(vs ...float32) bool {
		for _, v := range vs {
			if !(v > 0) || math.IsInf(float64(v), 0) {
				return false
			}
		}
		return true
	}
	switch v := s.(type) {
	case Box:
		if ok(v.Width, v.Height, v.Depth) {
			return nil
		}
	case Sphere:
		if ok(v.Radius) {
			return nil
		}
	case Cylinder:
		if ok(v.Radius, v.Length) {
			return nil
		}
	case nil:
		return fmt.Errorf("%w: nil shape", ErrInvalidShape)
	}
	return fmt.Errorf("%w: %s %+v", ErrInvalidShape, s.Kind(), s)
}

// Build computes the local hull of s.
func Build(s Shape) (*Geometry, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	g := &Geometry{Shape: s}
	switch v := s.(type) {
	case Box:
		h := mgl32.Vec3{v.Width / 2, v.Height / 2, v.Depth / 2}
		g.HalfExtents = h
		g.Radius = h.Len()
		for i := 0; i < 8; i++ {
			p := h
			if i&1 == 0 {
				p[0] = -p[0]
			}
			if i&2 == 0 {
				p[1] = -p[1]
			}
			if i&4 == 0 {
				p[2] = -p[2]
			}
			g.Vertices = append(g.Vertices, p)
		}
	case Sphere:
		g.HalfExtents = mgl32.Vec3{v.Radius, v.Radius, v.Radius}
		g.Radius = v.Radius
		g.Vertices = sphereVertices(v.Radius)
	case Cylinder:
		half := v.Length / 2
		g.HalfExtents = mgl32.Vec3{v.Radius, half, v.Radius}
		g.Radius = float32(math.Hypot(float64(v.Radius), float64(half)))
		for i := 0; i < CylinderSegments; i++ {
			a := 2 * math.Pi * float64(i) / CylinderSegments
			x := v.Radius * float32(math.Cos(a))
			z := v.Radius * float32(math.Sin(a))
			g.Vertices = append(g.Vertices, mgl32.Vec3{x, -half, z}, mgl32.Vec3{x, half, z})
		}
	}
	return g, nil
}

// sphereVertices samples a sphere with the six axis points and the eight
// octant diagonals, enough for GJK support queries on small proxies.
func sphereVertices(r float32) []mgl32.Vec3 {
	verts := []mgl32.Vec3{
		{r, 0, 0}, {-r, 0, 0},
		{0, r, 0}, {0, -r, 0},
		{0, 0, r}, {0, 0, -r},
	}
	d := r / float32(math.Sqrt(3))
	for i := 0; i < 8; i++ {
		p := mgl32.Vec3{d, d, d}
		if i&1 != 0 {
			p[0] = -d
		}
		if i&2 != 0 {
			p[1] = -d
		}
		if i&4 != 0 {
			p[2] = -d
		}
		verts = append(verts, p)
	}
	return verts
}
