// Package proxy holds the collision representation of simulated objects.
package proxy

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

// ID is a stable handle into a Pool.
type ID int32

// NoID marks an unset proxy handle.
const NoID ID = -1

// NoNode marks a proxy that is not stored in any partition node.
const NoNode int32 = -1

// Layer identifies what kind of object owns a proxy.
type Layer int

const (
	LayerParticle Layer = iota
	LayerObstacle
)

// Resolver moves the owner of a dynamic proxy by correction after a contact
// against an object of kind other. It returns the correction actually
// applied, which is zero for owners that cannot move.
type Resolver func(correction mgl32.Vec3, other shape.Kind) mgl32.Vec3

// Proxy is the bounding geometry of one object. Derived fields are only
// refreshed by FullUpdate, PositionalUpdate and Translate.
type Proxy struct {
	Geometry *shape.Geometry
	Layer    Layer
	Owner    int

	Transform     mgl32.Mat4
	Corners       [8]mgl32.Vec3
	Center        mgl32.Vec3
	Radius        float32
	WorldVertices []mgl32.Vec3

	// Node is the partition node currently listing this proxy.
	Node int32

	Dynamic bool
	Resolve Resolver
}

// New creates a proxy over shared geometry. Call FullUpdate before use.
func New(g *shape.Geometry, layer Layer, owner int) Proxy {
	return Proxy{
		Geometry:      g,
		Layer:         layer,
		Owner:         owner,
		Transform:     mgl32.Ident4(),
		Node:          NoNode,
		WorldVertices: make([]mgl32.Vec3, len(g.Vertices)),
	}
}

// Kind returns the shape kind, or KindNone without geometry.
func (p *Proxy) Kind() shape.Kind {
	if p.Geometry == nil || p.Geometry.Shape == nil {
		return shape.KindNone
	}
	return p.Geometry.Shape.Kind()
}

// FullUpdate recomputes every derived field from world.
func (p *Proxy) FullUpdate(world mgl32.Mat4) {
	p.Transform = world
	g := p.Geometry
	local := cmath.BoxCorners(g.HalfExtents.Mul(-1), g.HalfExtents)
	for i, c := range local {
		p.Corners[i] = cmath.TransformPoint(world, c)
	}
	if len(p.WorldVertices) != len(g.Vertices) {
		p.WorldVertices = make([]mgl32.Vec3, len(g.Vertices))
	}
	for i, v := range g.Vertices {
		p.WorldVertices[i] = cmath.TransformPoint(world, v)
	}
	p.Center = cmath.Translation(world)
	p.Radius = g.Radius * cmath.MaxScale(world)
}

// PositionalUpdate moves the proxy so its center is pos, keeping rotation
// and scale.
func (p *Proxy) PositionalUpdate(pos mgl32.Vec3) {
	p.Translate(pos.Sub(p.Center))
}

// Translate shifts all cached world data by d.
func (p *Proxy) Translate(d mgl32.Vec3) {
	if d == (mgl32.Vec3{}) {
		return
	}
	p.Transform = mgl32.Translate3D(d.X(), d.Y(), d.Z()).Mul4(p.Transform)
	p.Center = p.Center.Add(d)
	for i := range p.Corners {
		p.Corners[i] = p.Corners[i].Add(d)
	}
	for i := range p.WorldVertices {
		p.WorldVertices[i] = p.WorldVertices[i].Add(d)
	}
}

// Bounds returns the axis-aligned box enclosing the OABB corners.
func (p *Proxy) Bounds() (min, max mgl32.Vec3) {
	min, max = p.Corners[0], p.Corners[0]
	for _, c := range p.Corners[1:] {
		for a := 0; a < 3; a++ {
			if c[a] < min[a] {
				min[a] = c[a]
			}
			if c[a] > max[a] {
				max[a] = c[a]
			}
		}
	}
	return min, max
}
