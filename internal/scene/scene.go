// Package scene manages the rigid obstacles the cloth collides with.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/partition"
	"github.com/Faultbox/clothsim/internal/proxy"
	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

// ErrUnknownObstacle is returned for IDs the scene does not hold.
var ErrUnknownObstacle = errors.New("unknown obstacle")

// ObstacleSpec describes an obstacle to create.
type ObstacleSpec struct {
	Name     string
	Shape    shape.Shape
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Dynamic  bool
}

// Obstacle is a rigid body in the scene.
type Obstacle struct {
	ID       uuid.UUID
	Name     string
	Shape    shape.Shape
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Dynamic  bool
	Proxy    proxy.ID

	dirty bool
}

// resolve moves a dynamic obstacle by a collision correction. The proxy is
// refreshed from the new position on the next RefreshBounds.
func (o *Obstacle) resolve(correction mgl32.Vec3, _ shape.Kind) mgl32.Vec3 {
	o.Position = o.Position.Add(correction)
	o.dirty = true
	return correction
}

// World returns the obstacle transform.
func (o *Obstacle) World() mgl32.Mat4 {
	return cmath.Compose(o.Position, o.Rotation, o.Scale)
}

// Scene owns obstacles and their proxies.
type Scene struct {
	log       *zap.Logger
	lib       *shape.Library
	pool      *proxy.Pool
	tree      *partition.Tree
	obstacles []*Obstacle
	byID      map[uuid.UUID]*Obstacle
}

// New creates an empty scene that registers proxies in pool and tree.
func New(log *zap.Logger, lib *shape.Library, pool *proxy.Pool, tree *partition.Tree) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		log:  log,
		lib:  lib,
		pool: pool,
		tree: tree,
		byID: make(map[uuid.UUID]*Obstacle),
	}
}

// Add creates an obstacle. Obstacles whose geometry cannot be built are
// rejected and never enter the simulation.
func (s *Scene) Add(spec ObstacleSpec) (*Obstacle, error) {
	g, err := s.lib.Get(spec.Shape)
	if err != nil {
		s.log.Warn("obstacle excluded", zap.String("name", spec.Name), zap.Error(err))
		return nil, fmt.Errorf("obstacle %q: %w", spec.Name, err)
	}
	if spec.Rotation == (mgl32.Quat{}) {
		spec.Rotation = mgl32.QuatIdent()
	}
	if spec.Scale == (mgl32.Vec3{}) {
		spec.Scale = mgl32.Vec3{1, 1, 1}
	}
	o := &Obstacle{
		ID:       uuid.New(),
		Name:     spec.Name,
		Shape:    spec.Shape,
		Position: spec.Position,
		Rotation: spec.Rotation,
		Scale:    spec.Scale,
		Dynamic:  spec.Dynamic,
	}
	if o.Name == "" {
		o.Name = fmt.Sprintf("%s-%s", spec.Shape.Kind(), o.ID.String()[:8])
	}

	p := proxy.New(g, proxy.LayerObstacle, len(s.obstacles))
	if spec.Dynamic {
		p.Dynamic = true
		p.Resolve = o.resolve
	}
	p.FullUpdate(o.World())
	o.Proxy = s.pool.Add(p)
	s.tree.Insert(o.Proxy)

	s.obstacles = append(s.obstacles, o)
	s.byID[o.ID] = o
	s.log.Debug("obstacle added",
		zap.String("name", o.Name),
		zap.Stringer("kind", spec.Shape.Kind()),
		zap.String("id", o.ID.String()),
	)
	return o, nil
}

// Remove detaches the obstacle proxy from the tree, then releases it.
func (s *Scene) Remove(id uuid.UUID) error {
	o, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObstacle, id)
	}
	s.tree.Remove(o.Proxy)
	s.pool.Remove(o.Proxy)
	delete(s.byID, id)
	for i, other := range s.obstacles {
		if other == o {
			s.obstacles = append(s.obstacles[:i], s.obstacles[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the obstacle with id.
func (s *Scene) Get(id uuid.UUID) (*Obstacle, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// FindByName returns the first obstacle named name.
func (s *Scene) FindByName(name string) (*Obstacle, bool) {
	for _, o := range s.obstacles {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// Move sets the obstacle position. Bounds follow on the next RefreshBounds.
func (s *Scene) Move(id uuid.UUID, pos mgl32.Vec3) error {
	o, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObstacle, id)
	}
	o.Position = pos
	o.dirty = true
	return nil
}

// Rotate sets the obstacle orientation. Bounds follow on the next RefreshBounds.
func (s *Scene) Rotate(id uuid.UUID, rot mgl32.Quat) error {
	o, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObstacle, id)
	}
	o.Rotation = rot
	o.dirty = true
	return nil
}

// RefreshBounds recomputes proxies of every obstacle moved since the last
// call and re-homes them in the tree. It returns how many were refreshed.
func (s *Scene) RefreshBounds() int {
	n := 0
	for _, o := range s.obstacles {
		if !o.dirty {
			continue
		}
		p := s.pool.Get(o.Proxy)
		if p == nil {
			continue
		}
		p.FullUpdate(o.World())
		s.tree.Update(o.Proxy)
		o.dirty = false
		n++
	}
	return n
}

// Active returns the obstacles in insertion order.
func (s *Scene) Active() []*Obstacle {
	return s.obstacles
}

// Proxies returns the proxies of all obstacles.
func (s *Scene) Proxies() []*proxy.Proxy {
	out := make([]*proxy.Proxy, 0, len(s.obstacles))
	for _, o := range s.obstacles {
		if p := s.pool.Get(o.Proxy); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the obstacle count.
func (s *Scene) Len() int {
	return len(s.obstacles)
}
