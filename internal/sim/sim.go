// Package sim drives one cloth through the fixed per-tick pipeline and
// exposes the command surface hosts use to steer it.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/cloth"
	"github.com/Faultbox/clothsim/internal/collision"
	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/diagnostics"
	"github.com/Faultbox/clothsim/internal/partition"
	"github.com/Faultbox/clothsim/internal/proxy"
	"github.com/Faultbox/clothsim/internal/scene"
	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

var (
	ErrInvalidTimestep = errors.New("invalid timestep")
	ErrUnknownCommand  = errors.New("unknown command")
)

// FrameTime is the dt used by headless runs before clamping.
const FrameTime = float32(1.0 / 60)

// Stats summarises the last tick.
type Stats struct {
	Tick          uint64
	Dt            float32
	AverageHeight float32
	Contacts      int
	Repaired      int
	Collision     collision.Stats
}

// Simulator owns the cloth, the obstacles and the collision pipeline.
// It is not safe for concurrent use.
type Simulator struct {
	Session uuid.UUID

	log  *zap.Logger
	sink diagnostics.Sink

	simCfg       config.SimulationConfig
	lib          *shape.Library
	pool         *proxy.Pool
	tree         *partition.Tree
	cloth        *cloth.Cloth
	scene        *scene.Scene
	solver       *collision.Solver
	object       *collision.ObjectSolver
	particleGeom *shape.Geometry

	timestep float32
	lastDt   float32
	picked   int
	stats    Stats
}

// New builds a simulator from cfg. Obstacles whose geometry is invalid are
// logged and skipped.
func New(cfg *config.Config, log *zap.Logger, sink diagnostics.Sink) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = diagnostics.Nop{}
	}

	pinned, err := cloth.ParseBorderRow(cfg.Cloth.PinnedRow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	c, err := cloth.New(cloth.Params{
		Rows:           cfg.Cloth.Rows,
		Spacing:        cfg.Cloth.Spacing,
		Iterations:     cfg.Cloth.Iterations,
		Damping:        cfg.Cloth.Damping,
		Gravity:        cfg.Simulation.Gravity,
		Origin:         cfg.Cloth.Origin,
		ParticleRadius: cfg.Cloth.ParticleRadius,
		Smoothing:      cfg.Cloth.Smoothing,
		Subdivide:      cfg.Cloth.Subdivide,
		PinnedRow:      pinned,
	})
	if err != nil {
		return nil, fmt.Errorf("building cloth: %w", err)
	}

	lib := shape.NewLibrary()
	geom, err := lib.Get(shape.Sphere{Radius: cfg.Cloth.ParticleRadius})
	if err != nil {
		return nil, fmt.Errorf("particle geometry: %w", err)
	}

	pool := proxy.NewPool()
	tree := partition.New(partition.Config{
		Min:       cfg.World.Min,
		Max:       cfg.World.Max,
		MaxDepth:  cfg.World.MaxDepth,
		Threshold: cfg.World.Threshold,
	}, pool)

	s := &Simulator{
		Session:      uuid.New(),
		log:          log,
		sink:         sink,
		simCfg:       cfg.Simulation,
		lib:          lib,
		pool:         pool,
		tree:         tree,
		cloth:        c,
		scene:        scene.New(log.Named("scene"), lib, pool, tree),
		particleGeom: geom,
		timestep:     cfg.Simulation.Timestep,
		picked:       -1,
		solver: collision.NewSolver(collision.Config{
			Bounds:        collision.Bounds{Min: cfg.World.Min, Max: cfg.World.Max},
			SelfCollision: cfg.Collision.SelfCollision,
			GJKIterations: cfg.Collision.GJKIterations,
			EPAIterations: cfg.Collision.EPAIterations,
			EPATolerance:  cfg.Collision.EPATolerance,
		}),
		object: &collision.ObjectSolver{GroundY: cfg.World.Min.Y()},
	}
	s.lastDt = s.step(FrameTime)

	for _, oc := range cfg.Scene.Obstacles {
		sh, err := oc.ToShape()
		if err != nil {
			log.Warn("obstacle excluded", zap.String("name", oc.Name), zap.Error(err))
			continue
		}
		spec := scene.ObstacleSpec{
			Name:     oc.Name,
			Shape:    sh,
			Position: oc.Position,
			Rotation: cmath.QuatFromEulerDegrees(oc.Rotation),
			Scale:    oc.Scale,
			Dynamic:  oc.Dynamic,
		}
		// Add logs and skips obstacles it cannot build.
		_, _ = s.scene.Add(spec)
	}

	s.attachParticles()
	s.cloth.RebuildSurface()

	log.Info("simulator ready",
		zap.String("session", s.Session.String()),
		zap.Int("rows", c.Rows()),
		zap.Int("springs", len(c.Springs())),
		zap.Int("obstacles", s.scene.Len()),
		zap.String("collision", cfg.Simulation.CollisionMode),
	)
	return s, nil
}

// attachParticles creates one sphere proxy per particle.
func (s *Simulator) attachParticles() {
	ps := s.cloth.Particles()
	for i := range ps {
		p := proxy.New(s.particleGeom, proxy.LayerParticle, i)
		p.Dynamic = true
		p.Resolve = s.cloth.Resolver(i)
		pos := ps[i].Position
		p.FullUpdate(mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()))
		id := s.pool.Add(p)
		s.tree.Insert(id)
		ps[i].Proxy = id
	}
}

// detachParticles removes particle proxies from the tree before releasing
// them from the pool.
func (s *Simulator) detachParticles() {
	ps := s.cloth.Particles()
	for i := range ps {
		if ps[i].Proxy == proxy.NoID {
			continue
		}
		s.tree.Remove(ps[i].Proxy)
		s.pool.Remove(ps[i].Proxy)
		ps[i].Proxy = proxy.NoID
	}
}

// syncParticles moves particle proxies to their particles and re-homes them.
func (s *Simulator) syncParticles() {
	ps := s.cloth.Particles()
	for i := range ps {
		p := s.pool.Get(ps[i].Proxy)
		if p == nil {
			continue
		}
		p.PositionalUpdate(ps[i].Position)
		s.tree.Update(ps[i].Proxy)
	}
}

// ClampTimestep limits dt to [min, max]. Non-finite or non-positive values
// map to min.
func ClampTimestep(dt, min, max float32) float32 {
	if math.IsNaN(float64(dt)) || dt <= 0 {
		return min
	}
	return cmath.Clamp(dt, min, max)
}

func (s *Simulator) step(dt float32) float32 {
	if s.timestep > 0 {
		return s.timestep
	}
	return ClampTimestep(dt, s.simCfg.MinTimestep, s.simCfg.MaxTimestep)
}

// Tick advances the simulation by one step. The stages run in a fixed
// order and each consumes the committed output of the previous one.
func (s *Simulator) Tick(dt float32) Stats {
	dt = s.step(dt)
	s.lastDt = dt

	// Forces, relaxation and integration.
	s.cloth.Update(dt)

	// Proxy refresh and partition re-homing.
	s.syncParticles()
	s.scene.RefreshBounds()

	// Collision.
	s.cloth.ClearInteracting()
	st := Stats{Tick: s.stats.Tick + 1, Dt: dt}
	if s.simCfg.CollisionMode == config.CollisionAnalytic {
		st.Contacts = s.solveAnalytic()
	} else {
		st.Collision = s.solver.Solve(s.tree, s.pool)
		st.Contacts = st.Collision.Contacts + st.Collision.WallHits
	}

	if repaired := s.cloth.Sanitize(); len(repaired) > 0 {
		st.Repaired = len(repaired)
		s.log.Warn("non-finite particles restored",
			zap.Uint64("tick", st.Tick),
			zap.Ints("particles", repaired),
		)
		s.syncParticles()
	}

	s.cloth.RebuildSurface()
	st.AverageHeight = s.cloth.AverageHeight()
	s.stats = st
	s.report()
	return st
}

func (s *Simulator) solveAnalytic() int {
	obstacles := s.scene.Proxies()
	contacts := 0
	ps := s.cloth.Particles()
	for i := range ps {
		p := s.pool.Get(ps[i].Proxy)
		if p == nil {
			continue
		}
		contacts += s.object.SolveParticle(p, obstacles)
	}
	contacts += s.solver.SolveObstacles(s.tree, s.pool)
	return contacts + s.solver.SolveBounds(s.pool)
}

func (s *Simulator) report() {
	s.sink.Scalar("dt", float64(s.stats.Dt))
	s.sink.Scalar("avg_height", float64(s.stats.AverageHeight))
	s.sink.Scalar("contacts", float64(s.stats.Contacts))
	s.sink.Scalar("pairs", float64(s.stats.Collision.Pairs))
	s.sink.Scalar("repaired", float64(s.stats.Repaired))

	if s.simCfg.DebugDraw {
		ps := s.cloth.Particles()
		for _, sp := range s.cloth.Springs() {
			s.sink.Line(ps[sp.A].Position, ps[sp.B].Position, sp.Kind.Color())
		}
		for _, p := range s.scene.Proxies() {
			diagnostics.DrawCorners(s.sink, p.Corners, mgl32.Vec4{1, 1, 0, 1})
		}
		for i := range ps {
			if ps[i].Selected {
				s.sink.Sphere(ps[i].Position, s.particleGeom.Radius, mgl32.Vec4{1, 0, 0, 1})
			}
		}
	}
	if f, ok := s.sink.(interface{ Flush() }); ok {
		f.Flush()
	}
}

// Stats returns the stats of the last tick.
func (s *Simulator) Stats() Stats {
	return s.stats
}

// PartitionStats reports the current shape of the octree.
func (s *Simulator) PartitionStats() partition.Stats {
	return s.tree.Stats()
}

// Cloth returns the simulated cloth.
func (s *Simulator) Cloth() *cloth.Cloth {
	return s.cloth
}

// Scene returns the obstacle set.
func (s *Simulator) Scene() *scene.Scene {
	return s.scene
}

// Particles returns the particle array.
func (s *Simulator) Particles() []cloth.Particle {
	return s.cloth.Particles()
}

// Vertices returns the renderable vertex positions.
func (s *Simulator) Vertices() []mgl32.Vec3 {
	return s.cloth.Surface().Positions
}

// Normals returns the per-vertex normals.
func (s *Simulator) Normals() []mgl32.Vec3 {
	return s.cloth.Surface().Normals
}

// UVs returns the per-vertex texture coordinates.
func (s *Simulator) UVs() []mgl32.Vec2 {
	return s.cloth.Surface().UVs
}

// Indices returns the triangle list.
func (s *Simulator) Indices() []uint32 {
	return s.cloth.Surface().Indices
}

// ProxyBounds returns the world box of a proxy.
func (s *Simulator) ProxyBounds(id proxy.ID) (min, max mgl32.Vec3, ok bool) {
	p := s.pool.Get(id)
	if p == nil {
		return min, max, false
	}
	min, max = p.Bounds()
	return min, max, true
}

// ProxyWireframe returns line vertices for the oriented box of a proxy.
func (s *Simulator) ProxyWireframe(id proxy.ID) []float32 {
	p := s.pool.Get(id)
	if p == nil {
		return nil
	}
	return diagnostics.WireframeFromCorners(p.Corners)
}
