// Package config handles simulator configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/shape"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Collision modes.
const (
	CollisionGJK      = "gjk"
	CollisionAnalytic = "analytic"
)

// Config holds all simulator settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Cloth      ClothConfig      `yaml:"cloth"`
	World      WorldConfig      `yaml:"world"`
	Collision  CollisionConfig  `yaml:"collision"`
	Scene      SceneConfig      `yaml:"scene"`
	Script     []Command        `yaml:"script,omitempty"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds tick settings.
type SimulationConfig struct {
	Timestep      float32    `yaml:"timestep"` // Fixed override; 0 uses the caller's dt
	MinTimestep   float32    `yaml:"min_timestep"`
	MaxTimestep   float32    `yaml:"max_timestep"`
	Gravity       mgl32.Vec3 `yaml:"gravity,flow"`
	CollisionMode string     `yaml:"collision_mode"`
	Ticks         int        `yaml:"ticks"` // Headless run length
	DebugDraw     bool       `yaml:"debug_draw"`
}

// ClothConfig holds cloth grid settings.
type ClothConfig struct {
	Rows           int        `yaml:"rows"`
	Spacing        float32    `yaml:"spacing"`
	Iterations     int        `yaml:"iterations"`
	Damping        float32    `yaml:"damping"`
	ParticleRadius float32    `yaml:"particle_radius"`
	Smoothing      float32    `yaml:"smoothing"`
	Subdivide      bool       `yaml:"subdivide"`
	Origin         mgl32.Vec3 `yaml:"origin,flow"`
	PinnedRow      string     `yaml:"pinned_row"` // none, top, bottom, left, right
}

// WorldConfig holds world bounds and partition settings.
type WorldConfig struct {
	Min       mgl32.Vec3 `yaml:"min,flow"` // Min.Y is the ground
	Max       mgl32.Vec3 `yaml:"max,flow"`
	MaxDepth  int        `yaml:"max_depth"`
	Threshold int        `yaml:"threshold"`
}

// CollisionConfig holds narrow phase settings.
type CollisionConfig struct {
	SelfCollision bool    `yaml:"self_collision"`
	GJKIterations int     `yaml:"gjk_iterations"`
	EPAIterations int     `yaml:"epa_iterations"`
	EPATolerance  float32 `yaml:"epa_tolerance"`
}

// SceneConfig lists the obstacles created at startup.
type SceneConfig struct {
	Obstacles []ObstacleConfig `yaml:"obstacles"`
}

// ObstacleConfig describes one obstacle.
type ObstacleConfig struct {
	Name     string     `yaml:"name"`
	Shape    string     `yaml:"shape"` // box, sphere, cylinder
	Size     mgl32.Vec3 `yaml:"size,flow,omitempty"`
	Radius   float32    `yaml:"radius,omitempty"`
	Length   float32    `yaml:"length,omitempty"`
	Position mgl32.Vec3 `yaml:"position,flow"`
	Rotation mgl32.Vec3 `yaml:"rotation,flow,omitempty"` // Euler degrees
	Scale    mgl32.Vec3 `yaml:"scale,flow,omitempty"`
	Dynamic  bool       `yaml:"dynamic,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Timestep:      0,
			MinTimestep:   0.01,
			MaxTimestep:   0.03,
			Gravity:       mgl32.Vec3{0, -9.81, 0},
			CollisionMode: CollisionGJK,
			Ticks:         600,
		},
		Cloth: ClothConfig{
			Rows:           16,
			Spacing:        0.25,
			Iterations:     2,
			Damping:        0.01,
			ParticleRadius: 0.05,
			Origin:         mgl32.Vec3{-2, 4, -2},
			PinnedRow:      "top",
		},
		World: WorldConfig{
			Min:       mgl32.Vec3{-8, 0, -8},
			Max:       mgl32.Vec3{8, 16, 8},
			MaxDepth:  3,
			Threshold: 8,
		},
		Collision: CollisionConfig{
			SelfCollision: false,
			GJKIterations: 30,
			EPAIterations: 64,
			EPATolerance:  1e-4,
		},
		Scene: SceneConfig{
			Obstacles: []ObstacleConfig{
				{Name: "ball", Shape: "sphere", Radius: 0.75, Position: mgl32.Vec3{0, 2, 0}},
				{Name: "crate", Shape: "box", Size: mgl32.Vec3{1, 1, 1}, Position: mgl32.Vec3{1.5, 0.5, 1}},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ToShape converts the obstacle description into a shape value.
func (o ObstacleConfig) ToShape() (shape.Shape, error) {
	kind, err := shape.ParseKind(o.Shape)
	if err != nil {
		return nil, err
	}
	var s shape.Shape
	switch kind {
	case shape.KindBox:
		s = shape.Box{Width: o.Size.X(), Height: o.Size.Y(), Depth: o.Size.Z()}
	case shape.KindSphere:
		s = shape.Sphere{Radius: o.Radius}
	case shape.KindCylinder:
		s = shape.Cylinder{Radius: o.Radius, Length: o.Length}
	}
	if err := shape.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ranges that would otherwise only fail deep inside the
// simulator.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.MinTimestep <= 0 || s.MaxTimestep < s.MinTimestep {
		return fmt.Errorf("%w: timestep range [%g, %g]", ErrInvalidConfig, s.MinTimestep, s.MaxTimestep)
	}
	if s.Timestep < 0 {
		return fmt.Errorf("%w: negative timestep %g", ErrInvalidConfig, s.Timestep)
	}
	if s.CollisionMode != CollisionGJK && s.CollisionMode != CollisionAnalytic {
		return fmt.Errorf("%w: collision mode %q", ErrInvalidConfig, s.CollisionMode)
	}
	if c.Cloth.Rows < 2 {
		return fmt.Errorf("%w: rows %d", ErrInvalidConfig, c.Cloth.Rows)
	}
	if c.Cloth.Spacing <= 0 {
		return fmt.Errorf("%w: spacing %g", ErrInvalidConfig, c.Cloth.Spacing)
	}
	if c.Cloth.Iterations < 1 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidConfig, c.Cloth.Iterations)
	}
	for a := 0; a < 3; a++ {
		if c.World.Min[a] >= c.World.Max[a] {
			return fmt.Errorf("%w: world bounds %v..%v", ErrInvalidConfig, c.World.Min, c.World.Max)
		}
	}
	for i, o := range c.Scene.Obstacles {
		if _, err := shape.ParseKind(o.Shape); err != nil {
			return fmt.Errorf("%w: obstacle %d: %v", ErrInvalidConfig, i, err)
		}
	}
	for i, cmd := range c.Script {
		if cmd.At < 0 {
			return fmt.Errorf("%w: script entry %d at tick %d", ErrInvalidConfig, i, cmd.At)
		}
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}
