package cloth

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/clothsim/internal/proxy"
	"github.com/Faultbox/clothsim/internal/shape"
	cmath "github.com/Faultbox/clothsim/pkg/math"
)

var (
	ErrInvalidRows       = errors.New("invalid row count")
	ErrInvalidSpacing    = errors.New("invalid spacing")
	ErrInvalidIterations = errors.New("invalid iteration count")
	ErrInvalidSmoothing  = errors.New("invalid smoothing factor")
)

const (
	MinRows       = 2
	MaxRows       = 128
	MaxIterations = 64
)

// Params configures a cloth grid.
type Params struct {
	Rows           int
	Spacing        float32
	Iterations     int
	Damping        float32
	Gravity        mgl32.Vec3
	Origin         mgl32.Vec3
	ParticleRadius float32
	Smoothing      float32
	Subdivide      bool
	PinnedRow      BorderRow
}

// DefaultParams returns a small hanging cloth.
func DefaultParams() Params {
	return Params{
		Rows:           16,
		Spacing:        0.25,
		Iterations:     2,
		Damping:        0.01,
		Gravity:        mgl32.Vec3{0, -9.81, 0},
		Origin:         mgl32.Vec3{-2, 4, -2},
		ParticleRadius: 0.05,
		PinnedRow:      RowTop,
	}
}

func validRows(n int) error {
	if n < MinRows || n > MaxRows {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRows, n, MinRows, MaxRows)
	}
	return nil
}

func validSpacing(s float32) error {
	if !(s > 0) || math.IsInf(float64(s), 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpacing, s)
	}
	return nil
}

func validIterations(n int) error {
	if n < 1 || n > MaxIterations {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidIterations, n, MaxIterations)
	}
	return nil
}

func validSmoothing(f float32) error {
	if !(f >= 0 && f <= 1) {
		return fmt.Errorf("%w: %v not in [0, 1]", ErrInvalidSmoothing, f)
	}
	return nil
}

// Validate checks every parameter a cloth is built from.
func (p Params) Validate() error {
	if err := validRows(p.Rows); err != nil {
		return err
	}
	if err := validSpacing(p.Spacing); err != nil {
		return err
	}
	if err := validIterations(p.Iterations); err != nil {
		return err
	}
	if err := validSmoothing(p.Smoothing); err != nil {
		return err
	}
	if p.Damping < 0 || p.Damping >= 1 {
		return fmt.Errorf("damping %v not in [0, 1)", p.Damping)
	}
	if !(p.ParticleRadius > 0) {
		return fmt.Errorf("particle radius %v must be positive", p.ParticleRadius)
	}
	return nil
}

// Cloth owns a square grid of particles and the springs between them. The
// grid lies in the XZ plane starting at Origin; row r, column c sits at
// Origin + (c, 0, r) * Spacing.
type Cloth struct {
	params    Params
	particles []Particle
	springs   []Spring
	surface   Surface

	selected     BorderRow
	handleMode   bool
	handlePinned map[int]struct{}
	gravity      bool
	simulating   bool
}

// New builds a cloth from params.
func New(params Params) (*Cloth, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	c := &Cloth{
		params:       params,
		selected:     RowNone,
		handlePinned: make(map[int]struct{}),
		gravity:      true,
		simulating:   true,
	}
	c.rebuild()
	return c, nil
}

// Params returns the active parameters.
func (c *Cloth) Params() Params {
	return c.params
}

// Rows returns the grid dimension N.
func (c *Cloth) Rows() int {
	return c.params.Rows
}

// Particles exposes the particle array. Callers may mutate particles but
// must not resize the slice.
func (c *Cloth) Particles() []Particle {
	return c.particles
}

// Particle returns the particle at row r, column col.
func (c *Cloth) Particle(r, col int) *Particle {
	return &c.particles[r*c.params.Rows+col]
}

// Springs returns the spring array.
func (c *Cloth) Springs() []Spring {
	return c.springs
}

// Rebuild reinitialises the grid from the current parameters, discarding
// any motion.
func (c *Cloth) Rebuild() {
	c.rebuild()
}

// rebuild discards all springs and reinitialises every particle in place.
func (c *Cloth) rebuild() {
	n := c.params.Rows
	count := n * n
	if cap(c.particles) >= count {
		c.particles = c.particles[:count]
	} else {
		c.particles = make([]Particle, count)
	}
	step := float32(1) / float32(n-1)
	for r := 0; r < n; r++ {
		for col := 0; col < n; col++ {
			i := r*n + col
			pos := c.params.Origin.Add(mgl32.Vec3{float32(col), 0, float32(r)}.Mul(c.params.Spacing))
			c.particles[i].reset(i, pos, mgl32.Vec2{float32(col) * step, float32(r) * step})
		}
	}

	c.springs = c.springs[:0]
	for r := 0; r < n; r++ {
		for col := 0; col < n; col++ {
			if col+1 < n {
				c.addSpring(r, col, r, col+1, Stretch)
			}
			if r+1 < n {
				c.addSpring(r, col, r+1, col, Stretch)
			}
			if r+1 < n && col+1 < n {
				c.addSpring(r, col, r+1, col+1, Shear)
				c.addSpring(r, col+1, r+1, col, Shear)
			}
			if col+2 < n {
				c.addSpring(r, col, r, col+2, Bend)
			}
			if r+2 < n {
				c.addSpring(r, col, r+2, col, Bend)
			}
		}
	}

	c.handlePinned = make(map[int]struct{})
	if c.params.PinnedRow != RowNone {
		c.PinRow(c.params.PinnedRow, true)
	}
	sel := c.selected
	c.selected = RowNone
	if sel != RowNone {
		c.SelectRow(sel)
	}
	c.RebuildSurface()
}

func (c *Cloth) addSpring(r0, c0, r1, c1 int, kind SpringKind) {
	n := c.params.Rows
	a, b := r0*n+c0, r1*n+c1
	rest := c.particles[b].Position.Sub(c.particles[a].Position).Len()
	c.springs = append(c.springs, Spring{A: a, B: b, RestLength: rest, Kind: kind})
}

// SpringCounts returns the expected stretch, shear and bend counts for an
// n by n grid.
func SpringCounts(n int) (stretch, shear, bend int) {
	stretch = 2 * n * (n - 1)
	shear = 2 * (n - 1) * (n - 1)
	if n > 2 {
		bend = 2 * n * (n - 2)
	}
	return stretch, shear, bend
}

// SetSpacing rebuilds the grid with a new particle spacing. Invalid values
// leave the cloth untouched.
func (c *Cloth) SetSpacing(s float32) error {
	if err := validSpacing(s); err != nil {
		return err
	}
	c.params.Spacing = s
	c.rebuild()
	return nil
}

// SetRows rebuilds the grid with n rows and columns.
func (c *Cloth) SetRows(n int) error {
	if err := validRows(n); err != nil {
		return err
	}
	c.params.Rows = n
	c.rebuild()
	return nil
}

// SetIterations changes the relaxation pass count.
func (c *Cloth) SetIterations(n int) error {
	if err := validIterations(n); err != nil {
		return err
	}
	c.params.Iterations = n
	return nil
}

// SetSmoothing changes the surface smoothing factor.
func (c *Cloth) SetSmoothing(f float32) error {
	if err := validSmoothing(f); err != nil {
		return err
	}
	c.params.Smoothing = f
	return nil
}

// SetSubdivide toggles centroid subdivision of the surface.
func (c *Cloth) SetSubdivide(on bool) {
	c.params.Subdivide = on
}

// ToggleGravity flips gravity and returns the new state.
func (c *Cloth) ToggleGravity() bool {
	c.gravity = !c.gravity
	return c.gravity
}

// GravityEnabled reports whether gravity is applied.
func (c *Cloth) GravityEnabled() bool {
	return c.gravity
}

// SetSimulating pauses or resumes Update.
func (c *Cloth) SetSimulating(on bool) {
	c.simulating = on
}

// Update advances the cloth by dt: gravity, spring relaxation, then
// integration.
func (c *Cloth) Update(dt float32) {
	if !c.simulating {
		return
	}
	if c.gravity {
		for i := range c.particles {
			c.particles[i].AddForce(c.params.Gravity)
		}
	}
	for it := 0; it < c.params.Iterations; it++ {
		for i := range c.springs {
			c.springs[i].Solve(c.particles)
		}
	}
	dt2 := dt * dt
	for i := range c.particles {
		c.particles[i].Integrate(c.params.Damping, dt2)
	}
}

// Reset returns every particle to its rest pose. Pin and selection flags
// are kept.
func (c *Cloth) Reset() {
	for i := range c.particles {
		p := &c.particles[i]
		p.Position = p.RestPosition
		p.PrevPosition = p.RestPosition
		p.Acceleration = mgl32.Vec3{}
		p.InteractingVelocity = mgl32.Vec3{}
	}
	c.RebuildSurface()
}

// ClearInteracting zeroes the collision-driven velocities.
func (c *Cloth) ClearInteracting() {
	for i := range c.particles {
		c.particles[i].InteractingVelocity = mgl32.Vec3{}
	}
}

// Sanitize restores particles whose state is no longer finite, first to
// their previous position and otherwise to the rest pose. It returns the
// indices it repaired.
func (c *Cloth) Sanitize() []int {
	var repaired []int
	for i := range c.particles {
		p := &c.particles[i]
		if cmath.IsFinite(p.Position) && cmath.IsFinite(p.PrevPosition) {
			continue
		}
		pos := p.PrevPosition
		if !cmath.IsFinite(pos) {
			pos = p.RestPosition
		}
		p.Position, p.PrevPosition = pos, pos
		p.Acceleration = mgl32.Vec3{}
		p.InteractingVelocity = mgl32.Vec3{}
		repaired = append(repaired, i)
	}
	return repaired
}

// AverageHeight returns the mean particle Y.
func (c *Cloth) AverageHeight() float32 {
	if len(c.particles) == 0 {
		return 0
	}
	var sum float32
	for i := range c.particles {
		sum += c.particles[i].Position.Y()
	}
	return sum / float32(len(c.particles))
}

// Resolver returns the collision callback for particle i. Corrections on
// pinned particles are discarded.
func (c *Cloth) Resolver(i int) proxy.Resolver {
	return func(correction mgl32.Vec3, _ shape.Kind) mgl32.Vec3 {
		p := &c.particles[i]
		if p.Pinned {
			return mgl32.Vec3{}
		}
		p.Position = p.Position.Add(correction)
		p.InteractingVelocity = p.InteractingVelocity.Add(correction)
		return correction
	}
}
