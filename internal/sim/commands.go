package sim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/cloth"
	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/picking"
	"github.com/Faultbox/clothsim/internal/scene"
)

// Command is a declarative input, as found in config scripts.
type Command = config.Command

// Command operations understood by Apply.
const (
	OpPinRow        = "pin_row"
	OpSelectRow     = "select_row"
	OpSetSpacing    = "set_spacing"
	OpSetRows       = "set_rows"
	OpSetIterations = "set_iterations"
	OpSetTimestep   = "set_timestep"
	OpAddForce      = "add_force"
	OpToggleGravity = "toggle_gravity"
	OpToggleHandle  = "toggle_handle"
	OpReset         = "reset"
	OpMoveObstacle  = "move_obstacle"
	OpDrag          = "drag"
	OpPause         = "pause"
	OpResume        = "resume"
)

// PinRow pins or releases a border row.
func (s *Simulator) PinRow(row cloth.BorderRow, pinned bool) {
	s.cloth.PinRow(row, pinned)
}

// SelectRow selects a border row for handle forces.
func (s *Simulator) SelectRow(row cloth.BorderRow) {
	s.picked = -1
	s.cloth.SelectRow(row)
}

// rebuildCloth swaps particle proxies around a grid rebuild. Proxies leave
// the partition before the pool releases them.
func (s *Simulator) rebuildCloth(fn func() error) error {
	s.detachParticles()
	err := fn()
	s.attachParticles()
	s.cloth.RebuildSurface()
	if err == nil {
		s.picked = -1
		s.log.Info("cloth rebuilt",
			zap.Int("rows", s.cloth.Rows()),
			zap.Float32("spacing", s.cloth.Params().Spacing),
		)
	}
	return err
}

// SetSpacing rebuilds the cloth with a new spacing.
func (s *Simulator) SetSpacing(spacing float32) error {
	return s.rebuildCloth(func() error { return s.cloth.SetSpacing(spacing) })
}

// SetRows rebuilds the cloth with n rows and columns.
func (s *Simulator) SetRows(n int) error {
	return s.rebuildCloth(func() error { return s.cloth.SetRows(n) })
}

// SetIterations sets the relaxation passes per tick.
func (s *Simulator) SetIterations(n int) error {
	return s.cloth.SetIterations(n)
}

// SetTimestep forces every tick to use dt, bypassing the clamp.
func (s *Simulator) SetTimestep(dt float32) error {
	if math.IsNaN(float64(dt)) || math.IsInf(float64(dt), 0) || dt <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTimestep, dt)
	}
	s.timestep = dt
	return nil
}

// ClearTimestep returns to clamped caller timesteps.
func (s *Simulator) ClearTimestep() {
	s.timestep = 0
}

// AddForce pushes the selected particles along dir.
func (s *Simulator) AddForce(dir mgl32.Vec3) {
	s.cloth.ApplyHandleForce(dir, s.lastDt)
}

// ToggleGravity flips gravity and returns the new state.
func (s *Simulator) ToggleGravity() bool {
	return s.cloth.ToggleGravity()
}

// ToggleHandleMode flips handle mode and returns the new state.
func (s *Simulator) ToggleHandleMode() bool {
	return s.cloth.ToggleHandleMode()
}

// SetSimulating pauses or resumes cloth integration.
func (s *Simulator) SetSimulating(on bool) {
	s.cloth.SetSimulating(on)
}

// Reset returns the cloth to its rest pose.
func (s *Simulator) Reset() {
	s.cloth.Reset()
	s.syncParticles()
}

// MoveObstacle moves the named obstacle. Its bounds follow on the next tick.
func (s *Simulator) MoveObstacle(name string, pos mgl32.Vec3) error {
	o, ok := s.scene.FindByName(name)
	if !ok {
		return fmt.Errorf("move %q: %w", name, scene.ErrUnknownObstacle)
	}
	return s.scene.Move(o.ID, pos)
}

// PickParticle selects the particle nearest along ray. Any row selection
// is dropped.
func (s *Simulator) PickParticle(ray picking.Ray) (int, bool) {
	ps := s.cloth.Particles()
	centers := make([]mgl32.Vec3, len(ps))
	for i := range ps {
		centers[i] = ps[i].Position
	}
	radius := s.cloth.Params().Spacing / 2
	i, _ := picking.PickNearest(ray, centers, radius)
	if i < 0 {
		return -1, false
	}
	s.cloth.ClearSelection()
	ps[i].Selected = true
	s.picked = i
	return i, true
}

// PickScreen picks the particle under a pixel of a host viewport.
func (s *Simulator) PickScreen(cam *picking.OrbitCamera, x, y, viewportW, viewportH float32) (int, bool) {
	return s.PickParticle(cam.ScreenRay(x, y, viewportW, viewportH))
}

// Picked returns the particle selected by PickParticle, or -1.
func (s *Simulator) Picked() int {
	return s.picked
}

// DragSelected moves every selected particle by delta without adding
// velocity. It returns how many moved.
func (s *Simulator) DragSelected(delta mgl32.Vec3) int {
	n := s.cloth.MoveSelected(delta)
	if n > 0 {
		s.syncParticles()
	}
	return n
}

// Apply executes a declarative command.
func (s *Simulator) Apply(cmd Command) error {
	switch cmd.Op {
	case OpPinRow, OpSelectRow:
		row, err := cloth.ParseBorderRow(cmd.Row)
		if err != nil {
			return err
		}
		if cmd.Op == OpPinRow {
			s.PinRow(row, cmd.Pinned)
		} else {
			s.SelectRow(row)
		}
	case OpSetSpacing:
		return s.SetSpacing(cmd.Value)
	case OpSetRows:
		return s.SetRows(cmd.Count)
	case OpSetIterations:
		return s.SetIterations(cmd.Count)
	case OpSetTimestep:
		return s.SetTimestep(cmd.Value)
	case OpAddForce:
		s.AddForce(cmd.Vector)
	case OpToggleGravity:
		s.ToggleGravity()
	case OpToggleHandle:
		s.ToggleHandleMode()
	case OpReset:
		s.Reset()
	case OpMoveObstacle:
		return s.MoveObstacle(cmd.Target, cmd.Vector)
	case OpDrag:
		s.DragSelected(cmd.Vector)
	case OpPause:
		s.SetSimulating(false)
	case OpResume:
		s.SetSimulating(true)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
	}
	return nil
}

// Run advances ticks steps of FrameTime, applying each script command
// before the tick it is scheduled for. Failed commands are logged and
// skipped.
func (s *Simulator) Run(ctx context.Context, ticks int, script []Command) (Stats, error) {
	cmds := append([]Command(nil), script...)
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].At < cmds[j].At })

	next := 0
	for t := 0; t < ticks; t++ {
		if err := ctx.Err(); err != nil {
			return s.stats, err
		}
		for next < len(cmds) && cmds[next].At <= t {
			cmd := cmds[next]
			next++
			if err := s.Apply(cmd); err != nil {
				s.log.Warn("command rejected", zap.Int("tick", t), zap.String("op", cmd.Op), zap.Error(err))
				continue
			}
			s.log.Debug("command applied", zap.Int("tick", t), zap.String("op", cmd.Op))
		}
		s.Tick(FrameTime)
	}
	return s.stats, nil
}
