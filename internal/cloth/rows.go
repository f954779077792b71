package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// BorderRow names one of the four grid edges that can be selected.
type BorderRow int

const (
	RowNone BorderRow = iota
	RowTop
	RowBottom
	RowLeft
	RowRight
)

// String returns the row name.
func (r BorderRow) String() string {
	switch r {
	case RowTop:
		return "top"
	case RowBottom:
		return "bottom"
	case RowLeft:
		return "left"
	case RowRight:
		return "right"
	}
	return "none"
}

// ParseBorderRow converts a name to a BorderRow.
func ParseBorderRow(name string) (BorderRow, error) {
	switch name {
	case "", "none":
		return RowNone, nil
	case "top":
		return RowTop, nil
	case "bottom":
		return RowBottom, nil
	case "left":
		return RowLeft, nil
	case "right":
		return RowRight, nil
	}
	return RowNone, fmt.Errorf("unknown border row %q", name)
}

// RowIndices returns the particle indices along row.
func (c *Cloth) RowIndices(row BorderRow) []int {
	n := c.params.Rows
	if row == RowNone {
		return nil
	}
	out := make([]int, n)
	for k := 0; k < n; k++ {
		switch row {
		case RowTop:
			out[k] = k
		case RowBottom:
			out[k] = (n-1)*n + k
		case RowLeft:
			out[k] = k * n
		case RowRight:
			out[k] = k*n + n - 1
		}
	}
	return out
}

// PinRow sets the pin flag on every particle of row. Explicit pins are not
// undone when handle mode ends.
func (c *Cloth) PinRow(row BorderRow, pinned bool) {
	for _, i := range c.RowIndices(row) {
		c.particles[i].SetPinned(pinned)
		delete(c.handlePinned, i)
	}
}

// SelectedRow returns the current selection.
func (c *Cloth) SelectedRow() BorderRow {
	return c.selected
}

// SelectRow moves the selection to row. The previous row loses its
// selection flag but keeps its pin state.
func (c *Cloth) SelectRow(row BorderRow) {
	for _, i := range c.RowIndices(c.selected) {
		c.particles[i].Selected = false
	}
	c.selected = row
	for _, i := range c.RowIndices(row) {
		c.particles[i].Selected = true
	}
	if c.handleMode {
		c.pinSelected()
	}
}

// HandleMode reports whether the selected row is being dragged.
func (c *Cloth) HandleMode() bool {
	return c.handleMode
}

// SetHandleMode pins the selected particles while on, and releases the
// pins it added when turned off.
func (c *Cloth) SetHandleMode(on bool) {
	if on == c.handleMode {
		return
	}
	c.handleMode = on
	if on {
		c.pinSelected()
		return
	}
	for i := range c.handlePinned {
		c.particles[i].SetPinned(false)
	}
	c.handlePinned = make(map[int]struct{})
}

// ToggleHandleMode flips handle mode and returns the new state.
func (c *Cloth) ToggleHandleMode() bool {
	c.SetHandleMode(!c.handleMode)
	return c.handleMode
}

func (c *Cloth) pinSelected() {
	for i := range c.particles {
		p := &c.particles[i]
		if p.Selected && !p.Pinned {
			p.SetPinned(true)
			c.handlePinned[i] = struct{}{}
		}
	}
}

// ApplyHandleForce drives the selected particles along dir. In handle mode
// they are moved directly by dir*dt; otherwise dir is added as a force on
// the unpinned ones.
func (c *Cloth) ApplyHandleForce(dir mgl32.Vec3, dt float32) {
	for i := range c.particles {
		p := &c.particles[i]
		if !p.Selected {
			continue
		}
		if c.handleMode {
			p.Move(dir.Mul(dt))
		} else {
			p.AddForce(dir)
		}
	}
}

// MoveSelected translates every selected particle by delta.
func (c *Cloth) MoveSelected(delta mgl32.Vec3) int {
	moved := 0
	for i := range c.particles {
		if c.particles[i].Selected {
			c.particles[i].Move(delta)
			moved++
		}
	}
	return moved
}

// ClearSelection drops the selection flag from every particle.
func (c *Cloth) ClearSelection() {
	for i := range c.particles {
		c.particles[i].Selected = false
	}
	c.selected = RowNone
}
