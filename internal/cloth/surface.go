package cloth

import (
	"github.com/go-gl/mathgl/mgl32"

	cmath "github.com/Faultbox/clothsim/pkg/math"
)

// Surface is the renderable mesh derived from particle positions. It is
// rebuilt from scratch every tick.
type Surface struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (s *Surface) VertexCount() int {
	return len(s.Positions)
}

// Surface returns the mesh built by the last RebuildSurface.
func (c *Cloth) Surface() *Surface {
	return &c.surface
}

// RebuildSurface regenerates the mesh: optional smoothing, summed face
// normals, then optional centroid subdivision.
func (c *Cloth) RebuildSurface() {
	n := c.params.Rows
	grid := n * n
	quads := (n - 1) * (n - 1)
	total := grid
	if c.params.Subdivide {
		total += quads
	}

	s := &c.surface
	s.Positions = resize(s.Positions, total)
	s.Normals = resize(s.Normals, total)
	s.UVs = resizeUV(s.UVs, total)
	s.Indices = s.Indices[:0]

	for i := range c.particles {
		s.Positions[i] = c.particles[i].Position
		s.UVs[i] = c.particles[i].UV
		s.Normals[i] = mgl32.Vec3{}
	}
	if f := c.params.Smoothing; f > 0 {
		c.smooth(f)
	}

	idx := func(r, col int) uint32 { return uint32(r*n + col) }
	for r := 0; r < n-1; r++ {
		for col := 0; col < n-1; col++ {
			p00, p10, p01, p11 := idx(r, col), idx(r+1, col), idx(r, col+1), idx(r+1, col+1)
			s.addFaceNormal(p00, p10, p01)
			s.addFaceNormal(p01, p10, p11)
		}
	}
	for i := 0; i < grid; i++ {
		s.Normals[i] = cmath.SafeNormalize(s.Normals[i], cmath.Up)
	}

	for r := 0; r < n-1; r++ {
		for col := 0; col < n-1; col++ {
			p00, p10, p01, p11 := idx(r, col), idx(r+1, col), idx(r, col+1), idx(r+1, col+1)
			if !c.params.Subdivide {
				s.Indices = append(s.Indices, p00, p10, p01, p01, p10, p11)
				continue
			}
			ctr := uint32(grid + r*(n-1) + col)
			corners := [4]uint32{p00, p10, p11, p01}
			var pos, nrm mgl32.Vec3
			var uv mgl32.Vec2
			for _, k := range corners {
				pos = pos.Add(s.Positions[k])
				nrm = nrm.Add(s.Normals[k])
				uv = uv.Add(s.UVs[k])
			}
			s.Positions[ctr] = pos.Mul(0.25)
			s.Normals[ctr] = cmath.SafeNormalize(nrm, cmath.Up)
			s.UVs[ctr] = uv.Mul(0.25)
			for k := 0; k < 4; k++ {
				s.Indices = append(s.Indices, corners[k], corners[(k+1)%4], ctr)
			}
		}
	}
}

func (s *Surface) addFaceNormal(a, b, c uint32) {
	pa := s.Positions[a]
	n := s.Positions[b].Sub(pa).Cross(s.Positions[c].Sub(pa))
	n = cmath.SafeNormalize(n, mgl32.Vec3{})
	s.Normals[a] = s.Normals[a].Add(n)
	s.Normals[b] = s.Normals[b].Add(n)
	s.Normals[c] = s.Normals[c].Add(n)
}

// smooth blends each vertex toward the average of its four diagonal
// neighbours two cells away. It reads particle positions so the result
// does not depend on visiting order.
func (c *Cloth) smooth(f float32) {
	n := c.params.Rows
	for r := 2; r < n-2; r++ {
		for col := 2; col < n-2; col++ {
			avg := c.Particle(r-2, col-2).Position.
				Add(c.Particle(r-2, col+2).Position).
				Add(c.Particle(r+2, col-2).Position).
				Add(c.Particle(r+2, col+2).Position).
				Mul(0.25)
			i := r*n + col
			c.surface.Positions[i] = cmath.Lerp(c.particles[i].Position, avg, f)
		}
	}
}

func resize(v []mgl32.Vec3, n int) []mgl32.Vec3 {
	if cap(v) >= n {
		return v[:n]
	}
	return make([]mgl32.Vec3, n)
}

func resizeUV(v []mgl32.Vec2, n int) []mgl32.Vec2 {
	if cap(v) >= n {
		return v[:n]
	}
	return make([]mgl32.Vec2, n)
}
