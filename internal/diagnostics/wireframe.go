package diagnostics

import "github.com/go-gl/mathgl/mgl32"

// WireframeVertexCount is the number of vertices for a box wireframe (12 edges x 2).
const WireframeVertexCount = 24

// boxEdges lists corner index pairs using the bit layout of math.BoxCorners
// (bit 0 = +X, bit 1 = +Y, bit 2 = +Z).
var boxEdges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// Top face
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// Vertical edges
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// WireframeFromCorners creates line vertices for an oriented box.
// Returns 24 vertices, format: [x, y, z] per vertex.
func WireframeFromCorners(corners [8]mgl32.Vec3) []float32 {
	out := make([]float32, 0, WireframeVertexCount*3)
	for _, e := range boxEdges {
		a, b := corners[e[0]], corners[e[1]]
		out = append(out, a.X(), a.Y(), a.Z(), b.X(), b.Y(), b.Z())
	}
	return out
}

// DrawCorners sends the box edges to sink as lines.
func DrawCorners(sink Sink, corners [8]mgl32.Vec3, color mgl32.Vec4) {
	for _, e := range boxEdges {
		sink.Line(corners[e[0]], corners[e[1]], color)
	}
}
