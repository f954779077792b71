package diagnostics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	cmath "github.com/Faultbox/clothsim/pkg/math"
)

func TestWireframeFromCorners(t *testing.T) {
	corners := cmath.BoxCorners(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 2, 3})
	v := WireframeFromCorners(corners)
	require.Len(t, v, WireframeVertexCount*3)

	// Every edge is axis aligned with the length of one box side.
	for i := 0; i < len(v); i += 6 {
		a := mgl32.Vec3{v[i], v[i+1], v[i+2]}
		b := mgl32.Vec3{v[i+3], v[i+4], v[i+5]}
		d := b.Sub(a)
		nonZero := 0
		for k := 0; k < 3; k++ {
			if d[k] != 0 {
				nonZero++
			}
		}
		assert.Equal(t, 1, nonZero, "edge %d is not axis aligned", i/6)
	}

	// First edge runs along X on the bottom face.
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0}, v[:6])
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Scalar("avg_height", 1)
	r.Scalar("avg_height", 2)
	DrawCorners(r, cmath.BoxCorners(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), mgl32.Vec4{1, 0, 0, 1})
	r.Sphere(mgl32.Vec3{}, 0.5, mgl32.Vec4{})

	v, ok := r.Value("avg_height")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	assert.Len(t, r.Lines(), 12)
	assert.Len(t, r.Spheres(), 1)

	r.Reset()
	assert.Empty(t, r.Lines())
	_, ok = r.Value("avg_height")
	assert.True(t, ok)
}

func TestZapSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewZapSink(zap.New(core))

	s.Scalar("contacts", 3)
	s.Line(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec4{})
	s.Flush()
	s.Flush()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "scalar", entries[0].Message)
	assert.Equal(t, "contacts", entries[0].ContextMap()["name"])
	assert.Equal(t, int64(1), entries[1].ContextMap()["lines"])
}
