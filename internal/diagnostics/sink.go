// Package diagnostics receives per-tick measurements and debug shapes from
// the simulation core.
package diagnostics

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Sink consumes diagnostics. Implementations must tolerate being called
// every tick.
type Sink interface {
	Scalar(name string, v float64)
	Line(from, to mgl32.Vec3, color mgl32.Vec4)
	Sphere(center mgl32.Vec3, radius float32, color mgl32.Vec4)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Scalar(string, float64) {}
func (Nop) Line(mgl32.Vec3, mgl32.Vec3, mgl32.Vec4) {}
func (Nop) Sphere(mgl32.Vec3, float32, mgl32.Vec4) {}

// ZapSink writes scalars as debug entries. Shapes are only counted, since
// there is nothing to draw them on.
type ZapSink struct {
	log    *zap.Logger
	lines  int
	sphere int
}

// NewZapSink creates a sink logging through log.
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapSink{log: log}
}

func (z *ZapSink) Scalar(name string, v float64) {
	z.log.Debug("scalar", zap.String("name", name), zap.Float64("value", v))
}

func (z *ZapSink) Line(from, to mgl32.Vec3, color mgl32.Vec4) {
	z.lines++
}

func (z *ZapSink) Sphere(center mgl32.Vec3, radius float32, color mgl32.Vec4) {
	z.sphere++
}

// Flush logs and resets the shape counters.
func (z *ZapSink) Flush() {
	if z.lines == 0 && z.sphere == 0 {
		return
	}
	z.log.Debug("shapes", zap.Int("lines", z.lines), zap.Int("spheres", z.sphere))
	z.lines, z.sphere = 0, 0
}

// LineRecord is a recorded Line call.
type LineRecord struct {
	From, To mgl32.Vec3
	Color    mgl32.Vec4
}

// SphereRecord is a recorded Sphere call.
type SphereRecord struct {
	Center mgl32.Vec3
	Radius float32
	Color  mgl32.Vec4
}

// Recorder keeps everything in memory. Scalars keep their latest value.
// Like the simulator it is not safe for concurrent use.
type Recorder struct {
	scalars map[string]float64
	lines   []LineRecord
	spheres []SphereRecord
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{scalars: make(map[string]float64)}
}

func (r *Recorder) Scalar(name string, v float64) {
	r.scalars[name] = v
}

func (r *Recorder) Line(from, to mgl32.Vec3, color mgl32.Vec4) {
	r.lines = append(r.lines, LineRecord{From: from, To: to, Color: color})
}

func (r *Recorder) Sphere(center mgl32.Vec3, radius float32, color mgl32.Vec4) {
	r.spheres = append(r.spheres, SphereRecord{Center: center, Radius: radius, Color: color})
}

// Value returns the latest value reported for name.
func (r *Recorder) Value(name string) (float64, bool) {
	v, ok := r.scalars[name]
	return v, ok
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []LineRecord {
	return append([]LineRecord(nil), r.lines...)
}

// Spheres returns a copy of the recorded spheres.
func (r *Recorder) Spheres() []SphereRecord {
	return append([]SphereRecord(nil), r.spheres...)
}

// Reset drops recorded shapes but keeps scalars.
func (r *Recorder) Reset() {
	r.lines = r.lines[:0]
	r.spheres = r.spheres[:0]
}

var (
	_ Sink = Nop{}
	_ Sink = (*ZapSink)(nil)
	_ Sink = (*Recorder)(nil)
)
