package config

import "github.com/go-gl/mathgl/mgl32"

// Command is one scripted input. Which fields matter depends on Op.
type Command struct {
	At     int        `yaml:"at"` // Tick the command fires before
	Op     string     `yaml:"op"`
	Row    string     `yaml:"row,omitempty"`
	Pinned bool       `yaml:"pinned,omitempty"`
	Value  float32    `yaml:"value,omitempty"`
	Count  int        `yaml:"count,omitempty"`
	Vector mgl32.Vec3 `yaml:"vector,flow,omitempty"`
	Target string     `yaml:"target,omitempty"`
}
