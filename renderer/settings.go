package renderer

import (
	"scene-editor/core"
	"scene-editor/math"
)

// Filters are the screen-space post-processing parameters.
type Filters struct {
	Saturation float32
	Blur       float32
	Outline    float32
	Invert     bool
}

// Settings is the editor-owned mutable render state. The composer never
// reads it directly; it gets a Snapshot once per frame.
type Settings struct {
	Deferred bool
	Skybox   bool
	HDR      bool
	IBL      bool
	Shadows  bool

	Exposure float32
	Filters  Filters

	OutlineThickness float32
	OutlineColor     math.Vec3
	ClearColor       core.Color
	// ShadowFar is the far plane of the point-shadow cubemap.
	ShadowFar float32
}

// MaxExposure bounds the tone-mapping exposure.
const MaxExposure = 5

// Snapshot is one frame's immutable copy of Settings.
type Snapshot Settings

func DefaultSettings() Settings {
	return Settings{
		Deferred: true,
		Skybox:   true,
		Shadows:  true,
		Exposure: 1,
		Filters: Filters{
			Saturation: 1,
		},
		OutlineThickness: 0.03,
		OutlineColor:     math.Vec3{X: 10, Y: 10, Z: 0},
		ClearColor:       core.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		ShadowFar:        25,
	}
}

// Snapshot copies s with every parameter clamped to its valid range.
func (s *Settings) Snapshot() Snapshot {
	snap := Snapshot(*s)
	snap.Exposure = math.Clamp(snap.Exposure, 0, MaxExposure)
	snap.Filters.Saturation = math.Clamp(snap.Filters.Saturation, 0, 1)
	snap.Filters.Blur = math.Clamp(snap.Filters.Blur, 0, 1)
	snap.Filters.Outline = math.Clamp(snap.Filters.Outline, 0, 1)
	if snap.ShadowFar <= 0.1 {
		snap.ShadowFar = 25
	}
	return snap
}
