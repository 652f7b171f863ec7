package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scene-editor/math"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.Deferred)
	assert.True(t, s.Skybox)
	assert.False(t, s.HDR)
	assert.False(t, s.IBL)
	assert.Equal(t, float32(1), s.Exposure)
	assert.Equal(t, Filters{Saturation: 1}, s.Filters)
	assert.Equal(t, float32(0.03), s.OutlineThickness)
	assert.Equal(t, math.Vec3{X: 10, Y: 10}, s.OutlineColor)
	assert.Equal(t, float32(25), s.ShadowFar)
}

func TestSnapshotClamps(t *testing.T) {
	s := DefaultSettings()
	s.Exposure = 9
	s.Filters = Filters{Saturation: 2, Blur: -1, Outline: 0.5, Invert: true}
	s.ShadowFar = 0

	snap := s.Snapshot()
	assert.Equal(t, float32(5), snap.Exposure)
	assert.Equal(t, Filters{Saturation: 1, Blur: 0, Outline: 0.5, Invert: true}, snap.Filters)
	assert.Equal(t, float32(25), snap.ShadowFar)

	// the editor's copy is untouched
	assert.Equal(t, float32(9), s.Exposure)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := DefaultSettings()
	snap := s.Snapshot()
	s.Deferred = false
	assert.True(t, snap.Deferred)
}
