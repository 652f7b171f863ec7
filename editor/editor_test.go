package editor

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/core"
	"scene-editor/math"
	"scene-editor/renderer"
	"scene-editor/scene"
	"scene-editor/textures"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeInput struct {
	keys    map[int]bool
	buttons map[int]bool
	x, y    float64
	scroll  float64
	w, h    int
}

func newFakeInput() *fakeInput {
	return &fakeInput{keys: map[int]bool{}, buttons: map[int]bool{}, w: 800, h: 600}
}

func (f *fakeInput) IsKeyPressed(key int) bool            { return f.keys[key] }
func (f *fakeInput) IsMouseButtonPressed(button int) bool { return f.buttons[button] }
func (f *fakeInput) CursorPos() (float64, float64)        { return f.x, f.y }
func (f *fakeInput) WindowSize() (int, int)               { return f.w, f.h }

func (f *fakeInput) ScrollDelta() float64 {
	d := f.scroll
	f.scroll = 0
	return d
}

type fakePacks struct {
	packs    map[string]textures.PackID
	textures map[string]textures.TextureID
}

func (f *fakePacks) PackNames() []string { return []string{"brick", "wood"} }
func (f *fakePacks) TexturePack(name string) (textures.PackID, bool) {
	id, ok := f.packs[name]
	return id, ok
}
func (f *fakePacks) TextureNames() []string { return []string{"crate", "marble"} }
func (f *fakePacks) Texture(name string) (textures.TextureID, bool) {
	id, ok := f.textures[name]
	return id, ok
}

type fakeMusic struct {
	tracks  []string
	current string
	toggles int
}

func (f *fakeMusic) Tracks() []string { return f.tracks }
func (f *fakeMusic) Current() string  { return f.current }
func (f *fakeMusic) Select(name string) error {
	f.current = name
	return nil
}
func (f *fakeMusic) Toggle() { f.toggles++ }

type editorHarness struct {
	in       *fakeInput
	store    *scene.Store
	settings *renderer.Settings
	ed       *Editor
}

func newEditorHarness() *editorHarness {
	in := newFakeInput()
	store := scene.NewStore()
	settings := renderer.DefaultSettings()
	return &editorHarness{
		in:       in,
		store:    store,
		settings: &settings,
		ed:       NewEditor(in, store, &settings, quietLogger()),
	}
}

// press runs a frame with keys held, then a frame with them released.
func (h *editorHarness) press(keys ...int) {
	for _, k := range keys {
		h.in.keys[k] = true
	}
	h.ed.Update(0.016)
	for _, k := range keys {
		h.in.keys[k] = false
	}
	h.ed.Update(0.016)
}

func (h *editorHarness) click(x, y float64) {
	h.in.x, h.in.y = x, y
	h.in.buttons[core.MouseLeft] = true
	h.ed.Update(0.016)
	h.in.buttons[core.MouseLeft] = false
	h.ed.Update(0.016)
}

func TestAddCubeNamingAndUndo(t *testing.T) {
	h := newEditorHarness()

	assert.Equal(t, "Cube 1", h.ed.AddCube())
	h.press(core.KeyInsert)
	assert.Equal(t, []string{"Cube 1", "Cube 2"}, h.store.Names())
	assert.Equal(t, "Cube 2", h.store.Selected())

	sh, _ := h.store.Shape("Cube 2")
	assert.Equal(t, scene.Phong, sh.Shading)
	assert.Equal(t, scene.Cube, sh.Geometry)

	h.press(core.KeyLeftCtrl, core.KeyZ)
	assert.Equal(t, []string{"Cube 1"}, h.store.Names())
	assert.Equal(t, "Cube 1", h.store.Selected())

	h.press(core.KeyLeftCtrl, core.KeyY)
	assert.Equal(t, "Cube 2", h.store.Selected())
}

func TestAddCubeSkipsTakenNames(t *testing.T) {
	h := newEditorHarness()
	h.store.AddShape("Cube 1", scene.NewShape(scene.Glowy, scene.Quad))

	assert.Equal(t, "Cube 2", h.ed.AddCube())
}

func TestRemoveSelectedUndo(t *testing.T) {
	h := newEditorHarness()
	assert.False(t, h.ed.RemoveSelected())

	h.store.AddShape("A", scene.NewShape(scene.PBR, scene.Sphere))
	require.NoError(t, h.store.Select("A"))

	h.press(core.KeyDelete)
	assert.Zero(t, h.store.Len())

	h.ed.History.Undo()
	_, ok := h.store.Shape("A")
	assert.True(t, ok)
	assert.Equal(t, "A", h.store.Selected())
}

func TestTabCyclesSelection(t *testing.T) {
	h := newEditorHarness()
	for _, n := range []string{"C", "A", "B"} {
		h.store.AddShape(n, scene.NewShape(scene.Phong, scene.Cube))
	}

	var got []string
	for i := 0; i < 4; i++ {
		h.press(core.KeyTab)
		got = append(got, h.store.Selected())
	}
	assert.Equal(t, []string{"A", "B", "C", "A"}, got)
}

func TestShapeEditsAreUndoable(t *testing.T) {
	h := newEditorHarness()
	h.ed.AddCube()
	sh, _ := h.store.Shape("Cube 1")

	h.press(core.KeyK)
	assert.Equal(t, scene.PBR, sh.Shading)
	h.press(core.KeyG)
	assert.Equal(t, scene.Sphere, sh.Geometry)

	h.press(core.KeyLeftCtrl, core.KeyZ)
	assert.Equal(t, scene.Cube, sh.Geometry)
	h.press(core.KeyLeftCtrl, core.KeyZ)
	assert.Equal(t, scene.Phong, sh.Shading)
}

func TestShapeEditsNeedSelection(t *testing.T) {
	h := newEditorHarness()
	h.store.AddShape("A", scene.NewShape(scene.Phong, scene.Cube))

	h.press(core.KeyK)
	sh, _ := h.store.Shape("A")
	assert.Equal(t, scene.Phong, sh.Shading)
	assert.False(t, h.ed.History.CanUndo())
}

func TestPackCycleAndToggle(t *testing.T) {
	h := newEditorHarness()
	h.ed.Packs = &fakePacks{packs: map[string]textures.PackID{"brick": 1, "wood": 2}}
	h.ed.AddCube()
	sh, _ := h.store.Shape("Cube 1")

	h.press(core.KeyP)
	assert.Equal(t, textures.PackID(1), sh.PBR.Pack)
	assert.True(t, sh.PBR.PackEnabled)

	h.press(core.KeyP)
	assert.Equal(t, textures.PackID(2), sh.PBR.Pack)

	h.press(core.KeyP)
	assert.Equal(t, textures.PackID(1), sh.PBR.Pack)

	h.press(core.KeyO)
	assert.False(t, sh.PBR.PackEnabled)
	assert.Equal(t, textures.PackID(1), sh.PBR.Pack)

	h.ed.History.Undo()
	assert.True(t, sh.PBR.PackEnabled)
}

func TestPackToggleWithoutPack(t *testing.T) {
	h := newEditorHarness()
	h.ed.AddCube()
	sh, _ := h.store.Shape("Cube 1")

	h.press(core.KeyO)
	assert.False(t, sh.PBR.PackEnabled)
	assert.Zero(t, sh.PBR.Pack)
}

func TestTextureCycle(t *testing.T) {
	h := newEditorHarness()
	h.ed.Packs = &fakePacks{textures: map[string]textures.TextureID{"crate": 3, "marble": 4}}
	h.ed.AddCube()
	sh, _ := h.store.Shape("Cube 1")

	h.press(core.KeyT)
	assert.Equal(t, textures.TextureID(3), sh.Texture)
	h.press(core.KeyT)
	assert.Equal(t, textures.TextureID(4), sh.Texture)
}

func TestRenderTogglesAreEdgeTriggered(t *testing.T) {
	h := newEditorHarness()
	require.True(t, h.settings.Deferred)

	h.in.keys[core.KeyF1] = true
	h.ed.Update(0.016)
	h.ed.Update(0.016)
	h.ed.Update(0.016)
	assert.False(t, h.settings.Deferred)

	h.in.keys[core.KeyF1] = false
	h.ed.Update(0.016)
	h.press(core.KeyF1)
	assert.True(t, h.settings.Deferred)

	h.press(core.KeyF2)
	h.press(core.KeyF3)
	h.press(core.KeyF4)
	h.press(core.KeyF5)
	h.press(core.KeyI)
	assert.False(t, h.settings.Skybox)
	assert.True(t, h.settings.HDR)
	assert.True(t, h.settings.IBL)
	assert.False(t, h.settings.Shadows)
	assert.True(t, h.settings.Filters.Invert)
}

func TestExposureStepsAreClamped(t *testing.T) {
	h := newEditorHarness()
	h.settings.Exposure = 4.95

	h.press(core.KeyEqual)
	h.press(core.KeyEqual)
	assert.InDelta(t, renderer.MaxExposure, h.settings.Exposure, 1e-6)

	h.settings.Exposure = 0.05
	h.press(core.KeyMinus)
	assert.Zero(t, h.settings.Exposure)
}

func TestMusicBindings(t *testing.T) {
	h := newEditorHarness()
	m := &fakeMusic{tracks: []string{"alpha", "beta"}}
	h.ed.Music = m

	h.press(core.KeyN)
	assert.Equal(t, "alpha", m.current)
	assert.Equal(t, 1, m.toggles)

	h.press(core.KeyN)
	assert.Equal(t, "beta", m.current)

	h.press(core.KeySpace)
	assert.Equal(t, 3, m.toggles)
}

func TestCameraFly(t *testing.T) {
	h := newEditorHarness()
	start := h.ed.Camera.Position

	h.in.keys[core.KeyW] = true
	h.ed.Update(1)
	h.in.keys[core.KeyW] = false

	moved := start.Sub(h.ed.Camera.Position)
	assert.InDelta(t, h.ed.Camera.Speed, moved.Z, 1e-4)
}

func TestRightMouseLookSkipsFirstFrame(t *testing.T) {
	h := newEditorHarness()
	yaw, pitch := h.ed.Camera.Yaw, h.ed.Camera.Pitch

	h.ed.Update(0.016)
	h.in.buttons[core.MouseRight] = true
	h.in.x, h.in.y = 100, 0
	h.ed.Update(0.016)
	assert.Equal(t, yaw, h.ed.Camera.Yaw)

	h.in.x, h.in.y = 110, 10
	h.ed.Update(0.016)
	assert.InDelta(t, yaw+10*h.ed.Camera.Sensitivity, h.ed.Camera.Yaw, 1e-4)
	// Moving the cursor down looks down.
	assert.InDelta(t, pitch-10*h.ed.Camera.Sensitivity, h.ed.Camera.Pitch, 1e-4)
}

func TestScrollZoom(t *testing.T) {
	h := newEditorHarness()
	zoom := h.ed.Camera.Zoom

	h.in.scroll = 2
	h.ed.Update(0.016)
	assert.InDelta(t, zoom-2, h.ed.Camera.Zoom, 1e-5)
}

func TestClickPicksShape(t *testing.T) {
	h := newEditorHarness()
	h.store.AddShape("Center", scene.NewShape(scene.Phong, scene.Cube))
	far := scene.NewShape(scene.Phong, scene.Cube)
	far.Transform.Position = math.Vec3{Z: -5}
	h.store.AddShape("Behind", far)

	h.click(400, 300)
	assert.Equal(t, "Center", h.store.Selected())

	h.click(5, 5)
	assert.Empty(t, h.store.Selected())
}

func TestClickUsesWindowCoordinates(t *testing.T) {
	h := newEditorHarness()
	// A 2x HiDPI window: 400x300 in screen coordinates over an 800x600
	// framebuffer. The cursor reports screen coordinates.
	h.in.w, h.in.h = 400, 300
	h.store.AddShape("Center", scene.NewShape(scene.Phong, scene.Cube))

	h.click(200, 150)
	assert.Equal(t, "Center", h.store.Selected())

	h.click(390, 290)
	assert.Empty(t, h.store.Selected())
}

type frameLog struct {
	store  *scene.Store
	shapes []int
	last   renderer.FrameInput
}

func (f *frameLog) Frame(in renderer.FrameInput) {
	f.shapes = append(f.shapes, f.store.Len())
	f.last = in
}

func TestTickDrawsBeforeApplyingInput(t *testing.T) {
	h := newEditorHarness()
	log := &frameLog{store: h.store}

	h.in.keys[core.KeyInsert] = true
	h.ed.Tick(log, 1, 0.016, 4.0/3.0, 300)
	assert.Equal(t, []int{0}, log.shapes, "the frame shows the state before this frame's input")
	assert.Equal(t, 1, h.store.Len())

	h.in.keys[core.KeyInsert] = false
	h.ed.Tick(log, 2, 0.016, 4.0/3.0, 300)
	assert.Equal(t, []int{0, 1}, log.shapes)

	assert.Equal(t, int16(300), log.last.Amplitude)
	assert.Equal(t, float32(2), log.last.Time)
	assert.Equal(t, h.ed.Camera.Position, log.last.CameraPos)
	assert.Equal(t, h.settings.Deferred, log.last.Settings.Deferred)
}

func TestScreenToRayThroughCenter(t *testing.T) {
	cam := scene.NewCamera(math.Vec3{Z: 3})
	r := ScreenToRay(400, 300, 800, 600, cam.ViewMatrix(), cam.ProjectionMatrix(800.0/600.0))

	assert.InDelta(t, 0, r.Origin.X, 1e-4)
	assert.InDelta(t, 3-scene.NearPlane, r.Origin.Z, 1e-3)
	assert.InDelta(t, -1, r.Direction.Z, 1e-4)
}

func TestIntersectSphere(t *testing.T) {
	r := Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}

	d, ok := r.IntersectSphere(math.Vec3{}, 1)
	require.True(t, ok)
	assert.InDelta(t, 4, d, 1e-5)

	_, ok = r.IntersectSphere(math.Vec3{X: 3}, 1)
	assert.False(t, ok)

	_, ok = r.IntersectSphere(math.Vec3{Z: 10}, 1)
	assert.False(t, ok, "sphere behind the origin")

	inside := Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}
	d, ok = inside.IntersectSphere(math.Vec3{}, 2)
	require.True(t, ok)
	assert.InDelta(t, 2, d, 1e-5)
}

func TestHistoryDepthAndRedoReset(t *testing.T) {
	h := NewHistory(2)
	sh := scene.NewShape(scene.Glowy, scene.Cube)
	for i := 0; i < 3; i++ {
		h.Do(&ShadingCommand{Shape: sh, Old: sh.Shading, New: sh.Shading.Next()})
	}
	assert.Equal(t, scene.Light, sh.Shading)

	require.NotNil(t, h.Undo())
	require.NotNil(t, h.Undo())
	assert.Nil(t, h.Undo())
	assert.Equal(t, scene.Phong, sh.Shading)

	h.Do(&GeometryCommand{Shape: sh, Old: sh.Geometry, New: scene.Quad})
	assert.False(t, h.CanRedo())
}

func TestSaveAndLoadShortcuts(t *testing.T) {
	h := newEditorHarness()
	h.ed.ScenePath = filepath.Join(t.TempDir(), "scene.json")
	h.ed.AddCube()

	h.press(core.KeyLeftCtrl, core.KeyS)
	assert.Equal(t, "Saved "+h.ed.ScenePath, h.ed.StatusText)

	h.ed.AddCube()
	require.Equal(t, 2, h.store.Len())

	h.press(core.KeyLeftCtrl, core.KeyO)
	assert.Equal(t, []string{"Cube 1"}, h.store.Names())
	assert.False(t, h.ed.History.CanUndo())
}

func TestLoadSceneMissingFileKeepsStore(t *testing.T) {
	h := newEditorHarness()
	h.ed.ScenePath = filepath.Join(t.TempDir(), "absent.json")
	h.ed.AddCube()

	assert.Error(t, h.ed.LoadScene())
	assert.Equal(t, 1, h.store.Len())
	assert.True(t, h.ed.History.CanUndo())
}
