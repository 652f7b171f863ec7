package editor

import (
	"fmt"
	"log/slog"

	"scene-editor/core"
	sceneio "scene-editor/io"
	"scene-editor/math"
	"scene-editor/renderer"
	"scene-editor/scene"
	"scene-editor/textures"
)

const (
	historyDepth = 100
	exposureStep = 0.1
	zoomStep     = 1
)

// TexturePacks is the part of the resource manager the editor browses.
type TexturePacks interface {
	PackNames() []string
	TexturePack(name string) (textures.PackID, bool)
	TextureNames() []string
	Texture(name string) (textures.TextureID, bool)
}

// Music is the track control the editor drives.
type Music interface {
	Tracks() []string
	Current() string
	Select(name string) error
	Toggle()
}

// Editor is the keyboard and mouse front end over the shape store.
type Editor struct {
	Store    *scene.Store
	Camera   *scene.Camera
	Settings *renderer.Settings
	History  *History
	Input    *InputManager

	// Optional collaborators; nil disables the matching bindings.
	Packs TexturePacks
	Music Music

	// ScenePath is where Ctrl+S saves and Ctrl+O loads. Empty disables both.
	ScenePath string

	StatusText string

	log      *slog.Logger
	cubeSeq  int
	lookHeld bool
}

// NewEditor initializes a new editor instance
func NewEditor(src InputSource, store *scene.Store, settings *renderer.Settings, log *slog.Logger) *Editor {
	return &Editor{
		Store:      store,
		Camera:     scene.NewCamera(math.Vec3{Z: 3}),
		Settings:   settings,
		History:    NewHistory(historyDepth),
		Input:      NewInputManager(src),
		StatusText: "Ready",
		log:        log.With("component", "editor"),
	}
}

// FrameDrawer draws one frame. *renderer.Composer implements it.
type FrameDrawer interface {
	Frame(in renderer.FrameInput)
}

// Tick runs one displayed frame: d draws the state left by the previous
// tick, then this frame's input is applied. Edits appear one frame later.
func (e *Editor) Tick(d FrameDrawer, now, dt, aspect float32, amplitude int16) {
	e.Camera.Update()
	d.Frame(renderer.FrameInput{
		Settings:   e.Settings.Snapshot(),
		View:       e.Camera.ViewMatrix(),
		Projection: e.Camera.ProjectionMatrix(aspect),
		CameraPos:  e.Camera.Position,
		Time:       now,
		Amplitude:  amplitude,
	})
	e.Update(dt)
}

// Update processes one frame of editor logic
func (e *Editor) Update(deltaTime float32) {
	e.Input.Update()

	e.handleShortcuts()
	e.handleShapeEdits()
	e.handleRenderToggles()
	e.handleMusic()
	e.handleCameraControls(deltaTime)
	e.handleMouseSelection()
}

func (e *Editor) status(msg string) {
	e.StatusText = msg
	e.log.Debug(msg)
}

func (e *Editor) handleShortcuts() {
	if e.Input.IsShortcut(core.KeyZ) {
		if cmd := e.History.Undo(); cmd != nil {
			e.status("Undo: " + cmd.Description())
		}
	}
	if e.Input.IsShortcut(core.KeyY) {
		if cmd := e.History.Redo(); cmd != nil {
			e.status("Redo: " + cmd.Description())
		}
	}
	if e.Input.IsShortcut(core.KeyS) {
		e.SaveScene()
	}
	if e.Input.IsShortcut(core.KeyO) {
		e.LoadScene()
	}
	if e.Input.IsKeyPressed(core.KeyInsert) {
		e.AddCube()
	}
	if e.Input.IsKeyPressed(core.KeyDelete) {
		e.RemoveSelected()
	}
	if e.Input.IsKeyPressed(core.KeyTab) {
		e.SelectNext()
	}
}

// AddCube adds a Phong cube named "Cube N" and selects it.
func (e *Editor) AddCube() string {
	var name string
	for {
		e.cubeSeq++
		name = fmt.Sprintf("Cube %d", e.cubeSeq)
		if _, taken := e.Store.Shape(name); !taken {
			break
		}
	}
	e.History.Do(&AddShapeCommand{
		Store: e.Store,
		Name:  name,
		Shape: scene.NewShape(scene.Phong, scene.Cube),
	})
	e.status("Added: " + name)
	return name
}

// SaveScene writes the store and camera to ScenePath.
func (e *Editor) SaveScene() error {
	if e.ScenePath == "" {
		return nil
	}
	f := sceneio.Capture("scene", e.Store, e.Camera, e.Packs)
	if err := sceneio.SaveScene(e.ScenePath, f); err != nil {
		e.log.Error("save scene", "path", e.ScenePath, "err", err)
		e.status("Save failed")
		return err
	}
	e.status("Saved " + e.ScenePath)
	return nil
}

// LoadScene replaces the store with ScenePath's contents. Loading is not
// undoable, so the history is cleared.
func (e *Editor) LoadScene() error {
	if e.ScenePath == "" {
		return nil
	}
	f, err := sceneio.LoadScene(e.ScenePath)
	if err == nil {
		err = f.Apply(e.Store, e.Camera, e.Packs)
	}
	if err != nil {
		e.log.Error("load scene", "path", e.ScenePath, "err", err)
		e.status("Load failed")
		return err
	}
	e.History.Clear()
	e.status("Loaded " + e.ScenePath)
	return nil
}

// RemoveSelected deletes the selected shape, if any.
func (e *Editor) RemoveSelected() bool {
	cmd, ok := NewRemoveShapeCommand(e.Store, e.Store.Selected())
	if !ok {
		return false
	}
	e.History.Do(cmd)
	e.status("Removed: " + cmd.Name)
	return true
}

func (e *Editor) selected() (string, *scene.Shape, bool) {
	name := e.Store.Selected()
	if name == "" {
		return "", nil, false
	}
	sh, ok := e.Store.Shape(name)
	return name, sh, ok
}

func (e *Editor) handleShapeEdits() {
	if e.Input.CtrlDown {
		return
	}
	name, sh, ok := e.selected()
	if !ok {
		return
	}
	switch {
	case e.Input.IsKeyPressed(core.KeyK):
		e.History.Do(&ShadingCommand{Name: name, Shape: sh, Old: sh.Shading, New: sh.Shading.Next()})
		e.status(name + ": " + sh.Shading.String())
	case e.Input.IsKeyPressed(core.KeyG):
		e.History.Do(&GeometryCommand{Name: name, Shape: sh, Old: sh.Geometry, New: sh.Geometry.Next()})
		e.status(name + ": " + sh.Geometry.String())
	case e.Input.IsKeyPressed(core.KeyP):
		e.nextPack(name, sh)
	case e.Input.IsKeyPressed(core.KeyO):
		e.togglePack(name, sh)
	case e.Input.IsKeyPressed(core.KeyT):
		e.nextTexture(name, sh)
	}
}

func (e *Editor) nextPack(name string, sh *scene.Shape) {
	if e.Packs == nil {
		return
	}
	names := e.Packs.PackNames()
	current := ""
	for _, n := range names {
		if id, _ := e.Packs.TexturePack(n); id == sh.PBR.Pack && id != 0 {
			current = n
			break
		}
	}
	next := nextName(names, current)
	id, ok := e.Packs.TexturePack(next)
	if !ok {
		e.status("No texture packs loaded")
		return
	}
	e.History.Do(&PackCommand{
		Name: name, Shape: sh,
		OldPack: sh.PBR.Pack, OldEnabled: sh.PBR.PackEnabled,
		NewPack: id, NewEnabled: true,
	})
	e.status(name + ": pack " + next)
}

func (e *Editor) togglePack(name string, sh *scene.Shape) {
	if sh.PBR.Pack == 0 {
		return
	}
	e.History.Do(&PackCommand{
		Name: name, Shape: sh,
		OldPack: sh.PBR.Pack, OldEnabled: sh.PBR.PackEnabled,
		NewPack: sh.PBR.Pack, NewEnabled: !sh.PBR.PackEnabled,
	})
	e.status(fmt.Sprintf("%s: pack enabled %v", name, sh.PBR.PackEnabled))
}

func (e *Editor) nextTexture(name string, sh *scene.Shape) {
	if e.Packs == nil {
		return
	}
	names := e.Packs.TextureNames()
	current := ""
	for _, n := range names {
		if id, _ := e.Packs.Texture(n); id == sh.Texture && id != 0 {
			current = n
			break
		}
	}
	next := nextName(names, current)
	id, ok := e.Packs.Texture(next)
	if !ok {
		e.status("No textures loaded")
		return
	}
	e.History.Do(&TextureCommand{Name: name, Shape: sh, Old: sh.Texture, New: id})
	e.status(name + ": texture " + next)
}

func (e *Editor) handleRenderToggles() {
	s := e.Settings
	if s == nil {
		return
	}
	toggles := []struct {
		key   int
		flag  *bool
		label string
	}{
		{core.KeyF1, &s.Deferred, "Deferred"},
		{core.KeyF2, &s.Skybox, "Skybox"},
		{core.KeyF3, &s.HDR, "HDR"},
		{core.KeyF4, &s.IBL, "IBL"},
		{core.KeyF5, &s.Shadows, "Shadows"},
		{core.KeyI, &s.Filters.Invert, "Invert"},
	}
	for _, t := range toggles {
		if e.Input.IsKeyPressed(t.key) {
			*t.flag = !*t.flag
			e.status(fmt.Sprintf("%s: %v", t.label, *t.flag))
		}
	}
	if e.Input.IsKeyPressed(core.KeyEqual) {
		s.Exposure = math.Clamp(s.Exposure+exposureStep, 0, renderer.MaxExposure)
		e.status(fmt.Sprintf("Exposure: %.1f", s.Exposure))
	}
	if e.Input.IsKeyPressed(core.KeyMinus) {
		s.Exposure = math.Clamp(s.Exposure-exposureStep, 0, renderer.MaxExposure)
		e.status(fmt.Sprintf("Exposure: %.1f", s.Exposure))
	}
}

func (e *Editor) handleMusic() {
	if e.Music == nil {
		return
	}
	if e.Input.IsKeyPressed(core.KeyN) {
		next := nextName(e.Music.Tracks(), e.Music.Current())
		if next == "" {
			return
		}
		if err := e.Music.Select(next); err != nil {
			e.log.Warn("select track", "track", next, "err", err)
			e.status("Cannot play " + next)
			return
		}
		e.Music.Toggle()
		e.status("Track: " + next)
	}
	if e.Input.IsKeyPressed(core.KeySpace) {
		e.Music.Toggle()
	}
}

func (e *Editor) handleCameraControls(dt float32) {
	if !e.Input.CtrlDown {
		moves := []struct {
			key int
			dir scene.CameraMovement
		}{
			{core.KeyW, scene.Forward},
			{core.KeyS, scene.Backward},
			{core.KeyA, scene.Left},
			{core.KeyD, scene.Right},
		}
		for _, m := range moves {
			if e.Input.IsKeyDown(m.key) {
				e.Camera.ProcessKeyboard(m.dir, dt)
			}
		}
	}

	// Right mouse drag looks around. The first frame of a drag is skipped so
	// the cursor jump since the last drag is not applied.
	if e.Input.IsMouseDown(core.MouseRight) {
		if e.lookHeld {
			e.Camera.ProcessMouse(float32(e.Input.MouseDeltaX), -float32(e.Input.MouseDeltaY))
		}
		e.lookHeld = true
	} else {
		e.lookHeld = false
	}

	if e.Input.ScrollDelta != 0 {
		e.Camera.ProcessScroll(float32(e.Input.ScrollDelta) * zoomStep)
	}
}

func (e *Editor) handleMouseSelection() {
	if !e.Input.IsMousePressed(core.MouseLeft) {
		return
	}
	w, h := e.Input.src.WindowSize()
	if w <= 0 || h <= 0 {
		return
	}
	ray := ScreenToRay(
		float32(e.Input.MouseX), float32(e.Input.MouseY), w, h,
		e.Camera.ViewMatrix(), e.Camera.ProjectionMatrix(float32(w)/float32(h)),
	)
	if hit, ok := Pick(ray, e.Store); ok {
		_ = e.Store.Select(hit.Name)
		e.status("Selected: " + hit.Name)
		return
	}
	e.ClearSelection()
	e.status("Selection cleared")
}
