package editor

import (
	"scene-editor/core"
)

// InputSource is the window state the editor polls once per frame.
// platform.Window implements it.
type InputSource interface {
	IsKeyPressed(key int) bool
	IsMouseButtonPressed(button int) bool
	// CursorPos is in screen coordinates, which differ from framebuffer
	// pixels on HiDPI displays.
	CursorPos() (x, y float64)
	// ScrollDelta returns the scroll accumulated since the last call.
	ScrollDelta() float64
	// WindowSize is the window size in the same coordinates as CursorPos.
	WindowSize() (width, height int)
}

// watchedKeys are polled every frame for edge detection.
var watchedKeys = []int{
	core.KeySpace, core.KeyMinus, core.KeyEqual,
	core.KeyA, core.KeyD, core.KeyG, core.KeyI, core.KeyK, core.KeyN,
	core.KeyO, core.KeyP, core.KeyS, core.KeyT, core.KeyW, core.KeyY, core.KeyZ,
	core.KeyTab, core.KeyInsert, core.KeyDelete,
	core.KeyF1, core.KeyF2, core.KeyF3, core.KeyF4, core.KeyF5,
}

// InputManager turns polled state into per-frame presses and deltas.
type InputManager struct {
	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	ScrollDelta              float64

	mouseButtons     [2]bool
	mouseButtonsPrev [2]bool

	keys     map[int]bool
	keysPrev map[int]bool

	CtrlDown bool

	src        InputSource
	firstFrame bool
}

func NewInputManager(src InputSource) *InputManager {
	return &InputManager{
		src:        src,
		keys:       make(map[int]bool, len(watchedKeys)),
		keysPrev:   make(map[int]bool, len(watchedKeys)),
		firstFrame: true,
	}
}

// Update polls the source. Call it once per frame before any query.
func (im *InputManager) Update() {
	x, y := im.src.CursorPos()
	if im.firstFrame {
		im.lastMouseX, im.lastMouseY = x, y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX, im.lastMouseY = x, y
	im.MouseX, im.MouseY = x, y
	im.ScrollDelta = im.src.ScrollDelta()

	im.mouseButtonsPrev = im.mouseButtons
	im.mouseButtons[core.MouseLeft] = im.src.IsMouseButtonPressed(core.MouseLeft)
	im.mouseButtons[core.MouseRight] = im.src.IsMouseButtonPressed(core.MouseRight)

	im.CtrlDown = im.src.IsKeyPressed(core.KeyLeftCtrl)

	im.keys, im.keysPrev = im.keysPrev, im.keys
	for _, k := range watchedKeys {
		im.keys[k] = im.src.IsKeyPressed(k)
	}
}

func (im *InputManager) IsMouseDown(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button]
}

// IsMousePressed reports a button that went down this frame.
func (im *InputManager) IsMousePressed(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button] && !im.mouseButtonsPrev[button]
}

func (im *InputManager) IsKeyDown(key int) bool {
	return im.keys[key]
}

// IsKeyPressed reports a key that went down this frame.
func (im *InputManager) IsKeyPressed(key int) bool {
	return im.keys[key] && !im.keysPrev[key]
}

// IsShortcut checks for a Ctrl+key press.
func (im *InputManager) IsShortcut(key int) bool {
	return im.CtrlDown && im.IsKeyPressed(key)
}
