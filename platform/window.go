// Package platform opens the GLFW window and OpenGL context and reports
// input to the editor.
package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GL calls must stay on the thread that owns the context.
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	resized    func(w, h int)
	scrollY    float64
	lastCursor [2]float64
	haveCursor bool
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1920,
		Height:    1080,
		Title:     "Cubes",
		Resizable: true,
		VSync:     true,
	}
}

// NewWindow opens a window with a current OpenGL 4.1 core context.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	var monitor *glfw.Monitor
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Title:  config.Title,
	}
	window.Width, window.Height = handle.GetFramebufferSize()

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		if window.resized != nil {
			window.resized(width, height)
		}
	})
	handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		window.scrollY += yoff
	})

	return window, nil
}

// OnResize registers fn to run whenever the framebuffer changes size.
func (w *Window) OnResize(fn func(width, height int)) {
	w.resized = fn
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) Close() {
	w.Handle.SetShouldClose(true)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func (w *Window) Aspect() float32 {
	if w.Height == 0 {
		return 1
	}
	return float32(w.Width) / float32(w.Height)
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) CursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// CursorDelta returns the cursor movement since the previous call.
func (w *Window) CursorDelta() (float64, float64) {
	x, y := w.Handle.GetCursorPos()
	if !w.haveCursor {
		w.lastCursor = [2]float64{x, y}
		w.haveCursor = true
	}
	dx, dy := x-w.lastCursor[0], w.lastCursor[1]-y
	w.lastCursor = [2]float64{x, y}
	return dx, dy
}

// ScrollDelta returns the accumulated vertical scroll and resets it.
func (w *Window) ScrollDelta() float64 {
	d := w.scrollY
	w.scrollY = 0
	return d
}

// Size is the framebuffer size in pixels.
func (w *Window) Size() (int, int) {
	return w.Width, w.Height
}

// WindowSize is the window size in screen coordinates, the space CursorPos
// reports in.
func (w *Window) WindowSize() (int, int) {
	return w.Handle.GetSize()
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
