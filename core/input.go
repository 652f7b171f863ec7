package core

// Key and mouse button codes. The values are GLFW's, so a platform window
// can pass them straight through.
const (
	MouseLeft  = 0
	MouseRight = 1
)

const (
	KeySpace    = 32
	KeyMinus    = 45
	KeyEqual    = 61
	KeyA        = 65
	KeyD        = 68
	KeyG        = 71
	KeyI        = 73
	KeyK        = 75
	KeyN        = 78
	KeyO        = 79
	KeyP        = 80
	KeyS        = 83
	KeyT        = 84
	KeyW        = 87
	KeyY        = 89
	KeyZ        = 90
	KeyEscape   = 256
	KeyTab      = 258
	KeyInsert   = 260
	KeyDelete   = 261
	KeyF1       = 290
	KeyF2       = 291
	KeyF3       = 292
	KeyF4       = 293
	KeyF5       = 294
	KeyLeftCtrl = 341
)
