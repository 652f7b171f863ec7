package opengl

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-editor/core"
	"scene-editor/internal/gpu"
	"scene-editor/math"
)

// Device implements gpu.Device on an OpenGL 4.1 core context.
type Device struct {
	log *slog.Logger

	// uniform locations per program, filled on first use
	locations map[gpu.Program]map[string]int32
	meshes    map[gpu.Mesh]*glMesh
	nextMesh  gpu.Mesh
}

var _ gpu.Device = (*Device)(nil)

// NewDevice initialises OpenGL. The window's context must be current.
func NewDevice(log *slog.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log = log.With("component", "opengl")
	log.Info("context ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.STENCIL_TEST)
	gl.StencilOp(gl.KEEP, gl.KEEP, gl.REPLACE)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	return &Device{
		log:       log,
		locations: make(map[gpu.Program]map[string]int32),
		meshes:    make(map[gpu.Mesh]*glMesh),
	}, nil
}

// ── Programs ─────────────────────────────────────────────────────────────────

func (d *Device) CompileProgram(name, vertex, fragment string) (gpu.Program, error) {
	prog, err := newProgram(vertex, fragment)
	if err != nil {
		return 0, fmt.Errorf("%s shader: %w", name, err)
	}
	d.locations[gpu.Program(prog)] = make(map[string]int32)
	return gpu.Program(prog), nil
}

func (d *Device) DeleteProgram(p gpu.Program) {
	if p == 0 {
		return
	}
	gl.DeleteProgram(uint32(p))
	delete(d.locations, p)
}

func (d *Device) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

func (d *Device) location(p gpu.Program, name string) int32 {
	locs := d.locations[p]
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	if locs != nil {
		locs[name] = loc
	}
	return loc
}

// Uniform setters assume p is the current program.

func (d *Device) SetInt(p gpu.Program, name string, v int32) {
	gl.Uniform1i(d.location(p, name), v)
}

func (d *Device) SetFloat(p gpu.Program, name string, v float32) {
	gl.Uniform1f(d.location(p, name), v)
}

func (d *Device) SetVec3(p gpu.Program, name string, v math.Vec3) {
	gl.Uniform3f(d.location(p, name), v.X, v.Y, v.Z)
}

func (d *Device) SetMat4(p gpu.Program, name string, m math.Mat4) {
	gl.UniformMatrix4fv(d.location(p, name), 1, false, (*float32)(unsafe.Pointer(&m[0][0])))
}

// ── Fixed-function state ─────────────────────────────────────────────────────

func (d *Device) Clear(flags gpu.ClearFlags, c core.Color) {
	var mask uint32
	if flags&gpu.ClearColor != 0 {
		gl.ClearColor(c.R, c.G, c.B, c.A)
		mask |= gl.COLOR_BUFFER_BIT
	}
	if flags&gpu.ClearDepth != 0 {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if flags&gpu.ClearStencil != 0 {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(mask)
}

func (d *Device) SetDepthTest(on bool) {
	if on {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (d *Device) SetDepthFunc(f gpu.CompareFunc) {
	gl.DepthFunc(compareFunc(f))
}

func (d *Device) SetDepthMask(on bool) {
	gl.DepthMask(on)
}

func (d *Device) SetStencilFunc(f gpu.CompareFunc, ref int32, mask uint32) {
	gl.StencilFunc(compareFunc(f), ref, mask)
}

func (d *Device) SetStencilMask(mask uint32) {
	gl.StencilMask(mask)
}

func compareFunc(f gpu.CompareFunc) uint32 {
	switch f {
	case gpu.LessEqual:
		return gl.LEQUAL
	case gpu.Always:
		return gl.ALWAYS
	case gpu.NotEqual:
		return gl.NOTEQUAL
	}
	return gl.LESS
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("%w: %v", gpu.ErrShaderLink, strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %v", gpu.ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
