// Package gputest provides an in-memory gpu.Device that records every call.
package gputest

import (
	"fmt"

	"scene-editor/core"
	"scene-editor/internal/gpu"
	"scene-editor/math"
)

// Call is one recorded device operation. Only the fields relevant to Op are
// set.
type Call struct {
	Op      string
	Program string // program name, for uniform and draw calls
	Target  string // bound target name, "" for the default framebuffer
	Name    string // uniform name, or target/program name for create calls

	Int     int32
	Float   float32
	Vec     math.Vec3
	Mat     math.Mat4
	Unit    int
	Texture gpu.Texture
	Mesh    gpu.Mesh
	Face    int
	Func    gpu.CompareFunc
	Ref     int32
	Mask    uint32
	Flag    bool
	Clear   gpu.ClearFlags
}

// Recorder implements gpu.Device without a GPU.
type Recorder struct {
	Calls []Call

	// FailTarget makes CreateTarget fail for the named target.
	FailTarget string
	// FailProgram makes CompileProgram fail for the named program.
	FailProgram string

	next     uint32
	programs map[gpu.Program]string
	targets  map[uint32]*gpu.Target
	textures map[gpu.Texture]bool
	meshes   map[gpu.Mesh]bool

	current gpu.Program
	bound   string
}

var _ gpu.Device = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		programs: make(map[gpu.Program]string),
		targets:  make(map[uint32]*gpu.Target),
		textures: make(map[gpu.Texture]bool),
		meshes:   make(map[gpu.Mesh]bool),
	}
}

func (r *Recorder) id() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) record(c Call) {
	if c.Program == "" {
		c.Program = r.programs[r.current]
	}
	c.Target = r.bound
	r.Calls = append(r.Calls, c)
}

// Reset forgets recorded calls but keeps live objects.
func (r *Recorder) Reset() {
	r.Calls = nil
}

func (r *Recorder) CreateTarget(spec gpu.TargetSpec) (*gpu.Target, error) {
	if spec.Name == r.FailTarget {
		return nil, fmt.Errorf("%s: %w", spec.Name, gpu.ErrIncompleteTarget)
	}
	t := &gpu.Target{Spec: spec, FBO: r.id()}
	for range spec.Color {
		tex := gpu.Texture(r.id())
		r.textures[tex] = true
		t.Color = append(t.Color, tex)
	}
	if spec.Depth != gpu.FormatNone {
		t.Depth = r.id()
		if spec.DepthCube {
			r.textures[gpu.Texture(t.Depth)] = true
		}
	}
	r.targets[t.FBO] = t
	r.record(Call{Op: "CreateTarget", Name: spec.Name})
	return t, nil
}

func (r *Recorder) DestroyTarget(t *gpu.Target) {
	if t == nil {
		return
	}
	for _, tex := range t.Color {
		delete(r.textures, tex)
	}
	if t.Spec.DepthCube {
		delete(r.textures, gpu.Texture(t.Depth))
	}
	delete(r.targets, t.FBO)
	r.record(Call{Op: "DestroyTarget", Name: t.Spec.Name})
}

func (r *Recorder) BindTarget(t *gpu.Target, width, height int) {
	r.bound = ""
	if t != nil {
		r.bound = t.Spec.Name
	}
	r.record(Call{Op: "BindTarget", Name: r.bound})
}

func (r *Recorder) BindCubeFace(t *gpu.Target, color gpu.Texture, face int) {
	r.bound = t.Spec.Name
	r.record(Call{Op: "BindCubeFace", Name: r.bound, Texture: color, Face: face})
}

func (r *Recorder) Clear(flags gpu.ClearFlags, c core.Color) {
	r.record(Call{Op: "Clear", Clear: flags, Vec: c.RGB()})
}

func (r *Recorder) BlitDepth(src, dst *gpu.Target) {
	r.record(Call{Op: "BlitDepth", Name: src.Spec.Name + "->" + dst.Spec.Name})
}

func (r *Recorder) CompileProgram(name, vertex, fragment string) (gpu.Program, error) {
	if name == r.FailProgram {
		return 0, fmt.Errorf("%s: %w", name, gpu.ErrShaderCompile)
	}
	p := gpu.Program(r.id())
	r.programs[p] = name
	r.record(Call{Op: "CompileProgram", Name: name})
	return p, nil
}

func (r *Recorder) DeleteProgram(p gpu.Program) {
	r.record(Call{Op: "DeleteProgram", Name: r.programs[p]})
	delete(r.programs, p)
}

func (r *Recorder) UseProgram(p gpu.Program) {
	r.current = p
	r.record(Call{Op: "UseProgram", Name: r.programs[p]})
}

func (r *Recorder) SetInt(p gpu.Program, name string, v int32) {
	r.record(Call{Op: "SetInt", Program: r.programs[p], Name: name, Int: v})
}

func (r *Recorder) SetFloat(p gpu.Program, name string, v float32) {
	r.record(Call{Op: "SetFloat", Program: r.programs[p], Name: name, Float: v})
}

func (r *Recorder) SetVec3(p gpu.Program, name string, v math.Vec3) {
	r.record(Call{Op: "SetVec3", Program: r.programs[p], Name: name, Vec: v})
}

func (r *Recorder) SetMat4(p gpu.Program, name string, m math.Mat4) {
	r.record(Call{Op: "SetMat4", Program: r.programs[p], Name: name, Mat: m})
}

func (r *Recorder) BindTexture(unit int, t gpu.Texture) {
	r.record(Call{Op: "BindTexture", Unit: unit, Texture: t})
}

func (r *Recorder) BindCubemap(unit int, t gpu.Texture) {
	r.record(Call{Op: "BindCubemap", Unit: unit, Texture: t})
}

func (r *Recorder) UploadMesh(data core.MeshData) (gpu.Mesh, error) {
	if len(data.Vertices) == 0 {
		return 0, fmt.Errorf("upload mesh: no vertices")
	}
	m := gpu.Mesh(r.id())
	r.meshes[m] = true
	return m, nil
}

func (r *Recorder) DeleteMesh(m gpu.Mesh) {
	delete(r.meshes, m)
}

func (r *Recorder) Draw(m gpu.Mesh) {
	r.record(Call{Op: "Draw", Mesh: m})
}

func (r *Recorder) UploadTexture(width, height int, rgba []byte) (gpu.Texture, error) {
	if len(rgba) != width*height*4 {
		return 0, gpu.ErrEmptyPixels
	}
	return r.newTexture(), nil
}

func (r *Recorder) UploadHDRTexture(width, height int, rgba []float32) (gpu.Texture, error) {
	if len(rgba) != width*height*4 {
		return 0, gpu.ErrEmptyPixels
	}
	return r.newTexture(), nil
}

func (r *Recorder) UploadCubemap(size int, faces [6][]byte) (gpu.Texture, error) {
	for _, f := range faces {
		if len(f) != size*size*4 {
			return 0, gpu.ErrEmptyPixels
		}
	}
	return r.newTexture(), nil
}

func (r *Recorder) NewCubemap(size int) (gpu.Texture, error) {
	return r.newTexture(), nil
}

func (r *Recorder) GenerateCubemapMips(t gpu.Texture) {
	r.record(Call{Op: "GenerateCubemapMips", Texture: t})
}

func (r *Recorder) newTexture() gpu.Texture {
	t := gpu.Texture(r.id())
	r.textures[t] = true
	return t
}

func (r *Recorder) DeleteTexture(t gpu.Texture) {
	delete(r.textures, t)
}

func (r *Recorder) SetDepthTest(on bool) {
	r.record(Call{Op: "SetDepthTest", Flag: on})
}

func (r *Recorder) SetDepthFunc(f gpu.CompareFunc) {
	r.record(Call{Op: "SetDepthFunc", Func: f})
}

func (r *Recorder) SetDepthMask(on bool) {
	r.record(Call{Op: "SetDepthMask", Flag: on})
}

func (r *Recorder) SetStencilFunc(f gpu.CompareFunc, ref int32, mask uint32) {
	r.record(Call{Op: "SetStencilFunc", Func: f, Ref: ref, Mask: mask})
}

func (r *Recorder) SetStencilMask(mask uint32) {
	r.record(Call{Op: "SetStencilMask", Mask: mask})
}

// LiveTargets counts created targets by name.
func (r *Recorder) LiveTargets() map[string]int {
	out := make(map[string]int)
	for _, t := range r.targets {
		out[t.Spec.Name]++
	}
	return out
}

func (r *Recorder) LiveTextures() int { return len(r.textures) }
func (r *Recorder) LiveMeshes() int   { return len(r.meshes) }
func (r *Recorder) LivePrograms() int { return len(r.programs) }

// Ops returns the calls whose Op matches.
func (r *Recorder) Ops(op string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Draws returns the draw calls issued with the named program bound.
func (r *Recorder) Draws(program string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == "Draw" && c.Program == program {
			out = append(out, c)
		}
	}
	return out
}

// Uniforms returns every uniform upload named name on the named program.
func (r *Recorder) Uniforms(program, name string) []Call {
	var out []Call
	for _, c := range r.Calls {
		switch c.Op {
		case "SetInt", "SetFloat", "SetVec3", "SetMat4":
			if c.Program == program && c.Name == name {
				out = append(out, c)
			}
		}
	}
	return out
}

// Sequence returns a compact "Op:Name" trace, useful for order assertions.
func (r *Recorder) Sequence(ops ...string) []string {
	keep := make(map[string]bool, len(ops))
	for _, op := range ops {
		keep[op] = true
	}
	var out []string
	for _, c := range r.Calls {
		if len(ops) > 0 && !keep[c.Op] {
			continue
		}
		switch c.Op {
		case "Draw":
			out = append(out, c.Op+":"+c.Program)
		default:
			out = append(out, c.Op+":"+c.Name)
		}
	}
	return out
}
