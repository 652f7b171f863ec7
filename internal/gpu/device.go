// Package gpu defines the narrow graphics surface the renderer draws
// through. The OpenGL backend lives in internal/opengl; gputest provides a
// recording fake.
package gpu

import (
	"errors"

	"scene-editor/core"
	"scene-editor/math"
)

var (
	ErrIncompleteTarget = errors.New("gpu: framebuffer incomplete")
	ErrDepthMismatch    = errors.New("gpu: depth attachments differ")
	ErrShaderCompile    = errors.New("gpu: shader compile failed")
	ErrShaderLink       = errors.New("gpu: program link failed")
	ErrEmptyPixels      = errors.New("gpu: pixel data does not match size")
)

// Handles are backend object names. Zero means "none".
type (
	Program uint32
	Texture uint32
	Mesh    uint32
)

type Format int

const (
	FormatNone Format = iota
	RGBA16F
	RGBA8
	RGB8
	Depth24Stencil8
	Depth32F
)

func (f Format) String() string {
	switch f {
	case RGBA16F:
		return "RGBA16F"
	case RGBA8:
		return "RGBA8"
	case RGB8:
		return "RGB8"
	case Depth24Stencil8:
		return "D24S8"
	case Depth32F:
		return "D32F"
	}
	return "none"
}

type Filter int

const (
	Nearest Filter = iota
	Linear
)

// TargetSpec describes one framebuffer and its attachments. All attachments
// share Width and Height.
type TargetSpec struct {
	Name   string
	Width  int
	Height int
	Color  []Format
	Filter Filter
	Depth  Format
	// DepthCube stores depth in a sampleable cubemap instead of a
	// renderbuffer. Faces are selected with BindCubeFace.
	DepthCube bool
}

// Target is a created framebuffer.
type Target struct {
	Spec  TargetSpec
	FBO   uint32
	Color []Texture
	// Depth is a renderbuffer name, or a cubemap texture when Spec.DepthCube.
	Depth uint32
}

func (t *Target) Width() int  { return t.Spec.Width }
func (t *Target) Height() int { return t.Spec.Height }

// DepthTexture returns the depth cubemap, or zero for renderbuffer depth.
func (t *Target) DepthTexture() Texture {
	if t == nil || !t.Spec.DepthCube {
		return 0
	}
	return Texture(t.Depth)
}

type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

type CompareFunc int

const (
	Less CompareFunc = iota
	LessEqual
	Always
	NotEqual
)

func (c CompareFunc) String() string {
	switch c {
	case Less:
		return "LESS"
	case LessEqual:
		return "LEQUAL"
	case Always:
		return "ALWAYS"
	case NotEqual:
		return "NOTEQUAL"
	}
	return "?"
}

// Device is every GPU operation the renderer issues. Calls are made from
// the thread that owns the context, in program order.
type Device interface {
	CreateTarget(spec TargetSpec) (*Target, error)
	DestroyTarget(t *Target)
	// BindTarget makes t current and sets the viewport to its size. A nil
	// target selects the default framebuffer at the given size.
	BindTarget(t *Target, width, height int)
	// BindCubeFace attaches face i of color (if non-zero) and of the target's
	// depth cubemap (if any), then binds the target.
	BindCubeFace(t *Target, color Texture, face int)
	Clear(flags ClearFlags, c core.Color)
	BlitDepth(src, dst *Target)

	CompileProgram(name, vertex, fragment string) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	SetInt(p Program, name string, v int32)
	SetFloat(p Program, name string, v float32)
	SetVec3(p Program, name string, v math.Vec3)
	SetMat4(p Program, name string, m math.Mat4)

	BindTexture(unit int, t Texture)
	BindCubemap(unit int, t Texture)

	UploadMesh(data core.MeshData) (Mesh, error)
	DeleteMesh(m Mesh)
	Draw(m Mesh)

	UploadTexture(width, height int, rgba []byte) (Texture, error)
	UploadHDRTexture(width, height int, rgba []float32) (Texture, error)
	// UploadCubemap takes faces in +X, -X, +Y, -Y, +Z, -Z order.
	UploadCubemap(size int, faces [6][]byte) (Texture, error)
	// NewCubemap allocates an empty RGBA16F cubemap for render-to-texture.
	// It samples with trilinear filtering once GenerateCubemapMips has run.
	NewCubemap(size int) (Texture, error)
	// GenerateCubemapMips rebuilds the mip chain of t from its base level.
	GenerateCubemapMips(t Texture)
	DeleteTexture(t Texture)

	SetDepthTest(on bool)
	SetDepthFunc(f CompareFunc)
	SetDepthMask(on bool)
	SetStencilFunc(f CompareFunc, ref int32, mask uint32)
	SetStencilMask(mask uint32)
}

// SameDepth reports whether depth can be blitted from a to b.
func SameDepth(a, b *Target) bool {
	return a.Spec.Depth == b.Spec.Depth && !a.Spec.DepthCube && !b.Spec.DepthCube &&
		a.Spec.Width == b.Spec.Width && a.Spec.Height == b.Spec.Height
}
