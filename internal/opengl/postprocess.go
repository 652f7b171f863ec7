package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-editor/internal/gpu"
)

// ── Render targets ───────────────────────────────────────────────────────────

// CreateTarget allocates a framebuffer with the attachments in spec. On an
// incomplete framebuffer every partial object is freed before returning.
func (d *Device) CreateTarget(spec gpu.TargetSpec) (*gpu.Target, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("%s: invalid size %dx%d", spec.Name, spec.Width, spec.Height)
	}
	t := &gpu.Target{Spec: spec}
	w, h := int32(spec.Width), int32(spec.Height)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)

	filter := int32(gl.NEAREST)
	if spec.Filter == gpu.Linear {
		filter = gl.LINEAR
	}

	attachments := make([]uint32, 0, len(spec.Color))
	for i, f := range spec.Color {
		internal, format, typ := textureFormat(f)
		var tex uint32
		gl.GenTextures(1, &tex)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, internal, w, h, 0, format, typ, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		att := uint32(gl.COLOR_ATTACHMENT0 + i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, att, gl.TEXTURE_2D, tex, 0)
		t.Color = append(t.Color, gpu.Texture(tex))
		attachments = append(attachments, att)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	switch {
	case spec.Depth == gpu.FormatNone:
	case spec.DepthCube:
		t.Depth = allocDepthCube(spec.Width, spec.Depth)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, depthAttachment(spec.Depth),
			gl.TEXTURE_CUBE_MAP_POSITIVE_X, t.Depth, 0)
	default:
		gl.GenRenderbuffers(1, &t.Depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.Depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, renderbufferFormat(spec.Depth), w, h)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, depthAttachment(spec.Depth), gl.RENDERBUFFER, t.Depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	if len(attachments) == 0 {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	} else {
		gl.DrawBuffers(int32(len(attachments)), &attachments[0])
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.freeTarget(t)
		return nil, fmt.Errorf("%s: %w: status=0x%X", spec.Name, gpu.ErrIncompleteTarget, status)
	}
	d.log.Debug("target created", "name", spec.Name, "width", spec.Width, "height", spec.Height,
		"colors", len(spec.Color), "depth", spec.Depth.String())
	return t, nil
}

func (d *Device) DestroyTarget(t *gpu.Target) {
	if t == nil {
		return
	}
	d.freeTarget(t)
}

func (d *Device) freeTarget(t *gpu.Target) {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
		t.FBO = 0
	}
	for i := range t.Color {
		tex := uint32(t.Color[i])
		gl.DeleteTextures(1, &tex)
	}
	t.Color = nil
	if t.Depth != 0 {
		if t.Spec.DepthCube {
			gl.DeleteTextures(1, &t.Depth)
		} else {
			gl.DeleteRenderbuffers(1, &t.Depth)
		}
		t.Depth = 0
	}
}

func (d *Device) BindTarget(t *gpu.Target, width, height int) {
	if t == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(width), int32(height))
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.Viewport(0, 0, int32(t.Spec.Width), int32(t.Spec.Height))
}

func (d *Device) BindCubeFace(t *gpu.Target, color gpu.Texture, face int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	side := uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X + face)
	if color != 0 {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, side, uint32(color), 0)
		att := uint32(gl.COLOR_ATTACHMENT0)
		gl.DrawBuffers(1, &att)
	}
	if t.Spec.DepthCube {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, depthAttachment(t.Spec.Depth), side, t.Depth, 0)
	}
	gl.Viewport(0, 0, int32(t.Spec.Width), int32(t.Spec.Height))
}

// BlitDepth copies depth (and stencil) from src into dst. Both must have
// been created with matching depth formats and sizes.
func (d *Device) BlitDepth(src, dst *gpu.Target) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src.FBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst.FBO)
	w, h := int32(src.Spec.Width), int32(src.Spec.Height)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.DEPTH_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, dst.FBO)
}

func textureFormat(f gpu.Format) (internal int32, format, typ uint32) {
	switch f {
	case gpu.RGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case gpu.RGB8:
		return gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE
	}
	return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
}

func renderbufferFormat(f gpu.Format) uint32 {
	if f == gpu.Depth32F {
		return gl.DEPTH_COMPONENT32F
	}
	return gl.DEPTH24_STENCIL8
}

func depthAttachment(f gpu.Format) uint32 {
	if f == gpu.Depth24Stencil8 {
		return gl.DEPTH_STENCIL_ATTACHMENT
	}
	return gl.DEPTH_ATTACHMENT
}
