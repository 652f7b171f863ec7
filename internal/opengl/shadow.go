package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-editor/internal/gpu"
)

// allocDepthCube creates the six-face depth texture used for omnidirectional
// shadows. Fragments sampled outside any face read as fully lit.
func allocDepthCube(size int, f gpu.Format) uint32 {
	internal := int32(gl.DEPTH_COMPONENT32F)
	typ := uint32(gl.FLOAT)
	if f == gpu.Depth24Stencil8 {
		internal, typ = gl.DEPTH24_STENCIL8, gl.UNSIGNED_INT_24_8
	}
	format := uint32(gl.DEPTH_COMPONENT)
	if f == gpu.Depth24Stencil8 {
		format = gl.DEPTH_STENCIL
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
	for face := uint32(0); face < 6; face++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, 0, internal,
			int32(size), int32(size), 0, format, typ, nil)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return tex
}
