package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-editor/internal/gpu"
)

// UploadCubemap builds a static RGBA8 cubemap, faces in +X -X +Y -Y +Z -Z
// order.
func (d *Device) UploadCubemap(size int, faces [6][]byte) (gpu.Texture, error) {
	for i, f := range faces {
		if size <= 0 || len(f) != size*size*4 {
			return 0, fmt.Errorf("cubemap face %d: %w", i, gpu.ErrEmptyPixels)
		}
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i, f := range faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8,
			int32(size), int32(size), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&f[0]))
	}
	setCubeParams(gl.LINEAR, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return gpu.Texture(id), nil
}

// NewCubemap allocates an empty float cubemap to render an environment into.
func (d *Device) NewCubemap(size int) (gpu.Texture, error) {
	if size <= 0 {
		return 0, fmt.Errorf("cubemap size %d", size)
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i := uint32(0); i < 6; i++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i, 0, gl.RGBA16F,
			int32(size), int32(size), 0, gl.RGBA, gl.FLOAT, nil)
	}
	// Rough reflections and irradiance read the lower mips.
	setCubeParams(gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR)
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return gpu.Texture(id), nil
}

func (d *Device) GenerateCubemapMips(t gpu.Texture) {
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(t))
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
}

func setCubeParams(minFilter, magFilter int32) {
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
}
