package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-editor/core"
	"scene-editor/internal/gpu"
)

type glMesh struct {
	VAO, VBO, EBO uint32
	Count         int32
	Indexed       bool
}

// UploadMesh copies interleaved vertices (and indices, if any) to the GPU.
func (d *Device) UploadMesh(data core.MeshData) (gpu.Mesh, error) {
	if len(data.Vertices) == 0 {
		return 0, fmt.Errorf("upload mesh: no vertices")
	}
	stride := int32(unsafe.Sizeof(core.Vertex{}))

	m := &glMesh{Indexed: len(data.Indices) > 0}
	if m.Indexed {
		m.Count = int32(len(data.Indices))
	} else {
		m.Count = int32(len(data.Vertices))
	}

	gl.GenVertexArrays(1, &m.VAO)
	gl.GenBuffers(1, &m.VBO)
	gl.BindVertexArray(m.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*int(stride), gl.Ptr(data.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Normal))))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.UV))))

	if m.Indexed {
		gl.GenBuffers(1, &m.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	d.nextMesh++
	d.meshes[d.nextMesh] = m
	return d.nextMesh, nil
}

func (d *Device) DeleteMesh(h gpu.Mesh) {
	m, ok := d.meshes[h]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &m.VAO)
	gl.DeleteBuffers(1, &m.VBO)
	if m.EBO != 0 {
		gl.DeleteBuffers(1, &m.EBO)
	}
	delete(d.meshes, h)
}

func (d *Device) Draw(h gpu.Mesh) {
	m, ok := d.meshes[h]
	if !ok {
		return
	}
	gl.BindVertexArray(m.VAO)
	if m.Indexed {
		gl.DrawElements(gl.TRIANGLES, m.Count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.Count)
	}
	gl.BindVertexArray(0)
}
