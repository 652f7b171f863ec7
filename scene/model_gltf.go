package scene

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"scene-editor/core"
	"scene-editor/math"
)

// loadGLTF reads a .gltf or .glb file into one mesh per primitive. The base
// color texture of each primitive's material becomes its diffuse image.
func loadGLTF(path string, log *slog.Logger) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	images := make([]*Image, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		src := doc.Images[*gt.Source]
		switch {
		case src.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*src.BufferView])
			if err != nil {
				log.Warn("gltf image skipped", "image", *gt.Source, "err", err)
				continue
			}
			name := src.Name
			if name == "" {
				name = fmt.Sprintf("%s#%d", filepath.Base(path), *gt.Source)
			}
			images[i], err = decodeImageBytes(name, raw)
			if err != nil {
				log.Warn("gltf image skipped", "image", *gt.Source, "err", err)
			}
		case src.URI != "" && !src.IsEmbeddedResource():
			images[i], err = LoadImage(filepath.Join(dir, src.URI))
			if err != nil {
				log.Warn("gltf image skipped", "uri", src.URI, "err", err)
			}
		}
	}

	var meshes []*Mesh
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := gltfPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				log.Warn("gltf primitive skipped", "mesh", mi, "primitive", pi, "err", err)
				continue
			}
			if prim.Material != nil && *prim.Material < len(doc.Materials) {
				if pbr := doc.Materials[*prim.Material].PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
					if idx := pbr.BaseColorTexture.Index; idx < len(images) {
						m.Diffuse = images[idx]
					}
				}
			}
			meshes = append(meshes, m)
		}
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}
	return meshes, nil
}

func gltfPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			v.Normal = math.Vec3{X: normals[i][0], Y: normals[i][1], Z: normals[i][2]}
		}
		if i < len(uvs) {
			// glTF puts v=0 at the top of the image; images here are stored
			// bottom row first.
			v.UV = math.Vec2{X: uvs[i][0], Y: 1 - uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}
	return &Mesh{Name: name, Data: core.MeshData{Vertices: verts, Indices: indices}}, nil
}
