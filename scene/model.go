package scene

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"scene-editor/core"
)

// LoadModel reads a .obj, .gltf or .glb file.
func LoadModel(name, path string, log *slog.Logger) (*Model, error) {
	log = log.With("component", "scene", "model", name)

	var meshes []*Mesh
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		meshes, err = loadOBJ(path, log)
	case ".gltf", ".glb":
		meshes, err = loadGLTF(path, log)
	default:
		return nil, fmt.Errorf("model %q: unsupported format %q", name, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", name, err)
	}
	log.Info("model loaded", "path", path, "meshes", len(meshes))
	return &Model{Name: name, Meshes: meshes, Transform: core.NewTransform()}, nil
}
