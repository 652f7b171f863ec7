// Package io saves and restores the editor's shape store as JSON.
package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"scene-editor/materials"
	"scene-editor/math"
	"scene-editor/scene"
	"scene-editor/textures"
)

const formatVersion = "1.0"

var (
	ErrVersion   = errors.New("scene file: unsupported version")
	ErrDuplicate = errors.New("scene file: duplicate shape name")
)

// Catalog maps texture handles to the names they were loaded under. Handles
// are only valid for one run, so files store names.
type Catalog interface {
	PackNames() []string
	TexturePack(name string) (textures.PackID, bool)
	TextureNames() []string
	Texture(name string) (textures.TextureID, bool)
}

// SceneFile is the top-level structure of a saved scene
type SceneFile struct {
	Version  string      `json:"version"`
	Name     string      `json:"name"`
	Camera   CameraData  `json:"camera"`
	Shapes   []ShapeData `json:"shapes"`
	Selected string      `json:"selected,omitempty"`
}

// CameraData stores camera state
type CameraData struct {
	Position [3]float32 `json:"position"`
	Yaw      float32    `json:"yaw"`
	Pitch    float32    `json:"pitch"`
	Zoom     float32    `json:"zoom"`
}

// ShapeData stores one named shape
type ShapeData struct {
	Name     string     `json:"name"`
	Geometry string     `json:"geometry"`
	Shading  string     `json:"shading"`
	Position [3]float32 `json:"position"`
	Rotation [3]float32 `json:"rotation"`
	Scale    [3]float32 `json:"scale"`
	Phong    PhongData  `json:"phong"`
	PBR      PBRData    `json:"pbr"`
	Texture  string     `json:"texture,omitempty"`
}

type PhongData struct {
	Ambient   [3]float32 `json:"ambient"`
	Diffuse   [3]float32 `json:"diffuse"`
	Specular  [3]float32 `json:"specular"`
	Shininess float32    `json:"shininess"`
}

type PBRData struct {
	Albedo      [3]float32 `json:"albedo"`
	Metalness   float32    `json:"metalness"`
	Roughness   float32    `json:"roughness"`
	AO          float32    `json:"ao"`
	Pack        string     `json:"pack,omitempty"`
	PackEnabled bool       `json:"pack_enabled,omitempty"`
}

// SaveScene serializes scene data to a JSON file
func SaveScene(path string, scene *SceneFile) error {
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScene deserializes a JSON scene file
func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	scene := &SceneFile{}
	if err := json.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	if scene.Version != formatVersion {
		return nil, fmt.Errorf("%w %q", ErrVersion, scene.Version)
	}
	return scene, nil
}

// Capture records the store and camera. Shapes are written in name order.
func Capture(name string, store *scene.Store, cam *scene.Camera, cat Catalog) *SceneFile {
	f := &SceneFile{
		Version:  formatVersion,
		Name:     name,
		Selected: store.Selected(),
		Camera: CameraData{
			Position: Vec3ToArray(cam.Position),
			Yaw:      cam.Yaw,
			Pitch:    cam.Pitch,
			Zoom:     cam.Zoom,
		},
	}
	packNames, texNames := reverseCatalog(cat)
	for _, n := range store.Names() {
		sh, _ := store.Shape(n)
		f.Shapes = append(f.Shapes, ShapeData{
			Name:     n,
			Geometry: sh.Geometry.String(),
			Shading:  sh.Shading.String(),
			Position: Vec3ToArray(sh.Transform.Position),
			Rotation: Vec3ToArray(sh.Transform.Rotation),
			Scale:    Vec3ToArray(sh.Transform.Scale),
			Phong: PhongData{
				Ambient:   Vec3ToArray(sh.Phong.Ambient),
				Diffuse:   Vec3ToArray(sh.Phong.Diffuse),
				Specular:  Vec3ToArray(sh.Phong.Specular),
				Shininess: sh.Phong.Shininess,
			},
			PBR: PBRData{
				Albedo:      Vec3ToArray(sh.PBR.Albedo),
				Metalness:   sh.PBR.Metalness,
				Roughness:   sh.PBR.Roughness,
				AO:          sh.PBR.AO,
				Pack:        packNames[sh.PBR.Pack],
				PackEnabled: sh.PBR.PackEnabled,
			},
			Texture: texNames[sh.Texture],
		})
	}
	return f
}

// Apply replaces the store's contents and the camera pose with the file's.
// Every shape is checked before the store is touched. Texture names the
// catalog does not know are dropped.
func (f *SceneFile) Apply(store *scene.Store, cam *scene.Camera, cat Catalog) error {
	shapes := make([]*scene.Shape, len(f.Shapes))
	seen := make(map[string]bool, len(f.Shapes))
	for i, sd := range f.Shapes {
		if seen[sd.Name] {
			return fmt.Errorf("%w %q", ErrDuplicate, sd.Name)
		}
		seen[sd.Name] = true
		sh, err := sd.shape(cat)
		if err != nil {
			return err
		}
		shapes[i] = sh
	}

	for _, n := range store.Names() {
		store.RemoveShape(n)
	}
	for i, sd := range f.Shapes {
		store.AddShape(sd.Name, shapes[i])
	}
	if err := store.Select(f.Selected); err != nil {
		_ = store.Select("")
	}

	cam.Position = ArrayToVec3(f.Camera.Position)
	cam.Yaw = f.Camera.Yaw
	cam.Pitch = math.Clamp(f.Camera.Pitch, -89, 89)
	if f.Camera.Zoom > 0 {
		cam.Zoom = f.Camera.Zoom
	}
	cam.Update()
	return nil
}

func (sd ShapeData) shape(cat Catalog) (*scene.Shape, error) {
	if sd.Name == "" {
		return nil, errors.New("scene file: shape without a name")
	}
	geom, err := scene.ParseGeometryKind(sd.Geometry)
	if err != nil {
		return nil, fmt.Errorf("shape %q: %w", sd.Name, err)
	}
	shading, err := scene.ParseShadingKind(sd.Shading)
	if err != nil {
		return nil, fmt.Errorf("shape %q: %w", sd.Name, err)
	}

	sh := scene.NewShape(shading, geom)
	sh.Transform.Position = ArrayToVec3(sd.Position)
	sh.Transform.Rotation = ArrayToVec3(sd.Rotation)
	sh.Transform.Scale = ArrayToVec3(sd.Scale)
	sh.Phong = materials.Phong{
		Ambient:   ArrayToVec3(sd.Phong.Ambient),
		Diffuse:   ArrayToVec3(sd.Phong.Diffuse),
		Specular:  ArrayToVec3(sd.Phong.Specular),
		Shininess: sd.Phong.Shininess,
	}.Clamp()
	sh.PBR = materials.PBR{
		Albedo:    ArrayToVec3(sd.PBR.Albedo),
		Metalness: sd.PBR.Metalness,
		Roughness: sd.PBR.Roughness,
		AO:        sd.PBR.AO,
	}.Clamp()
	if cat != nil {
		if id, ok := cat.TexturePack(sd.PBR.Pack); ok && sd.PBR.Pack != "" {
			sh.PBR.Pack, sh.PBR.PackEnabled = id, sd.PBR.PackEnabled
		}
		if id, ok := cat.Texture(sd.Texture); ok && sd.Texture != "" {
			sh.Texture = id
		}
	}
	return sh, nil
}

func reverseCatalog(cat Catalog) (map[textures.PackID]string, map[textures.TextureID]string) {
	packs := map[textures.PackID]string{}
	texs := map[textures.TextureID]string{}
	if cat == nil {
		return packs, texs
	}
	for _, n := range cat.PackNames() {
		if id, ok := cat.TexturePack(n); ok {
			packs[id] = n
		}
	}
	for _, n := range cat.TextureNames() {
		if id, ok := cat.Texture(n); ok {
			texs[id] = n
		}
	}
	return packs, texs
}

// --- Helper conversions ---

// Vec3ToArray converts a Vec3 to a [3]float32
func Vec3ToArray(v math.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// ArrayToVec3 converts a [3]float32 to Vec3
func ArrayToVec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}
