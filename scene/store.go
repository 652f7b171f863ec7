package scene

import (
	"errors"
	"fmt"
	"sort"

	"scene-editor/textures"
)

var ErrUnknownShape = errors.New("scene: unknown shape")

// Store maps user-visible names to shapes. It is owned by the render
// thread: the editor writes between frames and the renderer reads during
// a frame, so no locking is done here.
type Store struct {
	shapes map[string]*Shape
}

func NewStore() *Store {
	return &Store{shapes: make(map[string]*Shape)}
}

// AddShape inserts or replaces the shape stored under name.
func (s *Store) AddShape(name string, shape *Shape) {
	s.shapes[name] = shape
}

// RemoveShape deletes name and reports whether it existed.
func (s *Store) RemoveShape(name string) bool {
	if _, ok := s.shapes[name]; !ok {
		return false
	}
	delete(s.shapes, name)
	return true
}

// Shapes exposes the underlying map. Iteration order is unspecified; use
// Names for a stable order.
func (s *Store) Shapes() map[string]*Shape {
	return s.shapes
}

func (s *Store) Shape(name string) (*Shape, bool) {
	sh, ok := s.shapes[name]
	return sh, ok
}

func (s *Store) Len() int { return len(s.shapes) }

// Names returns every shape name in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.shapes))
	for n := range s.shapes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lights returns the names of Light-kind shapes in sorted order.
func (s *Store) Lights() []string {
	var out []string
	for _, n := range s.Names() {
		if s.shapes[n].Shading == Light {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) lookup(name string) (*Shape, error) {
	sh, ok := s.shapes[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownShape)
	}
	return sh, nil
}

// SetTexturePackForShape binds pack to the shape's PBR material and enables
// it. A zero pack disables texturing.
func (s *Store) SetTexturePackForShape(pack textures.PackID, name string) error {
	sh, err := s.lookup(name)
	if err != nil {
		return err
	}
	sh.PBR.Pack = pack
	sh.PBR.PackEnabled = pack != 0
	return nil
}

func (s *Store) SetGeometryKind(kind GeometryKind, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("set geometry of %q: invalid kind %d", name, int(kind))
	}
	sh, err := s.lookup(name)
	if err != nil {
		return err
	}
	sh.Geometry = kind
	return nil
}

func (s *Store) SetShadingKind(kind ShadingKind, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("set shading of %q: invalid kind %d", name, int(kind))
	}
	sh, err := s.lookup(name)
	if err != nil {
		return err
	}
	sh.Shading = kind
	return nil
}

func (s *Store) SetTextureForShape(tex textures.TextureID, name string) error {
	sh, err := s.lookup(name)
	if err != nil {
		return err
	}
	sh.Texture = tex
	return nil
}

// Select marks name as the only selected shape. An empty name clears the
// selection.
func (s *Store) Select(name string) error {
	if name != "" {
		if _, err := s.lookup(name); err != nil {
			return err
		}
	}
	for n, sh := range s.shapes {
		sh.Selected = n == name
	}
	return nil
}

// Selected returns the selected shape's name, or "".
func (s *Store) Selected() string {
	for _, n := range s.Names() {
		if s.shapes[n].Selected {
			return n
		}
	}
	return ""
}
