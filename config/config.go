// Package config loads the editor's TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Window    Window    `toml:"window"`
	Resources Resources `toml:"resources"`
	Render    Render    `toml:"render"`
	Log       Log       `toml:"log"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// Resources locates everything loaded from disk. Relative paths are
// resolved against Dir.
type Resources struct {
	Dir string `toml:"dir"`

	// TexturePacks holds one directory per pack plus the pack list file.
	TexturePacks    string `toml:"texture_packs"`
	TexturePackList string `toml:"texture_pack_list"`
	WatchPacks      bool   `toml:"watch_packs"`

	// Textures are single textures selectable for Phong shapes, by name.
	Textures map[string]string `toml:"textures,omitempty"`

	Music string `toml:"music"`

	// Skybox lists the six cubemap faces: right, left, top, bottom, front,
	// back. Empty disables the static skybox.
	Skybox []string `toml:"skybox"`

	// HDR lists OpenEXR environments, registered in order.
	HDR []Environment `toml:"hdr,omitempty"`

	Models []Model `toml:"models"`
}

type Environment struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type Model struct {
	Name     string     `toml:"name"`
	Path     string     `toml:"path"`
	Position [3]float32 `toml:"position"`
	Scale    float32    `toml:"scale"`
}

type Render struct {
	ShadowSize  int     `toml:"shadow_size"`
	CaptureSize int     `toml:"capture_size"`
	Deferred    bool    `toml:"deferred"`
	Skybox      bool    `toml:"skybox"`
	HDR         bool    `toml:"hdr"`
	IBL         bool    `toml:"ibl"`
	Shadows     bool    `toml:"shadows"`
	Exposure    float32 `toml:"exposure"`
	ShadowFar   float32 `toml:"shadow_far"`
}

type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Window: Window{Width: 1920, Height: 1080, Title: "Cubes", VSync: true},
		Resources: Resources{
			Dir:             "resources",
			TexturePacks:    "texture_packs",
			TexturePackList: "texture_packs/Texture_Pack_List.txt",
			Music:           "music",
			Skybox: []string{
				"skybox/right.jpg", "skybox/left.jpg", "skybox/top.jpg",
				"skybox/bottom.jpg", "skybox/front.jpg", "skybox/back.jpg",
			},
			Models: []Model{{Name: "Backpack", Path: "objects/backpack/backpack.obj", Scale: 1}},
		},
		Render: Render{
			ShadowSize:  1024,
			CaptureSize: 512,
			Deferred:    true,
			Skybox:      true,
			Shadows:     true,
			Exposure:    1,
			ShadowFar:   25,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error; the
// defaults are returned. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := decode(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return err
	}
	return nil
}

// Validate checks the values a TOML schema cannot express.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if n := len(c.Resources.Skybox); n != 0 && n != 6 {
		return fmt.Errorf("%w: skybox needs 6 faces, got %d", ErrInvalid, n)
	}
	if c.Render.ShadowSize < 0 || c.Render.CaptureSize < 0 {
		return fmt.Errorf("%w: negative target size", ErrInvalid)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Path resolves rel against the resource directory. Absolute paths are
// returned unchanged.
func (r Resources) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(r.Dir, rel)
}

// SkyboxFaces returns the resolved face paths, or false when the skybox is
// not configured.
func (r Resources) SkyboxFaces() ([6]string, bool) {
	var faces [6]string
	if len(r.Skybox) != 6 {
		return faces, false
	}
	for i, f := range r.Skybox {
		faces[i] = r.Path(f)
	}
	return faces, true
}

func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}

// Marshal renders c as TOML, e.g. to write a starting config file.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
