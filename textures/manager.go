// Package textures owns every texture the editor loads: single textures,
// six-channel texture packs, HDR environments and skybox cubemaps. Callers
// hold integer handles; the GPU objects stay here.
package textures

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"scene-editor/internal/gpu"
)

var ErrNotFound = errors.New("textures: not found")

// Handles index the manager's arenas starting at 1. The zero value means
// "no texture".
type (
	TextureID int
	PackID    int
	EnvID     int
)

type Channel int

const (
	Albedo Channel = iota
	Normal
	Roughness
	Metallic
	Height
	AO
	NumChannels
)

// file suffixes, in Channel order
var channelSuffix = [NumChannels]string{
	"_BaseColor", "_Normal", "_Roughness", "_Metallic", "_Height", "_AO",
}

func (c Channel) String() string {
	return channelSuffix[c][1:]
}

// Pack is a bundle of up to six maps. A zero entry means the channel falls
// back to the material's scalar.
type Pack struct {
	Name string
	Maps [NumChannels]gpu.Texture
}

func (p Pack) Has(c Channel) bool { return p.Maps[c] != 0 }

// Uploader is the part of gpu.Device the manager needs.
type Uploader interface {
	UploadTexture(width, height int, rgba []byte) (gpu.Texture, error)
	UploadHDRTexture(width, height int, rgba []float32) (gpu.Texture, error)
	UploadCubemap(size int, faces [6][]byte) (gpu.Texture, error)
	DeleteTexture(t gpu.Texture)
}

type named struct {
	name string
	tex  gpu.Texture
}

// Manager caches loaded textures by name.
type Manager struct {
	mu  sync.RWMutex
	up  Uploader
	log *slog.Logger
	// PackDir holds one sub-directory per texture pack.
	PackDir string

	textures  []named
	texByName map[string]TextureID

	packs      []Pack
	packByName map[string]PackID

	envs      []named
	envByName map[string][]EnvID

	cubemaps map[string]gpu.Texture
}

func NewManager(up Uploader, packDir string, log *slog.Logger) *Manager {
	return &Manager{
		up:         up,
		log:        log.With("component", "textures"),
		PackDir:    packDir,
		texByName:  make(map[string]TextureID),
		packByName: make(map[string]PackID),
		envByName:  make(map[string][]EnvID),
		cubemaps:   make(map[string]gpu.Texture),
	}
}

// ── Single textures ──────────────────────────────────────────────────────────

// LoadTexture decodes path and registers it under name. Loading a name
// twice returns the existing handle.
func (m *Manager) LoadTexture(name, path string) (TextureID, error) {
	if id, ok := m.Texture(name); ok {
		return id, nil
	}
	tex, err := m.uploadFile(path)
	if err != nil {
		return 0, fmt.Errorf("texture %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.textures = append(m.textures, named{name: name, tex: tex})
	id := TextureID(len(m.textures))
	m.texByName[name] = id
	return id, nil
}

func (m *Manager) uploadFile(path string) (gpu.Texture, error) {
	img, err := decodeImage(path, true)
	if err != nil {
		return 0, err
	}
	b := img.Bounds()
	return m.up.UploadTexture(b.Dx(), b.Dy(), img.Pix)
}

// Texture looks a texture up by name.
func (m *Manager) Texture(name string) (TextureID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.texByName[name]
	return id, ok
}

// Resolve returns the GPU texture behind id, or zero.
func (m *Manager) Resolve(id TextureID) gpu.Texture {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id <= 0 || int(id) > len(m.textures) {
		return 0
	}
	return m.textures[id-1].tex
}

// TextureNames lists loaded textures alphabetically.
func (m *Manager) TextureNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.texByName)
}

// ── Texture packs ────────────────────────────────────────────────────────────

// LoadTexturePacks loads every pack named in the list file that is not
// loaded yet. Packs that fail are logged and skipped. It returns the number
// of newly loaded packs.
func (m *Manager) LoadTexturePacks(listPath string) (int, error) {
	names, err := ReadNameList(listPath)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, name := range names {
		if _, ok := m.TexturePack(name); ok {
			continue
		}
		if _, err := m.LoadTexturePack(name); err != nil {
			m.log.Warn("texture pack skipped", "pack", name, "err", err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// LoadTexturePack reads <PackDir>/<name>/<name>_<Channel>.jpg for each
// channel. Missing channels are left empty; a pack with no channels at all
// is an error.
func (m *Manager) LoadTexturePack(name string) (PackID, error) {
	if id, ok := m.TexturePack(name); ok {
		return id, nil
	}
	pack := Pack{Name: name}
	found := 0
	for c := Channel(0); c < NumChannels; c++ {
		path := filepath.Join(m.PackDir, name, name+channelSuffix[c]+".jpg")
		tex, err := m.uploadFile(path)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				m.log.Warn("texture pack channel failed", "pack", name, "channel", c.String(), "err", err)
			}
			continue
		}
		pack.Maps[c] = tex
		found++
	}
	if found == 0 {
		return 0, fmt.Errorf("texture pack %q: %w", name, ErrNotFound)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.packs = append(m.packs, pack)
	id := PackID(len(m.packs))
	m.packByName[name] = id
	m.log.Debug("texture pack loaded", "pack", name, "channels", found)
	return id, nil
}

func (m *Manager) TexturePack(name string) (PackID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.packByName[name]
	return id, ok
}

// Pack returns the pack behind id.
func (m *Manager) Pack(id PackID) (Pack, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id <= 0 || int(id) > len(m.packs) {
		return Pack{}, false
	}
	return m.packs[id-1], true
}

func (m *Manager) PackNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.packByName)
}

// ── HDR environments ─────────────────────────────────────────────────────────

// LoadHDREnvironment decodes an OpenEXR image. Several files may share a
// name; HDREnvironment picks among them by index.
func (m *Manager) LoadHDREnvironment(name, path string) (EnvID, error) {
	w, h, pix, err := decodeEXR(path)
	if err != nil {
		return 0, fmt.Errorf("environment %q: %w", name, err)
	}
	tex, err := m.up.UploadHDRTexture(w, h, pix)
	if err != nil {
		return 0, fmt.Errorf("environment %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.envs = append(m.envs, named{name: name, tex: tex})
	id := EnvID(len(m.envs))
	m.envByName[name] = append(m.envByName[name], id)
	return id, nil
}

func (m *Manager) HDREnvironment(name string, index int) (EnvID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.envByName[name]
	if index < 0 || index >= len(ids) {
		return 0, false
	}
	return ids[index], true
}

func (m *Manager) Environment(id EnvID) gpu.Texture {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id <= 0 || int(id) > len(m.envs) {
		return 0
	}
	return m.envs[id-1].tex
}

// ── Cubemaps ─────────────────────────────────────────────────────────────────

// SkyboxFaces is the conventional file order for a six-image skybox.
var SkyboxFaces = [6]string{"right", "left", "top", "bottom", "front", "back"}

// LoadCubemap builds a cubemap from six images in +X -X +Y -Y +Z -Z order.
// Faces are scaled to the size of the first one.
func (m *Manager) LoadCubemap(name string, paths [6]string) (gpu.Texture, error) {
	if tex, ok := m.Cubemap(name); ok {
		return tex, nil
	}
	var faces [6][]byte
	size := 0
	for i, p := range paths {
		img, err := decodeImage(p, false)
		if err != nil {
			return 0, fmt.Errorf("cubemap %q: %w", name, err)
		}
		if size == 0 {
			size = img.Bounds().Dx()
		}
		faces[i] = resizeSquare(img, size).Pix
	}
	tex, err := m.up.UploadCubemap(size, faces)
	if err != nil {
		return 0, fmt.Errorf("cubemap %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cubemaps[name] = tex
	return tex, nil
}

func (m *Manager) Cubemap(name string) (gpu.Texture, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tex, ok := m.cubemaps[name]
	return tex, ok
}

// Close deletes every GPU texture. Handles handed out earlier resolve to
// nothing afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.textures {
		m.up.DeleteTexture(t.tex)
	}
	for _, p := range m.packs {
		for _, tex := range p.Maps {
			if tex != 0 {
				m.up.DeleteTexture(tex)
			}
		}
	}
	for _, e := range m.envs {
		m.up.DeleteTexture(e.tex)
	}
	for _, c := range m.cubemaps {
		m.up.DeleteTexture(c)
	}
	m.textures, m.packs, m.envs = nil, nil, nil
	m.texByName = make(map[string]TextureID)
	m.packByName = make(map[string]PackID)
	m.envByName = make(map[string][]EnvID)
	m.cubemaps = make(map[string]gpu.Texture)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
