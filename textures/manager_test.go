package textures

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/internal/gpu/gputest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeJPEG(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	rec := gputest.NewRecorder()
	m := NewManager(rec, dir, quietLogger())

	path := filepath.Join(dir, "gravel.png")
	writePNG(t, path, 4, 2, color.RGBA{R: 255, A: 255})

	id, err := m.LoadTexture("Gravel", path)
	require.NoError(t, err)
	assert.Equal(t, TextureID(1), id)
	assert.NotZero(t, m.Resolve(id))

	again, err := m.LoadTexture("Gravel", path)
	require.NoError(t, err)
	assert.Equal(t, id, again, "second load must reuse the cached handle")
	assert.Equal(t, 1, rec.LiveTextures())

	got, ok := m.Texture("Gravel")
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, []string{"Gravel"}, m.TextureNames())
}

func TestMissingTexture(t *testing.T) {
	m := NewManager(gputest.NewRecorder(), t.TempDir(), quietLogger())

	id, err := m.LoadTexture("Nope", filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, id)

	_, ok := m.Texture("Nope")
	assert.False(t, ok)
	assert.Zero(t, m.Resolve(0))
	assert.Zero(t, m.Resolve(42))
}

func TestLoadTexturePackPartialChannels(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "Fur", "Fur_BaseColor.jpg"), 4)
	writeJPEG(t, filepath.Join(dir, "Fur", "Fur_Normal.jpg"), 4)
	writeJPEG(t, filepath.Join(dir, "Fur", "Fur_AO.jpg"), 4)

	m := NewManager(gputest.NewRecorder(), dir, quietLogger())
	id, err := m.LoadTexturePack("Fur")
	require.NoError(t, err)

	pack, ok := m.Pack(id)
	require.True(t, ok)
	assert.True(t, pack.Has(Albedo))
	assert.True(t, pack.Has(Normal))
	assert.True(t, pack.Has(AO))
	assert.False(t, pack.Has(Roughness))
	assert.False(t, pack.Has(Metallic))
	assert.False(t, pack.Has(Height))

	_, ok = m.Pack(0)
	assert.False(t, ok)
}

func TestLoadTexturePacksFromList(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "Stylized_Fur", "Stylized_Fur_BaseColor.jpg"), 2)
	writeJPEG(t, filepath.Join(dir, "Bricks", "Bricks_Height.jpg"), 2)
	list := filepath.Join(dir, "Texture_Pack_List.txt")
	require.NoError(t, os.WriteFile(list, []byte("Stylized_Fur\n\nBricks\nMissing\n"), 0o644))

	m := NewManager(gputest.NewRecorder(), dir, quietLogger())
	n, err := m.LoadTexturePacks(list)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Bricks", "Stylized_Fur"}, m.PackNames())

	n, err = m.LoadTexturePacks(list)
	require.NoError(t, err)
	assert.Zero(t, n, "already loaded packs are not reloaded")

	_, err = m.LoadTexturePacks(filepath.Join(dir, "absent.txt"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHDREnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sky.exr")
	img := exr.NewRGBAImage(image.Rect(0, 0, 4, 2))
	img.SetRGBA(0, 0, 4, 2, 1, 1)
	require.NoError(t, exr.EncodeFile(path, img))

	m := NewManager(gputest.NewRecorder(), dir, quietLogger())
	first, err := m.LoadHDREnvironment("Sky", path)
	require.NoError(t, err)
	second, err := m.LoadHDREnvironment("Sky", path)
	require.NoError(t, err)

	got, ok := m.HDREnvironment("Sky", 1)
	assert.True(t, ok)
	assert.Equal(t, second, got)
	got, ok = m.HDREnvironment("Sky", 0)
	assert.True(t, ok)
	assert.Equal(t, first, got)
	assert.NotZero(t, m.Environment(first))

	_, ok = m.HDREnvironment("Sky", 2)
	assert.False(t, ok)
	_, ok = m.HDREnvironment("Other", 0)
	assert.False(t, ok)

	_, err = m.LoadHDREnvironment("Gone", filepath.Join(dir, "gone.exr"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCubemapScalesFaces(t *testing.T) {
	dir := t.TempDir()
	var paths [6]string
	for i, face := range SkyboxFaces {
		paths[i] = filepath.Join(dir, face+".png")
		size := 8
		if i == 3 {
			size = 4
		}
		writePNG(t, paths[i], size, size, color.RGBA{B: 255, A: 255})
	}

	m := NewManager(gputest.NewRecorder(), dir, quietLogger())
	tex, err := m.LoadCubemap("sky", paths)
	require.NoError(t, err)
	assert.NotZero(t, tex)

	cached, ok := m.Cubemap("sky")
	assert.True(t, ok)
	assert.Equal(t, tex, cached)
}

func TestCloseReleasesEverything(t *testing.T) {
	dir := t.TempDir()
	rec := gputest.NewRecorder()
	m := NewManager(rec, dir, quietLogger())

	writePNG(t, filepath.Join(dir, "a.png"), 1, 1, color.RGBA{A: 255})
	writeJPEG(t, filepath.Join(dir, "P", "P_BaseColor.jpg"), 1)
	_, err := m.LoadTexture("a", filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	_, err = m.LoadTexturePack("P")
	require.NoError(t, err)
	require.Equal(t, 2, rec.LiveTextures())

	m.Close()
	assert.Zero(t, rec.LiveTextures())
	_, ok := m.TexturePack("P")
	assert.False(t, ok)
}

func TestReadNameList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("  one \n\ntwo\r\n\n"), 0o644))

	names, err := ReadNameList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, names)
}

func TestFlipRows(t *testing.T) {
	pix := []byte{1, 1, 2, 2, 3, 3}
	flipRows(pix, 2, 3)
	assert.Equal(t, []byte{3, 3, 2, 2, 1, 1}, pix)
}

func TestWatcherFlagsListChanges(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "Texture_Pack_List.txt")
	require.NoError(t, os.WriteFile(list, []byte("A\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := Watch(ctx, list, quietLogger())
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.Changed())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(list, []byte("A\nB\n"), 0o644))

	assert.Eventually(t, w.Changed, 2*time.Second, 10*time.Millisecond)
}
