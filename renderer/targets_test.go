package renderer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/internal/gpu"
	"scene-editor/internal/gpu/gputest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var oneOfEach = map[string]int{"gbuffer": 1, "hdr": 1, "post": 1, "shadow": 1, "capture": 1}

func TestNewTargets(t *testing.T) {
	rec := gputest.NewRecorder()
	tg, err := NewTargets(rec, 800, 600, TargetConfig{}, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 5, tg.Live())
	assert.Equal(t, oneOfEach, rec.LiveTargets())
	assert.Len(t, tg.GBuffer.Color, 4)
	assert.Equal(t, DefaultShadowSize, tg.Shadow.Width())
	assert.True(t, tg.Shadow.Spec.DepthCube)
	assert.NotZero(t, tg.Shadow.DepthTexture())
	assert.Equal(t, DefaultCaptureSize, tg.Capture.Width())
	assert.True(t, gpu.SameDepth(tg.GBuffer, tg.HDR))
}

func TestNewTargetsRejectsEmptySize(t *testing.T) {
	rec := gputest.NewRecorder()
	_, err := NewTargets(rec, 0, 600, TargetConfig{}, quietLogger())
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Empty(t, rec.LiveTargets())
}

func TestNewTargetsFailureReleasesEverything(t *testing.T) {
	for _, name := range []string{"shadow", "capture", "gbuffer", "hdr", "post"} {
		t.Run(name, func(t *testing.T) {
			rec := gputest.NewRecorder()
			rec.FailTarget = name
			_, err := NewTargets(rec, 800, 600, TargetConfig{}, quietLogger())
			assert.ErrorIs(t, err, gpu.ErrIncompleteTarget)
			assert.Empty(t, rec.LiveTargets())
			assert.Zero(t, rec.LiveTextures())
		})
	}
}

func TestResizeKeepsOneGeneration(t *testing.T) {
	rec := gputest.NewRecorder()
	tg, err := NewTargets(rec, 800, 600, TargetConfig{}, quietLogger())
	require.NoError(t, err)
	textures := rec.LiveTextures()

	for i := 1; i <= 20; i++ {
		require.NoError(t, tg.Resize(800+i, 600+i))
		assert.Equal(t, oneOfEach, rec.LiveTargets())
		assert.Equal(t, textures, rec.LiveTextures())
	}
	w, h := tg.Size()
	assert.Equal(t, 820, w)
	assert.Equal(t, 620, h)
	assert.Equal(t, 820, tg.HDR.Width())
	assert.Equal(t, DefaultShadowSize, tg.Shadow.Width(), "fixed targets ignore resize")
}

func TestResizeSameSizeIsNoop(t *testing.T) {
	rec := gputest.NewRecorder()
	tg, err := NewTargets(rec, 800, 600, TargetConfig{}, quietLogger())
	require.NoError(t, err)
	gbuf := tg.GBuffer

	rec.Reset()
	require.NoError(t, tg.Resize(800, 600))
	assert.Empty(t, rec.Ops("CreateTarget"))
	assert.Same(t, gbuf, tg.GBuffer)
}

func TestResizeRejectsMinimisedWindow(t *testing.T) {
	rec := gputest.NewRecorder()
	tg, err := NewTargets(rec, 800, 600, TargetConfig{}, quietLogger())
	require.NoError(t, err)

	assert.ErrorIs(t, tg.Resize(0, 0), ErrInvalidSize)
	assert.ErrorIs(t, tg.Resize(-1, 10), ErrInvalidSize)
	w, h := tg.Size()
	assert.Equal(t, [2]int{800, 600}, [2]int{w, h})
	assert.Equal(t, oneOfEach, rec.LiveTargets())
}

func TestResizeFailureKeepsPreviousTargets(t *testing.T) {
	rec := gputest.NewRecorder()
	tg, err := NewTargets(rec, 800, 600, TargetConfig{}, quietLogger())
	require.NoError(t, err)
	hdr := tg.HDR

	rec.FailTarget = "post"
	assert.ErrorIs(t, tg.Resize(1024, 768), gpu.ErrIncompleteTarget)
	assert.Equal(t, oneOfEach, rec.LiveTargets())
	assert.Same(t, hdr, tg.HDR)
	assert.Equal(t, 800, tg.GBuffer.Width())
}

func TestDestroyIsIdempotent(t *testing.T) {
	rec := gputest.NewRecorder()
	tg, err := NewTargets(rec, 800, 600, TargetConfig{ShadowSize: 256, CaptureSize: 128}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 256, tg.Shadow.Width())

	tg.Destroy()
	assert.Zero(t, tg.Live())
	assert.Empty(t, rec.LiveTargets())
	assert.Zero(t, rec.LiveTextures())

	rec.Reset()
	tg.Destroy()
	assert.Empty(t, rec.Ops("DestroyTarget"))
}

func TestNewProgramsFailureDeletesBuilt(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.FailProgram = "lighting"
	_, err := NewPrograms(rec, quietLogger())
	assert.ErrorIs(t, err, gpu.ErrShaderCompile)
	assert.Zero(t, rec.LivePrograms())
}

func TestNewProgramsBindsSamplers(t *testing.T) {
	rec := gputest.NewRecorder()
	p, err := NewPrograms(rec, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, int(numPrograms), rec.LivePrograms())

	shadow := rec.Uniforms("lighting", "shadowMap")
	require.Len(t, shadow, 1)
	assert.Equal(t, int32(unitShadow), shadow[0].Int)

	ao := rec.Uniforms("gbuffer", "aoMap")
	require.Len(t, ao, 1)
	assert.Equal(t, int32(5), ao[0].Int)

	p.Close()
	assert.Zero(t, rec.LivePrograms())
}
