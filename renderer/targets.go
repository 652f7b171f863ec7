package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"scene-editor/internal/gpu"
)

const (
	DefaultShadowSize  = 1024
	DefaultCaptureSize = 512
)

var ErrInvalidSize = errors.New("renderer: invalid target size")

// TargetConfig sizes the fixed-resolution targets. Zero fields take the
// defaults.
type TargetConfig struct {
	ShadowSize  int
	CaptureSize int
}

func (c TargetConfig) withDefaults() TargetConfig {
	if c.ShadowSize <= 0 {
		c.ShadowSize = DefaultShadowSize
	}
	if c.CaptureSize <= 0 {
		c.CaptureSize = DefaultCaptureSize
	}
	return c
}

// Targets owns every framebuffer the frame composer renders into. GBuffer,
// HDR and Post follow the window size; Shadow and Capture never change.
type Targets struct {
	dev gpu.Device
	log *slog.Logger
	cfg TargetConfig

	width, height int

	GBuffer *gpu.Target
	HDR     *gpu.Target
	Post    *gpu.Target
	Shadow  *gpu.Target
	Capture *gpu.Target
}

func gbufferSpec(w, h int) gpu.TargetSpec {
	return gpu.TargetSpec{
		Name: "gbuffer", Width: w, Height: h,
		// position, normal, albedo, roughness/metalness/AO
		Color:  []gpu.Format{gpu.RGBA16F, gpu.RGBA16F, gpu.RGBA8, gpu.RGBA8},
		Filter: gpu.Nearest,
		Depth:  gpu.Depth24Stencil8,
	}
}

func hdrSpec(w, h int) gpu.TargetSpec {
	return gpu.TargetSpec{
		Name: "hdr", Width: w, Height: h,
		Color:  []gpu.Format{gpu.RGBA16F},
		Filter: gpu.Linear,
		Depth:  gpu.Depth24Stencil8,
	}
}

func postSpec(w, h int) gpu.TargetSpec {
	return gpu.TargetSpec{
		Name: "post", Width: w, Height: h,
		Color:  []gpu.Format{gpu.RGB8},
		Filter: gpu.Linear,
		Depth:  gpu.Depth24Stencil8,
	}
}

// NewTargets creates the full set. Any failure releases what was already
// created.
func NewTargets(dev gpu.Device, width, height int, cfg TargetConfig, log *slog.Logger) (*Targets, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	t := &Targets{dev: dev, log: log.With("component", "targets"), cfg: cfg.withDefaults()}

	var err error
	t.Shadow, err = dev.CreateTarget(gpu.TargetSpec{
		Name: "shadow", Width: t.cfg.ShadowSize, Height: t.cfg.ShadowSize,
		Filter: gpu.Nearest, Depth: gpu.Depth32F, DepthCube: true,
	})
	if err != nil {
		return nil, fmt.Errorf("shadow target: %w", err)
	}
	t.Capture, err = dev.CreateTarget(gpu.TargetSpec{
		Name: "capture", Width: t.cfg.CaptureSize, Height: t.cfg.CaptureSize,
		Depth: gpu.Depth24Stencil8,
	})
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("capture target: %w", err)
	}
	if err := t.createScreen(width, height); err != nil {
		t.Destroy()
		return nil, err
	}
	t.log.Debug("targets created", "width", width, "height", height,
		"shadow", t.cfg.ShadowSize, "capture", t.cfg.CaptureSize)
	return t, nil
}

// createScreen builds a new generation of screen-sized targets and swaps it
// in only when every target is complete.
func (t *Targets) createScreen(width, height int) error {
	var created []*gpu.Target
	fail := func(err error) error {
		for _, c := range created {
			t.dev.DestroyTarget(c)
		}
		return err
	}
	specs := []gpu.TargetSpec{gbufferSpec(width, height), hdrSpec(width, height), postSpec(width, height)}
	for _, spec := range specs {
		c, err := t.dev.CreateTarget(spec)
		if err != nil {
			return fail(fmt.Errorf("%s target: %w", spec.Name, err))
		}
		created = append(created, c)
	}
	gbuf, hdr, post := created[0], created[1], created[2]
	if !gpu.SameDepth(gbuf, hdr) {
		return fail(fmt.Errorf("gbuffer %s %dx%d vs hdr %s %dx%d: %w",
			gbuf.Spec.Depth, gbuf.Width(), gbuf.Height(),
			hdr.Spec.Depth, hdr.Width(), hdr.Height(), gpu.ErrDepthMismatch))
	}

	t.destroyScreen()
	t.GBuffer, t.HDR, t.Post = gbuf, hdr, post
	t.width, t.height = width, height
	return nil
}

// Resize recreates the screen-sized targets. A zero or negative size (a
// minimised window) is rejected and the current targets are kept.
func (t *Targets) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == t.width && height == t.height && t.GBuffer != nil {
		return nil
	}
	if err := t.createScreen(width, height); err != nil {
		return err
	}
	t.log.Debug("targets resized", "width", width, "height", height, "live", t.Live())
	return nil
}

func (t *Targets) Size() (int, int) { return t.width, t.height }

func (t *Targets) destroyScreen() {
	for _, p := range []**gpu.Target{&t.GBuffer, &t.HDR, &t.Post} {
		if *p != nil {
			t.dev.DestroyTarget(*p)
			*p = nil
		}
	}
}

// Destroy releases every target. Calling it again does nothing.
func (t *Targets) Destroy() {
	t.destroyScreen()
	for _, p := range []**gpu.Target{&t.Shadow, &t.Capture} {
		if *p != nil {
			t.dev.DestroyTarget(*p)
			*p = nil
		}
	}
	t.width, t.height = 0, 0
}

// Live counts the targets currently allocated.
func (t *Targets) Live() int {
	n := 0
	for _, c := range []*gpu.Target{t.GBuffer, t.HDR, t.Post, t.Shadow, t.Capture} {
		if c != nil {
			n++
		}
	}
	return n
}
