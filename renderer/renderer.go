// Package renderer composes each frame of the editor: point shadows, the
// deferred G-buffer and lighting resolve, forward shapes with stencil
// selection, the background, tone mapping and screen filters.
package renderer

import (
	"fmt"
	"log/slog"
	"sort"

	"scene-editor/internal/gpu"
	"scene-editor/math"
	"scene-editor/scene"
	"scene-editor/textures"
)

// Options size the composer's render targets.
type Options struct {
	Width, Height int
	Targets       TargetConfig
}

// FrameInput is everything one frame depends on besides the scene store.
type FrameInput struct {
	Settings   Snapshot
	View       math.Mat4
	Projection math.Mat4
	CameraPos  math.Vec3
	Time       float32
	// Amplitude is the current audio sample. It perturbs light markers and
	// Phong ambient for this frame only.
	Amplitude int16
}

type gpuModel struct {
	model   *scene.Model
	meshes  []gpu.Mesh
	diffuse []gpu.Texture
}

// Composer runs the frame passes in a fixed order. It reads the store and
// never writes to it.
type Composer struct {
	dev   gpu.Device
	log   *slog.Logger
	store *scene.Store
	res   Resources

	targets *Targets
	progs   *Programs
	geom    *Geometry
	disp    dispatcher

	skybox    gpu.Texture
	env       textures.EnvID
	envSource gpu.Texture // equirect HDR image
	envCube   gpu.Texture // captured from envSource

	models map[string]*gpuModel

	warnedLights bool
}

// NewComposer creates targets, programs and geometry. Incomplete targets
// and shader failures are returned as errors; nothing is left allocated.
func NewComposer(dev gpu.Device, store *scene.Store, res Resources, opts Options, log *slog.Logger) (*Composer, error) {
	c := &Composer{
		dev:    dev,
		log:    log.With("component", "composer"),
		store:  store,
		res:    res,
		models: make(map[string]*gpuModel),
	}

	var err error
	if c.targets, err = NewTargets(dev, opts.Width, opts.Height, opts.Targets, log); err != nil {
		return nil, fmt.Errorf("targets: %w", err)
	}
	if c.progs, err = NewPrograms(dev, log); err != nil {
		c.targets.Destroy()
		return nil, fmt.Errorf("programs: %w", err)
	}
	if c.geom, err = NewGeometry(dev); err != nil {
		c.progs.Close()
		c.targets.Destroy()
		return nil, fmt.Errorf("geometry: %w", err)
	}
	c.disp = dispatcher{dev: dev, progs: c.progs, geom: c.geom, res: res}

	c.log.Info("composer ready", "width", opts.Width, "height", opts.Height, "targets", c.targets.Live())
	return c, nil
}

// Resize follows the window's framebuffer size.
func (c *Composer) Resize(width, height int) error {
	return c.targets.Resize(width, height)
}

func (c *Composer) Targets() *Targets { return c.targets }

// GBufferTextures returns position, normal, albedo and
// roughness/metalness/AO for debug display.
func (c *Composer) GBufferTextures() [4]gpu.Texture {
	var out [4]gpu.Texture
	if c.targets.GBuffer != nil {
		copy(out[:], c.targets.GBuffer.Color)
	}
	return out
}

// SetSkybox sets the static background cubemap. Zero disables it.
func (c *Composer) SetSkybox(cubemap gpu.Texture) {
	c.skybox = cubemap
}

// Environment returns the HDR environment used for IBL, or zero.
func (c *Composer) Environment() textures.EnvID { return c.env }

// SetEnvironment captures the equirectangular environment id into the IBL
// cubemap through the capture target. Zero clears the environment.
func (c *Composer) SetEnvironment(id textures.EnvID) error {
	if id == 0 {
		c.env, c.envSource = 0, 0
		return nil
	}
	var src gpu.Texture
	if c.res != nil {
		src = c.res.Environment(id)
	}
	if src == 0 {
		return fmt.Errorf("environment %d: %w", id, textures.ErrNotFound)
	}
	if c.envCube == 0 {
		cube, err := c.dev.NewCubemap(c.targets.Capture.Width())
		if err != nil {
			return fmt.Errorf("environment cubemap: %w", err)
		}
		c.envCube = cube
	}
	c.capture(src)
	c.env, c.envSource = id, src
	c.log.Info("environment captured", "env", int(id), "size", c.targets.Capture.Width())
	return nil
}

// AddModel uploads every mesh of m. A model already stored under name is
// replaced.
func (c *Composer) AddModel(name string, m *scene.Model) error {
	c.RemoveModel(name)
	gm := &gpuModel{model: m}
	for _, mesh := range m.Meshes {
		h, err := c.dev.UploadMesh(mesh.Data)
		if err != nil {
			c.freeModel(gm)
			return fmt.Errorf("model %q mesh %q: %w", name, mesh.Name, err)
		}
		gm.meshes = append(gm.meshes, h)

		var tex gpu.Texture
		if img := mesh.Diffuse; img != nil {
			tex, err = c.dev.UploadTexture(img.Width, img.Height, img.Pixels)
			if err != nil {
				c.log.Warn("model texture skipped", "model", name, "image", img.Name, "err", err)
				tex = 0
			}
		}
		gm.diffuse = append(gm.diffuse, tex)
	}
	c.models[name] = gm
	c.log.Info("model added", "model", name, "meshes", len(gm.meshes))
	return nil
}

// RemoveModel frees a model's GPU data and reports whether it existed.
func (c *Composer) RemoveModel(name string) bool {
	gm, ok := c.models[name]
	if !ok {
		return false
	}
	c.freeModel(gm)
	delete(c.models, name)
	return true
}

func (c *Composer) freeModel(gm *gpuModel) {
	for _, m := range gm.meshes {
		c.dev.DeleteMesh(m)
	}
	for _, t := range gm.diffuse {
		if t != 0 {
			c.dev.DeleteTexture(t)
		}
	}
	gm.meshes, gm.diffuse = nil, nil
}

// Models lists the loaded model names in sorted order.
func (c *Composer) Models() []string {
	names := make([]string, 0, len(c.models))
	for n := range c.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close releases every GPU object the composer created.
func (c *Composer) Close() {
	for name := range c.models {
		c.RemoveModel(name)
	}
	if c.envCube != 0 {
		c.dev.DeleteTexture(c.envCube)
		c.envCube = 0
	}
	c.env, c.envSource = 0, 0
	c.geom.Close()
	c.progs.Close()
	c.targets.Destroy()
}

// Frame draws one frame. Its output depends only on the store, the input
// and the resources bound through SetSkybox and SetEnvironment.
func (c *Composer) Frame(in FrameInput) {
	s := in.Settings
	names := c.store.Names()
	fc := c.frameContext(in, names)

	if s.Deferred {
		shadows := s.Shadows && len(fc.lights) > 0
		if shadows {
			c.shadowPass(names, fc, s.ShadowFar)
		}
		c.geometryPass(names, fc)
		c.lightingPass(names, fc, s, shadows)
	} else {
		c.forwardPass(names, fc, s)
	}
	c.modelPass(fc)
	if !s.Deferred {
		c.outlinePass(names, fc, s)
	}
	c.backgroundPass(in, s)
	c.tonemapPass(s)
	c.postPass(s)
}

func (c *Composer) frameContext(in FrameInput, names []string) *frameContext {
	fc := &frameContext{
		view:      in.View,
		proj:      in.Projection,
		cameraPos: in.CameraPos,
		time:      in.Time,
		amplitude: in.Amplitude,
		ibl:       in.Settings.IBL && c.envCube != 0 && c.envSource != 0,
		env:       c.envCube,
	}
	for _, n := range names {
		sh := c.store.Shapes()[n]
		if sh.Shading != scene.Light {
			continue
		}
		if len(fc.lights) == MaxLights {
			if !c.warnedLights {
				c.log.Warn("too many lights, extra lights ignored", "max", MaxLights)
				c.warnedLights = true
			}
			break
		}
		fc.lights = append(fc.lights, pointLight{position: sh.Transform.Position, color: sh.LightColor()})
	}
	return fc
}
