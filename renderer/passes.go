package renderer

import (
	"scene-editor/core"
	"scene-editor/internal/gpu"
	"scene-editor/math"
	"scene-editor/scene"
)

const (
	shadowNear  = 0.1
	captureFar  = 10
	stencilFull = 0xFF
)

// clearTarget binds t with writable depth and stencil and clears it.
func (c *Composer) clearTarget(t *gpu.Target, color core.Color) {
	w, h := c.targets.Size()
	c.dev.BindTarget(t, w, h)
	c.dev.SetDepthTest(true)
	c.dev.SetDepthMask(true)
	c.dev.SetStencilMask(stencilFull)
	c.dev.Clear(gpu.ClearAll, color)
}

// shadowPass renders linear light distance of every non-light shape into
// the six faces of the shadow cubemap, from the first light.
func (c *Composer) shadowPass(names []string, fc *frameContext, far float32) {
	light := fc.lights[0].position
	proj := math.Mat4Perspective(math.Radians(90), 1, shadowNear, far)
	views := math.CubeFaceViews(light)

	p := c.progs.use(progShadow)
	c.dev.SetDepthTest(true)
	c.dev.SetDepthMask(true)
	c.dev.SetVec3(p, "lightPos", light)
	c.dev.SetFloat(p, "farPlane", far)
	for face := 0; face < 6; face++ {
		c.dev.BindCubeFace(c.targets.Shadow, 0, face)
		c.dev.Clear(gpu.ClearDepth, core.Color{})
		c.dev.SetMat4(p, "shadowMatrix", views[face].Mul(proj))
		for _, n := range names {
			sh := c.store.Shapes()[n]
			if sh.Shading == scene.Light {
				continue
			}
			c.dev.SetMat4(p, "model", sh.ModelMatrix(fc.amplitude))
			c.dev.Draw(c.geom.Mesh(sh.Geometry))
		}
	}
}

// geometryPass writes every PBR shape into the G-buffer. The clear color
// has zero alpha so the lighting pass can tell empty pixels apart.
func (c *Composer) geometryPass(names []string, fc *frameContext) {
	c.clearTarget(c.targets.GBuffer, core.Color{})
	p := c.progs.use(progGBuffer)
	c.dev.SetMat4(p, "view", fc.view)
	c.dev.SetMat4(p, "proj", fc.proj)
	for _, n := range names {
		sh := c.store.Shapes()[n]
		if sh.Shading != scene.PBR {
			continue
		}
		c.disp.gbuffer(p, sh, fc)
	}
}

// lightingPass resolves the G-buffer into the HDR target, copies its depth
// across and then draws the light markers forward on top.
func (c *Composer) lightingPass(names []string, fc *frameContext, s Snapshot, shadows bool) {
	c.clearTarget(c.targets.HDR, s.ClearColor)
	c.dev.SetDepthTest(false)

	p := c.progs.use(progLighting)
	for unit, tex := range c.targets.GBuffer.Color {
		c.dev.BindTexture(unit, tex)
	}
	c.dev.SetInt(p, "shadowsOn", boolInt(shadows))
	if shadows {
		c.dev.BindCubemap(unitShadow, c.targets.Shadow.DepthTexture())
		c.dev.SetVec3(p, "lightPos", fc.lights[0].position)
		c.dev.SetFloat(p, "farPlane", s.ShadowFar)
	}
	setLightList(c.dev, p, fc)
	c.dev.SetInt(p, "iblOn", boolInt(fc.ibl))
	if fc.ibl {
		c.dev.BindCubemap(unitEnv, fc.env)
	}
	c.dev.Draw(c.geom.Screen)

	c.dev.SetDepthTest(true)
	c.dev.BlitDepth(c.targets.GBuffer, c.targets.HDR)
	for _, n := range names {
		if sh := c.store.Shapes()[n]; sh.Shading == scene.Light {
			c.disp.forward(sh, fc)
		}
	}
}

// forwardPass draws every shape with its own program. Selected shapes mark
// the stencil buffer for the outline pass.
func (c *Composer) forwardPass(names []string, fc *frameContext, s Snapshot) {
	c.clearTarget(c.targets.HDR, s.ClearColor)
	for _, n := range names {
		sh := c.store.Shapes()[n]
		if sh.Selected {
			c.dev.SetStencilFunc(gpu.Always, 1, stencilFull)
			c.dev.SetStencilMask(stencilFull)
		} else {
			c.dev.SetStencilMask(0x00)
		}
		c.disp.forward(sh, fc)
	}
	c.dev.SetStencilMask(0x00)
}

// modelPass draws loaded models forward with the shared light list.
func (c *Composer) modelPass(fc *frameContext) {
	if len(c.models) == 0 {
		return
	}
	p := c.progs.use(progModel)
	c.dev.SetMat4(p, "view", fc.view)
	c.dev.SetMat4(p, "proj", fc.proj)
	setLightList(c.dev, p, fc)
	for _, name := range c.Models() {
		gm := c.models[name]
		c.dev.SetMat4(p, "model", gm.model.Transform.Matrix())
		for i, mesh := range gm.meshes {
			tex := gm.diffuse[i]
			c.dev.SetInt(p, "hasTexture", boolInt(tex != 0))
			if tex != 0 {
				c.dev.BindTexture(0, tex)
			}
			c.dev.Draw(mesh)
		}
	}
}

// outlinePass draws an extruded silhouette of each selected shape where the
// stencil was not marked, then restores the default stencil state.
func (c *Composer) outlinePass(names []string, fc *frameContext, s Snapshot) {
	var selected []*scene.Shape
	for _, n := range names {
		if sh := c.store.Shapes()[n]; sh.Selected {
			selected = append(selected, sh)
		}
	}
	if len(selected) > 0 {
		c.dev.SetStencilFunc(gpu.NotEqual, 1, stencilFull)
		c.dev.SetStencilMask(0x00)
		c.dev.SetDepthTest(false)
		p := c.progs.use(progOutline)
		c.dev.SetMat4(p, "view", fc.view)
		c.dev.SetMat4(p, "proj", fc.proj)
		c.dev.SetFloat(p, "outlining", s.OutlineThickness)
		c.dev.SetVec3(p, "outlineColor", s.OutlineColor)
		for _, sh := range selected {
			c.dev.SetMat4(p, "model", sh.ModelMatrix(fc.amplitude))
			c.dev.Draw(c.geom.Mesh(sh.Geometry))
		}
		c.dev.SetDepthTest(true)
	}
	c.dev.SetStencilMask(stencilFull)
	c.dev.SetStencilFunc(gpu.Always, 1, stencilFull)
}

// backgroundPass fills the far plane with the HDR environment when IBL is
// on, otherwise with the static skybox. With neither it does nothing.
func (c *Composer) backgroundPass(in FrameInput, s Snapshot) {
	var p gpu.Program
	switch {
	case s.IBL && c.envSource != 0:
		p = c.progs.use(progBackground)
		c.dev.BindTexture(0, c.envSource)
	case s.Skybox && c.skybox != 0:
		p = c.progs.use(progSkybox)
		c.dev.BindCubemap(0, c.skybox)
	default:
		return
	}
	c.dev.SetDepthTest(true)
	c.dev.SetDepthFunc(gpu.LessEqual)
	c.dev.SetMat4(p, "view", in.View.WithoutTranslation())
	c.dev.SetMat4(p, "proj", in.Projection)
	c.dev.Draw(c.geom.Skybox)
	c.dev.SetDepthFunc(gpu.Less)
}

func (c *Composer) tonemapPass(s Snapshot) {
	w, h := c.targets.Size()
	c.dev.BindTarget(c.targets.Post, w, h)
	c.dev.SetDepthTest(false)
	c.dev.Clear(gpu.ClearColor, core.ColorBlack)
	p := c.progs.use(progTonemap)
	c.dev.BindTexture(0, c.targets.HDR.Color[0])
	c.dev.SetInt(p, "hdrOn", boolInt(s.HDR))
	c.dev.SetFloat(p, "exposure", s.Exposure)
	c.dev.Draw(c.geom.Screen)
}

// postPass filters the tone-mapped image onto the default framebuffer.
func (c *Composer) postPass(s Snapshot) {
	w, h := c.targets.Size()
	c.dev.BindTarget(nil, w, h)
	c.dev.Clear(gpu.ClearColor, core.ColorBlack)
	p := c.progs.use(progPost)
	c.dev.BindTexture(0, c.targets.Post.Color[0])
	c.dev.SetFloat(p, "t_saturation", s.Filters.Saturation)
	c.dev.SetFloat(p, "t_blur", s.Filters.Blur)
	c.dev.SetFloat(p, "t_outline", s.Filters.Outline)
	c.dev.SetInt(p, "t_invert", boolInt(s.Filters.Invert))
	c.dev.Draw(c.geom.Screen)
	c.dev.SetDepthTest(true)
}

// capture renders the equirect image src into the six faces of envCube.
func (c *Composer) capture(src gpu.Texture) {
	proj := math.Mat4Perspective(math.Radians(90), 1, shadowNear, captureFar)
	views := math.CubeFaceViews(math.Vec3Zero)

	p := c.progs.use(progCapture)
	c.dev.SetDepthTest(true)
	c.dev.SetDepthMask(true)
	c.dev.BindTexture(0, src)
	c.dev.SetMat4(p, "proj", proj)
	for face := 0; face < 6; face++ {
		c.dev.BindCubeFace(c.targets.Capture, c.envCube, face)
		c.dev.Clear(gpu.ClearColor|gpu.ClearDepth, core.Color{})
		c.dev.SetMat4(p, "view", views[face])
		c.dev.Draw(c.geom.Skybox)
	}
	c.dev.GenerateCubemapMips(c.envCube)
	w, h := c.targets.Size()
	c.dev.BindTarget(nil, w, h)
}
