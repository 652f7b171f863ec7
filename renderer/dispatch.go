package renderer

import (
	"fmt"

	"scene-editor/internal/gpu"
	"scene-editor/materials"
	"scene-editor/math"
	"scene-editor/scene"
	"scene-editor/textures"
)

// MaxLights matches MAX_LIGHTS in the lit shaders.
const MaxLights = 16

// Resources resolves the handles shapes hold. textures.Manager satisfies it.
type Resources interface {
	Resolve(id textures.TextureID) gpu.Texture
	Pack(id textures.PackID) (textures.Pack, bool)
	Environment(id textures.EnvID) gpu.Texture
}

type pointLight struct {
	position math.Vec3
	color    math.Vec3
}

// frameContext is everything dispatch needs besides the shape itself.
type frameContext struct {
	view, proj math.Mat4
	cameraPos  math.Vec3
	time       float32
	amplitude  int16
	lights     []pointLight
	ibl        bool
	env        gpu.Texture // environment cubemap, bound when ibl is set
}

// dispatcher maps a shape's shading kind to a program, its textures and
// its uniforms. It never writes to the shape.
type dispatcher struct {
	dev   gpu.Device
	progs *Programs
	geom  *Geometry
	res   Resources
}

// forward draws sh with the program of its shading kind.
func (d *dispatcher) forward(sh *scene.Shape, fc *frameContext) {
	switch sh.Shading {
	case scene.Glowy:
		p := d.progs.use(progGlowy)
		d.setTransforms(p, sh, fc)
		d.dev.SetFloat(p, "time", fc.time)
	case scene.Phong:
		p := d.progs.use(progPhong)
		d.setTransforms(p, sh, fc)
		setLightList(d.dev, p, fc)
		d.setPhong(p, sh.Phong.WithAmplitude(fc.amplitude))
		tex := d.resolve(sh.Texture)
		d.dev.SetInt(p, "hasTexture", boolInt(tex != 0))
		if tex != 0 {
			d.dev.BindTexture(0, tex)
		}
	case scene.PBR:
		p := d.progs.use(progPBR)
		d.setTransforms(p, sh, fc)
		setLightList(d.dev, p, fc)
		d.setPBR(p, sh.PBR)
		d.dev.SetInt(p, "iblOn", boolInt(fc.ibl && fc.env != 0))
		if fc.ibl && fc.env != 0 {
			d.dev.BindCubemap(unitEnv, fc.env)
		}
	case scene.Light:
		p := d.progs.use(progLight)
		d.setTransforms(p, sh, fc)
		d.dev.SetVec3(p, "lightColor", sh.LightColor())
	default:
		return
	}
	d.dev.Draw(d.geom.Mesh(sh.Geometry))
}

// gbuffer writes a PBR shape's surface into the G-buffer. The program is
// bound and view/proj set once per pass by the caller.
func (d *dispatcher) gbuffer(p gpu.Program, sh *scene.Shape, fc *frameContext) {
	d.dev.SetMat4(p, "model", sh.ModelMatrix(fc.amplitude))
	d.setPBR(p, sh.PBR)
	d.dev.Draw(d.geom.Mesh(sh.Geometry))
}

func (d *dispatcher) setTransforms(p gpu.Program, sh *scene.Shape, fc *frameContext) {
	d.dev.SetMat4(p, "model", sh.ModelMatrix(fc.amplitude))
	d.dev.SetMat4(p, "view", fc.view)
	d.dev.SetMat4(p, "proj", fc.proj)
}

// setLightList uploads the light array, the light count and the camera
// position.
func setLightList(dev gpu.Device, p gpu.Program, fc *frameContext) {
	for i, l := range fc.lights {
		dev.SetVec3(p, lightPositionUniform[i], l.position)
		dev.SetVec3(p, lightColorUniform[i], l.color)
	}
	dev.SetInt(p, "numberOfLights", int32(len(fc.lights)))
	dev.SetVec3(p, "viewPos", fc.cameraPos)
}

var lightPositionUniform, lightColorUniform [MaxLights]string

func init() {
	for i := 0; i < MaxLights; i++ {
		lightPositionUniform[i] = fmt.Sprintf("lights[%d].position", i)
		lightColorUniform[i] = fmt.Sprintf("lights[%d].color", i)
	}
}

func (d *dispatcher) setPhong(p gpu.Program, m materials.Phong) {
	d.dev.SetVec3(p, "material.ambient", m.Ambient)
	d.dev.SetVec3(p, "material.diffuse", m.Diffuse)
	d.dev.SetVec3(p, "material.specular", m.Specular)
	d.dev.SetFloat(p, "material.shininess", m.Shininess)
}

var hasMapUniforms = [textures.NumChannels]string{
	"hasAlbedoMap", "hasNormalMap", "hasRoughnessMap", "hasMetallicMap", "hasHeightMap", "hasAOMap",
}

// setPBR uploads the scalar factors unconditionally and then binds whichever
// pack channels exist. Units of absent channels are left as they are; the
// has*Map flags keep the shader from sampling them.
func (d *dispatcher) setPBR(p gpu.Program, m materials.PBR) {
	d.dev.SetVec3(p, "albedo", m.Albedo)
	d.dev.SetFloat(p, "metalness", m.Metalness)
	d.dev.SetFloat(p, "roughness", m.Roughness)
	d.dev.SetFloat(p, "ao", m.AO)

	var pack textures.Pack
	enabled := false
	if m.PackEnabled && m.Pack != 0 && d.res != nil {
		pack, enabled = d.res.Pack(m.Pack)
	}
	d.dev.SetInt(p, "packEnabled", boolInt(enabled))
	for c := textures.Channel(0); c < textures.NumChannels; c++ {
		has := enabled && pack.Has(c)
		d.dev.SetInt(p, hasMapUniforms[c], boolInt(has))
		if has {
			d.dev.BindTexture(int(c), pack.Maps[c])
		}
	}
}

func (d *dispatcher) resolve(id textures.TextureID) gpu.Texture {
	if id == 0 || d.res == nil {
		return 0
	}
	return d.res.Resolve(id)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
