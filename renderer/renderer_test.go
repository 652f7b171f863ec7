package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/core"
	"scene-editor/internal/gpu"
	"scene-editor/internal/gpu/gputest"
	"scene-editor/math"
	"scene-editor/scene"
	"scene-editor/textures"
)

// fakeResources serves fixed handles without a texture manager.
type fakeResources struct {
	textures map[textures.TextureID]gpu.Texture
	packs    map[textures.PackID]textures.Pack
	envs     map[textures.EnvID]gpu.Texture
}

func (f *fakeResources) Resolve(id textures.TextureID) gpu.Texture { return f.textures[id] }

func (f *fakeResources) Pack(id textures.PackID) (textures.Pack, bool) {
	p, ok := f.packs[id]
	return p, ok
}

func (f *fakeResources) Environment(id textures.EnvID) gpu.Texture { return f.envs[id] }

type harness struct {
	rec   *gputest.Recorder
	store *scene.Store
	res   *fakeResources
	c     *Composer
	cam   *scene.Camera
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		rec:   gputest.NewRecorder(),
		store: scene.NewStore(),
		res: &fakeResources{
			textures: map[textures.TextureID]gpu.Texture{},
			packs:    map[textures.PackID]textures.Pack{},
			envs:     map[textures.EnvID]gpu.Texture{},
		},
		cam: scene.NewCamera(math.Vec3{Z: 3}),
	}
	c, err := NewComposer(h.rec, h.store, h.res, Options{Width: 640, Height: 480}, quietLogger())
	require.NoError(t, err)
	h.c = c
	t.Cleanup(c.Close)
	return h
}

func (h *harness) frame(s Settings, amplitude int16) {
	h.rec.Reset()
	h.c.Frame(FrameInput{
		Settings:   s.Snapshot(),
		View:       h.cam.ViewMatrix(),
		Projection: h.cam.ProjectionMatrix(640.0 / 480.0),
		CameraPos:  h.cam.Position,
		Time:       1.5,
		Amplitude:  amplitude,
	})
}

func forward() Settings {
	s := DefaultSettings()
	s.Deferred = false
	return s
}

func TestNonPBRShapesNeverUploadPBRMaterial(t *testing.T) {
	h := newHarness(t)
	h.store.AddShape("glowy", scene.NewShape(scene.Glowy, scene.Cube))
	h.store.AddShape("phong", scene.NewShape(scene.Phong, scene.Sphere))
	h.store.AddShape("light", scene.NewShape(scene.Light, scene.Sphere))

	for _, s := range []Settings{forward(), DefaultSettings()} {
		h.frame(s, 1234)
		for _, c := range h.rec.Calls {
			switch c.Op {
			case "SetVec3", "SetFloat", "SetInt":
				assert.NotContains(t, []string{"albedo", "metalness", "roughness", "ao", "packEnabled"}, c.Name,
					"program %s (deferred=%v)", c.Program, s.Deferred)
			}
		}
	}
}

func TestDeferredPBRSphereWithoutPack(t *testing.T) {
	h := newHarness(t)
	sh := scene.NewShape(scene.PBR, scene.Sphere)
	sh.PBR.Albedo = math.Splat(0.2)
	h.store.AddShape("PBR Shape", sh)

	h.frame(DefaultSettings(), 0)

	assert.Len(t, h.rec.Draws("gbuffer"), 1)
	for _, c := range h.rec.Ops("BindTexture") {
		assert.NotEqual(t, "gbuffer", c.Program, "unexpected pack bind on unit %d", c.Unit)
	}
	albedo := h.rec.Uniforms("gbuffer", "albedo")
	require.Len(t, albedo, 1)
	assert.Equal(t, math.Splat(0.2), albedo[0].Vec)
	enabled := h.rec.Uniforms("gbuffer", "packEnabled")
	require.Len(t, enabled, 1)
	assert.Zero(t, enabled[0].Int)
	assert.Empty(t, h.rec.Draws("pbr"), "PBR shapes are not drawn forward in deferred mode")
}

func TestLightingPassUploadsLightList(t *testing.T) {
	h := newHarness(t)
	light := scene.NewShape(scene.Light, scene.Sphere)
	light.Transform.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	light.Phong.Ambient = math.Vec3One
	h.store.AddShape("Light Source", light)

	h.frame(DefaultSettings(), 0)

	pos := h.rec.Uniforms("lighting", "lights[0].position")
	require.Len(t, pos, 1)
	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, pos[0].Vec)
	color := h.rec.Uniforms("lighting", "lights[0].color")
	require.Len(t, color, 1)
	assert.Equal(t, math.Vec3One, color[0].Vec)
	count := h.rec.Uniforms("lighting", "numberOfLights")
	require.Len(t, count, 1)
	assert.Equal(t, int32(1), count[0].Int)

	// the marker itself is drawn forward after the depth blit
	seq := h.rec.Sequence("BlitDepth", "Draw")
	blit := indexOf(seq, "BlitDepth:gbuffer->hdr")
	require.GreaterOrEqual(t, blit, 0)
	assert.Equal(t, "Draw:lighting", seq[blit-1])
	assert.Equal(t, "Draw:light", seq[blit+1])
}

func TestPhongAmbientFollowsAmplitude(t *testing.T) {
	h := newHarness(t)
	sh := scene.NewShape(scene.Phong, scene.Cube)
	sh.Phong.Ambient = math.Splat(0.2)
	h.store.AddShape("Cube 1", sh)

	h.frame(forward(), 7000)

	amb := h.rec.Uniforms("phong", "material.ambient")
	require.Len(t, amb, 1)
	assert.InDelta(t, 0.3, amb[0].Vec.X, 1e-6)
	assert.InDelta(t, 0.3, amb[0].Vec.Y, 1e-6)
	assert.InDelta(t, 0.3, amb[0].Vec.Z, 1e-6)
	assert.Equal(t, math.Splat(0.2), sh.Phong.Ambient, "amplitude is never written back")
}

func TestShadowPassRendersSixFaces(t *testing.T) {
	h := newHarness(t)
	light := scene.NewShape(scene.Light, scene.Sphere)
	light.Transform.Position = math.Vec3{X: 1.2, Y: 1, Z: 2}
	h.store.AddShape("Light Source", light)
	h.store.AddShape("PBR Shape", scene.NewShape(scene.PBR, scene.Sphere))
	h.store.AddShape("Cube 1", scene.NewShape(scene.Phong, scene.Cube))

	h.frame(DefaultSettings(), 0)

	faces := h.rec.Ops("BindCubeFace")
	require.Len(t, faces, 6)
	for i, f := range faces {
		assert.Equal(t, "shadow", f.Name)
		assert.Equal(t, i, f.Face)
	}
	mats := h.rec.Uniforms("shadow", "shadowMatrix")
	require.Len(t, mats, 6)
	for i := range mats {
		for j := i + 1; j < len(mats); j++ {
			assert.NotEqual(t, mats[i].Mat, mats[j].Mat, "faces %d and %d", i, j)
		}
	}
	// two casters per face; the light itself casts nothing
	assert.Len(t, h.rec.Draws("shadow"), 12)

	on := h.rec.Uniforms("lighting", "shadowsOn")
	require.Len(t, on, 1)
	assert.Equal(t, int32(1), on[0].Int)
}

func TestShadowPassSkipped(t *testing.T) {
	h := newHarness(t)
	h.store.AddShape("PBR Shape", scene.NewShape(scene.PBR, scene.Sphere))

	h.frame(DefaultSettings(), 0)
	assert.Empty(t, h.rec.Ops("BindCubeFace"), "no light")

	h.store.AddShape("Light Source", scene.NewShape(scene.Light, scene.Sphere))
	h.frame(forward(), 0)
	assert.Empty(t, h.rec.Ops("BindCubeFace"), "forward mode")

	s := DefaultSettings()
	s.Shadows = false
	h.frame(s, 0)
	assert.Empty(t, h.rec.Ops("BindCubeFace"), "shadows off")
}

func TestCubeFaceViewsAreWellFormed(t *testing.T) {
	for i, v := range math.CubeFaceViews(math.Vec3{X: 1, Y: 2, Z: 3}) {
		for axis := 0; axis < 3; axis++ {
			col := math.Vec3{X: v[0][axis], Y: v[1][axis], Z: v[2][axis]}
			assert.InDelta(t, 1, col.Length(), 1e-5, "face %d axis %d", i, axis)
		}
	}
}

func TestToggleDeferredRestoresForwardSequence(t *testing.T) {
	h := newHarness(t)
	h.store.AddShape("a", scene.NewShape(scene.Phong, scene.Cube))
	h.store.AddShape("b", scene.NewShape(scene.PBR, scene.Sphere))
	h.store.AddShape("c", scene.NewShape(scene.Glowy, scene.Quad))
	h.store.AddShape("light", scene.NewShape(scene.Light, scene.Sphere))
	require.NoError(t, h.store.Select("a"))

	h.frame(forward(), 100)
	first := append([]gputest.Call(nil), h.rec.Calls...)

	h.frame(DefaultSettings(), 100)
	assert.NotEqual(t, first, h.rec.Calls)

	h.frame(forward(), 100)
	assert.Equal(t, first, h.rec.Calls)
}

func TestDeferredPassOrder(t *testing.T) {
	h := newHarness(t)
	h.store.AddShape("Light Source", scene.NewShape(scene.Light, scene.Sphere))
	h.store.AddShape("PBR Shape", scene.NewShape(scene.PBR, scene.Sphere))
	h.c.SetSkybox(99)

	h.frame(DefaultSettings(), 0)

	seq := h.rec.Sequence("BindTarget", "BlitDepth", "Draw")
	assert.Equal(t, []string{
		"Draw:shadow", "Draw:shadow", "Draw:shadow", "Draw:shadow", "Draw:shadow", "Draw:shadow",
		"BindTarget:gbuffer", "Draw:gbuffer",
		"BindTarget:hdr", "Draw:lighting", "BlitDepth:gbuffer->hdr", "Draw:light",
		"Draw:skybox",
		"BindTarget:post", "Draw:tonemap",
		"BindTarget:", "Draw:post",
	}, seq)
}

func TestForwardSelectionOutline(t *testing.T) {
	h := newHarness(t)
	h.store.AddShape("a", scene.NewShape(scene.Phong, scene.Cube))
	h.store.AddShape("b", scene.NewShape(scene.Glowy, scene.Cube))
	require.NoError(t, h.store.Select("a"))

	h.frame(forward(), 0)

	seq := h.rec.Sequence("SetStencilFunc", "SetStencilMask", "Draw")
	assert.Equal(t, []string{
		"SetStencilMask:", // clear
		"SetStencilFunc:", "SetStencilMask:", "Draw:phong",
		"SetStencilMask:", "Draw:glowy",
		"SetStencilMask:",
		"SetStencilFunc:", "SetStencilMask:", "Draw:outline",
		"SetStencilMask:", "SetStencilFunc:",
		"Draw:tonemap", "Draw:post",
	}, seq)

	funcs := h.rec.Ops("SetStencilFunc")
	require.Len(t, funcs, 3)
	assert.Equal(t, gpu.Always, funcs[0].Func)
	assert.Equal(t, gpu.NotEqual, funcs[1].Func)
	assert.Equal(t, gpu.Always, funcs[2].Func)
	assert.Equal(t, int32(1), funcs[1].Ref)

	masks := h.rec.Ops("SetStencilMask")
	assert.Equal(t, uint32(0xFF), masks[1].Mask, "selected shape writes stencil")
	assert.Equal(t, uint32(0x00), masks[2].Mask, "other shapes do not")
	assert.Equal(t, uint32(0xFF), masks[len(masks)-1].Mask, "default restored")

	thick := h.rec.Uniforms("outline", "outlining")
	require.Len(t, thick, 1)
	assert.Equal(t, float32(0.03), thick[0].Float)
}

func TestDeferredModeDrawsNoOutline(t *testing.T) {
	h := newHarness(t)
	h.store.AddShape("a", scene.NewShape(scene.PBR, scene.Cube))
	require.NoError(t, h.store.Select("a"))

	h.frame(DefaultSettings(), 0)
	assert.Empty(t, h.rec.Draws("outline"))
}

func TestBackground(t *testing.T) {
	h := newHarness(t)

	h.frame(DefaultSettings(), 0)
	assert.Empty(t, h.rec.Draws("skybox"), "no cubemap loaded")

	h.c.SetSkybox(42)
	h.frame(DefaultSettings(), 0)
	require.Len(t, h.rec.Draws("skybox"), 1)
	view := h.rec.Uniforms("skybox", "view")
	require.Len(t, view, 1)
	assert.Equal(t, [3]float32{}, [3]float32{view[0].Mat[3][0], view[0].Mat[3][1], view[0].Mat[3][2]})

	s := DefaultSettings()
	s.Skybox = false
	h.frame(s, 0)
	assert.Empty(t, h.rec.Draws("skybox"))
}

func TestEnvironmentCaptureAndIBL(t *testing.T) {
	h := newHarness(t)
	h.res.envs[1] = 77
	h.store.AddShape("PBR Shape", scene.NewShape(scene.PBR, scene.Sphere))
	h.c.SetSkybox(42)

	assert.ErrorIs(t, h.c.SetEnvironment(2), textures.ErrNotFound)

	h.rec.Reset()
	require.NoError(t, h.c.SetEnvironment(1))
	assert.Equal(t, textures.EnvID(1), h.c.Environment())
	faces := h.rec.Ops("BindCubeFace")
	require.Len(t, faces, 6)
	for i, f := range faces {
		assert.Equal(t, "capture", f.Name)
		assert.Equal(t, i, f.Face)
		assert.NotZero(t, f.Texture)
	}
	assert.Len(t, h.rec.Draws("capture"), 6)

	// The mip chain is rebuilt once, after the last face.
	seq := h.rec.Sequence("BindCubeFace", "Draw", "GenerateCubemapMips")
	require.Len(t, seq, 13)
	assert.Equal(t, "GenerateCubemapMips:", seq[12])
	mips := h.rec.Ops("GenerateCubemapMips")
	require.Len(t, mips, 1)
	assert.Equal(t, faces[0].Texture, mips[0].Texture)

	s := DefaultSettings()
	s.IBL = true
	h.frame(s, 0)
	assert.Len(t, h.rec.Draws("background"), 1)
	assert.Empty(t, h.rec.Draws("skybox"))
	ibl := h.rec.Uniforms("lighting", "iblOn")
	require.Len(t, ibl, 1)
	assert.Equal(t, int32(1), ibl[0].Int)

	s.Deferred = false
	h.frame(s, 0)
	assert.Len(t, h.rec.Ops("BindCubemap"), 1, "only the PBR shape samples the environment cubemap")

	require.NoError(t, h.c.SetEnvironment(0))
	h.frame(s, 0)
	assert.Empty(t, h.rec.Draws("background"))
	assert.Len(t, h.rec.Draws("skybox"), 1)
}

func TestPBRPackBindsPresentChannels(t *testing.T) {
	h := newHarness(t)
	var pack textures.Pack
	pack.Maps[textures.Albedo] = 501
	pack.Maps[textures.Normal] = 502
	h.res.packs[3] = pack

	sh := scene.NewShape(scene.PBR, scene.Cube)
	h.store.AddShape("Cube 1", sh)
	require.NoError(t, h.store.SetTexturePackForShape(3, "Cube 1"))

	h.frame(forward(), 0)

	binds := h.rec.Ops("BindTexture")
	var units []int
	for _, b := range binds {
		if b.Program == "pbr" {
			units = append(units, b.Unit)
		}
	}
	assert.Equal(t, []int{0, 1}, units)
	assert.Equal(t, int32(1), h.rec.Uniforms("pbr", "hasAlbedoMap")[0].Int)
	assert.Equal(t, int32(0), h.rec.Uniforms("pbr", "hasRoughnessMap")[0].Int)
	// scalar fallbacks are uploaded regardless
	assert.Len(t, h.rec.Uniforms("pbr", "roughness"), 1)
}

func TestMissingPackFallsBackToScalars(t *testing.T) {
	h := newHarness(t)
	h.store.AddShape("s", scene.NewShape(scene.PBR, scene.Sphere))
	require.NoError(t, h.store.SetTexturePackForShape(9, "s"))

	h.frame(forward(), 0)
	assert.Equal(t, int32(0), h.rec.Uniforms("pbr", "packEnabled")[0].Int)
	for _, b := range h.rec.Ops("BindTexture") {
		assert.NotEqual(t, "pbr", b.Program)
	}
}

func TestPhongTexture(t *testing.T) {
	h := newHarness(t)
	h.res.textures[1] = 300
	sh := scene.NewShape(scene.Phong, scene.Cube)
	sh.Texture = 1
	h.store.AddShape("textured", sh)
	h.store.AddShape("plain", scene.NewShape(scene.Phong, scene.Cube))

	h.frame(forward(), 0)
	has := h.rec.Uniforms("phong", "hasTexture")
	require.Len(t, has, 2)
	assert.Equal(t, int32(0), has[0].Int) // "plain" sorts first
	assert.Equal(t, int32(1), has[1].Int)
}

func TestPostFilterUniforms(t *testing.T) {
	h := newHarness(t)
	s := DefaultSettings()
	s.HDR = true
	s.Exposure = 2.5
	s.Filters = Filters{Saturation: 3, Blur: 0.25, Outline: 0.5, Invert: true}

	h.frame(s, 0)
	assert.Equal(t, int32(1), h.rec.Uniforms("tonemap", "hdrOn")[0].Int)
	assert.Equal(t, float32(2.5), h.rec.Uniforms("tonemap", "exposure")[0].Float)
	assert.Equal(t, float32(1), h.rec.Uniforms("post", "t_saturation")[0].Float)
	assert.Equal(t, float32(0.25), h.rec.Uniforms("post", "t_blur")[0].Float)
	assert.Equal(t, float32(0.5), h.rec.Uniforms("post", "t_outline")[0].Float)
	assert.Equal(t, int32(1), h.rec.Uniforms("post", "t_invert")[0].Int)
}

func TestModels(t *testing.T) {
	h := newHarness(t)
	meshes := h.rec.LiveMeshes()
	texCount := h.rec.LiveTextures()

	m := &scene.Model{
		Name:      "Backpack",
		Transform: core.NewTransform(),
		Meshes: []*scene.Mesh{
			{Name: "body", Data: scene.CreateCube(1), Diffuse: &scene.Image{Width: 1, Height: 1, Pixels: []byte{1, 2, 3, 4}}},
			{Name: "strap", Data: scene.CreateQuad()},
		},
	}
	require.NoError(t, h.c.AddModel("Backpack", m))
	assert.Equal(t, []string{"Backpack"}, h.c.Models())
	assert.Equal(t, meshes+2, h.rec.LiveMeshes())
	assert.Equal(t, texCount+1, h.rec.LiveTextures())

	h.frame(forward(), 0)
	assert.Len(t, h.rec.Draws("model"), 2)

	assert.True(t, h.c.RemoveModel("Backpack"))
	assert.False(t, h.c.RemoveModel("Backpack"))
	assert.Equal(t, meshes, h.rec.LiveMeshes())
	assert.Equal(t, texCount, h.rec.LiveTextures())
}

func TestComposerResize(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, h.c.Resize(640+i*10, 480))
	}
	assert.Equal(t, oneOfEach, h.rec.LiveTargets())

	h.frame(DefaultSettings(), 0)
	post := h.rec.Ops("BindTarget")
	assert.Equal(t, "", post[len(post)-1].Name)
}

func TestComposerCloseReleasesEverything(t *testing.T) {
	rec := gputest.NewRecorder()
	res := &fakeResources{envs: map[textures.EnvID]gpu.Texture{1: 5}}
	c, err := NewComposer(rec, scene.NewStore(), res, Options{Width: 100, Height: 100}, quietLogger())
	require.NoError(t, err)
	require.NoError(t, c.SetEnvironment(1))
	require.NoError(t, c.AddModel("m", &scene.Model{Meshes: []*scene.Mesh{{Data: scene.CreateQuad()}}}))

	c.Close()
	assert.Empty(t, rec.LiveTargets())
	assert.Zero(t, rec.LivePrograms())
	assert.Zero(t, rec.LiveMeshes())
	assert.Zero(t, rec.LiveTextures())
}

func TestNewComposerFailsOnIncompleteTarget(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.FailTarget = "gbuffer"
	_, err := NewComposer(rec, scene.NewStore(), nil, Options{Width: 100, Height: 100}, quietLogger())
	assert.ErrorIs(t, err, gpu.ErrIncompleteTarget)
	assert.Empty(t, rec.LiveTargets())
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
