package renderer

import (
	"fmt"
	"log/slog"

	"scene-editor/internal/gpu"
)

type programID int

const (
	progGlowy programID = iota
	progPhong
	progPBR
	progLight
	progGBuffer
	progLighting
	progOutline
	progShadow
	progSkybox
	progBackground
	progCapture
	progTonemap
	progPost
	progModel
	numPrograms
)

type programSource struct {
	name     string
	vertex   string
	fragment string
}

var programSources = [numPrograms]programSource{
	progGlowy:      {"glowy", meshVertSrc, glowyFragSrc},
	progPhong:      {"phong", meshVertSrc, phongFragSrc},
	progPBR:        {"pbr", meshVertSrc, pbrFragSrc},
	progLight:      {"light", meshVertSrc, lightFragSrc},
	progGBuffer:    {"gbuffer", meshVertSrc, gbufferFragSrc},
	progLighting:   {"lighting", screenVertSrc, lightingFragSrc},
	progOutline:    {"outline", outlineVertSrc, outlineFragSrc},
	progShadow:     {"shadow", shadowVertSrc, shadowFragSrc},
	progSkybox:     {"skybox", skyVertSrc, skyboxFragSrc},
	progBackground: {"background", skyVertSrc, equirectFragSrc},
	progCapture:    {"capture", captureVertSrc, equirectFragSrc},
	progTonemap:    {"tonemap", screenVertSrc, tonemapFragSrc},
	progPost:       {"post", screenVertSrc, postFragSrc},
	progModel:      {"model", meshVertSrc, modelFragSrc},
}

// Texture units shared by every program.
const (
	unitShadow = 4
	unitEnv    = 6
)

// pack channel samplers, units 0-5 in textures.Channel order
var packSamplers = [...]string{"albedoMap", "normalMap", "roughnessMap", "metallicMap", "heightMap", "aoMap"}

// Programs holds every compiled shader program.
type Programs struct {
	dev  gpu.Device
	byID [numPrograms]gpu.Program
}

// NewPrograms compiles every program and binds its samplers to fixed units.
// On failure the programs built so far are deleted.
func NewPrograms(dev gpu.Device, log *slog.Logger) (*Programs, error) {
	p := &Programs{dev: dev}
	for id, src := range programSources {
		prog, err := dev.CompileProgram(src.name, src.vertex, src.fragment)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("program %s: %w", src.name, err)
		}
		p.byID[id] = prog
	}
	p.bindSamplers()
	log.With("component", "programs").Debug("programs compiled", "count", int(numPrograms))
	return p, nil
}

func (p *Programs) bindSamplers() {
	set := func(id programID, name string, unit int32) {
		p.dev.UseProgram(p.byID[id])
		p.dev.SetInt(p.byID[id], name, unit)
	}
	set(progPhong, "diffuseTexture", 0)
	set(progModel, "diffuseTexture", 0)
	for _, id := range []programID{progPBR, progGBuffer} {
		for unit, name := range packSamplers {
			set(id, name, int32(unit))
		}
	}
	set(progPBR, "envMap", unitEnv)
	for unit, name := range []string{"gPosition", "gNormal", "gAlbedo", "gRoughMetalAO"} {
		set(progLighting, name, int32(unit))
	}
	set(progLighting, "shadowMap", unitShadow)
	set(progLighting, "envMap", unitEnv)
	set(progSkybox, "skybox", 0)
	set(progBackground, "equirectMap", 0)
	set(progCapture, "equirectMap", 0)
	set(progTonemap, "hdrBuffer", 0)
	set(progPost, "screenTexture", 0)
}

func (p *Programs) get(id programID) gpu.Program { return p.byID[id] }

// use binds the program and returns its handle.
func (p *Programs) use(id programID) gpu.Program {
	p.dev.UseProgram(p.byID[id])
	return p.byID[id]
}

func (p *Programs) Close() {
	for id, prog := range p.byID {
		if prog != 0 {
			p.dev.DeleteProgram(prog)
			p.byID[id] = 0
		}
	}
}
