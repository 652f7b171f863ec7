// Command scene-editor opens the editor window on the scene described by a
// TOML configuration file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"scene-editor/audio"
	"scene-editor/config"
	"scene-editor/core"
	"scene-editor/editor"
	"scene-editor/internal/opengl"
	"scene-editor/math"
	"scene-editor/platform"
	"scene-editor/renderer"
	"scene-editor/scene"
	"scene-editor/textures"
)

func main() {
	configPath := flag.String("config", "scene-editor.toml", "path to the TOML configuration")
	scenePath := flag.String("scene", "scene.json", "scene file for Ctrl+S / Ctrl+O; loaded at startup when present")
	flag.Parse()

	if err := run(*configPath, *scenePath); err != nil {
		fmt.Fprintf(os.Stderr, "scene-editor: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, scenePath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	wcfg := platform.DefaultWindowConfig()
	wcfg.Width, wcfg.Height = cfg.Window.Width, cfg.Window.Height
	wcfg.Title = cfg.Window.Title
	wcfg.VSync = cfg.Window.VSync
	window, err := platform.NewWindow(wcfg)
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := opengl.NewDevice(log)
	if err != nil {
		return err
	}

	res := cfg.Resources
	texMgr := textures.NewManager(dev, res.Path(res.TexturePacks), log)
	defer texMgr.Close()
	loadTextures(texMgr, res, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var packWatch *textures.Watcher
	if res.WatchPacks {
		packWatch, err = textures.Watch(ctx, res.Path(res.TexturePackList), log)
		if err != nil {
			log.Warn("texture pack list not watched", "err", err)
		} else {
			defer packWatch.Close()
		}
	}

	tracks, err := audio.LoadTracklist(res.Path(res.Music))
	if err != nil {
		log.Warn("track list unreadable", "err", err)
	}
	player := audio.NewPlayer(tracks, log)
	defer player.Close()

	store := scene.NewStore()
	defaultScene(store, texMgr)

	settings := renderer.DefaultSettings()
	applyRenderConfig(&settings, cfg.Render)

	composer, err := renderer.NewComposer(dev, store, texMgr, renderer.Options{
		Width:  window.Width,
		Height: window.Height,
		Targets: renderer.TargetConfig{
			ShadowSize:  cfg.Render.ShadowSize,
			CaptureSize: cfg.Render.CaptureSize,
		},
	}, log)
	if err != nil {
		return err
	}
	defer composer.Close()

	if sky, ok := texMgr.Cubemap("skybox"); ok {
		composer.SetSkybox(sky)
	}
	for _, env := range res.HDR {
		if id, ok := texMgr.HDREnvironment(env.Name, 0); ok {
			if err := composer.SetEnvironment(id); err != nil {
				log.Warn("environment capture failed", "env", env.Name, "err", err)
			}
			break
		}
	}
	for _, mc := range res.Models {
		m, err := scene.LoadModel(mc.Name, res.Path(mc.Path), log)
		if err != nil {
			log.Warn("model skipped", "model", mc.Name, "err", err)
			continue
		}
		m.Transform.Position = math.Vec3{X: mc.Position[0], Y: mc.Position[1], Z: mc.Position[2]}
		if mc.Scale > 0 {
			m.Transform.Scale = math.Splat(mc.Scale)
		}
		if err := composer.AddModel(mc.Name, m); err != nil {
			return err
		}
	}

	window.OnResize(func(w, h int) {
		// A minimized window reports 0x0; keep the last targets until it returns.
		if w == 0 || h == 0 {
			return
		}
		if err := composer.Resize(w, h); err != nil {
			log.Error("resize failed", "width", w, "height", h, "err", err)
		}
	})

	ed := editor.NewEditor(window, store, &settings, log)
	ed.Packs = texMgr
	ed.Music = player
	ed.ScenePath = scenePath
	if _, err := os.Stat(scenePath); err == nil {
		if err := ed.LoadScene(); err != nil {
			log.Warn("starting with the default scene", "err", err)
		}
	}

	log.Info("editor ready", "shapes", store.Len(), "packs", len(texMgr.PackNames()), "tracks", len(player.Tracks()))

	last := window.Time()
	status := ""
	for !window.ShouldClose() {
		now := window.Time()
		dt := float32(now - last)
		last = now

		window.PollEvents()
		if window.IsKeyPressed(core.KeyEscape) {
			window.Close()
		}
		if packWatch != nil && packWatch.Changed() {
			if n, err := texMgr.LoadTexturePacks(res.Path(res.TexturePackList)); err != nil {
				log.Warn("texture pack reload failed", "err", err)
			} else if n > 0 {
				log.Info("texture packs reloaded", "new", n)
			}
		}

		ed.Tick(composer, float32(now), dt, window.Aspect(), player.Amplitude())
		if ed.StatusText != status {
			status = ed.StatusText
			window.SetTitle(cfg.Window.Title + " - " + status)
		}
		window.SwapBuffers()
	}
	return nil
}

// loadTextures loads everything optional from disk. Failures are logged;
// the editor runs with whatever loaded.
func loadTextures(m *textures.Manager, res config.Resources, log *slog.Logger) {
	if n, err := m.LoadTexturePacks(res.Path(res.TexturePackList)); err != nil {
		log.Warn("texture pack list unreadable", "err", err)
	} else {
		log.Debug("texture packs loaded", "count", n)
	}
	for name, path := range res.Textures {
		if _, err := m.LoadTexture(name, res.Path(path)); err != nil {
			log.Warn("texture skipped", "texture", name, "err", err)
		}
	}
	if faces, ok := res.SkyboxFaces(); ok {
		if _, err := m.LoadCubemap("skybox", faces); err != nil {
			log.Warn("skybox skipped", "err", err)
		}
	}
	for _, env := range res.HDR {
		if _, err := m.LoadHDREnvironment(env.Name, res.Path(env.Path)); err != nil {
			log.Warn("environment skipped", "env", env.Name, "err", err)
		}
	}
}

func defaultScene(store *scene.Store, packs *textures.Manager) {
	pbr := scene.NewShape(scene.PBR, scene.Sphere)
	if names := packs.PackNames(); len(names) > 0 {
		id, _ := packs.TexturePack(names[0])
		pbr.PBR.Pack, pbr.PBR.PackEnabled = id, true
	}
	store.AddShape("PBR Shape", pbr)

	light := scene.NewShape(scene.Light, scene.Sphere)
	light.Transform.Position = math.Vec3{X: 1.2, Y: 1, Z: 2}
	store.AddShape("Light Source", light)
}

func applyRenderConfig(s *renderer.Settings, r config.Render) {
	s.Deferred = r.Deferred
	s.Skybox = r.Skybox
	s.HDR = r.HDR
	s.IBL = r.IBL
	s.Shadows = r.Shadows
	s.Exposure = r.Exposure
	s.ShadowFar = r.ShadowFar
}
