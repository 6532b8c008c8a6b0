package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/assets"
	"github.com/Faultbox/blockview/internal/blockdef"
	"github.com/Faultbox/blockview/internal/config"
	"github.com/Faultbox/blockview/internal/engine/camera"
	"github.com/Faultbox/blockview/internal/engine/gldevice"
	"github.com/Faultbox/blockview/internal/engine/input"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/internal/engine/window"
	"github.com/Faultbox/blockview/internal/logger"
	"github.com/Faultbox/blockview/internal/snapshot"
	"github.com/Faultbox/blockview/internal/viewer"
)

// App owns the window, the GL device and the viewer state.
type App struct {
	cfg      *config.Config
	window   *window.Window
	device   *gldevice.Device
	renderer *scene.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	scene    *scene.Scene
	cache    *assets.MeshCache
	watcher  *assets.Watcher
	viewer   *viewer.Viewer
	capture  *snapshot.Capture

	lastErr error
	log     *zap.Logger
}

// NewApp opens the catalog and creates the window and renderer.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:    cfg,
		camera: camera.NewOrbitCamera(),
		scene:  scene.New(),
		cache:  assets.NewMeshCache(),
		input:  input.New(),
		log:    logger.Named("app"),
	}

	romDir, err := filepath.Abs(cfg.Data.RomDir)
	if err != nil {
		return nil, fmt.Errorf("resolving ROM directory: %w", err)
	}
	cat, err := blockdef.Open(romDir)
	if cat == nil {
		return nil, err
	}

	format, err := cfg.Snapshot.ImageFormat()
	if err != nil {
		return nil, err
	}
	app.capture = snapshot.NewCapture(cfg.Snapshot.OutputDir, "block", format)

	// Create window (this also creates OpenGL context)
	app.window, err = window.New(window.Config{
		Title:      "Blockview",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Device and renderer need the GL context
	w, h := app.window.DrawableSize()
	app.device, err = gldevice.New(gldevice.Config{
		Width:      w,
		Height:     h,
		Samples:    int32(cfg.Window.MSAASamples),
		Background: cfg.Render.Background.Color(),
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	app.renderer, err = scene.NewRenderer(app.device, cfg.Render.Settings())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	app.camera.SetAspect(int(w), int(h))

	app.viewer = viewer.New(cat, app.scene, app.camera, app.cache, viewer.Options{
		Visibility:     cfg.View.Visibility(),
		Preview:        cfg.Render.Preview,
		CameraDefaults: cfg.Camera.Apply,
	})
	if name := cfg.Data.Definition; name != "" && !app.viewer.SelectFile(name) {
		app.log.Warn("definition not found", zap.String("file", name))
	}

	if cfg.Data.Watch {
		app.watcher, err = assets.NewWatcher(assets.DefaultDebounce)
		if err != nil {
			app.log.Warn("file watching disabled", zap.Error(err))
		}
	}

	return app, nil
}

// Run runs the main loop until the window is closed.
func (app *App) Run() error {
	frameCount := 0
	fpsTimer := time.Now()

	app.log.Info("starting main loop", zap.Int("definitions", app.viewer.Catalog().Len()))

	for {
		// 1. Process input
		quit := app.input.Update()
		frame := app.input.Frame()

		if frame.Resized {
			w, h := app.window.DrawableSize()
			app.device.Resize(w, h)
			app.camera.SetAspect(int(w), int(h))
		}

		fx := app.viewer.Apply(frame.Commands)
		if quit || fx.Quit {
			return nil
		}
		if fx.PreviewChanged {
			s := app.renderer.Settings()
			s.Preview = app.viewer.Preview()
			app.renderer.SetSettings(s)
		}
		app.camera.Control(frame.Camera)

		// 2. Pick up changed files and rebuild
		if app.watcher != nil {
			if changed := app.watcher.Drain(); len(changed) > 0 {
				app.viewer.Invalidate(changed)
			}
		}
		if app.viewer.Update() {
			app.afterBuild()
		}

		// 3. Render
		app.renderer.Sync(app.scene, app.camera)
		if err := app.renderer.LastError(); err != nil && err != app.lastErr {
			app.log.Error("upload failed, showing previous scene", zap.Error(err))
		}
		app.lastErr = app.renderer.LastError()

		if fx.Snapshot {
			app.saveSnapshot()
		}

		// 4. Present
		w, h := app.window.DrawableSize()
		app.device.Present(w, h)
		app.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			app.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

func (app *App) afterBuild() {
	app.window.SetTitle(app.viewer.Title())

	if err := app.viewer.Err(); err != nil {
		app.log.Warn("definition shown incomplete", zap.Error(err))
	}

	if app.watcher == nil {
		return
	}
	for _, dir := range app.viewer.WatchDirs() {
		if err := app.watcher.Add(dir); err != nil {
			app.log.Warn("cannot watch directory", zap.Error(err))
		}
	}
}

func (app *App) saveSnapshot() {
	if d := app.viewer.Selected(); d != nil {
		app.capture.Prefix = strings.TrimSuffix(d.Filename, filepath.Ext(d.Filename))
	}
	pixels, w, h := app.device.ReadPixels()
	path, err := app.capture.SaveGLPixels(pixels, int(w), int(h))
	if err != nil {
		app.log.Error("snapshot failed", zap.Error(err))
		return
	}
	app.log.Info("snapshot saved", zap.String("path", path))
}

// Close releases GPU resources while the context is current, then the window.
func (app *App) Close() {
	app.log.Info("closing viewer")

	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.log.Warn("closing watcher", zap.Error(err))
		}
		app.watcher = nil
	}
	if app.renderer != nil {
		app.renderer.Destroy()
		app.renderer = nil
	}
	if app.device != nil {
		if err := app.device.Destroy(); err != nil {
			for _, e := range multierr.Errors(err) {
				app.log.Warn("releasing GPU resources", zap.Error(e))
			}
		}
		app.device = nil
	}
	if app.window != nil {
		app.window.Close()
		app.window = nil
	}

	stats := app.cache.Stats()
	app.log.Debug("mesh cache",
		zap.Int("entries", stats.Entries),
		zap.Int("hits", stats.Hits),
		zap.Int("misses", stats.Misses),
		zap.Int("errors", stats.Errors))
}
