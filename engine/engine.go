package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/Carmen-Shannon/hyako/engine/camera"
	"github.com/Carmen-Shannon/hyako/engine/config"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/profiler"
	"github.com/Carmen-Shannon/hyako/engine/renderer"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/scene"
	"github.com/Carmen-Shannon/hyako/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// zoomStep is the fraction of the eye distance covered by one scroll notch.
	zoomStep float32 = 0.1
	// speedStep multiplies or divides the animator speed on each arrow key press.
	speedStep float32 = 1.25
)

// engine implements the Engine interface.
// Coordinates the tick goroutine, the render goroutine and the window thread.
type engine struct {
	tickRateChannel chan time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel  chan struct{}
	quitOnce     sync.Once
	shutdownOnce sync.Once
	cancel       context.CancelFunc

	cfgMu      sync.RWMutex
	cfg        config.Config
	cfgSet     bool
	configPath string
	hotReload  bool

	window     window.Window
	windowOpts []window.WindowBuilderOption
	renderer   renderer.Renderer
	scene      scene.Scene

	logger *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine owns the window, the renderer and the scene, and runs the frame loop: a fixed-rate
// tick goroutine advancing the scene's animator, a render goroutine drawing scene frames, and
// the window message loop on the calling thread.
type Engine interface {
	// Window returns the output window.
	Window() window.Window

	// Renderer returns the GPU renderer.
	Renderer() renderer.Renderer

	// Scene returns the rendered scene.
	Scene() scene.Scene

	// Config returns the configuration the engine was built from.
	Config() config.Config

	// ApplyConfig applies the reloadable parts of a configuration: lighting constants, shadow
	// sampling, the light marker, light color and shadow casting, camera lens and clear color.
	// Renderer resources sized at setup (MSAA, ring size, draw capacity, shadow resolution) are
	// not changed. Hot reload calls this with every valid file change.
	//
	// Parameters:
	//   - cfg: the new configuration
	//
	// Returns:
	//   - error: wraps config.ErrInvalid when cfg does not validate; nothing is applied then
	ApplyConfig(cfg config.Config) error

	// EnableProfiler enables periodic frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetTickRate sets the scene update rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called each tick after the scene is updated.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	SetRenderFrameLimit(fps float64)

	// Run starts the tick and render goroutines and the config watcher, then runs the window
	// message loop on the calling goroutine. It returns when the window closes, ctx is done or
	// Quit is called, after every GPU and window resource has been released.
	//
	// Parameters:
	//   - ctx: cancels the run
	//
	// Returns:
	//   - error: nil on a normal shutdown
	Run(ctx context.Context) error

	// Quit signals all engine goroutines to stop. Safe to call multiple times.
	Quit()
}

// NewEngine loads the configuration, opens the window, creates and sets up the renderer, and
// builds the scene. Without WithConfig or WithConfigPath the defaults from config.Default are
// used. It must be called on the goroutine that will call Run.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the engine, ready to Run
//   - error: an error if the config is invalid or a window, device or pipeline could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		logger:          slog.Default(),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	e.profiler = profiler.NewProfiler(profiler.DefaultInterval, e.logger)

	if err := e.loadConfig(); err != nil {
		return nil, err
	}

	if e.window == nil {
		w, err := window.NewWindow(append([]window.WindowBuilderOption{window.WithLogger(e.logger)}, e.windowOpts...)...)
		if err != nil {
			return nil, err
		}
		e.window = w
	}

	rendererOpts := append(e.cfg.Renderer.Options(), e.cfg.Shadow.RendererOptions()...)
	rendererOpts = append(rendererOpts, renderer.WithLogger(e.logger))
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, rendererOpts...)
	if err != nil {
		_ = e.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if err := r.Setup(); err != nil {
		r.Release()
		_ = e.window.Close()
		return nil, fmt.Errorf("renderer setup failed: %w", err)
	}
	e.renderer = r

	if e.scene == nil {
		s, err := newSceneFromConfig(e.cfg, e.logger)
		if err != nil {
			r.Release()
			_ = e.window.Close()
			return nil, err
		}
		e.scene = s
	}
	if w, h := e.window.Width(), e.window.Height(); w > 0 && h > 0 {
		e.scene.Camera().SetAspect(float32(w) / float32(h))
	}

	e.window.SetResizeCallback(func(width, height int) {
		if err := e.renderer.Resize(width, height); err != nil {
			e.logger.Error("resize failed", "width", width, "height", height, "error", err)
		}
		e.scene.Camera().SetAspect(float32(width) / float32(height))
	})
	e.window.SetScrollCallback(func(delta float32) {
		zoom(e.scene.Camera(), delta)
	})
	e.window.SetKeyDownCallback(e.handleKey)

	return e, nil
}

// loadConfig resolves the starting configuration: a file, an explicit value, or the defaults.
func (e *engine) loadConfig() error {
	switch {
	case e.configPath != "":
		cfg, err := config.Load(e.configPath)
		if err != nil {
			return err
		}
		e.cfg = cfg
		e.logger.Info("config loaded", "path", e.configPath)
	case e.cfgSet:
		if err := e.cfg.Validate(); err != nil {
			return err
		}
	default:
		e.cfg = config.Default()
	}
	return nil
}

// newSceneFromConfig builds the scene described by a validated configuration.
func newSceneFromConfig(cfg config.Config, logger *slog.Logger) (scene.Scene, error) {
	cam := camera.NewCamera(
		camera.WithEye(cfg.Camera.Eye),
		camera.WithTarget(cfg.Camera.Target),
		camera.WithUp(cfg.Camera.Up),
		camera.WithFov(mgl32.DegToRad(cfg.Camera.Fov)),
		camera.WithNear(cfg.Camera.Near),
		camera.WithFar(cfg.Camera.Far),
	)
	l := light.NewLight(
		light.WithPosition(cfg.Light.Position),
		light.WithColor(cfg.Light.Color),
		light.WithCastsShadows(cfg.Light.CastsShadows),
		light.WithLogger(logger),
	)
	s, err := scene.NewScene(
		scene.WithCamera(cam),
		scene.WithLight(l),
		scene.WithLightingModel(light.NewLightingModel(cfg.Lighting, logger)),
		scene.WithGizmo(material.NewLightGizmoMaterial(cfg.Gizmo, material.WithLogger(logger))),
		scene.WithShadowResolution(cfg.Shadow.Resolution),
		scene.WithSamplerConfig(cfg.Shadow.SamplerConfig()),
		scene.WithShadowWorkers(cfg.Shadow.Workers),
		scene.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	return s, nil
}

// applySceneConfig pushes the reloadable parts of cfg into a scene.
func applySceneConfig(s scene.Scene, cfg config.Config, logger *slog.Logger) error {
	if err := s.SetSamplerConfig(cfg.Shadow.SamplerConfig()); err != nil {
		return err
	}
	s.SetLightingModel(light.NewLightingModel(cfg.Lighting, logger))
	s.Gizmo().SetConfig(cfg.Gizmo)
	s.Light().SetColor(cfg.Light.Color)
	s.Light().SetCastsShadows(cfg.Light.CastsShadows)

	cam := s.Camera()
	cam.SetFov(mgl32.DegToRad(cfg.Camera.Fov))
	cam.SetNear(cfg.Camera.Near)
	cam.SetFar(cfg.Camera.Far)
	return nil
}

func (e *engine) ApplyConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := applySceneConfig(e.scene, cfg, e.logger); err != nil {
		return err
	}
	if e.renderer != nil {
		e.renderer.SetClearColor(cfg.Renderer.Clear())
		e.renderer.SetPresentMode(cfg.Renderer.Mode())
	}
	e.cfgMu.Lock()
	e.cfg = cfg
	e.cfgMu.Unlock()
	e.logger.Info("config applied")
	return nil
}

// zoom moves the camera eye along the view direction. Positive delta moves closer. The
// distance stays within (2*near, far/2).
func zoom(cam camera.Camera, delta float32) {
	offset := cam.Eye().Sub(cam.Target())
	dist := offset.Len()
	if dist == 0 {
		return
	}
	next := common.Clamp(dist*(1-zoomStep*delta), 2*cam.Near(), cam.Far()/2)
	cam.SetEye(cam.Target().Add(offset.Mul(next / dist)))
}

// handleKey maps key presses to animation and lighting toggles.
func (e *engine) handleKey(keyCode uint32) {
	anim := e.scene.Animator()
	switch keyCode {
	case common.KeySpace:
		if anim.Paused() {
			anim.Resume()
		} else {
			anim.Pause()
		}
	case common.KeyR:
		anim.Reset()
	case common.KeyL:
		l := e.scene.Light()
		l.SetCastsShadows(!l.CastsShadows())
		e.logger.Info("light shadows toggled", "casts_shadows", l.CastsShadows())
	case common.KeyUp:
		if err := anim.SetSpeed(anim.Speed() * speedStep); err != nil {
			e.logger.Warn("animator speed rejected", "error", err)
		}
	case common.KeyDown:
		if err := anim.SetSpeed(anim.Speed() / speedStep); err != nil {
			e.logger.Warn("animator speed rejected", "error", err)
		}
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Config() config.Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg
}

func (e *engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running.Store(true)

	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit(ctx)

	if e.hotReload && e.configPath != "" {
		e.wg.Add(1)
		go e.watchConfig(ctx)
	}

	// The message loop must stay on this thread; when a quit arrives from another goroutine
	// the window is closed from inside the loop.
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.shutdown()
		default:
		}
	})
	e.window.ProcessMessages()

	e.signalQuit()
	e.shutdown()
	return nil
}

// shutdown waits for the engine goroutines and releases the scene, the renderer and the window,
// in that order. Runs once.
func (e *engine) shutdown() {
	e.shutdownOnce.Do(func() {
		e.wg.Wait()
		e.scene.Close()
		e.renderer.Release()
		if err := e.window.Close(); err != nil {
			e.logger.Warn("window close failed", "error", err)
		}
		e.logger.Info("engine stopped")
	})
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel and cancels the run context. Runs once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		if e.cancel != nil {
			e.cancel()
		}
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop: advances the scene, then calls the tick callback.
// Listens for rate changes on tickRateChannel.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.scene.Update(dt)
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender draws scene frames until quit, optionally frame-limited. A panic stops the
// engine instead of the process.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	var lastErr string

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		err := e.renderer.RenderFrame(e.scene.Frame())
		lastErr = e.reportRenderError(err, lastErr)

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}
		if e.profilingEnabled.Load() {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// reportRenderError logs a frame error once per distinct message so a persistent condition
// does not flood the log. It returns the message to compare against next frame.
func (e *engine) reportRenderError(err error, last string) string {
	if err == nil {
		if last != "" {
			e.logger.Info("rendering recovered")
		}
		return ""
	}
	msg := err.Error()
	if msg == last {
		return last
	}
	if errors.Is(err, renderer.ErrDrawStreamFull) {
		e.logger.Warn("draws skipped", "error", err)
	} else {
		e.logger.Error("frame failed", "error", err)
	}
	return msg
}

// handleQuit turns cancellation of the run context into a quit.
func (e *engine) handleQuit(ctx context.Context) {
	defer e.wg.Done()
	select {
	case <-ctx.Done():
		e.signalQuit()
	case <-e.quitChannel:
	}
}

// watchConfig applies every valid change of the config file until the run ends.
func (e *engine) watchConfig(ctx context.Context) {
	defer e.wg.Done()
	err := config.Watch(ctx, e.configPath, func(cfg config.Config) {
		if err := e.ApplyConfig(cfg); err != nil {
			e.logger.Warn("config not applied", "error", err)
		}
	}, config.WithLogger(e.logger))
	if err != nil {
		e.logger.Error("config watcher stopped", "error", err)
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the tick rate. If the engine is running, the change takes effect at the
// next tick.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Replace any pending value.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

var _ Engine = &engine{}
