package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/hyako/engine/config"
	"github.com/Carmen-Shannon/hyako/engine/scene"
	"github.com/Carmen-Shannon/hyako/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the configuration directly. It is validated by NewEngine. WithConfigPath
// takes precedence.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
		e.cfgSet = true
	}
}

// WithConfigPath loads the configuration from a YAML or TOML file.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfigPath(path string) EngineBuilderOption {
	return func(e *engine) {
		e.configPath = path
	}
}

// WithHotReload watches the WithConfigPath file while running and applies every valid change.
func WithHotReload(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.hotReload = enabled
	}
}

// WithProfiling enables or disables periodic frame statistics.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the scene update rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets a pre-configured window rather than letting the engine open one.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions sets the options for the window the engine opens. Ignored with WithWindow.
func WithWindowOptions(opts ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOpts = append(e.windowOpts, opts...)
	}
}

// WithScene sets a pre-built scene rather than building one from the configuration.
//
// Parameters:
//   - s: the Scene to render
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithLogger sets the logger passed to every component. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
