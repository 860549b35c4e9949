package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/hyako/engine/animator"
	"github.com/Carmen-Shannon/hyako/engine/camera"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/shadow"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name, used in log records
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithCamera sets the scene's camera.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.camera = cam
	}
}

// WithLight sets the scene's point light.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.light = l
	}
}

// WithLightingModel sets the lighting model used by ShadeFragment.
func WithLightingModel(m light.LightingModel) SceneBuilderOption {
	return func(s *scene) {
		s.lighting = m
	}
}

// WithAnimator sets the animator advanced by Update.
func WithAnimator(a animator.Animator) SceneBuilderOption {
	return func(s *scene) {
		s.animator = a
	}
}

// WithGizmo sets the light marker material.
func WithGizmo(g material.LightGizmoMaterial) SceneBuilderOption {
	return func(s *scene) {
		s.gizmo = g
	}
}

// WithShadowResolution sets the side of the square CPU shadow map. Values below 1 are ignored.
//
// Parameters:
//   - n: the resolution in texels
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowResolution(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.shadowSize = n
		}
	}
}

// WithSamplerConfig sets the CPU shadow sampler config.
func WithSamplerConfig(cfg shadow.SamplerConfig) SceneBuilderOption {
	return func(s *scene) {
		s.samplerConfig = cfg
	}
}

// WithShadowWorkers sets the number of band workers of the CPU shadow pass. Defaults to
// runtime.NumCPU().
func WithShadowWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.shadowWorkers = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
