package renderer

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Higher values (MSAA8x, MSAA16x) are adapter-dependent and may not be supported
// by all hardware.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the color the main pass clears to. Defaults to DefaultClearColor.
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithFramesInFlight sets the number of per-frame uniform copies. Setup rejects values outside
// MinFramesInFlight and MaxFramesInFlight.
//
// Parameters:
//   - n: the ring size
//
// Returns:
//   - RendererBuilderOption: the option
func WithFramesInFlight(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.framesInFlight = n
	}
}

// WithMaxDrawsPerFrame sets the draw stream capacity. Draws past it are skipped with
// ErrDrawStreamFull.
//
// Parameters:
//   - n: the number of draw slots per frame, shadow draws included
//
// Returns:
//   - RendererBuilderOption: the option
func WithMaxDrawsPerFrame(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.maxDrawsPerFrame = n
	}
}

// WithShadowResolution sets the side of the square shadow map in texels.
func WithShadowResolution(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowResolution = n
	}
}

// WithShadowFollowOutput makes the shadow map track the surface size, recreating it on resize.
func WithShadowFollowOutput(follow bool) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowFollowOutput = follow
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
