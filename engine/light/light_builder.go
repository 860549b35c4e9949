package light

import (
	"log/slog"

	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithTransform is an option builder that sets the full transform of the light.
//
// Parameters:
//   - t: the light transform
//
// Returns:
//   - LightBuilderOption: a function that applies the transform option to a lightImpl
func WithTransform(t transform.Transform) LightBuilderOption {
	return func(l *lightImpl) {
		l.transform = t
	}
}

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(p mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.transform.Translation = p
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - c: color as (r, g, b)
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(c mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithCastsShadows is an option builder that sets whether the light is used for the shadow pass.
//
// Parameters:
//   - castsShadows: true to enable shadow casting
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow casting option to a lightImpl
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

// WithLogger sets the logger used for light warnings.
func WithLogger(logger *slog.Logger) LightBuilderOption {
	return func(l *lightImpl) {
		l.logger = logger
	}
}
