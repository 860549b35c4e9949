// Package light holds the scene's point light and the Blinn-Phong lighting model used to shade lit geometry.
package light

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu     *sync.RWMutex
	logger *slog.Logger

	transform    transform.Transform
	color        mgl32.Vec3
	castsShadows bool
}

// Light defines the interface for a point light source in the scene.
//
// A light is described by a full transform plus an RGB color. Only the translation of
// the composed transform matters for shading: it is the light's world position. Rotation
// and scale are carried so the light can be animated and drawn like any other object.
//
// Light satisfies the animator's Target interface through Transform and SetTransform.
type Light interface {
	// Transform returns a copy of the light's transform.
	//
	// Returns:
	//   - transform.Transform: the light transform
	Transform() transform.Transform

	// SetTransform replaces the light's transform. A non-unit rotation is stored as given
	// and logged at warn level, since the composed matrix will not be rigid.
	//
	// Parameters:
	//   - t: the new transform
	SetTransform(t transform.Transform)

	// Position returns the light's world position, the translation column of its composed matrix.
	//
	// Returns:
	//   - mgl32.Vec3: world-space position
	Position() mgl32.Vec3

	// SetPosition moves the light without touching rotation or scale.
	//
	// Parameters:
	//   - p: the new world-space position
	SetPosition(p mgl32.Vec3)

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - c: color as (r, g, b)
	SetColor(c mgl32.Vec3)

	// CastsShadows returns whether the shadow pass renders from this light.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// SetCastsShadows sets whether the shadow pass renders from this light.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)

	// GPU returns the light uniform for upload.
	//
	// Returns:
	//   - GPULight: the 64-byte light uniform
	GPU() GPULight
}

var _ Light = &lightImpl{}

// NewLight creates a new point light at the origin with a white color and shadow casting enabled.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:           &sync.RWMutex{},
		transform:    transform.Identity(),
		color:        mgl32.Vec3{1, 1, 1},
		castsShadows: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.logger = l.logger.With("component", "light")
	l.checkRotation(l.transform)
	return l
}

func (l *lightImpl) Transform() transform.Transform {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.transform
}

func (l *lightImpl) SetTransform(t transform.Transform) {
	l.checkRotation(t)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transform = t
}

func (l *lightImpl) Position() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.transform.Position()
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transform.Translation = p
}

func (l *lightImpl) Color() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = c
}

func (l *lightImpl) CastsShadows() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.castsShadows
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.castsShadows = castsShadows
}

func (l *lightImpl) GPU() GPULight {
	return ToGPULight(l)
}

func (l *lightImpl) checkRotation(t transform.Transform) {
	if _, changed := transform.NormalizedChecked(t.Rotation); changed {
		l.logger.Warn("light rotation is not a unit quaternion; composed matrix will not be rigid",
			"rotation", t.Rotation, "length", t.Rotation.Len())
	}
}
