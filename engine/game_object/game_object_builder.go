package game_object

import (
	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID overrides the generated ID.
//
// Parameters:
//   - id: the object ID
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the ID option to a game object
func WithID(id uuid.UUID) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.id = id
	}
}

// WithEnabled sets whether the object starts visible.
//
// Parameters:
//   - enabled: true to draw the object
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the enabled option to a game object
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}

// WithCastsShadow sets whether the object is rendered into the shadow map.
func WithCastsShadow(casts bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.castsShadow.Store(casts)
	}
}

// WithTransform sets the initial transform.
func WithTransform(t transform.Transform) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform = t
	}
}

// WithPosition sets the initial translation.
//
// Parameters:
//   - p: the world-space translation
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the position option to a game object
func WithPosition(p mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Translation = p
	}
}

// WithScale sets the initial per-axis scale.
func WithScale(s mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Scale = s
	}
}

// WithRotation sets the initial orientation.
func WithRotation(q mgl32.Quat) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Rotation = q
	}
}
