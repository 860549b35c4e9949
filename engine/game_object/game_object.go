package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// gameObject is the implementation of the GameObject interface.
type gameObject struct {
	id          uuid.UUID
	enabled     atomic.Bool
	castsShadow atomic.Bool
	mdl         model.Model
	mat         material.Material

	mu        sync.RWMutex
	transform transform.Transform
}

// GameObject is one mesh drawn with one material at one transform. It satisfies the
// animator's Target interface, so trajectories can move it.
// Thread-safe for concurrent access.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uuid.UUID: the object ID
	ID() uuid.UUID

	// Enabled reports whether the object is drawn and casts shadows.
	Enabled() bool

	// SetEnabled shows or hides the object.
	SetEnabled(enabled bool)

	// Model returns the mesh.
	Model() model.Model

	// Material returns the material the mesh is drawn with.
	Material() material.Material

	// CastsShadow reports whether the object is rendered into the shadow map.
	CastsShadow() bool

	// SetCastsShadow sets whether the object is rendered into the shadow map.
	SetCastsShadow(casts bool)

	// Transform returns a copy of the object's transform.
	//
	// Returns:
	//   - transform.Transform: the current transform
	Transform() transform.Transform

	// SetTransform replaces the object's transform.
	//
	// Parameters:
	//   - t: the new transform
	SetTransform(t transform.Transform)

	// SetPosition moves the object without touching rotation or scale.
	//
	// Parameters:
	//   - p: the new world-space translation
	SetPosition(p mgl32.Vec3)

	// ModelMatrix composes the current transform.
	//
	// Returns:
	//   - mgl32.Mat4: the model-to-world matrix
	ModelMatrix() mgl32.Mat4
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled, shadow-casting object with the identity transform and a
// fresh ID.
//
// Parameters:
//   - mdl: the mesh
//   - mat: the material
//   - options: variadic list of GameObjectBuilderOption functions
//
// Returns:
//   - GameObject: the new object
func NewGameObject(mdl model.Model, mat material.Material, options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		id:        uuid.New(),
		mdl:       mdl,
		mat:       mat,
		transform: transform.Identity(),
	}
	obj.enabled.Store(true)
	obj.castsShadow.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uuid.UUID {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Material() material.Material {
	return g.mat
}

func (g *gameObject) CastsShadow() bool {
	return g.castsShadow.Load()
}

func (g *gameObject) SetCastsShadow(casts bool) {
	g.castsShadow.Store(casts)
}

func (g *gameObject) Transform() transform.Transform {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.transform
}

func (g *gameObject) SetTransform(t transform.Transform) {
	g.mu.Lock()
	g.transform = t
	g.mu.Unlock()
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.mu.Lock()
	g.transform.Translation = p
	g.mu.Unlock()
}

func (g *gameObject) ModelMatrix() mgl32.Mat4 {
	return g.Transform().Matrix()
}
