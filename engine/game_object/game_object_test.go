package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameObject_Defaults(t *testing.T) {
	mat, err := material.NewLitMaterial()
	require.NoError(t, err)
	cube := model.NewCube(1)

	obj := NewGameObject(cube, mat)
	assert.NotEqual(t, uuid.Nil, obj.ID())
	assert.True(t, obj.Enabled())
	assert.True(t, obj.CastsShadow())
	assert.Same(t, cube, obj.Model())
	assert.Equal(t, transform.Identity(), obj.Transform())
	assert.Equal(t, mgl32.Ident4(), obj.ModelMatrix())

	other := NewGameObject(cube, mat)
	assert.NotEqual(t, obj.ID(), other.ID())
}

func TestNewGameObject_Options(t *testing.T) {
	id := uuid.New()
	obj := NewGameObject(model.NewPlane(4), nil,
		WithID(id),
		WithEnabled(false),
		WithCastsShadow(false),
		WithPosition(mgl32.Vec3{1, 2, 3}),
		WithScale(mgl32.Vec3{2, 2, 2}),
	)
	assert.Equal(t, id, obj.ID())
	assert.False(t, obj.Enabled())
	assert.False(t, obj.CastsShadow())

	m := obj.ModelMatrix()
	assert.Equal(t, float32(2), m[0])
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{m[12], m[13], m[14]})
}

func TestGameObject_SetPositionKeepsScale(t *testing.T) {
	obj := NewGameObject(model.NewCube(1), nil, WithScale(mgl32.Vec3{3, 3, 3}))
	obj.SetPosition(mgl32.Vec3{0, 5, 0})

	tr := obj.Transform()
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, tr.Translation)
	assert.Equal(t, mgl32.Vec3{3, 3, 3}, tr.Scale)
}
