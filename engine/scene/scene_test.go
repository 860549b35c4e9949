package scene

import (
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/hyako/engine/animator"
	"github.com/Carmen-Shannon/hyako/engine/game_object"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/shadow"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene(t *testing.T, opts ...SceneBuilderOption) Scene {
	t.Helper()
	opts = append([]SceneBuilderOption{WithShadowResolution(128), WithShadowWorkers(2)}, opts...)
	s, err := NewScene(opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func litMaterial(t *testing.T) material.Material {
	t.Helper()
	m, err := material.NewLitMaterial()
	require.NoError(t, err)
	return m
}

func unlitMaterial(t *testing.T) material.Material {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	m, err := material.NewUnlitTexturedMaterial(img)
	require.NoError(t, err)
	return m
}

func TestNewScene_Defaults(t *testing.T) {
	s := newTestScene(t)
	assert.Equal(t, "scene", s.Name())
	assert.NotNil(t, s.Camera())
	assert.Equal(t, mgl32.Vec3{0, 5, 5}, s.Light().Position())
	assert.Equal(t, light.DefaultLightingConfig(), s.LightingModel().Config())
	assert.Equal(t, 128, s.ShadowMap().Width())
	assert.Equal(t, shadow.DefaultSamplerConfig(), s.SamplerConfig())
	assert.Zero(t, s.Count())
}

func TestNewScene_RejectsInvalidSampler(t *testing.T) {
	_, err := NewScene(WithShadowResolution(16), WithSamplerConfig(shadow.SamplerConfig{PCFRadius: -1}))
	assert.ErrorContains(t, err, "pcf radius")

	_, err = NewScene(WithShadowResolution(16), WithSamplerConfig(shadow.SamplerConfig{Bias: -1}))
	assert.ErrorContains(t, err, "bias")
}

func TestScene_SetSamplerConfigBeforeShadowPass(t *testing.T) {
	s := newTestScene(t)
	require.False(t, s.ShadowMap().Complete())

	cfg := shadow.SamplerConfig{Bias: 0.02, PCFRadius: 2, Compare: shadow.CompareLessEqual}
	require.NoError(t, s.SetSamplerConfig(cfg))
	assert.Equal(t, cfg, s.SamplerConfig())

	assert.Error(t, s.SetSamplerConfig(shadow.SamplerConfig{PCFRadius: -3}))
	assert.Equal(t, cfg, s.SamplerConfig(), "a rejected config leaves the old one in place")

	require.NoError(t, s.RenderShadows())
	_, err := s.ShadeFragment(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1})
	assert.NoError(t, err)
}

func TestScene_AddGetRemove(t *testing.T) {
	s := newTestScene(t)
	lit := litMaterial(t)

	assert.Error(t, s.Add(nil))
	assert.Error(t, s.Add(game_object.NewGameObject(model.NewCube(1), nil)))

	a := game_object.NewGameObject(model.NewCube(1), lit)
	b := game_object.NewGameObject(model.NewCube(1), lit)
	c := game_object.NewGameObject(model.NewCube(1), lit)
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	require.NoError(t, s.Add(c))
	assert.Error(t, s.Add(a), "duplicate id")

	s.Remove(b.ID())
	s.Remove(uuid.New())
	assert.Equal(t, 2, s.Count())
	assert.Nil(t, s.Get(b.ID()))
	assert.Equal(t, c.ID(), s.Get(c.ID()).ID())
	assert.Equal(t, []uuid.UUID{a.ID(), c.ID()}, []uuid.UUID{s.Drawables()[0].ID(), s.Drawables()[1].ID()})
}

func TestScene_FrameOrdersLitUnlitGizmo(t *testing.T) {
	s := newTestScene(t)
	unlit := game_object.NewGameObject(model.NewPlane(2), unlitMaterial(t))
	lit := game_object.NewGameObject(model.NewCube(1), litMaterial(t))
	hidden := game_object.NewGameObject(model.NewCube(1), litMaterial(t), game_object.WithEnabled(false))
	require.NoError(t, s.Add(unlit))
	require.NoError(t, s.Add(lit))
	require.NoError(t, s.Add(hidden))

	s.Light().SetColor(mgl32.Vec3{1, 0.5, 0})
	frame := s.Frame()

	require.Len(t, frame.Draws, 3)
	assert.Equal(t, material.KindLit, frame.Draws[0].Material.Kind())
	assert.Equal(t, material.KindUnlit, frame.Draws[1].Material.Kind())
	assert.Equal(t, material.KindGizmo, frame.Draws[2].Material.Kind())

	gizmo := frame.Draws[2]
	require.NotNil(t, gizmo.Params)
	assert.Equal(t, mgl32.Vec4{1, 0.5, 0, 1}, gizmo.Params.Albedo)
	assert.False(t, gizmo.CastsShadow)
	assert.Equal(t, s.Light().Position(), mgl32.Vec3{gizmo.Model[12], gizmo.Model[13], gizmo.Model[14]})
	assert.InDelta(t, material.DefaultGizmoScale, gizmo.Model[0], 1e-6)

	assert.True(t, frame.Draws[0].CastsShadow)
	assert.Equal(t, [16]float32(s.LightViewProjection()), frame.Shadow.LightVP)
	assert.InDelta(t, 1.0/128, frame.Shading.ShadowTexel[0], 1e-9)
}

func TestScene_FrameCullsOffscreenNonCasters(t *testing.T) {
	s := newTestScene(t)
	lit := litMaterial(t)
	far := mgl32.Vec3{1000, 0, 0}
	receiver := game_object.NewGameObject(model.NewCube(1), lit, game_object.WithPosition(far), game_object.WithCastsShadow(false))
	caster := game_object.NewGameObject(model.NewCube(1), lit, game_object.WithPosition(far))
	require.NoError(t, s.Add(receiver))
	require.NoError(t, s.Add(caster))

	frame := s.Frame()
	require.Len(t, frame.Draws, 2)
	assert.True(t, frame.Draws[0].CastsShadow)
}

func TestScene_FrameWithoutShadowLight(t *testing.T) {
	s := newTestScene(t, WithLight(light.NewLight(light.WithCastsShadows(false))))
	require.NoError(t, s.Add(game_object.NewGameObject(model.NewCube(1), litMaterial(t))))

	frame := s.Frame()
	assert.Empty(t, frame.ShadowCasters())
}

func TestScene_ShadeFragmentWithoutShadows(t *testing.T) {
	l := light.NewLight(light.WithPosition(mgl32.Vec3{0, 5, 0}), light.WithCastsShadows(false))
	s := newTestScene(t, WithLight(l))

	// diffuse 0.3/25 plus specular cos(45°)^2/25, with the eye on +Z
	c, err := s.ShadeFragment(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.3/25+0.5/25, c.X(), 1e-5)
	assert.Equal(t, float32(1), c.W())

	c, err = s.ShadeFragment(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, c)

	c, err = s.ShadeFragment(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)
	for _, v := range c {
		assert.False(t, math32.IsNaN(v) || math32.IsInf(v, 0))
	}
}

func TestScene_ShadeFragmentRequiresShadowPass(t *testing.T) {
	s := newTestScene(t)
	_, err := s.ShadeFragment(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1})
	assert.ErrorIs(t, err, shadow.ErrShadowPassIncomplete)
}

func TestScene_RenderShadowsOccludesReceiver(t *testing.T) {
	l := light.NewLight(light.WithPosition(mgl32.Vec3{1, 20, 1}))
	s := newTestScene(t, WithLight(l), WithShadowResolution(256))
	lit := litMaterial(t)

	ground := game_object.NewGameObject(model.NewPlane(4), lit, game_object.WithCastsShadow(false))
	box := game_object.NewGameObject(model.NewCube(1), lit, game_object.WithPosition(mgl32.Vec3{0, 1.5, 0}))
	require.NoError(t, s.Add(ground))
	require.NoError(t, s.Add(box))

	require.NoError(t, s.RenderShadows())
	assert.True(t, s.ShadowMap().Complete())

	up := mgl32.Vec3{0, 1, 0}
	white := mgl32.Vec3{1, 1, 1}

	// directly under the box along the light ray
	shadowed, err := s.ShadeFragment(mgl32.Vec3{-0.081, 0, -0.081}, up, white)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, shadowed)

	open, err := s.ShadeFragment(mgl32.Vec3{1.5, 0, 1.5}, up, white)
	require.NoError(t, err)
	assert.Greater(t, open.X(), float32(0))
}

func TestScene_UpdateDrivesAnimatedDrawables(t *testing.T) {
	s := newTestScene(t)
	box := game_object.NewGameObject(model.NewCube(1), litMaterial(t))
	require.NoError(t, s.Add(box))

	orbit, err := animator.NewCircular(mgl32.Vec3{}, 2)
	require.NoError(t, err)
	_, err = s.Animator().Add(box, orbit)
	require.NoError(t, err)
	_, err = s.Animator().Add(s.Light(), animator.Stationary{})
	require.NoError(t, err)

	s.Update(0.9)
	pos := box.Transform().Translation
	assert.InDelta(t, 0, pos.X(), 1e-4)
	assert.InDelta(t, 2, pos.Z(), 1e-4)
	assert.Equal(t, mgl32.Vec3{0, 5, 5}, s.Light().Position())
}
