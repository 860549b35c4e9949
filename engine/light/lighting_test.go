package light

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) LightingModel {
	t.Helper()
	return NewLightingModel(DefaultLightingConfig(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestShade_LightAboveOriginGivesExpectedDiffuse(t *testing.T) {
	m := newTestModel(t)
	c := m.Shade(ShadeInput{
		Normal:         mgl32.Vec3{0, 1, 0},
		CameraPosition: mgl32.Vec3{0, 0, 15},
		LightPosition:  mgl32.Vec3{0, 5, 0},
		LightColor:     mgl32.Vec3{1, 1, 1},
		Albedo:         mgl32.Vec3{1, 1, 1},
	})

	for i := range 3 {
		assert.InDelta(t, 0.012, c.Diffuse[i], 1e-6)
	}
}

func TestShade_BackFacingNormalIsUnlit(t *testing.T) {
	m := newTestModel(t)
	c := m.Shade(ShadeInput{
		Normal:         mgl32.Vec3{0, -1, 0},
		CameraPosition: mgl32.Vec3{0, 5, 0},
		LightPosition:  mgl32.Vec3{0, 5, 0},
		LightColor:     mgl32.Vec3{1, 1, 1},
		Albedo:         mgl32.Vec3{1, 1, 1},
	})

	assert.Equal(t, mgl32.Vec3{}, c.Diffuse)
	assert.Equal(t, mgl32.Vec3{}, c.Specular)
	assert.Equal(t, mgl32.Vec3{}, c.Color())
}

func TestShade_InverseSquareAttenuation(t *testing.T) {
	m := newTestModel(t)
	dir := mgl32.Vec3{1, 2, 0.5}.Normalize()
	shadeAt := func(d float32) Contribution {
		return m.Shade(ShadeInput{
			Normal:         mgl32.Vec3{0, 1, 0},
			CameraPosition: mgl32.Vec3{-3, 4, 2},
			LightPosition:  dir.Mul(d),
			LightColor:     mgl32.Vec3{0.8, 0.6, 1},
			Albedo:         mgl32.Vec3{1, 1, 1},
		})
	}

	for _, d := range []float32{1, 2.5, 7} {
		near, far := shadeAt(d), shadeAt(2*d)
		for i := range 3 {
			assert.InDelta(t, near.Diffuse[i]/4, far.Diffuse[i], 1e-6)
			assert.InDelta(t, near.Specular[i]/4, far.Specular[i], 1e-6)
		}
	}
}

func TestShade_UsesFragmentToLightVector(t *testing.T) {
	m := newTestModel(t)
	// light directly above a fragment far from the origin; origin-relative math would tilt it
	c := m.Shade(ShadeInput{
		FragmentPosition: mgl32.Vec3{10, 0, 10},
		Normal:           mgl32.Vec3{0, 1, 0},
		CameraPosition:   mgl32.Vec3{10, 5, 10},
		LightPosition:    mgl32.Vec3{10, 5, 10},
		LightColor:       mgl32.Vec3{1, 1, 1},
		Albedo:           mgl32.Vec3{1, 1, 1},
	})

	assert.InDelta(t, 0.012, c.Diffuse.X(), 1e-6)
	assert.InDelta(t, 1.0/25.0, c.Specular.X(), 1e-6, "half vector equals the normal")
}

func TestShade_SpecularPowerIsConfigurable(t *testing.T) {
	in := ShadeInput{
		Normal:         mgl32.Vec3{0, 1, 0},
		CameraPosition: mgl32.Vec3{1, 4, 0},
		LightPosition:  mgl32.Vec3{-1, 1, 0},
		LightColor:     mgl32.Vec3{1, 1, 1},
		Albedo:         mgl32.Vec3{1, 1, 1},
	}
	soft := NewLightingModel(LightingConfig{DiffusePower: 0.3, SpecularPower: 2}, nil).Shade(in)
	sharp := NewLightingModel(LightingConfig{DiffusePower: 0.3, SpecularPower: 64}, nil).Shade(in)

	assert.Equal(t, soft.Diffuse, sharp.Diffuse)
	assert.Greater(t, soft.Specular.X(), sharp.Specular.X())
}

func TestShade_AlbedoModulatesDiffuseOnly(t *testing.T) {
	m := newTestModel(t)
	c := m.Shade(ShadeInput{
		Normal:         mgl32.Vec3{0, 1, 0},
		CameraPosition: mgl32.Vec3{0, 5, 0},
		LightPosition:  mgl32.Vec3{0, 5, 0},
		LightColor:     mgl32.Vec3{1, 1, 1},
		Albedo:         mgl32.Vec3{0.5, 0, 1},
	})

	color := c.Color()
	assert.InDelta(t, 0.5*0.012+0.04, color.X(), 1e-6)
	assert.InDelta(t, 0.04, color.Y(), 1e-6)
	assert.InDelta(t, 0.012+0.04, color.Z(), 1e-6)
}

func TestShade_NeverProducesNaN(t *testing.T) {
	nan := float32(math.NaN())
	var logs bytes.Buffer
	m := NewLightingModel(DefaultLightingConfig(), slog.New(slog.NewTextHandler(&logs, nil)))

	tests := []struct {
		name string
		in   ShadeInput
	}{
		{"coincident light and fragment", ShadeInput{Normal: mgl32.Vec3{0, 1, 0}, LightColor: mgl32.Vec3{1, 1, 1}, Albedo: mgl32.Vec3{1, 1, 1}}},
		{"camera on fragment", ShadeInput{Normal: mgl32.Vec3{0, 1, 0}, LightPosition: mgl32.Vec3{0, 1, 0}, LightColor: mgl32.Vec3{1, 1, 1}}},
		{"zero normal", ShadeInput{LightPosition: mgl32.Vec3{0, 1, 0}, LightColor: mgl32.Vec3{1, 1, 1}}},
		{"nan position", ShadeInput{FragmentPosition: mgl32.Vec3{nan, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}, LightColor: mgl32.Vec3{1, 1, 1}}},
		{"nan color", ShadeInput{Normal: mgl32.Vec3{0, 1, 0}, LightPosition: mgl32.Vec3{0, 1, 0}, LightColor: mgl32.Vec3{nan, 1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := m.Shade(tt.in)
			color := c.Color()
			var values []float32
			values = append(values, c.Diffuse[:]...)
			values = append(values, c.Specular[:]...)
			values = append(values, color[:]...)
			for _, v := range values {
				assert.False(t, math.IsNaN(float64(v)))
				assert.False(t, math.IsInf(float64(v), 0))
			}
		})
	}

	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("non-finite shading input")), "warning is logged once")
}

func TestLightingConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultLightingConfig().Validate())

	err := LightingConfig{DiffusePower: -1, SpecularPower: 0, MinDistance: 0}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diffuse_power")
	assert.Contains(t, err.Error(), "specular_power")
	assert.Contains(t, err.Error(), "min_distance")
}
