package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/renderer"
	"github.com/Carmen-Shannon/hyako/engine/shadow"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, PresentModeVSync, cfg.Renderer.PresentMode)
	assert.Equal(t, 4, cfg.Renderer.MSAA)
	assert.Equal(t, renderer.DefaultFramesInFlight, cfg.Renderer.FramesInFlight)
	assert.Equal(t, [4]float64{0.25, 0.1, 0.75, 1}, cfg.Renderer.ClearColor)
	assert.Equal(t, 2048, cfg.Shadow.Resolution)
	assert.InDelta(t, 0.3, cfg.Lighting.DiffusePower, 1e-6)
	assert.InDelta(t, 2.0, cfg.Lighting.SpecularPower, 1e-6)
}

func TestDecode_YAMLKeepsMissingFields(t *testing.T) {
	src := `
lighting:
  specular_power: 16
shadow:
  pcf_radius: 2
  follow_output: true
light:
  position: [1, 2, 3]
`
	cfg, err := Decode(".yaml", []byte(src))
	require.NoError(t, err)

	def := Default()
	assert.InDelta(t, 16, cfg.Lighting.SpecularPower, 1e-6)
	assert.Equal(t, def.Lighting.DiffusePower, cfg.Lighting.DiffusePower)
	assert.Equal(t, 2, cfg.Shadow.PCFRadius)
	assert.True(t, cfg.Shadow.FollowOutput)
	assert.Equal(t, def.Shadow.Resolution, cfg.Shadow.Resolution)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, cfg.Light.Position)
	assert.Equal(t, def.Light.Color, cfg.Light.Color)
	assert.Equal(t, def.Renderer, cfg.Renderer)
}

func TestDecode_TOML(t *testing.T) {
	src := `
[renderer]
present_mode = "uncapped"
msaa = 1
frames_in_flight = 2

[gizmo]
scale = 0.5
`
	cfg, err := Decode(".toml", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, PresentModeUncapped, cfg.Renderer.PresentMode)
	assert.Equal(t, 1, cfg.Renderer.MSAA)
	assert.Equal(t, 2, cfg.Renderer.FramesInFlight)
	assert.Equal(t, renderer.DefaultMaxDrawsPerFrame, cfg.Renderer.MaxDrawsPerFrame)
	assert.InDelta(t, 0.5, cfg.Gizmo.Scale, 1e-6)
}

func TestDecode_EmptyYAMLIsDefault(t *testing.T) {
	cfg, err := Decode(".yml", []byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		src  string
	}{
		{"unknown format", ".json", `{}`},
		{"unknown yaml key", ".yaml", "lighting:\n  diffuse: 1\n"},
		{"unknown toml key", ".toml", "[shadow]\nsoftness = 3\n"},
		{"malformed yaml", ".yaml", "lighting: [\n"},
		{"wrong vector length", ".yaml", "light:\n  position: [1, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.ext, []byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestValidate_JoinsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Renderer.PresentMode = "mailbox"
	cfg.Renderer.MSAA = 2
	cfg.Renderer.FramesInFlight = 5
	cfg.Camera.Near = 0
	cfg.Lighting.SpecularPower = 0
	cfg.Shadow.Resolution = 0
	cfg.Gizmo.Scale = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{
		"present_mode", "msaa", "frames_in_flight", "camera:", "specular_power", "resolution", "gizmo:",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDecode_InvalidValuesWrapErrInvalid(t *testing.T) {
	_, err := Decode(".yaml", []byte("shadow:\n  bias: -0.5\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hyako.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lighting:\n  diffuse_power: 0.6\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, cfg.Lighting.DiffusePower, 1e-6)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRendererConfig_Options(t *testing.T) {
	assert.Len(t, Default().Renderer.Options(), 6)
	assert.Len(t, Default().Shadow.RendererOptions(), 2)
}

func TestRendererConfig_ModeAndClear(t *testing.T) {
	cfg := Default().Renderer
	assert.Equal(t, renderer.PresentModeVSync, cfg.Mode())
	assert.Equal(t, renderer.DefaultClearColor, cfg.Clear())

	cfg.PresentMode = "UNCAPPED"
	cfg.ClearColor = [4]float64{1, 0, 0.5, 1}
	assert.Equal(t, renderer.PresentModeUncapped, cfg.Mode())
	assert.Equal(t, 0.5, cfg.Clear().B)

	cfg.PresentMode = "bogus"
	assert.Equal(t, renderer.PresentModeVSync, cfg.Mode())
}

func TestShadowConfig_SamplerConfig(t *testing.T) {
	cfg := Default().Shadow
	cfg.PCFRadius = 3
	got := cfg.SamplerConfig()
	assert.Equal(t, shadow.SamplerConfig{Bias: light.DefaultShadowBias, PCFRadius: 3, Compare: shadow.CompareLess}, got)
}

func TestConfig_GPUShadingParams(t *testing.T) {
	cfg := Default()
	p := cfg.GPUShadingParams(mgl32.Vec3{1, 2, 3})
	assert.Equal(t, [3]float32{1, 2, 3}, p.CameraPosition)
	assert.Equal(t, cfg.Lighting.DiffusePower, p.DiffusePower)
	assert.InDelta(t, 1.0/2048, p.ShadowTexel[0], 1e-9)
	assert.InDelta(t, float32(cfg.Shadow.PCFRadius), p.PCFRadius, 1e-6)
}

func TestWatch_AppliesValidReloadsOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hyako.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lighting:\n  diffuse_power: 0.3\n"), 0o644))

	var mu sync.Mutex
	var got []Config

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c Config) {
			mu.Lock()
			got = append(got, c)
			mu.Unlock()
		}, WithDebounce(20*time.Millisecond))
	}()

	received := func() []Config {
		mu.Lock()
		defer mu.Unlock()
		return append([]Config(nil), got...)
	}

	// the watcher may not be registered yet; keep rewriting until the first reload lands
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("lighting:\n  diffuse_power: 0.9\n"), 0o644)
		return len(received()) > 0
	}, 5*time.Second, 100*time.Millisecond)

	// let reloads from the retry writes settle
	time.Sleep(200 * time.Millisecond)
	last := received()[len(received())-1]
	assert.InDelta(t, 0.9, last.Lighting.DiffusePower, 1e-6)
	before := len(received())

	require.NoError(t, os.WriteFile(path, []byte("lighting:\n  diffuse_power: -1\n"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, received(), before)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "hyako.yaml"), func(Config) {})
	assert.Error(t, err)
}
