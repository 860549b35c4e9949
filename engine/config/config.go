package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/hyako/engine/camera"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/renderer"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/shadow"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure returned from Validate and Load.
var ErrInvalid = errors.New("invalid config")

// maxConfigSize bounds the size of a config file accepted by Load.
const maxConfigSize = 1 << 20

// Present mode names accepted in RendererConfig.PresentMode.
const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

// Config is the full engine configuration.
type Config struct {
	Renderer RendererConfig       `yaml:"renderer" toml:"renderer"`
	Camera   CameraConfig         `yaml:"camera" toml:"camera"`
	Light    LightConfig          `yaml:"light" toml:"light"`
	Lighting light.LightingConfig `yaml:"lighting" toml:"lighting"`
	Shadow   ShadowConfig         `yaml:"shadow" toml:"shadow"`
	Gizmo    material.GizmoConfig `yaml:"gizmo" toml:"gizmo"`
}

// RendererConfig configures the GPU renderer.
type RendererConfig struct {
	PresentMode      string     `yaml:"present_mode" toml:"present_mode"`
	MSAA             int        `yaml:"msaa" toml:"msaa"`
	FramesInFlight   int        `yaml:"frames_in_flight" toml:"frames_in_flight"`
	MaxDrawsPerFrame int        `yaml:"max_draws_per_frame" toml:"max_draws_per_frame"`
	ClearColor       [4]float64 `yaml:"clear_color" toml:"clear_color"`
	ForceSoftware    bool       `yaml:"force_software" toml:"force_software"`
}

// CameraConfig sets the initial camera.
type CameraConfig struct {
	Eye    mgl32.Vec3 `yaml:"eye" toml:"eye"`
	Target mgl32.Vec3 `yaml:"target" toml:"target"`
	Up     mgl32.Vec3 `yaml:"up" toml:"up"`
	Fov    float32    `yaml:"fov" toml:"fov"`
	Near   float32    `yaml:"near" toml:"near"`
	Far    float32    `yaml:"far" toml:"far"`
}

// LightConfig sets the initial point light.
type LightConfig struct {
	Position     mgl32.Vec3 `yaml:"position" toml:"position"`
	Color        mgl32.Vec3 `yaml:"color" toml:"color"`
	CastsShadows bool       `yaml:"casts_shadows" toml:"casts_shadows"`
}

// ShadowConfig configures both the GPU shadow map and the CPU shadow pass.
type ShadowConfig struct {
	Resolution   int     `yaml:"resolution" toml:"resolution"`
	FollowOutput bool    `yaml:"follow_output" toml:"follow_output"`
	Bias         float32 `yaml:"bias" toml:"bias"`
	PCFRadius    int     `yaml:"pcf_radius" toml:"pcf_radius"`
	Workers      int     `yaml:"workers" toml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cc := renderer.DefaultClearColor
	return Config{
		Renderer: RendererConfig{
			PresentMode:      PresentModeVSync,
			MSAA:             int(renderer.MSAA4x),
			FramesInFlight:   renderer.DefaultFramesInFlight,
			MaxDrawsPerFrame: renderer.DefaultMaxDrawsPerFrame,
			ClearColor:       [4]float64{cc.R, cc.G, cc.B, cc.A},
		},
		Camera: CameraConfig{
			Eye:    camera.DefaultEye,
			Target: mgl32.Vec3{0, 0, 0},
			Up:     mgl32.Vec3{0, 1, 0},
			Fov:    camera.DefaultFov,
			Near:   camera.DefaultNear,
			Far:    camera.DefaultFar,
		},
		Light: LightConfig{
			Position:     mgl32.Vec3{0, 5, 5},
			Color:        mgl32.Vec3{1, 1, 1},
			CastsShadows: true,
		},
		Lighting: light.DefaultLightingConfig(),
		Shadow: ShadowConfig{
			Resolution: light.ShadowMapResolution,
			Bias:       light.DefaultShadowBias,
			PCFRadius:  light.DefaultPCFRadius,
		},
		Gizmo: material.DefaultGizmoConfig(),
	}
}

// Load reads a config file, decoding it by extension (.yaml, .yml or .toml) over Default so
// that missing fields keep their defaults. Unknown keys are rejected.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the decoded and validated config
//   - error: a read, decode or validation error; validation errors wrap ErrInvalid
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config file %s is %d bytes, limit is %d", path, info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode decodes config data in the format named by ext over Default and validates the result.
//
// Parameters:
//   - ext: the format, as a file extension (".yaml", ".yml" or ".toml")
//   - data: the encoded config
//
// Returns:
//   - Config: the decoded and validated config
//   - error: a decode or validation error
func Decode(ext string, data []byte) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document decodes to io.EOF and leaves the defaults
		if err := dec.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return Config{}, fmt.Errorf("failed to decode yaml: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode toml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field of the config at once.
//
// Returns:
//   - error: nil when the config is usable, otherwise the joined problems wrapped with ErrInvalid
func (c Config) Validate() error {
	var errs []error
	if err := c.Renderer.validate(); err != nil {
		errs = append(errs, fmt.Errorf("renderer: %w", err))
	}
	if err := c.Camera.validate(); err != nil {
		errs = append(errs, fmt.Errorf("camera: %w", err))
	}
	if err := c.Light.validate(); err != nil {
		errs = append(errs, fmt.Errorf("light: %w", err))
	}
	if err := c.Lighting.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lighting: %w", err))
	}
	if err := c.Shadow.validate(); err != nil {
		errs = append(errs, fmt.Errorf("shadow: %w", err))
	}
	if err := c.Gizmo.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gizmo: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func (c RendererConfig) validate() error {
	var errs []error
	if _, err := renderer.ParsePresentMode(c.PresentMode); err != nil {
		errs = append(errs, fmt.Errorf("present_mode: %w", err))
	}
	if !renderer.MSAASampleCount(c.MSAA).Valid() {
		errs = append(errs, fmt.Errorf("msaa must be 1, 4, 8 or 16, got %d", c.MSAA))
	}
	if c.FramesInFlight < renderer.MinFramesInFlight || c.FramesInFlight > renderer.MaxFramesInFlight {
		errs = append(errs, fmt.Errorf("frames_in_flight must be in [%d, %d], got %d",
			renderer.MinFramesInFlight, renderer.MaxFramesInFlight, c.FramesInFlight))
	}
	if c.MaxDrawsPerFrame <= 0 {
		errs = append(errs, fmt.Errorf("max_draws_per_frame must be > 0, got %d", c.MaxDrawsPerFrame))
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear_color[%d] must be in [0, 1], got %v", i, v))
		}
	}
	return errors.Join(errs...)
}

// Options converts the renderer config into renderer builder options. The config must be valid.
//
// Returns:
//   - []renderer.RendererBuilderOption: present mode, MSAA, ring size, draw capacity and clear color
func (c RendererConfig) Options() []renderer.RendererBuilderOption {
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(c.Mode()),
		renderer.WithMSAA(renderer.MSAASampleCount(c.MSAA)),
		renderer.WithFramesInFlight(c.FramesInFlight),
		renderer.WithMaxDrawsPerFrame(c.MaxDrawsPerFrame),
		renderer.WithClearColor(c.Clear()),
		renderer.WithForceSoftwareRenderer(c.ForceSoftware),
	}
}

// Mode returns the parsed present mode, or PresentModeVSync when the name is unknown.
func (c RendererConfig) Mode() renderer.PresentMode {
	mode, _ := renderer.ParsePresentMode(c.PresentMode)
	return mode
}

// Clear returns the clear color as a wgpu.Color.
func (c RendererConfig) Clear() wgpu.Color {
	return wgpu.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}
}

func (c CameraConfig) validate() error {
	var errs []error
	if !finiteVec(c.Eye) || !finiteVec(c.Target) || !finiteVec(c.Up) {
		errs = append(errs, errors.New("eye, target and up must be finite"))
	}
	if c.Eye.Sub(c.Target).Len() == 0 {
		errs = append(errs, errors.New("eye and target must differ"))
	}
	if c.Up.Len() == 0 {
		errs = append(errs, errors.New("up must be non-zero"))
	}
	if !(c.Fov > 0 && c.Fov < 180) {
		errs = append(errs, fmt.Errorf("fov must be in (0, 180) degrees, got %v", c.Fov))
	}
	if !(c.Near > 0) || !(c.Far > c.Near) || math32.IsInf(c.Far, 0) {
		errs = append(errs, fmt.Errorf("need 0 < near < far, got near=%v far=%v", c.Near, c.Far))
	}
	return errors.Join(errs...)
}

func (c LightConfig) validate() error {
	var errs []error
	if !finiteVec(c.Position) {
		errs = append(errs, errors.New("position must be finite"))
	}
	if !finiteVec(c.Color) || c.Color.X() < 0 || c.Color.Y() < 0 || c.Color.Z() < 0 {
		errs = append(errs, fmt.Errorf("color must be finite and non-negative, got %v", c.Color))
	}
	return errors.Join(errs...)
}

func (c ShadowConfig) validate() error {
	var errs []error
	if c.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be > 0, got %d", c.Resolution))
	}
	if math32.IsNaN(c.Bias) || math32.IsInf(c.Bias, 0) || c.Bias < 0 {
		errs = append(errs, fmt.Errorf("bias must be finite and >= 0, got %v", c.Bias))
	}
	if c.PCFRadius < 0 {
		errs = append(errs, fmt.Errorf("pcf_radius must be >= 0, got %d", c.PCFRadius))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// SamplerConfig returns the CPU shadow sampler config.
func (c ShadowConfig) SamplerConfig() shadow.SamplerConfig {
	return shadow.SamplerConfig{Bias: c.Bias, PCFRadius: c.PCFRadius, Compare: shadow.CompareLess}
}

// RendererOptions returns the renderer options for the GPU shadow map.
func (c ShadowConfig) RendererOptions() []renderer.RendererBuilderOption {
	return []renderer.RendererBuilderOption{
		renderer.WithShadowResolution(c.Resolution),
		renderer.WithShadowFollowOutput(c.FollowOutput),
	}
}

// GPUShadingParams returns the shading constants uploaded to the lit program. The shadow texel
// size is filled by the renderer from the actual shadow map.
//
// Parameters:
//   - eye: the camera position in world space
//
// Returns:
//   - light.GPUShadingParams: the uniform
func (c Config) GPUShadingParams(eye mgl32.Vec3) light.GPUShadingParams {
	res := uint32(c.Shadow.Resolution)
	return light.NewGPUShadingParams(c.Lighting, eye, c.Shadow.Bias, c.Shadow.PCFRadius, res, res)
}

func finiteVec(v mgl32.Vec3) bool {
	for _, f := range v {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return false
		}
	}
	return true
}
