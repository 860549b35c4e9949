package light

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultDiffusePower scales the diffuse term of every light.
	DefaultDiffusePower float32 = 0.3

	// DefaultSpecularPower is the Blinn-Phong specular exponent.
	DefaultSpecularPower float32 = 2.0

	// DefaultMinDistance is the smallest light-to-fragment distance used for attenuation.
	// Closer fragments are clamped to it so 1/d^2 stays finite.
	DefaultMinDistance float32 = 1e-4
)

// LightingConfig holds the tunable constants of the lighting model.
type LightingConfig struct {
	DiffusePower  float32 `yaml:"diffuse_power" toml:"diffuse_power"`
	SpecularPower float32 `yaml:"specular_power" toml:"specular_power"`
	MinDistance   float32 `yaml:"min_distance" toml:"min_distance"`
}

// DefaultLightingConfig returns the lighting config with diffuse power 0.3 and specular exponent 2.
func DefaultLightingConfig() LightingConfig {
	return LightingConfig{
		DiffusePower:  DefaultDiffusePower,
		SpecularPower: DefaultSpecularPower,
		MinDistance:   DefaultMinDistance,
	}
}

// Validate reports every invalid field of the config.
//
// Returns:
//   - error: nil when the config is usable, otherwise the joined field errors
func (c LightingConfig) Validate() error {
	var errs []error
	if !isFinite(c.DiffusePower) || c.DiffusePower < 0 {
		errs = append(errs, fmt.Errorf("diffuse_power must be finite and >= 0, got %v", c.DiffusePower))
	}
	if !isFinite(c.SpecularPower) || c.SpecularPower <= 0 {
		errs = append(errs, fmt.Errorf("specular_power must be finite and > 0, got %v", c.SpecularPower))
	}
	if !isFinite(c.MinDistance) || c.MinDistance <= 0 {
		errs = append(errs, fmt.Errorf("min_distance must be finite and > 0, got %v", c.MinDistance))
	}
	return errors.Join(errs...)
}

// ShadeInput is everything the lighting model needs to shade one fragment.
type ShadeInput struct {
	FragmentPosition mgl32.Vec3
	Normal           mgl32.Vec3
	CameraPosition   mgl32.Vec3
	LightPosition    mgl32.Vec3
	LightColor       mgl32.Vec3
	Albedo           mgl32.Vec3
}

// Contribution is the light reaching a fragment, split into its diffuse and specular terms.
// Diffuse has not yet been modulated by the surface albedo.
type Contribution struct {
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
	Albedo   mgl32.Vec3
}

// Color combines the terms into the fragment color: albedo * diffuse + specular.
// There is no ambient term. Non-finite components are clamped so the result is always finite.
//
// Returns:
//   - mgl32.Vec3: the shaded RGB color
func (c Contribution) Color() mgl32.Vec3 {
	lit := mgl32.Vec3{
		c.Albedo.X() * c.Diffuse.X(),
		c.Albedo.Y() * c.Diffuse.Y(),
		c.Albedo.Z() * c.Diffuse.Z(),
	}.Add(c.Specular)
	return common.SanitizeVec3(lit)
}

// Scale returns the contribution with both terms multiplied by factor. Used to apply shadow visibility.
func (c Contribution) Scale(factor float32) Contribution {
	c.Diffuse = c.Diffuse.Mul(factor)
	c.Specular = c.Specular.Mul(factor)
	return c
}

type lightingModelImpl struct {
	config   LightingConfig
	logger   *slog.Logger
	warnOnce *sync.Once
}

// LightingModel evaluates Blinn-Phong diffuse and specular from a single point light with
// inverse-square attenuation.
//
// The same formulas run in the lit WGSL shader; this is the CPU reference used for tests and
// for shading on the host.
type LightingModel interface {
	// Config returns the model's constants.
	//
	// Returns:
	//   - LightingConfig: the lighting config
	Config() LightingConfig

	// Shade computes the light contribution for one fragment.
	//
	// The light vector runs from the fragment to the light and its length, clamped to
	// MinDistance, drives the 1/d^2 attenuation. A normal facing away from the light yields
	// zero diffuse and zero specular. Any non-finite input yields a zero contribution and a
	// single warning per model.
	//
	// Parameters:
	//   - in: the fragment, camera and light inputs
	//
	// Returns:
	//   - Contribution: the diffuse and specular terms, always finite
	Shade(in ShadeInput) Contribution
}

var _ LightingModel = &lightingModelImpl{}

// NewLightingModel creates a LightingModel. A zero SpecularPower or MinDistance falls back to its
// default; a zero DiffusePower is kept and disables the diffuse term.
//
// Parameters:
//   - cfg: the lighting config
//   - logger: logger for anomaly warnings, or nil for slog.Default()
//
// Returns:
//   - LightingModel: the lighting model
func NewLightingModel(cfg LightingConfig, logger *slog.Logger) LightingModel {
	def := DefaultLightingConfig()
	cfg.SpecularPower = common.Coalesce(cfg.SpecularPower, def.SpecularPower)
	cfg.MinDistance = common.Coalesce(cfg.MinDistance, def.MinDistance)
	if logger == nil {
		logger = slog.Default()
	}
	return &lightingModelImpl{
		config:   cfg,
		logger:   logger.With("component", "lighting"),
		warnOnce: &sync.Once{},
	}
}

func (m *lightingModelImpl) Config() LightingConfig {
	return m.config
}

func (m *lightingModelImpl) Shade(in ShadeInput) Contribution {
	if !common.IsFinite3(in.FragmentPosition) || !common.IsFinite3(in.Normal) ||
		!common.IsFinite3(in.CameraPosition) || !common.IsFinite3(in.LightPosition) ||
		!common.IsFinite3(in.LightColor) || !common.IsFinite3(in.Albedo) {
		m.warnOnce.Do(func() {
			m.logger.Warn("non-finite shading input, fragment left unlit",
				"fragment", in.FragmentPosition, "normal", in.Normal, "light", in.LightPosition)
		})
		return Contribution{}
	}

	out := Contribution{Albedo: in.Albedo}

	normal := safeNormalize(in.Normal, mgl32.Vec3{})
	if normal.Len() == 0 {
		return out
	}

	lightVector := in.LightPosition.Sub(in.FragmentPosition)
	distance := max(lightVector.Len(), m.config.MinDistance)
	lightDir := lightVector.Mul(1 / distance)
	attenuation := 1 / (distance * distance)

	nDotL := lightDir.Dot(normal)
	if nDotL <= 0 {
		return out
	}
	out.Diffuse = in.LightColor.Mul(nDotL * m.config.DiffusePower * attenuation)

	viewDir := safeNormalize(in.CameraPosition.Sub(in.FragmentPosition), normal)
	halfVector := safeNormalize(lightDir.Add(viewDir), normal)
	specularIntensity := math32.Pow(max(halfVector.Dot(normal), 0), m.config.SpecularPower)
	out.Specular = in.LightColor.Mul(specularIntensity * attenuation)

	out.Diffuse = common.SanitizeVec3(out.Diffuse)
	out.Specular = common.SanitizeVec3(out.Specular)
	return out
}

// safeNormalize returns v normalized, or fallback when v is too short to normalize.
func safeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-6 {
		return fallback
	}
	return v.Mul(1 / l)
}

func isFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
