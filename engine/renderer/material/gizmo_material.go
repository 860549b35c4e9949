package material

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultGizmoScale is the uniform scale applied to the marker mesh at the light position.
const DefaultGizmoScale float32 = 0.25

// GizmoConfig configures the light marker.
type GizmoConfig struct {
	// Scale is the uniform scale of the marker mesh.
	Scale float32 `yaml:"scale" toml:"scale"`
}

// DefaultGizmoConfig returns the default marker configuration.
func DefaultGizmoConfig() GizmoConfig {
	return GizmoConfig{Scale: DefaultGizmoScale}
}

// Validate reports an error when the scale is not a positive finite number.
func (c GizmoConfig) Validate() error {
	if !(c.Scale > 0) || math32.IsInf(c.Scale, 0) {
		return errors.New("gizmo scale must be a positive finite number")
	}
	return nil
}

// LightGizmoMaterial draws a small marker at the light's position in the light's color. It
// bypasses the shading model entirely.
type LightGizmoMaterial interface {
	Material

	// Config returns the marker configuration.
	Config() GizmoConfig

	// SetConfig replaces the marker configuration. An invalid scale falls back to the default.
	SetConfig(cfg GizmoConfig)

	// ModelMatrix places the marker at the light position with identity rotation and the
	// configured uniform scale.
	//
	// Parameters:
	//   - l: the light being marked
	//
	// Returns:
	//   - mgl32.Mat4: the marker's model matrix
	ModelMatrix(l light.Light) mgl32.Mat4

	// Color returns the flat marker color: the light color with alpha 1.
	Color(l light.Light) mgl32.Vec4

	// ParamsFor returns the material uniform carrying the light color.
	ParamsFor(l light.Light) GPUMaterialParams
}

type lightGizmoMaterial struct {
	*material
	cfgMu sync.RWMutex
	cfg   GizmoConfig
}

var _ LightGizmoMaterial = &lightGizmoMaterial{}

// NewLightGizmoMaterial creates the light marker material.
//
// Parameters:
//   - cfg: the marker configuration; an invalid scale falls back to DefaultGizmoScale
//   - opts: functional options (WithName, WithLogger, ...)
//
// Returns:
//   - LightGizmoMaterial: the material
func NewLightGizmoMaterial(cfg GizmoConfig, opts ...MaterialBuilderOption) LightGizmoMaterial {
	// Gizmos drop any image option, so staging cannot fail.
	m, _ := newMaterial(KindGizmo, PipelineKeyGizmo, opts)
	g := &lightGizmoMaterial{material: m}
	g.SetConfig(cfg)
	return g
}

func (g *lightGizmoMaterial) Config() GizmoConfig {
	g.cfgMu.RLock()
	defer g.cfgMu.RUnlock()
	return g.cfg
}

func (g *lightGizmoMaterial) SetConfig(cfg GizmoConfig) {
	if err := cfg.Validate(); err != nil {
		g.logger.Warn("invalid gizmo config, using default scale", "scale", cfg.Scale, "error", err)
		cfg.Scale = DefaultGizmoScale
	}
	g.cfgMu.Lock()
	defer g.cfgMu.Unlock()
	g.cfg = cfg
}

func (g *lightGizmoMaterial) ModelMatrix(l light.Light) mgl32.Mat4 {
	s := g.Config().Scale
	return transform.Compose(l.Position(), mgl32.QuatIdent(), mgl32.Vec3{s, s, s})
}

func (g *lightGizmoMaterial) Color(l light.Light) mgl32.Vec4 {
	return l.Color().Vec4(1)
}

func (g *lightGizmoMaterial) ParamsFor(l light.Light) GPUMaterialParams {
	return GPUMaterialParams{Albedo: g.Color(l)}
}
