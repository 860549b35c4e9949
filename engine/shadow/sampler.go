package shadow

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CompareFunc selects the depth comparison a Sampler applies. A tap passes, meaning the
// fragment is lit at that tap, when the comparison of the reference depth against the
// stored depth is true.
type CompareFunc int

const (
	// CompareLess passes when reference < stored.
	CompareLess CompareFunc = iota
	// CompareLessEqual passes when reference <= stored.
	CompareLessEqual
)

func (c CompareFunc) String() string {
	switch c {
	case CompareLess:
		return "less"
	case CompareLessEqual:
		return "less_equal"
	default:
		return fmt.Sprintf("CompareFunc(%d)", int(c))
	}
}

// SamplerConfig configures a Sampler.
type SamplerConfig struct {
	// Bias is subtracted from the fragment's reference depth before comparing.
	Bias float32
	// PCFRadius r samples a (2r+1)x(2r+1) texel kernel. Zero takes a single filtered tap.
	PCFRadius int
	// Compare is the depth comparison. The zero value is CompareLess.
	Compare CompareFunc
}

// Validate reports every field that is out of range.
func (c SamplerConfig) Validate() error {
	var errs []error
	if math32.IsNaN(c.Bias) || math32.IsInf(c.Bias, 0) || c.Bias < 0 {
		errs = append(errs, fmt.Errorf("bias must be finite and >= 0, got %v", c.Bias))
	}
	if c.PCFRadius < 0 {
		errs = append(errs, fmt.Errorf("pcf radius must be >= 0, got %d", c.PCFRadius))
	}
	if c.Compare != CompareLess && c.Compare != CompareLessEqual {
		errs = append(errs, fmt.Errorf("unknown compare function %v", c.Compare))
	}
	return errors.Join(errs...)
}

// DefaultSamplerConfig returns the sampler config used by the renderer: the default bias, a 3x3 kernel and Less.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Bias:      light.DefaultShadowBias,
		PCFRadius: light.DefaultPCFRadius,
		Compare:   CompareLess,
	}
}

// Sampler computes shadow visibility by percentage-closer filtering against a ShadowMap.
//
// Each kernel tap behaves like a hardware comparison sampler with linear filtering and
// clamp-to-edge addressing: the four nearest texels are compared against the reference
// depth and the pass/fail results are blended bilinearly.
type Sampler struct {
	shadowMap *ShadowMap
	config    SamplerConfig
}

// NewSampler creates a sampler over m. The map does not need to be complete yet; every lookup
// checks that a pass has finished.
//
// Parameters:
//   - m: the shadow map to sample
//   - cfg: the sampler config
//
// Returns:
//   - *Sampler: the sampler
//   - error: if m is nil or cfg fails Validate
func NewSampler(m *ShadowMap, cfg SamplerConfig) (*Sampler, error) {
	if m == nil {
		return nil, errors.New("sampler needs a shadow map")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sampler config: %w", err)
	}
	return &Sampler{shadowMap: m, config: cfg}, nil
}

// Config returns the sampler config.
func (s *Sampler) Config() SamplerConfig {
	return s.config
}

// Visibility returns how much of the light reaches worldPos, from 0 (fully occluded) to 1 (fully lit).
//
// The fragment is projected by lightVP; after the perspective divide its x and y give the
// texture coordinate (y flipped) and its own z is the reference depth. Fragments outside the
// light frustum are treated as lit.
//
// Parameters:
//   - lightVP: the light view-projection used to render the map
//   - worldPos: the fragment's world position
//
// Returns:
//   - float32: visibility in [0, 1]
//   - error: ErrShadowPassIncomplete if the map is being written or was resized since its last pass
func (s *Sampler) Visibility(lightVP mgl32.Mat4, worldPos mgl32.Vec3) (float32, error) {
	clip := lightVP.Mul4x1(worldPos.Vec4(1))
	if clip.W() <= 0 {
		return 1, nil
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < 0 || ndc.Z() > 1 {
		return 1, nil
	}
	uv := mgl32.Vec2{ndc.X()*0.5 + 0.5, 0.5 - ndc.Y()*0.5}
	return s.VisibilityAt(uv, ndc.Z())
}

// VisibilityAt filters the comparison of refDepth against the map around texture coordinate uv.
//
// Parameters:
//   - uv: texture coordinate, (0, 0) at the top left
//   - refDepth: the fragment's light-space depth in [0, 1]
//
// Returns:
//   - float32: the fraction of the kernel that passes, in [0, 1]
//   - error: ErrShadowPassIncomplete if the map is not complete
func (s *Sampler) VisibilityAt(uv mgl32.Vec2, refDepth float32) (float32, error) {
	m := s.shadowMap
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.complete {
		return 0, ErrShadowPassIncomplete
	}

	ref := refDepth - s.config.Bias
	texelW, texelH := 1/float32(m.width), 1/float32(m.height)
	r := s.config.PCFRadius

	var sum float32
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			sum += s.compareLinear(uv.X()+float32(dx)*texelW, uv.Y()+float32(dy)*texelH, ref)
		}
	}
	taps := float32((2*r + 1) * (2*r + 1))
	return sum / taps, nil
}

// compareLinear is one comparison-sampler tap at (u, v). Caller must hold the map's read lock.
func (s *Sampler) compareLinear(u, v, ref float32) float32 {
	m := s.shadowMap
	tx := u*float32(m.width) - 0.5
	ty := v*float32(m.height) - 0.5
	x0, y0 := math32.Floor(tx), math32.Floor(ty)
	fx, fy := tx-x0, ty-y0
	ix, iy := int(x0), int(y0)

	c00 := s.compare(ref, m.depthAt(ix, iy))
	c10 := s.compare(ref, m.depthAt(ix+1, iy))
	c01 := s.compare(ref, m.depthAt(ix, iy+1))
	c11 := s.compare(ref, m.depthAt(ix+1, iy+1))

	top := c00*(1-fx) + c10*fx
	bottom := c01*(1-fx) + c11*fx
	return top*(1-fy) + bottom*fy
}

func (s *Sampler) compare(ref, stored float32) float32 {
	var pass bool
	switch s.config.Compare {
	case CompareLessEqual:
		pass = ref <= stored
	default:
		pass = ref < stored
	}
	if pass {
		return 1
	}
	return 0
}
