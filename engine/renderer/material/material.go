// Package material describes how a drawable's surface is colored and which render pipeline
// draws it. Lit materials go through the point-light shading model; unlit textured materials
// and the light gizmo bypass it. Every material carries a CPU reference of its color so the
// shading can be checked without a GPU.
package material

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/Carmen-Shannon/hyako/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind selects the shading path of a material.
type Kind int

const (
	// KindLit is shaded by the point light with shadows.
	KindLit Kind = iota
	// KindUnlit outputs its texture color directly.
	KindUnlit
	// KindGizmo outputs the flat color of the light it marks.
	KindGizmo
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLit:
		return "lit"
	case KindUnlit:
		return "unlit"
	case KindGizmo:
		return "gizmo"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Pipeline keys for each material kind. The renderer registers one pipeline per key.
const (
	PipelineKeyLit   = "lit"
	PipelineKeyUnlit = "unlit"
	PipelineKeyGizmo = "gizmo"
)

// Material bind group bindings, shared by every program's material group.
const (
	BindingParams        = 0
	BindingAlbedoTexture = 1
	BindingAlbedoSampler = 2
)

// material is the shared implementation behind every material kind.
type material struct {
	mu          sync.RWMutex
	name        string
	kind        Kind
	pipelineKey string

	albedo  mgl32.Vec4
	texture *common.TextureStagingData
	filter  Filter

	image               image.Image
	maxTextureDimension int

	provider bind_group_provider.BindGroupProvider
	logger   *slog.Logger
}

// Material is the common surface of all materials.
type Material interface {
	// Name returns the material's identifier.
	Name() string

	// Kind returns the shading path.
	Kind() Kind

	// PipelineKey returns the key of the render pipeline that draws this material.
	PipelineKey() string

	// BindGroupProvider returns the provider holding the material's GPU resources.
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider replaces the provider.
	SetBindGroupProvider(p bind_group_provider.BindGroupProvider)

	// Params returns the uniform data uploaded to the material's params binding.
	//
	// Returns:
	//   - GPUMaterialParams: the GPU-aligned params
	Params() GPUMaterialParams

	// Texture returns the staged albedo texture.
	//
	// Returns:
	//   - common.TextureStagingData: the RGBA8 pixels
	//   - bool: false if the material has no texture
	Texture() (common.TextureStagingData, bool)

	// Filter returns the filter used when sampling the texture.
	Filter() Filter

	// SamplerStagingData returns the sampler configuration matching Filter with repeat addressing.
	SamplerStagingData() common.SamplerStagingData
}

var _ Material = &material{}

func newMaterial(kind Kind, pipelineKey string, opts []MaterialBuilderOption) (*material, error) {
	m := &material{
		name:        fmt.Sprintf("%s material", kind),
		kind:        kind,
		pipelineKey: pipelineKey,
		albedo:      mgl32.Vec4{1, 1, 1, 1},
		filter:      FilterLinear,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "material", "material", m.name)
	if kind == KindGizmo {
		m.image, m.texture = nil, nil
	}

	if m.image != nil {
		staged, err := common.NewTextureStagingData(m.image, m.maxTextureDimension)
		if err != nil {
			return nil, fmt.Errorf("material %s: staging texture: %w", m.name, err)
		}
		if b := m.image.Bounds(); b.Dx() != int(staged.Width) || b.Dy() != int(staged.Height) {
			m.logger.Info("texture downscaled",
				"from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
				"to", fmt.Sprintf("%dx%d", staged.Width, staged.Height))
		}
		m.texture = &staged
		m.image = nil
	}
	if m.provider == nil {
		m.provider = bind_group_provider.NewBindGroupProvider(m.name)
	}
	return m, nil
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.provider
}

func (m *material) SetBindGroupProvider(p bind_group_provider.BindGroupProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = p
}

func (m *material) Params() GPUMaterialParams {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := GPUMaterialParams{Albedo: m.albedo}
	if m.texture != nil {
		p.HasTexture = 1
	}
	return p
}

func (m *material) Texture() (common.TextureStagingData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.texture == nil {
		return common.TextureStagingData{}, false
	}
	return *m.texture, true
}

func (m *material) Filter() Filter {
	return m.filter
}

func (m *material) SamplerStagingData() common.SamplerStagingData {
	mode := wgpu.FilterModeLinear
	if m.filter == FilterNearest {
		mode = wgpu.FilterModeNearest
	}
	return common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    mode,
		MinFilter:    mode,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}
}

// sample reads the material texture at uv, or opaque white when there is none.
func (m *material) sample(uv mgl32.Vec2) mgl32.Vec4 {
	m.mu.RLock()
	tex := m.texture
	m.mu.RUnlock()
	if tex == nil {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	return SampleTexture(*tex, uv, m.filter)
}
