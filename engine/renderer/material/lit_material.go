package material

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LitMaterial is a surface shaded by the point light. Its albedo is the factor multiplied by
// the optional texture.
type LitMaterial interface {
	Material

	// Albedo returns the RGBA albedo factor.
	Albedo() mgl32.Vec4

	// SetAlbedo replaces the albedo factor.
	SetAlbedo(albedo mgl32.Vec4)

	// AlbedoAt returns the surface albedo at a texture coordinate: factor times texture sample.
	//
	// Parameters:
	//   - uv: the texture coordinate
	//
	// Returns:
	//   - mgl32.Vec4: the RGBA albedo
	AlbedoAt(uv mgl32.Vec2) mgl32.Vec4
}

type litMaterial struct {
	*material
}

var _ LitMaterial = &litMaterial{}

// NewLitMaterial creates a lit material. Without a texture the albedo is the factor alone.
//
// Parameters:
//   - opts: functional options (WithAlbedo, WithImage, WithName, ...)
//
// Returns:
//   - LitMaterial: the material
//   - error: an error if a supplied image cannot be staged
func NewLitMaterial(opts ...MaterialBuilderOption) (LitMaterial, error) {
	m, err := newMaterial(KindLit, PipelineKeyLit, opts)
	if err != nil {
		return nil, err
	}
	return &litMaterial{material: m}, nil
}

func (m *litMaterial) Albedo() mgl32.Vec4 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.albedo
}

func (m *litMaterial) SetAlbedo(albedo mgl32.Vec4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.albedo = albedo
}

func (m *litMaterial) AlbedoAt(uv mgl32.Vec2) mgl32.Vec4 {
	s := m.sample(uv)
	a := m.Albedo()
	return mgl32.Vec4{a[0] * s[0], a[1] * s[1], a[2] * s[2], a[3] * s[3]}
}
