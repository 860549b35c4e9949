package material

import (
	"image"
	"log/slog"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/Carmen-Shannon/hyako/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a material during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithAlbedo is an option builder that sets the RGBA albedo factor. Lit materials multiply it
// with the texture sample.
//
// Parameters:
//   - albedo: the RGBA factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the albedo option to a material
func WithAlbedo(albedo mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.albedo = albedo
	}
}

// WithImage stages a host-supplied image as the albedo texture. The conversion to RGBA8 runs
// in the constructor, after WithMaxTextureDimension has been applied.
func WithImage(img image.Image) MaterialBuilderOption {
	return func(m *material) {
		m.image = img
	}
}

// WithTexture sets already-staged RGBA8 texture data.
func WithTexture(tex common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.texture = &tex
	}
}

// WithMaxTextureDimension limits the longest texture side. Larger images are downscaled.
//
// Parameters:
//   - n: the largest allowed side in texels, or 0 for no limit
//
// Returns:
//   - MaterialBuilderOption: a function that applies the limit to a material
func WithMaxTextureDimension(n int) MaterialBuilderOption {
	return func(m *material) {
		m.maxTextureDimension = n
	}
}

// WithFilter selects nearest or linear texture filtering.
func WithFilter(f Filter) MaterialBuilderOption {
	return func(m *material) {
		m.filter = f
	}
}

// WithPipelineKey overrides the default pipeline key for the material kind.
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithBindGroupProvider sets the provider holding the material's GPU resources.
func WithBindGroupProvider(p bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.provider = p
	}
}

// WithLogger sets the logger used for setup messages.
func WithLogger(logger *slog.Logger) MaterialBuilderOption {
	return func(m *material) {
		if logger != nil {
			m.logger = logger
		}
	}
}
