package model

import "github.com/Carmen-Shannon/hyako/engine/renderer/bind_group_provider"

// ModelBuilderOption configures a Model in NewModel.
type ModelBuilderOption func(*model)

// WithName sets the name used in logs and GPU labels.
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithVertices sets the mesh vertices.
//
// Parameters:
//   - vertices: the vertices
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithVertices(vertices []GPUVertex) ModelBuilderOption {
	return func(m *model) {
		m.vertices = vertices
	}
}

// WithIndices sets the triangle list indices. Without them the vertices are drawn in order.
func WithIndices(indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.indices = indices
	}
}

// WithBoundingRadius overrides the radius computed from the vertices. The radius is measured
// from the model origin in model space and drives frustum culling and shadow fitting.
//
// Parameters:
//   - radius: the bounding sphere radius
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}

// WithMeshProvider attaches a provider whose vertex and index buffers are already uploaded,
// so the renderer skips the upload.
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}
