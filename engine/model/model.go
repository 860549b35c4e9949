package model

import (
	"sync"

	"github.com/Carmen-Shannon/hyako/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.RWMutex

	name           string
	vertices       []GPUVertex
	indices        []uint32
	boundingRadius float32
	meshProvider   bind_group_provider.BindGroupProvider

	vertexData, indexData []byte
}

// Model defines the interface for an immutable indexed triangle mesh.
//
// Vertex and index data are packed for upload when the model is built. The renderer creates the
// GPU vertex and index buffers from that data and stores them in the mesh provider; the CPU shadow
// pass reads Positions and Indices directly.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the mesh vertices. The slice must not be modified.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Positions returns the model-space vertex positions, in vertex order.
	//
	// Returns:
	//   - []mgl32.Vec3: one position per vertex
	Positions() []mgl32.Vec3

	// Indices returns the triangle list indices. The slice must not be modified.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// VertexData returns the packed vertex buffer contents (48 bytes per vertex).
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the packed uint32 index buffer contents.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the model's mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the radius of the model-space bounding sphere centered on the origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// MeshProvider retrieves the BindGroupProvider holding the GPU vertex and index buffers,
	// or nil before the renderer has uploaded the mesh.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider stores the provider holding the uploaded GPU buffers.
	//
	// Parameters:
	//   - provider: the mesh provider
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Model = &model{}

// NewModel creates a new Model from the provided options. The vertex and index data are packed
// once here; a model without indices is drawn as a plain triangle list over its vertices.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions to configure the model
//
// Returns:
//   - Model: the new model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{mu: &sync.RWMutex{}}
	for _, opt := range options {
		opt(m)
	}
	if m.indices == nil {
		m.indices = make([]uint32, len(m.vertices))
		for i := range m.indices {
			m.indices[i] = uint32(i)
		}
	}
	if m.boundingRadius == 0 {
		m.boundingRadius = ComputeBoundingRadius(m.vertices)
	}
	m.vertexData = MarshalVertices(m.vertices)
	m.indexData = MarshalIndices(m.indices)
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Positions() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(m.vertices))
	for i, v := range m.vertices {
		out[i] = v.Position
	}
	return out
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meshProvider
}

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meshProvider = provider
}
