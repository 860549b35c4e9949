package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct shared by every mesh pipeline.
// Matches GPUVertex layout exactly (48 bytes, tightly packed vertex attributes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU representation of a single mesh vertex.
// Matches the WGSL VertexInput struct exactly (see GPUVertexSource). Vertex attributes are
// packed without uniform padding, so the stride is the sum of the attribute sizes.
// Size: 48 bytes.
type GPUVertex struct {
	Position  [3]float32 // offset  0, location 0: model-space position (12 bytes)
	TexCoords [2]float32 // offset 12, location 1: UV texture coordinate (8 bytes)
	Normal    [3]float32 // offset 20, location 2: vertex normal (12 bytes)
	Color     [4]float32 // offset 32, location 3: per-vertex RGBA color (16 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalTo(buf)
	return buf
}

// MarshalTo writes the vertex into buf, which must hold at least 48 bytes.
func (g *GPUVertex) MarshalTo(buf []byte) {
	off := common.PutFloat32s(buf, 0, g.Position[:]...)
	off = common.PutFloat32s(buf, off, g.TexCoords[:]...)
	off = common.PutFloat32s(buf, off, g.Normal[:]...)
	common.PutFloat32s(buf, off, g.Color[:]...)
}

// MarshalVertices packs vertices back to back for a vertex buffer upload.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices) * 48 bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	var v GPUVertex
	stride := v.Size()
	buf := make([]byte, stride*len(vertices))
	for i := range vertices {
		vertices[i].MarshalTo(buf[i*stride:])
	}
	return buf
}

// MarshalIndices packs uint32 indices little-endian for an index buffer upload.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, 4*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// GPUVertex positions. The radius is the maximum distance from the origin
// across all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}

// GPUModelDataSource is the canonical WGSL definition of the ModelData struct, the per-draw data.
// Matches GPUModelData layout exactly (64 bytes).
//
//go:embed assets/model_data.wgsl
var GPUModelDataSource string

// GPUModelData is the per-draw model matrix. It is written into a fresh draw stream slot
// before every draw and is never reused across draws.
// Matches the WGSL ModelData struct layout exactly (see GPUModelDataSource).
// Size: 64 bytes (mat4x4<f32> = 16 × float32, no padding required).
type GPUModelData struct {
	Model [16]float32 // offset 0: 4×4 model-to-world transform matrix (64 bytes)
}

// NewGPUModelData wraps a model matrix for upload.
func NewGPUModelData(m mgl32.Mat4) GPUModelData {
	return GPUModelData{Model: m}
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, 64)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Model[i]))
	}
	return buf
}
