package transform

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUTransformSource is the canonical WGSL definition of the Transform struct and the
// compose_transform helper. Matches GPUTransform layout exactly (48 bytes, uniform aligned).
//
//go:embed assets/transform.wgsl
var GPUTransformSource string

// GPUTransform is the GPU-aligned representation of a Transform.
// Matches the WGSL Transform struct layout exactly (see GPUTransformSource).
// Size: 48 bytes. Each vec3 is padded to 16 bytes.
type GPUTransform struct {
	Translation [3]float32 // offset  0: translation (vec3<f32>)
	_pad0       float32    // offset 12: padding to 16-byte vec4 alignment
	Rotation    [4]float32 // offset 16: quaternion xyzw (vec4<f32>)
	Scale       [3]float32 // offset 32: scale (vec3<f32>)
	_pad1       float32    // offset 44: padding to 48 bytes
}

// GPU converts the transform into its uniform buffer representation.
//
// Returns:
//   - GPUTransform: the GPU-aligned transform
func (t Transform) GPU() GPUTransform {
	return GPUTransform{
		Translation: t.Translation,
		Rotation:    [4]float32{t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2], t.Rotation.W},
		Scale:       t.Scale,
	}
}

// Size returns the size of the GPUTransform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUTransform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTransform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUTransform) Marshal() []byte {
	buf := make([]byte, 48)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo writes the GPUTransform into the first 48 bytes of buf. Used by structs that embed
// a Transform so the padding rules live in one place.
//
// Parameters:
//   - buf: destination buffer with at least 48 bytes
func (g *GPUTransform) MarshalTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Translation[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Translation[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Translation[2]))
	binary.LittleEndian.PutUint32(buf[12:16], 0) // padding
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Rotation[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Rotation[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Rotation[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Rotation[3]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Scale[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Scale[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Scale[2]))
	binary.LittleEndian.PutUint32(buf[44:48], 0) // padding
}
