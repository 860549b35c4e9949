package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource declares the WGSL Camera struct bound at group 0, binding 0.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the per-frame camera block. The eye position the lit shader needs travels
// in the shading params instead, so this is a single column-major matrix.
type GPUCameraUniform struct {
	ViewProjection mgl32.Mat4
}

// Size returns the uniform size in bytes, 64.
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal encodes the uniform little-endian for upload.
//
// Returns:
//   - []byte: 64 bytes
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf, 0, g.ViewProjection)
	return buf
}
