package material

import (
	_ "embed"
	"encoding/binary"
	"unsafe"

	"github.com/Carmen-Shannon/hyako/common"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (32 bytes, uniform aligned).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the per-material uniform shared by the lit, unlit and gizmo programs.
// Matches the WGSL MaterialParams struct layout exactly (see GPUMaterialParamsSource).
// Size: 32 bytes.
type GPUMaterialParams struct {
	Albedo     [4]float32 // offset  0: RGBA albedo factor (gizmo: flat light color)
	HasTexture uint32     // offset 16: 1 when the albedo texture binding holds real data
	_pad       [3]uint32  // offset 20
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.Albedo[:]...)
	binary.LittleEndian.PutUint32(buf[off:off+4], g.HasTexture)
	return buf
}
