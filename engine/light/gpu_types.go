package light

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPULightSource is the canonical WGSL definition of the Light struct.
// Depends on the Transform struct. Matches GPULight layout exactly (64 bytes, uniform aligned).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of the point light.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
// Size: 64 bytes (the vec3 color is padded to 16 bytes).
type GPULight struct {
	Translation [3]float32 // offset  0: transform.translation
	_pad0       float32    // offset 12
	Rotation    [4]float32 // offset 16: transform.rotation (x, y, z, w)
	Scale       [3]float32 // offset 32: transform.scale
	_pad1       float32    // offset 44
	Color       [3]float32 // offset 48: RGB color
	_pad2       float32    // offset 60
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.Translation[:]...)
	off = common.PutFloat32s(buf, off, 0)
	off = common.PutFloat32s(buf, off, g.Rotation[:]...)
	off = common.PutFloat32s(buf, off, g.Scale[:]...)
	off = common.PutFloat32s(buf, off, 0)
	off = common.PutFloat32s(buf, off, g.Color[:]...)
	common.PutFloat32s(buf, off, 0)
	return buf
}

// ToGPULight converts a Light into its GPU representation.
//
// Parameters:
//   - l: the light to convert
//
// Returns:
//   - GPULight: the GPU-aligned light
func ToGPULight(l Light) GPULight {
	t := l.Transform().GPU()
	return GPULight{
		Translation: t.Translation,
		Rotation:    t.Rotation,
		Scale:       t.Scale,
		Color:       l.Color(),
	}
}

// GPUShadingParamsSource is the canonical WGSL definition of the ShadingParams struct.
// Matches GPUShadingParams layout exactly (48 bytes, uniform aligned).
//
//go:embed assets/shading_params.wgsl
var GPUShadingParamsSource string

// GPUShadingParams carries the per-frame lighting and shadow constants to the lit fragment shader.
// Matches the WGSL ShadingParams struct layout exactly (see GPUShadingParamsSource).
// Size: 48 bytes.
//
// Layout:
//
//	vec3<f32> camera_position  (12 bytes, offset  0)
//	f32       diffuse_power    ( 4 bytes, offset 12)
//	f32       specular_power   ( 4 bytes, offset 16)
//	f32       min_distance     ( 4 bytes, offset 20)
//	f32       shadow_bias      ( 4 bytes, offset 24)
//	f32       pcf_radius       ( 4 bytes, offset 28)
//	vec2<f32> shadow_texel     ( 8 bytes, offset 32)
//	vec2<f32> _pad             ( 8 bytes, offset 40)
type GPUShadingParams struct {
	CameraPosition [3]float32
	DiffusePower   float32
	SpecularPower  float32
	MinDistance    float32
	ShadowBias     float32
	PCFRadius      float32
	ShadowTexel    [2]float32 // 1 / shadow map resolution
	_pad           [2]float32
}

// NewGPUShadingParams packs the lighting config, camera position and shadow settings into the uniform.
//
// Parameters:
//   - cfg: the lighting config
//   - cameraPosition: world-space eye used for the specular view vector
//   - shadowBias: depth comparison bias
//   - pcfRadius: PCF kernel radius in texels
//   - shadowWidth, shadowHeight: shadow map resolution in texels
//
// Returns:
//   - GPUShadingParams: the packed uniform
func NewGPUShadingParams(cfg LightingConfig, cameraPosition mgl32.Vec3, shadowBias float32, pcfRadius int, shadowWidth, shadowHeight uint32) GPUShadingParams {
	p := GPUShadingParams{
		CameraPosition: cameraPosition,
		DiffusePower:   cfg.DiffusePower,
		SpecularPower:  cfg.SpecularPower,
		MinDistance:    cfg.MinDistance,
		ShadowBias:     shadowBias,
		PCFRadius:      float32(pcfRadius),
	}
	if shadowWidth > 0 && shadowHeight > 0 {
		p.ShadowTexel = [2]float32{1 / float32(shadowWidth), 1 / float32(shadowHeight)}
	}
	return p
}

// Size returns the size of the GPUShadingParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (p *GPUShadingParams) Size() int {
	return int(unsafe.Sizeof(*p))
}

// Marshal serializes the GPUShadingParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (p *GPUShadingParams) Marshal() []byte {
	buf := make([]byte, p.Size())
	off := common.PutFloat32s(buf, 0, p.CameraPosition[:]...)
	off = common.PutFloat32s(buf, off, p.DiffusePower, p.SpecularPower, p.MinDistance, p.ShadowBias, p.PCFRadius)
	common.PutFloat32s(buf, off, p.ShadowTexel[0], p.ShadowTexel[1], 0, 0)
	return buf
}

// GPUShadowUniformSource is the canonical WGSL definition of the ShadowUniform struct.
// Matches GPUShadowUniform layout exactly (64 bytes, uniform aligned).
//
//go:embed assets/shadow_uniform.wgsl
var GPUShadowUniformSource string

// GPUShadowUniform is the GPU-aligned representation of the shadow uniform containing
// only the light view-projection matrix. Both the depth-only shadow pass and the lit
// pass read it, the latter to project fragments into light space.
// Matches the WGSL ShadowUniform struct layout exactly (see GPUShadowUniformSource).
// Size: 64 bytes (mat4x4<f32>).
type GPUShadowUniform struct {
	LightVP [16]float32 // view-projection from the light's point of view
}

// Size returns the size of the GPUShadowUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (u *GPUShadowUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the GPUShadowUniform struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (u *GPUShadowUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	common.PutFloat32s(buf, 0, u.LightVP[:]...)
	return buf
}
