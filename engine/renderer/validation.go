package renderer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/Carmen-Shannon/hyako/engine/camera"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/hyako/engine/renderer/shader"
	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrLayoutMismatch is returned at setup when a WGSL struct and its Go counterpart disagree
	// on size, or the per-draw binding is not a single matrix.
	ErrLayoutMismatch = errors.New("gpu layout mismatch")

	// ErrDeviceLimit is returned at setup when the device cannot satisfy the renderer's needs.
	ErrDeviceLimit = errors.New("device limit exceeded")
)

// PerDrawSize is the size in bytes of the per-draw uniform: one mat4x4<f32>.
const PerDrawSize = 64

// requiredBindGroups is the number of bind groups used by the lit program (frame, draw,
// material, shadow).
const requiredBindGroups = 4

// HostStructSizes returns the size of every Go GPU type keyed by the WGSL struct it mirrors.
//
// Returns:
//   - map[string]int: struct name to size in bytes
func HostStructSizes() map[string]int {
	var (
		t  transform.GPUTransform
		c  camera.GPUCameraUniform
		l  light.GPULight
		sp light.GPUShadingParams
		su light.GPUShadowUniform
		md model.GPUModelData
		mp material.GPUMaterialParams
	)
	return map[string]int{
		"Transform":      t.Size(),
		"Camera":         c.Size(),
		"Light":          l.Size(),
		"ShadingParams":  sp.Size(),
		"ShadowUniform":  su.Size(),
		"ModelData":      md.Size(),
		"MaterialParams": mp.Size(),
	}
}

// ValidateLayouts checks every struct the pipelines' shaders declare against the Go GPU types.
// It also checks that every dynamic-offset binding holds exactly one matrix and that vertex
// buffers have the host vertex stride.
//
// Parameters:
//   - pipelines: the pipelines to check
//   - hostSizes: Go struct sizes keyed by WGSL struct name, usually HostStructSizes()
//
// Returns:
//   - error: every mismatch joined, each wrapping ErrLayoutMismatch; nil when all agree
func ValidateLayouts(pipelines []pipeline.Pipeline, hostSizes map[string]int) error {
	var errs []error
	var vertex model.GPUVertex

	for _, p := range pipelines {
		for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
			s := p.Shader(st)
			if s == nil {
				continue
			}
			layouts := s.StructLayouts()
			names := make([]string, 0, len(layouts))
			for name := range layouts {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				want, ok := hostSizes[name]
				if !ok {
					continue
				}
				if got := layouts[name].Size; got != uint64(want) {
					errs = append(errs, fmt.Errorf("%w: struct %s in shader %s is %d bytes, Go type is %d",
						ErrLayoutMismatch, name, s.Key(), got, want))
				}
			}

			if st == shader.ShaderTypeVertex {
				for slot, vls := range s.VertexLayouts() {
					for _, vl := range vls {
						if vl.ArrayStride != uint64(vertex.Size()) {
							errs = append(errs, fmt.Errorf("%w: vertex buffer %d in shader %s has stride %d, Go vertex is %d",
								ErrLayoutMismatch, slot, s.Key(), vl.ArrayStride, vertex.Size()))
						}
					}
				}
			}
		}

		for _, g := range p.Groups() {
			for _, e := range p.BindGroupLayoutDescriptor(g).Entries {
				if !e.Buffer.HasDynamicOffset {
					continue
				}
				if e.Buffer.MinBindingSize != PerDrawSize {
					errs = append(errs, fmt.Errorf("%w: per-draw binding %d/%d in pipeline %s is %d bytes, want %d",
						ErrLayoutMismatch, g, e.Binding, p.PipelineKey(), e.Buffer.MinBindingSize, PerDrawSize))
				}
				if e.Visibility != wgpu.ShaderStageVertex {
					errs = append(errs, fmt.Errorf("%w: per-draw binding %d/%d in pipeline %s must be visible to the vertex stage only",
						ErrLayoutMismatch, g, e.Binding, p.PipelineKey()))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// DeviceLimits is the subset of the device's limits the renderer depends on.
type DeviceLimits struct {
	MaxTextureDimension2D                     uint32
	MaxBindGroups                             uint32
	MaxDynamicUniformBuffersPerPipelineLayout uint32
	MaxUniformBufferBindingSize               uint64
	MinUniformBufferOffsetAlignment           uint32
	MaxBufferSize                             uint64
}

// DeviceLimitsFrom copies the relevant fields out of a wgpu limits struct.
func DeviceLimitsFrom(l wgpu.Limits) DeviceLimits {
	return DeviceLimits{
		MaxTextureDimension2D:                     uint32(l.MaxTextureDimension2D),
		MaxBindGroups:                             uint32(l.MaxBindGroups),
		MaxDynamicUniformBuffersPerPipelineLayout: uint32(l.MaxDynamicUniformBuffersPerPipelineLayout),
		MaxUniformBufferBindingSize:               uint64(l.MaxUniformBufferBindingSize),
		MinUniformBufferOffsetAlignment:           uint32(l.MinUniformBufferOffsetAlignment),
		MaxBufferSize:                             uint64(l.MaxBufferSize),
	}
}

// LimitRequirements describes what the renderer will ask of the device.
type LimitRequirements struct {
	// ShadowResolution is the largest shadow map side in texels.
	ShadowResolution uint32

	// MaxDrawsPerFrame is the draw stream capacity.
	MaxDrawsPerFrame int

	// UniformBindingSize is the largest uniform struct bound.
	UniformBindingSize uint64
}

// ValidateLimits checks the device limits against the renderer's requirements once at setup.
//
// Parameters:
//   - limits: the device limits
//   - req: the renderer's requirements
//
// Returns:
//   - error: every violation joined, each wrapping ErrDeviceLimit; nil when the device suffices
func ValidateLimits(limits DeviceLimits, req LimitRequirements) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrDeviceLimit}, args...)...))
	}

	if limits.MaxBindGroups < requiredBindGroups {
		fail("max bind groups is %d, need %d", limits.MaxBindGroups, requiredBindGroups)
	}
	if limits.MaxDynamicUniformBuffersPerPipelineLayout < 1 {
		fail("dynamic uniform buffers per pipeline layout is %d, need 1", limits.MaxDynamicUniformBuffersPerPipelineLayout)
	}
	if req.UniformBindingSize > limits.MaxUniformBufferBindingSize {
		fail("uniform binding of %d bytes exceeds max uniform buffer binding size %d", req.UniformBindingSize, limits.MaxUniformBufferBindingSize)
	}
	if req.ShadowResolution > limits.MaxTextureDimension2D {
		fail("shadow resolution %d exceeds max texture dimension %d", req.ShadowResolution, limits.MaxTextureDimension2D)
	}

	align := limits.MinUniformBufferOffsetAlignment
	if align == 0 || align&(align-1) != 0 {
		fail("min uniform buffer offset alignment %d is not a power of two", align)
	} else {
		streamSize := common.AlignUp(PerDrawSize, uint64(align)) * uint64(max(req.MaxDrawsPerFrame, 0))
		if streamSize > limits.MaxBufferSize {
			fail("draw stream of %d draws needs %d bytes, max buffer size is %d", req.MaxDrawsPerFrame, streamSize, limits.MaxBufferSize)
		}
	}
	return errors.Join(errs...)
}
