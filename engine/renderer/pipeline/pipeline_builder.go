package pipeline

import (
	"github.com/Carmen-Shannon/hyako/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex stage. Every pipeline needs one.
//
// Parameters:
//   - s: the vertex shader
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment stage. Shadow pipelines are depth-only and must not set
// one.
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithCullMode sets which faces are discarded. Front faces wind counter-clockwise.
//
// Parameters:
//   - mode: wgpu.CullModeNone, wgpu.CullModeFront or wgpu.CullModeBack
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.raster.CullMode = mode
	}
}

// WithDepthWrite sets whether fragments that pass the depth test update the depth buffer.
func WithDepthWrite(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.raster.DepthWrite = enabled
	}
}

// WithDepthCompare sets the depth test. wgpu.CompareFunctionAlways disables it.
//
// Parameters:
//   - fn: the comparison against the stored depth
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepthCompare(fn wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.raster.DepthCompare = fn
	}
}

// WithDepthBias offsets rasterized depth. The shadow pipeline uses a small slope-scaled bias on
// top of the comparison bias applied in the lit fragment shader.
//
// Parameters:
//   - bias: constant bias in depth buffer units
//   - slopeScale: bias scaled by the polygon's depth slope
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.raster.DepthBias = bias
		p.raster.SlopeScale = slopeScale
	}
}
