package renderer

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/hyako/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineKeyShadow is the key of the depth-only shadow pipeline.
const PipelineKeyShadow = "shadow"

// Hardware depth bias applied when rasterizing the shadow map, in addition to the comparison
// bias the lit shader applies when sampling it.
const (
	ShadowRasterBias  int32   = 2
	ShadowRasterSlope float32 = 1.5
)

// Bind group indices shared by every program.
const (
	// GroupFrame holds the per-frame uniforms (camera, light, shading params, shadow uniform).
	GroupFrame = 0
	// GroupDraw holds the per-draw model matrix at a dynamic offset.
	GroupDraw = 1
	// GroupMaterial holds the material params and optional albedo texture.
	GroupMaterial = 2
	// GroupShadow holds the shadow map and its comparison sampler.
	GroupShadow = 3
)

var (
	//go:embed assets/shaders/lit-vert.wgsl
	litVertSource string
	//go:embed assets/shaders/lit-frag.wgsl
	litFragSource string
	//go:embed assets/shaders/unlit-vert.wgsl
	unlitVertSource string
	//go:embed assets/shaders/unlit-frag.wgsl
	unlitFragSource string
	//go:embed assets/shaders/gizmo-vert.wgsl
	gizmoVertSource string
	//go:embed assets/shaders/gizmo-frag.wgsl
	gizmoFragSource string
	//go:embed assets/shaders/shadow-depth-vert.wgsl
	shadowVertSource string
)

// DefaultPipelines builds the lit, unlit, gizmo and shadow pipelines from the embedded WGSL
// programs. The returned pipelines are not yet registered with a device.
//
// Returns:
//   - []pipeline.Pipeline: lit, unlit, gizmo and shadow, in that order
//   - error: an error if any program fails to pre-process
func DefaultPipelines() ([]pipeline.Pipeline, error) {
	type program struct {
		key          string
		pipelineType pipeline.PipelineType
		vert, frag   string
		opts         []pipeline.PipelineBuilderOption
	}
	programs := []program{
		{key: material.PipelineKeyLit, pipelineType: pipeline.PipelineTypeRender, vert: litVertSource, frag: litFragSource,
			opts: []pipeline.PipelineBuilderOption{pipeline.WithCullMode(wgpu.CullModeBack)}},
		{key: material.PipelineKeyUnlit, pipelineType: pipeline.PipelineTypeRender, vert: unlitVertSource, frag: unlitFragSource},
		// the marker sits inside the light it marks; it must not hide geometry drawn at equal depth
		{key: material.PipelineKeyGizmo, pipelineType: pipeline.PipelineTypeRender, vert: gizmoVertSource, frag: gizmoFragSource,
			opts: []pipeline.PipelineBuilderOption{pipeline.WithDepthCompare(wgpu.CompareFunctionLessEqual)}},
		{key: PipelineKeyShadow, pipelineType: pipeline.PipelineTypeShadow, vert: shadowVertSource,
			opts: []pipeline.PipelineBuilderOption{pipeline.WithDepthBias(ShadowRasterBias, ShadowRasterSlope)}},
	}

	out := make([]pipeline.Pipeline, 0, len(programs))
	for _, prog := range programs {
		vs, err := shader.NewShaderFromSource(prog.key+"_vert", shader.ShaderTypeVertex, prog.vert)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", prog.key, err)
		}
		opts := append([]pipeline.PipelineBuilderOption{pipeline.WithVertexShader(vs)}, prog.opts...)
		if prog.frag != "" {
			fs, err := shader.NewShaderFromSource(prog.key+"_frag", shader.ShaderTypeFragment, prog.frag)
			if err != nil {
				return nil, fmt.Errorf("pipeline %s: %w", prog.key, err)
			}
			opts = append(opts, pipeline.WithFragmentShader(fs))
		}
		p := pipeline.NewPipeline(prog.key, prog.pipelineType, opts...)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// groupStructs maps each buffer binding of a group to the registered struct it was declared
// with, across both stages of a pipeline.
func groupStructs(p pipeline.Pipeline, group int) map[int]shader.AnnotationArg {
	out := make(map[int]shader.AnnotationArg)
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		s := p.Shader(st)
		if s == nil {
			continue
		}
		for _, d := range s.Declarations() {
			if d.Type == shader.AnnotationTypeBindingGroup && *d.Group == group {
				out[*d.Binding] = d.Args[2]
			}
		}
	}
	return out
}

// providerRoles maps the binding roles registered for a provider identity to their group and
// binding.
func providerRoles(p pipeline.Pipeline, identity shader.AnnotationArg) map[shader.AnnotationArg][2]int {
	out := make(map[shader.AnnotationArg][2]int)
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		s := p.Shader(st)
		if s == nil {
			continue
		}
		for _, d := range s.Declarations() {
			if d.Type != shader.AnnotationTypeProvider || d.Args[0] != identity || len(d.Args) < 2 {
				continue
			}
			out[d.Args[1]] = [2]int{*d.Group, *d.Binding}
		}
	}
	return out
}
