package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/Carmen-Shannon/hyako/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline draws color or only writes shadow depth.
type PipelineType int

const (
	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points
	// drawing into the swapchain color target and the scene depth buffer.
	PipelineTypeRender PipelineType = iota

	// PipelineTypeShadow indicates a depth-only pipeline with a vertex shader and no fragment
	// stage, drawing into the shadow map.
	PipelineTypeShadow
)

// String returns the pipeline type name.
func (t PipelineType) String() string {
	switch t {
	case PipelineTypeRender:
		return "render"
	case PipelineTypeShadow:
		return "shadow"
	default:
		return fmt.Sprintf("PipelineType(%d)", int(t))
	}
}

// Raster is the fixed-function state a pipeline is created with. Color output is always
// opaque triangle lists wound counter-clockwise; only culling and depth vary per program.
type Raster struct {
	CullMode     wgpu.CullMode
	DepthWrite   bool
	DepthCompare wgpu.CompareFunction
	// DepthBias and SlopeScale offset rasterized depth, used by the shadow program.
	DepthBias  int32
	SlopeScale float32
}

// DefaultRaster draws both faces with a less-than depth test and depth writes on.
func DefaultRaster() Raster {
	return Raster{
		CullMode:     wgpu.CullModeNone,
		DepthWrite:   true,
		DepthCompare: wgpu.CompareFunctionLess,
	}
}

// PrimitiveState returns the primitive state for this raster configuration.
func (r Raster) PrimitiveState() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  r.CullMode,
	}
}

// DepthStencilState returns the depth state for a depth attachment of the given format.
// Stencil is unused.
func (r Raster) DepthStencilState(format wgpu.TextureFormat) *wgpu.DepthStencilState {
	always := wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways}
	return &wgpu.DepthStencilState{
		Format:              format,
		DepthWriteEnabled:   r.DepthWrite,
		DepthCompare:        r.DepthCompare,
		DepthBias:           r.DepthBias,
		DepthBiasSlopeScale: r.SlopeScale,
		StencilFront:        always,
		StencilBack:         always,
	}
}

type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	vertexShader, fragmentShader shader.Shader

	// nil until the backend registers the pipeline
	renderPipeline *wgpu.RenderPipeline

	raster Raster
}

// Pipeline is one shading program: a vertex shader, a fragment shader for color programs, the
// raster state it is created with and, once registered, the GPU pipeline object.
type Pipeline interface {
	// Type returns whether this is a color or a depth-only pipeline.
	Type() PipelineType

	// PipelineKey returns the key the renderer registers and looks up this pipeline by.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the shader of the given stage, or nil if the stage is unset.
	//
	// Parameters:
	//   - shaderType: vertex or fragment
	//
	// Returns:
	//   - shader.Shader: the stage shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the underlying WebGPU pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// Validate reports whether the pipeline has the shaders its type requires.
	//
	// Returns:
	//   - error: an error naming the missing or unexpected stage
	Validate() error

	// BindGroupLayoutDescriptors merges the vertex and fragment bind group layouts by group
	// index. A binding present in both stages keeps one entry with the visibility of both.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptor returns the merged layout of a single group.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the merged layout, empty if no stage declares the group
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// Groups returns the group indices declared by either stage, ascending.
	Groups() []int

	// DynamicBindings returns the bindings of a group that take a dynamic offset, ascending.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - []uint32: the dynamic binding numbers in the order SetBindGroup expects their offsets
	DynamicBindings(group int) []uint32

	// Raster returns the fixed-function state the pipeline is created with.
	Raster() Raster

	// SetRenderPipeline stores the GPU pipeline created from this description.
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline describes a pipeline. Nothing touches the GPU until the renderer registers it.
//
// Parameters:
//   - pipelineKey: the lookup key
//   - pipelineType: color or depth-only
//   - opts: shaders and raster overrides
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
		raster:       DefaultRaster(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Validate() error {
	if p.vertexShader == nil {
		return fmt.Errorf("pipeline %s: missing vertex shader", p.pipelineKey)
	}
	switch p.pipelineType {
	case PipelineTypeRender:
		if p.fragmentShader == nil {
			return fmt.Errorf("pipeline %s: render pipeline requires a fragment shader", p.pipelineKey)
		}
	case PipelineTypeShadow:
		if p.fragmentShader != nil {
			return fmt.Errorf("pipeline %s: shadow pipeline is depth-only and must not have a fragment shader", p.pipelineKey)
		}
	default:
		return errors.New("unknown pipeline type")
	}
	return nil
}

func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	var vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor
	if p.vertexShader != nil {
		vertexLayouts = p.vertexShader.BindGroupLayoutDescriptors()
	}
	if p.fragmentShader != nil {
		fragmentLayouts = p.fragmentShader.BindGroupLayoutDescriptors()
	}
	return mergeBindGroupLayouts(vertexLayouts, fragmentLayouts)
}

func (p *pipeline) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return p.BindGroupLayoutDescriptors()[group]
}

func (p *pipeline) Groups() []int {
	layouts := p.BindGroupLayoutDescriptors()
	groups := make([]int, 0, len(layouts))
	for g := range layouts {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	return groups
}

func (p *pipeline) DynamicBindings(group int) []uint32 {
	var out []uint32
	for _, e := range p.BindGroupLayoutDescriptor(group).Entries {
		if e.Buffer.HasDynamicOffset {
			out = append(out, e.Binding)
		}
	}
	return out
}

func (p *pipeline) Raster() Raster {
	return p.raster
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

// mergeBindGroupLayouts combines vertex and fragment bind group layouts into a single set of
// layouts. A group declared by only one stage is used as-is. A group declared by both has its
// entries merged by binding number, OR-ing the visibility of bindings the stages share.
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	groupIndices := make(map[int]bool)
	for g := range vertexLayouts {
		groupIndices[g] = true
	}
	for g := range fragmentLayouts {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		vDesc, hasV := vertexLayouts[g]
		fDesc, hasF := fragmentLayouts[g]

		switch {
		case hasV && !hasF:
			merged[g] = vDesc
		case hasF && !hasV:
			merged[g] = fDesc
		default:
			entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
			for _, e := range vDesc.Entries {
				entryMap[e.Binding] = e
			}
			for _, e := range fDesc.Entries {
				if existing, ok := entryMap[e.Binding]; ok {
					// same binding in both stages
					existing.Visibility |= e.Visibility
					entryMap[e.Binding] = existing
				} else {
					entryMap[e.Binding] = e
				}
			}

			entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
			for _, e := range entryMap {
				entries = append(entries, e)
			}
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Binding < entries[j].Binding
			})
			merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
		}
	}
	return merged
}
