package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertexSource = `//@hyako:include vertex
//@hyako:include camera
//@hyako:include model_data

//@hyako:group 0 0 storage_uniform camera camera
//@hyako:group 1 0 storage_uniform draw model_data
//@hyako:dynamic 1 0

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = camera.view_projection * draw.model * vec4<f32>(in.position, 1.0);
    out.uv = in.tex_coords;
    return out;
}
`

const testFragmentSource = `//@hyako:include light
//@hyako:include shading_params

//@hyako:group 0 1 storage_uniform light light
//@hyako:group 0 2 storage_uniform shading shading_params

//@hyako:provider 3 0 shadow shadow_map
@group(3) @binding(0) var shadow_map: texture_depth_2d;
//@hyako:provider 3 1 shadow shadow_sampler
@group(3) @binding(1) var shadow_sampler: sampler_comparison;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(light.color * shading.diffuse_power, 1.0);
}
`

func TestPreProcessor_IncludeInjectsDependenciesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@hyako:include light\n//@hyako:include transform\n")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct Transform"), "transform is injected once")
	assert.Equal(t, 1, strings.Count(out, "struct Light"))
	assert.Less(t, strings.Index(out, "struct Transform"), strings.Index(out, "struct Light"), "dependency comes first")
}

func TestPreProcessor_GroupDeclaration(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@hyako:group 0 0 storage_uniform camera camera")
	require.NoError(t, err)
	assert.Equal(t, "@group(0) @binding(0) var<uniform> camera: Camera;", out)

	decls := pp.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, 0, *decls[0].Group)
	assert.Equal(t, AnnotationArgCamera, decls[0].Args[2])
}

func TestPreProcessor_ProcessResetsDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("//@hyako:include camera\n//@hyako:group 0 0 storage_uniform camera camera")
	require.NoError(t, err)
	out, err := pp.Process("//@hyako:include camera")
	require.NoError(t, err)

	assert.Empty(t, pp.Declarations())
	assert.Contains(t, out, "struct Camera", "a new Process call includes again")
}

func TestParseAnnotation_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", "//@hyako:"},
		{"unknown type", "//@hyako:bogus 0 0"},
		{"unknown include", "//@hyako:include teapot"},
		{"group arity", "//@hyako:group 0 0 storage_uniform camera"},
		{"bad address space", "//@hyako:group 0 0 private camera camera"},
		{"negative group", "//@hyako:group -1 0 storage_uniform camera camera"},
		{"unknown provider", "//@hyako:provider 2 1 scene albedo_texture"},
		{"unknown role", "//@hyako:provider 2 1 material normal_map"},
		{"dynamic arity", "//@hyako:dynamic 1"},
		{"dynamic not a number", "//@hyako:dynamic one 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			assert.Nil(t, a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 7")
		})
	}
}

func TestParseAnnotation_PlainLine(t *testing.T) {
	a, err := parseAnnotation("// just a comment", 1)
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestShader_DynamicBindingMarked(t *testing.T) {
	s, err := NewShaderFromSource("test.vert", ShaderTypeVertex, testVertexSource)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", s.EntryPoint())

	draw := s.BindGroupLayoutDescriptor(1)
	require.Len(t, draw.Entries, 1)
	assert.True(t, draw.Entries[0].Buffer.HasDynamicOffset)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, draw.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(64), draw.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, draw.Entries[0].Visibility)

	cam := s.BindGroupLayoutDescriptor(0)
	require.Len(t, cam.Entries, 1)
	assert.False(t, cam.Entries[0].Buffer.HasDynamicOffset)
	assert.Equal(t, "draw", s.BindGroupVarName(1, 0))
}

func TestShader_DynamicRejectsNonUniform(t *testing.T) {
	src := testFragmentSource + "\n//@hyako:dynamic 3 0\n"
	_, err := NewShaderFromSource("bad.frag", ShaderTypeFragment, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group 3 binding 0")
}

func TestShader_MissingEntryPoint(t *testing.T) {
	_, err := NewShaderFromSource("empty.frag", ShaderTypeFragment, "//@hyako:include camera\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@fragment")
}

func TestShader_FragmentResources(t *testing.T) {
	s, err := NewShaderFromSource("test.frag", ShaderTypeFragment, testFragmentSource)
	require.NoError(t, err)

	frame := s.BindGroupLayoutDescriptor(0)
	require.Len(t, frame.Entries, 2)
	assert.Equal(t, uint32(1), frame.Entries[0].Binding)
	assert.Equal(t, uint64(64), frame.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(48), frame.Entries[1].Buffer.MinBindingSize)

	shadow := s.BindGroupLayoutDescriptor(3)
	require.Len(t, shadow.Entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, shadow.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, shadow.Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, shadow.Entries[1].Sampler.Type)

	providers := 0
	for _, d := range s.Declarations() {
		if d.Type == AnnotationTypeProvider {
			providers++
			assert.Equal(t, AnnotationArgShadow, d.Args[0])
		}
	}
	assert.Equal(t, 2, providers)
	assert.Empty(t, s.VertexLayouts())
}

func TestShader_VertexLayout(t *testing.T) {
	s, err := NewShaderFromSource("test.vert", ShaderTypeVertex, testVertexSource)
	require.NoError(t, err)

	layouts := s.VertexLayout(0)
	require.Len(t, layouts, 1, "VertexOutput carries a builtin and is not a vertex buffer")
	l := layouts[0]
	assert.Equal(t, uint64(48), l.ArrayStride)
	require.Len(t, l.Attributes, 4)

	offsets := make([]uint64, 0, 4)
	for _, a := range l.Attributes {
		offsets = append(offsets, a.Offset)
	}
	assert.Equal(t, []uint64{0, 12, 20, 32}, offsets)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, l.Attributes[0].Format)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, l.Attributes[3].Format)
}

func TestStructLayouts_RegisteredStructs(t *testing.T) {
	pp := NewPreProcessor()
	src, err := pp.Process(strings.Join([]string{
		"//@hyako:include light",
		"//@hyako:include shading_params",
		"//@hyako:include camera",
		"//@hyako:include shadow_uniform",
		"//@hyako:include model_data",
		"//@hyako:include material_params",
	}, "\n"))
	require.NoError(t, err)

	layouts := StructLayouts(src)
	want := map[string]uint64{
		"Transform":      48,
		"Light":          64,
		"ShadingParams":  48,
		"Camera":         64,
		"ShadowUniform":  64,
		"ModelData":      64,
		"MaterialParams": 32,
	}
	for name, size := range want {
		l, ok := layouts[name]
		if assert.True(t, ok, name) {
			assert.Equal(t, size, l.Size, name)
		}
	}

	off, ok := layouts["Light"].Offset("color")
	require.True(t, ok)
	assert.Equal(t, uint64(48), off)

	off, ok = layouts["ShadingParams"].Offset("shadow_texel")
	require.True(t, ok)
	assert.Equal(t, uint64(32), off)
}

func TestStructLayouts_Arrays(t *testing.T) {
	layouts := StructLayouts(`struct Item { v: vec3<f32>, }
struct Bag { items: array<Item, 3>, n: u32, }`)
	assert.Equal(t, uint64(16), layouts["Item"].Size)
	assert.Equal(t, uint64(64), layouts["Bag"].Size)
}

func TestShaderType_String(t *testing.T) {
	assert.Equal(t, "vertex", ShaderTypeVertex.String())
	assert.Equal(t, "fragment", ShaderTypeFragment.String())
}
