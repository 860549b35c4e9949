package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/hyako/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPipelinesByKey(t *testing.T) map[string]pipeline.Pipeline {
	t.Helper()
	pipelines, err := DefaultPipelines()
	require.NoError(t, err)
	out := make(map[string]pipeline.Pipeline, len(pipelines))
	for _, p := range pipelines {
		out[p.PipelineKey()] = p
	}
	return out
}

func TestDefaultPipelines(t *testing.T) {
	pipelines, err := DefaultPipelines()
	require.NoError(t, err)
	require.Len(t, pipelines, 4)

	keys := make([]string, len(pipelines))
	for i, p := range pipelines {
		keys[i] = p.PipelineKey()
		assert.NoError(t, p.Validate(), p.PipelineKey())
	}
	assert.Equal(t, []string{material.PipelineKeyLit, material.PipelineKeyUnlit, material.PipelineKeyGizmo, PipelineKeyShadow}, keys)
	assert.Equal(t, pipeline.PipelineTypeShadow, pipelines[3].Type())
	assert.Nil(t, pipelines[3].Shader(shader.ShaderTypeFragment))

	assert.Equal(t, wgpu.CullModeBack, pipelines[0].Raster().CullMode)
	assert.Equal(t, wgpu.CullModeNone, pipelines[1].Raster().CullMode, "unlit panels are double-sided")
	assert.Equal(t, wgpu.CompareFunctionLessEqual, pipelines[2].Raster().DepthCompare)
	assert.Equal(t, ShadowRasterBias, pipelines[3].Raster().DepthBias)
	assert.True(t, pipelines[3].Raster().DepthWrite)
}

func TestDefaultPipelines_Groups(t *testing.T) {
	byKey := defaultPipelinesByKey(t)

	assert.Equal(t, []int{GroupFrame, GroupDraw, GroupMaterial, GroupShadow}, byKey[material.PipelineKeyLit].Groups())
	assert.Equal(t, []int{GroupFrame, GroupDraw, GroupMaterial}, byKey[material.PipelineKeyUnlit].Groups())
	assert.Equal(t, []int{GroupFrame, GroupDraw, GroupMaterial}, byKey[material.PipelineKeyGizmo].Groups())
	assert.Equal(t, []int{GroupFrame, GroupDraw}, byKey[PipelineKeyShadow].Groups())

	for key, p := range byKey {
		assert.Equal(t, []uint32{0}, p.DynamicBindings(GroupDraw), key)
		entries := p.BindGroupLayoutDescriptor(GroupDraw).Entries
		require.Len(t, entries, 1, key)
		assert.Equal(t, wgpu.ShaderStageVertex, entries[0].Visibility, key)
		assert.Equal(t, uint64(PerDrawSize), entries[0].Buffer.MinBindingSize, key)
	}
}

func TestGroupStructs(t *testing.T) {
	byKey := defaultPipelinesByKey(t)

	assert.Equal(t, map[int]shader.AnnotationArg{
		0: shader.AnnotationArgCamera,
		1: shader.AnnotationArgLight,
		2: shader.AnnotationArgShadingParams,
		3: shader.AnnotationArgShadowUniform,
	}, groupStructs(byKey[material.PipelineKeyLit], GroupFrame))

	assert.Equal(t, map[int]shader.AnnotationArg{
		0: shader.AnnotationArgShadowUniform,
	}, groupStructs(byKey[PipelineKeyShadow], GroupFrame))

	assert.Equal(t, map[int]shader.AnnotationArg{
		0: shader.AnnotationArgModelData,
	}, groupStructs(byKey[material.PipelineKeyUnlit], GroupDraw))

	assert.Empty(t, groupStructs(byKey[PipelineKeyShadow], GroupMaterial))
}

func TestProviderRoles(t *testing.T) {
	byKey := defaultPipelinesByKey(t)
	lit := byKey[material.PipelineKeyLit]

	assert.Equal(t, map[shader.AnnotationArg][2]int{
		shader.AnnotationArgAlbedoTexture: {GroupMaterial, material.BindingAlbedoTexture},
		shader.AnnotationArgAlbedoSampler: {GroupMaterial, material.BindingAlbedoSampler},
	}, providerRoles(lit, shader.AnnotationArgMaterial))

	assert.Equal(t, map[shader.AnnotationArg][2]int{
		shader.AnnotationArgShadowMap:     {GroupShadow, 0},
		shader.AnnotationArgShadowSampler: {GroupShadow, 1},
	}, providerRoles(lit, shader.AnnotationArgShadow))

	assert.Empty(t, providerRoles(byKey[material.PipelineKeyGizmo], shader.AnnotationArgMaterial))
}

func TestDefaultPipelines_ShadowGroupLayout(t *testing.T) {
	lit := defaultPipelinesByKey(t)[material.PipelineKeyLit]
	entries := lit.BindGroupLayoutDescriptor(GroupShadow).Entries
	require.Len(t, entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, entries[1].Sampler.Type)
}

func TestMaterialParamWrites(t *testing.T) {
	byKey := defaultPipelinesByKey(t)
	provider := bind_group_provider.NewBindGroupProvider("params")
	params := material.GPUMaterialParams{Albedo: mgl32.Vec4{1, 0.5, 0.25, 1}}
	data := params.Marshal()

	for _, key := range []string{material.PipelineKeyLit, material.PipelineKeyUnlit, material.PipelineKeyGizmo} {
		writes := materialParamWrites(byKey[key], provider, data)
		require.Len(t, writes, 1, key)
		assert.Equal(t, material.BindingParams, writes[0].Binding, key)
		assert.Equal(t, uint64(0), writes[0].Offset, key)
		assert.Equal(t, data, writes[0].Data, key)
	}
	assert.Empty(t, materialParamWrites(byKey[PipelineKeyShadow], provider, data))
}

func TestStageDraws_CastersFirstThenFrameOrder(t *testing.T) {
	lit, err := material.NewLitMaterial()
	require.NoError(t, err)
	gizmo := material.NewLightGizmoMaterial(material.DefaultGizmoConfig())

	cube := model.NewCube(1)
	plane := model.NewPlane(10)
	marker := model.NewGizmoMarker()

	frame := Frame{Draws: []Draw{
		{Mesh: cube, Material: lit, Model: mgl32.Translate3D(0, 1, 0), CastsShadow: true},
		{Mesh: plane, Material: lit, Model: mgl32.Ident4()},
		{Mesh: marker, Material: gizmo, Model: mgl32.Translate3D(3, 4, 5)},
	}}

	stream, err := NewDrawStream(8, 256)
	require.NoError(t, err)
	shadowDraws, mainDraws, dropped := stageDraws(stream, frame)

	assert.Zero(t, dropped)
	require.Len(t, shadowDraws, 1)
	require.Len(t, mainDraws, 3)
	assert.Equal(t, uint32(0), shadowDraws[0].offset)
	assert.Equal(t, []uint32{256, 512, 768}, []uint32{mainDraws[0].offset, mainDraws[1].offset, mainDraws[2].offset})
	assert.Same(t, marker, mainDraws[2].Mesh)
	assert.Equal(t, float32(3), float32At(stream.Bytes(), 768+12*4))
}

func TestStageDraws_DropsPastCapacity(t *testing.T) {
	lit, err := material.NewLitMaterial()
	require.NoError(t, err)
	cube := model.NewCube(1)

	draws := make([]Draw, 3)
	for i := range draws {
		draws[i] = Draw{Mesh: cube, Material: lit, Model: mgl32.Ident4(), CastsShadow: true}
	}

	stream, err := NewDrawStream(4, 256)
	require.NoError(t, err)
	shadowDraws, mainDraws, dropped := stageDraws(stream, Frame{Draws: draws})

	assert.Len(t, shadowDraws, 3)
	assert.Len(t, mainDraws, 1)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 4, stream.Len())
}

func TestFrame_ShadowCasters(t *testing.T) {
	cube := model.NewCube(1)
	frame := Frame{Draws: []Draw{
		{Mesh: cube, CastsShadow: true},
		{Mesh: cube},
		{Mesh: cube, CastsShadow: true},
	}}
	assert.Len(t, frame.ShadowCasters(), 2)
	assert.Empty(t, Frame{}.ShadowCasters())
}
