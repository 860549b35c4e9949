package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader source is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is used for vertex processing in render and shadow pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// String returns the stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and resource binding.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	structLayouts              map[string]Layout
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed and parsed WGSL shader stage. It exposes the source, entry point,
// bind group layout descriptors, vertex buffer layouts, struct layouts and annotation
// declarations needed for pipeline creation, resource wiring and setup validation.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is unused
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a group and binding, or "" if none.
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a variable name within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// BindGroupVarNames retrieves all variable names keyed by group and binding index.
	BindGroupVarNames() map[int]map[int]string

	// VertexLayout retrieves the vertex buffer layout for a buffer slot.
	VertexLayout(slot int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves all vertex buffer layouts keyed by buffer slot.
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// StructLayouts returns the computed memory layout of every struct in the processed source.
	//
	// Returns:
	//   - map[string]Layout: layouts keyed by WGSL struct name
	StructLayouts() map[string]Layout

	// EntryPoint returns the entry point name for this shader's stage.
	EntryPoint() string

	// Module returns the shader module descriptor built from the processed source.
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the stage of the shader.
	ShaderType() ShaderType

	// Declarations returns the group, provider and dynamic annotations parsed from the source.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader reads WGSL source from a file and builds a Shader from it. It panics if the file
// cannot be read or pre-processed, since a missing shader is a programmer error at setup.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the pipeline stage the source is compiled for
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	s, err := NewShaderFromSource(key, shaderType, string(data))
	if err != nil {
		panic(fmt.Sprintf("shader: %q: %v", sourcePath, err))
	}
	return s
}

// NewShaderFromSource builds a Shader from in-memory WGSL source, typically an embedded asset.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the pipeline stage the source is compiled for
//   - source: the raw WGSL source, possibly containing @hyako: annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails or the source has no entry point for the stage
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:        key,
		shaderType: shaderType,
		pp:         NewPreProcessor(),
	}
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(slot int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[slot]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) StructLayouts() map[string]Layout {
	return s.structLayouts
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.bindingVarNames
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// parseSource pre-processes the WGSL source, builds the module descriptor and extracts the
// entry point, struct layouts, bind group layouts and (for vertex shaders) vertex layouts.
func (s *shader) parseSource(raw string) error {
	processed, err := s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("pre-process: %w", err)
	}
	s.source = processed
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}

	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	if s.entryPoint == "" {
		return fmt.Errorf("no @%s entry point found", s.shaderType)
	}

	var visibility wgpu.ShaderStage
	switch s.shaderType {
	case ShaderTypeVertex:
		visibility = wgpu.ShaderStageVertex
		s.vertexLayouts = parseVertexLayouts(s.source)
	case ShaderTypeFragment:
		visibility = wgpu.ShaderStageFragment
		s.vertexLayouts = make(map[int][]wgpu.VertexBufferLayout)
	}

	dynamic := make(map[bindingKey]bool)
	for _, d := range s.pp.Declarations() {
		if d.Type == AnnotationTypeDynamic {
			dynamic[bindingKey{*d.Group, *d.Binding}] = true
		}
	}

	s.structLayouts = StructLayouts(s.source)
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, visibility, dynamic)

	for key := range dynamic {
		if !isDynamicUniform(s.bindGroupLayoutDescriptors[key.group], key.binding) {
			return fmt.Errorf("dynamic annotation for group %d binding %d does not name a uniform buffer binding", key.group, key.binding)
		}
	}
	return nil
}

func isDynamicUniform(desc wgpu.BindGroupLayoutDescriptor, binding int) bool {
	for _, e := range desc.Entries {
		if int(e.Binding) == binding {
			return e.Buffer.Type == wgpu.BufferBindingTypeUniform && e.Buffer.HasDynamicOffset
		}
	}
	return false
}
