// pre_processor.go implements the WGSL shader pre-processor. It scans shader source for
// @hyako: annotations, replaces them with generated WGSL declarations or injected struct
// source, and collects a declarations list the renderer uses to wire GPU resources to
// bind groups and to mark dynamic-offset bindings.
//
// The pre-processor maintains two registries:
//   - structRegistry: maps AnnotationArg keys to embedded WGSL struct sources, their
//     resolved type names and the structs they depend on.
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/hyako/engine/camera"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/Carmen-Shannon/hyako/engine/transform"
)

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the resolved WGSL type name used in generated @group/@binding declarations.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by include.
	Source string

	// Type is the WGSL type name emitted in group declarations (e.g. "Camera", "Light").
	Type string

	// Requires lists struct keys that must be injected before this one.
	Requires []AnnotationArg
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates group, provider and dynamic annotations during a Process call.
	declarations []Annotation

	// included tracks struct keys already injected during the current Process call.
	included map[AnnotationArg]bool
}

// PreProcessor processes raw WGSL shader source code containing @hyako: annotations,
// replacing them with generated declarations or injected struct sources while collecting
// a declarations list for downstream resource wiring.
type PreProcessor interface {
	// Process replaces @hyako: annotations with their WGSL output. include annotations are
	// replaced with embedded struct source text (dependencies first, each struct once).
	// group annotations become @group/@binding variable declarations. provider and dynamic
	// annotations produce no WGSL output but are recorded in the declarations list.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unknown type
	Process(source string) (string, error)

	// Declarations returns the group, provider and dynamic annotations collected during the
	// most recent call to Process, in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all registered struct types and
// address space mappings pre-populated.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgTransform:      {Source: transform.GPUTransformSource, Type: "Transform"},
			AnnotationArgCamera:         {Source: camera.GPUCameraUniformSource, Type: "Camera"},
			AnnotationArgLight:          {Source: light.GPULightSource, Type: "Light", Requires: []AnnotationArg{AnnotationArgTransform}},
			AnnotationArgShadingParams:  {Source: light.GPUShadingParamsSource, Type: "ShadingParams"},
			AnnotationArgShadowUniform:  {Source: light.GPUShadowUniformSource, Type: "ShadowUniform"},
			annotationArgVertex:         {Source: model.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgModelData:      {Source: model.GPUModelDataSource, Type: "ModelData"},
			AnnotationArgMaterialParams: {Source: material.GPUMaterialParamsSource, Type: "MaterialParams"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	p.included = make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			injected, err := p.include(a.Args[0], nil)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			out = append(out, injected...)
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			varName := string(a.Args[1])
			var wgslType string
			if inner, ok := strings.CutPrefix(string(a.Args[2]), "array<"); ok {
				inner = strings.TrimSuffix(inner, ">")
				wgslType = fmt.Sprintf("array<%s>", p.structRegistry[AnnotationArg(inner)].Type)
			} else {
				wgslType = p.structRegistry[a.Args[2]].Type
			}

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, varName, wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider, AnnotationTypeDynamic:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

// include resolves a struct key and its dependencies into source blocks, skipping
// anything already injected. stack guards against dependency cycles.
func (p *preProcessor) include(key AnnotationArg, stack []AnnotationArg) ([]string, error) {
	if p.included[key] {
		return nil, nil
	}
	for _, s := range stack {
		if s == key {
			return nil, fmt.Errorf("include cycle through %q", key)
		}
	}
	entry, ok := p.structRegistry[key]
	if !ok {
		return nil, fmt.Errorf("unknown include argument %q", key)
	}

	var out []string
	for _, dep := range entry.Requires {
		src, err := p.include(dep, append(stack, key))
		if err != nil {
			return nil, err
		}
		out = append(out, src...)
	}
	p.included[key] = true
	return append(out, entry.Source), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
