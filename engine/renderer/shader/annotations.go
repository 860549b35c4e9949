// annotations.go defines the annotation types, argument constants, and parser for the
// WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed with
// @hyako: that drive struct injection, bind group declaration, dynamic-offset marking and
// resource provider registration. The parsed results are stored as Annotation values and
// consumed by the PreProcessor, the Shader and the renderer's setup validation.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@hyako:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. Structs that depend on other structs pull
	// their dependencies in first. Each struct is injected at most once per shader.
	//
	// Syntax: //@hyako:include <struct_type>
	//
	// Example: //@hyako:include light
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and records a declaration carrying the group, binding and struct type.
	//
	// Syntax: //@hyako:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@hyako:group 0 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The binding declaration stays hand-written below
	// the annotation. Used for textures and samplers, which have no registered struct.
	//
	// Syntax:
	//   //@hyako:provider <group> <binding> <provider_identity>
	//   //@hyako:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@hyako:provider 2 1 material albedo_texture
	//   //@hyako:provider 3 0 shadow shadow_map
	AnnotationTypeProvider AnnotationType = "provider"

	// AnnotationTypeDynamic marks a uniform buffer binding as using a dynamic offset. The
	// generated bind group layout entry gets HasDynamicOffset set, so one buffer can serve
	// many draws by changing only the offset passed to SetBindGroup.
	//
	// Syntax: //@hyako:dynamic <group> <binding>
	//
	// Example: //@hyako:dynamic 1 0
	AnnotationTypeDynamic AnnotationType = "dynamic"
)

// Annotation represents a single parsed @hyako: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "camera")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	//   - dynamic:  empty
	Args []AnnotationArg

	// Line is the 1-based line number in the WGSL source where this annotation was found.
	Line int

	// Group is the @group index. Nil for include annotations.
	Group *int

	// Binding is the @binding index. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// Each maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgTransform identifies the Transform struct and its compose_transform helper.
	// Source: engine/transform/assets/transform.wgsl
	AnnotationArgTransform AnnotationArg = "transform"

	// AnnotationArgCamera identifies the Camera uniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgLight identifies the Light struct. Depends on Transform.
	// Source: engine/light/assets/light.wgsl
	AnnotationArgLight AnnotationArg = "light"

	// AnnotationArgShadingParams identifies the ShadingParams struct.
	// Source: engine/light/assets/shading_params.wgsl
	AnnotationArgShadingParams AnnotationArg = "shading_params"

	// AnnotationArgShadowUniform identifies the ShadowUniform struct.
	// Source: engine/light/assets/shadow_uniform.wgsl
	AnnotationArgShadowUniform AnnotationArg = "shadow_uniform"

	// annotationArgVertex identifies the VertexInput struct.
	// Source: engine/model/assets/vertex.wgsl
	annotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgModelData identifies the per-draw ModelData struct.
	// Source: engine/model/assets/model_data.wgsl
	AnnotationArgModelData AnnotationArg = "model_data"

	// AnnotationArgMaterialParams identifies the MaterialParams struct.
	// Source: engine/renderer/material/assets/material_params.wgsl
	AnnotationArgMaterialParams AnnotationArg = "material_params"
)

// ── Address space arguments ────────────────────────────────────────────────────

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These identify which renderer-level resource owns a bind group.

const (
	// AnnotationArgFrame identifies the per-frame ring (camera, light, shading params, shadow uniform).
	AnnotationArgFrame AnnotationArg = "frame"

	// AnnotationArgDraw identifies the per-draw dynamic-offset channel.
	AnnotationArgDraw AnnotationArg = "draw"

	// AnnotationArgMaterial identifies the material provider (params, albedo texture and sampler).
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgShadow identifies the shadow provider (depth texture and comparison sampler).
	AnnotationArgShadow AnnotationArg = "shadow"
)

// ── Binding role arguments ─────────────────────────────────────────────────────

const (
	// AnnotationArgAlbedoTexture identifies a base-color texture binding.
	AnnotationArgAlbedoTexture AnnotationArg = "albedo_texture"

	// AnnotationArgAlbedoSampler identifies the sampler paired with the albedo texture.
	AnnotationArgAlbedoSampler AnnotationArg = "albedo_sampler"

	// AnnotationArgShadowMap identifies the depth texture written by the shadow pass.
	AnnotationArgShadowMap AnnotationArg = "shadow_map"

	// AnnotationArgShadowSampler identifies the comparison sampler used for PCF.
	AnnotationArgShadowSampler AnnotationArg = "shadow_sampler"
)

// validStructTypes lists the struct type arguments accepted by include and group annotations.
// Each entry must have a registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgTransform,
	AnnotationArgCamera,
	AnnotationArgLight,
	AnnotationArgShadingParams,
	AnnotationArgShadowUniform,
	annotationArgVertex,
	AnnotationArgModelData,
	AnnotationArgMaterialParams,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgFrame,
	AnnotationArgDraw,
	AnnotationArgMaterial,
	AnnotationArgShadow,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgAlbedoTexture,
	AnnotationArgAlbedoSampler,
	AnnotationArgShadowMap,
	AnnotationArgShadowSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as a @hyako: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: group annotation requires five arguments (group, binding, address space, var name, type)", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in group annotation", lineNum, inner)
			}
		} else if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in group annotation", lineNum, typeArg)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeDynamic):
		if len(args) != 3 {
			return nil, fmt.Errorf("line %d: dynamic annotation requires exactly two arguments (group, binding)", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		return &Annotation{
			Type:    AnnotationTypeDynamic,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(group, binding string, lineNum int) (int, int, error) {
	groupInt, err := strconv.Atoi(group)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q: %w", lineNum, group, err)
	}
	bindingInt, err := strconv.Atoi(binding)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q: %w", lineNum, binding, err)
	}
	if groupInt < 0 || bindingInt < 0 {
		return 0, 0, fmt.Errorf("line %d: group and binding must be non-negative", lineNum)
	}
	return groupInt, bindingInt, nil
}
