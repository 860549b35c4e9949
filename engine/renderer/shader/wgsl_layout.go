package shader

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/hyako/common"
)

// wgslPrimitiveLayoutMap holds size and alignment for the scalar, vector and matrix types
// used in uniform structs, following the WGSL host-shareable layout rules.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec3<i32>": {12, 16},
	"vec4<i32>": {16, 16},
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	// matCxR: C columns, each a vecR padded to its alignment.
	"mat2x2<f32>": {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// StructLayouts parses every struct declared in a WGSL source and computes its memory layout.
// Structs whose fields reference unknown types are omitted. The source may be raw or
// pre-processed; annotation comments are ignored.
//
// Parameters:
//   - source: the WGSL source code
//
// Returns:
//   - map[string]Layout: layouts keyed by struct name
func StructLayouts(source string) map[string]Layout {
	return computeStructLayouts(parseStructBlocks(stripComments(source)))
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment from the primitive
// table or previously computed structs. Fixed-size arrays are supported. Runtime-sized
// arrays resolve to a single element stride.
func resolveTypeLayout(typeName string, known map[string]Layout) (wgslTypeLayout, bool) {
	if l, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return wgslTypeLayout{l.Size, l.Align}, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslTypeLayout{}, false
	}
	inner = strings.TrimSuffix(inner, ">")
	elem, count, sized := strings.Cut(inner, ",")

	elemLayout, ok := resolveTypeLayout(strings.TrimSpace(elem), known)
	if !ok {
		return wgslTypeLayout{}, false
	}
	stride := common.AlignUp(elemLayout.size, elemLayout.align)
	if !sized {
		return wgslTypeLayout{stride, elemLayout.align}, true
	}
	n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	return wgslTypeLayout{n * stride, elemLayout.align}, true
}

// computeStructLayout places each field at the next offset aligned for its type and rounds
// the total up to the struct alignment. Builtin fields are not part of memory layout.
func computeStructLayout(ps parsedStruct, known map[string]Layout) (Layout, bool) {
	layout := Layout{Align: 1, Fields: make([]FieldLayout, 0, len(ps.fields))}
	var offset uint64

	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(f.typeName, known)
		if !ok {
			return Layout{}, false
		}
		offset = common.AlignUp(offset, fl.align)
		layout.Fields = append(layout.Fields, FieldLayout{
			Name:   f.name,
			Type:   f.typeName,
			Offset: offset,
			Size:   fl.size,
		})
		offset += fl.size
		layout.Align = max(layout.Align, fl.align)
	}

	layout.Size = common.AlignUp(offset, layout.Align)
	return layout, true
}

// computeStructLayouts resolves struct layouts repeatedly until no more progress is made,
// so structs may nest other structs declared later in the source.
func computeStructLayouts(structs []parsedStruct) map[string]Layout {
	resolved := make(map[string]Layout, len(structs))
	pending := append([]parsedStruct(nil), structs...)

	for len(pending) > 0 {
		next := pending[:0]
		for _, ps := range pending {
			if l, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = l
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return resolved
}
