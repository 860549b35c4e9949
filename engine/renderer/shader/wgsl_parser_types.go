package shader

import "github.com/cogentcore/webgpu/wgpu"

// Layout describes the host-shareable memory layout of a WGSL struct as computed from its
// source: total size, alignment and the offset of every field. The renderer compares it
// against the byte layout of the matching Go GPU type at setup time.
type Layout struct {
	// Size is the struct size in bytes, rounded up to Align.
	Size uint64
	// Align is the largest alignment of any field.
	Align uint64
	// Fields lists the struct members in declaration order.
	Fields []FieldLayout
}

// FieldLayout is the placement of a single struct member.
type FieldLayout struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// Offset returns the byte offset of the named field.
//
// Parameters:
//   - name: the WGSL field name
//
// Returns:
//   - uint64: the field offset
//   - bool: false if the struct has no such field
func (l Layout) Offset(name string) (uint64, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}

type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

type sampledTextureInfo struct {
	viewDimension wgpu.TextureViewDimension
	multisampled  bool
}

// wgslTypeLayout is the size and alignment of a single WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}
