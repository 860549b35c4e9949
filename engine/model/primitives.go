package model

import "github.com/go-gl/mathgl/mgl32"

var white = [4]float32{1, 1, 1, 1}

// NewCube builds an axis-aligned cube of the given edge length centered on the origin,
// with per-face normals and a full 0..1 UV square on every face.
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - Model: the cube
func NewCube(size float32) Model {
	h := size / 2
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		center := f.normal.Mul(h)
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := center.Add(f.u.Mul(c[0] * h)).Add(f.v.Mul(c[1] * h))
			vertices = append(vertices, GPUVertex{
				Position:  p,
				TexCoords: [2]float32{(c[0] + 1) / 2, 1 - (c[1]+1)/2},
				Normal:    f.normal,
				Color:     white,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewModel(WithName("cube"), WithVertices(vertices), WithIndices(indices))
}

// NewPlane builds a square in the XZ plane centered on the origin, facing +Y.
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - Model: the plane
func NewPlane(size float32) Model {
	h := size / 2
	up := [3]float32{0, 1, 0}
	vertices := []GPUVertex{
		{Position: [3]float32{-h, 0, h}, TexCoords: [2]float32{0, 1}, Normal: up, Color: white},
		{Position: [3]float32{h, 0, h}, TexCoords: [2]float32{1, 1}, Normal: up, Color: white},
		{Position: [3]float32{h, 0, -h}, TexCoords: [2]float32{1, 0}, Normal: up, Color: white},
		{Position: [3]float32{-h, 0, -h}, TexCoords: [2]float32{0, 0}, Normal: up, Color: white},
	}
	return NewModel(WithName("plane"), WithVertices(vertices), WithIndices([]uint32{0, 1, 2, 0, 2, 3}))
}

// NewGizmoMarker builds a unit octahedron used to mark a light's position.
// Its vertices sit one unit from the origin so the marker's scale is its radius.
//
// Returns:
//   - Model: the marker mesh
func NewGizmoMarker() Model {
	tips := []mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	tris := [8][3]int{
		{4, 0, 2}, {0, 5, 2}, {5, 1, 2}, {1, 4, 2},
		{0, 4, 3}, {5, 0, 3}, {1, 5, 3}, {4, 1, 3},
	}

	vertices := make([]GPUVertex, 0, 24)
	for _, t := range tris {
		a, b, c := tips[t[0]], tips[t[1]], tips[t[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for _, p := range []mgl32.Vec3{a, b, c} {
			vertices = append(vertices, GPUVertex{Position: p, Normal: n, Color: white})
		}
	}
	return NewModel(WithName("gizmo_marker"), WithVertices(vertices))
}
