package camera

import "github.com/go-gl/mathgl/mgl32"

// Projector holds a combined view-projection matrix and maps model-space positions to clip space.
// The per-draw model matrix is always passed in and never stored, mirroring the renderer where
// it travels through the per-draw channel rather than the camera uniform.
type Projector struct {
	viewProjection mgl32.Mat4
}

// NewProjector creates a Projector for the given view-projection matrix.
//
// Parameters:
//   - viewProjection: the combined projection * view matrix
//
// Returns:
//   - Projector: the projector
func NewProjector(viewProjection mgl32.Mat4) Projector {
	return Projector{viewProjection: viewProjection}
}

// ViewProjection returns the matrix the projector was built with.
func (p Projector) ViewProjection() mgl32.Mat4 {
	return p.viewProjection
}

// Project computes clip = viewProjection * model * vec4(local, 1).
//
// Parameters:
//   - model: the per-draw model matrix
//   - local: the model-space position
//
// Returns:
//   - mgl32.Vec4: the clip-space position (not divided by w)
func (p Projector) Project(model mgl32.Mat4, local mgl32.Vec3) mgl32.Vec4 {
	return p.viewProjection.Mul4(model).Mul4x1(local.Vec4(1))
}
