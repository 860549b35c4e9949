package renderer

import (
	"github.com/Carmen-Shannon/hyako/engine/camera"
	"github.com/Carmen-Shannon/hyako/engine/light"
	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/Carmen-Shannon/hyako/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Draw is one mesh drawn with one material.
type Draw struct {
	// Mesh supplies the vertex and index buffers.
	Mesh model.Model

	// Material selects the pipeline and the material bind group.
	Material material.Material

	// Model is the model-to-world matrix delivered through the draw stream.
	Model mgl32.Mat4

	// CastsShadow adds the draw to the shadow pass.
	CastsShadow bool

	// Params, when set, is written to the material's params binding before the frame. The light
	// gizmo uses it to follow the light color.
	Params *material.GPUMaterialParams
}

// Frame is everything the renderer needs to draw one frame. Draws are issued in order; the
// scene lists lit draws first, then unlit draws, then the gizmo.
type Frame struct {
	Camera  camera.GPUCameraUniform
	Light   light.GPULight
	Shading light.GPUShadingParams
	Shadow  light.GPUShadowUniform
	Draws   []Draw
}

// ShadowCasters returns the draws that take part in the shadow pass, in order.
func (f Frame) ShadowCasters() []Draw {
	casters := make([]Draw, 0, len(f.Draws))
	for _, d := range f.Draws {
		if d.CastsShadow {
			casters = append(casters, d)
		}
	}
	return casters
}
