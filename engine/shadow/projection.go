package shadow

import (
	"github.com/Carmen-Shannon/hyako/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightViewProjection builds the perspective view-projection of a point light aimed at target.
// Depth maps to [0, 1] like the camera projection.
//
// Parameters:
//   - lightPos: the light's world position
//   - target: the point the shadow frustum is centered on
//   - up: approximate up vector; a fallback is chosen when it is parallel to the view direction
//   - fovY: vertical field of view in radians
//   - near, far: clip plane distances
//
// Returns:
//   - mgl32.Mat4: projection * view from the light
func LightViewProjection(lightPos, target, up mgl32.Vec3, fovY, near, far float32) mgl32.Mat4 {
	view := common.LookAt(lightPos, target, up)
	proj := common.PerspectiveZO(fovY, 1, near, far)
	return proj.Mul4(view)
}

// LightViewProjectionForBounds fits a light frustum tightly around a bounding sphere so the shadow
// map resolution is spent on the scene rather than empty space. When the light sits inside the
// sphere it falls back to a 120 degree frustum reaching the far side of the sphere.
//
// Parameters:
//   - lightPos: the light's world position
//   - center: bounding sphere center
//   - radius: bounding sphere radius
//
// Returns:
//   - mgl32.Mat4: projection * view from the light
func LightViewProjectionForBounds(lightPos, center mgl32.Vec3, radius float32) mgl32.Mat4 {
	dist := center.Sub(lightPos).Len()
	up := mgl32.Vec3{0, 1, 0}
	if dist <= radius || dist < 1e-4 {
		return LightViewProjection(lightPos, center, up, mgl32.DegToRad(120), 0.05, max(dist+radius, 1))
	}
	fovY := 2 * math32.Asin(radius/dist)
	fovY = common.Clamp(fovY, mgl32.DegToRad(1), mgl32.DegToRad(170))
	near := max(dist-radius, 0.05)
	far := dist + radius
	return LightViewProjection(lightPos, center, up, fovY, near, far)
}
