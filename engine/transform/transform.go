// Package transform composes translation, rotation and scale triples into homogeneous
// model matrices. It is shared by every drawable and by the point light.
package transform

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a decomposed affine transform. Rotation is expected to be a unit quaternion;
// Compose does not normalize it.
type Transform struct {
	// Translation is the world-space offset, placed in the last column of the composed matrix.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the per-axis scale factor applied to the matching rotation column.
	Scale mgl32.Vec3
}

// Identity returns a Transform with no translation, no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func Identity() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// New creates a Transform from its three components.
//
// Parameters:
//   - translation: the world-space offset
//   - rotation: the orientation, expected to be unit length
//   - scale: the per-axis scale
//
// Returns:
//   - Transform: the assembled transform
func New(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) Transform {
	return Transform{Translation: translation, Rotation: rotation, Scale: scale}
}

// Compose converts a translation, rotation and scale into a column-major 4x4 matrix.
//
// The rotation block uses the canonical quaternion formula. Diagonal terms are 1 - 2(b² + c²)
// where b and c are the two imaginary components not matching the axis. Column j of the
// rotation block is then multiplied by scale[j]. The translation occupies column 3 and the
// bottom-right element is 1.
//
// The quaternion is used as given. A non-unit quaternion yields a defined but non-rigid
// matrix; keeping it unit length is the caller's responsibility.
//
// Parameters:
//   - translation: the offset written to column 3
//   - rotation: the orientation quaternion
//   - scale: the per-column scale factors
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func Compose(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	x, y, z, w := rotation.V[0], rotation.V[1], rotation.V[2], rotation.W

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	sx, sy, sz := scale[0], scale[1], scale[2]

	return mgl32.Mat4{
		(1 - 2*(yy+zz)) * sx, 2 * (xy + wz) * sx, 2 * (xz - wy) * sx, 0,
		2 * (xy - wz) * sy, (1 - 2*(xx+zz)) * sy, 2 * (yz + wx) * sy, 0,
		2 * (xz + wy) * sz, 2 * (yz - wx) * sz, (1 - 2*(xx+yy)) * sz, 0,
		translation[0], translation[1], translation[2], 1,
	}
}

// Matrix composes the transform into its model matrix. Equivalent to Compose(t.Translation, t.Rotation, t.Scale).
func (t Transform) Matrix() mgl32.Mat4 {
	return Compose(t.Translation, t.Rotation, t.Scale)
}

// Position returns the translation column of the composed matrix.
func (t Transform) Position() mgl32.Vec3 {
	m := t.Matrix()
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// Translate returns a copy of the transform moved by delta.
//
// Parameters:
//   - delta: the offset to add to the translation
//
// Returns:
//   - Transform: the moved transform
func (t Transform) Translate(delta mgl32.Vec3) Transform {
	t.Translation = t.Translation.Add(delta)
	return t
}

// Rotate returns a copy of the transform with q applied after the current rotation.
// The product is renormalized so that repeated small rotations do not drift away from
// unit length. This is the only place a rotation is normalized implicitly.
//
// Parameters:
//   - q: the rotation to apply
//
// Returns:
//   - Transform: the rotated transform
func (t Transform) Rotate(q mgl32.Quat) Transform {
	t.Rotation = q.Mul(t.Rotation).Normalize()
	return t
}

// ScaleBy returns a copy of the transform with its scale multiplied component-wise by factors.
//
// Parameters:
//   - factors: the per-axis multipliers
//
// Returns:
//   - Transform: the scaled transform
func (t Transform) ScaleBy(factors mgl32.Vec3) Transform {
	t.Scale = mgl32.Vec3{t.Scale[0] * factors[0], t.Scale[1] * factors[1], t.Scale[2] * factors[2]}
	return t
}

// IsUnit reports whether q has unit length within tol.
//
// Parameters:
//   - q: the quaternion to check
//   - tol: the allowed deviation of the squared length from 1
//
// Returns:
//   - bool: true if q is unit length within tolerance
func IsUnit(q mgl32.Quat, tol float32) bool {
	return math32.Abs(q.Dot(q)-1) <= tol
}

// NormalizedChecked returns the normalized form of q and reports whether normalization
// changed it. A zero quaternion normalizes to identity. The input is never modified; callers
// decide whether to use the result or only log the deviation.
//
// Parameters:
//   - q: the quaternion to check
//
// Returns:
//   - mgl32.Quat: the unit-length quaternion
//   - bool: true if q was not already unit length
func NormalizedChecked(q mgl32.Quat) (mgl32.Quat, bool) {
	if IsUnit(q, 1e-4) {
		return q, false
	}
	return q.Normalize(), true
}
