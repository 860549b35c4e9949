package common

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PerspectiveZO builds a right-handed perspective projection matrix that maps view-space depth
// into the WebGPU clip-space Z range [0, 1] (near -> 0, far -> 1).
// mgl32.Perspective targets the OpenGL [-1, 1] range and cannot be used with a WebGPU depth buffer.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near: distance to the near plane (must be > 0)
//   - far: distance to the far plane (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / math32.Tan(fovY/2)
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = near * far / (near - far)
	return m
}

// LookAt builds a right-handed view matrix. When up is parallel to the view direction a
// fallback up axis is chosen so the result never contains NaN.
//
// Parameters:
//   - eye: the viewer position
//   - center: the point being looked at
//   - up: the approximate up direction
//
// Returns:
//   - mgl32.Mat4: the view matrix
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	dir := center.Sub(eye)
	if dir.Len() < 1e-6 {
		return mgl32.Translate3D(-eye.X(), -eye.Y(), -eye.Z())
	}
	if dir.Normalize().Cross(up).Len() < 1e-4 {
		up = mgl32.Vec3{0, 0, 1}
		if math32.Abs(dir.Normalize().Z()) > 0.99 {
			up = mgl32.Vec3{1, 0, 0}
		}
	}
	return mgl32.LookAtV(eye, center, up)
}

// IsFinite3 reports whether every component of v is neither NaN nor infinite.
func IsFinite3(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// SanitizeVec3 replaces NaN components with zero and clamps infinities to the largest finite float32.
func SanitizeVec3(v mgl32.Vec3) mgl32.Vec3 {
	for i, c := range v {
		switch {
		case math32.IsNaN(c):
			v[i] = 0
		case math32.IsInf(c, 1):
			v[i] = math.MaxFloat32
		case math32.IsInf(c, -1):
			v[i] = -math.MaxFloat32
		}
	}
	return v
}

// PutFloat32s writes values little-endian into buf starting at offset and returns the offset past the last value.
//
// Parameters:
//   - buf: destination buffer (must be large enough)
//   - offset: starting byte offset
//   - values: float32 values to write
//
// Returns:
//   - int: the byte offset immediately after the written values
func PutFloat32s(buf []byte, offset int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
		offset += 4
	}
	return offset
}

// PutMat4 writes a column-major 4x4 matrix little-endian into buf at offset.
//
// Parameters:
//   - buf: destination buffer (at least offset+64 bytes)
//   - offset: starting byte offset
//   - m: the matrix to write
//
// Returns:
//   - int: the byte offset immediately after the matrix
func PutMat4(buf []byte, offset int, m mgl32.Mat4) int {
	return PutFloat32s(buf, offset, m[:]...)
}

// AlignUp rounds value up to the next multiple of alignment. An alignment of zero returns value unchanged.
func AlignUp(value, alignment uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) / alignment * alignment
}
