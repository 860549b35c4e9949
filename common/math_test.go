package common

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerspectiveZO_MapsNearAndFarToUnitRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	proj := PerspectiveZO(mgl32.DegToRad(45), 16.0/9.0, near, far)

	nearClip := proj.Mul4x1(mgl32.Vec4{0, 0, -near, 1})
	farClip := proj.Mul4x1(mgl32.Vec4{0, 0, -far, 1})

	assert.InDelta(t, 0.0, nearClip.Z()/nearClip.W(), 1e-5)
	assert.InDelta(t, 1.0, farClip.Z()/farClip.W(), 1e-5)
}

func TestLookAt_ParallelUpDoesNotProduceNaN(t *testing.T) {
	view := LookAt(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	for _, v := range view {
		assert.False(t, math.IsNaN(float64(v)))
	}

	p := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -10.0, p.Z(), 1e-5, "target should sit 10 units down the view axis")
}

func TestSanitizeVec3(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	got := SanitizeVec3(mgl32.Vec3{nan, inf, -inf})
	assert.True(t, IsFinite3(got))
	assert.Equal(t, float32(0), got.X())
	assert.False(t, IsFinite3(mgl32.Vec3{1, nan, 0}))
}

func TestPutMat4_LittleEndianColumnMajor(t *testing.T) {
	buf := make([]byte, 64)
	end := PutMat4(buf, 0, mgl32.Translate3D(1, 2, 3))
	require.Equal(t, 64, end)

	// column 3 starts at byte 48: (1, 2, 3, 1)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[48:52])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x40}, buf[52:56])
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		value, align, want uint64
	}{
		{0, 256, 0},
		{1, 256, 256},
		{64, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{48, 0, 48},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlignUp(tt.value, tt.align))
	}
}

func TestFrustum_IntersectsSphere(t *testing.T) {
	view := LookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := PerspectiveZO(mgl32.DegToRad(60), 1, 0.1, 50)
	f := ExtractFrustum(proj.Mul4(view))

	assert.True(t, f.IntersectsSphere(mgl32.Vec3{}, 1))
	assert.False(t, f.IntersectsSphere(mgl32.Vec3{0, 0, 20}, 1), "behind the camera")
	assert.False(t, f.IntersectsSphere(mgl32.Vec3{100, 0, 0}, 1), "far off to the side")
}

func TestNewTextureStagingData(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}

	staged, err := NewTextureStagingData(src, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), staged.Width)
	assert.Equal(t, uint32(4), staged.Height)
	assert.Len(t, staged.Pixels, 8*4*4)
	assert.Equal(t, byte(255), staged.Pixels[0])

	scaled, err := NewTextureStagingData(src, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), scaled.Width)
	assert.Equal(t, uint32(2), scaled.Height)

	_, err = NewTextureStagingData(nil, 0)
	assert.Error(t, err)
}

func TestCoalesceAndClamp(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, float32(1), Clamp(float32(5), 0, 1))
	assert.Equal(t, -2, Clamp(-7, -2, 2))
}
