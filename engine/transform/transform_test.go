package transform

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_IdentityRotationIsPureTranslation(t *testing.T) {
	translation := mgl32.Vec3{3, -2, 7.5}
	got := Compose(translation, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})

	assert.True(t, got.ApproxEqualThreshold(mgl32.Translate3D(3, -2, 7.5), 1e-6), "got %v", got)
}

func TestCompose_MatchesReferenceRotation(t *testing.T) {
	tests := []struct {
		name  string
		q     mgl32.Quat
		scale mgl32.Vec3
	}{
		{"quarter turn about Y", mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}), mgl32.Vec3{1, 1, 1}},
		{"oblique axis", mgl32.QuatRotate(1.1, mgl32.Vec3{1, 2, 3}.Normalize()), mgl32.Vec3{1, 1, 1}},
		{"non-uniform scale", mgl32.QuatRotate(0.4, mgl32.Vec3{0, 0, 1}), mgl32.Vec3{2, 3, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translation := mgl32.Vec3{1, 2, 3}
			want := mgl32.Translate3D(1, 2, 3).
				Mul4(tt.q.Mat4()).
				Mul4(mgl32.Scale3D(tt.scale[0], tt.scale[1], tt.scale[2]))

			got := Compose(translation, tt.q, tt.scale)
			assert.True(t, got.ApproxEqualThreshold(want, 1e-5), "got %v want %v", got, want)
		})
	}
}

func TestCompose_RotationBlockIsOrthonormal(t *testing.T) {
	axes := []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {-3, 2, 5}}
	angles := []float32{0.1, 1, 2.5, math.Pi, 5.9}

	for _, axis := range axes {
		for _, angle := range angles {
			q := mgl32.QuatRotate(angle, axis.Normalize())
			m := Compose(mgl32.Vec3{}, q, mgl32.Vec3{1, 1, 1})

			cols := [3]mgl32.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
			for i := range cols {
				assert.InDelta(t, 1.0, cols[i].Len(), 1e-5)
				for j := i + 1; j < 3; j++ {
					assert.InDelta(t, 0.0, cols[i].Dot(cols[j]), 1e-5)
				}
			}
		}
	}
}

func TestCompose_ScaleAppliesPerColumn(t *testing.T) {
	q := mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0})
	unit := Compose(mgl32.Vec3{}, q, mgl32.Vec3{1, 1, 1})
	scaled := Compose(mgl32.Vec3{}, q, mgl32.Vec3{2, 3, 4})

	for c, s := range []float32{2, 3, 4} {
		assert.True(t, scaled.Col(c).Vec3().ApproxEqualThreshold(unit.Col(c).Vec3().Mul(s), 1e-6), "column %d", c)
	}
}

func TestCompose_DoesNotNormalizeQuaternion(t *testing.T) {
	q := mgl32.Quat{W: 2}
	m := Compose(mgl32.Vec3{}, q, mgl32.Vec3{1, 1, 1})

	// w-only quaternions leave the diagonal untouched regardless of length
	assert.Equal(t, float32(1), m[0])

	q = mgl32.Quat{W: 1, V: mgl32.Vec3{1, 0, 0}}
	m = Compose(mgl32.Vec3{}, q, mgl32.Vec3{1, 1, 1})
	assert.InDelta(t, -1.0, m[5], 1e-6, "a length-sqrt(2) quaternion must not be silently normalized")
}

func TestTransform_Mutations(t *testing.T) {
	tr := Identity().
		Translate(mgl32.Vec3{1, 0, 0}).
		ScaleBy(mgl32.Vec3{2, 2, 2}).
		Rotate(mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}))

	assert.Equal(t, mgl32.Vec3{1, 0, 0}, tr.Position())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, tr.Scale)
	assert.True(t, IsUnit(tr.Rotation, 1e-5))

	x := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1.0, x.X(), 1e-5)
	assert.InDelta(t, 2.0, x.Y(), 1e-5)
}

func TestTransform_RotateRenormalizes(t *testing.T) {
	tr := Identity()
	step := mgl32.Quat{W: 1.01, V: mgl32.Vec3{0.01, 0, 0}}
	for range 100 {
		tr = tr.Rotate(step)
	}
	assert.True(t, IsUnit(tr.Rotation, 1e-5))
}

func TestNormalizedChecked(t *testing.T) {
	q, changed := NormalizedChecked(mgl32.QuatIdent())
	assert.False(t, changed)
	assert.Equal(t, mgl32.QuatIdent(), q)

	q, changed = NormalizedChecked(mgl32.Quat{W: 3})
	assert.True(t, changed)
	assert.InDelta(t, 1.0, q.W, 1e-6)

	q, changed = NormalizedChecked(mgl32.Quat{})
	assert.True(t, changed)
	assert.Equal(t, mgl32.QuatIdent(), q)
}

func TestGPUTransform_Layout(t *testing.T) {
	tr := New(mgl32.Vec3{1, 2, 3}, mgl32.Quat{W: 0.5, V: mgl32.Vec3{0.5, 0.5, 0.5}}, mgl32.Vec3{4, 5, 6})
	g := tr.GPU()
	require.Equal(t, 48, g.Size())

	buf := g.Marshal()
	require.Len(t, buf, 48)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(3), f(8))
	assert.Equal(t, float32(0), f(12))
	assert.Equal(t, float32(0.5), f(16)) // x
	assert.Equal(t, float32(0.5), f(28)) // w
	assert.Equal(t, float32(4), f(32))
	assert.Equal(t, float32(6), f(40))
	assert.Equal(t, float32(0), f(44))
}
