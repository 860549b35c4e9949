package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32At(b []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[offset : offset+4]))
}

func TestNewDrawStream_RejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		maxDraws  int
		alignment uint32
	}{
		{"zero capacity", 0, 256},
		{"negative capacity", -4, 256},
		{"zero alignment", 8, 0},
		{"non power of two alignment", 8, 192},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDrawStream(tt.maxDraws, tt.alignment)
			assert.Error(t, err)
		})
	}
}

func TestDrawStream_StrideFollowsAlignment(t *testing.T) {
	tests := []struct {
		alignment uint32
		stride    uint32
	}{
		{256, 256},
		{64, 64},
		{32, 64},
		{512, 512},
	}
	for _, tt := range tests {
		s, err := NewDrawStream(4, tt.alignment)
		require.NoError(t, err)
		assert.Equal(t, tt.stride, s.Stride(), "alignment %d", tt.alignment)
		assert.Equal(t, uint64(tt.stride)*4, s.BufferSize())
	}
}

func TestDrawStream_PushAssignsFreshAlignedSlots(t *testing.T) {
	s, err := NewDrawStream(8, DefaultUniformOffsetAlignment)
	require.NoError(t, err)

	a := mgl32.Translate3D(1, 2, 3)
	b := mgl32.Scale3D(2, 2, 2)

	offA, err := s.Push(a)
	require.NoError(t, err)
	offB, err := s.Push(b)
	require.NoError(t, err)
	offC, err := s.Push(a)
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 256, 512}, []uint32{offA, offB, offC})
	assert.Equal(t, 3, s.Len())

	data := s.Bytes()
	require.Len(t, data, 3*256)
	for i := range 16 {
		assert.Equal(t, a[i], float32At(data, int(offA)+i*4))
		assert.Equal(t, b[i], float32At(data, int(offB)+i*4))
		assert.Equal(t, a[i], float32At(data, int(offC)+i*4))
	}
	// translation lives in column 3
	assert.Equal(t, float32(1), float32At(data, 12*4))
	assert.Equal(t, float32(3), float32At(data, 14*4))
	// padding between slots stays zero
	assert.Equal(t, float32(0), float32At(data, 64))
}

func TestDrawStream_FullReturnsSentinel(t *testing.T) {
	s, err := NewDrawStream(2, 256)
	require.NoError(t, err)

	_, err = s.Push(mgl32.Ident4())
	require.NoError(t, err)
	_, err = s.Push(mgl32.Ident4())
	require.NoError(t, err)

	_, err = s.Push(mgl32.Ident4())
	assert.ErrorIs(t, err, ErrDrawStreamFull)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Capacity())
}

func TestDrawStream_ResetReleasesSlots(t *testing.T) {
	s, err := NewDrawStream(1, 256)
	require.NoError(t, err)

	_, err = s.Push(mgl32.Translate3D(5, 5, 5))
	require.NoError(t, err)
	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Bytes())

	off, err := s.Push(mgl32.Ident4())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), off)
	assert.Equal(t, float32(0), float32At(s.Bytes(), 12*4))
}
