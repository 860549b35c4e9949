package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/Carmen-Shannon/hyako/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaxDrawsPerFrame is the draw stream capacity used when none is configured.
const DefaultMaxDrawsPerFrame = 1024

// DefaultUniformOffsetAlignment is the WebGPU default for MinUniformBufferOffsetAlignment.
const DefaultUniformOffsetAlignment = 256

// ErrDrawStreamFull is returned by Push once every slot of the frame is in use.
var ErrDrawStreamFull = errors.New("draw stream is full")

// DrawStream stages the per-draw model matrices of one frame. Each Push takes a fresh slot
// aligned to the device's uniform offset alignment; the returned offset is the dynamic offset
// passed when the draw's bind group is set. The used portion is uploaded with a single buffer
// write before the frame is submitted.
type DrawStream struct {
	mu       sync.Mutex
	stride   uint32
	capacity int
	count    int
	data     []byte
}

// NewDrawStream creates a draw stream with a fixed number of slots.
//
// Parameters:
//   - maxDraws: the number of slots; must be positive
//   - alignment: the device's MinUniformBufferOffsetAlignment; must be a power of two
//
// Returns:
//   - *DrawStream: the stream
//   - error: an error if either argument is invalid
func NewDrawStream(maxDraws int, alignment uint32) (*DrawStream, error) {
	if maxDraws <= 0 {
		return nil, fmt.Errorf("draw stream capacity must be positive, got %d", maxDraws)
	}
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return nil, fmt.Errorf("uniform offset alignment must be a power of two, got %d", alignment)
	}
	var data model.GPUModelData
	stride := uint32(common.AlignUp(uint64(data.Size()), uint64(alignment)))
	return &DrawStream{
		stride:   stride,
		capacity: maxDraws,
		data:     make([]byte, int(stride)*maxDraws),
	}, nil
}

// Push writes a model matrix into the next free slot.
//
// Parameters:
//   - m: the draw's model matrix
//
// Returns:
//   - uint32: the byte offset of the slot, used as the dynamic offset
//   - error: ErrDrawStreamFull when no slot is left
func (s *DrawStream) Push(m mgl32.Mat4) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count >= s.capacity {
		return 0, ErrDrawStreamFull
	}
	offset := uint32(s.count) * s.stride
	common.PutMat4(s.data, int(offset), m)
	s.count++
	return offset, nil
}

// Bytes returns the slots written since the last Reset. The slice aliases the stream's storage
// and is only valid until the next Push or Reset.
func (s *DrawStream) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[:int(s.stride)*s.count]
}

// Len returns the number of slots in use.
func (s *DrawStream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Capacity returns the fixed number of slots.
func (s *DrawStream) Capacity() int {
	return s.capacity
}

// Stride returns the distance in bytes between two slots.
func (s *DrawStream) Stride() uint32 {
	return s.stride
}

// BufferSize returns the size in bytes of the GPU buffer backing the stream.
func (s *DrawStream) BufferSize() uint64 {
	return uint64(s.stride) * uint64(s.capacity)
}

// Reset releases every slot. Slots are reused only across frames.
func (s *DrawStream) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.data[:int(s.stride)*s.count])
	s.count = 0
}
