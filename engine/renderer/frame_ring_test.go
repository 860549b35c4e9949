package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrameRing_RejectsOutOfRangeCounts(t *testing.T) {
	for _, n := range []int{0, 1, 4} {
		_, err := NewFrameRing(n, func(i int) (int, error) { return i, nil })
		assert.Error(t, err, "n=%d", n)
	}
}

func TestNewFrameRing_WrapsSlotErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewFrameRing(3, func(i int) (int, error) {
		if i == 1 {
			return 0, boom
		}
		return i, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "frame slot 1")
}

func TestFrameRing_AdvanceRotates(t *testing.T) {
	ring, err := NewFrameRing(3, func(i int) (string, error) {
		return []string{"a", "b", "c"}[i], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ring.Len())

	var seen []string
	for range 7 {
		seen = append(seen, ring.Current())
		ring.Advance()
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a"}, seen)
	assert.Equal(t, 1, ring.Index())
}

func TestFrameRing_TwoSlotsAlternate(t *testing.T) {
	ring, err := NewFrameRing(MinFramesInFlight, func(i int) (int, error) { return i * 10, nil })
	require.NoError(t, err)

	assert.Equal(t, 0, ring.Current())
	assert.Equal(t, 1, ring.Advance())
	assert.Equal(t, 10, ring.Current())
	assert.Equal(t, 0, ring.Advance())
}

func TestFrameRing_EachVisitsSlotsInOrder(t *testing.T) {
	ring, err := NewFrameRing(DefaultFramesInFlight, func(i int) (int, error) { return i + 1, nil })
	require.NoError(t, err)
	ring.Advance()

	var got []int
	ring.Each(func(i int, slot int) {
		assert.Equal(t, i+1, slot)
		got = append(got, slot)
	})
	assert.Equal(t, []int{1, 2, 3}, got)
}
