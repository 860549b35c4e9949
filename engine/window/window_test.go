package window

import (
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/hyako/common"
	"github.com/stretchr/testify/assert"
)

func TestKeyEvent(t *testing.T) {
	w := &engineWindow{}
	var down, up []uint32
	w.SetKeyDownCallback(func(k uint32) { down = append(down, k) })
	w.SetKeyUpCallback(func(k uint32) { up = append(up, k) })

	assert.False(t, w.keyEvent(common.KeySpace, true))
	assert.False(t, w.keyEvent(common.KeySpace, false))
	assert.True(t, w.keyEvent(common.KeyEsc, true), "escape closes the window")
	assert.False(t, w.keyEvent(common.KeyEsc, false))

	assert.Equal(t, []uint32{common.KeySpace}, down)
	assert.Equal(t, []uint32{common.KeySpace, common.KeyEsc}, up)
}

func TestKeyEvent_NoCallbacks(t *testing.T) {
	w := &engineWindow{}
	assert.NotPanics(t, func() {
		w.keyEvent(common.KeyL, true)
		w.scrollEvent(1)
	})
}

func TestScrollEvent_DropsZero(t *testing.T) {
	w := &engineWindow{}
	var got []float32
	w.SetScrollCallback(func(d float32) { got = append(got, d) })
	w.scrollEvent(0)
	w.scrollEvent(-2)
	assert.Equal(t, []float32{-2}, got)
}

func TestSetSize(t *testing.T) {
	w := &engineWindow{}
	calls := 0
	w.SetResizeCallback(func(width, height int) { calls++ })

	w.setSize(800, 600)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, 1, calls)

	w.setSize(0, 0)
	assert.Zero(t, w.Width())
	assert.Equal(t, 1, calls, "minimized sizes are not forwarded")
}

func TestUninitializedWindow(t *testing.T) {
	w := &engineWindow{logger: slog.Default()}
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	w.ProcessMessages()
}

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{}
	for _, opt := range []WindowBuilderOption{
		WithTitle("hyako demo"),
		WithSize(640, 480),
		WithSizeLimits(100, 100, 1000, 900),
	} {
		opt(w)
	}
	assert.Equal(t, "hyako demo", w.title)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
	assert.Equal(t, 100, w.minWidth)
	assert.Equal(t, 900, w.maxHeight)
}
