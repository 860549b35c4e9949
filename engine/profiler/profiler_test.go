package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_ReportsAfterInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(20*time.Millisecond, slog.New(slog.NewTextHandler(&buf, nil)))

	assert.False(t, p.Tick())
	assert.Zero(t, p.Last())

	time.Sleep(30 * time.Millisecond)
	require.True(t, p.Tick())
	assert.Greater(t, p.Last().FPS, 0.0)
	assert.Greater(t, p.Last().SysMB, 0.0)
	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "component=profiler")

	assert.False(t, p.Tick(), "interval restarts after a report")
}

func TestNewProfiler_Defaults(t *testing.T) {
	p := NewProfiler(0, nil)
	assert.Equal(t, DefaultInterval, p.updateInterval)
	assert.NotNil(t, p.logger)
}
