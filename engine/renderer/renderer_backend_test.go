package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestParsePresentMode(t *testing.T) {
	tests := []struct {
		name    string
		want    PresentMode
		wantErr bool
	}{
		{"vsync", PresentModeVSync, false},
		{"Uncapped", PresentModeUncapped, false},
		{"mailbox", PresentModeVSync, true},
		{"", PresentModeVSync, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePresentMode(tt.name)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.ErrorContains(t, err, "uncapped")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPresentMode_SurfaceMode(t *testing.T) {
	assert.Equal(t, wgpu.PresentModeFifo, PresentModeVSync.surfaceMode())
	assert.Equal(t, wgpu.PresentModeImmediate, PresentModeUncapped.surfaceMode())
	assert.Equal(t, wgpu.PresentModeFifo, PresentMode(9).surfaceMode())
	assert.Equal(t, "PresentMode(9)", PresentMode(9).String())
}

func TestMSAASampleCount(t *testing.T) {
	for _, c := range []MSAASampleCount{MSAAOff, MSAA4x, MSAA8x, MSAA16x} {
		assert.True(t, c.Valid(), c.String())
	}
	assert.False(t, MSAASampleCount(2).Valid())
	assert.False(t, MSAASampleCount(0).Valid())
	assert.Equal(t, "off", MSAAOff.String())
	assert.Equal(t, "4x", MSAA4x.String())
}
