package renderer

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType selects the GPU API behind a Renderer. WebGPU is the only one.
type RendererBackendType int

const (
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode is how finished frames reach the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank. No tearing; frame rate is capped at the
	// refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately. Lowest latency, may tear.
	PresentModeUncapped
)

var presentModeNames = map[PresentMode]string{
	PresentModeVSync:    "vsync",
	PresentModeUncapped: "uncapped",
}

// String returns the lower-case name used in configuration files.
func (m PresentMode) String() string {
	if name, ok := presentModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("PresentMode(%d)", int(m))
}

// surfaceMode maps the mode onto the surface present mode. Unknown modes use FIFO, which every
// adapter supports.
func (m PresentMode) surfaceMode() wgpu.PresentMode {
	if m == PresentModeUncapped {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

// ParsePresentMode looks up a present mode by name, ignoring case.
//
// Parameters:
//   - name: "vsync" or "uncapped"
//
// Returns:
//   - PresentMode: the mode
//   - error: an error listing the accepted names if name is unknown
func ParsePresentMode(name string) (PresentMode, error) {
	for mode, n := range presentModeNames {
		if strings.EqualFold(name, n) {
			return mode, nil
		}
	}
	return PresentModeVSync, fmt.Errorf("present mode must be %q or %q, got %q",
		PresentModeVSync, PresentModeUncapped, name)
}

// MSAASampleCount is the number of samples per pixel of the color and depth targets. WebGPU
// guarantees 1 and 4; 8 and 16 depend on the adapter.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	// MSAA4x is the default.
	MSAA4x  MSAASampleCount = 4
	MSAA8x  MSAASampleCount = 8
	MSAA16x MSAASampleCount = 16
)

// Valid reports whether c is one of the defined sample counts.
func (c MSAASampleCount) Valid() bool {
	switch c {
	case MSAAOff, MSAA4x, MSAA8x, MSAA16x:
		return true
	}
	return false
}

func (c MSAASampleCount) String() string {
	if c == MSAAOff {
		return "off"
	}
	return fmt.Sprintf("%dx", uint32(c))
}

// RendererBackend is what the Renderer drives. It is the WebGPU backend's full surface.
type RendererBackend interface {
	wgpuRendererBackend
}
