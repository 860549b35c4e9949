// Package shadow renders scene depth from the light's point of view and answers shadow visibility
// queries against it.
//
// The Pass is a depth-only rasterizer that fills a ShadowMap; the Sampler reads a completed map with
// a percentage-closer comparison filter. The GPU renderer mirrors both with a depth-only pipeline and
// a comparison sampler.
package shadow

import (
	"errors"
	"sync"
)

// FarDepth is the clear value of a shadow map: nothing occludes.
const FarDepth float32 = 1.0

// ErrShadowPassIncomplete is returned when a shadow map is read while a pass is writing to it,
// or before any pass has completed.
var ErrShadowPassIncomplete = errors.New("shadow pass has not completed")

// ShadowMap is a CPU depth store of Width x Height texels in row-major order, texel (0, 0) at the top left.
//
// During a pass the Pass holds the write lock and each band worker owns a disjoint set of rows, so
// workers write texels without further locking.
type ShadowMap struct {
	mu         sync.RWMutex
	width      int
	height     int
	depth      []float32
	generation uint64
	complete   bool
}

// NewShadowMap creates a shadow map of the given resolution cleared to FarDepth.
// The map is not complete until a Pass has been run over it.
//
// Parameters:
//   - width: width in texels (values below 1 are raised to 1)
//   - height: height in texels (values below 1 are raised to 1)
//
// Returns:
//   - *ShadowMap: the new map
func NewShadowMap(width, height int) *ShadowMap {
	m := &ShadowMap{}
	m.Resize(width, height)
	return m
}

// Width returns the map width in texels.
func (m *ShadowMap) Width() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.width
}

// Height returns the map height in texels.
func (m *ShadowMap) Height() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.height
}

// Generation counts how many times the map storage has been recreated.
func (m *ShadowMap) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Complete reports whether the last pass over the map has finished.
func (m *ShadowMap) Complete() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.complete
}

// Resize recreates the depth store at a new resolution, clears it to FarDepth and bumps the generation.
// The map is incomplete afterwards until the next pass ends.
//
// Parameters:
//   - width: new width in texels
//   - height: new height in texels
func (m *ShadowMap) Resize(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width = max(width, 1)
	m.height = max(height, 1)
	m.depth = make([]float32, m.width*m.height)
	for i := range m.depth {
		m.depth[i] = FarDepth
	}
	m.generation++
	m.complete = false
}

// Clear fills every texel with d.
//
// Parameters:
//   - d: the clear depth
func (m *ShadowMap) Clear(d float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.depth {
		m.depth[i] = d
	}
}

// Depth returns the stored depth at (x, y). Coordinates are clamped to the edge.
//
// Parameters:
//   - x, y: texel coordinates
//
// Returns:
//   - float32: the stored depth
func (m *ShadowMap) Depth(x, y int) float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.depthAt(x, y)
}

// Store writes d at (x, y) if it passes a Less depth test against the stored value.
// Out-of-range coordinates are ignored. Store blocks while a pass is running.
//
// Parameters:
//   - x, y: texel coordinates
//   - d: candidate depth
//
// Returns:
//   - bool: true if the texel was written
func (m *ShadowMap) Store(x, y int, d float32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store(x, y, d)
}

func (m *ShadowMap) depthAt(x, y int) float32 {
	x = min(max(x, 0), m.width-1)
	y = min(max(y, 0), m.height-1)
	return m.depth[y*m.width+x]
}

func (m *ShadowMap) store(x, y int, d float32) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	i := y*m.width + x
	if d < m.depth[i] {
		m.depth[i] = d
		return true
	}
	return false
}

func (m *ShadowMap) setComplete(complete bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.complete = complete
}
