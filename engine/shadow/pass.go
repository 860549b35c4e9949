package shadow

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// minBandRows keeps bands from shrinking below a useful amount of work per task.
const minBandRows = 16

// Triangle is a world-space triangle submitted to the shadow pass.
type Triangle struct {
	A, B, C mgl32.Vec3
}

// screenTri is a triangle in shadow map texel space: x, y in texels (y down), z in [0, 1].
type screenTri struct {
	v    [3]mgl32.Vec3
	area float32
	minY float32
	maxY float32
}

type passImpl struct {
	mu sync.Mutex

	shadowMap      *ShadowMap
	viewProjection mgl32.Mat4
	logger         *slog.Logger

	workers int
	pool    worker.DynamicWorkerPool
	wg      *sync.WaitGroup
	taskID  int

	active    bool
	triangles []screenTri
	culled    int
}

// Pass is a depth-only rasterizer that renders geometry from the light's point of view into a ShadowMap.
//
// A pass is bracketed by Begin and End. Begin clears the map to FarDepth and marks it incomplete;
// Draw projects geometry through the light view-projection and the caller's per-draw model matrix;
// End rasterizes every submitted triangle in parallel horizontal bands and returns only once all
// bands have finished, at which point the map is complete and may be sampled.
type Pass interface {
	// Map returns the shadow map this pass writes.
	//
	// Returns:
	//   - *ShadowMap: the target map
	Map() *ShadowMap

	// ViewProjection returns the light view-projection used by Draw.
	//
	// Returns:
	//   - mgl32.Mat4: the light view-projection
	ViewProjection() mgl32.Mat4

	// SetViewProjection sets the light view-projection used by subsequent Draw calls.
	//
	// Parameters:
	//   - vp: the light view-projection matrix
	SetViewProjection(vp mgl32.Mat4)

	// Begin starts a pass: the map is cleared to FarDepth and marked incomplete.
	//
	// Returns:
	//   - error: an error if a pass is already active
	Begin() error

	// Draw submits indexed geometry for the current pass. Positions are in model space and are
	// transformed by viewProjection * model. The model matrix is used for this call only.
	// Triangles with a vertex behind the light (w <= 0) are dropped.
	//
	// Parameters:
	//   - model: the per-draw model matrix
	//   - positions: model-space vertex positions
	//   - indices: triangle list indices into positions; nil draws positions as a non-indexed list
	//
	// Returns:
	//   - error: an error if no pass is active or an index is out of range
	Draw(model mgl32.Mat4, positions []mgl32.Vec3, indices []uint32) error

	// DrawTriangles submits world-space triangles for the current pass.
	//
	// Parameters:
	//   - tris: world-space triangles
	//
	// Returns:
	//   - error: an error if no pass is active
	DrawTriangles(tris []Triangle) error

	// End rasterizes every submitted triangle and blocks until all depth writes are done.
	//
	// Returns:
	//   - error: an error if no pass is active
	End() error

	// Close stops the pass's worker pool.
	Close()
}

var _ Pass = &passImpl{}

// NewPass creates a shadow pass writing into m.
//
// Parameters:
//   - m: the target shadow map
//   - opts: functional options to configure the pass
//
// Returns:
//   - Pass: the new pass
func NewPass(m *ShadowMap, opts ...PassBuilderOption) Pass {
	p := &passImpl{
		shadowMap:      m,
		viewProjection: mgl32.Ident4(),
		workers:        runtime.NumCPU(),
		wg:             &sync.WaitGroup{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "shadow_pass")
	p.workers = max(p.workers, 1)
	p.pool = worker.NewDynamicWorkerPool(p.workers, 256, 1*time.Second)
	return p
}

func (p *passImpl) Map() *ShadowMap {
	return p.shadowMap
}

func (p *passImpl) ViewProjection() mgl32.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewProjection
}

func (p *passImpl) SetViewProjection(vp mgl32.Mat4) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewProjection = vp
}

func (p *passImpl) Begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return errors.New("shadow pass already active")
	}
	p.shadowMap.setComplete(false)
	p.shadowMap.Clear(FarDepth)
	p.active = true
	p.triangles = p.triangles[:0]
	p.culled = 0
	return nil
}

func (p *passImpl) Draw(model mgl32.Mat4, positions []mgl32.Vec3, indices []uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return errors.New("shadow draw outside of an active pass")
	}

	mvp := p.viewProjection.Mul4(model)
	if indices == nil {
		for i := 0; i+2 < len(positions); i += 3 {
			p.submit(mvp, positions[i], positions[i+1], positions[i+2])
		}
		return nil
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := uint32(len(positions))
		if a >= n || b >= n || c >= n {
			return fmt.Errorf("shadow draw index out of range at triangle %d: %d vertices", i/3, n)
		}
		p.submit(mvp, positions[a], positions[b], positions[c])
	}
	return nil
}

func (p *passImpl) DrawTriangles(tris []Triangle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return errors.New("shadow draw outside of an active pass")
	}
	for _, t := range tris {
		p.submit(p.viewProjection, t.A, t.B, t.C)
	}
	return nil
}

func (p *passImpl) End() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return errors.New("shadow pass end without begin")
	}

	m := p.shadowMap
	m.mu.Lock()
	height := m.height
	bands := min(p.workers, max(height/minBandRows, 1))
	rowsPerBand := (height + bands - 1) / bands

	for y0 := 0; y0 < height; y0 += rowsPerBand {
		y1 := min(y0+rowsPerBand, height)
		p.wg.Add(1)
		id := p.taskID
		p.taskID++
		p.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer p.wg.Done()
				for i := range p.triangles {
					rasterizeBand(m, &p.triangles[i], y0, y1)
				}
				return nil, nil
			},
		})
	}
	p.wg.Wait()
	m.complete = true
	m.mu.Unlock()

	if p.culled > 0 {
		p.logger.Debug("shadow pass dropped triangles behind the light", "count", p.culled)
	}
	p.active = false
	return nil
}

func (p *passImpl) Close() {
	p.pool.Stop()
}

// submit projects a triangle into texel space and queues it. Caller must hold p.mu.
func (p *passImpl) submit(mvp mgl32.Mat4, a, b, c mgl32.Vec3) {
	width, height := float32(p.shadowMap.Width()), float32(p.shadowMap.Height())
	var st screenTri
	for i, v := range [3]mgl32.Vec3{a, b, c} {
		clip := mvp.Mul4x1(v.Vec4(1))
		if clip.W() <= 1e-6 {
			p.culled++
			return
		}
		inv := 1 / clip.W()
		ndc := clip.Vec3().Mul(inv)
		st.v[i] = mgl32.Vec3{
			(ndc.X()*0.5 + 0.5) * width,
			(0.5 - ndc.Y()*0.5) * height,
			ndc.Z(),
		}
	}

	// no culling: flip to a consistent winding so edge functions are positive inside
	st.area = edge(st.v[0], st.v[1], st.v[2])
	if st.area < 0 {
		st.v[1], st.v[2] = st.v[2], st.v[1]
		st.area = -st.area
	}
	if st.area == 0 {
		return
	}
	st.minY = min(st.v[0].Y(), st.v[1].Y(), st.v[2].Y())
	st.maxY = max(st.v[0].Y(), st.v[1].Y(), st.v[2].Y())
	p.triangles = append(p.triangles, st)
}

// edge is twice the signed area of (a, b, p) in texel space.
func edge(a, b, p mgl32.Vec3) float32 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

// isTopLeft reports whether edge a->b is a top or left edge for a triangle with positive area.
func isTopLeft(a, b mgl32.Vec3) bool {
	dx, dy := b.X()-a.X(), b.Y()-a.Y()
	return (dy == 0 && dx > 0) || dy < 0
}

// rasterizeBand writes the depth of t into rows [y0, y1) of m, sampling at texel centers.
// Caller must hold m.mu.
func rasterizeBand(m *ShadowMap, t *screenTri, y0, y1 int) {
	if t.maxY < float32(y0) || t.minY >= float32(y1) {
		return
	}
	v0, v1, v2 := t.v[0], t.v[1], t.v[2]

	minX := max(int(math32.Floor(min(v0.X(), v1.X(), v2.X()))), 0)
	maxX := min(int(math32.Ceil(max(v0.X(), v1.X(), v2.X()))), m.width-1)
	minY := max(int(math32.Floor(t.minY)), y0)
	maxY := min(int(math32.Ceil(t.maxY)), y1-1)

	tl0 := isTopLeft(v1, v2)
	tl1 := isTopLeft(v2, v0)
	tl2 := isTopLeft(v0, v1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, 0}
			w0 := edge(v1, v2, p)
			w1 := edge(v2, v0, p)
			w2 := edge(v0, v1, p)
			if !inside(w0, tl0) || !inside(w1, tl1) || !inside(w2, tl2) {
				continue
			}
			z := (w0*v0.Z() + w1*v1.Z() + w2*v2.Z()) / t.area
			if z < 0 || z > 1 {
				continue
			}
			m.store(x, y, z)
		}
	}
}

func inside(w float32, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}
