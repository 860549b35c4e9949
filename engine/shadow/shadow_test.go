package shadow

import (
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullscreenQuad covers the whole light frustum at z = depth when drawn with an identity view-projection.
func fullscreenQuad(depth float32) ([]mgl32.Vec3, []uint32) {
	return []mgl32.Vec3{
			{-1, -1, depth},
			{1, -1, depth},
			{1, 1, depth},
			{-1, 1, depth},
		},
		[]uint32{0, 1, 2, 0, 2, 3}
}

func runPass(t *testing.T, p Pass, draw func()) {
	t.Helper()
	require.NoError(t, p.Begin())
	draw()
	require.NoError(t, p.End())
}

func TestShadowMap_StoreUsesLessDepthTest(t *testing.T) {
	m := NewShadowMap(4, 4)

	assert.True(t, m.Store(1, 1, 0.5))
	assert.False(t, m.Store(1, 1, 0.5), "equal depth fails Less")
	assert.False(t, m.Store(1, 1, 0.7))
	assert.True(t, m.Store(1, 1, 0.2))
	assert.Equal(t, float32(0.2), m.Depth(1, 1))
	assert.False(t, m.Store(9, 9, 0), "out of range is ignored")
	assert.Equal(t, FarDepth, m.Depth(-5, -5), "coordinates clamp to the edge")
	m.Store(0, 0, 0.1)
	assert.Equal(t, float32(0.1), m.Depth(-5, -5))
}

func TestShadowMap_ConcurrentStoreKeepsNearest(t *testing.T) {
	m := NewShadowMap(4, 4)
	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Store(2, 2, 0.9-float32(i)*0.01)
			m.Store(i%4, 0, 0.5)
		}()
	}
	wg.Wait()

	assert.InDelta(t, 0.27, m.Depth(2, 2), 1e-6)
	for x := range 4 {
		assert.Equal(t, float32(0.5), m.Depth(x, 0))
	}
}

func TestShadowMap_ResizeRecreatesStore(t *testing.T) {
	m := NewShadowMap(8, 8)
	gen := m.Generation()
	p := NewPass(m, WithWorkers(2))
	defer p.Close()
	runPass(t, p, func() {})
	require.True(t, m.Complete())

	m.Resize(16, 4)
	assert.Equal(t, 16, m.Width())
	assert.Equal(t, 4, m.Height())
	assert.Equal(t, gen+1, m.Generation())
	assert.False(t, m.Complete(), "a recreated map must be rendered again")
	assert.Equal(t, FarDepth, m.Depth(15, 3))
}

func TestPass_FullscreenQuadCoversEveryTexel(t *testing.T) {
	m := NewShadowMap(64, 48)
	p := NewPass(m, WithWorkers(4))
	defer p.Close()

	pos, idx := fullscreenQuad(0.25)
	runPass(t, p, func() {
		require.NoError(t, p.Draw(mgl32.Ident4(), pos, idx))
	})

	for y := range 48 {
		for x := range 64 {
			require.InDelta(t, 0.25, m.Depth(x, y), 1e-6, "texel (%d, %d)", x, y)
		}
	}
}

func TestPass_NearerGeometryWins(t *testing.T) {
	m := NewShadowMap(32, 32)
	p := NewPass(m, WithWorkers(3))
	defer p.Close()

	far, idx := fullscreenQuad(0.8)
	near, _ := fullscreenQuad(0.3)
	runPass(t, p, func() {
		require.NoError(t, p.Draw(mgl32.Ident4(), near, idx))
		require.NoError(t, p.Draw(mgl32.Ident4(), far, idx))
	})
	assert.InDelta(t, 0.3, m.Depth(16, 16), 1e-6)
}

func TestPass_ModelMatrixAppliesPerDraw(t *testing.T) {
	m := NewShadowMap(32, 32)
	p := NewPass(m, WithWorkers(2))
	defer p.Close()

	// a quarter-size quad shifted into the right half
	pos, idx := fullscreenQuad(0.5)
	model := mgl32.Translate3D(0.5, 0, 0).Mul4(mgl32.Scale3D(0.25, 0.25, 1))
	runPass(t, p, func() {
		require.NoError(t, p.Draw(model, pos, idx))
	})

	assert.InDelta(t, 0.5, m.Depth(24, 16), 1e-6)
	assert.Equal(t, FarDepth, m.Depth(8, 16))
}

func TestPass_DropsGeometryOutsideDepthRange(t *testing.T) {
	m := NewShadowMap(16, 16)
	p := NewPass(m, WithWorkers(1))
	defer p.Close()

	pos, idx := fullscreenQuad(1.5)
	runPass(t, p, func() {
		require.NoError(t, p.Draw(mgl32.Ident4(), pos, idx))
	})
	assert.Equal(t, FarDepth, m.Depth(8, 8))
}

func TestPass_OrderingErrors(t *testing.T) {
	m := NewShadowMap(8, 8)
	p := NewPass(m)
	defer p.Close()

	assert.Error(t, p.End(), "end without begin")
	assert.Error(t, p.Draw(mgl32.Ident4(), nil, nil), "draw without begin")

	require.NoError(t, p.Begin())
	assert.Error(t, p.Begin(), "nested begin")
	assert.Error(t, p.Draw(mgl32.Ident4(), []mgl32.Vec3{{}, {}, {}}, []uint32{0, 1, 5}))
	require.NoError(t, p.End())
}

func TestSampler_RequiresCompletedPass(t *testing.T) {
	m := NewShadowMap(8, 8)
	s, err := NewSampler(m, DefaultSamplerConfig())
	require.NoError(t, err, "a sampler can be created before the first pass")
	_, err = s.VisibilityAt(mgl32.Vec2{0.5, 0.5}, 0.5)
	require.ErrorIs(t, err, ErrShadowPassIncomplete)

	p := NewPass(m)
	defer p.Close()
	runPass(t, p, func() {})

	require.NoError(t, p.Begin())
	_, err = s.VisibilityAt(mgl32.Vec2{0.5, 0.5}, 0.5)
	assert.ErrorIs(t, err, ErrShadowPassIncomplete, "reading mid-pass")
	require.NoError(t, p.End())

	_, err = s.VisibilityAt(mgl32.Vec2{0.5, 0.5}, 0.5)
	assert.NoError(t, err)
}

func TestNewSampler_ValidatesConfig(t *testing.T) {
	m := NewShadowMap(8, 8)
	_, err := NewSampler(nil, DefaultSamplerConfig())
	assert.Error(t, err)

	tests := []struct {
		name string
		cfg  SamplerConfig
	}{
		{"negative radius", SamplerConfig{PCFRadius: -1}},
		{"negative bias", SamplerConfig{Bias: -0.01}},
		{"nan bias", SamplerConfig{Bias: math32.NaN()}},
		{"inf bias", SamplerConfig{Bias: math32.Inf(1)}},
		{"unknown compare", SamplerConfig{Compare: CompareFunc(7)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSampler(m, tt.cfg)
			assert.Error(t, err)
			assert.Error(t, tt.cfg.Validate())
		})
	}

	s, err := NewSampler(m, SamplerConfig{Compare: CompareLessEqual})
	require.NoError(t, err)
	assert.Equal(t, CompareLessEqual, s.Config().Compare)
}

func TestSampler_FarClearedMapIsFullyLit(t *testing.T) {
	m := NewShadowMap(64, 64)
	p := NewPass(m)
	defer p.Close()
	runPass(t, p, func() {})

	s, err := NewSampler(m, DefaultSamplerConfig())
	require.NoError(t, err)
	vp := LightViewProjection(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.DegToRad(90), 0.1, 100)

	for _, pos := range []mgl32.Vec3{{}, {2, 0, 2}, {-3, 1, 1}, {0, 9, 0}} {
		v, err := s.Visibility(vp, pos)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, 1e-6, "position %v", pos)
	}
}

func TestSampler_ZeroClearedMapIsFullyShadowed(t *testing.T) {
	m := NewShadowMap(64, 64)
	p := NewPass(m)
	defer p.Close()
	runPass(t, p, func() {})
	m.Clear(0)

	s, err := NewSampler(m, DefaultSamplerConfig())
	require.NoError(t, err)
	vp := LightViewProjection(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.DegToRad(90), 0.1, 100)

	for _, pos := range []mgl32.Vec3{{}, {2, 0, 2}, {-3, 1, 1}} {
		v, err := s.Visibility(vp, pos)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, v, 1e-6, "position %v", pos)
	}
}

func TestSampler_UsesFragmentDepthAsReference(t *testing.T) {
	m := NewShadowMap(32, 32)
	p := NewPass(m)
	defer p.Close()

	pos, idx := fullscreenQuad(0.5)
	runPass(t, p, func() {
		require.NoError(t, p.Draw(mgl32.Ident4(), pos, idx))
	})
	s, err := NewSampler(m, SamplerConfig{Bias: 0.01, PCFRadius: 1})
	require.NoError(t, err)

	// identity light VP: world z is the light-space depth
	front, err := s.Visibility(mgl32.Ident4(), mgl32.Vec3{0.1, 0.1, 0.2})
	require.NoError(t, err)
	behind, err := s.Visibility(mgl32.Ident4(), mgl32.Vec3{0.1, 0.1, 0.9})
	require.NoError(t, err)
	onSurface, err := s.Visibility(mgl32.Ident4(), mgl32.Vec3{0.1, 0.1, 0.5})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, front, 1e-6)
	assert.InDelta(t, 0.0, behind, 1e-6)
	assert.InDelta(t, 1.0, onSurface, 1e-6, "bias keeps the occluder itself lit")
}

func TestSampler_PCFSoftensShadowEdge(t *testing.T) {
	m := NewShadowMap(16, 16)
	p := NewPass(m)
	defer p.Close()

	// occluder over the left half only
	pos := []mgl32.Vec3{{-1, -1, 0.2}, {0, -1, 0.2}, {0, 1, 0.2}, {-1, 1, 0.2}}
	runPass(t, p, func() {
		require.NoError(t, p.Draw(mgl32.Ident4(), pos, []uint32{0, 1, 2, 0, 2, 3}))
	})
	s, err := NewSampler(m, SamplerConfig{PCFRadius: 1})
	require.NoError(t, err)

	edge, err := s.VisibilityAt(mgl32.Vec2{0.5, 0.5}, 0.6)
	require.NoError(t, err)
	assert.Greater(t, edge, float32(0))
	assert.Less(t, edge, float32(1))

	deep, err := s.VisibilityAt(mgl32.Vec2{0.1, 0.5}, 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, deep, 1e-6)
}

func TestSampler_OutsideFrustumIsLit(t *testing.T) {
	m := NewShadowMap(8, 8)
	p := NewPass(m)
	defer p.Close()
	runPass(t, p, func() {})
	m.Clear(0)
	s, err := NewSampler(m, DefaultSamplerConfig())
	require.NoError(t, err)

	vp := LightViewProjection(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.DegToRad(60), 0.1, 20)
	v, err := s.Visibility(vp, mgl32.Vec3{0, 20, 0})
	require.NoError(t, err)
	assert.Equal(t, float32(1), v, "behind the light")

	v, err = s.Visibility(vp, mgl32.Vec3{0, -50, 0})
	require.NoError(t, err)
	assert.Equal(t, float32(1), v, "past the far plane")
}

func TestLightViewProjectionForBounds_ContainsSphere(t *testing.T) {
	vp := LightViewProjectionForBounds(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, 3)
	for _, p := range []mgl32.Vec3{{}, {2.9, 0, 0}, {0, 0, -2.9}, {0, 2.9, 0}, {0, -2.9, 0}} {
		clip := vp.Mul4x1(p.Vec4(1))
		require.Greater(t, clip.W(), float32(0))
		ndc := clip.Vec3().Mul(1 / clip.W())
		assert.LessOrEqual(t, ndc.X(), float32(1.0001))
		assert.GreaterOrEqual(t, ndc.X(), float32(-1.0001))
		assert.GreaterOrEqual(t, ndc.Z(), float32(0))
		assert.LessOrEqual(t, ndc.Z(), float32(1))
	}
}

func TestPass_ConcurrentPassesOnSeparateMaps(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := NewShadowMap(32, 32)
			p := NewPass(m, WithWorkers(2))
			defer p.Close()
			depth := 0.1 * float32(i+1)
			pos, idx := fullscreenQuad(depth)
			assert.NoError(t, p.Begin())
			assert.NoError(t, p.Draw(mgl32.Ident4(), pos, idx))
			assert.NoError(t, p.End())
			assert.InDelta(t, depth, m.Depth(5, 5), 1e-6)
		}()
	}
	wg.Wait()
}
