package material

import (
	"github.com/Carmen-Shannon/hyako/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Filter selects how a texture is reconstructed between texels.
type Filter int

const (
	// FilterLinear blends the four nearest texels.
	FilterLinear Filter = iota
	// FilterNearest picks the texel containing the sample point.
	FilterNearest
)

// String returns the filter name.
func (f Filter) String() string {
	if f == FilterNearest {
		return "nearest"
	}
	return "linear"
}

// SampleTexture reads an RGBA8 staging texture at uv with repeat addressing. Texel centers sit
// at half-integer coordinates, matching GPU sampling. An empty texture samples as opaque white.
//
// Parameters:
//   - tex: the RGBA8 texture data
//   - uv: the texture coordinate; values outside [0, 1] wrap
//   - filter: the reconstruction filter
//
// Returns:
//   - mgl32.Vec4: the RGBA color with components in [0, 1]
func SampleTexture(tex common.TextureStagingData, uv mgl32.Vec2, filter Filter) mgl32.Vec4 {
	if tex.Width == 0 || tex.Height == 0 || len(tex.Pixels) < int(tex.Width*tex.Height*4) {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	w, h := float32(tex.Width), float32(tex.Height)
	u := wrapUnit(sanitize(uv.X()))
	v := wrapUnit(sanitize(uv.Y()))

	if filter == FilterNearest {
		x := min(int(u*w), int(tex.Width)-1)
		y := min(int(v*h), int(tex.Height)-1)
		return texel(tex, x, y)
	}

	fx := u*w - 0.5
	fy := v*h - 0.5
	x0f, y0f := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	c00 := texel(tex, wrapIndex(x0, tex.Width), wrapIndex(y0, tex.Height))
	c10 := texel(tex, wrapIndex(x0+1, tex.Width), wrapIndex(y0, tex.Height))
	c01 := texel(tex, wrapIndex(x0, tex.Width), wrapIndex(y0+1, tex.Height))
	c11 := texel(tex, wrapIndex(x0+1, tex.Width), wrapIndex(y0+1, tex.Height))

	top := c00.Mul(1 - tx).Add(c10.Mul(tx))
	bottom := c01.Mul(1 - tx).Add(c11.Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}

func texel(tex common.TextureStagingData, x, y int) mgl32.Vec4 {
	i := (y*int(tex.Width) + x) * 4
	p := tex.Pixels[i : i+4]
	return mgl32.Vec4{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
}

func wrapUnit(f float32) float32 {
	f -= math32.Floor(f)
	if f >= 1 {
		return 0
	}
	return f
}

func wrapIndex(i int, n uint32) int {
	m := int(n)
	return ((i % m) + m) % m
}

func sanitize(f float32) float32 {
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return 0
	}
	return f
}
