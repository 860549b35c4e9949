package material

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// UnlitTexturedMaterial outputs its texture color directly. No lighting or shadowing is applied
// and the output alpha is always 1.
type UnlitTexturedMaterial interface {
	Material

	// Sample returns the output color at a texture coordinate.
	//
	// Parameters:
	//   - uv: the texture coordinate, wrapped with repeat addressing
	//
	// Returns:
	//   - mgl32.Vec4: the RGB texture color with alpha 1
	Sample(uv mgl32.Vec2) mgl32.Vec4
}

type unlitTexturedMaterial struct {
	*material
}

var _ UnlitTexturedMaterial = &unlitTexturedMaterial{}

// NewUnlitTexturedMaterial stages img as the material texture.
//
// Parameters:
//   - img: the host-supplied image; must not be nil
//   - opts: functional options (WithFilter, WithMaxTextureDimension, WithName, ...)
//
// Returns:
//   - UnlitTexturedMaterial: the material
//   - error: an error if the image is nil, empty or cannot be staged
func NewUnlitTexturedMaterial(img image.Image, opts ...MaterialBuilderOption) (UnlitTexturedMaterial, error) {
	if img == nil {
		return nil, errors.New("unlit textured material requires an image")
	}
	m, err := newMaterial(KindUnlit, PipelineKeyUnlit, append(opts, WithImage(img)))
	if err != nil {
		return nil, err
	}
	return &unlitTexturedMaterial{material: m}, nil
}

func (m *unlitTexturedMaterial) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	c := m.sample(uv)
	c[3] = 1
	return c
}
