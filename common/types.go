// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"errors"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// This is primarily used in the BindGroupProvider to stage texture data before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// This is primarily used in the BindGroupProvider to stage sampler data before creating the GPU sampler and bind group.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers, used in shadow mapping and similar techniques.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering, which can improve texture quality at oblique viewing angles.
	MaxAnisotropy uint16
}

// NewTextureStagingData converts a host-supplied image into tightly packed RGBA8 staging data.
// When maxDimension is positive and either side of the image exceeds it, the image is
// downscaled with bilinear filtering so the longest side equals maxDimension.
//
// Parameters:
//   - img: the source image, in any color model
//   - maxDimension: the largest allowed width or height, or 0 for no limit
//
// Returns:
//   - TextureStagingData: the staged RGBA pixels
//   - error: an error if the image is nil or empty
func NewTextureStagingData(img image.Image, maxDimension int) (TextureStagingData, error) {
	if img == nil {
		return TextureStagingData{}, errors.New("texture image is nil")
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return TextureStagingData{}, errors.New("texture image is empty")
	}

	dw, dh := w, h
	if maxDimension > 0 && (w > maxDimension || h > maxDimension) {
		if w >= h {
			dw = maxDimension
			dh = max(1, h*maxDimension/w)
		} else {
			dh = maxDimension
			dw = max(1, w*maxDimension/h)
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, dw, dh))
	if dw == w && dh == h {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(dw),
		Height: uint32(dh),
	}, nil
}
