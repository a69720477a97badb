package compositor

import (
	"image"
	"image/color"
)

// Base canvas palette. The background is generated procedurally so every
// composite starts from an identical, reproducible ground/sky scene
// without any disk asset.
var (
	skyTop       = color.RGBA{R: 168, G: 208, B: 235, A: 255}
	skyHorizon   = color.RGBA{R: 222, G: 236, B: 244, A: 255}
	groundNear   = color.RGBA{R: 88, G: 128, B: 68, A: 255}
	groundFar    = color.RGBA{R: 120, G: 158, B: 96, A: 255}
	horizonRatio = 0.35 // fraction of canvas height occupied by sky
)

// CreateBaseCanvas generates the deterministic textured background the
// sprites are composited onto: a vertical sky gradient above the horizon,
// a ground gradient below it, and a small hash-based luminance noise so
// the ground does not read as a flat fill.
func CreateBaseCanvas() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	horizon := int(float64(CanvasHeight) * horizonRatio)

	for y := 0; y < CanvasHeight; y++ {
		var base color.RGBA
		if y < horizon {
			t := float64(y) / float64(horizon)
			base = lerpRGBA(skyTop, skyHorizon, t)
		} else {
			t := float64(y-horizon) / float64(CanvasHeight-horizon)
			base = lerpRGBA(groundFar, groundNear, t)
		}

		for x := 0; x < CanvasWidth; x++ {
			px := base
			if y >= horizon {
				// Deterministic per-pixel jitter in [-8, 7].
				n := int(pixelHash(x, y)%16) - 8
				px = color.RGBA{
					R: clampByte(int(base.R) + n),
					G: clampByte(int(base.G) + n),
					B: clampByte(int(base.B) + n),
					A: 255,
				}
			}
			img.SetRGBA(x, y, px)
		}
	}

	return img
}

// pixelHash is a cheap integer hash over pixel coordinates. Seeded by
// constants only, so repeated canvases are byte-identical.
func pixelHash(x, y int) uint32 {
	h := uint32(x)*374761393 + uint32(y)*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 255,
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
