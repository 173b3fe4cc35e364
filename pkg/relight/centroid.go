package relight

import (
	"image"
	"image/color"

	"github.com/abworrall/olat-relight/pkg/emath"
)

// MaskThreshold is the red value (of 255) a mask pixel must exceed to
// count as lit.
const MaskThreshold = 20

// MaskCentroid finds the mean position of the lit pixels in a mask, in
// normalized coords. A missing or unlit mask gives ImageCenter.
func MaskCentroid(mask image.Image) Centroid {
	if mask == nil {
		return ImageCenter
	}
	b := mask.Bounds()
	if b.Empty() {
		return ImageCenter
	}

	fg := MaskGrid(mask)
	x, y, n := fg.CentroidAbove(MaskThreshold)
	if n == 0 {
		return ImageCenter
	}

	return Centroid{X: x / float64(b.Dx()), Y: y / float64(b.Dy())}
}

// MaskGrid pulls out the red channel of a mask, which is all that counts.
func MaskGrid(mask image.Image) emath.FloatGrid {
	return emath.NewFloatGridFromImage(mask, maskRed)
}

// maskRed is the 8-bit red channel, without alpha premultiplication.
func maskRed(c color.Color) float64 {
	return float64(color.NRGBAModel.Convert(c).(color.NRGBA).R)
}
