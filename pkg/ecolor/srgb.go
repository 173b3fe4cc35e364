package ecolor

import (
	"math"

	"github.com/abworrall/olat-relight/pkg/emath"
)

// All of this stuff expects to operate on color channel values in the range [0, 1.0],
// though nothing breaks if you go outside it.

// SRGBToLinear undoes the sRGB transfer curve (a.k.a. gamma compression).
// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "sRGB to linear RGB"
func SRGBToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB applies the sRGB transfer curve, taking linear light to display encoding.
// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
func LinearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}

func SRGBToLinearRGB(v emath.Vec3) emath.Vec3 { return v.Map(SRGBToLinear) }
func LinearToSRGBRGB(v emath.Vec3) emath.Vec3 { return v.Map(LinearToSRGB) }
