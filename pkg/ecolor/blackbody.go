package ecolor

import (
	"math"

	"github.com/abworrall/olat-relight/pkg/emath"
)

const (
	MinKelvin = 1000.0
	MaxKelvin = 40000.0
)

// BlackbodyToRGB approximates the color of a blackbody radiator at the
// given temperature (Kelvin), using Tanner Helland's curve fit:
// https://tannerhelland.com/2012/09/18/convert-temperature-rgb-algorithm-code.html
//
// The result is normalized so the brightest channel is 1.0. This keeps
// the hue and saturation, and throws away the absolute luminance; the
// brightness of a light is controlled separately, by its exposure.
func BlackbodyToRGB(kelvin float64) emath.Vec3 {
	kelvin = emath.Clamp(kelvin, MinKelvin, MaxKelvin)
	t := kelvin / 100.0

	var red, green, blue float64

	if t <= 66.0 {
		red = 255.0
	} else {
		red = 329.698727446 * math.Pow(t-60.0, -0.1332047592)
	}

	if t <= 66.0 {
		green = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		green = 288.1221695283 * math.Pow(t-60.0, -0.0755148492)
	}

	if t >= 66.0 {
		blue = 255.0
	} else if t <= 19.0 {
		blue = 0.0
	} else {
		blue = 138.5177312231*math.Log(t-10.0) - 305.0447927307
	}

	rgb := emath.Vec3{red, green, blue}
	rgb.FloorAt(0)
	rgb.CeilingAt(255)
	rgb = rgb.Scale(1.0 / 255.0)

	if max := rgb.Max(); max > 0 {
		return rgb.Scale(1.0 / max)
	}
	return emath.Vec3{}
}
