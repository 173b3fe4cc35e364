package ecolor

import (
	"fmt"
	"math"
	"strings"

	"github.com/abworrall/olat-relight/pkg/emath"
)

// ToneMode picks the tone reproduction operator. Background images are
// assumed to have been exported with this same curve baked in, so the
// compositor runs the inverse on them before adding lights in linear
// space, then runs the forward curve on the sum.
type ToneMode int

const (
	Linear ToneMode = iota
	Reinhard
	Filmic
)

var (
	ToneModes = []ToneMode{Linear, Reinhard, Filmic}

	// The standard rational fit to the ACES filmic curve, from
	// https://knarkowicz.wordpress.com/2016/01/06/aces-filmic-tone-mapping-curve/
	filmicA = 2.51
	filmicB = 0.03
	filmicC = 2.43
	filmicD = 0.59
	filmicE = 0.14
)

const DefaultMaxPoint = 16.0

func (m ToneMode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Reinhard:
		return "reinhard"
	case Filmic:
		return "filmic"
	}
	return fmt.Sprintf("ToneMode(%d)", int(m))
}

func ListToneModes() string {
	names := []string{}
	for _, m := range ToneModes {
		names = append(names, m.String())
	}
	return strings.Join(names, "|")
}

// ParseToneMode is case-insensitive.
func ParseToneMode(s string) (ToneMode, error) {
	for _, m := range ToneModes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return Linear, fmt.Errorf("tone mode %q not recognized, wanted %s", s, ListToneModes())
}

// Forward maps scene-linear radiance to the tonemapped value.
// `maxP` is the Reinhard white point; the other operators ignore it.
func (m ToneMode) Forward(x, maxP float64) float64 {
	switch m {
	case Reinhard:
		return ReinhardTonemap(x, maxP)
	case Filmic:
		return FilmicTonemap(x)
	}
	return x
}

// Inverse undoes Forward.
func (m ToneMode) Inverse(y, maxP float64) float64 {
	switch m {
	case Reinhard:
		return InverseReinhard(y, maxP)
	case Filmic:
		return InverseFilmic(y)
	}
	return y
}

func (m ToneMode) ForwardRGB(v emath.Vec3, maxP float64) emath.Vec3 {
	return emath.Vec3{m.Forward(v[0], maxP), m.Forward(v[1], maxP), m.Forward(v[2], maxP)}
}

func (m ToneMode) InverseRGB(v emath.Vec3, maxP float64) emath.Vec3 {
	return emath.Vec3{m.Inverse(v[0], maxP), m.Inverse(v[1], maxP), m.Inverse(v[2], maxP)}
}

// ReinhardTonemap is the extended Reinhard operator, where `maxP` is the
// radiance that maps to 1.0: y = x(1 + x/maxP^2) / (1 + x)
func ReinhardTonemap(x, maxP float64) float64 {
	return x * (1.0 + x/(maxP*maxP)) / (1.0 + x)
}

// InverseReinhard solves y = x(1+x/M)/(1+x) for x, with M = maxP^2.
// Rearranged that is x^2 + M(1-y)x - My = 0; we want the positive root.
func InverseReinhard(y, maxP float64) float64 {
	M := maxP * maxP
	term1 := math.Sqrt(M*M*(y-1.0)*(y-1.0) + 4.0*M*y)
	term2 := M * (y - 1.0)
	return (term1 + term2) / 2.0
}

// FilmicTonemap: clamp(x(ax+b) / (x(cx+d)+e), 0, 1)
func FilmicTonemap(x float64) float64 {
	return emath.Clamp01((x * (filmicA*x + filmicB)) / (x*(filmicC*x+filmicD) + filmicE))
}

// InverseFilmic solves y = x(ax+b) / (x(cx+d)+e) for x. This is the
// quadratic (yc-a)x^2 + (yd-b)x + ye = 0; the negative root of the
// discriminant is the physical one. A negative discriminant is clamped
// to zero.
func InverseFilmic(y float64) float64 {
	A := y*filmicC - filmicA
	B := y*filmicD - filmicB
	C := y * filmicE

	if A == 0 {
		// Degenerates to a linear equation
		if B == 0 {
			return 0
		}
		return -C / B
	}

	D := B*B - 4.0*A*C
	sqrtD := math.Sqrt(math.Max(0.0, D))

	return (-B - sqrtD) / (2.0 * A)
}
