package relight

import (
	"fmt"
	"math"

	"github.com/abworrall/olat-relight/pkg/emath"
)

// The range the exposure control covers, in stops.
const (
	MinEV = -5.0
	MaxEV = 2.0
)

// An ExposureValue brightens or darkens a light layer in whole or
// fractional 'stops'; each stop doubles (or halves) the light. EV 0
// leaves the layer as captured.
// https://en.wikipedia.org/wiki/Exposure_value
type ExposureValue float64

// NewExposureValue clamps to [MinEV, MaxEV].
func NewExposureValue(ev float64) ExposureValue {
	return ExposureValue(emath.Clamp(ev, MinEV, MaxEV))
}

// Intensity is the linear multiplier, 2^ev.
func (ev ExposureValue) Intensity() float64 { return math.Exp2(float64(ev)) }

func (ev ExposureValue) String() string {
	return fmt.Sprintf("EV %+.2f (x%.3f)", float64(ev), ev.Intensity())
}
