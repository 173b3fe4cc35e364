package relight

import (
	"fmt"
	"image"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/emath"
)

// A Pixel is the working for one output pixel of a composite, for
// debugging a scene that doesn't look right.
type Pixel struct {
	OutputPos image.Point // In output coords

	BgRaw        emath.Vec3 // Background sample, display encoded
	BgLinear     emath.Vec3 // After sRGB decode and inverse tonemap
	BgScale      float64
	LayerLabels  []string
	LayerRaw     []emath.Vec3 // Linear layer samples
	LayerContrib []emath.Vec3 // After intensity and tint

	Linear   emath.Vec3 // The full sum
	Display  emath.Vec3 // Tonemapped and sRGB encoded
	Clipped  bool       // Display value exceeds 1 in some channel
	ToneMode ecolor.ToneMode
}

// ProbePixel recomputes the composite at a single output pixel, keeping
// all the intermediate values.
func ProbePixel(bg *Background, layers []*Layer, rs RenderState, x, y int) (Pixel, error) {
	c := newCompositor(bg, layers, rs)
	pt := image.Point{x, y}
	if !pt.In(c.out) {
		return Pixel{}, fmt.Errorf("pixel %s outside composite %s", pt, c.out)
	}

	p := Pixel{OutputPos: pt, BgScale: c.bgScale, ToneMode: c.rs.ToneMode}
	if c.bg != nil {
		p.BgRaw = c.sample(c.bg, x, y)
		p.BgLinear = c.rs.ToneMode.InverseRGB(ecolor.SRGBToLinearRGB(p.BgRaw), c.rs.MaxPoint)
	}

	if len(layers) > MaxLayers {
		layers = layers[:MaxLayers]
	}
	for _, l := range layers {
		if l == nil || l.Image == nil || !l.Enabled() {
			continue
		}
		raw := c.sample(l.Image, x, y)
		p.LayerLabels = append(p.LayerLabels, l.Label)
		p.LayerRaw = append(p.LayerRaw, raw)
		p.LayerContrib = append(p.LayerContrib, raw.Mul(l.Gain()))
	}

	p.Linear = c.linearAt(x, y)
	p.Display = c.encode(p.Linear)
	p.Clipped = p.Display.Max() > 1.0

	return p, nil
}

func (p Pixel) String() string {
	str := fmt.Sprintf("----- Pixel @(%d,%d) [%s] -----\n", p.OutputPos.X, p.OutputPos.Y, p.ToneMode)
	str += fmt.Sprintf("Background raw     : %s\n", p.BgRaw)
	str += fmt.Sprintf("Background linear  : %s (x%.3f)\n", p.BgLinear, p.BgScale)
	for i := range p.LayerLabels {
		str += fmt.Sprintf("-- %-15s : %s -> %s\n", p.LayerLabels[i], p.LayerRaw[i], p.LayerContrib[i])
	}
	str += fmt.Sprintf("Linear sum         : %s\n", p.Linear)
	str += fmt.Sprintf("Display            : %s", p.Display)
	if p.Clipped {
		str += " (clipped)"
	}
	return str + "\n"
}
