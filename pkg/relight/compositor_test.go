package relight

import (
	"image"
	"testing"

	"github.com/mdouchement/hdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/emath"
)

// gradientHDR has a different value in every pixel, all within [0,1].
func gradientHDR(w, h int) *hdr.RGB {
	img := hdr.NewRGB(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := float64(x) / float64(w)
			v := float64(y) / float64(h)
			setVec(img, x, y, emath.Vec3{u, v, (u + v) / 2})
		}
	}
	return img
}

func whiteLayer(t *testing.T, img hdr.Image) *Layer {
	l := NewLayer("olat_00.exr", img, nil)
	require.NoError(t, l.SetPickerColor(ecolor.White))
	l.SetColorMode(ColorModeDirectRGB)
	return l
}

func TestCompositeIdentity(t *testing.T) {
	bgImg := gradientHDR(8, 4)
	bg := &Background{Image: bgImg, AmbientEnabled: true, AmbientScale: 1}

	layers := []*Layer{NewLayer("a.exr", solidHDR(8, 4, emath.Splat(1)), nil)}
	layers[0].SetEnabled(false)

	for _, workers := range []int{1, 3} {
		rs := RenderState{ToneMode: ecolor.Linear, MaxPoint: 16, Workers: workers}
		f := Composite(bg, layers, rs)
		require.Equal(t, bgImg.Bounds(), f.Bounds())

		for y := 0; y < 4; y++ {
			for x := 0; x < 8; x++ {
				in := hdrVec(bgImg, x, y)
				assert.True(t, f.DisplayAt(x, y).ApproxEqual(in, 1e-5), "display (%d,%d) %s != %s", x, y, f.DisplayAt(x, y), in)
				assert.True(t, f.LinearAt(x, y).ApproxEqual(ecolor.SRGBToLinearRGB(in), 1e-5))
			}
		}
	}
}

func TestCompositeSingleLayer(t *testing.T) {
	layerImg := gradientHDR(8, 4)
	bg := &Background{Image: solidHDR(8, 4, emath.Splat(0.9)), AmbientEnabled: true, AmbientScale: 0}
	layers := []*Layer{whiteLayer(t, layerImg)}

	for _, mode := range ecolor.ToneModes {
		rs := RenderState{ToneMode: mode, MaxPoint: 16, Workers: 1}
		f := Composite(bg, layers, rs)

		for y := 0; y < 4; y++ {
			for x := 0; x < 8; x++ {
				want := ecolor.LinearToSRGBRGB(mode.ForwardRGB(hdrVec(layerImg, x, y), 16))
				assert.True(t, f.DisplayAt(x, y).ApproxEqual(want, 1e-5), "%s (%d,%d)", mode, x, y)
			}
		}
	}
}

func TestCompositeAmbientDisabled(t *testing.T) {
	bg := &Background{Image: solidHDR(2, 2, emath.Splat(0.8)), AmbientEnabled: false, AmbientScale: 1}
	f := Composite(bg, nil, NewRenderState())
	assert.Equal(t, emath.Vec3{}, f.LinearAt(1, 1))
	assert.Equal(t, 0.0, bg.EffectiveScale())
}

func TestCompositeGain(t *testing.T) {
	bg := &Background{}
	l := whiteLayer(t, solidHDR(2, 2, emath.Splat(0.1)))
	l.SetEV(1)

	rs := RenderState{ToneMode: ecolor.Linear, MaxPoint: 16}
	f := Composite(bg, []*Layer{l, whiteLayer(t, solidHDR(2, 2, emath.Splat(0.05)))}, rs)
	assert.InDelta(t, 0.25, f.LinearAt(0, 0)[1], 1e-6)

	// Tint multiplies per channel.
	require.NoError(t, l.SetPickerColor("#ff0000"))
	f = Composite(bg, []*Layer{l}, rs)
	assert.True(t, f.LinearAt(1, 1).ApproxEqual(emath.Vec3{0.2, 0, 0}, 1e-6), "%s", f.LinearAt(1, 1))
}

func TestCompositeNoBackground(t *testing.T) {
	l := whiteLayer(t, solidHDR(3, 5, emath.Splat(0.5)))

	f := Composite(&Background{AmbientEnabled: true, AmbientScale: 1}, []*Layer{l}, NewRenderState())
	assert.Equal(t, image.Rect(0, 0, 3, 5), f.Bounds())
	want := ecolor.LinearToSRGBRGB(ecolor.Reinhard.ForwardRGB(emath.Splat(0.5), ecolor.DefaultMaxPoint))
	assert.True(t, f.DisplayAt(2, 4).ApproxEqual(want, 1e-5))

	empty := Composite(nil, nil, NewRenderState())
	assert.True(t, empty.Bounds().Empty())
	assert.Equal(t, 0, empty.Size())
}

func TestCompositeIgnoresLayersPastMax(t *testing.T) {
	layers := []*Layer{}
	for i := 0; i < MaxLayers+2; i++ {
		layers = append(layers, whiteLayer(t, solidHDR(1, 1, emath.Splat(0.01))))
	}
	f := Composite(nil, layers, RenderState{ToneMode: ecolor.Linear})
	assert.InDelta(t, 0.01*MaxLayers, f.LinearAt(0, 0)[0], 1e-6)
}

func TestCompositeMismatchedSizes(t *testing.T) {
	bg := &Background{Image: solidHDR(8, 8, emath.Splat(0)), AmbientEnabled: true, AmbientScale: 1}

	// A 2x2 layer, bright only on its right hand side.
	small := hdr.NewRGB(image.Rect(0, 0, 2, 2))
	setVec(small, 1, 0, emath.Splat(1))
	setVec(small, 1, 1, emath.Splat(1))

	f := Composite(bg, []*Layer{whiteLayer(t, small)}, RenderState{ToneMode: ecolor.Linear})
	require.Equal(t, image.Rect(0, 0, 8, 8), f.Bounds())
	assert.Equal(t, 0.0, f.LinearAt(3, 5)[0])
	assert.InDelta(t, 1.0, f.LinearAt(4, 5)[0], 1e-6)
	assert.InDelta(t, 1.0, f.LinearAt(7, 0)[0], 1e-6)
}

func TestFrameToLDR(t *testing.T) {
	f := Composite(&Background{Image: solidHDR(2, 1, emath.Splat(0.6)), AmbientEnabled: true, AmbientScale: 1},
		[]*Layer{}, RenderState{ToneMode: ecolor.Linear})
	ldr := f.ToLDR()
	c := ldr.NRGBAAt(1, 0)
	assert.Equal(t, uint8(153), c.R)
	assert.Equal(t, uint8(0xFF), c.A)
}

func TestProbePixel(t *testing.T) {
	bg := &Background{Image: gradientHDR(4, 4), AmbientEnabled: true, AmbientScale: 0.5}
	layers := []*Layer{whiteLayer(t, solidHDR(4, 4, emath.Splat(0.3))), whiteLayer(t, solidHDR(4, 4, emath.Splat(0.2)))}
	layers[1].SetEnabled(false)
	rs := NewRenderState()

	f := Composite(bg, layers, rs)
	p, err := ProbePixel(bg, layers, rs, 2, 3)
	require.NoError(t, err)

	assert.True(t, p.Linear.ApproxEqual(f.LinearAt(2, 3), 1e-6))
	assert.True(t, p.Display.ApproxEqual(f.DisplayAt(2, 3), 1e-6))
	assert.Equal(t, []string{"olat_00"}, p.LayerLabels)
	assert.Contains(t, p.String(), "olat_00")

	_, err = ProbePixel(bg, layers, rs, 4, 0)
	assert.Error(t, err)
}
