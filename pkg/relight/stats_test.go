package relight

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/mdouchement/hdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/emath"
)

func TestComputeStats(t *testing.T) {
	img := hdr2x2(emath.Splat(0.5), emath.Splat(0.5), emath.Splat(2), emath.Splat(0))
	l := whiteLayer(t, img)
	f := Composite(nil, []*Layer{l}, RenderState{ToneMode: ecolor.Linear})

	st, err := ComputeStats(f)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Pixels)
	assert.Equal(t, 1, st.Clipped)
	assert.InDelta(t, 2.0, st.LinearMax, 0.01)
	assert.InDelta(t, 0.5, st.LinearP50, 0.01)
	assert.Greater(t, st.MeanLuma, 0.0)
	assert.Contains(t, st.String(), "4 pixels, 1 clipped")

	empty, err := ComputeStats(Composite(nil, nil, NewRenderState()))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Pixels)
}

func TestComputeStatsOutOfRange(t *testing.T) {
	img := hdr2x2(emath.Splat(1e9), emath.Splat(-3), emath.Splat(0.5), emath.Splat(0.5))
	f := Composite(nil, []*Layer{whiteLayer(t, img)}, RenderState{ToneMode: ecolor.Reinhard})

	st, err := ComputeStats(f)
	require.NoError(t, err, "linear values outside the histogram range are clamped, not rejected")
	assert.InDelta(t, maxLinearMilli/1000.0, st.LinearMax, maxLinearMilli/1000.0*0.01)
}

func hdr2x2(a, b, c, d emath.Vec3) *hdr.RGB {
	img := solidHDR(2, 2, emath.Vec3{})
	setVec(img, 0, 0, a)
	setVec(img, 1, 0, b)
	setVec(img, 0, 1, c)
	setVec(img, 1, 1, d)
	return img
}

func TestResize(t *testing.T) {
	src := solidNRGBA(10, 4, color.NRGBA{255, 255, 255, 255})
	assert.Same(t, src, Resize(src, 0))
	assert.Same(t, src, Resize(src, 10))

	out := Resize(src, 5)
	assert.Equal(t, image.Rect(0, 0, 5, 2), out.Bounds())
}

func TestWritePNG(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "x.png")
	require.NoError(t, WritePNG(solidNRGBA(3, 3, color.NRGBA{255, 255, 255, 255}), filename))

	f := Composite(nil, []*Layer{whiteLayer(t, solidHDR(2, 2, emath.Splat(1)))}, NewRenderState())
	hdrFile := filepath.Join(t.TempDir(), "x.hdr")
	require.NoError(t, WriteFile(hdrFile, f.WriteToHDR))

	buf := bytes.Buffer{}
	require.NoError(t, png.Encode(&buf, f.ToLDR()))
	assert.NotZero(t, buf.Len())
}
