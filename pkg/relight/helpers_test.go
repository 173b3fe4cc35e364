package relight

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/abworrall/olat-relight/pkg/emath"
)

func solidHDR(w, h int, v emath.Vec3) *hdr.RGB {
	img := hdr.NewRGB(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			setVec(img, x, y, v)
		}
	}
	return img
}

func encodeRGBE(t *testing.T, img hdr.Image) []byte {
	t.Helper()
	buf := bytes.Buffer{}
	require.NoError(t, rgbe.Encode(&buf, img))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := bytes.Buffer{}
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// encodeTIFF16 is a w*h 16 bit gray TIFF, as RGB.
func encodeTIFF16(t *testing.T, w, h int, v uint16) []byte {
	t.Helper()
	img := image.NewNRGBA64(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{v, v, v, 0xFFFF})
		}
	}
	buf := bytes.Buffer{}
	require.NoError(t, tiff.Encode(&buf, img, nil))
	return buf.Bytes()
}

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// maskWithPixel is black apart from one bright pixel.
func maskWithPixel(w, h, x, y int) *image.NRGBA {
	img := solidNRGBA(w, h, color.NRGBA{A: 0xFF})
	img.SetNRGBA(x, y, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	return img
}

type testScene struct {
	name   string
	bg     string
	olats  []string
	masks  []string
	input  string
	noOurs bool
}

func manifestYAML(scenes ...testScene) string {
	str := "scenes:\n"
	for _, s := range scenes {
		str += fmt.Sprintf("  %s:\n", s.name)
		if s.input != "" {
			str += fmt.Sprintf("    input: %s\n", s.input)
		}
		if s.noOurs {
			continue
		}
		str += "    ours:\n"
		if s.bg != "" {
			str += fmt.Sprintf("      bg: %s\n", s.bg)
		}
		str += "      olat:\n"
		for _, p := range s.olats {
			str += fmt.Sprintf("        - %s\n", p)
		}
		if len(s.masks) > 0 {
			str += "      mask:\n"
			for _, p := range s.masks {
				str += fmt.Sprintf("        - %q\n", p)
			}
		}
	}
	return str
}

// demoFS has two scenes of 4x2 pixels:
//   - "kitchen": png background, 10 rgbe OLATs; olat_00 has a mask lit at
//     (0,0), olat_01 an unlit mask, the rest none.
//   - "porch": its background, one OLAT and one mask are missing.
func demoFS(t *testing.T) (fstest.MapFS, *Manifest) {
	t.Helper()
	fsys := fstest.MapFS{
		"demo/kitchen/bg.png":      {Data: encodePNG(t, solidNRGBA(4, 2, color.NRGBA{128, 128, 128, 255}))},
		"demo/kitchen/mask_00.png": {Data: encodePNG(t, maskWithPixel(4, 2, 0, 0))},
		"demo/kitchen/mask_01.png": {Data: encodePNG(t, solidNRGBA(4, 2, color.NRGBA{R: 20, A: 255}))},
		"demo/porch/olat_00.hdr":   {Data: encodeRGBE(t, solidHDR(6, 3, emath.Vec3{0.5, 0.5, 0.5}))},
	}

	kitchen := testScene{name: "kitchen", bg: "kitchen/bg.png", input: "inputs/kitchen.jpg"}
	for i := 0; i < 10; i++ {
		p := fmt.Sprintf("kitchen/olat_%02d.hdr", i)
		fsys["demo/"+p] = &fstest.MapFile{Data: encodeRGBE(t, solidHDR(4, 2, emath.Splat(0.25)))}
		kitchen.olats = append(kitchen.olats, p)
	}
	kitchen.masks = []string{"kitchen/mask_00.png", "kitchen/mask_01.png"}

	porch := testScene{
		name:  "porch",
		bg:    "porch/bg.png",
		olats: []string{"porch/olat_00.hdr", "porch/olat_01.hdr"},
		masks: []string{"porch/mask_00.png"},
	}

	m, err := ParseManifest([]byte(manifestYAML(kitchen, porch)))
	require.NoError(t, err)
	return fsys, m
}

func testConfig() Config {
	cfg := NewConfig()
	cfg.DataRoot = "demo"
	cfg.Workers = 2
	return cfg
}

func newTestLoader(t *testing.T, w io.Writer) *Loader {
	t.Helper()
	fsys, m := demoFS(t)
	ld, err := NewLoader(FSSource{FS: fsys}, m, testConfig(), zerolog.New(w))
	require.NoError(t, err)
	return ld
}

// gateSource holds up any asset whose name has the prefix until the gate
// is closed, or the load is cancelled.
type gateSource struct {
	Source
	prefix string
	gate   chan struct{}
}

func (g gateSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if strings.Contains(name, g.prefix) {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.Source.Open(ctx, name)
}
