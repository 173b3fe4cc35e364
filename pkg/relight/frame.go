package relight

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/emath"
)

// A Frame is one composite. It implements hdr.Image over the display
// encoded result; Linear keeps the pre-tonemap sum for HDR export.
type Frame struct {
	Linear   *hdr.RGB
	Display  *hdr.RGB
	ToneMode ecolor.ToneMode
}

// Implement image.Image
func (f *Frame) ColorModel() color.Model { return hdrcolor.RGBModel }
func (f *Frame) Bounds() image.Rectangle { return f.Display.Bounds() }
func (f *Frame) At(x, y int) color.Color { return f.HDRAt(x, y) }

// Implement hdr.Image
func (f *Frame) HDRAt(x, y int) hdrcolor.Color { return f.Display.HDRAt(x, y) }
func (f *Frame) Size() int                     { return f.Bounds().Dx() * f.Bounds().Dy() }

func (f *Frame) String() string {
	return fmt.Sprintf("Frame %s, tonemode=%s", f.Bounds(), f.ToneMode)
}

// DisplayAt is the display encoded value at (x,y), as a Vec3.
func (f *Frame) DisplayAt(x, y int) emath.Vec3 { return hdrVec(f.Display, x, y) }

// LinearAt is the pre-tonemap linear sum at (x,y).
func (f *Frame) LinearAt(x, y int) emath.Vec3 { return hdrVec(f.Linear, x, y) }

// ToLDR quantizes the display values to 8 bits, fully opaque.
func (f *Frame) ToLDR() *image.NRGBA {
	b := f.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := f.DisplayAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{quantize8(v[0]), quantize8(v[1]), quantize8(v[2]), 0xFF})
		}
	}
	return out
}

// WriteToHDR outputs the linear sum as a Radiance RGBE file. You can
// load this into photoshop or other HDR tools.
func (f *Frame) WriteToHDR(w io.Writer) error {
	if err := rgbe.Encode(w, f.Linear); err != nil {
		return fmt.Errorf("frame hdr encode: %w", err)
	}
	return nil
}

func quantize8(f float64) uint8 {
	return uint8(math.Round(emath.Clamp01(f) * 255.0))
}

func hdrVec(img hdr.Image, x, y int) emath.Vec3 {
	r, g, b, _ := img.HDRAt(x, y).HDRRGBA()
	return emath.Vec3{r, g, b}
}

func setVec(img *hdr.RGB, x, y int, v emath.Vec3) {
	img.Set(x, y, hdrcolor.RGB{R: v[0], G: v[1], B: v[2]})
}
