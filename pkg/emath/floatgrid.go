package emath

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
)

// A FloatGrid is a grid of floats, with some operations. We use it to
// hold a single channel pulled out of an image (e.g. the red channel of
// a light mask).
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	if w <= 0 || h <= 0 {
		return FloatGrid{}
	}
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFromImage samples one value per pixel of img, via f. The
// grid is in image-relative coords, so (0,0) is img.Bounds().Min.
func NewFloatGridFromImage(img image.Image, f func(color.Color) float64) FloatGrid {
	b := img.Bounds()
	fg := NewFloatGrid(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			fg.Set(x, y, f(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return fg
}

func (fg *FloatGrid) Set(x, y int, v float64) { fg.values[fg.stride*y+x] = v }
func (fg *FloatGrid) Get(x, y int) float64    { return fg.values[fg.stride*y+x] }
func (fg *FloatGrid) Dx() int                 { return fg.stride }
func (fg *FloatGrid) Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

// CentroidAbove returns the mean (x,y) pixel coordinate of all cells
// whose value is strictly greater than threshold, and how many cells
// that was. If n==0, x and y are meaningless.
func (fg *FloatGrid) CentroidAbove(threshold float64) (x, y float64, n int) {
	sumX, sumY := 0.0, 0.0
	for j := 0; j < fg.Dy(); j++ {
		for i := 0; i < fg.Dx(); i++ {
			if fg.Get(i, j) > threshold {
				sumX += float64(i)
				sumY += float64(j)
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	return sumX / float64(n), sumY / float64(n), n
}

func (fg *FloatGrid) MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min

	for i := 0; i < len(fg.values); i++ {
		if fg.values[i] > max {
			max = fg.values[i]
		}
		if fg.values[i] < min {
			min = fg.values[i]
		}
	}
	return min, max
}

// ToImg saves a simple grayscale, stretched over the range of values in
// the grid, with a title drawn in the top left.
func (fg *FloatGrid) ToImg(title, filename string) error {
	min, max := fg.MinMax()
	span := max - min
	if span <= 0 {
		span = 1
	}

	img := image.NewRGBA64(image.Rectangle{Max: image.Point{fg.Dx(), fg.Dy()}})
	for x := 0; x < fg.Dx(); x++ {
		for y := 0; y < fg.Dy(); y++ {
			gray := uint16(Clamp01((fg.Get(x, y)-min)/span) * 65535.0)
			img.Set(x, y, color.RGBA64{gray, gray, gray, 0xFFFF})
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 0.5, 0)
	dc.DrawString(title, 10, 20)
	return dc.SavePNG(filename)
}
