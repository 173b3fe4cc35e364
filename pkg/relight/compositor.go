package relight

import (
	"image"
	"math"

	"github.com/mdouchement/hdr"
	"golang.org/x/sync/errgroup"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/emath"
)

// Composite blends the background and layers into a display encoded
// frame. It is a pure function of its arguments, and never fails: a nil
// background composites as black, and layers past MaxLayers are ignored.
//
// Per pixel, the background sample is decoded from sRGB, has the tone
// curve undone, and is scaled by the ambient factor; each enabled layer
// then adds sample*intensity*tint. The sum is tonemapped and re-encoded.
func Composite(bg *Background, layers []*Layer, rs RenderState) *Frame {
	c := newCompositor(bg, layers, rs)
	f := &Frame{
		Linear:   hdr.NewRGB(c.out),
		Display:  hdr.NewRGB(c.out),
		ToneMode: rs.ToneMode,
	}

	c.eachRow(func(y int) {
		for x := c.out.Min.X; x < c.out.Max.X; x++ {
			lin := c.linearAt(x, y)
			setVec(f.Linear, x, y, lin)
			setVec(f.Display, x, y, c.encode(lin))
		}
	})

	return f
}

type compositor struct {
	rs  RenderState
	out image.Rectangle

	bg      hdr.Image
	bgScale float64

	imgs  []hdr.Image
	gains []emath.Vec3
}

func newCompositor(bg *Background, layers []*Layer, rs RenderState) *compositor {
	if len(layers) > MaxLayers {
		layers = layers[:MaxLayers]
	}
	if rs.MaxPoint <= 0 {
		rs.MaxPoint = ecolor.DefaultMaxPoint
	}

	c := compositor{rs: rs, out: compositeBounds(bg, layers)}
	if bg != nil && bg.Image != nil {
		c.bg = bg.Image
		c.bgScale = bg.EffectiveScale()
	}

	// Disabled layers have zero gain, so skip them outright.
	for _, l := range layers {
		if l == nil || l.Image == nil || !l.Enabled() {
			continue
		}
		c.imgs = append(c.imgs, l.Image)
		c.gains = append(c.gains, l.Gain())
	}

	return &c
}

// compositeBounds picks the output size: the background's, else the
// first loaded layer's, else empty.
func compositeBounds(bg *Background, layers []*Layer) image.Rectangle {
	if bg != nil && bg.Image != nil {
		b := bg.Image.Bounds()
		return image.Rectangle{Max: image.Point{b.Dx(), b.Dy()}}
	}
	for _, l := range layers {
		if l != nil && l.Image != nil {
			b := l.Image.Bounds()
			return image.Rectangle{Max: image.Point{b.Dx(), b.Dy()}}
		}
	}
	return image.Rectangle{}
}

// linearAt is steps 1 to 4: the scene-linear sum at output pixel (x,y).
func (c *compositor) linearAt(x, y int) emath.Vec3 {
	sum := emath.Vec3{}

	if c.bg != nil && c.bgScale != 0 {
		v := ecolor.SRGBToLinearRGB(c.sample(c.bg, x, y))
		v = c.rs.ToneMode.InverseRGB(v, c.rs.MaxPoint)
		sum = v.Scale(c.bgScale)
	}

	for i, img := range c.imgs {
		sum = sum.Add(c.sample(img, x, y).Mul(c.gains[i]))
	}

	return sum
}

// encode is steps 5 and 6.
func (c *compositor) encode(lin emath.Vec3) emath.Vec3 {
	v := c.rs.ToneMode.ForwardRGB(lin, c.rs.MaxPoint)
	return ecolor.LinearToSRGBRGB(v)
}

// sample does a nearest-neighbour lookup at the same normalized position
// in img, so inputs of a different size from the output still line up.
func (c *compositor) sample(img hdr.Image, x, y int) emath.Vec3 {
	b := img.Bounds()
	if b.Dx() == c.out.Dx() && b.Dy() == c.out.Dy() {
		return hdrVec(img, b.Min.X+x-c.out.Min.X, b.Min.Y+y-c.out.Min.Y)
	}
	sx := scaleCoord(x-c.out.Min.X, c.out.Dx(), b.Dx())
	sy := scaleCoord(y-c.out.Min.Y, c.out.Dy(), b.Dy())
	return hdrVec(img, b.Min.X+sx, b.Min.Y+sy)
}

func scaleCoord(i, from, to int) int {
	u := (float64(i) + 0.5) / float64(from)
	j := int(math.Floor(u * float64(to)))
	if j < 0 {
		return 0
	} else if j >= to {
		return to - 1
	}
	return j
}

// eachRow runs f over every output row, spread across rs.Workers goroutines.
func (c *compositor) eachRow(f func(y int)) {
	if c.rs.Workers <= 1 {
		for y := c.out.Min.Y; y < c.out.Max.Y; y++ {
			f(y)
		}
		return
	}

	g := errgroup.Group{}
	g.SetLimit(c.rs.Workers)
	for y := c.out.Min.Y; y < c.out.Max.Y; y++ {
		g.Go(func() error {
			f(y)
			return nil
		})
	}
	g.Wait()
}
