package relight

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
)

// OverlayButtonRadius is in output pixels.
const OverlayButtonRadius = 14.0

var AmbientButtonPos = Centroid{0.95, 0.95}

// An OverlayButton sits over the footprint of a light, and toggles it.
type OverlayButton struct {
	Label  string
	Layer  int // -1 for the ambient button
	Center Centroid
	Active bool
}

func (b OverlayButton) IsAmbient() bool { return b.Layer < 0 }

// OverlayButtons has one button per masked layer, labelled by layer
// index, then the ambient button. Layers without a mask get no button.
func (s *Scene) OverlayButtons() []OverlayButton {
	buttons := []OverlayButton{}
	for i, l := range s.Layers {
		if !l.HasMask() {
			continue
		}
		buttons = append(buttons, OverlayButton{
			Label:  fmt.Sprintf("m%02d", i),
			Layer:  i,
			Center: l.Centroid,
			Active: l.Enabled(),
		})
	}
	return append(buttons, OverlayButton{
		Label:  "bg",
		Layer:  -1,
		Center: AmbientButtonPos,
		Active: s.Background.AmbientEnabled,
	})
}

// ButtonAt finds the button under pixel (x,y) of an image with bounds b.
// Buttons drawn later are on top.
func (s *Scene) ButtonAt(b image.Rectangle, x, y float64) (OverlayButton, bool) {
	buttons := s.OverlayButtons()
	for i := len(buttons) - 1; i >= 0; i-- {
		cx, cy := buttonCenter(b, buttons[i].Center)
		if math.Hypot(x-cx, y-cy) <= OverlayButtonRadius {
			return buttons[i], true
		}
	}
	return OverlayButton{}, false
}

// DrawOverlay returns a copy of img with the scene's buttons drawn on.
// Inactive buttons are dimmed.
func DrawOverlay(img image.Image, s *Scene) image.Image {
	dc := gg.NewContextForImage(img)
	b := img.Bounds()

	for _, btn := range s.OverlayButtons() {
		x, y := btn.Center.X*float64(b.Dx()), btn.Center.Y*float64(b.Dy()) // gg coords start at zero

		alpha := 0.8
		if !btn.Active {
			alpha = 0.25
		}
		if btn.IsAmbient() {
			dc.SetRGBA(1, 140.0/255.0, 0, alpha)
		} else {
			dc.SetRGBA(0, 0, 0, alpha*0.75)
		}
		dc.DrawCircle(x, y, OverlayButtonRadius)
		dc.Fill()

		dc.SetRGBA(1, 1, 1, alpha+0.2)
		dc.DrawCircle(x, y, OverlayButtonRadius)
		dc.Stroke()
		dc.DrawStringAnchored(btn.Label, x, y, 0.5, 0.35)
	}

	return dc.Image()
}

func buttonCenter(b image.Rectangle, c Centroid) (float64, float64) {
	return float64(b.Min.X) + c.X*float64(b.Dx()), float64(b.Min.Y) + c.Y*float64(b.Dy())
}

// Click toggles whatever is under pixel (x,y) of the current frame, as
// the overlay buttons do. It reports whether anything was hit.
func (s *Session) Click(x, y float64) bool {
	if s.scene == nil {
		return false
	}
	btn, ok := s.scene.ButtonAt(s.scene.Bounds(), x, y)
	if !ok {
		return false
	}
	if btn.IsAmbient() {
		s.ToggleAmbient()
	} else {
		s.ToggleLayer(btn.Layer)
	}
	return true
}
