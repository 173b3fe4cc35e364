package relight

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/emath"
)

// A ColorMode says whether a layer's tint comes from a color
// temperature, or straight from a color picker. The parameter for the
// inactive mode is kept, so flipping back and forth loses nothing.
type ColorMode int

const (
	ColorModeTemperature ColorMode = iota
	ColorModeDirectRGB
)

const (
	DefaultTemperature = 6500.0

	// The temperature control's range. BlackbodyToRGB itself accepts a wider range.
	MinTemperature = 2000.0
	MaxTemperature = 12000.0
)

func (m ColorMode) String() string {
	switch m {
	case ColorModeTemperature:
		return "temperature"
	case ColorModeDirectRGB:
		return "rgb"
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "temperature", "temp", "kelvin":
		return ColorModeTemperature, nil
	case "rgb", "picker":
		return ColorModeDirectRGB, nil
	}
	return ColorModeTemperature, fmt.Errorf("color mode %q not recognized, wanted temperature|rgb", s)
}

// Centroid is a position in normalized image coords; (0,0) is top left.
type Centroid struct {
	X, Y float64
}

var ImageCenter = Centroid{0.5, 0.5}

func (c Centroid) String() string { return fmt.Sprintf("(%.4f, %.4f)", c.X, c.Y) }

// A Layer is one OLAT: an image of the scene lit by a single light, plus
// the controls for how much of that light goes into the composite.
//
// The controls are unexported so that the derived fields (intensity and
// tint) can never drift from the values they are derived from.
type Layer struct {
	Label        string
	LoadFilename string
	Image        hdr.Image   // Linear light. Never nil for a loaded layer
	Mask         image.Image // Optional, red channel marks where this light lands
	Centroid                 // Of the mask; ImageCenter when there is no mask

	enabled     bool
	ev          ExposureValue
	colorMode   ColorMode
	temperature float64
	pickerColor string
	pickerTint  emath.Vec3
	tint        emath.Vec3
}

// NewLayer returns a layer with default controls: enabled, EV 0, 6500K.
func NewLayer(filename string, img hdr.Image, mask image.Image) *Layer {
	l := &Layer{
		Label:        LabelFor(filename),
		LoadFilename: filename,
		Image:        img,
		Mask:         mask,
		Centroid:     MaskCentroid(mask),
	}
	l.Reset()
	return l
}

// LabelFor derives a layer label from its file name: "a/b/olat_03.exr" is "olat_03".
func LabelFor(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (l *Layer) String() string {
	return fmt.Sprintf("%s: enabled=%v, %s, %s, tint%s, centroid%s",
		l.Label, l.enabled, l.ev, l.colorDesc(), l.tint, l.Centroid)
}

func (l *Layer) colorDesc() string {
	if l.colorMode == ColorModeTemperature {
		return fmt.Sprintf("%.0fK", l.temperature)
	}
	return l.pickerColor
}

// Reset puts all the controls back to their defaults.
func (l *Layer) Reset() {
	l.enabled = true
	l.ev = 0
	l.colorMode = ColorModeTemperature
	l.temperature = DefaultTemperature
	l.pickerColor = ecolor.White
	l.pickerTint = emath.Splat(1)
	l.updateTint()
}

func (l *Layer) Enabled() bool        { return l.enabled }
func (l *Layer) SetEnabled(b bool)    { l.enabled = b }
func (l *Layer) Toggle()              { l.enabled = !l.enabled }
func (l *Layer) EV() ExposureValue    { return l.ev }
func (l *Layer) SetEV(ev float64)     { l.ev = NewExposureValue(ev) }
func (l *Layer) Intensity() float64   { return l.ev.Intensity() }
func (l *Layer) ColorMode() ColorMode { return l.colorMode }
func (l *Layer) Temperature() float64 { return l.temperature }
func (l *Layer) PickerColor() string  { return l.pickerColor }
func (l *Layer) Tint() emath.Vec3     { return l.tint }
func (l *Layer) HasMask() bool        { return l.Mask != nil }

func (l *Layer) SetColorMode(m ColorMode) {
	l.colorMode = m
	l.updateTint()
}

// SetTemperature clamps to the control's range. The tint only changes
// if the layer is in temperature mode.
func (l *Layer) SetTemperature(kelvin float64) {
	l.temperature = emath.Clamp(kelvin, MinTemperature, MaxTemperature)
	l.updateTint()
}

// SetPickerColor takes "#rrggbb". On error nothing changes.
func (l *Layer) SetPickerColor(hex string) error {
	tint, err := ecolor.ParsePickerColor(hex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadColor, err)
	}
	l.pickerColor = hex
	l.pickerTint = tint
	l.updateTint()
	return nil
}

// Gain is what each linear sample of this layer gets multiplied by in the
// composite; zero when disabled.
func (l *Layer) Gain() emath.Vec3 {
	if !l.enabled {
		return emath.Vec3{}
	}
	return l.tint.Scale(l.Intensity())
}

func (l *Layer) updateTint() {
	switch l.colorMode {
	case ColorModeDirectRGB:
		l.tint = l.pickerTint
	default:
		l.tint = ecolor.BlackbodyToRGB(l.temperature)
	}
}
