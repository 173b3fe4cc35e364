package relight

import (
	"errors"
	"fmt"
	"image"

	"github.com/mdouchement/hdr"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/emath"
)

// MaxLayers is how many OLATs a scene can hold. Any more are dropped at load time.
const MaxLayers = 8

const MaxAmbientScale = 3.0

var (
	ErrUnknownScene = errors.New("unknown scene")
	ErrNoScene      = errors.New("no scene loaded")
	ErrNoLayer      = errors.New("no such layer")
	ErrBadColor     = errors.New("bad color")
)

// The Background is the scene under its ambient (non-OLAT) lighting. Its
// pixels are display encoded, possibly with a tone curve baked in.
type Background struct {
	LoadFilename   string
	Image          hdr.Image // nil if it failed to load; composites as black
	AmbientEnabled bool
	AmbientScale   float64
}

// EffectiveScale is what the background radiance is multiplied by.
func (bg *Background) EffectiveScale() float64 {
	if bg == nil || !bg.AmbientEnabled {
		return 0
	}
	return bg.AmbientScale
}

func (bg *Background) SetAmbientScale(s float64) {
	bg.AmbientScale = emath.Clamp(s, 0, MaxAmbientScale)
}

// RenderState holds the settings that survive a scene switch.
type RenderState struct {
	ToneMode ecolor.ToneMode
	MaxPoint float64 // Reinhard white point
	Workers  int
}

func NewRenderState() RenderState {
	return RenderState{ToneMode: ecolor.Reinhard, MaxPoint: ecolor.DefaultMaxPoint, Workers: 1}
}

// A Scene is everything loaded for one manifest entry. It gets replaced
// wholesale on a scene switch, never patched.
type Scene struct {
	Name       string
	InputPath  string // The original photo
	Background Background
	Layers     []*Layer // At most MaxLayers, in manifest order
}

func (s *Scene) String() string {
	str := fmt.Sprintf("Scene %q %s, ambient=%v x%.2f [\n", s.Name, s.Bounds(), s.Background.AmbientEnabled, s.Background.AmbientScale)
	for i, l := range s.Layers {
		str += fmt.Sprintf("  %d %s\n", i, l)
	}
	return str + "]\n"
}

// Layer returns the i'th layer, or ErrNoLayer.
func (s *Scene) Layer(i int) (*Layer, error) {
	if s == nil {
		return nil, ErrNoScene
	}
	if i < 0 || i >= len(s.Layers) {
		return nil, fmt.Errorf("%w: %d (scene has %d)", ErrNoLayer, i, len(s.Layers))
	}
	return s.Layers[i], nil
}

// Bounds of the composite: the background's, or the first layer's if
// there is no background.
func (s *Scene) Bounds() image.Rectangle {
	return compositeBounds(&s.Background, s.Layers)
}

// ResetLayers puts every layer's controls back to the defaults.
func (s *Scene) ResetLayers() {
	for _, l := range s.Layers {
		l.Reset()
	}
}

// ApplyBatchColor sets every layer to the same color mode and value.
func (s *Scene) ApplyBatchColor(mode ColorMode, kelvin float64, hex string) error {
	if mode == ColorModeDirectRGB {
		if _, err := ecolor.ParsePickerColor(hex); err != nil {
			return fmt.Errorf("%w: %v", ErrBadColor, err)
		}
	}
	for _, l := range s.Layers {
		if mode == ColorModeTemperature {
			l.SetTemperature(kelvin)
		} else if err := l.SetPickerColor(hex); err != nil {
			return err
		}
		l.SetColorMode(mode)
	}
	return nil
}

// ApplyBatchExposure sets every layer to the same EV.
func (s *Scene) ApplyBatchExposure(ev float64) {
	for _, l := range s.Layers {
		l.SetEV(ev)
	}
}
