package relight

import (
	"fmt"
	"image"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/tmo"
)

// The preview operators are global tonemappers from mdouchement/hdr, for
// offline looks at the linear sum of a frame. They have no inverse.
var PreviewOperators = []string{"drago03", "durand", "icam06", "linear", "reinhard05"}

func ListPreviewOperators() string {
	return fmt.Sprintf("%v", PreviewOperators)
}

func newPreviewOperator(name string, img hdr.Image) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		return tmo.NewDefaultDrago03(img), nil

	case "durand":
		return tmo.NewDefaultDurand(img), nil

	case "icam06":
		op := tmo.NewDefaultICam06(img)
		op.MaxClipping = 0.999 // Keep the highlights of hard lights
		return op, nil

	case "linear":
		return tmo.NewLinear(img), nil

	case "reinhard05":
		return tmo.NewDefaultReinhard05(img), nil
	}

	return nil, fmt.Errorf("preview operator %q not recognized, wanted %s", name, ListPreviewOperators())
}

// Preview tonemaps the frame's linear sum with the named operator.
func (f *Frame) Preview(name string) (image.Image, error) {
	op, err := newPreviewOperator(name, f.Linear)
	if err != nil {
		return nil, err
	}
	return op.Perform(), nil
}
