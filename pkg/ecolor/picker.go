package ecolor

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/olat-relight/pkg/emath"
)

const White = "#ffffff"

// ParsePickerColor turns a color picker value ("#rrggbb") into a tint.
// Pickers hand us sRGB-encoded values, but tints multiply linear light,
// so the transfer curve is removed.
func ParsePickerColor(hex string) (emath.Vec3, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return emath.Vec3{}, fmt.Errorf("picker color %q: %w", hex, err)
	}
	r, g, b := c.LinearRgb()
	return emath.Vec3{r, g, b}, nil
}
