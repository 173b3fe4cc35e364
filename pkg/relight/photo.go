package relight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// PhotoInfo is what the EXIF says about a scene's original input photo.
// Any tag that is missing is left zero.
type PhotoInfo struct {
	Path         string
	Camera       string
	Taken        time.Time
	ISO          int64
	FNumber      float64
	ExposureTime string // As a fraction, e.g. "1/2000"
}

func (pi PhotoInfo) String() string {
	str := pi.Path
	if pi.Camera != "" {
		str += fmt.Sprintf(", %s", pi.Camera)
	}
	if !pi.Taken.IsZero() {
		str += fmt.Sprintf(", %s", pi.Taken.Format(time.DateTime))
	}
	if pi.ExposureTime != "" {
		str += fmt.Sprintf(", %ss f/%.1f ISO%d", pi.ExposureTime, pi.FNumber, pi.ISO)
	}
	return str
}

// PhotoInfo reads the EXIF block of a scene's input photo.
func (ld *Loader) PhotoInfo(ctx context.Context, name string) (PhotoInfo, error) {
	_, input, err := ld.manifest.Assets(name, ld.cfg.DataRoot)
	if err != nil {
		return PhotoInfo{}, err
	}
	pi := PhotoInfo{Path: input}
	if input == "" {
		return pi, fmt.Errorf("scene %q has no input photo", name)
	}

	rc, err := ld.src.Open(ctx, input)
	if err != nil {
		return pi, err
	}
	defer rc.Close()

	ex, err := exif.Decode(rc)
	if err != nil {
		return pi, fmt.Errorf("exif parsing '%s': %w", input, err)
	}

	if tag, err := ex.Get(exif.Model); err == nil {
		if val, err := tag.StringVal(); err == nil {
			pi.Camera = strings.TrimSpace(val)
		}
	}
	if t, err := ex.DateTime(); err == nil {
		pi.Taken = t
	}
	if tag, err := ex.Get(exif.ISOSpeedRatings); err == nil {
		if val, err := tag.Int64(0); err == nil {
			pi.ISO = val
		}
	}
	if tag, err := ex.Get(exif.FNumber); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 {
			pi.FNumber = float64(num) / float64(denom)
		}
	}
	if tag, err := ex.Get(exif.ExposureTime); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil {
			pi.ExposureTime = fmt.Sprintf("%d/%d", num, denom)
		}
	}

	return pi, nil
}
