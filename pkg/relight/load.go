package relight

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mrjoshuak/go-openexr/exr"
	"golang.org/x/image/tiff"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/emath"
)

// What a decoded asset is for; it decides how LDR pixels are interpreted.
type assetKind int

const (
	assetBackground assetKind = iota // Display encoded, kept as-is
	assetLayer                       // Linear light; LDR files get their sRGB encoding removed
	assetMask                        // Raw 8-bit image, only the red channel matters
)

func (k assetKind) String() string {
	switch k {
	case assetBackground:
		return "background"
	case assetLayer:
		return "layer"
	case assetMask:
		return "mask"
	}
	return fmt.Sprintf("assetKind(%d)", int(k))
}

// decodeHDR decodes a background or layer image, picking the decoder
// from the file extension.
func decodeHDR(filename string, r io.Reader, kind assetKind) (hdr.Image, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hdr", ".pic", ".rgbe":
		img, err := rgbe.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("rgbe decode %s: %w", filename, err)
		}
		hdrImg, ok := img.(hdr.Image)
		if !ok {
			return nil, fmt.Errorf("rgbe decode %s: got %T, not an hdr.Image", filename, img)
		}
		return hdrImg, nil

	case ".exr":
		return decodeEXR(filename, r)
	}

	img, err := decodeLDR(filename, r)
	if err != nil {
		return nil, err
	}
	return ldrToHDR(img, kind == assetLayer), nil
}

func decodeLDR(filename string, r io.Reader) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		img, err := tiff.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("tiff decode %s: %w", filename, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	return img, nil
}

// ldrToHDR widens an 8 or 16 bit image to floats in [0,1]. If linearize
// is set, the sRGB transfer function is removed too.
func ldrToHDR(img image.Image, linearize bool) *hdr.RGB {
	b := img.Bounds()
	out := hdr.NewRGB(image.Rectangle{Max: image.Point{b.Dx(), b.Dy()}})
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			v := emath.Vec3{float64(c.R), float64(c.G), float64(c.B)}.Scale(1.0 / 65535.0)
			if linearize {
				v = ecolor.SRGBToLinearRGB(v)
			}
			setVec(out, x, y, v)
		}
	}
	return out
}

// decodeEXR reads the whole stream into memory; EXR needs random
// access. Alpha is dropped.
func decodeEXR(filename string, r io.Reader) (hdr.Image, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("exr read %s: %w", filename, err)
	}

	f, err := exr.OpenReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("exr open %s: %w", filename, err)
	}
	defer f.Close()
	if f.Header(0) == nil {
		return nil, fmt.Errorf("exr %s: no header found", filename)
	}

	rgba, err := exr.NewRGBAInputFile(f)
	if err != nil {
		return nil, fmt.Errorf("exr %s: %w", filename, err)
	}
	img, err := rgba.ReadRGBA()
	if err != nil {
		return nil, fmt.Errorf("exr read %s: %w", filename, err)
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := hdr.NewRGB(image.Rectangle{Max: image.Point{w, h}})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.RGBA(x, y)
			setVec(out, x, y, emath.Vec3{float64(r), float64(g), float64(b)})
		}
	}
	return out, nil
}
