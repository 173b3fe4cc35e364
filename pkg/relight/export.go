package relight

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// ExportFilename is the name a download of the current frame gets.
func (s *Session) ExportFilename() string {
	if s.cfg.OutputFilename != "" {
		return s.cfg.OutputFilename
	}
	if s.scene == nil {
		return "blend.png"
	}
	return s.scene.Name + "_blend.png"
}

// Export writes the last rendered frame as a PNG, rendering one first if
// there isn't one yet. If OutputWidth is set the frame is rescaled.
func (s *Session) Export(w io.Writer) error {
	f := s.lastFrame
	if f == nil {
		f = s.Render()
	}
	img := Resize(f.ToLDR(), s.cfg.OutputWidth)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	return nil
}

// ExportHDR writes the linear sum behind the last rendered frame, before
// any tonemapping. It is never rescaled.
func (s *Session) ExportHDR(w io.Writer) error {
	f := s.lastFrame
	if f == nil {
		f = s.Render()
	}
	return f.WriteToHDR(w)
}

// Resize scales img to the given width, keeping the aspect ratio. A width
// of zero, or the image's own width, returns img untouched.
func Resize(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width == b.Dx() || b.Dx() == 0 {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// WriteFile creates filename and hands it to write, e.g. Session.Export.
func WriteFile(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
