package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abworrall/olat-relight/pkg/ecolor"
	"github.com/abworrall/olat-relight/pkg/relight"
)

var (
	fTonemapper   string
	fAmbient      bool
	fAmbientScale float64
	fEV           float64
	fTemperature  float64
	fColor        string
	fDisable      []int
	fOutput       string
	fHDR          string
	fOverlay      bool
	fWidth        int
	fPreview      string
	fProbe        []int
)

var renderCmd = &cobra.Command{
	Use:   "render [scene]",
	Short: "Composite a scene and write it out as a PNG",
	Long: `Composite a scene and write the result as <scene>_blend.png.

The --ev, --temperature and --color flags act like the "All OLAT"
controls, and apply to every layer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&fTonemapper, "tonemapper", "", "how to tonemap from linear to display: "+ecolor.ListToneModes())
	f.BoolVar(&fAmbient, "ambient", true, "include the ambient background")
	f.Float64Var(&fAmbientScale, "ambientscale", 0.5, "ambient light multiplier, [0,3]")
	f.Float64Var(&fEV, "ev", 0, "exposure for every layer, in stops")
	f.Float64Var(&fTemperature, "temperature", relight.DefaultTemperature, "light color for every layer, in Kelvin")
	f.StringVar(&fColor, "color", "", "light color for every layer, as #rrggbb (overrides --temperature)")
	f.IntSliceVar(&fDisable, "disable", nil, "layer indices to switch off")
	f.StringVarP(&fOutput, "output", "o", "", "output PNG (default <scene>_blend.png)")
	f.StringVar(&fHDR, "hdr", "", "also write the linear composite, before tonemapping, to this .hdr file")
	f.BoolVar(&fOverlay, "overlay", false, "draw the overlay buttons onto the output")
	f.IntVar(&fWidth, "width", 0, "rescale the output to this width")
	f.StringVar(&fPreview, "preview", "", "also write tmo-<op>.png, using a global operator: "+relight.ListPreviewOperators())
	f.IntSliceVar(&fProbe, "probe", nil, "x,y of a pixel to dump the working for")
}

// applyRenderFlags copies over the flags that live in the config.
func applyRenderFlags(cmd *cobra.Command, cfg *relight.Config) {
	flags := cmd.Flags()
	if flags.Changed("tonemapper") {
		cfg.Tonemapper = fTonemapper
	}
	if flags.Changed("ambient") {
		cfg.AmbientEnabled = fAmbient
	}
	if flags.Changed("ambientscale") {
		cfg.AmbientScale = fAmbientScale
	}
	if flags.Changed("width") {
		cfg.OutputWidth = fWidth
	}
	if flags.Changed("output") {
		cfg.OutputFilename = fOutput
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, ld, err := setup(cmd)
	if err != nil {
		return err
	}
	name, err := sceneArg(ld, args)
	if err != nil {
		return err
	}
	sess, err := loadScene(cmd, cfg, ld, name)
	if err != nil {
		return err
	}
	defer sess.Close()

	flags := cmd.Flags()
	if flags.Changed("ev") {
		if err := sess.ApplyBatchExposure(fEV); err != nil {
			return err
		}
	}
	if fColor != "" {
		if err := sess.ApplyBatchColor(relight.ColorModeDirectRGB, fTemperature, fColor); err != nil {
			return err
		}
	} else if flags.Changed("temperature") {
		if err := sess.ApplyBatchColor(relight.ColorModeTemperature, fTemperature, ecolor.White); err != nil {
			return err
		}
	}
	for _, i := range fDisable {
		if err := sess.SetLayerEnabled(i, false); err != nil {
			return err
		}
	}

	if cfg.Verbosity > 0 {
		log.Info().Msgf("%s", sess.Scene())
	}

	frame := sess.Render()
	if cfg.Verbosity > 0 {
		if st, err := relight.ComputeStats(frame); err != nil {
			log.Warn().Err(err).Msg("no frame stats")
		} else {
			log.Info().Msgf("Frame stats: %s", st)
		}
	}

	filename := sess.ExportFilename()
	if fOverlay {
		img := relight.Resize(relight.DrawOverlay(frame.ToLDR(), sess.Scene()), cfg.OutputWidth)
		err = relight.WritePNG(img, filename)
	} else {
		err = relight.WriteFile(filename, sess.Export)
	}
	if err != nil {
		return err
	}
	log.Info().Str("file", filename).Str("bounds", frame.Bounds().String()).Msg("wrote composite")

	if fHDR != "" {
		if err := relight.WriteFile(fHDR, sess.ExportHDR); err != nil {
			return err
		}
		log.Info().Str("file", fHDR).Msg("wrote linear composite")
	}

	if fPreview != "" {
		img, err := frame.Preview(fPreview)
		if err != nil {
			return err
		}
		previewFile := fmt.Sprintf("tmo-%s.png", fPreview)
		if err := relight.WritePNG(img, previewFile); err != nil {
			return err
		}
		log.Info().Str("file", previewFile).Msg("wrote preview")
	}

	if len(fProbe) > 0 {
		if len(fProbe) != 2 {
			return fmt.Errorf("--probe wants x,y, got %v", fProbe)
		}
		s := sess.Scene()
		p, err := relight.ProbePixel(&s.Background, s.Layers, sess.RenderState(), fProbe[0], fProbe[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s", p)
	}

	return nil
}
