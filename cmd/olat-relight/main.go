package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abworrall/olat-relight/pkg/relight"
)

var (
	fConfig    string
	fManifest  string
	fDataRoot  string
	fWorkers   int
	fVerbosity int
)

var rootCmd = &cobra.Command{
	Use:   "olat-relight",
	Short: "Relight a scene by compositing one-light-at-a-time captures over an ambient background",

	SilenceUsage: true,
}

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List the scenes in the manifest",
	Args:  cobra.NoArgs,
	RunE:  runScenes,
}

var centroidsCmd = &cobra.Command{
	Use:   "centroids [scene]",
	Short: "Print each layer's mask centroid, where its overlay button goes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCentroids,
}

var (
	fInfo      bool
	fDumpMasks bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&fConfig, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&fManifest, "manifest", "", "scene manifest (overrides config)")
	rootCmd.PersistentFlags().StringVar(&fDataRoot, "dataroot", "", "asset paths are relative to this (overrides config)")
	rootCmd.PersistentFlags().IntVar(&fWorkers, "workers", 0, "goroutines for decoding and compositing (overrides config)")
	rootCmd.PersistentFlags().CountVarP(&fVerbosity, "verbose", "v", "how verbose to get")

	scenesCmd.Flags().BoolVar(&fInfo, "info", false, "also show the EXIF of each scene's input photo")
	centroidsCmd.Flags().BoolVar(&fDumpMasks, "dump-masks", false, "write each mask's red channel out as mask-NN.png")

	rootCmd.AddCommand(scenesCmd)
	rootCmd.AddCommand(centroidsCmd)
	rootCmd.AddCommand(renderCmd)
}

// setup loads the config, applies the flags over it, and reads the manifest.
func setup(cmd *cobra.Command) (relight.Config, *relight.Loader, error) {
	cfg := relight.NewConfig()
	if fConfig != "" {
		c, err := relight.LoadConfig(fConfig)
		if err != nil {
			return cfg, nil, err
		}
		cfg = c
		log.Debug().Str("config", fConfig).Msg("loaded base configuration")
	}

	if fManifest != "" {
		cfg.ManifestPath = fManifest
	}
	if fDataRoot != "" {
		cfg.DataRoot = fDataRoot
	}
	if fWorkers > 0 {
		cfg.Workers = fWorkers
	}
	if fVerbosity > cfg.Verbosity {
		cfg.Verbosity = fVerbosity
	}
	applyRenderFlags(cmd, &cfg)
	if err := cfg.Finalize(); err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}

	setLogLevel(cfg.Verbosity)
	if cfg.Verbosity > 0 {
		log.Info().Msgf("Final configuration:-\n\n%s", cfg.AsYaml())
	}

	src := relight.DirSource{}
	b, err := relight.ReadAll(cmd.Context(), src, cfg.ManifestPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("manifest: %w", err)
	}
	m, err := relight.ParseManifest(b)
	if err != nil {
		return cfg, nil, err
	}

	ld, err := relight.NewLoader(src, m, cfg, log.Logger)
	return cfg, ld, err
}

func setLogLevel(verbosity int) {
	switch {
	case verbosity >= 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case verbosity == 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// sceneArg is the named scene, or the manifest's default.
func sceneArg(ld *relight.Loader, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	name, ok := ld.Manifest().DefaultScene()
	if !ok {
		return "", fmt.Errorf("manifest lists no scenes")
	}
	return name, nil
}

// loadScene selects a scene in a fresh session and waits for it.
func loadScene(cmd *cobra.Command, cfg relight.Config, ld *relight.Loader, name string) (*relight.Session, error) {
	sess := relight.NewSession(cmd.Context(), ld, cfg, log.Logger)
	sess.SelectScene(name)
	if _, err := sess.WaitScene(cmd.Context()); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func runScenes(cmd *cobra.Command, args []string) error {
	_, ld, err := setup(cmd)
	if err != nil {
		return err
	}

	def, _ := ld.Manifest().DefaultScene()
	for _, name := range ld.Manifest().SceneNames() {
		marker := " "
		if name == def {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)

		if fInfo {
			pi, err := ld.PhotoInfo(cmd.Context(), name)
			if err != nil {
				log.Warn().Err(err).Str("scene", name).Msg("no photo info")
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", pi)
		}
	}
	return nil
}

func runCentroids(cmd *cobra.Command, args []string) error {
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

	for i, l := range sess.Scene().Layers {
		mask := "no mask"
		if l.HasMask() {
			mask = fmt.Sprintf("m%02d", i)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d %-16s %-8s %s\n", i, l.Label, mask, l.Centroid)

		if fDumpMasks && l.HasMask() {
			fg := relight.MaskGrid(l.Mask)
			filename := fmt.Sprintf("mask-%02d.png", i)
			if err := fg.ToImg(fmt.Sprintf("%s %s %s", mask, l.Label, l.Centroid), filename); err != nil {
				return err
			}
			log.Info().Str("file", filename).Msg("wrote mask")
		}
	}
	return nil
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("olat-relight failed")
		os.Exit(1)
	}
}
