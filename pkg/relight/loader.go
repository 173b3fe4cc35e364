package relight

import (
	"context"
	"errors"
	"fmt"
	"image"

	lru "github.com/hashicorp/golang-lru"
	"github.com/mdouchement/hdr"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type WarningKind int

const (
	WarnTruncated WarningKind = iota // More than MaxLayers OLATs listed
	WarnBackground
	WarnLayer
	WarnMask
)

func (k WarningKind) String() string {
	switch k {
	case WarnTruncated:
		return "truncated"
	case WarnBackground:
		return "background"
	case WarnLayer:
		return "layer"
	case WarnMask:
		return "mask"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// A Warning is a non-fatal problem found while loading a scene. They
// are logged as well as returned.
type Warning struct {
	Kind WarningKind
	Path string
	Err  error
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %v", w.Kind, w.Err)
	}
	return fmt.Sprintf("%s %s: %v", w.Kind, w.Path, w.Err)
}

var errNoBackground = errors.New("scene lists no background, compositing over black")

// The Loader fetches and decodes scene assets. Decoded images are kept
// in an LRU, so flipping back to a recent scene is cheap. A Loader is
// safe to use from several goroutines.
type Loader struct {
	src      Source
	manifest *Manifest
	cfg      Config
	log      zerolog.Logger
	cache    *lru.Cache
}

func NewLoader(src Source, m *Manifest, cfg Config, log zerolog.Logger) (*Loader, error) {
	cache, err := lru.New(max(cfg.CacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("loader cache: %w", err)
	}
	return &Loader{src: src, manifest: m, cfg: cfg, log: log, cache: cache}, nil
}

func (ld *Loader) Manifest() *Manifest { return ld.manifest }

// LoadScene fetches and decodes everything for the named scene. Only an
// unknown scene, a broken manifest entry or a cancelled ctx are errors;
// individual assets that fail come back as Warnings.
func (ld *Loader) LoadScene(ctx context.Context, name string) (*Scene, []Warning, error) {
	assets, input, err := ld.manifest.Assets(name, ld.cfg.DataRoot)
	if err != nil {
		return nil, nil, err
	}

	warnings := []Warning{}
	warn := func(w Warning) {
		ld.log.Warn().Str("scene", name).Str("kind", w.Kind.String()).Str("path", w.Path).Err(w.Err).Msg("scene load")
		warnings = append(warnings, w)
	}

	if n := len(assets.Olat); n > MaxLayers {
		warn(Warning{Kind: WarnTruncated, Err: fmt.Errorf("%d OLATs listed, using the first %d", n, MaxLayers)})
		assets.Olat = assets.Olat[:MaxLayers]
	}

	// Each goroutine writes only its own slot.
	var bgImg hdr.Image
	var bgErr error
	layerImgs := make([]hdr.Image, len(assets.Olat))
	layerErrs := make([]error, len(assets.Olat))
	masks := make([]image.Image, len(assets.Olat))
	maskErrs := make([]error, len(assets.Olat))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(ld.cfg.Workers, 2))

	if assets.Bg != "" {
		g.Go(func() error {
			bgImg, bgErr = ld.loadHDR(gctx, assets.Bg, assetBackground)
			return gctx.Err()
		})
	} else {
		bgErr = errNoBackground
	}

	for i, p := range assets.Olat {
		g.Go(func() error {
			layerImgs[i], layerErrs[i] = ld.loadHDR(gctx, p, assetLayer)
			return gctx.Err()
		})
		if i < len(assets.Mask) && assets.Mask[i] != "" {
			mp := assets.Mask[i]
			g.Go(func() error {
				masks[i], maskErrs[i] = ld.loadMask(gctx, mp)
				return gctx.Err()
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load scene %q: %w", name, err)
	}

	s := &Scene{
		Name:      name,
		InputPath: input,
		Background: Background{
			LoadFilename:   assets.Bg,
			Image:          bgImg,
			AmbientEnabled: ld.cfg.AmbientEnabled,
		},
	}
	s.Background.SetAmbientScale(ld.cfg.AmbientScale)
	if bgErr != nil {
		warn(Warning{Kind: WarnBackground, Path: assets.Bg, Err: bgErr})
		s.Background.Image = nil
	}

	for i, p := range assets.Olat {
		if layerErrs[i] != nil {
			warn(Warning{Kind: WarnLayer, Path: p, Err: layerErrs[i]})
			continue
		}
		if maskErrs[i] != nil {
			warn(Warning{Kind: WarnMask, Path: assets.Mask[i], Err: maskErrs[i]})
			masks[i] = nil
		}
		s.Layers = append(s.Layers, NewLayer(p, layerImgs[i], masks[i]))
	}

	ld.log.Info().Str("scene", name).Int("layers", len(s.Layers)).Int("warnings", len(warnings)).
		Str("bounds", s.Bounds().String()).Msg("scene loaded")
	if ld.cfg.Verbosity > 1 {
		ld.log.Debug().Msgf("%s", s)
	}

	return s, warnings, nil
}

func (ld *Loader) loadHDR(ctx context.Context, p string, kind assetKind) (hdr.Image, error) {
	key := kind.String() + ":" + p
	if v, ok := ld.cache.Get(key); ok {
		return v.(hdr.Image), nil
	}

	rc, err := ld.src.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := decodeHDR(p, rc, kind)
	if err != nil {
		return nil, err
	}
	ld.cache.Add(key, img)
	return img, nil
}

func (ld *Loader) loadMask(ctx context.Context, p string) (image.Image, error) {
	key := assetMask.String() + ":" + p
	if v, ok := ld.cache.Get(key); ok {
		return v.(image.Image), nil
	}

	rc, err := ld.src.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := decodeLDR(p, rc)
	if err != nil {
		return nil, err
	}
	ld.cache.Add(key, img)
	return img, nil
}
