package relight

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abworrall/olat-relight/pkg/ecolor"
)

// A LoadResult is what comes back from a SelectScene.
type LoadResult struct {
	Generation uint64
	Name       string
	Scene      *Scene
	Warnings   []Warning
	Err        error
}

// A Session is the interactive state: the current scene, the render
// settings, and any scene load in flight. It is not safe for concurrent
// use; one goroutine (see Run) owns it, and only the loads run elsewhere.
//
// Each SelectScene bumps a generation counter and cancels the previous
// load. A completed load is only applied if it is still the newest, and
// it replaces the whole scene in one go.
type Session struct {
	loader *Loader
	cfg    Config
	log    zerolog.Logger

	rs             RenderState
	ambientEnabled bool
	ambientScale   float64

	scene     *Scene
	dirty     bool
	lastFrame *Frame

	ctx        context.Context
	stop       context.CancelFunc
	generation uint64
	pending    string // Scene name of the newest request, until it lands
	cancelLoad context.CancelFunc
	results    chan LoadResult
}

// NewSession starts with no scene; call SelectScene. Cancelling ctx, or
// calling Close, abandons any load in flight.
func NewSession(ctx context.Context, ld *Loader, cfg Config, log zerolog.Logger) *Session {
	ctx, stop := context.WithCancel(ctx)
	s := &Session{
		loader:         ld,
		cfg:            cfg,
		log:            log,
		rs:             cfg.RenderState(),
		ambientEnabled: cfg.AmbientEnabled,
		ctx:            ctx,
		stop:           stop,
		results:        make(chan LoadResult, MaxLayers),
		dirty:          true,
	}
	s.SetAmbientScale(cfg.AmbientScale)
	return s
}

func (s *Session) Close() { s.stop() }

func (s *Session) Scene() *Scene             { return s.scene }
func (s *Session) RenderState() RenderState  { return s.rs }
func (s *Session) Generation() uint64        { return s.generation }
func (s *Session) Loading() bool             { return s.pending != "" }
func (s *Session) Dirty() bool               { return s.dirty }
func (s *Session) ToneMode() ecolor.ToneMode { return s.rs.ToneMode }

// SelectScene starts loading a scene in the background, superseding any
// load already in flight. The current scene stays visible until the new
// one lands via ApplyPending or WaitScene.
func (s *Session) SelectScene(name string) uint64 {
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.generation++
	s.pending = name
	gen := s.generation

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelLoad = cancel
	s.log.Info().Str("scene", name).Uint64("generation", gen).Msg("scene selected")

	go func() {
		defer cancel()
		sc, warnings, err := s.loader.LoadScene(ctx, name)
		r := LoadResult{Generation: gen, Name: name, Scene: sc, Warnings: warnings, Err: err}
		select {
		case s.results <- r:
		case <-s.ctx.Done():
		}
	}()

	return gen
}

// ApplyPending drains finished loads without blocking. Stale ones are
// dropped; if the newest has landed it is applied and returned.
func (s *Session) ApplyPending() (LoadResult, bool) {
	for {
		select {
		case r := <-s.results:
			if s.accept(r) {
				return r, true
			}
		default:
			return LoadResult{}, false
		}
	}
}

// WaitScene blocks until the newest requested scene has loaded (or
// failed), and applies it.
func (s *Session) WaitScene(ctx context.Context) (LoadResult, error) {
	if s.pending == "" {
		return LoadResult{}, fmt.Errorf("wait scene: %w", ErrNoScene)
	}
	for {
		select {
		case <-ctx.Done():
			return LoadResult{}, ctx.Err()
		case r := <-s.results:
			if s.accept(r) {
				return r, r.Err
			}
		}
	}
}

// accept applies r if it is the newest request. A failed load leaves the
// previous scene in place.
func (s *Session) accept(r LoadResult) bool {
	if r.Generation != s.generation {
		s.log.Debug().Str("scene", r.Name).Uint64("generation", r.Generation).
			Uint64("current", s.generation).Msg("dropping stale scene load")
		return false
	}

	s.pending = ""
	s.cancelLoad = nil
	if r.Err != nil {
		s.log.Error().Str("scene", r.Name).Err(r.Err).Msg("scene load failed")
		return true
	}

	s.scene = r.Scene
	s.applyAmbient()
	s.lastFrame = nil
	s.dirty = true
	return true
}

func (s *Session) applyAmbient() {
	if s.scene != nil {
		s.scene.Background.AmbientEnabled = s.ambientEnabled
		s.scene.Background.SetAmbientScale(s.ambientScale)
	}
	s.dirty = true
}

func (s *Session) layer(i int) (*Layer, error) {
	l, err := s.scene.Layer(i)
	if err != nil {
		return nil, err
	}
	s.dirty = true
	return l, nil
}

func (s *Session) SetLayerEnabled(i int, enabled bool) error {
	l, err := s.layer(i)
	if err != nil {
		return err
	}
	l.SetEnabled(enabled)
	return nil
}

func (s *Session) ToggleLayer(i int) error {
	l, err := s.layer(i)
	if err != nil {
		return err
	}
	l.Toggle()
	return nil
}

func (s *Session) SetLayerEV(i int, ev float64) error {
	l, err := s.layer(i)
	if err != nil {
		return err
	}
	l.SetEV(ev)
	return nil
}

func (s *Session) SetLayerColorMode(i int, m ColorMode) error {
	l, err := s.layer(i)
	if err != nil {
		return err
	}
	l.SetColorMode(m)
	return nil
}

func (s *Session) SetLayerTemperature(i int, kelvin float64) error {
	l, err := s.layer(i)
	if err != nil {
		return err
	}
	l.SetTemperature(kelvin)
	return nil
}

func (s *Session) SetLayerPickerColor(i int, hex string) error {
	l, err := s.layer(i)
	if err != nil {
		return err
	}
	return l.SetPickerColor(hex)
}

// ResetLayers is the "Reset All" button.
func (s *Session) ResetLayers() error {
	if s.scene == nil {
		return ErrNoScene
	}
	s.scene.ResetLayers()
	s.dirty = true
	return nil
}

func (s *Session) ApplyBatchColor(m ColorMode, kelvin float64, hex string) error {
	if s.scene == nil {
		return ErrNoScene
	}
	s.dirty = true
	return s.scene.ApplyBatchColor(m, kelvin, hex)
}

func (s *Session) ApplyBatchExposure(ev float64) error {
	if s.scene == nil {
		return ErrNoScene
	}
	s.scene.ApplyBatchExposure(ev)
	s.dirty = true
	return nil
}

// The ambient and tone settings belong to the session, and carry over
// from one scene to the next.

func (s *Session) AmbientEnabled() bool  { return s.ambientEnabled }
func (s *Session) AmbientScale() float64 { return s.ambientScale }

func (s *Session) SetAmbientEnabled(b bool) {
	s.ambientEnabled = b
	s.applyAmbient()
}

func (s *Session) ToggleAmbient() { s.SetAmbientEnabled(!s.ambientEnabled) }

func (s *Session) SetAmbientScale(f float64) {
	bg := Background{}
	bg.SetAmbientScale(f)
	s.ambientScale = bg.AmbientScale
	s.applyAmbient()
}

func (s *Session) SetToneMode(m ecolor.ToneMode) {
	s.rs.ToneMode = m
	s.dirty = true
}

// Render composites the current state, reusing the last frame if
// nothing has changed since.
func (s *Session) Render() *Frame {
	if !s.dirty && s.lastFrame != nil {
		return s.lastFrame
	}
	if s.scene == nil {
		s.lastFrame = Composite(nil, nil, s.rs)
	} else {
		s.lastFrame = Composite(&s.scene.Background, s.scene.Layers, s.rs)
	}
	s.dirty = false
	return s.lastFrame
}

// LastFrame is the most recently rendered frame, or nil.
func (s *Session) LastFrame() *Frame { return s.lastFrame }

// Centroids are in layer order, for placing overlay controls.
func (s *Session) Centroids() []Centroid {
	if s.scene == nil {
		return nil
	}
	out := make([]Centroid, len(s.scene.Layers))
	for i, l := range s.scene.Layers {
		out[i] = l.Centroid
	}
	return out
}

// LayerEnabled is in layer order, for styling overlay controls.
func (s *Session) LayerEnabled() []bool {
	if s.scene == nil {
		return nil
	}
	out := make([]bool, len(s.scene.Layers))
	for i, l := range s.scene.Layers {
		out[i] = l.Enabled()
	}
	return out
}
