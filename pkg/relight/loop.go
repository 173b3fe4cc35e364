package relight

import (
	"context"
	"time"
)

// An Event is a state change posted from the UI side, e.g.
//
//	events <- func(s *Session) error { return s.ToggleLayer(3) }
type Event func(*Session) error

// Run is the frame loop. It owns the session until ctx is done: events
// are applied as they arrive, and on each tick any finished scene load is
// swapped in, the frame re-rendered if anything changed, and handed to
// present. A failing event is logged and the loop carries on.
func (s *Session) Run(ctx context.Context, ticks <-chan time.Time, events <-chan Event, present func(*Frame)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil // Closed; keep rendering
				continue
			}
			if err := ev(s); err != nil {
				s.log.Warn().Err(err).Msg("event")
			}

		case <-ticks:
			if r, ok := s.ApplyPending(); ok && r.Err == nil {
				s.log.Info().Str("scene", r.Name).Int("warnings", len(r.Warnings)).Msg("scene swapped in")
			}
			if present != nil {
				present(s.Render())
			}
		}
	}
}
