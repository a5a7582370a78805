// Package lifecycle bridges vault change events into the lifecycle event
// model, so a render loop can be driven by a lifecycle.Source.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/alexmglover/Deep/pkg/core"
)

type vaultSource struct {
	events <-chan core.Event
	types  []core.EventType
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits vault events. When types
// are given, only events of those types are forwarded.
func NewSource(events <-chan core.Event, types ...core.EventType) lifecycle.Source {
	return &vaultSource{
		events: events,
		types:  types,
		out:    make(chan lifecycle.Event),
	}
}

func (s *vaultSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the vault channel closes,
// then closes Events.
func (s *vaultSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if len(s.types) > 0 && !slices.Contains(s.types, e.Type) {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
