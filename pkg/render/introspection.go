package render

import (
	"time"

	"github.com/aretw0/introspection"

	"github.com/alexmglover/Deep/pkg/core"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	SourceType   string        `json:"source_type"`
	Features     core.Features `json:"features"`
	Renders      int           `json:"renders"`
	NoResults    int           `json:"no_results"`
	LastRenderID string        `json:"last_render_id,omitempty"`
	LastRender   *time.Time    `json:"last_render,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sourceType := "unknown"
	if s.source != nil {
		sourceType = "source"
		if comp, ok := s.source.(introspection.Component); ok {
			sourceType = comp.ComponentType()
		}
	}

	return ServiceState{
		SourceType:   sourceType,
		Features:     s.cfg.Settings.Features,
		Renders:      s.renders,
		NoResults:    s.noResults,
		LastRenderID: s.lastID,
		LastRender:   s.lastRender,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "render"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
