package fs

import (
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// SourceState exposes internal state for observability.
type SourceState struct {
	Path          string     `json:"path"`
	Strict        bool       `json:"strict"`
	Serializers   []string   `json:"serializers"`
	CacheSize     int        `json:"cache_size"`
	CacheHits     int        `json:"cache_hits"`
	CacheMisses   int        `json:"cache_misses"`
	Loads         int        `json:"loads"`
	LastLoad      *time.Time `json:"last_load,omitempty"`
	Entries       int        `json:"entries"`
	Categories    int        `json:"categories"`
	Fields        int        `json:"fields"`
	WatcherActive bool       `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (s *Source) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	serializers := make([]string, 0, len(s.serializers))
	for ext := range s.serializers {
		serializers = append(serializers, ext)
	}
	slices.Sort(serializers)

	hits, misses := s.cache.Stats()
	state := SourceState{
		Path:          s.Path,
		Strict:        s.config.Strict,
		Serializers:   serializers,
		CacheSize:     s.cache.Len(),
		CacheHits:     hits,
		CacheMisses:   misses,
		Loads:         s.loads,
		LastLoad:      s.lastLoad,
		WatcherActive: s.watcherActive,
	}
	if s.vault != nil {
		state.Entries = len(s.vault.entries)
		state.Categories = len(s.vault.cats)
		state.Fields = len(s.vault.fields)
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Source) ComponentType() string {
	return "source"
}

var _ introspection.Introspectable = (*Source)(nil)
var _ introspection.Component = (*Source)(nil)

func (s *Source) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}

func (s *Source) logger() *slog.Logger {
	if s.config.Logger != nil {
		return s.config.Logger
	}
	return slog.New(slog.DiscardHandler)
}
