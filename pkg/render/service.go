// Package render orchestrates a render: it derives route parameters from
// the request path, asks the record source for a page of records, builds
// the tag catalog, materializes rows and hands them to the substitution
// engine. Any core.ErrNoMatch along the way renders the template's
// {if no_results} fragment instead.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexmglover/Deep/pkg/categories"
	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/paginate"
	"github.com/alexmglover/Deep/pkg/route"
	"github.com/alexmglover/Deep/pkg/rows"
	"github.com/alexmglover/Deep/pkg/tags"
)

var (
	// ErrNoSource is returned when the service has no record source.
	ErrNoSource = errors.New("render: no record source")
	// ErrNoEngine is returned when the service has no substitution engine.
	ErrNoEngine = errors.New("render: no substitution engine")
)

// Config wires the collaborators of a Service.
type Config struct {
	Settings  core.Settings
	Engine    core.SubstitutionEngine
	Resolver  core.PathResolver
	Fields    core.FieldNameResolver
	Paginator core.Paginator
	Logger    *slog.Logger
}

// Service renders templates against a record source.
type Service struct {
	source core.RecordSource
	cfg    Config

	mu         sync.RWMutex
	renders    int
	noResults  int
	lastID     string
	lastRender *time.Time
}

// NewService creates a new Service.
func NewService(source core.RecordSource, cfg Config) *Service {
	return &Service{source: source, cfg: cfg}
}

// Settings returns the site settings the service renders under.
func (s *Service) Settings() core.Settings {
	return s.cfg.Settings
}

// Source returns the record source.
func (s *Service) Source() core.RecordSource {
	return s.source
}

func (s *Service) logger() *slog.Logger {
	if s.cfg.Logger != nil {
		return s.cfg.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Route derives the route parameters of path under the service settings.
func (s *Service) Route(path string) (core.RouteParameters, error) {
	stripped, _ := route.StripPagination(path)
	return route.Derive(stripped, route.ConfigFrom(s.cfg.Settings))
}

// Entries renders the template once per matching record.
func (s *Service) Entries(ctx context.Context, req Request) (string, error) {
	if s.source == nil {
		return "", ErrNoSource
	}
	if s.cfg.Engine == nil {
		return "", ErrNoEngine
	}
	id := uuid.NewString()
	log := s.logger().With("render_id", id, "path", req.Path)
	start := time.Now()

	settings := s.cfg.Settings
	settings.Features = ApplyDisable(settings.Features, req.param("disable"))

	tpl, noResults := ExtractNoResults(req.Template)
	tpl, pageBlock, hasPageBlock := paginate.Extract(tpl)
	hasPageBlock = hasPageBlock && settings.Features.Pagination

	path, pageOffset := route.StripPagination(req.Path)
	params, err := s.derive(req, path, settings)
	if err != nil {
		return s.noMatch(log, id, noResults, err)
	}

	limit := req.intParam("limit", DefaultLimit)
	offset := req.intParam("offset", 0)
	if settings.Features.Pagination {
		offset += pageOffset
	}

	records, total, err := s.source.Records(ctx, core.Query{
		Route:  params,
		Params: req.Params,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		if errors.Is(err, core.ErrNoMatch) {
			return s.noMatch(log, id, noResults, err)
		}
		return "", fmt.Errorf("fetch records: %w", err)
	}
	if len(records) == 0 {
		return s.noMatch(log, id, noResults, core.ErrEmptyCollection)
	}

	rc := core.RenderContext{
		Settings:    settings,
		CurrentPath: req.Path,
		Route:       params,
		Engine:      s.cfg.Engine,
		Resolver:    s.cfg.Resolver,
		Fields:      s.cfg.Fields,
	}
	cat := tags.Builder{Logger: log}.Discover(tpl, rc.Prefix)
	log.Debug("catalog built", "singles", len(cat.Singles), "pairs", len(cat.Pairs))

	materialized, err := rows.Materialize(records, cat, rows.Options{
		Context:       rc,
		Offset:        offset,
		AbsoluteTotal: total,
		Logger:        log,
	})
	if err != nil {
		if errors.Is(err, core.ErrNoMatch) {
			return s.noMatch(log, id, noResults, err)
		}
		return "", err
	}

	out, err := s.cfg.Engine.Substitute(tpl, materialized)
	if err != nil {
		return "", fmt.Errorf("substitute: %w", err)
	}

	if hasPageBlock && s.cfg.Paginator != nil {
		page := s.cfg.Paginator.Paginate(total, limit, offset)
		block := s.cfg.Paginator.Render(pageBlock, page, path)
		out = paginate.Wrap(out, block, paginate.ParsePosition(req.param("paginate")))
	}

	out = rows.Backspace(out, req.intParam("backspace", 0))

	s.record(id, false)
	log.Info("rendered entries", "records", len(records), "total", total, "offset", offset, "duration", time.Since(start))
	return out, nil
}

func (s *Service) derive(req Request, path string, settings core.Settings) (core.RouteParameters, error) {
	if !req.flag("dynamic", true) {
		return core.RouteParameters{Values: map[string]string{}}, nil
	}
	params, err := route.Derive(req.dynamicPath(path), route.ConfigFrom(settings))
	if req.flag("require_match", false) {
		return route.RequireMatch(params, err)
	}
	return params, err
}

// CategoryNav renders the category forest. The style parameter selects
// "nested" lists (default) or a "linear" pre-order listing.
func (s *Service) CategoryNav(ctx context.Context, req Request) (string, error) {
	if s.source == nil {
		return "", ErrNoSource
	}
	if s.cfg.Engine == nil {
		return "", ErrNoEngine
	}
	id := uuid.NewString()
	log := s.logger().With("render_id", id, "path", req.Path)

	settings := s.cfg.Settings
	settings.Features = ApplyDisable(settings.Features, req.param("disable"))
	tpl, noResults := ExtractNoResults(req.Template)

	forest, err := s.source.CategoryTree(ctx, core.CategoryQuery{
		GroupIDs: categories.GroupIDs(req.param("category_group")),
		Params:   req.Params,
	})
	if err != nil {
		if errors.Is(err, core.ErrNoMatch) {
			return s.noMatch(log, id, noResults, err)
		}
		return "", fmt.Errorf("fetch categories: %w", err)
	}

	opts := categories.Options{
		Context: core.RenderContext{
			Settings:    settings,
			CurrentPath: req.Path,
			Engine:      s.cfg.Engine,
			Resolver:    s.cfg.Resolver,
			Fields:      s.cfg.Fields,
		},
		ID:    req.param("id"),
		Class: req.param("class"),
	}

	var out string
	if strings.EqualFold(req.param("style"), "linear") {
		out, err = categories.Flat(forest, tpl, opts)
	} else {
		out, err = categories.Nested(forest, tpl, opts)
	}
	if err != nil {
		if errors.Is(err, core.ErrNoMatch) {
			return s.noMatch(log, id, noResults, err)
		}
		return "", err
	}

	out = rows.Backspace(out, req.intParam("backspace", 0))
	s.record(id, false)
	log.Info("rendered categories", "roots", len(forest))
	return out, nil
}

func (s *Service) noMatch(log *slog.Logger, id, fragment string, err error) (string, error) {
	if !errors.Is(err, core.ErrNoMatch) {
		return "", err
	}
	s.record(id, true)
	log.Info("no results", "reason", err)
	return fragment, nil
}

func (s *Service) record(id string, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.renders++
	if empty {
		s.noResults++
	}
	s.lastID = id
	s.lastRender = &now
}

// Watch observes changes in the record source if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	w, ok := s.source.(core.Watchable)
	if !ok {
		return nil, errors.New("record source does not support watching")
	}
	return w.Watch(ctx, pattern)
}
