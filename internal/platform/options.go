package platform

import (
	"log/slog"

	"github.com/alexmglover/Deep/pkg/adapters/fs"
	"github.com/alexmglover/Deep/pkg/config"
	"github.com/alexmglover/Deep/pkg/core"
)

// options holds the internal configuration for a render service.
type options struct {
	source       core.RecordSource
	engine       core.SubstitutionEngine
	logger       *slog.Logger
	config       *config.Config
	settings     *core.Settings
	siteURL      *string
	indexPage    *string
	strict       bool
	errorHandler func(error)
	serializers  map[string]fs.Serializer
}

// Option defines a functional option for configuring the service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		serializers: make(map[string]fs.Serializer),
	}
}

// WithLogger sets the logger for the service and the vault source.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConfig uses cfg instead of loading deep.yaml from the vault root.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithSettings overrides the routing and feature settings of the config.
func WithSettings(s core.Settings) Option {
	return func(o *options) {
		o.settings = &s
	}
}

// WithSiteURL overrides the site URL and index page used to build links.
func WithSiteURL(siteURL, indexPage string) Option {
	return func(o *options) {
		o.siteURL = &siteURL
		o.indexPage = &indexPage
	}
}

// WithStrict enables strict mode for the default serializers: numbers are
// decoded as json.Number.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithErrorHandler registers a callback for vault parse and watcher errors,
// which are otherwise only logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithSerializer registers a serializer for a file extension (e.g. ".toml").
func WithSerializer(ext string, s fs.Serializer) Option {
	return func(o *options) {
		o.serializers[ext] = s
	}
}

// WithSource injects a record source. The filesystem vault is skipped.
func WithSource(src core.RecordSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithEngine replaces the default substitution engine.
func WithEngine(e core.SubstitutionEngine) Option {
	return func(o *options) {
		o.engine = e
	}
}
