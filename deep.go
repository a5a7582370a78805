package deep

import (
	"log/slog"

	"github.com/alexmglover/Deep/internal/platform"
	"github.com/alexmglover/Deep/pkg/adapters/fs"
	"github.com/alexmglover/Deep/pkg/config"
	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/render"
)

// --- Types ---

// Service renders templates against a record source.
type Service = render.Service

// Request is one render invocation.
type Request = render.Request

// Settings is the site-level configuration a render runs under.
type Settings = core.Settings

// --- Configuration ---

// Option defines a functional option for configuring the service.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithConfig uses cfg instead of loading deep.yaml from the vault root.
func WithConfig(cfg *config.Config) Option {
	return platform.WithConfig(cfg)
}

// WithSettings overrides the routing and feature settings.
func WithSettings(s Settings) Option {
	return platform.WithSettings(s)
}

// WithSiteURL sets the site URL and index page used to build links.
func WithSiteURL(siteURL, indexPage string) Option {
	return platform.WithSiteURL(siteURL, indexPage)
}

// WithStrict decodes vault numbers as json.Number.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithErrorHandler receives vault parse and watcher errors.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithSerializer registers a serializer for a file extension.
func WithSerializer(ext string, s fs.Serializer) Option {
	return platform.WithSerializer(ext, s)
}

// WithSource injects a record source in place of the filesystem vault.
func WithSource(src core.RecordSource) Option {
	return platform.WithSource(src)
}

// WithEngine replaces the default substitution engine.
func WithEngine(e core.SubstitutionEngine) Option {
	return platform.WithEngine(e)
}

// --- Factory ---

// New creates a render service over the vault at path.
func New(path string, opts ...Option) (*Service, error) {
	return platform.New(path, opts...)
}

// FindRoot looks upwards from startDir for a directory holding deep.yaml
// or fields.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
