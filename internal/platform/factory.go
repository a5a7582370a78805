package platform

import (
	"context"
	"path/filepath"

	"github.com/alexmglover/Deep/pkg/adapters/fs"
	"github.com/alexmglover/Deep/pkg/config"
	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/paginate"
	"github.com/alexmglover/Deep/pkg/render"
	"github.com/alexmglover/Deep/pkg/siteurl"
	"github.com/alexmglover/Deep/pkg/substitute"
)

// New wires a render service over the vault at vaultPath.
//
//	svc, err := deep.New("./site", deep.WithSiteURL("https://example.com", ""))
//
// deep.yaml is read from the vault root unless WithConfig is given. When
// the config names its own vault directory, records are read from there.
func New(vaultPath string, opts ...Option) (*render.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(filepath.Join(vaultPath, config.FileName)); err != nil {
			return nil, err
		}
	}

	settings := cfg.Settings()
	if o.settings != nil {
		settings = *o.settings
	}
	siteURL, indexPage := cfg.SiteURL, cfg.IndexPage
	if o.siteURL != nil {
		siteURL, indexPage = *o.siteURL, *o.indexPage
	}

	source := o.source
	if source == nil {
		src := fs.NewSource(fs.Config{
			Path:         cfg.VaultPath(),
			Logger:       o.logger,
			Strict:       o.strict || cfg.Strict,
			ErrorHandler: o.errorHandler,
			Serializers:  o.serializers,
		})
		if err := src.Initialize(context.Background()); err != nil {
			return nil, err
		}
		source = src
	}

	resolver := siteurl.New(siteURL, indexPage)
	engine := o.engine
	if engine == nil {
		engine = substitute.New(resolver)
	}

	fields := fieldChain{cfg.FieldMap()}
	if fr, ok := source.(core.FieldNameResolver); ok {
		fields = append(fieldChain{fr}, fields...)
	}

	if o.logger != nil {
		o.logger.Debug("render service ready", "vault", cfg.VaultPath(), "site_url", siteURL)
	}

	return render.NewService(source, render.Config{
		Settings:  settings,
		Engine:    engine,
		Resolver:  resolver,
		Fields:    fields,
		Paginator: paginate.New(resolver),
		Logger:    o.logger,
	}), nil
}

// fieldChain resolves a field name against each resolver in turn.
type fieldChain []core.FieldNameResolver

func (c fieldChain) FieldID(name string) (int, bool) {
	for _, r := range c {
		if id, ok := r.FieldID(name); ok {
			return id, true
		}
	}
	return 0, false
}
