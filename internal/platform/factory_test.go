package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmglover/Deep/pkg/adapters/fs"
	"github.com/alexmglover/Deep/pkg/config"
	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/render"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

var site = map[string]string{
	"deep.yaml": "site_url: https://example.com\nvault: content\ndisable: [member_data]\n",
	"content/fields.yaml": "- {id: 1, name: summary, type: text}\n",
	"content/entries/hello.md": "---\nentry_id: 1\ntitle: Hello\nentry_date: \"2024-01-01\"\nfields:\n  summary: Hi there\n---\n",
	"content/entries/world.md": "---\nentry_id: 2\ntitle: World\nentry_date: \"2024-02-01\"\n---\n",
}

func TestNew(t *testing.T) {
	svc, err := New(writeSite(t, site))
	require.NoError(t, err)

	assert.False(t, svc.Settings().Features.MemberData)
	assert.True(t, svc.Settings().Features.CustomFields)
	assert.IsType(t, &fs.Source{}, svc.Source())

	out, err := svc.Entries(context.Background(), render.Request{
		Template: `{title}={summary}|{url_title_path="blog/view"};`,
		Path:     "",
		Params:   core.NewParams(),
	})
	require.NoError(t, err)
	assert.Equal(t, "World=|https://example.com/blog/view/world/;Hello=Hi there|https://example.com/blog/view/hello/;", out)
}

func TestNewOverrides(t *testing.T) {
	dir := writeSite(t, site)
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)

	settings := cfg.Settings()
	settings.Features.CustomFields = false

	svc, err := New(dir,
		WithConfig(cfg),
		WithSettings(settings),
		WithSiteURL("https://other.example", "index.php"),
	)
	require.NoError(t, err)

	out, err := svc.Entries(context.Background(), render.Request{
		Template: `{summary}{url_title_path="p"} `,
		Params:   core.NewParams(),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/index.php/p/world/ https://other.example/index.php/p/hello/ ", out)
}

type stubSource struct{}

func (stubSource) Records(context.Context, core.Query) ([]core.Record, int, error) {
	return nil, 0, nil
}

func (stubSource) CategoryTree(context.Context, core.CategoryQuery) ([]*core.Category, error) {
	return nil, nil
}

func TestNewWithSource(t *testing.T) {
	svc, err := New(t.TempDir(), WithSource(stubSource{}))
	require.NoError(t, err)
	assert.Equal(t, stubSource{}, svc.Source())

	out, err := svc.Entries(context.Background(), render.Request{Template: "{title}{if no_results}none{/if}"})
	require.NoError(t, err)
	assert.Equal(t, "none", out)
}

func TestNewMissingVault(t *testing.T) {
	cfg := config.Default()
	cfg.Vault = filepath.Join(t.TempDir(), "missing")
	_, err := New("", WithConfig(cfg))
	assert.Error(t, err)
}

func TestNewReportsParseErrors(t *testing.T) {
	files := map[string]string{
		"entries/broken.md": "---\nentry_id: [\n---\n",
	}
	var reported []error
	svc, err := New(writeSite(t, files), WithErrorHandler(func(err error) { reported = append(reported, err) }))
	require.NoError(t, err)

	_, err = svc.Entries(context.Background(), render.Request{Template: "{title}"})
	require.NoError(t, err)
	assert.Len(t, reported, 1)
}

func TestFieldChain(t *testing.T) {
	chain := fieldChain{core.FieldMap{"a": 1}, core.FieldMap{"a": 2, "b": 3}}

	id, ok := chain.FieldID("a")
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = chain.FieldID("b")
	assert.True(t, ok)
	assert.Equal(t, 3, id)

	_, ok = chain.FieldID("c")
	assert.False(t, ok)
}
