package render_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/paginate"
	"github.com/alexmglover/Deep/pkg/render"
	"github.com/alexmglover/Deep/pkg/siteurl"
	"github.com/alexmglover/Deep/pkg/substitute"
)

// Rendering is synchronous; no test here may leave a goroutine behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	entries []*core.Entry
	forest  []*core.Category
	err     error
	queries []core.Query
}

func (f *fakeSource) Records(_ context.Context, q core.Query) ([]core.Record, int, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	var matched []core.Record
	for _, e := range f.entries {
		if v := q.Route.Get(core.ParamURLTitle); v != "" && v != e.Attrs.Value("url_title") {
			continue
		}
		if v := q.Route.Get(core.ParamEntryID); v != "" && v != strconv.Itoa(e.EntryID) {
			continue
		}
		matched = append(matched, e)
	}
	total := len(matched)
	if q.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, total, nil
}

func (f *fakeSource) CategoryTree(_ context.Context, _ core.CategoryQuery) ([]*core.Category, error) {
	return f.forest, f.err
}

func entry(id int, title string) *core.Entry {
	attrs := core.NewAttributes()
	attrs.Set("title", title)
	attrs.Set("url_title", title)
	return &core.Entry{EntryID: id, Attrs: attrs, Fields: map[string]core.FieldValue{}}
}

func category(id int, name string, children ...*core.Category) *core.Category {
	attrs := core.NewAttributes()
	attrs.Set("category_name", name)
	return &core.Category{CategoryID: id, Attrs: attrs, Children: children}
}

func newService(src core.RecordSource, settings core.Settings) *render.Service {
	resolver := siteurl.New("https://example.com", "")
	return render.NewService(src, render.Config{
		Settings:  settings,
		Engine:    substitute.New(resolver),
		Resolver:  resolver,
		Fields:    core.FieldMap{},
		Paginator: paginate.New(resolver),
	})
}

func params(kv ...string) *core.Params {
	p := core.NewParams()
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

func TestEntries(t *testing.T) {
	src := &fakeSource{entries: []*core.Entry{entry(1, "one"), entry(2, "two"), entry(3, "three")}}
	svc := newService(src, core.Settings{Features: core.AllFeatures()})

	out, err := svc.Entries(context.Background(), render.Request{
		Template: "{count}:{title},{if no_results}none{/if}",
		Path:     "blog",
		Base:     "blog",
		Params:   params("backspace", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1:one,2:two,3:three", out)
	require.Len(t, src.queries, 1)
	assert.Equal(t, render.DefaultLimit, src.queries[0].Limit)
	assert.True(t, src.queries[0].Route.Empty())
}

func TestEntries_SingleEntryRoute(t *testing.T) {
	src := &fakeSource{entries: []*core.Entry{entry(1, "one"), entry(2, "two")}}
	svc := newService(src, core.Settings{Features: core.AllFeatures()})

	out, err := svc.Entries(context.Background(), render.Request{
		Template: "{title}",
		Path:     "/blog/two/",
		Base:     "blog",
	})
	require.NoError(t, err)
	assert.Equal(t, "two", out)
}

func TestEntries_NoResults(t *testing.T) {
	src := &fakeSource{entries: []*core.Entry{entry(1, "one")}}
	svc := newService(src, core.Settings{Features: core.AllFeatures()})
	tpl := "{title}{if no_results}<p>Nothing here</p>{/if}"

	out, err := svc.Entries(context.Background(), render.Request{Template: tpl, Path: "blog/missing", Base: "blog"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Nothing here</p>", out)

	// Related mode without a single entry segment never reaches the source.
	related := newService(src, core.Settings{Features: core.AllFeatures(), RelatedCategoriesMode: true})
	src.queries = nil
	out, err = related.Entries(context.Background(), render.Request{Template: tpl, Path: "2024/01"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Nothing here</p>", out)
	assert.Empty(t, src.queries)

	state := related.State().(render.ServiceState)
	assert.Equal(t, 1, state.NoResults)
}

func TestEntries_RequireMatch(t *testing.T) {
	src := &fakeSource{entries: []*core.Entry{entry(1, "one")}}
	svc := newService(src, core.Settings{Features: core.AllFeatures()})

	out, err := svc.Entries(context.Background(), render.Request{
		Template: "{title}{if no_results}none{/if}",
		Params:   params("require_match", "yes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "none", out)

	out, err = svc.Entries(context.Background(), render.Request{
		Template: "{title}",
		Path:     "whatever",
		Params:   params("dynamic", "no"),
	})
	require.NoError(t, err)
	assert.Equal(t, "one", out)
}

func TestEntries_Pagination(t *testing.T) {
	var entries []*core.Entry
	for i := 1; i <= 5; i++ {
		entries = append(entries, entry(i, "e"+strconv.Itoa(i)))
	}
	src := &fakeSource{entries: entries}
	svc := newService(src, core.Settings{Features: core.AllFeatures()})

	tpl := "{title} {paginate}[{current_page}/{total_pages}]{/paginate}"
	out, err := svc.Entries(context.Background(), render.Request{
		Template: tpl,
		Path:     "blog/P2",
		Base:     "blog",
		Params:   params("limit", "2", "paginate", "top"),
	})
	require.NoError(t, err)
	assert.Equal(t, "[2/3]e3 e4 ", out)
	assert.Equal(t, 2, src.queries[0].Offset)

	out, err = svc.Entries(context.Background(), render.Request{
		Template: tpl,
		Path:     "blog/P2",
		Base:     "blog",
		Params:   params("limit", "2", "disable", "pagination"),
	})
	require.NoError(t, err)
	assert.Equal(t, "e1 e2 ", out)
}

func TestEntries_SourceError(t *testing.T) {
	boom := errors.New("boom")
	svc := newService(&fakeSource{err: boom}, core.Settings{Features: core.AllFeatures()})

	_, err := svc.Entries(context.Background(), render.Request{Template: "{title}"})
	assert.ErrorIs(t, err, boom)
}

func TestEntries_MissingCollaborators(t *testing.T) {
	_, err := render.NewService(nil, render.Config{}).Entries(context.Background(), render.Request{})
	assert.ErrorIs(t, err, render.ErrNoSource)

	_, err = render.NewService(&fakeSource{}, render.Config{}).Entries(context.Background(), render.Request{})
	assert.ErrorIs(t, err, render.ErrNoEngine)
}

func TestCategoryNav(t *testing.T) {
	src := &fakeSource{forest: []*core.Category{category(1, "a", category(2, "b")), category(3, "c")}}
	svc := newService(src, core.Settings{Features: core.AllFeatures()})

	out, err := svc.CategoryNav(context.Background(), render.Request{
		Template: "{category_name}",
		Path:     "blog/C2",
		Params:   params("id", "nav"),
	})
	require.NoError(t, err)
	assert.Equal(t, `<ul id="nav"><li>a<ul><li>b</li></ul></li><li>c</li></ul>`, out)

	out, err = svc.CategoryNav(context.Background(), render.Request{
		Template: "{category_name}{active},",
		Path:     "blog/C3",
		Params:   params("style", "linear", "backspace", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "a,b,c1", out)

	empty := newService(&fakeSource{}, core.Settings{Features: core.AllFeatures()})
	out, err = empty.CategoryNav(context.Background(), render.Request{
		Template: "{category_name}{if no_results}no categories{/if}",
		Params:   params("style", "linear"),
	})
	require.NoError(t, err)
	assert.Equal(t, "no categories", out)
}

func TestApplyDisable(t *testing.T) {
	f := render.ApplyDisable(core.AllFeatures(), "members|categories")
	assert.False(t, f.MemberData)
	assert.False(t, f.Categories)
	assert.False(t, f.CategoryFields)
	assert.True(t, f.CustomFields)
	assert.True(t, f.Pagination)
}

func TestExtractNoResults(t *testing.T) {
	rest, frag := render.ExtractNoResults("a{if no_results}b{/if}c")
	assert.Equal(t, "ac", rest)
	assert.Equal(t, "b", frag)

	rest, frag = render.ExtractNoResults("abc")
	assert.Equal(t, "abc", rest)
	assert.Empty(t, frag)
}

func TestRoute(t *testing.T) {
	svc := newService(&fakeSource{}, core.Settings{})
	params, err := svc.Route("blog/C12/P20")
	require.NoError(t, err)
	assert.Equal(t, "12", params.Get(core.ParamCategoryID))
	assert.True(t, params.CategoryRequest)
}
