package rows_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/rows"
	"github.com/alexmglover/Deep/pkg/siteurl"
	"github.com/alexmglover/Deep/pkg/substitute"
	"github.com/alexmglover/Deep/pkg/tags"
)

var published = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

func attrs(kv ...any) *core.Attributes {
	a := core.NewAttributes()
	for i := 0; i+1 < len(kv); i += 2 {
		a.Set(kv[i].(string), kv[i+1])
	}
	return a
}

func entry(id int, title string) *core.Entry {
	return &core.Entry{
		EntryID: id,
		Attrs: attrs(
			"entry_id", id,
			"title", title,
			"url_title", title,
			"channel_url", "blog",
			"entry_date", published,
		),
		Fields: map[string]core.FieldValue{},
	}
}

func options() rows.Options {
	resolver := siteurl.New("https://example.com", "")
	return rows.Options{Context: core.RenderContext{
		Settings: core.Settings{
			Features: core.AllFeatures(),
			Uploads:  core.Uploads{AvatarURL: "https://example.com/avatars/"},
		},
		Engine:   substitute.New(resolver),
		Resolver: resolver,
		Fields:   core.FieldMap{"related": 5, "gallery": 6},
	}}
}

func materialize(t *testing.T, records []core.Record, template string, opts rows.Options) []*core.Row {
	t.Helper()
	out, err := rows.Materialize(records, tags.Discover(template, opts.Context.Prefix), opts)
	require.NoError(t, err)
	require.Len(t, out, len(records))
	return out
}

type kv struct {
	Key   string
	Value any
}

func snapshot(rs []*core.Row) [][]kv {
	out := make([][]kv, len(rs))
	for i, r := range rs {
		for k, v := range r.All() {
			out[i] = append(out[i], kv{k, v})
		}
	}
	return out
}

func TestMaterialize_OrderAndMetadata(t *testing.T) {
	records := []core.Record{entry(1, "one"), entry(2, "two"), entry(3, "three")}
	opts := options()
	opts.Offset = 10
	opts.AbsoluteTotal = 25
	opts.Context.Route.SingleEntry = true

	out := materialize(t, records, "{title}", opts)

	for i, r := range out {
		assert.Equal(t, records[i].(*core.Entry).Attrs.Value("title"), r.Text("title"))
		assert.Equal(t, []string{"1", "2", "3"}[i], r.Text("count"))
		assert.Equal(t, "3", r.Text("total_results"))
		assert.Equal(t, []string{"11", "12", "13"}[i], r.Text("absolute_count"))
		assert.Equal(t, "25", r.Text("absolute_results"))
		assert.Equal(t, true, r.Value("single_entry"))
		assert.Equal(t, false, r.Value("category_request"))
	}
	assert.Equal(t, "https://example.com/blog", out[0].Text("comment_auto_path"))
	assert.Equal(t, "https://example.com/blog/one", out[0].Text("comment_url_title_auto_path"))
	assert.Equal(t, "https://example.com/blog/1", out[0].Text("comment_entry_id_auto_path"))
	assert.Equal(t, "https://example.com", out[0].Text("entry_site_url"))
}

func TestMaterialize_Deterministic(t *testing.T) {
	records := []core.Record{entry(1, "one"), entry(2, "two")}
	tpl := `{title} {entry_date format="%Y"} {url_title_path="blog/view"}`

	first := snapshot(materialize(t, records, tpl, options()))
	second := snapshot(materialize(t, records, tpl, options()))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("rows differ between runs (-first +second):\n%s", diff)
	}
}

func TestMaterialize_Empty(t *testing.T) {
	out, err := rows.Materialize(nil, tags.Catalog{}, options())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMaterialize_PathVariables(t *testing.T) {
	out := materialize(t, []core.Record{entry(7, "hello")},
		`{url_title_path="blog/view"}{title_permalink="/news/"}{entry_id_path="blog/id"}`, options())

	assert.Equal(t, core.PathVar{Path: "blog/view/hello"}, out[0].Value(`url_title_path="blog/view"`))
	assert.Equal(t, core.PathVar{Path: "news/hello"}, out[0].Value(`title_permalink="/news/"`))
	assert.Equal(t, core.PathVar{Path: "blog/id/7"}, out[0].Value(`entry_id_path="blog/id"`))
}

func TestMaterialize_Dates(t *testing.T) {
	e := entry(1, "one")
	e.Fields["event_date"] = core.Date{Time: published}
	e.Fields["venue"] = core.Text("Hall")

	out := materialize(t, []core.Record{e},
		`{entry_date format="%Y-%m-%d"} {entry_date} {event_date format="%D %j%S %F"} {event_date} {title format="%Y"} {venue format="%Y"}`,
		options())

	r := out[0]
	assert.Equal(t, "2024-03-05", r.Text(`entry_date format="%Y-%m-%d"`))
	assert.Equal(t, "1709649000", r.Text("entry_date"))
	assert.Equal(t, "Tue 5th March", r.Text(`event_date format="%D %j%S %F"`))
	assert.Equal(t, "1709649000", r.Text("event_date"))
	assert.Equal(t, "", r.Text(`title format="%Y"`))
	assert.Equal(t, "", r.Text(`venue format="%Y"`))
}

func TestMaterialize_MissingFieldIsEmpty(t *testing.T) {
	out := materialize(t, []core.Record{entry(1, "one")}, "{summary}{gallery}x{/gallery}", options())
	assert.Equal(t, "", out[0].Value("summary"))
	assert.Equal(t, "", out[0].Value("gallery"))
}

func TestMaterialize_ListBackspace(t *testing.T) {
	e := entry(1, "one")
	e.Fields["tags"] = core.List{attrs("item", "a"), attrs("item", "b"), attrs("item", "c")}

	out := materialize(t, []core.Record{e}, `{tags backspace="1"}{item},{/tags}`, options())
	assert.Equal(t, "a,b,c", out[0].Value(`tags backspace="1"`))

	out = materialize(t, []core.Record{e}, `{tags}{item}{/tags}`, options())
	sub, ok := out[0].Value("tags").([]*core.Row)
	require.True(t, ok)
	require.Len(t, sub, 3)
	assert.Equal(t, "b", sub[1].Text("item"))
}

func TestMaterialize_RepeatedPair(t *testing.T) {
	e := entry(1, "one")
	e.Fields["tags"] = core.List{attrs("item", "a"), attrs("item", "b")}

	out := materialize(t, []core.Record{e}, `{tags}[{item}]{/tags} {tags}{item};{/tags}`, options())
	assert.Equal(t, core.Occurrences{"[a][b]", "a;b;"}, out[0].Value("tags"))
}

func TestMaterialize_Relationships(t *testing.T) {
	parent := entry(10, "parent")
	other := entry(11, "other")
	child := entry(1, "child")
	child.Relations = map[string][]core.Relation{
		core.RelParents: {
			{FieldID: 5, Record: parent},
			{FieldID: 9, Record: other},
			{FieldID: 5, Record: parent},
		},
	}

	opts := options()
	tpl := `{parents field="related"}{parents:title}({parents:count}) {title};{/parents}`
	out := materialize(t, []core.Record{child}, tpl, opts)
	assert.Equal(t, "parent(1) child;", out[0].Value(`parents field="related"`))

	out = materialize(t, []core.Record{child}, `{parents}{parents:title},{/parents}`, opts)
	assert.Equal(t, "parent,other,", out[0].Value("parents"))

	out = materialize(t, []core.Record{child}, `{parents field="nope"}{parents:title}{/parents}`, opts)
	assert.Equal(t, "", out[0].Value(`parents field="nope"`))

	out = materialize(t, []core.Record{child}, `{siblings}{siblings:title}{/siblings}`, opts)
	assert.Equal(t, "", out[0].Value("siblings"))
}

func TestMaterialize_RelatedDataWithBraces(t *testing.T) {
	parent := entry(10, "Use {title} literally")
	child := entry(1, "child")
	child.Relations = map[string][]core.Relation{core.RelParents: {{FieldID: 5, Record: parent}}}
	child.Fields["body"] = core.Text("price {count} {absolute_results}")
	child.Fields["tags"] = core.List{attrs("item", "{count}")}

	opts := options()
	tpl := `{title}: {parents}[{parents:title}]{/parents} {body}{/body} {tags}<{item} of {title}>{/tags}`
	records := []core.Record{child}
	out := materialize(t, records, tpl, opts)

	assert.Equal(t, "[Use {title} literally]", out[0].Value("parents"))
	assert.Equal(t, "price {count} {absolute_results}", out[0].Value("body"))

	rendered, err := opts.Context.Engine.Substitute(tpl, out)
	require.NoError(t, err)
	assert.Equal(t, "child: [Use {title} literally] price {count} {absolute_results} <{count} of child>", rendered)
}

func TestMaterialize_NestedBodiesInheritEnclosingTags(t *testing.T) {
	child := entry(1, "child")
	child.Relations = map[string][]core.Relation{core.RelParents: {{FieldID: 5, Record: entry(10, "parent")}}}
	child.Cats = []*core.Category{{CategoryID: 3, GroupID: 1, Attrs: attrs("category_name", "News")}}
	child.Fields["slides"] = core.Collection{Records: []core.Record{
		&core.GridRow{RowID: 1, Cells: attrs("caption", "first", "title", "cell")},
	}}

	out := materialize(t, []core.Record{child},
		`{parents}{parents:title}<{title}>{/parents}|{categories}{category_name}<{title}>{/categories}|{slides}{caption}:{title}{/slides}`,
		options())

	assert.Equal(t, "parent<child>", out[0].Value("parents"))
	assert.Equal(t, "News<child>", out[0].Value("categories"))
	// Grid rows share the enclosing namespace and keep their own values.
	assert.Equal(t, "first:cell", out[0].Value("slides"))
}

func TestMaterialize_NestedCollections(t *testing.T) {
	e := entry(1, "one")
	e.Fields["slides"] = core.Collection{Records: []core.Record{
		&core.GridRow{RowID: 1, Cells: attrs("caption", "first")},
		&core.GridRow{RowID: 2, Cells: attrs("caption", "second")},
	}}
	e.Fields["related_posts"] = core.Collection{Namespaced: true, Records: []core.Record{entry(2, "two")}}

	out := materialize(t, []core.Record{e},
		`{slides}<li>{caption}</li>{/slides}{related_posts}{related_posts:title}{/related_posts}`, options())

	assert.Equal(t, "<li>first</li><li>second</li>", out[0].Value("slides"))
	assert.Equal(t, "two", out[0].Value("related_posts"))
}

func TestMaterialize_Categories(t *testing.T) {
	e := entry(1, "one")
	e.Cats = []*core.Category{
		{CategoryID: 3, GroupID: 1, Attrs: attrs("category_name", "News")},
		{CategoryID: 4, GroupID: 2, Attrs: attrs("category_name", "Sport")},
	}

	tpl := `{categories show_group="2"}{category_name}:{path="blog/list"}{/categories}`
	out := materialize(t, []core.Record{e}, tpl, options())
	assert.Equal(t, "Sport:https://example.com/blog/list/C4/", out[0].Value(`categories show_group="2"`))

	opts := options()
	opts.Context.Settings.Features.Categories = false
	out = materialize(t, []core.Record{e}, tpl, opts)
	assert.Equal(t, "", out[0].Value(`categories show_group="2"`))
}

func TestMaterialize_CustomFieldsDisabled(t *testing.T) {
	e := entry(1, "one")
	e.Fields["venue"] = core.Text("Hall")

	opts := options()
	opts.Context.Settings.Features.CustomFields = false
	out := materialize(t, []core.Record{e}, "{venue}", opts)
	assert.Equal(t, "", out[0].Value("venue"))
}

func TestMaterialize_Prefix(t *testing.T) {
	opts := options()
	opts.Context = opts.Context.WithPrefix("side")

	out := materialize(t, []core.Record{entry(1, "one")}, "{side:title}{title}", opts)
	assert.Equal(t, "one", out[0].Text("side:title"))
	assert.Equal(t, "1", out[0].Text("side:count"))
	assert.False(t, out[0].Has("title"))
}

func TestMaterialize_MemberData(t *testing.T) {
	e := entry(1, "one")
	e.Member = &core.Author{MemberID: 4, Attrs: attrs(
		"username", "ada",
		"screen_name", "",
		"email", "ada@example.com",
		"avatar_filename", "ada.png",
		"avatar_width", "80",
		"avatar_height", "60",
	)}

	r := materialize(t, []core.Record{e}, "{author}", options())[0]
	assert.Equal(t, "ada", r.Text("author"))
	assert.Equal(t, "https://example.com/avatars/ada.png", r.Text("avatar_url"))
	assert.Equal(t, "80", r.Text("avatar_image_width"))
	assert.Equal(t, "60", r.Text("avatar_image_height"))
	assert.Equal(t, true, r.Value("avatar"))
	assert.Equal(t, false, r.Value("photo"))
	assert.Equal(t, "", r.Text("photo_url"))
	assert.Equal(t, "ada@example.com", r.Text("url_or_email"))
	assert.Equal(t, `<a href="mailto:ada@example.com">ada</a>`, r.Text("url_or_email_as_author"))
	assert.Equal(t, `<a href="mailto:ada@example.com">ada@example.com</a>`, r.Text("url_or_email_as_link"))

	e.Member.Attrs.Set("screen_name", "Ada L")
	e.Member.Attrs.Set("url", "https://ada.example.com")
	r = materialize(t, []core.Record{e}, "{author}", options())[0]
	assert.Equal(t, "Ada L", r.Text("author"))
	assert.Equal(t, `<a href="https://ada.example.com">Ada L</a>`, r.Text("url_or_email_as_author"))

	opts := options()
	opts.Context.Settings.Features.MemberData = false
	r = materialize(t, []core.Record{e}, "{title}", opts)[0]
	assert.False(t, r.Has("author"))
}

func TestBackspace(t *testing.T) {
	assert.Equal(t, "a,b,c", rows.Backspace("a,b,c,", 1))
	assert.Equal(t, "ca", rows.Backspace("café", 2))
	assert.Equal(t, "", rows.Backspace("ab", 5))
	assert.Equal(t, "ab", rows.Backspace("ab", 0))
}
