// Package rows turns records into the rows a substitution engine consumes.
//
// For every record a row is built in a fixed order: render metadata, pair
// tags (nested collections rendered to strings), single tags, native
// attributes and finally member data. Keys carry the active prefix.
// Declared single tags that no stage serves are set to "". Nested passes
// render to final text: the enclosing record's values for tags in a pair
// body are handed down before the body is substituted.
package rows

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alexmglover/Deep/pkg/categories"
	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/tags"
)

// Options positions a batch of records within the full result set.
type Options struct {
	Context core.RenderContext
	// Offset is the absolute index of the first record.
	Offset int
	// AbsoluteTotal counts matches across all pages. Zero means the batch
	// is the whole result.
	AbsoluteTotal int
	Logger        *slog.Logger
}

type materializer struct {
	rc     core.RenderContext
	opts   Options
	logger *slog.Logger
}

// Materialize builds one row per record, in input order.
func Materialize(records []core.Record, cat tags.Catalog, opts Options) ([]*core.Row, error) {
	m := &materializer{rc: opts.Context, opts: opts, logger: opts.Logger}
	if m.rc.Engine == nil {
		return nil, fmt.Errorf("rows: no substitution engine")
	}

	out := make([]*core.Row, 0, len(records))
	for i, rec := range records {
		row, err := m.row(i, len(records), rec, cat)
		if err != nil {
			return nil, fmt.Errorf("materialize %s %d: %w", rec.Kind(), rec.ID(), err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *materializer) row(i, n int, rec core.Record, cat tags.Catalog) (*core.Row, error) {
	p := m.rc.Prefix

	meta := core.NewRow()
	m.metadata(meta, i, n, rec, cat)

	// scalars holds every non-pair value. Nested passes inherit from it the
	// enclosing tags their bodies use, so their output is final.
	scalars := core.NewRow()
	copyRow(scalars, meta)

	for _, t := range cat.Singles {
		if scalars.Has(t.Key) {
			continue
		}
		if v, ok := m.single(rec, t); ok {
			scalars.Set(t.Key, v)
		}
	}

	for k, v := range rec.Attributes().All() {
		if key := p.Key(k); !scalars.Has(key) {
			scalars.Set(key, core.Stringify(v))
		}
	}

	if m.rc.Settings.Features.MemberData {
		if ap, ok := rec.(core.AuthorProvider); ok && ap.Author() != nil {
			m.memberData(scalars, ap.Author(), p)
		}
	}

	// Declared tags nothing could serve render empty.
	for _, t := range cat.Singles {
		if !scalars.Has(t.Key) {
			scalars.Set(t.Key, "")
		}
	}

	row := core.NewRow()
	copyRow(row, meta)
	if err := m.pairs(row, rec, cat, scalars); err != nil {
		return nil, err
	}
	for k, v := range scalars.All() {
		if !row.Has(k) {
			row.Set(k, v)
		}
	}
	return row, nil
}

func copyRow(dst, src *core.Row) {
	for k, v := range src.All() {
		dst.Set(k, v)
	}
}

// inherit copies into inner the enclosing values of single tags body uses
// that no inner row serves. Pair markers and unknown tags are left alone.
func inherit(body string, inner []*core.Row, outer *core.Row) {
	if outer == nil || len(inner) == 0 {
		return
	}
	singles, _ := tags.Scan(body)
	for _, key := range singles {
		if slices.ContainsFunc(inner, func(r *core.Row) bool { return r.Has(key) }) {
			continue
		}
		v, ok := outer.Get(key)
		if !ok {
			continue
		}
		switch v.(type) {
		case []*core.Row, core.Occurrences:
			continue
		}
		for _, r := range inner {
			r.Set(key, v)
		}
	}
}

func (m *materializer) metadata(row *core.Row, i, n int, rec core.Record, cat tags.Catalog) {
	p := m.rc.Prefix
	total := m.opts.AbsoluteTotal
	if total == 0 {
		total = n
	}
	row.Set(p.Key("count"), strconv.Itoa(i+1))
	row.Set(p.Key("total_results"), strconv.Itoa(n))
	row.Set(p.Key("absolute_count"), strconv.Itoa(m.opts.Offset+i+1))
	row.Set(p.Key("absolute_results"), strconv.Itoa(total))
	row.Set(p.Key("category_request"), m.rc.Route.CategoryRequest)
	row.Set(p.Key("single_entry"), m.rc.Route.SingleEntry)

	if rec.Kind() != core.KindEntry {
		return
	}

	urlTitle := core.Stringify(attr(rec, "url_title"))
	entryID := strconv.Itoa(rec.ID())

	base := core.Stringify(attr(rec, "comment_url"))
	if base == "" {
		base = core.Stringify(attr(rec, "channel_url"))
	}
	base = strings.TrimRight(base, "/")
	row.Set(p.Key("comment_auto_path"), m.url(base))
	row.Set(p.Key("comment_url_title_auto_path"), m.url(join(base, urlTitle)))
	row.Set(p.Key("comment_entry_id_auto_path"), m.url(join(base, entryID)))
	row.Set(p.Key("entry_site_url"), m.url(""))

	for _, t := range cat.Singles {
		var last string
		switch t.Name {
		case "url_title_path", "title_permalink":
			last = urlTitle
		case "entry_id_path":
			last = entryID
		default:
			continue
		}
		row.Set(t.Key, core.PathVar{Path: join(strings.Trim(t.Param(t.Name), "/"), last)})
	}
}

func (m *materializer) url(path string) string {
	if m.rc.Resolver == nil {
		return path
	}
	return m.rc.Resolver.Resolve(path, false)
}

// pairs renders every pair tag. A key that occurs more than once in the
// template keeps one rendered value per occurrence.
func (m *materializer) pairs(row *core.Row, rec core.Record, cat tags.Catalog, outer *core.Row) error {
	values := make(map[string][]any)
	var order []string
	bodies := make(map[string][]string)

	for _, t := range cat.Pairs {
		v, err := m.pair(rec, t, outer)
		if err != nil {
			return fmt.Errorf("pair %q: %w", t.Name, err)
		}
		if _, ok := values[t.Key]; !ok {
			order = append(order, t.Key)
		}
		values[t.Key] = append(values[t.Key], v)
		bodies[t.Key] = append(bodies[t.Key], t.Body)
	}

	for _, key := range order {
		vs := values[key]
		if len(vs) == 1 {
			row.Set(key, vs[0])
			continue
		}
		occ := make(core.Occurrences, len(vs))
		for i, v := range vs {
			s, err := m.text(v, bodies[key][i])
			if err != nil {
				return err
			}
			occ[i] = s
		}
		row.Set(key, occ)
	}
	return nil
}

// text renders a pair value to a string. Sub-row lists are rendered
// against body.
func (m *materializer) text(v any, body string) (string, error) {
	if sub, ok := v.([]*core.Row); ok {
		return m.rc.Engine.Substitute(body, sub)
	}
	return core.Stringify(v), nil
}

// pair returns the value of one pair tag: a rendered string, or a list of
// sub-rows for simple multi-valued fields.
func (m *materializer) pair(rec core.Record, t tags.Tag, outer *core.Row) (any, error) {
	v, err := m.pairValue(rec, t, outer)
	if err != nil {
		return nil, err
	}
	n, _ := strconv.Atoi(strings.TrimSpace(t.Param("backspace")))
	if n <= 0 {
		return v, nil
	}
	s, err := m.text(v, t.Body)
	if err != nil {
		return nil, err
	}
	return Backspace(s, n), nil
}

func (m *materializer) pairValue(rec core.Record, t tags.Tag, outer *core.Row) (any, error) {
	features := m.rc.Settings.Features

	switch {
	case t.Name == core.RelParents || t.Name == core.RelSiblings:
		return m.related(rec, t, outer)
	case t.Name == "categories" && features.Categories:
		return m.categories(rec, t, outer)
	case features.CustomFields && rec.HasCustomField(t.Name):
		return m.field(rec.CustomField(t.Name), t, outer)
	}
	return "", nil
}

func (m *materializer) related(rec core.Record, t tags.Tag, outer *core.Row) (any, error) {
	params := t.Params.Clone()
	if names, ok := params.Get("field"); ok {
		params.Delete("field")
		var ids []string
		for _, name := range strings.Split(names, "|") {
			name = strings.TrimSpace(name)
			if m.rc.Fields == nil || name == "" {
				continue
			}
			if id, ok := m.rc.Fields.FieldID(name); ok {
				ids = append(ids, strconv.Itoa(id))
			}
		}
		if len(ids) == 0 {
			m.debug("no relationship field resolved", "tag", t.Key, "field", names)
			return "", nil
		}
		params.Set("field_id", strings.Join(ids, "|"))
	}

	children := rec.NestedCollection(t.Name, params)
	if len(children) == 0 {
		return "", nil
	}
	return m.nested(children, t, m.rc.Prefix.Child(t.Name), outer)
}

func (m *materializer) categories(rec core.Record, t tags.Tag, outer *core.Row) (any, error) {
	cp, ok := rec.(core.CategoryProvider)
	if !ok {
		return "", nil
	}
	list := categories.Filter(cp.Categories(), t.Params)
	if len(list) == 0 {
		return "", nil
	}
	body := tags.Discover(t.Body, m.rc.Prefix)
	rows := categories.Rows(m.rc, list, categories.PathTags(body))
	inherit(t.Body, rows, outer)
	return m.rc.Engine.Substitute(t.Body, rows)
}

func (m *materializer) field(fv core.FieldValue, t tags.Tag, outer *core.Row) (any, error) {
	if fv == nil || fv.IsEmpty() {
		return "", nil
	}
	switch v := fv.(type) {
	case core.Collection:
		prefix := m.rc.Prefix
		if v.Namespaced {
			prefix = prefix.Child(t.Name)
		}
		return m.nested(v.Records, t, prefix, outer)
	case core.List:
		p := m.rc.Prefix
		sub := make([]*core.Row, 0, len(v))
		for _, item := range limitList(v, t.Param("limit")) {
			r := core.NewRow()
			for k, iv := range item.All() {
				r.Set(p.Key(k), core.Stringify(iv))
			}
			sub = append(sub, r)
		}
		inherit(t.Body, sub, outer)
		return sub, nil
	case core.Date:
		return FormatDate(v.Time, t.Param("format")), nil
	}
	return core.Stringify(fv), nil
}

// nested renders records in their own pass under prefix, with a catalog
// built from the pair body. Enclosing tags in the body are filled from
// outer, so the result needs no further substitution.
func (m *materializer) nested(records []core.Record, t tags.Tag, prefix core.Prefix, outer *core.Row) (string, error) {
	rc := m.rc.WithPrefix(prefix)
	cat := tags.Builder{Logger: m.logger}.Discover(t.Body, prefix)

	sub, err := Materialize(records, cat, Options{Context: rc, Logger: m.logger})
	if err != nil {
		return "", err
	}
	inherit(t.Body, sub, outer)
	return rc.Engine.Substitute(t.Body, sub)
}

// single returns the value of a single tag that needs more than a plain
// attribute copy. Tags it cannot serve are left to the attribute pass.
func (m *materializer) single(rec core.Record, t tags.Tag) (any, bool) {
	format, hasFormat := t.Params.Get("format")

	if m.rc.Settings.Features.CustomFields && rec.HasCustomField(t.Name) {
		switch v := rec.CustomField(t.Name).(type) {
		case nil:
			return "", true
		case core.Date:
			if v.IsZero() {
				return "", true
			}
			return FormatDate(v.Time, format), true
		case core.List:
			return listText(v), true
		case core.Collection:
			return strconv.Itoa(len(v.Records)), true
		default:
			if hasFormat {
				return "", true
			}
			return core.Stringify(v), true
		}
	}

	if !hasFormat {
		return nil, false
	}
	v, ok := rec.Attribute(t.Name)
	if !ok {
		return "", true
	}
	ts, ok := core.AsTime(v)
	if !ok {
		return "", true
	}
	return FormatDate(ts, format), true
}

func (m *materializer) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

// Backspace removes the last n characters of s.
func Backspace(s string, n int) string {
	if n <= 0 {
		return s
	}
	if utf8.RuneCountInString(s) <= n {
		return ""
	}
	for ; n > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

func attr(rec core.Record, name string) any {
	v, _ := rec.Attribute(name)
	return v
}

func join(base, last string) string {
	switch {
	case base == "":
		return last
	case last == "":
		return base
	}
	return base + "/" + last
}

func listText(l core.List) string {
	parts := make([]string, 0, len(l))
	for _, item := range l {
		if item.Len() == 1 {
			parts = append(parts, core.Stringify(item.Value(item.Keys()[0])))
			continue
		}
		parts = append(parts, core.Stringify(item.Value("item")))
	}
	return strings.Join(parts, "|")
}

func limitList(l core.List, raw string) core.List {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 || n >= len(l) {
		return l
	}
	return l[:n]
}
