package fs

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alexmglover/Deep/pkg/core"
)

// entryDoc is an entry together with the data queries filter on.
type entryDoc struct {
	*core.Entry
	DocID       string
	Date        time.Time
	Channel     string
	Status      string
	AuthorID    int
	CategoryIDs []int
	rawFields   map[string]any
}

// vault is an immutable snapshot of the domain built from parsed documents.
type vault struct {
	fields   map[string]core.FieldDef
	fieldMap core.FieldMap
	channels map[string]*core.Attributes
	authors  map[int]*core.Author
	cats     map[int]*core.Category
	forest   []*core.Category
	entries  []*entryDoc
	byID     map[int]*entryDoc
}

// Reserved entry frontmatter keys that are not copied as attributes.
const (
	keyFields     = "fields"
	keyCategories = "categories"
	keyChannel    = "channel"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func buildVault(sections map[string][]Document, logger *slog.Logger) *vault {
	v := &vault{
		fields:   make(map[string]core.FieldDef),
		fieldMap: make(core.FieldMap),
		channels: make(map[string]*core.Attributes),
		authors:  make(map[int]*core.Author),
		cats:     make(map[int]*core.Category),
		byID:     make(map[int]*entryDoc),
	}
	warn := func(msg string, args ...any) {
		if logger != nil {
			logger.Warn(msg, args...)
		}
	}

	for _, doc := range sections[SectionFields] {
		id, _ := core.AsInt(doc.Metadata["id"])
		name := core.Stringify(doc.Metadata["name"])
		if id == 0 || name == "" {
			warn("skipping field declaration", "doc", doc.ID)
			continue
		}
		typ := core.FieldType(core.Stringify(doc.Metadata["type"]))
		if typ == "" {
			typ = core.FieldText
		}
		v.fields[name] = core.FieldDef{ID: id, Name: name, Type: typ}
		v.fieldMap[name] = id
	}

	for _, doc := range sections[SectionChannels] {
		m := cloneMeta(doc.Metadata)
		name := core.Stringify(m["channel_name"])
		if name == "" {
			name = path.Base(doc.ID)
			m["channel_name"] = name
		}
		v.channels[name] = attributes(m)
	}

	for _, doc := range sections[SectionAuthors] {
		id, ok := core.AsInt(doc.Metadata["member_id"])
		if !ok || id == 0 {
			warn("skipping author without member_id", "doc", doc.ID)
			continue
		}
		v.authors[id] = &core.Author{MemberID: id, Attrs: attributes(doc.Metadata)}
	}

	v.buildCategories(sections[SectionCategories], warn)

	for _, doc := range sections[SectionEntries] {
		e, err := v.buildEntry(doc)
		if err != nil {
			warn("skipping entry", "doc", doc.ID, "error", err)
			continue
		}
		if _, dup := v.byID[e.EntryID]; dup {
			warn("skipping duplicate entry_id", "doc", doc.ID, "entry_id", e.EntryID)
			continue
		}
		v.entries = append(v.entries, e)
		v.byID[e.EntryID] = e
	}
	v.linkRelationships()
	return v
}

type categoryDoc struct {
	node  *core.Category
	order int
}

func (v *vault) buildCategories(docs []Document, warn func(string, ...any)) {
	var all []categoryDoc
	for _, doc := range docs {
		// Documents are shared with the parse cache.
		m := cloneMeta(doc.Metadata)
		id, ok := core.AsInt(m["category_id"])
		if !ok || id == 0 {
			warn("skipping category without category_id", "doc", doc.ID)
			continue
		}
		parent, _ := core.AsInt(m["parent_id"])
		group, _ := core.AsInt(m["group_id"])
		order, _ := core.AsInt(m["category_order"])

		fields := core.NewAttributes()
		if raw, ok := m[keyFields].(map[string]any); ok {
			fields = attributes(raw)
		}
		delete(m, keyFields)
		if core.Stringify(m["category_url_title"]) == "" {
			m["category_url_title"] = slug(core.Stringify(m["category_name"]))
		}

		node := &core.Category{
			CategoryID: id,
			ParentID:   parent,
			GroupID:    group,
			Attrs:      attributes(m),
			Fields:     fields,
		}
		v.cats[id] = node
		all = append(all, categoryDoc{node: node, order: order})
	}

	slices.SortStableFunc(all, func(a, b categoryDoc) int {
		return cmp.Or(
			cmp.Compare(a.node.GroupID, b.node.GroupID),
			cmp.Compare(a.order, b.order),
			cmp.Compare(a.node.CategoryID, b.node.CategoryID),
		)
	})
	for _, c := range all {
		if parent, ok := v.cats[c.node.ParentID]; ok && c.node.ParentID != c.node.CategoryID {
			parent.Children = append(parent.Children, c.node)
			continue
		}
		v.forest = append(v.forest, c.node)
	}
}

func (v *vault) buildEntry(doc Document) (*entryDoc, error) {
	m := cloneMeta(doc.Metadata)
	id, ok := core.AsInt(m["entry_id"])
	if !ok || id == 0 {
		return nil, fmt.Errorf("missing entry_id")
	}

	e := &entryDoc{
		DocID:   doc.ID,
		Channel: core.Stringify(m[keyChannel]),
		Status:  core.Stringify(m["status"]),
	}
	if e.Status == "" {
		e.Status = "open"
		m["status"] = e.Status
	}
	if core.Stringify(m["url_title"]) == "" {
		m["url_title"] = slug(path.Base(doc.ID))
	}
	if t, ok := parseTime(m["entry_date"]); ok {
		e.Date = t
		m["entry_date"] = t
	}
	e.AuthorID, _ = core.AsInt(m["author_id"])

	for _, raw := range asSlice(m[keyCategories]) {
		if cid, ok := core.AsInt(raw); ok {
			e.CategoryIDs = append(e.CategoryIDs, cid)
		}
	}

	rawFields, _ := m[keyFields].(map[string]any)
	delete(m, keyFields)
	delete(m, keyCategories)

	attrs := core.NewAttributes()
	attrs.Set("entry_id", id)
	if ch, ok := v.channels[e.Channel]; ok {
		for k, val := range ch.All() {
			attrs.Set(k, val)
		}
	}
	for k, val := range attributes(m).All() {
		attrs.Set(k, val)
	}

	e.Entry = &core.Entry{
		EntryID:   id,
		Attrs:     attrs,
		Fields:    make(map[string]core.FieldValue),
		Member:    v.authors[e.AuthorID],
		Relations: make(map[string][]core.Relation),
	}
	for _, cid := range e.CategoryIDs {
		if c, ok := v.cats[cid]; ok {
			e.Cats = append(e.Cats, c)
		}
	}

	for name, raw := range rawFields {
		if def, ok := v.fields[name]; ok && def.Type.Namespaced() {
			continue // linked once every entry is known
		}
		e.Fields[name] = v.fieldValue(name, raw)
	}
	if _, ok := e.Fields["body"]; !ok && strings.TrimSpace(doc.Content) != "" {
		e.Fields["body"] = core.Text(doc.Content)
	}
	e.rawFields = rawFields
	return e, nil
}

// fieldValue converts a raw frontmatter value according to the declared
// field type, or infers one for undeclared fields.
func (v *vault) fieldValue(name string, raw any) core.FieldValue {
	typ := v.fields[name].Type
	if typ == "" {
		typ = inferType(raw)
	}
	switch {
	case typ == core.FieldDate:
		t, _ := parseTime(raw)
		return core.Date{Time: t}
	case typ.Multi():
		var list core.List
		for _, item := range asSlice(raw) {
			if m, ok := item.(map[string]any); ok {
				list = append(list, attributes(m))
				continue
			}
			a := core.NewAttributes()
			a.Set("item", item)
			list = append(list, a)
		}
		return list
	case typ == core.FieldGrid || typ == core.FieldMatrix:
		var records []core.Record
		for i, item := range asSlice(raw) {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			records = append(records, &core.GridRow{RowID: i + 1, Cells: attributes(m)})
		}
		return core.Collection{Records: records}
	}
	if t, ok := raw.(time.Time); ok {
		return core.Date{Time: t}
	}
	return core.Text(core.Stringify(raw))
}

func inferType(raw any) core.FieldType {
	switch v := raw.(type) {
	case time.Time:
		return core.FieldDate
	case []any:
		for _, item := range v {
			if _, ok := item.(map[string]any); ok {
				return core.FieldGrid
			}
		}
		return core.FieldCheckboxes
	}
	return core.FieldText
}

// linkRelationships resolves relationship fields into collections and
// records, for every related entry, its parents and its siblings.
func (v *vault) linkRelationships() {
	for _, parent := range v.entries {
		names := slices.Sorted(maps.Keys(parent.rawFields))
		for _, name := range names {
			raw := parent.rawFields[name]
			def, ok := v.fields[name]
			if !ok || !def.Type.Namespaced() {
				continue
			}
			var children []*entryDoc
			for _, item := range asSlice(raw) {
				if id, ok := core.AsInt(item); ok {
					if child, ok := v.byID[id]; ok && child != parent {
						children = append(children, child)
					}
				}
			}

			records := make([]core.Record, len(children))
			for i, child := range children {
				records[i] = child.Entry
				child.Relations[core.RelParents] = append(child.Relations[core.RelParents],
					core.Relation{FieldID: def.ID, Record: parent.Entry})
				for _, sibling := range children {
					if sibling != child {
						child.Relations[core.RelSiblings] = append(child.Relations[core.RelSiblings],
							core.Relation{FieldID: def.ID, Record: sibling.Entry})
					}
				}
			}
			parent.Fields[name] = core.Collection{Records: records, Namespaced: true}
		}
	}
}

// attributes converts a decoded mapping into attributes with sorted keys.
func attributes(m map[string]any) *core.Attributes {
	a := core.NewAttributes()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		a.Set(k, m[k])
	}
	return a
}

func cloneMeta(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	return maps.Clone(m)
}

func asSlice(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	case string:
		var out []any
		for _, s := range strings.Split(v, "|") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []any{raw}
}

func parseTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(n, 0).UTC(), true
		}
	default:
		if n, ok := core.AsInt(raw); ok {
			return time.Unix(int64(n), 0).UTC(), true
		}
	}
	return time.Time{}, false
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
