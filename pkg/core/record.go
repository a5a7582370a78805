package core

import (
	"strconv"
	"strings"
)

// Kind identifies a record variant.
type Kind string

const (
	KindEntry    Kind = "entry"
	KindCategory Kind = "category"
	KindAuthor   Kind = "author"
	KindGridRow  Kind = "grid_row"
)

// Reserved relationship names served by NestedCollection.
const (
	RelParents  = "parents"
	RelSiblings = "siblings"
)

// Record is the capability set the renderer needs from any domain record.
type Record interface {
	Kind() Kind
	ID() int
	// Attribute returns a native attribute.
	Attribute(name string) (any, bool)
	// Attributes returns all native attributes in source order.
	Attributes() *Attributes
	HasCustomField(name string) bool
	// CustomField returns nil when the field is absent.
	CustomField(name string) FieldValue
	// NestedCollection returns the related records known under name,
	// narrowed by params (e.g. field_id="3|4").
	NestedCollection(name string, params *Params) []Record
}

// AuthorProvider is implemented by records that carry member data.
type AuthorProvider interface {
	Author() *Author
}

// CategoryProvider is implemented by records assigned to categories.
type CategoryProvider interface {
	Categories() []*Category
}

// Relation links a record to a related record through a field.
type Relation struct {
	FieldID int
	Record  Record
}

// Entry is a channel entry.
type Entry struct {
	EntryID   int
	Attrs     *Attributes
	Fields    map[string]FieldValue
	Member    *Author
	Cats      []*Category
	Relations map[string][]Relation
}

func (e *Entry) Kind() Kind { return KindEntry }
func (e *Entry) ID() int    { return e.EntryID }

func (e *Entry) Attribute(name string) (any, bool) { return e.Attrs.Get(name) }
func (e *Entry) Attributes() *Attributes           { return e.Attrs }

func (e *Entry) HasCustomField(name string) bool {
	_, ok := e.Fields[name]
	return ok
}

func (e *Entry) CustomField(name string) FieldValue { return e.Fields[name] }

func (e *Entry) Author() *Author         { return e.Member }
func (e *Entry) Categories() []*Category { return e.Cats }

// NestedCollection returns the entry's parents or siblings. A field_id
// parameter restricts the result to relations made through those fields.
func (e *Entry) NestedCollection(name string, params *Params) []Record {
	rels := e.Relations[name]
	if len(rels) == 0 {
		return nil
	}
	var allowed map[int]bool
	if raw, ok := params.Get("field_id"); ok {
		allowed = make(map[int]bool)
		for _, s := range strings.Split(raw, "|") {
			if id, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				allowed[id] = true
			}
		}
	}
	seen := make(map[int]bool)
	var out []Record
	for _, rel := range rels {
		if allowed != nil && !allowed[rel.FieldID] {
			continue
		}
		if seen[rel.Record.ID()] {
			continue
		}
		seen[rel.Record.ID()] = true
		out = append(out, rel.Record)
	}
	return out
}

// Category is a node of a category forest.
type Category struct {
	CategoryID int
	ParentID   int
	GroupID    int
	Attrs      *Attributes
	Fields     *Attributes
	Children   []*Category
}

func (c *Category) Kind() Kind { return KindCategory }
func (c *Category) ID() int    { return c.CategoryID }

func (c *Category) Attribute(name string) (any, bool) { return c.Attrs.Get(name) }
func (c *Category) Attributes() *Attributes           { return c.Attrs }

func (c *Category) HasCustomField(name string) bool { return c.Fields.Has(name) }

func (c *Category) CustomField(name string) FieldValue {
	v, ok := c.Fields.Get(name)
	if !ok {
		return nil
	}
	if fv, ok := v.(FieldValue); ok {
		return fv
	}
	return Text(Stringify(v))
}

// NestedCollection serves "children".
func (c *Category) NestedCollection(name string, _ *Params) []Record {
	if name != "children" {
		return nil
	}
	out := make([]Record, len(c.Children))
	for i, child := range c.Children {
		out[i] = child
	}
	return out
}

// Walk visits the forest in pre-order.
func Walk(forest []*Category, fn func(c *Category, depth int)) {
	var visit func(nodes []*Category, depth int)
	visit = func(nodes []*Category, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(forest, 0)
}

// Author is a member record.
type Author struct {
	MemberID int
	Attrs    *Attributes
}

func (a *Author) Kind() Kind { return KindAuthor }
func (a *Author) ID() int    { return a.MemberID }

func (a *Author) Attribute(name string) (any, bool) { return a.Attrs.Get(name) }
func (a *Author) Attributes() *Attributes           { return a.Attrs }

func (a *Author) HasCustomField(string) bool                { return false }
func (a *Author) CustomField(string) FieldValue             { return nil }
func (a *Author) NestedCollection(string, *Params) []Record { return nil }

// GridRow is one row of a grid or matrix field. Its cells are exposed both
// as attributes and as custom fields.
type GridRow struct {
	RowID int
	Cells *Attributes
}

func (g *GridRow) Kind() Kind { return KindGridRow }
func (g *GridRow) ID() int    { return g.RowID }

func (g *GridRow) Attribute(name string) (any, bool) { return g.Cells.Get(name) }
func (g *GridRow) Attributes() *Attributes           { return g.Cells }

func (g *GridRow) HasCustomField(name string) bool { return g.Cells.Has(name) }

func (g *GridRow) CustomField(name string) FieldValue {
	v, ok := g.Cells.Get(name)
	if !ok {
		return nil
	}
	if fv, ok := v.(FieldValue); ok {
		return fv
	}
	return Text(Stringify(v))
}

func (g *GridRow) NestedCollection(string, *Params) []Record { return nil }

var (
	_ Record           = (*Entry)(nil)
	_ Record           = (*Category)(nil)
	_ Record           = (*Author)(nil)
	_ Record           = (*GridRow)(nil)
	_ AuthorProvider   = (*Entry)(nil)
	_ CategoryProvider = (*Entry)(nil)
)
