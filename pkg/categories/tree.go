package categories

import (
	"fmt"
	"html"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/tags"
)

// Options configures a forest render.
type Options struct {
	Context core.RenderContext
	// ID and Class are set on the outermost <ul> of a nested render.
	ID    string
	Class string
}

// Nested renders the forest as nested lists: each node's rendered template
// sits in an <li> followed by a <ul> of its children. An empty forest
// renders the bare wrapper.
func Nested(forest []*core.Category, template string, opts Options) (string, error) {
	if opts.Context.Engine == nil {
		return "", fmt.Errorf("categories: no substitution engine")
	}
	pathTags := PathTags(tags.Discover(template, opts.Context.Prefix))

	var b strings.Builder
	b.WriteString("<ul")
	if opts.ID != "" {
		fmt.Fprintf(&b, ` id="%s"`, html.EscapeString(opts.ID))
	}
	if opts.Class != "" {
		fmt.Fprintf(&b, ` class="%s"`, html.EscapeString(opts.Class))
	}
	b.WriteString(">")
	if err := nestedItems(&b, forest, template, pathTags, opts.Context); err != nil {
		return "", err
	}
	b.WriteString("</ul>")
	return b.String(), nil
}

func nestedItems(b *strings.Builder, nodes []*core.Category, template string, pathTags []tags.Tag, rc core.RenderContext) error {
	for _, c := range nodes {
		out, err := rc.Engine.Substitute(template, []*core.Row{Shape(rc, c, pathTags)})
		if err != nil {
			return fmt.Errorf("render category %d: %w", c.CategoryID, err)
		}
		b.WriteString("<li>")
		b.WriteString(out)
		if len(c.Children) > 0 {
			b.WriteString("<ul>")
			if err := nestedItems(b, c.Children, template, pathTags, rc); err != nil {
				return err
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</li>")
	}
	return nil
}

// Flat renders every node in pre-order with a single engine call. An empty
// forest yields core.ErrEmptyCollection.
func Flat(forest []*core.Category, template string, opts Options) (string, error) {
	rc := opts.Context
	if rc.Engine == nil {
		return "", fmt.Errorf("categories: no substitution engine")
	}
	rows := Rows(rc, Flatten(forest), PathTags(tags.Discover(template, rc.Prefix)))
	if len(rows) == 0 {
		return "", core.ErrEmptyCollection
	}
	out, err := rc.Engine.Substitute(template, rows)
	if err != nil {
		return "", fmt.Errorf("render categories: %w", err)
	}
	return out, nil
}

// Flatten lists the forest in pre-order.
func Flatten(forest []*core.Category) []*core.Category {
	var out []*core.Category
	core.Walk(forest, func(c *core.Category, _ int) {
		out = append(out, c)
	})
	return out
}

// Rows shapes each category of list.
func Rows(rc core.RenderContext, list []*core.Category, pathTags []tags.Tag) []*core.Row {
	rows := make([]*core.Row, 0, len(list))
	for _, c := range list {
		rows = append(rows, Shape(rc, c, pathTags))
	}
	return rows
}
