// Package categories renders category forests and defines the attribute
// shape every category is given, whether it is rendered as navigation or
// inside an entry's {categories} pair.
package categories

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/tags"
)

// DefaultReservedWord introduces category names in paths when the site
// routes categories by name.
const DefaultReservedWord = "category"

// shapeAttributes is the allow-list of native category attributes.
var shapeAttributes = []string{
	"category_name",
	"category_url_title",
	"category_description",
	"category_image",
}

// Segment returns the canonical path segment that selects c.
func Segment(c *core.Category, s core.Settings) string {
	if s.UseCategoryName {
		word := s.ReservedCategoryWord
		if word == "" {
			word = DefaultReservedWord
		}
		return word + "/" + core.Stringify(c.Attrs.Value("category_url_title"))
	}
	return "C" + strconv.Itoa(c.CategoryID)
}

var pageSuffix = regexp.MustCompile(`/P\d+$`)

// Active reports whether currentPath selects c. A trailing page segment
// (/P<n>) and a trailing slash are ignored.
func Active(c *core.Category, currentPath string, s core.Settings) bool {
	seg := Segment(c, s)
	if strings.HasSuffix(seg, "/") {
		return false
	}
	path := strings.TrimSuffix(currentPath, "/")
	if endsWithSegment(path, seg) {
		return true
	}
	trimmed := pageSuffix.ReplaceAllString(path, "")
	return trimmed != path && endsWithSegment(trimmed, seg)
}

func endsWithSegment(path, seg string) bool {
	return path == seg || strings.HasSuffix(path, "/"+seg)
}

// Shape builds the row for one category under rc.Prefix. pathTags are the
// {path="…"} single tags of the template being rendered; each yields a path
// variable joining its parameter with the category segment.
func Shape(rc core.RenderContext, c *core.Category, pathTags []tags.Tag) *core.Row {
	p := rc.Prefix
	row := core.NewRow()

	row.Set(p.Key("category_id"), strconv.Itoa(c.CategoryID))
	for _, name := range shapeAttributes {
		row.Set(p.Key(name), core.Stringify(c.Attrs.Value(name)))
	}
	row.Set(p.Key("category_group"), strconv.Itoa(c.GroupID))
	row.Set(p.Key("parent_id"), strconv.Itoa(c.ParentID))

	if rc.Settings.Features.CategoryFields {
		for name, v := range c.Fields.All() {
			row.Set(p.Key(name), core.Stringify(v))
		}
	}

	seg := Segment(c, rc.Settings)
	row.Set(p.Key("active"), Active(c, rc.CurrentPath, rc.Settings))
	row.Set(p.Key("path"), core.PathVar{Path: seg})
	for _, t := range pathTags {
		base := strings.Trim(t.Param("path"), "/")
		if base == "" {
			continue
		}
		row.Set(t.Key, core.PathVar{Path: base + "/" + seg})
	}
	return row
}

// PathTags returns the {path="…"} tags of a catalog.
func PathTags(cat tags.Catalog) []tags.Tag {
	var out []tags.Tag
	for _, t := range cat.SinglesNamed("path") {
		if t.Param("path") != "" {
			out = append(out, t)
		}
	}
	return out
}
