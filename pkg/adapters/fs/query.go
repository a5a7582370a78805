package fs

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alexmglover/Deep/pkg/core"
)

// query selects, filters and sorts entries. It does not page. Route
// values filter only when the route is dynamic; a related-categories route
// contributes the related entry alone.
func (v *vault) query(q core.Query) ([]*entryDoc, error) {
	p := q.Params
	glob := strings.TrimSpace(p.Value("glob"))
	if glob != "" && !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("invalid glob %q", glob)
	}

	related, ok := v.relatedTo(q.Route)
	if !ok {
		return nil, nil
	}

	status := p.Value("status")
	if strings.TrimSpace(status) == "" {
		status = "open"
	}

	var out []*entryDoc
	for _, e := range v.entries {
		if q.Route.Dynamic && !v.matchRoute(e, q.Route) {
			continue
		}
		if related != nil && (e == related || !sharesCategory(e, related)) {
			continue
		}
		if !matchList(p.Value("channel"), e.Channel) ||
			!matchList(status, e.Status) ||
			!matchList(p.Value("author_id"), strconv.Itoa(e.AuthorID)) ||
			!matchList(p.Value("entry_id"), strconv.Itoa(e.EntryID)) ||
			!matchList(p.Value("url_title"), core.Stringify(e.Attrs.Value("url_title"))) ||
			!matchAny(p.Value("category"), e.CategoryIDs) {
			continue
		}
		if glob != "" {
			if ok, _ := doublestar.Match(glob, e.DocID); !ok {
				continue
			}
		}
		out = append(out, e)
	}

	sortEntries(out, p.Value("orderby"), p.Value("sort"))
	return out, nil
}

// relatedTo resolves the entry named by a related-categories route. It
// reports false when the route names an entry that does not exist.
func (v *vault) relatedTo(r core.RouteParameters) (*entryDoc, bool) {
	if id := r.Get(core.ParamRelatedEntryID); id != "" {
		n, _ := strconv.Atoi(id)
		e, ok := v.byID[n]
		return e, ok
	}
	if title := r.Get(core.ParamRelatedURLTitle); title != "" {
		for _, e := range v.entries {
			if core.Stringify(e.Attrs.Value("url_title")) == title {
				return e, true
			}
		}
		return nil, false
	}
	return nil, true
}

func (v *vault) matchRoute(e *entryDoc, r core.RouteParameters) bool {
	for key, want := range r.Values {
		switch key {
		case core.ParamYear:
			if e.Date.IsZero() || e.Date.Format("2006") != want {
				return false
			}
		case core.ParamMonth:
			if e.Date.IsZero() || e.Date.Format("01") != want {
				return false
			}
		case core.ParamDay:
			if e.Date.IsZero() || e.Date.Format("02") != want {
				return false
			}
		case core.ParamEntryID:
			if strconv.Itoa(e.EntryID) != want {
				return false
			}
		case core.ParamURLTitle:
			if core.Stringify(e.Attrs.Value("url_title")) != want {
				return false
			}
		case core.ParamCategoryID:
			id, _ := strconv.Atoi(want)
			if !slices.Contains(e.CategoryIDs, id) {
				return false
			}
		case core.ParamCategoryName:
			if !slices.ContainsFunc(e.Cats, func(c *core.Category) bool {
				return core.Stringify(c.Attrs.Value("category_url_title")) == want
			}) {
				return false
			}
		}
	}
	return true
}

func sharesCategory(a, b *entryDoc) bool {
	for _, id := range a.CategoryIDs {
		if slices.Contains(b.CategoryIDs, id) {
			return true
		}
	}
	return false
}

// matchList checks value against a pipe-separated list, optionally led by
// "not ". An empty list matches everything.
func matchList(raw, value string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	negate := false
	if rest, ok := strings.CutPrefix(raw, "not "); ok {
		negate, raw = true, rest
	}
	found := false
	for _, item := range strings.Split(raw, "|") {
		if strings.TrimSpace(item) == value {
			found = true
			break
		}
	}
	return found != negate
}

// matchAny is matchList over a set of ids: it matches when any id is listed.
func matchAny(raw string, ids []int) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	negate := strings.HasPrefix(raw, "not ")
	for _, id := range ids {
		if matchList(raw, strconv.Itoa(id)) != negate {
			return !negate
		}
	}
	return negate
}

// sortEntries orders entries by an attribute. The default is entry_date,
// newest first; ties fall back to entry_id.
func sortEntries(entries []*entryDoc, orderby, dir string) {
	orderby = strings.TrimSpace(orderby)
	if orderby == "" || orderby == "date" {
		orderby = "entry_date"
	}
	desc := !strings.EqualFold(strings.TrimSpace(dir), "asc")

	slices.SortStableFunc(entries, func(a, b *entryDoc) int {
		c := compareBy(a, b, orderby)
		if desc {
			c = -c
		}
		return cmp.Or(c, cmp.Compare(a.EntryID, b.EntryID))
	})
}

func compareBy(a, b *entryDoc, key string) int {
	switch key {
	case "entry_date":
		return a.Date.Compare(b.Date)
	case "entry_id":
		return cmp.Compare(a.EntryID, b.EntryID)
	}
	av, bv := sortValue(a, key), sortValue(b, key)
	if an, err := strconv.ParseFloat(av, 64); err == nil {
		if bn, err := strconv.ParseFloat(bv, 64); err == nil {
			return cmp.Compare(an, bn)
		}
	}
	return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
}

func sortValue(e *entryDoc, key string) string {
	if v, ok := e.Attrs.Get(key); ok {
		return core.Stringify(v)
	}
	if fv, ok := e.Fields[key]; ok {
		return core.Stringify(fv)
	}
	return ""
}
