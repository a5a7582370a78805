package categories

import (
	"strconv"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
)

// Filter narrows a category list by the show, show_group and limit
// parameters. show and show_group take pipe-separated ids, optionally led
// by "not " to exclude them instead.
func Filter(list []*core.Category, params *core.Params) []*core.Category {
	show, showNot := idSet(params.Value("show"))
	groups, groupsNot := idSet(params.Value("show_group"))
	limit, _ := strconv.Atoi(strings.TrimSpace(params.Value("limit")))

	var out []*core.Category
	for _, c := range list {
		if show != nil && show[c.CategoryID] == showNot {
			continue
		}
		if groups != nil && groups[c.GroupID] == groupsNot {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// GroupIDs parses a pipe-separated category_group parameter.
func GroupIDs(raw string) []int {
	var out []int
	for _, s := range strings.Split(raw, "|") {
		if id, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func idSet(raw string) (map[int]bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	negate := false
	if rest, ok := strings.CutPrefix(raw, "not "); ok {
		negate = true
		raw = rest
	}
	set := make(map[int]bool)
	for _, id := range GroupIDs(raw) {
		set[id] = true
	}
	return set, negate
}
