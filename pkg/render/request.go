package render

import (
	"strconv"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/tags"
)

// DefaultLimit caps a listing when no limit parameter is given.
const DefaultLimit = 100

// Request is one render invocation.
type Request struct {
	// Template is the tag body to render.
	Template string
	// Path is the current request path. It drives routing, active
	// categories and pagination links.
	Path string
	// Base is the leading part of Path that addresses the template itself
	// (e.g. "blog/index"). It is removed before route parameters are derived.
	Base string
	// Params are the tag parameters (limit, orderby, disable, ...).
	Params *core.Params
}

func (r Request) param(key string) string {
	return strings.TrimSpace(r.Params.Value(key))
}

func (r Request) intParam(key string, def int) int {
	n, err := strconv.Atoi(r.param(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// flag reads yes/no style parameters.
func (r Request) flag(key string, def bool) bool {
	switch strings.ToLower(r.param(key)) {
	case "yes", "y", "on", "true", "1":
		return true
	case "no", "n", "off", "false", "0":
		return false
	}
	return def
}

// dynamicPath returns the part of the path that carries route parameters.
func (r Request) dynamicPath(path string) string {
	trimmed := strings.Trim(path, "/")
	base := strings.Trim(r.Base, "/")
	if base == "" {
		return trimmed
	}
	if trimmed == base {
		return ""
	}
	if rest, ok := strings.CutPrefix(trimmed, base+"/"); ok {
		return rest
	}
	return trimmed
}

// ApplyDisable switches off the features named in a pipe-separated
// disable parameter.
func ApplyDisable(f core.Features, raw string) core.Features {
	for _, name := range strings.Split(raw, "|") {
		switch strings.TrimSpace(name) {
		case "custom_fields":
			f.CustomFields = false
		case "member_data", "members":
			f.MemberData = false
		case "categories":
			f.Categories = false
			f.CategoryFields = false
		case "category_fields":
			f.CategoryFields = false
		case "pagination":
			f.Pagination = false
		}
	}
	return f
}

// ExtractNoResults removes the {if no_results}…{/if} block from template and
// returns the remaining template and the block body.
func ExtractNoResults(template string) (rest, fragment string) {
	spans := tags.Spans(template, "if no_results", "if")
	if len(spans) == 0 {
		return template, ""
	}
	sp := spans[0]
	return template[:sp.Start] + template[sp.End:], sp.Body(template)
}
