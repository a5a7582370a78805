// Package route turns a request path into the implicit filters of a listing.
package route

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
)

var (
	datePattern       = regexp.MustCompile(`^(\d{4})/(\d{2})(?:/(\d{2}))?$`)
	numericPattern    = regexp.MustCompile(`^\d+$`)
	categoryIDPattern = regexp.MustCompile(`^C(\d+)$`)
	paginationPattern = regexp.MustCompile(`(?:^|/)P(\d+)/?$`)
)

// Config controls how paths are interpreted.
type Config struct {
	UseCategoryName       bool
	ReservedCategoryWord  string
	RelatedCategoriesMode bool
}

// ConfigFrom extracts the routing flags from site settings.
func ConfigFrom(s core.Settings) Config {
	return Config{
		UseCategoryName:       s.UseCategoryName,
		ReservedCategoryWord:  s.ReservedCategoryWord,
		RelatedCategoriesMode: s.RelatedCategoriesMode,
	}
}

// Derive applies the routing rules to path in fixed precedence; the first
// rule that matches wins:
//
//  1. YYYY/MM[/DD]           -> year, month[, day]
//  2. numeric last segment   -> entry_id (related mode: related_entry_id)
//  3. <reserved>/<name>      -> category_name   (UseCategoryName only)
//  4. C<digits>              -> category_id     (!UseCategoryName only)
//  5. anything else          -> url_title (related mode: related_url_title)
//
// In related-categories mode a path that does not identify a single entry
// yields core.ErrNoMatch. The path must not carry a pagination suffix.
func Derive(path string, cfg Config) (core.RouteParameters, error) {
	params := core.RouteParameters{Values: map[string]string{}, Dynamic: true}

	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return params, nil
	}
	segments := strings.Split(trimmed, "/")
	last := segments[len(segments)-1]

	switch {
	case datePattern.MatchString(trimmed):
		m := datePattern.FindStringSubmatch(trimmed)
		params.Values[core.ParamYear] = m[1]
		params.Values[core.ParamMonth] = m[2]
		if m[3] != "" {
			params.Values[core.ParamDay] = m[3]
		}

	case numericPattern.MatchString(last):
		if cfg.RelatedCategoriesMode {
			params.SingleEntry = true
			params.Dynamic = false
			params.Values[core.ParamRelatedEntryID] = last
		} else {
			params.Values[core.ParamEntryID] = last
		}

	case cfg.UseCategoryName && len(segments) >= 2 && cfg.ReservedCategoryWord != "" &&
		segments[len(segments)-2] == cfg.ReservedCategoryWord:
		params.Values[core.ParamCategoryName] = last
		params.CategoryRequest = true

	case !cfg.UseCategoryName && categoryIDPattern.MatchString(last):
		params.Values[core.ParamCategoryID] = categoryIDPattern.FindStringSubmatch(last)[1]
		params.CategoryRequest = true

	default:
		if cfg.RelatedCategoriesMode {
			params.SingleEntry = true
			params.Dynamic = false
			params.Values[core.ParamRelatedURLTitle] = last
		} else {
			params.Values[core.ParamURLTitle] = last
		}
	}

	if cfg.RelatedCategoriesMode && !params.SingleEntry {
		return core.RouteParameters{}, fmt.Errorf("path %q does not name an entry: %w", path, core.ErrNoMatch)
	}
	return params, nil
}

// RequireMatch converts an empty derivation into core.ErrNoMatch.
func RequireMatch(params core.RouteParameters, err error) (core.RouteParameters, error) {
	if err != nil {
		return params, err
	}
	if params.Empty() {
		return params, fmt.Errorf("no routing rule matched: %w", core.ErrNoMatch)
	}
	return params, nil
}

// StripPagination removes a trailing /P<n> segment and returns the cleaned
// path together with the offset it encodes.
func StripPagination(path string) (string, int) {
	loc := paginationPattern.FindStringSubmatchIndex(path)
	if loc == nil {
		return path, 0
	}
	offset, err := strconv.Atoi(path[loc[2]:loc[3]])
	if err != nil {
		return path, 0
	}
	return path[:loc[0]], offset
}
