package tags

import (
	"regexp"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
)

var tagPattern = regexp.MustCompile(`\{([^{}/\s][^{}]*)\}`)

// control names belong to the host template language, not to records.
var control = map[string]bool{
	"if":        true,
	"if:else":   true,
	"if:elseif": true,
	"paginate":  true,
}

// Scan discovers the tag declarations of a template: every {…} marker that
// is not a closing marker. A marker is a pair when a matching {/name}
// follows it. Results are de-duplicated and in order of first appearance.
func Scan(template string) ([]string, []PairDecl) {
	var singles []string
	var pairs []PairDecl
	seen := make(map[string]bool)

	for _, loc := range tagPattern.FindAllStringSubmatchIndex(template, -1) {
		text := template[loc[2]:loc[3]]
		if seen[text] {
			continue
		}
		seen[text] = true

		name := NameOf(text)
		if name == "" || control[name] {
			continue
		}
		if strings.Contains(template[loc[1]:], "{/"+name+"}") {
			pairs = append(pairs, PairDecl{Text: text})
			continue
		}
		singles = append(singles, text)
	}
	return singles, pairs
}

// Discover scans template and builds its catalog under prefix.
func Discover(template string, prefix core.Prefix) Catalog {
	return Builder{}.Discover(template, prefix)
}

// Discover scans template and builds its catalog under prefix.
func (b Builder) Discover(template string, prefix core.Prefix) Catalog {
	singles, pairs := Scan(template)
	return b.Build(template, singles, pairs, prefix)
}

// ReplaceSingles calls fn with the text of every {…} marker in s that is not
// a closing marker, and swaps the marker for the result when fn reports
// true. Inserted text is never scanned again.
func ReplaceSingles(s string, fn func(text string) (string, bool)) string {
	if !strings.Contains(s, "{") {
		return s
	}
	return tagPattern.ReplaceAllStringFunc(s, func(m string) string {
		if out, ok := fn(m[1 : len(m)-1]); ok {
			return out
		}
		return m
	})
}
