// Package tags builds the catalog of placeholders a template uses.
//
// A single tag is a self-closing marker such as {title} or
// {entry_date format="%Y-%m-%d"}. A pair tag encloses a body, as in
// {categories}…{/categories}, which is rendered once per sub-item.
package tags

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/alexmglover/Deep/pkg/core"
)

// Kind distinguishes single tags from pair tags.
type Kind int

const (
	Single Kind = iota
	Pair
)

func (k Kind) String() string {
	if k == Pair {
		return "pair"
	}
	return "single"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Tag is one catalog entry.
type Tag struct {
	// Name is the tag name with the active prefix removed.
	Name string `json:"name"`
	// Key is the declared text, prefix included; rows are keyed by it.
	Key    string       `json:"key"`
	Params *core.Params `json:"params"`
	Kind   Kind         `json:"kind"`
	// Body is the enclosed template text of a pair tag.
	Body string `json:"body,omitempty"`
	// Occurrence numbers repeated pair tags in document order.
	Occurrence int `json:"occurrence,omitempty"`
}

// Param returns a parameter value or "".
func (t Tag) Param(key string) string {
	return t.Params.Value(key)
}

// PairDecl declares a pair tag. Params may be nil, in which case they are
// parsed from Text.
type PairDecl struct {
	Text   string
	Params *core.Params
}

// Catalog is the ordered set of tags for one build pass.
type Catalog struct {
	Singles []Tag `json:"singles"`
	Pairs   []Tag `json:"pairs"`
}

// Occurrences counts how many catalog entries share the pair key.
func (c Catalog) Occurrences(key string) int {
	n := 0
	for _, t := range c.Pairs {
		if t.Key == key {
			n++
		}
	}
	return n
}

// SinglesNamed returns the single tags with the given name.
func (c Catalog) SinglesNamed(name string) []Tag {
	var out []Tag
	for _, t := range c.Singles {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// Split separates a declaration into its name and parameters. The name runs
// up to the first whitespace or "="; in the assignment form
// url_title_path="blog" the assignment itself becomes a parameter.
func Split(text string) (string, *core.Params, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", nil, fmt.Errorf("%w: empty", core.ErrMalformedTag)
	}
	end := strings.IndexFunc(t, func(r rune) bool { return unicode.IsSpace(r) || r == '=' })
	if end == 0 {
		return "", nil, fmt.Errorf("%w: %q has no name", core.ErrMalformedTag, text)
	}
	if end < 0 {
		end = len(t)
	}
	name := t[:end]
	if strings.ContainsAny(name, "{}\"'") {
		return "", nil, fmt.Errorf("%w: invalid name %q", core.ErrMalformedTag, name)
	}

	rest := t[end:]
	if strings.HasPrefix(rest, "=") {
		rest = t
	}
	params, err := ParseParams(rest)
	if err != nil {
		return "", nil, err
	}
	return name, params, nil
}

// Builder builds catalogs. The zero value is usable.
type Builder struct {
	Logger *slog.Logger
}

// Build builds a catalog with a zero Builder.
func Build(template string, singles []string, pairs []PairDecl, prefix core.Prefix) Catalog {
	return Builder{}.Build(template, singles, pairs, prefix)
}

// Build resolves declarations against template.
//
// Tags outside the prefix namespace are left out, and the stored name has
// the prefix stripped. Each occurrence of a declared pair tag in the
// template yields one entry whose body runs to the first matching close.
// Declarations that cannot be split are dropped.
func (b Builder) Build(template string, singles []string, pairs []PairDecl, prefix core.Prefix) Catalog {
	var cat Catalog
	seen := make(map[string]bool)

	for _, text := range singles {
		if seen[text] {
			continue
		}
		full, params, err := Split(text)
		if err != nil {
			b.drop(text, err)
			continue
		}
		name, ok := prefix.Strip(full)
		if !ok {
			continue
		}
		seen[text] = true
		cat.Singles = append(cat.Singles, Tag{Name: name, Key: text, Params: params, Kind: Single})
	}

	seenPairs := make(map[string]bool)
	for _, decl := range pairs {
		if seenPairs[decl.Text] {
			continue
		}
		full, params, err := Split(decl.Text)
		if err != nil {
			b.drop(decl.Text, err)
			continue
		}
		if decl.Params != nil {
			params = decl.Params
		}
		name, ok := prefix.Strip(full)
		if !ok {
			continue
		}
		seenPairs[decl.Text] = true

		for i, sp := range Spans(template, decl.Text, full) {
			cat.Pairs = append(cat.Pairs, Tag{
				Name:       name,
				Key:        decl.Text,
				Params:     params,
				Kind:       Pair,
				Body:       sp.Body(template),
				Occurrence: i,
			})
		}
	}
	return cat
}

func (b Builder) drop(text string, err error) {
	if b.Logger != nil {
		b.Logger.Debug("dropping tag declaration", "tag", text, "error", err)
	}
}

// NameOf returns the full name of a declared tag text.
func NameOf(text string) string {
	t := strings.TrimSpace(text)
	if end := strings.IndexFunc(t, func(r rune) bool { return unicode.IsSpace(r) || r == '=' }); end >= 0 {
		return t[:end]
	}
	return t
}
