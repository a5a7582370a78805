package tags

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/alexmglover/Deep/pkg/core"
)

// ParseParams parses an attribute string such as
//
//	limit="10" orderby='title' backspace=1 field="a|b"
//
// into an ordered parameter map. Values may be double quoted, single quoted
// or bare. A bare word without "=" is recorded with an empty value.
func ParseParams(s string) (*core.Params, error) {
	params := core.NewParams()
	i, n := 0, len(s)

	for {
		for i < n && unicode.IsSpace(rune(s[i])) {
			i++
		}
		if i >= n {
			return params, nil
		}

		start := i
		for i < n && s[i] != '=' && !unicode.IsSpace(rune(s[i])) {
			i++
		}
		key := s[start:i]
		if key == "" {
			return nil, fmt.Errorf("%w: parameter without a name at offset %d", core.ErrMalformedTag, start)
		}

		j := i
		for j < n && unicode.IsSpace(rune(s[j])) {
			j++
		}
		if j >= n || s[j] != '=' {
			params.Set(key, "")
			continue
		}
		i = j + 1
		for i < n && unicode.IsSpace(rune(s[i])) {
			i++
		}
		if i >= n {
			params.Set(key, "")
			return params, nil
		}

		if q := s[i]; q == '"' || q == '\'' {
			end := strings.IndexByte(s[i+1:], q)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated %c in parameter %q", core.ErrMalformedTag, q, key)
			}
			params.Set(key, s[i+1:i+1+end])
			i += end + 2
			continue
		}

		start = i
		for i < n && !unicode.IsSpace(rune(s[i])) {
			i++
		}
		params.Set(key, s[start:i])
	}
}
