package output

import (
	"errors"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// Format selects how rendered output is emitted.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned for format names other than html and markdown.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts "html", "markdown" or "md". Empty means html.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ToMarkdown converts rendered HTML to GitHub flavored Markdown. Relative
// links are kept as they are.
func ToMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	out, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return out, nil
}

// Convert returns rendered in the requested format.
func Convert(rendered string, f Format) (string, error) {
	switch f {
	case FormatHTML, "":
		return rendered, nil
	case FormatMarkdown:
		return ToMarkdown(rendered)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
