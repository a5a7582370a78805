// Package paginate is the default paginator. Pages are addressed by a
// trailing /P<offset> path segment and described to templates through a
// {paginate}…{/paginate} block.
package paginate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/tags"
)

// Position places the rendered pagination block relative to the output.
type Position string

const (
	Top    Position = "top"
	Bottom Position = "bottom"
	Both   Position = "both"
)

// ParsePosition reads a paginate="" parameter. Unknown values mean Bottom.
func ParsePosition(s string) Position {
	switch p := Position(strings.ToLower(strings.TrimSpace(s))); p {
	case Top, Both:
		return p
	}
	return Bottom
}

// Paginator implements core.Paginator.
type Paginator struct {
	Resolver core.PathResolver
}

// New returns a paginator that resolves page links with r.
func New(r core.PathResolver) *Paginator {
	return &Paginator{Resolver: r}
}

// Paginate computes page bounds. A limit of zero or less is a single page.
func (p *Paginator) Paginate(total, limit, offset int) core.Page {
	if offset < 0 {
		offset = 0
	}
	page := core.Page{Total: total, Limit: limit, Offset: offset, Current: 1, Count: 1}
	if limit <= 0 || total <= 0 {
		return page
	}
	page.Count = (total + limit - 1) / limit
	page.Current = offset/limit + 1
	if page.Current > page.Count {
		page.Current = page.Count
	}
	return page
}

// Render fills a {paginate} block body. Supported tags are {current_page},
// {total_pages}, {pagination_links}, {previous_page_url} and
// {next_page_url}. A single page renders as "".
func (p *Paginator) Render(block string, page core.Page, basePath string) string {
	if page.Count <= 1 {
		return ""
	}
	prev, next := "", ""
	if page.Current > 1 {
		prev = p.url(basePath, (page.Current-2)*page.Limit)
	}
	if page.Current < page.Count {
		next = p.url(basePath, page.Current*page.Limit)
	}
	r := strings.NewReplacer(
		"{current_page}", strconv.Itoa(page.Current),
		"{total_pages}", strconv.Itoa(page.Count),
		"{pagination_links}", p.links(page, basePath),
		"{previous_page_url}", prev,
		"{next_page_url}", next,
	)
	return r.Replace(block)
}

func (p *Paginator) links(page core.Page, basePath string) string {
	var b strings.Builder
	for n := 1; n <= page.Count; n++ {
		if n > 1 {
			b.WriteByte(' ')
		}
		if n == page.Current {
			fmt.Fprintf(&b, "<strong>%d</strong>", n)
			continue
		}
		fmt.Fprintf(&b, `<a href="%s" class="page-%d">%d</a>`, p.url(basePath, (n-1)*page.Limit), n, n)
	}
	return b.String()
}

// url addresses the page starting at offset. The first page has no suffix.
func (p *Paginator) url(basePath string, offset int) string {
	path := strings.Trim(basePath, "/")
	if offset > 0 {
		if path != "" {
			path += "/"
		}
		path += "P" + strconv.Itoa(offset)
	}
	if p.Resolver == nil {
		return "/" + path
	}
	return p.Resolver.Resolve(path, true)
}

// Extract removes the first {paginate}…{/paginate} block from template and
// returns the remaining template and the block body.
func Extract(template string) (rest, block string, ok bool) {
	spans := tags.Spans(template, "paginate", "paginate")
	if len(spans) == 0 {
		return template, "", false
	}
	sp := spans[0]
	return template[:sp.Start] + template[sp.End:], sp.Body(template), true
}

// Wrap places the rendered block around output.
func Wrap(output, rendered string, pos Position) string {
	if rendered == "" {
		return output
	}
	switch pos {
	case Top:
		return rendered + output
	case Both:
		return rendered + output + rendered
	default:
		return output + rendered
	}
}

var _ core.Paginator = (*Paginator)(nil)
