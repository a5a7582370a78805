// Package substitute is the default substitution engine. It renders a
// template once per row: pair blocks are rendered from the row's values and
// single tags are substituted in the text between them. Block output and
// resolved values are emitted as they are and never scanned again, so
// record data containing braces survives intact. Sub-rows must already
// carry every value their block body uses.
package substitute

import (
	"slices"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/tags"
)

// Engine implements core.SubstitutionEngine.
type Engine struct {
	Resolver core.PathResolver
}

// New returns an engine that resolves path variables with r. A nil
// resolver leaves paths as they are.
func New(r core.PathResolver) *Engine {
	return &Engine{Resolver: r}
}

// Substitute renders template for each row and concatenates the results.
func (e *Engine) Substitute(template string, rows []*core.Row) (string, error) {
	var b strings.Builder
	for _, row := range rows {
		out, err := e.render(template, row)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

type block struct {
	tags.Span
	text string
}

func (e *Engine) render(template string, row *core.Row) (string, error) {
	blocks, err := e.blocks(template, row)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(template))
	last := 0
	for _, blk := range blocks {
		b.WriteString(e.singles(template[last:blk.Start], row))
		b.WriteString(blk.text)
		last = blk.End
	}
	b.WriteString(e.singles(template[last:], row))
	return b.String(), nil
}

// blocks renders every pair block the row has a value for. Blocks are
// returned in document order; a block starting inside an earlier one is
// part of that block's body and is skipped.
func (e *Engine) blocks(template string, row *core.Row) ([]block, error) {
	var out []block
	for key, v := range row.All() {
		if !strings.Contains(template, "{"+key+"}") {
			continue
		}
		spans := tags.Spans(template, key, tags.NameOf(key))
		for i, sp := range spans {
			var text string
			switch t := v.(type) {
			case []*core.Row:
				rendered, err := e.Substitute(sp.Body(template), t)
				if err != nil {
					return nil, err
				}
				text = rendered
			case core.Occurrences:
				if i < len(t) {
					text = t[i]
				}
			case core.PathVar:
				text = e.resolve(t)
			default:
				text = core.Stringify(v)
			}
			out = append(out, block{Span: sp, text: text})
		}
	}

	slices.SortFunc(out, func(a, b block) int { return a.Start - b.Start })
	kept := out[:0]
	end := 0
	for _, blk := range out {
		if blk.Start < end {
			continue
		}
		kept = append(kept, blk)
		end = blk.End
	}
	return kept, nil
}

func (e *Engine) singles(text string, row *core.Row) string {
	return tags.ReplaceSingles(text, func(key string) (string, bool) {
		v, ok := row.Get(key)
		if !ok {
			return "", false
		}
		switch t := v.(type) {
		case core.PathVar:
			return e.resolve(t), true
		case []*core.Row, core.Occurrences:
			return "", false
		default:
			return core.Stringify(t), true
		}
	})
}

func (e *Engine) resolve(p core.PathVar) string {
	if e.Resolver == nil {
		return p.Path
	}
	return e.Resolver.Resolve(p.Path, true)
}

var _ core.SubstitutionEngine = (*Engine)(nil)
