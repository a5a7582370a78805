package tags

import "strings"

// Span locates one pair tag occurrence in a template. Offsets are byte
// positions: [Start, End) covers the whole block and [BodyStart, BodyEnd)
// the enclosed body.
type Span struct {
	Start, End         int
	BodyStart, BodyEnd int
}

// Body returns the enclosed text.
func (s Span) Body(template string) string {
	return template[s.BodyStart:s.BodyEnd]
}

// Spans finds every top-level {open}…{/name} block in document order.
//
// The first closing marker after an opening wins; a same-named pair nested
// inside a body is not balanced, so {a}x{a}y{/a}z{/a} yields the body "x{a}y".
func Spans(template, open, name string) []Span {
	openTok := "{" + open + "}"
	closeTok := "{/" + name + "}"

	var spans []Span
	pos := 0
	for pos < len(template) {
		i := strings.Index(template[pos:], openTok)
		if i < 0 {
			break
		}
		start := pos + i
		bodyStart := start + len(openTok)
		j := strings.Index(template[bodyStart:], closeTok)
		if j < 0 {
			break
		}
		bodyEnd := bodyStart + j
		end := bodyEnd + len(closeTok)
		spans = append(spans, Span{Start: start, End: end, BodyStart: bodyStart, BodyEnd: bodyEnd})
		pos = end
	}
	return spans
}

// Replace substitutes each span with the output of fn, called with the
// occurrence index and the body.
func Replace(template string, spans []Span, fn func(i int, body string) string) string {
	if len(spans) == 0 {
		return template
	}
	var b strings.Builder
	b.Grow(len(template))
	last := 0
	for i, sp := range spans {
		b.WriteString(template[last:sp.Start])
		b.WriteString(fn(i, sp.Body(template)))
		last = sp.End
	}
	b.WriteString(template[last:])
	return b.String()
}
