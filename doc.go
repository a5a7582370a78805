// Package deep renders entry listings and category navigation from a
// directory of documents.
//
// A render takes a template body and a request path. The path is turned
// into implicit filters (year/month, category, entry id or url title), the
// matching entries are fetched from the record source, and every variable
// tag in the template is filled from the entry: native attributes, custom
// fields, member data, categories and related entries.
//
// The core is agnostic of where records live. The default source reads a
// vault of Markdown, YAML, JSON and CSV files (see pkg/adapters/fs).
//
// Usage:
//
//	svc, err := deep.New("./site", deep.WithLogger(logger))
//
//	out, err := svc.Entries(ctx, deep.Request{
//		Template: `<h2>{title}</h2>{body}`,
//		Path:     "blog/2024/03",
//		Base:     "blog",
//	})
package deep
