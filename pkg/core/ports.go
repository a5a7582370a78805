package core

import "context"

// Query describes the records a render needs.
type Query struct {
	Route  RouteParameters
	Params *Params
	Offset int
	Limit  int
}

// CategoryQuery selects a category forest.
type CategoryQuery struct {
	GroupIDs []int
	Params   *Params
}

// RecordSource fetches records. Implementations are expected to load
// relationships and categories in batches keyed by id sets.
type RecordSource interface {
	// Records returns one page of matching records and the total match count.
	Records(ctx context.Context, q Query) ([]Record, int, error)
	// CategoryTree returns the forest in display order.
	CategoryTree(ctx context.Context, q CategoryQuery) ([]*Category, error)
}

// SubstitutionEngine renders a template once per row and concatenates the
// output. Pair tag bodies repeat per sub-row; PathVar values are resolved
// before emission.
type SubstitutionEngine interface {
	Substitute(template string, rows []*Row) (string, error)
}

// SubstitutionFunc adapts a function to SubstitutionEngine.
type SubstitutionFunc func(template string, rows []*Row) (string, error)

func (f SubstitutionFunc) Substitute(template string, rows []*Row) (string, error) {
	return f(template, rows)
}

// PathResolver turns a raw path into an absolute URL.
type PathResolver interface {
	Resolve(path string, isPathVariable bool) string
}

// FieldNameResolver maps a custom field name to its numeric id.
type FieldNameResolver interface {
	FieldID(name string) (int, bool)
}

// Page is the outcome of pagination bookkeeping.
type Page struct {
	Total   int
	Limit   int
	Offset  int
	Current int
	Count   int
}

// Paginator computes page bounds and the markup of a {paginate} block.
type Paginator interface {
	Paginate(total, limit, offset int) Page
	Render(block string, page Page, basePath string) string
}

// Watchable is implemented by sources that report changes to their records.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
