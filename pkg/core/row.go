package core

// PathVar is a raw path fragment that must be resolved to an absolute URL
// before it is emitted.
type PathVar struct {
	Path string `json:"path"`
}

// Occurrences holds one rendered body per occurrence of a pair tag that
// appears more than once in the same template, in document order.
type Occurrences []string

// Row is the variable mapping handed to the substitution engine for one record.
//
// Values are one of: string, bool, PathVar, Occurrences or []*Row.
type Row struct {
	Map[any]
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{}
}

// Text returns the scalar value under key as a string.
func (r *Row) Text(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return Stringify(v)
}
