package core

// Route parameter keys emitted by the route deriver.
const (
	ParamYear            = "year"
	ParamMonth           = "month"
	ParamDay             = "day"
	ParamEntryID         = "entry_id"
	ParamCategoryID      = "category_id"
	ParamCategoryName    = "category_name"
	ParamURLTitle        = "url_title"
	ParamRelatedEntryID  = "related_entry_id"
	ParamRelatedURLTitle = "related_url_title"
)

// RouteParameters are the implicit filters derived from a request path.
// Values holds the outputs of at most one routing rule.
type RouteParameters struct {
	Values          map[string]string `json:"values"`
	CategoryRequest bool              `json:"category_request"`
	SingleEntry     bool              `json:"single_entry"`
	// Dynamic is false when Values must not filter records directly:
	// in related-categories mode, or when the request turned routing off.
	// Sources still use related_* values to find the related entry.
	Dynamic bool `json:"dynamic"`
}

// Get returns the value of a derived parameter.
func (p RouteParameters) Get(key string) string {
	return p.Values[key]
}

// Empty reports whether no rule produced output.
func (p RouteParameters) Empty() bool {
	return len(p.Values) == 0
}
