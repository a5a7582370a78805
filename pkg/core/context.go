package core

// Features toggles optional parts of row materialization.
type Features struct {
	CustomFields   bool `json:"custom_fields"`
	MemberData     bool `json:"member_data"`
	Categories     bool `json:"categories"`
	CategoryFields bool `json:"category_fields"`
	Pagination     bool `json:"pagination"`
}

// AllFeatures enables everything.
func AllFeatures() Features {
	return Features{
		CustomFields:   true,
		MemberData:     true,
		Categories:     true,
		CategoryFields: true,
		Pagination:     true,
	}
}

// Uploads holds the base URLs of member media.
type Uploads struct {
	AvatarURL    string `json:"avatar_url"`
	PhotoURL     string `json:"photo_url"`
	SignatureURL string `json:"signature_url"`
}

// Settings is the site-level configuration a render runs under.
type Settings struct {
	UseCategoryName       bool     `json:"use_category_name"`
	ReservedCategoryWord  string   `json:"reserved_category_word"`
	RelatedCategoriesMode bool     `json:"related_categories_mode"`
	Features              Features `json:"features"`
	Uploads               Uploads  `json:"uploads"`
}

// RenderContext carries everything a render pass needs. It is passed by
// value through every call; nested passes derive a copy with WithPrefix.
type RenderContext struct {
	Settings    Settings
	CurrentPath string
	Prefix      Prefix
	Route       RouteParameters

	Engine   SubstitutionEngine
	Resolver PathResolver
	Fields   FieldNameResolver
}

// WithPrefix returns a copy scoped to p.
func (c RenderContext) WithPrefix(p Prefix) RenderContext {
	c.Prefix = p
	return c
}
