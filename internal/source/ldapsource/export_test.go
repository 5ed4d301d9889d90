package ldapsource

// Internal helpers exposed to the external tests.
var (
	UserFilter  = userFilter
	ListQuery   = listQuery
	DNComponent = dnComponent
)
