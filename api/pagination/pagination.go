package pagination

const (
	// DefaultLimit is used when a request carries no limit.
	DefaultLimit = 20
	// MaxLimit caps the page size a request may ask for.
	MaxLimit = 100
)

// Query is the pagination parameters of a list request.
type Query struct {
	Start int `form:"start" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0,max=100"`
}

// Normalize applies the default page size.
func (q *Query) Normalize() {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
}

// Result is the response of a list request.
type Result struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
}
