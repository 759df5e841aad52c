package pagination

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Params is a validated page request.
type Params struct {
	Page    int
	PerPage int
}

// New clamps page and perPage into range, falling back to defaults for
// non-positive values.
func New(page, perPage, defaultPerPage int) Params {
	if defaultPerPage < 1 {
		defaultPerPage = DefaultPerPage
	}

	if page < 1 {
		page = DefaultPage
	}

	if perPage < 1 {
		perPage = defaultPerPage
	}

	return Params{Page: page, PerPage: min(perPage, MaxPerPage)}
}

func (p Params) Limit() int  { return p.PerPage }
func (p Params) Offset() int { return (p.Page - 1) * p.PerPage }

type Result[T any] struct {
	Items      []T
	Page       int
	PerPage    int
	TotalPages int
	TotalItems int
}

func NewResult[T any](items []T, p Params, total int) Result[T] {
	if items == nil {
		items = []T{}
	}

	return Result[T]{
		Items:      items,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: TotalPages(total, p.PerPage),
		TotalItems: total,
	}
}

func TotalPages(total, perPage int) int {
	if perPage < 1 {
		return 0
	}

	return (total + perPage - 1) / perPage
}

// Map converts the items of r while keeping its paging metadata.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := make([]U, len(r.Items))
	for i, it := range r.Items {
		out[i] = fn(it)
	}

	return Result[U]{
		Items:      out,
		Page:       r.Page,
		PerPage:    r.PerPage,
		TotalPages: r.TotalPages,
		TotalItems: r.TotalItems,
	}
}
