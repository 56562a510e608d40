package calendar

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PageRequest: номер страницы (с 1) и размер.
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize подставляет дефолты при некорректных значениях.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p PageRequest) Limit() int  { return p.PerPage }
func (p PageRequest) Offset() int { return (p.Page - 1) * p.PerPage }

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`     // номер страницы (с 1)
	PerPage    int   `json:"per_page"` // количество элементов на странице
	Total      int64 `json:"total"`    // общее количество элементов
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPage собирает метаданные страницы по уже выбранным из БД элементам.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}

	totalPages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))

	return Page[T]{
		Items:      items,
		Page:       req.Page,
		PerPage:    req.PerPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}
}
