package model

import "time"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// TaskFilter - набор необязательных критериев, сортировки и пагинации.
// Пустые поля и nil-указатели ничего не ограничивают.
type TaskFilter struct {
	Title       string
	Status      string // разбирается мягко: неизвестный статус игнорируется
	Category    string
	Tag         string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Priority    *int
	Completed   *bool

	Page       int
	PageSize   int
	SortBy     string
	Descending bool
}

// NewTaskFilter возвращает фильтр со значениями по умолчанию: первая страница, новые сверху.
func NewTaskFilter() TaskFilter {
	return TaskFilter{
		Page:       DefaultPage,
		PageSize:   DefaultPageSize,
		Descending: true,
	}
}
