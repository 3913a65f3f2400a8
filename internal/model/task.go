package model

import (
	"strings"
	"time"
)

const (
	DefaultPriority = 3

	tagSeparator = ","
)

type Task struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DueAt       *time.Time
	CompletedAt *time.Time
	Status      Status
	Priority    int
	Category    string
	Tags        string // нормализованная строка, элементы через ","
	Active      bool
}

// TaskFields - редактируемые пользователем поля задачи
type TaskFields struct {
	Title       string
	Description string
	DueAt       *time.Time
	Status      Status
	Priority    int
	Category    string
	Tags        []string
}

// NewTask создает новую задачу. ID, временные метки и статус от вызывающего игнорируются.
func NewTask(f TaskFields, now time.Time) Task {
	priority := f.Priority
	if priority == 0 {
		priority = DefaultPriority
	}
	return Task{
		Title:       f.Title,
		Description: f.Description,
		DueAt:       normalizeTime(f.DueAt),
		Status:      StatusPending,
		Priority:    priority,
		Category:    f.Category,
		Tags:        JoinTags(f.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
		Active:      true,
	}
}

// Apply перезаписывает все редактируемые поля.
// Статус - источник истины для CompletedAt: вне Completed метка всегда сбрасывается.
func (t *Task) Apply(f TaskFields, now time.Time) {
	t.Title = f.Title
	t.Description = f.Description
	t.DueAt = normalizeTime(f.DueAt)
	t.Status = f.Status
	t.Priority = f.Priority
	t.Category = f.Category
	t.Tags = JoinTags(f.Tags)

	switch t.Status {
	case StatusCompleted:
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	default:
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
}

// Complete всегда переставляет метку завершения, в отличие от Apply
func (t *Task) Complete(now time.Time) {
	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
}

func (t *Task) Deactivate(now time.Time) {
	t.Active = false
	t.UpdatedAt = now
}

// normalizeTime приводит срок к UTC с точностью до микросекунд, как хранят Postgres и SQLite
func normalizeTime(at *time.Time) *time.Time {
	if at == nil {
		return nil
	}
	v := at.UTC().Truncate(time.Microsecond)
	return &v
}

func (t Task) TagList() []string {
	return SplitTags(t.Tags)
}

// Overdue: срок прошел, а задача не завершена
func (t Task) Overdue(now time.Time) bool {
	return t.Active && t.DueAt != nil && t.DueAt.Before(now) && t.Status != StatusCompleted
}

// JoinTags приводит теги к канонической форме: без пробелов по краям, без пустых и повторов, порядок сохраняется.
func JoinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return strings.Join(out, tagSeparator)
}

func SplitTags(joined string) []string {
	out := []string{}
	for _, tag := range strings.Split(joined, tagSeparator) {
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Stats - агрегированная статистика по активным задачам
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	Overdue    int            `json:"overdue"`
}

func NewStats() Stats {
	return Stats{
		ByStatus: map[string]int{
			StatusPending.String():    0,
			StatusInProgress.String(): 0,
			StatusCompleted.String():  0,
		},
		ByPriority: map[string]int{
			"high":   0,
			"medium": 0,
			"low":    0,
		},
	}
}

// Add учитывает задачу в статистике
func (s *Stats) Add(t Task, now time.Time) {
	s.Total++
	s.ByStatus[t.Status.String()]++
	switch t.Priority {
	case 1:
		s.ByPriority["high"]++
	case 2:
		s.ByPriority["medium"]++
	case 3:
		s.ByPriority["low"]++
	}
	if t.Overdue(now) {
		s.Overdue++
	}
}
