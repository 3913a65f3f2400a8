package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags"`
}

func toResponse(t model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DueAt:       t.DueAt,
		CompletedAt: t.CompletedAt,
		Status:      t.Status.String(),
		Priority:    t.Priority,
		Category:    t.Category,
		Tags:        t.TagList(),
	}
}

func toResponses(tasks []model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toResponse(t))
	}
	return out
}

type pageResponse struct {
	Tasks      []taskResponse   `json:"tasks"`
	Pagination query.Pagination `json:"pagination"`
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	Priority    int        `json:"priority"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
}

func (r createTaskRequest) fields() model.TaskFields {
	return model.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		DueAt:       r.DueAt,
		Priority:    r.Priority,
		Category:    r.Category,
		Tags:        r.Tags,
	}
}

type updateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueAt       *time.Time   `json:"due_at"`
	Status      model.Status `json:"status"`
	Priority    int          `json:"priority"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
}

func (r updateTaskRequest) fields() model.TaskFields {
	return model.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		DueAt:       r.DueAt,
		Status:      r.Status,
		Priority:    r.Priority,
		Category:    r.Category,
		Tags:        r.Tags,
	}
}

type countResponse struct {
	Count int `json:"count"`
}

// parseFilter разбирает query-параметры. Некорректные необязательные
// критерии игнорируются, а ошибки в page/pageSize возвращаются списком.
func parseFilter(q url.Values) (model.TaskFilter, []string) {
	f := model.NewTaskFilter()
	f.Title = q.Get("title")
	f.Status = q.Get("status")
	f.Category = q.Get("category")
	f.Tag = q.Get("tag")
	f.SortBy = q.Get("sortBy")
	f.CreatedFrom = parseTime(q.Get("from"))
	f.CreatedTo = parseTime(q.Get("to"))

	if v, err := strconv.Atoi(q.Get("priority")); err == nil {
		f.Priority = &v
	}
	if v, err := strconv.ParseBool(q.Get("completed")); err == nil {
		f.Completed = &v
	}
	if v, err := strconv.ParseBool(q.Get("descending")); err == nil {
		f.Descending = v
	}

	var problems []string
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, "page must be an integer")
		}
		f.Page = v
	}
	if raw := q.Get("pageSize"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, "pageSize must be an integer")
		}
		f.PageSize = v
	}
	return f, problems
}

func parseTime(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
