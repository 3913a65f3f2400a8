package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
	"github.com/BuzzLyutic/task-tracker-api/internal/repo"
)

var (
	ErrNotFound        = repo.ErrorNotFound
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStoreFailure    = errors.New("store failure")
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

var tracer = otel.Tracer("github.com/BuzzLyutic/task-tracker-api/internal/service")

// Clock возвращает текущее время; подменяется в тестах
type Clock func() time.Time

// SystemClock - UTC с точностью до микросекунд, как хранит Postgres
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Page - страница результатов и метаданные пагинации
type Page struct {
	Tasks      []model.Task     `json:"tasks"`
	Pagination query.Pagination `json:"pagination"`
}

type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
	now    Clock
	match  query.TextMatch
}

type Option func(*TaskService)

func WithClock(c Clock) Option {
	return func(s *TaskService) { s.now = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *TaskService) { s.logger = l }
}

// WithTextMatch задает политику сравнения для фильтров по названию и категории
func WithTextMatch(m query.TextMatch) Option {
	return func(s *TaskService) { s.match = m }
}

func NewTaskService(repo repo.TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{
		repo:   repo,
		logger: zap.NewNop(),
		now:    SystemClock,
		match:  query.CaseSensitive,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Get", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	t, err := s.repo.FindByID(ctx, id)
	return t, s.storeErr(span, err)
}

// List - все активные задачи, новые сверху
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.List")
	defer span.End()

	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.storeErr(span, err)
	}
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// Filter применяет фильтр и сортировку без пагинации
func (s *TaskService) Filter(ctx context.Context, f model.TaskFilter) ([]model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Filter")
	defer span.End()

	pred := query.Compose(f, s.match)
	order := query.ResolveSort(f.SortBy, f.Descending)
	span.SetAttributes(attribute.Int("filter.clauses", pred.Len()))

	tasks, err := s.repo.Find(ctx, pred, order, query.Unbounded)
	if err != nil {
		return nil, s.storeErr(span, err)
	}
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// Paged возвращает одну страницу. Общее число считается по тому же предикату, что и страница.
func (s *TaskService) Paged(ctx context.Context, f model.TaskFilter) (Page, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Paged", trace.WithAttributes(
		attribute.Int("page", f.Page),
		attribute.Int("page_size", f.PageSize),
	))
	defer span.End()

	if f.Page < 1 {
		return Page{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidArgument, f.Page)
	}
	if f.PageSize < 1 {
		return Page{}, fmt.Errorf("%w: page size must be >= 1, got %d", ErrInvalidArgument, f.PageSize)
	}

	pred := query.Compose(f, s.match)
	order := query.ResolveSort(f.SortBy, f.Descending)

	total, err := s.repo.Count(ctx, pred)
	if err != nil {
		return Page{}, s.storeErr(span, err)
	}
	meta := query.Paginate(f.Page, f.PageSize, total)

	tasks, err := s.repo.Find(ctx, pred, order, meta.Window())
	if err != nil {
		return Page{}, s.storeErr(span, err)
	}
	return Page{Tasks: tasks, Pagination: meta}, nil
}

// Count считает активные задачи; nil - без фильтра
func (s *TaskService) Count(ctx context.Context, f *model.TaskFilter) (int, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Count")
	defer span.End()

	pred := query.Active()
	if f != nil {
		pred = query.Compose(*f, s.match)
	}
	n, err := s.repo.Count(ctx, pred)
	return n, s.storeErr(span, err)
}

func (s *TaskService) Create(ctx context.Context, f model.TaskFields) (model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Create", trace.WithAttributes(attribute.String("task.title", f.Title)))
	defer span.End()

	if f.Priority == 0 {
		f.Priority = model.DefaultPriority
	}
	if err := s.validate(f); err != nil {
		return model.Task{}, err
	}

	created, err := s.repo.Insert(ctx, model.NewTask(f, s.now()))
	if err != nil {
		return created, s.storeErr(span, err)
	}

	span.SetAttributes(attribute.Int64("task.id", created.ID))
	s.logger.Debug("task created", zap.Int64("task_id", created.ID))
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, id int64, f model.TaskFields) (model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Update", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	if err := s.validate(f); err != nil {
		return model.Task{}, err
	}
	if !f.Status.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown status", ErrInvalidArgument)
	}

	return s.mutate(ctx, span, id, "task updated", func(t *model.Task, now time.Time) {
		t.Apply(f, now)
	})
}

// Complete всегда переставляет метку завершения
func (s *TaskService) Complete(ctx context.Context, id int64) (model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Complete", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	return s.mutate(ctx, span, id, "task completed", (*model.Task).Complete)
}

// Delete - мягкое удаление. Повторный вызов вернет ErrNotFound.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "TaskService.Delete", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	_, err := s.mutate(ctx, span, id, "task deleted", (*model.Task).Deactivate)
	return err
}

// Stats считает статистику по всем активным задачам за один запрос к хранилищу
func (s *TaskService) Stats(ctx context.Context) (model.Stats, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Stats")
	defer span.End()

	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return model.Stats{}, s.storeErr(span, err)
	}

	now := s.now()
	stats := model.NewStats()
	for _, t := range tasks {
		stats.Add(t, now)
	}
	span.SetAttributes(attribute.Int("task.total", stats.Total), attribute.Int("task.overdue", stats.Overdue))
	return stats, nil
}

func (s *TaskService) mutate(ctx context.Context, span trace.Span, id int64, event string, change func(*model.Task, time.Time)) (model.Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return t, s.storeErr(span, err)
	}

	change(&t, s.now())

	updated, err := s.repo.Replace(ctx, t)
	if err != nil {
		return updated, s.storeErr(span, err)
	}
	s.logger.Debug(event, zap.Int64("task_id", id), zap.Stringer("status", updated.Status))
	return updated, nil
}

// storeErr оставляет ErrNotFound как есть, отказ ограничений хранилища превращает в ErrInvalidArgument,
// остальное помечает как ErrStoreFailure
func (s *TaskService) storeErr(span trace.Span, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		span.SetAttributes(attribute.Bool("task.found", false))
		return err
	}
	if errors.Is(err, repo.ErrorInvalid) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

func (s *TaskService) validate(f model.TaskFields) error {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(f.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidArgument, maxTitleLen)
	}
	if utf8.RuneCountInString(f.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be at most %d characters", ErrInvalidArgument, maxDescriptionLen)
	}
	if f.Priority < 1 || f.Priority > 3 {
		return fmt.Errorf("%w: priority must be between 1 and 3", ErrInvalidArgument)
	}
	return nil
}
