package repo

import (
	"context"
	"sync"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

// MemoryRepo хранит задачи в памяти процесса. Каждая операция - одна критическая секция.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]model.Task
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		tasks: make(map[int64]model.Task),
	}
}

func (r *MemoryRepo) FindByID(ctx context.Context, id int64) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok || !t.Active {
		return model.Task{}, ErrorNotFound
	}
	return t, nil
}

func (r *MemoryRepo) FindAll(ctx context.Context) ([]model.Task, error) {
	return r.Find(ctx, query.Active(), query.Newest(), query.Unbounded)
}

func (r *MemoryRepo) Find(ctx context.Context, pred query.Predicate, order query.Ordering, window query.Window) ([]model.Task, error) {
	r.mu.RLock()
	tasks := r.matching(pred)
	r.mu.RUnlock()

	order.Sort(tasks)
	start, end := window.Apply(len(tasks))
	return tasks[start:end], nil
}

func (r *MemoryRepo) Count(ctx context.Context, pred query.Predicate) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.matching(pred)), nil
}

func (r *MemoryRepo) Insert(ctx context.Context, t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Replace(ctx context.Context, t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[t.ID]
	if !ok || !existing.Active {
		return t, ErrorNotFound
	}
	t.CreatedAt = existing.CreatedAt
	r.tasks[t.ID] = t
	return t, nil
}

// matching вызывается под блокировкой. Неактивные записи отсекаются всегда.
func (r *MemoryRepo) matching(pred query.Predicate) []model.Task {
	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if t.Active && pred.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
