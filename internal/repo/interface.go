package repo

import (
	"context"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

// TaskRepository - хранилище задач. Все операции видят только активные записи.
type TaskRepository interface {
	// FindByID возвращает ErrorNotFound, если задачи нет или она удалена
	FindByID(ctx context.Context, id int64) (model.Task, error)
	// FindAll - все активные задачи, новые сверху
	FindAll(ctx context.Context) ([]model.Task, error)
	Find(ctx context.Context, pred query.Predicate, order query.Ordering, window query.Window) ([]model.Task, error)
	Count(ctx context.Context, pred query.Predicate) (int, error)
	// Insert присваивает ID
	Insert(ctx context.Context, t model.Task) (model.Task, error)
	// Replace перезаписывает только активную запись, иначе ErrorNotFound
	Replace(ctx context.Context, t model.Task) (model.Task, error)
}
