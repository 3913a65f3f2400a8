package repo

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorInvalid  = errors.New("invalid record")
)

//go:embed schema/postgres.sql
var postgresSchema string

const taskColumns = `id, title, description, created_at, updated_at, due_at, completed_at, status, priority, category, tags, active`

type TaskRepo struct { // Репозиторий для работы с Postgres
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

// Migrate создает таблицу и индексы, если их еще нет
func (r *TaskRepo) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postgresSchema)
	return err
}

func (r *TaskRepo) FindByID(ctx context.Context, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND active = TRUE
	`, id)
	t, err := scanTask(row)
	return t, r.mapError(err)
}

func (r *TaskRepo) FindAll(ctx context.Context) ([]model.Task, error) {
	return r.Find(ctx, query.Active(), query.Newest(), query.Unbounded)
}

func (r *TaskRepo) Find(ctx context.Context, pred query.Predicate, order query.Ordering, window query.Window) ([]model.Task, error) {
	where, args := pred.SQL(query.Postgres)
	sql := `SELECT ` + taskColumns + ` FROM tasks WHERE active = TRUE AND ` + where +
		` ORDER BY ` + order.SQL(query.Postgres)
	if window.Limit > 0 {
		sql += ` LIMIT ?`
		args = append(args, window.Limit)
	}
	if window.Offset > 0 {
		sql += ` OFFSET ?`
		args = append(args, window.Offset)
	}

	rows, err := r.pool.Query(ctx, rebind(sql), args...)
	if err != nil {
		return nil, r.mapError(err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, window.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, r.mapError(err)
		}
		tasks = append(tasks, t)
	}
	return tasks, r.mapError(rows.Err())
}

func (r *TaskRepo) Count(ctx context.Context, pred query.Predicate) (int, error) {
	where, args := pred.SQL(query.Postgres)

	var n int
	err := r.pool.QueryRow(ctx, rebind(`SELECT COUNT(*) FROM tasks WHERE active = TRUE AND `+where), args...).Scan(&n)
	return n, r.mapError(err)
}

func (r *TaskRepo) Insert(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, created_at, updated_at, due_at, completed_at, status, priority, category, tags, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+taskColumns,
		t.Title, t.Description, t.CreatedAt, t.UpdatedAt, t.DueAt, t.CompletedAt,
		int16(t.Status), t.Priority, t.Category, t.Tags, t.Active,
	)
	created, err := scanTask(row)
	return created, r.mapError(err)
}

// Replace не трогает created_at и не видит удаленные записи
func (r *TaskRepo) Replace(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, updated_at = $4, due_at = $5, completed_at = $6,
		    status = $7, priority = $8, category = $9, tags = $10, active = $11
		WHERE id = $1 AND active = TRUE
		RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, t.UpdatedAt, t.DueAt, t.CompletedAt,
		int16(t.Status), t.Priority, t.Category, t.Tags, t.Active,
	)
	updated, err := scanTask(row)
	if err != nil {
		return t, r.mapError(err)
	}
	return updated, nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t      model.Task
		status int16
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.CreatedAt, &t.UpdatedAt, &t.DueAt, &t.CompletedAt,
		&status, &t.Priority, &t.Category, &t.Tags, &t.Active,
	)
	t.Status = model.Status(status)
	return t, err
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514", "22001": // check_violation, string_data_right_truncation
			return fmt.Errorf("%w: %s", ErrorInvalid, pgErr.Message)
		}
	}
	return err
}

// rebind заменяет плейсхолдеры "?" на $1, $2, ...
func rebind(sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := 0
	for _, ch := range sql {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
