package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

// taskRow - строка таблицы tasks для gorm. Метки времени ставит сервис, не gorm.
type taskRow struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"size:1000;not null;default:''"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime:false"`
	DueAt       *time.Time `gorm:"index"`
	CompletedAt *time.Time
	Status      int16  `gorm:"not null;default:0;index"`
	Priority    int    `gorm:"not null;default:3;index"`
	Category    string `gorm:"not null;default:'';index"`
	Tags        string `gorm:"not null;default:''"`
	Active      bool   `gorm:"not null;default:true;index"`
}

func (taskRow) TableName() string {
	return "tasks"
}

// Драйвер хранит время строкой и сравнивает как текст, поэтому в базу пишем только UTC
func utc(at *time.Time) *time.Time {
	if at == nil {
		return nil
	}
	v := at.UTC()
	return &v
}

func toRow(t model.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		DueAt:       utc(t.DueAt),
		CompletedAt: utc(t.CompletedAt),
		Status:      int16(t.Status),
		Priority:    t.Priority,
		Category:    t.Category,
		Tags:        t.Tags,
		Active:      t.Active,
	}
}

func (row taskRow) toModel() model.Task {
	return model.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		DueAt:       row.DueAt,
		CompletedAt: row.CompletedAt,
		Status:      model.Status(row.Status),
		Priority:    row.Priority,
		Category:    row.Category,
		Tags:        row.Tags,
		Active:      row.Active,
	}
}

// SQLiteRepo - хранилище на SQLite через gorm
type SQLiteRepo struct {
	db *gorm.DB
}

// OpenSQLite открывает базу и применяет миграцию
func OpenSQLite(dsn string) (*SQLiteRepo, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Одно соединение: SQLite все равно сериализует запись, а ":memory:" живет в рамках соединения
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	r := NewSQLiteRepo(db)
	if err := r.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func NewSQLiteRepo(db *gorm.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func (r *SQLiteRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&taskRow{}); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой
func (r *SQLiteRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *SQLiteRepo) FindByID(ctx context.Context, id int64) (model.Task, error) {
	var row taskRow
	err := r.db.WithContext(ctx).First(&row, "id = ? AND active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Task{}, ErrorNotFound
		}
		return model.Task{}, err
	}
	return row.toModel(), nil
}

func (r *SQLiteRepo) FindAll(ctx context.Context) ([]model.Task, error) {
	return r.Find(ctx, query.Active(), query.Newest(), query.Unbounded)
}

func (r *SQLiteRepo) Find(ctx context.Context, pred query.Predicate, order query.Ordering, window query.Window) ([]model.Task, error) {
	where, args := pred.SQL(query.SQLite)

	q := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where(where, args...).
		Order(order.SQL(query.SQLite))
	if window.Limit > 0 {
		q = q.Limit(window.Limit)
	}
	if window.Offset > 0 {
		q = q.Offset(window.Offset)
	}

	var rows []taskRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

func (r *SQLiteRepo) Count(ctx context.Context, pred query.Predicate) (int, error) {
	where, args := pred.SQL(query.SQLite)

	var n int64
	err := r.db.WithContext(ctx).Model(&taskRow{}).
		Where("active = ?", true).
		Where(where, args...).
		Count(&n).Error
	return int(n), err
}

func (r *SQLiteRepo) Insert(ctx context.Context, t model.Task) (model.Task, error) {
	row := toRow(t)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return t, err
	}
	return row.toModel(), nil
}

func (r *SQLiteRepo) Replace(ctx context.Context, t model.Task) (model.Task, error) {
	row := toRow(t)
	res := r.db.WithContext(ctx).Model(&taskRow{}).
		Where("id = ? AND active = ?", t.ID, true).
		Select("title", "description", "updated_at", "due_at", "completed_at",
			"status", "priority", "category", "tags", "active").
		Updates(&row)
	if res.Error != nil {
		return t, res.Error
	}
	if res.RowsAffected == 0 {
		return t, ErrorNotFound
	}
	return t, nil
}
