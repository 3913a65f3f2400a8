package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

var base = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func ids(tasks []model.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func newTask(title string, created time.Time, mod func(*model.Task)) model.Task {
	t := model.NewTask(model.TaskFields{Title: title}, created)
	if mod != nil {
		mod(&t)
	}
	return t
}

// seed вставляет набор задач и возвращает их ID в порядке вставки
func seed(t *testing.T, r TaskRepository) []int64 {
	t.Helper()
	ctx := context.Background()
	due := base.Add(72 * time.Hour)

	tasks := []model.Task{
		newTask("Alpha report", base, func(t *model.Task) {
			t.Category = "Work"
			t.Tags = "abc,finance"
			t.Priority = 1
			t.DueAt = &due
		}),
		newTask("beta", base.Add(time.Minute), func(t *model.Task) {
			t.Category = "work"
			t.Priority = 2
		}),
		newTask("Gamma report", base.Add(2*time.Minute), func(t *model.Task) {
			t.Category = "Home"
			t.Tags = "home"
			t.Complete(base.Add(3 * time.Minute))
		}),
		newTask("delta", base.Add(3*time.Minute), func(t *model.Task) {
			t.Priority = 2
			t.DueAt = ptr(base)
		}),
	}

	out := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		created, err := r.Insert(ctx, task)
		require.NoError(t, err)
		out = append(out, created.ID)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// runContract проверяет общее поведение всех реализаций TaskRepository
func runContract(t *testing.T, newRepo func(t *testing.T) TaskRepository) {
	ctx := context.Background()

	t.Run("insert and find by id", func(t *testing.T) {
		r := newRepo(t)

		created, err := r.Insert(ctx, newTask("Write tests", base, func(t *model.Task) {
			t.Tags = "go,test"
			t.DueAt = ptr(base.Add(time.Hour))
		}))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		got, err := r.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write tests", got.Title)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Equal(t, model.DefaultPriority, got.Priority)
		assert.Equal(t, []string{"go", "test"}, got.TagList())
		assert.True(t, got.Active)
		assert.True(t, got.CreatedAt.Equal(base))
		require.NotNil(t, got.DueAt)
		assert.True(t, got.DueAt.Equal(base.Add(time.Hour)))
		assert.Nil(t, got.CompletedAt)

		second, err := r.Insert(ctx, newTask("Another", base, nil))
		require.NoError(t, err)
		assert.NotEqual(t, created.ID, second.ID)
	})

	t.Run("long category and tags", func(t *testing.T) {
		r := newRepo(t)
		category := strings.Repeat("c", 150)
		tags := strings.Repeat("t", 300) + "," + strings.Repeat("u", 300)

		created, err := r.Insert(ctx, newTask("Long", base, func(t *model.Task) {
			t.Category = category
			t.Tags = tags
		}))
		require.NoError(t, err)

		got, err := r.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, category, got.Category)
		assert.Equal(t, tags, got.Tags)
	})

	t.Run("find by id not found", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.FindByID(ctx, 999)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("replace", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Insert(ctx, newTask("Original", base, nil))
		require.NoError(t, err)

		created.Apply(model.TaskFields{
			Title:    "Renamed",
			Status:   model.StatusCompleted,
			Priority: 1,
			Category: "Work",
			Tags:     []string{"x"},
		}, base.Add(time.Hour))

		_, err = r.Replace(ctx, created)
		require.NoError(t, err)

		got, err := r.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, model.StatusCompleted, got.Status)
		assert.Equal(t, 1, got.Priority)
		assert.Equal(t, "x", got.Tags)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, got.CompletedAt.Equal(base.Add(time.Hour)))
		assert.True(t, got.UpdatedAt.Equal(base.Add(time.Hour)))
		assert.True(t, got.CreatedAt.Equal(base))
	})

	t.Run("deleted rows are invisible and never resurrected", func(t *testing.T) {
		r := newRepo(t)
		seeded := seed(t, r)

		victim, err := r.FindByID(ctx, seeded[1])
		require.NoError(t, err)
		victim.Deactivate(base.Add(time.Hour))
		_, err = r.Replace(ctx, victim)
		require.NoError(t, err)

		_, err = r.FindByID(ctx, seeded[1])
		assert.ErrorIs(t, err, ErrorNotFound)

		// повторная запись по удаленной задаче
		victim.Active = true
		_, err = r.Replace(ctx, victim)
		assert.ErrorIs(t, err, ErrorNotFound)

		all, err := r.FindAll(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids(all), seeded[1])

		n, err := r.Count(ctx, query.Active())
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		// даже пустой предикат не видит удаленные записи
		n, err = r.Count(ctx, query.Predicate{})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("find all is newest first", func(t *testing.T) {
		r := newRepo(t)
		seeded := seed(t, r)

		all, err := r.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{seeded[3], seeded[2], seeded[1], seeded[0]}, ids(all))
	})

	t.Run("find with predicate", func(t *testing.T) {
		r := newRepo(t)
		seeded := seed(t, r)

		tests := []struct {
			name   string
			filter model.TaskFilter
			want   []int64
		}{
			{name: "title substring", filter: model.TaskFilter{Title: "report"}, want: []int64{seeded[2], seeded[0]}},
			{name: "title is case sensitive", filter: model.TaskFilter{Title: "Report"}, want: []int64{}},
			{name: "category equality", filter: model.TaskFilter{Category: "Work"}, want: []int64{seeded[0]}},
			{name: "tag substring", filter: model.TaskFilter{Tag: "ab"}, want: []int64{seeded[0]}},
			{name: "status", filter: model.TaskFilter{Status: "Completed"}, want: []int64{seeded[2]}},
			{name: "not completed", filter: model.TaskFilter{Completed: ptr(false)}, want: []int64{seeded[3], seeded[1], seeded[0]}},
			{name: "priority", filter: model.TaskFilter{Priority: ptr(2)}, want: []int64{seeded[3], seeded[1]}},
			{
				name:   "created range inclusive",
				filter: model.TaskFilter{CreatedFrom: ptr(base.Add(time.Minute)), CreatedTo: ptr(base.Add(2 * time.Minute))},
				want:   []int64{seeded[2], seeded[1]},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				pred := query.Compose(tt.filter, query.CaseSensitive)

				got, err := r.Find(ctx, pred, query.Newest(), query.Unbounded)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(got))

				n, err := r.Count(ctx, pred)
				require.NoError(t, err)
				assert.Equal(t, len(tt.want), n)
			})
		}
	})

	t.Run("case insensitive text match", func(t *testing.T) {
		r := newRepo(t)
		seeded := seed(t, r)

		pred := query.Compose(model.TaskFilter{Category: "WORK"}, query.CaseInsensitive)
		got, err := r.Find(ctx, pred, query.Newest(), query.Unbounded)
		require.NoError(t, err)
		assert.Equal(t, []int64{seeded[1], seeded[0]}, ids(got))
	})

	t.Run("ordering", func(t *testing.T) {
		r := newRepo(t)
		s := seed(t, r)

		tests := []struct {
			key  string
			desc bool
			want []int64
		}{
			{key: "titulo", desc: false, want: []int64{s[0], s[2], s[1], s[3]}},
			{key: "prioridade", desc: false, want: []int64{s[0], s[1], s[3], s[2]}},
			{key: "prioridade", desc: true, want: []int64{s[2], s[3], s[1], s[0]}},
			{key: "datavencimento", desc: false, want: []int64{s[1], s[2], s[3], s[0]}},
			{key: "datavencimento", desc: true, want: []int64{s[0], s[3], s[2], s[1]}},
			{key: "unknown", desc: true, want: []int64{s[3], s[2], s[1], s[0]}},
		}

		for _, tt := range tests {
			got, err := r.Find(ctx, query.Active(), query.ResolveSort(tt.key, tt.desc), query.Unbounded)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got), "sort %s desc=%v", tt.key, tt.desc)
		}
	})

	t.Run("due dates in different zones order by instant", func(t *testing.T) {
		r := newRepo(t)
		moscow := time.FixedZone("MSK", 3*60*60)

		// 10:00+03:00 это 07:00Z, раньше чем 08:00Z
		early, err := r.Insert(ctx, newTask("early", base, func(t *model.Task) {
			t.DueAt = ptr(time.Date(2024, 2, 1, 10, 0, 0, 0, moscow))
		}))
		require.NoError(t, err)
		late, err := r.Insert(ctx, newTask("late", base, func(t *model.Task) {
			t.DueAt = ptr(time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))
		}))
		require.NoError(t, err)

		got, err := r.Find(ctx, query.Active(), query.ResolveSort("datavencimento", false), query.Unbounded)
		require.NoError(t, err)
		assert.Equal(t, []int64{early.ID, late.ID}, ids(got))

		got, err = r.Find(ctx, query.Active(), query.ResolveSort("datavencimento", true), query.Unbounded)
		require.NoError(t, err)
		assert.Equal(t, []int64{late.ID, early.ID}, ids(got))

		stored, err := r.FindByID(ctx, early.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.DueAt)
		assert.True(t, stored.DueAt.Equal(time.Date(2024, 2, 1, 7, 0, 0, 0, time.UTC)))
	})

	t.Run("window", func(t *testing.T) {
		r := newRepo(t)
		s := seed(t, r)

		got, err := r.Find(ctx, query.Active(), query.Newest(), query.Window{Offset: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []int64{s[2], s[1]}, ids(got))

		got, err = r.Find(ctx, query.Active(), query.Newest(), query.Window{Offset: 3, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []int64{s[0]}, ids(got))

		got, err = r.Find(ctx, query.Active(), query.Newest(), query.Window{Offset: 10, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
