package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

func TestMemoryRepo(t *testing.T) {
	runContract(t, func(t *testing.T) TaskRepository {
		return NewMemoryRepo()
	})
}

func TestMemoryRepo_ConcurrentInsert(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := r.Insert(ctx, newTask(fmt.Sprintf("Task %d", idx), base, nil))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, goroutines)

	seen := make(map[int64]bool)
	for _, task := range all {
		assert.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
	}

	n, err := r.Count(ctx, query.Active())
	require.NoError(t, err)
	assert.Equal(t, goroutines, n)
}

func TestMemoryRepo_ReplaceKeepsCreatedAt(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	created, err := r.Insert(ctx, newTask("a", base, nil))
	require.NoError(t, err)

	created.CreatedAt = created.CreatedAt.Add(-24 * time.Hour)
	updated, err := r.Replace(ctx, created)
	require.NoError(t, err)
	assert.True(t, updated.CreatedAt.Equal(base))
}
