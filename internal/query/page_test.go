package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name              string
		page, size, total int
		want              Pagination
	}{
		{
			name: "first of three", page: 1, size: 10, total: 25,
			want: Pagination{Page: 1, PageSize: 10, TotalItems: 25, TotalPages: 3, HasNext: true},
		},
		{
			name: "last partial page", page: 3, size: 10, total: 25,
			want: Pagination{Page: 3, PageSize: 10, TotalItems: 25, TotalPages: 3, HasPrevious: true},
		},
		{
			name: "exact multiple", page: 2, size: 5, total: 10,
			want: Pagination{Page: 2, PageSize: 5, TotalItems: 10, TotalPages: 2, HasPrevious: true},
		},
		{
			name: "empty", page: 1, size: 20, total: 0,
			want: Pagination{Page: 1, PageSize: 20},
		},
		{
			name: "past the end", page: 5, size: 10, total: 25,
			want: Pagination{Page: 5, PageSize: 10, TotalItems: 25, TotalPages: 3, HasPrevious: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.page, tt.size, tt.total))
		})
	}
}

func TestWindow(t *testing.T) {
	w := Paginate(3, 10, 25).Window()
	assert.Equal(t, Window{Offset: 20, Limit: 10}, w)

	start, end := w.Apply(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = Window{Offset: 40, Limit: 10}.Apply(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)

	start, end = Unbounded.Apply(7)
	assert.Equal(t, 0, start)
	assert.Equal(t, 7, end)
}
