package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
)

type SortKey uint8

const (
	SortCreatedAt SortKey = iota
	SortTitle
	SortDueAt
	SortPriority
)

// sortKeys is closed: anything missing falls back to SortCreatedAt.
var sortKeys = map[string]SortKey{
	"titulo":         SortTitle,
	"datavencimento": SortDueAt,
	"prioridade":     SortPriority,
}

type comparator func(a, b model.Task) int

var comparators = map[SortKey]comparator{
	SortCreatedAt: func(a, b model.Task) int { return a.CreatedAt.Compare(b.CreatedAt) },
	SortTitle:     func(a, b model.Task) int { return strings.Compare(a.Title, b.Title) },
	SortDueAt:     compareDue,
	SortPriority:  func(a, b model.Task) int { return cmp.Compare(a.Priority, b.Priority) },
}

// nil due dates sort as the lowest value
func compareDue(a, b model.Task) int {
	switch {
	case a.DueAt == nil && b.DueAt == nil:
		return 0
	case a.DueAt == nil:
		return -1
	case b.DueAt == nil:
		return 1
	}
	return a.DueAt.Compare(*b.DueAt)
}

// Ordering is a resolved sort: a key, a direction and an ID tie-break in
// the same direction.
type Ordering struct {
	Key        SortKey
	Descending bool
}

// ResolveSort maps a sort key name (case-insensitive) to an Ordering.
func ResolveSort(name string, descending bool) Ordering {
	key, ok := sortKeys[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		key = SortCreatedAt
	}
	return Ordering{Key: key, Descending: descending}
}

// Newest is the default listing order.
func Newest() Ordering {
	return Ordering{Key: SortCreatedAt, Descending: true}
}

func (o Ordering) Compare(a, b model.Task) int {
	c := comparators[o.Key](a, b)
	if c == 0 {
		c = cmp.Compare(a.ID, b.ID)
	}
	if o.Descending {
		return -c
	}
	return c
}

func (o Ordering) Sort(tasks []model.Task) {
	slices.SortStableFunc(tasks, o.Compare)
}

// SQL renders the ORDER BY body.
func (o Ordering) SQL(d Dialect) string {
	dir := "ASC"
	if o.Descending {
		dir = "DESC"
	}

	var primary string
	switch o.Key {
	case SortTitle:
		if d == Postgres {
			primary = fmt.Sprintf(`title COLLATE "C" %s`, dir)
		} else {
			primary = "title " + dir
		}
	case SortDueAt:
		nulls := "NULLS FIRST"
		if o.Descending {
			nulls = "NULLS LAST"
		}
		primary = fmt.Sprintf("due_at %s %s", dir, nulls)
	case SortPriority:
		primary = "priority " + dir
	default:
		primary = "created_at " + dir
	}
	return fmt.Sprintf("%s, id %s", primary, dir)
}
