// Package query turns a model.TaskFilter into a predicate, an ordering and a
// page window. Predicates evaluate tasks in memory and also render themselves
// as SQL, so every store backend applies the same filter semantics.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
)

// TextMatch is the comparison policy for the title and category clauses.
type TextMatch uint8

const (
	// CaseSensitive mirrors the default binary comparison of Postgres and SQLite.
	CaseSensitive TextMatch = iota
	CaseInsensitive
)

func ParseTextMatch(v string) TextMatch {
	if strings.EqualFold(strings.TrimSpace(v), "insensitive") {
		return CaseInsensitive
	}
	return CaseSensitive
}

func (m TextMatch) String() string {
	if m == CaseInsensitive {
		return "insensitive"
	}
	return "sensitive"
}

// Dialect selects the SQL flavour a predicate or ordering renders to.
// Placeholders are always "?"; stores rebind them if needed.
type Dialect uint8

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) contains(column string) string {
	if d == SQLite {
		return fmt.Sprintf("instr(%s, ?) > 0", column)
	}
	return fmt.Sprintf("strpos(%s, ?) > 0", column)
}

// Clause is a single optional constraint.
type Clause interface {
	Match(t model.Task) bool
	SQL(d Dialect) (string, []any)
}

// Predicate is the conjunction of its clauses. The zero value matches
// every task, active or not; use Active or Compose to build one.
type Predicate struct {
	clauses []Clause
}

// Active matches every active task.
func Active() Predicate {
	return Predicate{clauses: []Clause{activeClause{}}}
}

// And returns a copy of p extended with c.
func (p Predicate) And(c Clause) Predicate {
	clauses := make([]Clause, 0, len(p.clauses)+1)
	clauses = append(clauses, p.clauses...)
	return Predicate{clauses: append(clauses, c)}
}

func (p Predicate) Len() int {
	return len(p.clauses)
}

func (p Predicate) Match(t model.Task) bool {
	for _, c := range p.clauses {
		if !c.Match(t) {
			return false
		}
	}
	return true
}

// SQL renders the WHERE body with "?" placeholders.
func (p Predicate) SQL(d Dialect) (string, []any) {
	if len(p.clauses) == 0 {
		return "1 = 1", nil
	}
	parts := make([]string, 0, len(p.clauses))
	var args []any
	for _, c := range p.clauses {
		s, a := c.SQL(d)
		parts = append(parts, s)
		args = append(args, a...)
	}
	return strings.Join(parts, " AND "), args
}

// Compose builds the predicate for f. Only the fields that are set add a
// clause, and nothing here fails: an unknown status simply adds none.
func Compose(f model.TaskFilter, match TextMatch) Predicate {
	p := Active()

	if f.Title != "" {
		p = p.And(TitleContains(f.Title, match))
	}
	if f.Status != "" {
		if status, ok := model.ParseStatus(f.Status); ok {
			p = p.And(StatusIs(status))
		}
	}
	if f.Category != "" {
		p = p.And(CategoryIs(f.Category, match))
	}
	if f.Tag != "" {
		p = p.And(TagContains(f.Tag))
	}
	if f.CreatedFrom != nil {
		p = p.And(CreatedFrom(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		p = p.And(CreatedTo(*f.CreatedTo))
	}
	if f.Priority != nil {
		p = p.And(PriorityIs(*f.Priority))
	}
	if f.Completed != nil {
		p = p.And(CompletedIs(*f.Completed))
	}
	return p
}

type activeClause struct{}

func (activeClause) Match(t model.Task) bool { return t.Active }

func (activeClause) SQL(Dialect) (string, []any) {
	return "active = ?", []any{true}
}

type titleClause struct {
	sub   string
	match TextMatch
}

func TitleContains(sub string, match TextMatch) Clause {
	return titleClause{sub: sub, match: match}
}

func (c titleClause) Match(t model.Task) bool {
	if c.match == CaseInsensitive {
		return strings.Contains(strings.ToLower(t.Title), strings.ToLower(c.sub))
	}
	return strings.Contains(t.Title, c.sub)
}

func (c titleClause) SQL(d Dialect) (string, []any) {
	if c.match == CaseInsensitive {
		return d.contains("lower(title)"), []any{strings.ToLower(c.sub)}
	}
	return d.contains("title"), []any{c.sub}
}

type statusClause struct {
	status model.Status
}

func StatusIs(s model.Status) Clause {
	return statusClause{status: s}
}

func (c statusClause) Match(t model.Task) bool { return t.Status == c.status }

func (c statusClause) SQL(Dialect) (string, []any) {
	return "status = ?", []any{int16(c.status)}
}

type categoryClause struct {
	value string
	match TextMatch
}

func CategoryIs(v string, match TextMatch) Clause {
	return categoryClause{value: v, match: match}
}

func (c categoryClause) Match(t model.Task) bool {
	if c.match == CaseInsensitive {
		return strings.EqualFold(t.Category, c.value)
	}
	return t.Category == c.value
}

func (c categoryClause) SQL(Dialect) (string, []any) {
	if c.match == CaseInsensitive {
		return "lower(category) = ?", []any{strings.ToLower(c.value)}
	}
	return "category = ?", []any{c.value}
}

// tagClause checks the joined tag string, so "ab" also matches "abc".
type tagClause struct {
	sub string
}

func TagContains(sub string) Clause {
	return tagClause{sub: sub}
}

func (c tagClause) Match(t model.Task) bool {
	return t.Tags != "" && strings.Contains(t.Tags, c.sub)
}

func (c tagClause) SQL(d Dialect) (string, []any) {
	return "tags <> '' AND " + d.contains("tags"), []any{c.sub}
}

type createdFromClause struct {
	at time.Time
}

func CreatedFrom(at time.Time) Clause {
	return createdFromClause{at: at}
}

func (c createdFromClause) Match(t model.Task) bool { return !t.CreatedAt.Before(c.at) }

func (c createdFromClause) SQL(Dialect) (string, []any) {
	return "created_at >= ?", []any{c.at.UTC()}
}

type createdToClause struct {
	at time.Time
}

func CreatedTo(at time.Time) Clause {
	return createdToClause{at: at}
}

func (c createdToClause) Match(t model.Task) bool { return !t.CreatedAt.After(c.at) }

func (c createdToClause) SQL(Dialect) (string, []any) {
	return "created_at <= ?", []any{c.at.UTC()}
}

type priorityClause struct {
	priority int
}

func PriorityIs(p int) Clause {
	return priorityClause{priority: p}
}

func (c priorityClause) Match(t model.Task) bool { return t.Priority == c.priority }

func (c priorityClause) SQL(Dialect) (string, []any) {
	return "priority = ?", []any{c.priority}
}

type completedClause struct {
	completed bool
}

func CompletedIs(completed bool) Clause {
	return completedClause{completed: completed}
}

func (c completedClause) Match(t model.Task) bool {
	return (t.Status == model.StatusCompleted) == c.completed
}

func (c completedClause) SQL(Dialect) (string, []any) {
	if c.completed {
		return "status = ?", []any{int16(model.StatusCompleted)}
	}
	return "status <> ?", []any{int16(model.StatusCompleted)}
}
