package client

import (
	"cmp"
	"slices"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// SortKey names a column the task list can be ordered by.
type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortTitle     SortKey = "title"
	SortPriority  SortKey = "priority"
	SortAssignee  SortKey = "assignedTo"
	SortDueDate   SortKey = "dueDate"
)

// ParseSortKey validates a user-supplied sort column.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortCreatedAt, SortTitle, SortPriority, SortAssignee, SortDueDate:
		return k, true
	default:
		return "", false
	}
}

// ViewQuery is the local-only presentation of a page: search text and sort.
type ViewQuery struct {
	Search  string
	SortKey SortKey
	Desc    bool
}

// DefaultView shows the server's order, newest first.
func DefaultView() ViewQuery {
	return ViewQuery{SortKey: SortCreatedAt, Desc: true}
}

// Project filters tasks by q.Search (case-insensitive, title or description)
// and stable-sorts the result by q.SortKey. The input slice is not modified.
func Project(tasks []*domain.TaskDetail, q ViewQuery) []*domain.TaskDetail {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]*domain.TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			out = append(out, t)
		}
	}

	compare := comparator(q.SortKey)
	slices.SortStableFunc(out, func(a, b *domain.TaskDetail) int {
		if q.Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func comparator(key SortKey) func(a, b *domain.TaskDetail) int {
	switch key {
	case SortTitle:
		return func(a, b *domain.TaskDetail) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortPriority:
		return func(a, b *domain.TaskDetail) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		}
	case SortAssignee:
		return func(a, b *domain.TaskDetail) int {
			return cmp.Compare(strings.ToLower(a.AssignedTo.Username), strings.ToLower(b.AssignedTo.Username))
		}
	case SortDueDate:
		return func(a, b *domain.TaskDetail) int { return a.DueDate.Compare(b.DueDate) }
	default:
		return func(a, b *domain.TaskDetail) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}
