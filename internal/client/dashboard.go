package client

import (
	"context"
	"fmt"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// DashboardPageSize is the number of tasks fetched per page.
const DashboardPageSize = 10

// TaskLister fetches a page of tasks. *Client implements it.
type TaskLister interface {
	ListTasks(ctx context.Context, q TaskQuery) (*service.TaskPage, error)
}

var _ TaskLister = (*Client)(nil)

// PageQuery is the part of the dashboard state that the server evaluates.
// Empty filters mean "all".
type PageQuery struct {
	Page     int
	Status   domain.TaskStatus
	Priority domain.TaskPriority
}

// Dashboard keeps the last server page unfiltered and derives the visible
// list from it. Changing PageQuery re-fetches; changing ViewQuery does not.
type Dashboard struct {
	lister     TaskLister
	page       PageQuery
	view       ViewQuery
	tasks      []*domain.TaskDetail
	pagination service.Pagination
}

// NewDashboard starts on page 1 with no filters and the default view. Call
// Refresh to load the first page.
func NewDashboard(lister TaskLister) *Dashboard {
	return &Dashboard{
		lister: lister,
		page:   PageQuery{Page: 1},
		view:   DefaultView(),
	}
}

// Refresh re-fetches the current page.
func (d *Dashboard) Refresh(ctx context.Context) error {
	res, err := d.lister.ListTasks(ctx, TaskQuery{
		Page:     d.page.Page,
		Limit:    DashboardPageSize,
		Status:   d.page.Status,
		Priority: d.page.Priority,
	})
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	d.tasks = res.Tasks
	d.pagination = res.Pagination
	return nil
}

// Load replaces the whole server-side query and fetches it once.
func (d *Dashboard) Load(ctx context.Context, q PageQuery) error {
	if q.Page < 1 {
		q.Page = 1
	}
	d.page = q
	return d.Refresh(ctx)
}

// SetPage moves to page n and re-fetches.
func (d *Dashboard) SetPage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	d.page.Page = n
	return d.Refresh(ctx)
}

// SetStatusFilter filters by status, or clears the filter when status is
// empty, and re-fetches from page 1.
func (d *Dashboard) SetStatusFilter(ctx context.Context, status domain.TaskStatus) error {
	d.page.Status = status
	d.page.Page = 1
	return d.Refresh(ctx)
}

// SetPriorityFilter filters by priority, or clears the filter when priority
// is empty, and re-fetches from page 1.
func (d *Dashboard) SetPriorityFilter(ctx context.Context, priority domain.TaskPriority) error {
	d.page.Priority = priority
	d.page.Page = 1
	return d.Refresh(ctx)
}

// SetSearch narrows the visible tasks on the current page only.
func (d *Dashboard) SetSearch(text string) {
	d.view.Search = text
}

// SetView replaces the local search and sort state.
func (d *Dashboard) SetView(v ViewQuery) {
	d.view = v
}

// SortBy orders by key. Selecting the active key again flips direction;
// a new key starts ascending.
func (d *Dashboard) SortBy(key SortKey) {
	if d.view.SortKey == key {
		d.view.Desc = !d.view.Desc
		return
	}
	d.view.SortKey = key
	d.view.Desc = false
}

// Visible returns the current page after search and sort.
func (d *Dashboard) Visible() []*domain.TaskDetail {
	return Project(d.tasks, d.view)
}

// Tasks returns the unfiltered server page.
func (d *Dashboard) Tasks() []*domain.TaskDetail {
	return d.tasks
}

// Page returns the server-side query.
func (d *Dashboard) Page() PageQuery {
	return d.page
}

// View returns the local search and sort state.
func (d *Dashboard) View() ViewQuery {
	return d.view
}

// Pagination returns the paging info of the last fetch.
func (d *Dashboard) Pagination() service.Pagination {
	return d.pagination
}

// HasNext reports whether a later page exists.
func (d *Dashboard) HasNext() bool {
	return d.pagination.Current < d.pagination.Pages
}

// HasPrev reports whether an earlier page exists.
func (d *Dashboard) HasPrev() bool {
	return d.page.Page > 1
}
