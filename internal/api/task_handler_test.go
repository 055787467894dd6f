package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

func createTask(t *testing.T, api *testAPI, s session, title string, assignee uuid.UUID, priority string) *domain.TaskDetail {
	t.Helper()
	body := map[string]string{
		"title":       title,
		"description": title + " details",
		"dueDate":     "2025-12-31",
		"assignedTo":  assignee.String(),
	}
	if priority != "" {
		body["priority"] = priority
	}
	rec := api.do(t, http.MethodPost, "/api/tasks", s.token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[TaskResponse](t, rec)
	assert.Equal(t, "Task created successfully", res.Message)
	return res.Task
}

func TestTaskHandler_Create(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register(t, "admin", domain.RoleAdmin)
	bob := api.register(t, "bob", "")

	task := createTask(t, api, admin, "Report", bob.user.ID, "")
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	assert.Equal(t, "bob", task.AssignedTo.Username)
	assert.Equal(t, "admin", task.CreatedBy.Username)
	assert.Equal(t, "2025-12-31T00:00:00Z", task.DueDate.Format("2006-01-02T15:04:05Z07:00"))

	rec := api.do(t, http.MethodPost, "/api/tasks", admin.token, map[string]string{
		"title": "Ghost", "description": "d", "dueDate": "2025-12-31T10:00:00Z", "assignedTo": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Assigned user not found", decode[shared.ErrorResponse](t, rec).Message)

	rec = api.do(t, http.MethodPost, "/api/tasks", admin.token, map[string]string{
		"title": "Bad date", "description": "d", "dueDate": "31/12/2025", "assignedTo": bob.user.ID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[shared.ErrorResponse](t, rec).Error, "dueDate")

	rec = api.do(t, http.MethodPost, "/api/tasks", admin.token, map[string]string{
		"description": "d", "dueDate": "2025-12-31", "assignedTo": bob.user.ID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", decode[shared.ErrorResponse](t, rec).Error)
}

func TestTaskHandler_ListPaginationAndScope(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register(t, "admin", domain.RoleAdmin)
	bob := api.register(t, "bob", "")
	carol := api.register(t, "carol", "")

	for i := 0; i < 12; i++ {
		createTask(t, api, admin, fmt.Sprintf("bob %d", i), bob.user.ID, "")
	}
	createTask(t, api, admin, "carol 0", carol.user.ID, "high")

	rec := api.do(t, http.MethodGet, "/api/tasks?page=2&limit=5", admin.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[service.TaskPage](t, rec)
	assert.Len(t, page.Tasks, 5)
	assert.Equal(t, service.Pagination{Current: 2, Pages: 3, Total: 13}, page.Pagination)

	rec = api.do(t, http.MethodGet, "/api/tasks?assignedTo="+bob.user.ID.String(), carol.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[service.TaskPage](t, rec)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "carol 0", page.Tasks[0].Title)

	rec = api.do(t, http.MethodGet, "/api/tasks?priority=high", admin.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[service.TaskPage](t, rec).Pagination.Total)

	for _, q := range []string{"page=0", "page=abc", "limit=-1", "status=done", "priority=critical", "assignedTo=42"} {
		rec = api.do(t, http.MethodGet, "/api/tasks?"+q, admin.token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = api.do(t, http.MethodGet, "/api/tasks?assignedTo=42", carol.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "members are scoped to themselves whatever they send")
	page = decode[service.TaskPage](t, rec)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "carol 0", page.Tasks[0].Title)

	for _, q := range []string{"page=1000000000000000000", "page=922337203685477581"} {
		rec = api.do(t, http.MethodGet, "/api/tasks?"+q, admin.token, nil)
		require.Equal(t, http.StatusOK, rec.Code, q)
		page = decode[service.TaskPage](t, rec)
		assert.Empty(t, page.Tasks, q)
		assert.Equal(t, 13, page.Pagination.Total, q)
	}
}

func TestTaskHandler_GetUpdateDelete(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register(t, "admin", domain.RoleAdmin)
	bob := api.register(t, "bob", "")
	carol := api.register(t, "carol", "")
	task := createTask(t, api, admin, "Shared", bob.user.ID, "low")
	path := "/api/tasks/" + task.ID.String()

	rec := api.do(t, http.MethodGet, path, bob.token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, task.ID, decode[domain.TaskDetail](t, rec).ID)

	rec = api.do(t, http.MethodGet, path, carol.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", decode[shared.ErrorResponse](t, rec).Message)

	rec = api.do(t, http.MethodGet, "/api/tasks/"+uuid.NewString(), admin.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decode[shared.ErrorResponse](t, rec).Message)

	rec = api.do(t, http.MethodPut, path, bob.token, map[string]string{"title": "Renamed", "dueDate": "2026-01-15"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[TaskResponse](t, rec)
	assert.Equal(t, "Task updated successfully", updated.Message)
	assert.Equal(t, "Renamed", updated.Task.Title)
	assert.Equal(t, domain.TaskPriorityLow, updated.Task.Priority)

	rec = api.do(t, http.MethodPatch, path+"/status", bob.token, map[string]string{"status": "in-progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task status updated successfully", decode[TaskResponse](t, rec).Message)

	rec = api.do(t, http.MethodPatch, path+"/status", bob.token, map[string]string{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, path+"/priority", bob.token, map[string]string{"priority": "urgent"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[TaskResponse](t, rec)
	assert.Equal(t, "Task priority updated successfully", res.Message)
	assert.Equal(t, domain.TaskPriorityUrgent, res.Task.Priority)
	assert.Equal(t, domain.TaskStatusInProgress, res.Task.Status)

	rec = api.do(t, http.MethodDelete, path, bob.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Only task creator or admin can delete tasks.", decode[shared.ErrorResponse](t, rec).Message)

	rec = api.do(t, http.MethodDelete, path, admin.token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted successfully", decode[shared.MessageResponse](t, rec).Message)

	rec = api.do(t, http.MethodGet, path, admin.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskHandler_StatsAndPriority(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register(t, "admin", domain.RoleAdmin)
	bob := api.register(t, "bob", "")

	rec := api.do(t, http.MethodGet, "/api/tasks/stats", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"pending":0,"inProgress":0,"completed":0,"low":0,"medium":0,"high":0,"urgent":0}`, rec.Body.String())

	createTask(t, api, admin, "a", bob.user.ID, "high")
	createTask(t, api, admin, "b", admin.user.ID, "high")

	rec = api.do(t, http.MethodGet, "/api/tasks/stats", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[domain.TaskStats](t, rec)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.High)

	rec = api.do(t, http.MethodGet, "/api/tasks/priority/high", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	byPriority := decode[service.PriorityTasks](t, rec)
	assert.Equal(t, domain.TaskPriorityHigh, byPriority.Priority)
	assert.Len(t, byPriority.Tasks, 1)

	rec = api.do(t, http.MethodGet, "/api/tasks/priority/urgent", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"priority":"urgent","tasks":[]}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/tasks/priority/critical", bob.token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterFallbacks(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode[shared.ErrorResponse](t, rec).Message)

	rec = api.do(t, http.MethodDelete, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
