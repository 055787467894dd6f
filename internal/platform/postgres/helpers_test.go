package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/require"
)

var (
	userCols = []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}
	taskCols = []string{
		"id", "title", "description", "due_date", "status", "priority",
		"assigned_to", "created_by", "created_at", "updated_at",
	}
	fixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func testUser(t *testing.T, username, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, email, "$2a$10$hash", domain.RoleUser)
	require.NoError(t, err)
	return u
}

func testTask(t *testing.T, assignee, creator uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("Write report", "Quarterly numbers", fixedTime, domain.TaskPriorityHigh, assignee, creator)
	require.NoError(t, err)
	return task
}

func userRow(rows *sqlmock.Rows, u *domain.User) *sqlmock.Rows {
	return rows.AddRow(u.ID.String(), u.Username, u.Email, u.HashedPassword, string(u.Role), fixedTime, fixedTime)
}

func taskRow(rows *sqlmock.Rows, t *domain.Task) *sqlmock.Rows {
	return rows.AddRow(t.ID.String(), t.Title, t.Description, t.DueDate, string(t.Status), string(t.Priority),
		t.AssignedTo.String(), t.CreatedBy.String(), fixedTime, fixedTime)
}
