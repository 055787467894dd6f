package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const taskColumns = "id, title, description, due_date, status, priority, assigned_to, created_by, created_at, updated_at"

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over db.
// If logger is nil, slog.Default() is used.
func NewPostgresTaskStore(db DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.Title, task.Description, task.DueDate,
		string(task.Status), string(task.Priority),
		task.AssignedTo, task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to insert task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}
	return t, nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = $2, description = $3, due_date = $4, status = $5,
			priority = $6, assigned_to = $7, updated_at = $8
		WHERE id = $1`,
		task.ID, task.Title, task.Description, task.DueDate,
		string(task.Status), string(task.Priority), task.AssignedTo, task.UpdatedAt,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return checkRowsAffected(res, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return checkRowsAffected(res, store.ErrTaskNotFound)
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	page store.Page,
) ([]*domain.Task, int, error) {
	where, args := whereClause(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, store.NewStoreError("task", "list", "count failed", MapError(err))
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		taskColumns, where, n+1, n+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, store.NewStoreError("task", "list", "scan failed", err)
	}
	return tasks, total, nil
}

// ListAll implements store.TaskStore.ListAll.
func (s *PostgresTaskStore) ListAll(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	where, args := whereClause(filter)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, store.NewStoreError("task", "list_all", "query failed", MapError(err))
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, store.NewStoreError("task", "list_all", "scan failed", err)
	}
	return tasks, nil
}

// Stats implements store.TaskStore.Stats.
func (s *PostgresTaskStore) Stats(ctx context.Context, filter store.TaskFilter) (*domain.TaskStats, error) {
	where, args := whereClause(filter)
	query := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'in-progress'),
		COUNT(*) FILTER (WHERE status = 'completed'),
		COUNT(*) FILTER (WHERE priority = 'low'),
		COUNT(*) FILTER (WHERE priority = 'medium'),
		COUNT(*) FILTER (WHERE priority = 'high'),
		COUNT(*) FILTER (WHERE priority = 'urgent')
	FROM tasks` + where

	var st domain.TaskStats
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&st.Total, &st.Pending, &st.InProgress, &st.Completed,
		&st.Low, &st.Medium, &st.High, &st.Urgent,
	)
	if err != nil {
		return nil, store.NewStoreError("task", "stats", "query failed", MapError(err))
	}
	return &st, nil
}

// whereClause renders filter as a WHERE clause with positional arguments.
func whereClause(filter store.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		conds = append(conds, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t                domain.Task
		status, priority string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &status, &priority,
		&t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.DueDate = t.DueDate.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	defer func() { _ = rows.Close() }()
	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
