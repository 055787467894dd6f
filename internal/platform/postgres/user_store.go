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

const userColumns = "id, username, email, password_hash, role, created_at, updated_at"

// PostgresUserStore implements store.UserStore on PostgreSQL.
type PostgresUserStore struct {
	db     DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresUserStore creates a user store over db, which may be a *sql.DB
// or a *sql.Tx. Delete opens its own transaction only when db is a *sql.DB.
// If logger is nil, slog.Default() is used.
func NewPostgresUserStore(db DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	sqlDB, _ := db.(*sql.DB)
	return &PostgresUserStore{
		db:     db,
		sqlDB:  sqlDB,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.Email, user.HashedPassword, string(user.Role),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			s.logger.DebugContext(ctx, "user already exists", slog.String("user_id", user.ID.String()))
		} else {
			s.logger.ErrorContext(ctx, "failed to insert user", slog.String("error", err.Error()))
		}
		return mapped
	}
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return s.scanOne(row)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		domain.NormalizeEmail(email))
	return s.scanOne(row)
}

// GetByIDs implements store.UserStore.GetByIDs.
func (s *PostgresUserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	result := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return nil, store.NewStoreError("user", "get_by_ids", "query failed", MapError(err))
	}
	users, err := scanUsers(rows)
	if err != nil {
		return nil, store.NewStoreError("user", "get_by_ids", "scan failed", err)
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// List implements store.UserStore.List.
func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, store.NewStoreError("user", "list", "query failed", MapError(err))
	}
	users, err := scanUsers(rows)
	if err != nil {
		return nil, store.NewStoreError("user", "list", "scan failed", err)
	}
	return users, nil
}

// Delete implements store.UserStore.Delete. Tasks referencing the user are
// removed by the ON DELETE CASCADE foreign keys in the same statement; the
// count is read first inside the same transaction.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var removed int64
	run := func(ctx context.Context, q DBTX) error {
		n, err := deleteUser(ctx, q, id)
		removed = n
		return err
	}

	var err error
	if s.sqlDB != nil {
		err = RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
			return run(ctx, tx)
		})
	} else {
		err = run(ctx, s.db)
	}
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id.String()),
		slog.Int64("tasks_removed", removed))
	return removed, nil
}

func deleteUser(ctx context.Context, q DBTX, id uuid.UUID) (int64, error) {
	var count int64
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE assigned_to = $1 OR created_by = $1`, id,
	).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	res, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, MapError(err)
	}
	if err := checkRowsAffected(res, store.ErrUserNotFound); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PostgresUserStore) scanOne(row *sql.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &role,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func scanUsers(rows *sql.Rows) ([]*domain.User, error) {
	defer func() { _ = rows.Close() }()
	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
