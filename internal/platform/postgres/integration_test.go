//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	db    *sql.DB
	users *PostgresUserStore
	tasks *PostgresTaskStore
}

func TestPostgresIntegration(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.db = testdb.Postgres(s.T())
	s.Require().NoError(Migrate(context.Background(), s.db, "up", nil))

	s.users = NewPostgresUserStore(s.db, nil)
	s.tasks = NewPostgresTaskStore(s.db, nil)
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE users CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) newUser(name string) *domain.User {
	u, err := domain.NewUser(name, name+"@example.com", "$2a$10$hash", domain.RoleUser)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(context.Background(), u))
	return u
}

func (s *PostgresIntegrationSuite) TestUniqueConstraints() {
	ctx := context.Background()
	s.newUser("alice")

	dupName, _ := domain.NewUser("alice", "other@example.com", "h", domain.RoleUser)
	s.ErrorIs(s.users.Create(ctx, dupName), store.ErrUsernameExists)

	dupEmail, _ := domain.NewUser("other", "ALICE@example.com", "h", domain.RoleUser)
	s.ErrorIs(s.users.Create(ctx, dupEmail), store.ErrEmailExists)
}

func (s *PostgresIntegrationSuite) TestTaskLifecycleAndCascade() {
	ctx := context.Background()
	alice := s.newUser("alice")
	bob := s.newUser("bob")

	for i := 0; i < 15; i++ {
		task, err := domain.NewTask("task", "desc", time.Now().Add(24*time.Hour), "", bob.ID, alice.ID)
		s.Require().NoError(err)
		task.CreatedAt = task.CreatedAt.Add(time.Duration(i) * time.Second)
		s.Require().NoError(s.tasks.Create(ctx, task))
	}

	page, total, err := s.tasks.List(ctx, store.TaskFilter{AssignedTo: &bob.ID}, store.Page{Number: 2, Size: 10})
	s.Require().NoError(err)
	s.Equal(15, total)
	s.Len(page, 5)

	stats, err := s.tasks.Stats(ctx, store.TaskFilter{})
	s.Require().NoError(err)
	s.Equal(15, stats.Total)
	s.Equal(15, stats.Medium)

	orphan, err := domain.NewTask("t", "d", time.Now(), "", uuid.New(), alice.ID)
	s.Require().NoError(err)
	s.ErrorIs(s.tasks.Create(ctx, orphan), store.ErrInvalidEntity)

	removed, err := s.users.Delete(ctx, bob.ID)
	s.Require().NoError(err)
	s.EqualValues(15, removed)

	remaining, err := s.tasks.ListAll(ctx, store.TaskFilter{})
	s.Require().NoError(err)
	s.Empty(remaining)
}

func (s *PostgresIntegrationSuite) TestStoresRunInsideTransaction() {
	ctx := context.Background()
	var id uuid.UUID

	testdb.WithTx(s.T(), s.db, func(t *testing.T, tx *sql.Tx) {
		users := NewPostgresUserStore(tx, nil)
		tasks := NewPostgresTaskStore(tx, nil)

		u, err := domain.NewUser("carol", "carol@example.com", "$2a$10$hash", domain.RoleUser)
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, u))
		id = u.ID

		task, err := domain.NewTask("t", "d", time.Now().Add(time.Hour), "", u.ID, u.ID)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))

		removed, err := users.Delete(ctx, u.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, removed)
	})

	_, err := s.users.GetByID(ctx, id)
	s.ErrorIs(err, store.ErrUserNotFound)
}

func TestOpenAgainstServer(t *testing.T) {
	db, err := Open(context.Background(), testdb.PostgresURL(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.NoError(t, db.PingContext(context.Background()))
}
