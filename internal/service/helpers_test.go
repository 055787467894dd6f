package service

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "service-test-secret-that-is-long-enough"

// mockEmitter records emitted events.
type mockEmitter struct {
	mock.Mock
}

func (m *mockEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// emitted returns the types of every event passed to EmitEvent, in order.
func (m *mockEmitter) emitted() []string {
	var types []string
	for _, call := range m.Calls {
		if call.Method == "EmitEvent" {
			types = append(types, call.Arguments.Get(1).(*events.Event).Type)
		}
	}
	return types
}

func newMockEmitter(err error) *mockEmitter {
	m := &mockEmitter{}
	m.On("EmitEvent", mock.Anything, mock.Anything).Return(err)
	return m
}

type fixture struct {
	users   *memory.UserStore
	tasks   *memory.TaskStore
	hasher  *auth.BcryptHasher
	tokens  auth.JWTService
	emitter *mockEmitter

	auth     *AuthService
	userSvc  *UserService
	taskSvc  *TaskService
	tokenCfg config.AuthConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := memory.NewDB()
	f := &fixture{
		users:    memory.NewUserStore(db),
		tasks:    memory.NewTaskStore(db),
		hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		emitter:  newMockEmitter(nil),
		tokenCfg: config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60},
	}
	tokens, err := auth.NewJWTService(f.tokenCfg)
	require.NoError(t, err)
	f.tokens = tokens

	log, _ := logger.NewBufferLogger()

	f.auth, err = NewAuthService(f.users, f.hasher, f.tokens, f.emitter, true, log)
	require.NoError(t, err)
	f.userSvc, err = NewUserService(f.users, f.hasher, f.emitter, log)
	require.NoError(t, err)
	f.taskSvc, err = NewTaskService(f.tasks, f.users, f.emitter, log)
	require.NoError(t, err)
	return f
}

// register creates an account and returns its principal.
func (f *fixture) register(t *testing.T, name string, role domain.Role) Principal {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: name + "-password",
		Role:     role,
	})
	require.NoError(t, err)
	return Principal{ID: res.User.ID, Username: res.User.Username, Email: res.User.Email, Role: res.User.Role}
}

func (f *fixture) createTask(t *testing.T, p Principal, title string, assignee Principal, priority domain.TaskPriority) *domain.TaskDetail {
	t.Helper()
	task, err := f.taskSvc.Create(context.Background(), p, CreateTaskInput{
		Title:       title,
		Description: title + " description",
		DueDate:     time.Now().Add(72 * time.Hour),
		Priority:    priority,
		AssignedTo:  assignee.ID,
	})
	require.NoError(t, err)
	return task
}
