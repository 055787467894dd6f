package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/platform/metrics"
	"github.com/phrazzld/taskboard-api/internal/platform/mongodb"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/ratelimit"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const (
	driverPostgres = "postgres"
	driverMongo    = "mongo"
	driverMemory   = "memory"
)

// application holds the dependencies shared by the HTTP layer.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	authService *service.AuthService
	userService *service.UserService
	taskService *service.TaskService

	// authLimiter is nil when rate limiting is disabled.
	authLimiter ratelimit.Limiter

	closers []func(context.Context) error
}

type stores struct {
	users store.UserStore
	tasks store.TaskStore
}

// newApplication opens the configured backend and wires every service.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
	if err := app.wire(ctx); err != nil {
		return nil, err
	}

	logger.Info("application initialized", slog.String("database_driver", cfg.Database.Driver))
	return app, nil
}

// wire builds the stores, services and limiter. On error, anything already
// opened is closed.
func (app *application) wire(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	st, err := app.openStores(ctx)
	if err != nil {
		return err
	}

	emitter := events.NewInMemoryEventEmitter(app.logger)
	emitter.RegisterHandler(events.NewAuditLogHandler(app.logger))
	emitter.RegisterHandler(app.metrics)

	cfg := app.config
	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	app.authService, err = service.NewAuthService(st.users, hasher, tokens, emitter, cfg.Auth.AllowRoleOnRegister, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}
	app.userService, err = service.NewUserService(st.users, hasher, emitter, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	app.taskService, err = service.NewTaskService(st.tasks, st.users, emitter, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	return app.setupRateLimiter(ctx)
}

// openStores connects to the backend named by database.driver.
func (app *application) openStores(ctx context.Context) (stores, error) {
	cfg := app.config.Database
	switch cfg.Driver {
	case driverPostgres:
		db, err := postgres.Open(ctx, cfg.URL)
		if err != nil {
			return stores{}, err
		}
		app.closers = append(app.closers, func(context.Context) error { return db.Close() })
		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return stores{}, err
		}
		return stores{
			users: postgres.NewPostgresUserStore(db, app.logger),
			tasks: postgres.NewPostgresTaskStore(db, app.logger),
		}, nil

	case driverMongo:
		client, err := mongodb.Connect(ctx, cfg.URL)
		if err != nil {
			return stores{}, err
		}
		app.closers = append(app.closers, client.Disconnect)
		db := client.Database(cfg.Name)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return stores{}, err
		}
		return stores{
			users: mongodb.NewUserStore(db, app.logger),
			tasks: mongodb.NewTaskStore(db, app.logger),
		}, nil

	case driverMemory:
		app.logger.Warn("using in-memory storage; data is lost on restart")
		db := memory.NewDB()
		return stores{users: memory.NewUserStore(db), tasks: memory.NewTaskStore(db)}, nil

	default:
		return stores{}, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// setupRateLimiter backs the credential routes with Redis when a URL is
// configured and with process memory otherwise.
func (app *application) setupRateLimiter(ctx context.Context) error {
	rl := app.config.RateLimit
	if !rl.Enabled {
		return nil
	}
	if app.config.Redis.URL == "" {
		app.authLimiter = ratelimit.NewMemoryLimiter(rl.Requests, rl.Window())
		return nil
	}

	client, err := ratelimit.Connect(ctx, app.config.Redis.URL)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, func(context.Context) error { return client.Close() })
	app.authLimiter = ratelimit.NewRedisLimiter(client, rl.Requests, rl.Window())
	return nil
}

// cleanup releases backend connections in reverse order of acquisition.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			app.logger.Error("failed to release resource", "error", redact.Error(err))
		}
	}
	app.closers = nil
}
