package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// DB holds every user and task in process memory.
type DB struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
	tasks map[uuid.UUID]domain.Task
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{
		users: make(map[uuid.UUID]domain.User),
		tasks: make(map[uuid.UUID]domain.Task),
	}
}
