package mongodb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDocument struct {
	ID             string    `bson:"_id"`
	Username       string    `bson:"username"`
	Email          string    `bson:"email"`
	HashedPassword string    `bson:"password"`
	Role           string    `bson:"role"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

type taskDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	DueDate     time.Time `bson:"dueDate"`
	Status      string    `bson:"status"`
	Priority    string    `bson:"priority"`
	AssignedTo  string    `bson:"assignedTo"`
	CreatedBy   string    `bson:"createdBy"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func newUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		Role:           string(u.Role),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", d.ID, err)
	}
	return &domain.User{
		ID:             id,
		Username:       d.Username,
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		Role:           domain.Role(d.Role),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}, nil
}

func newTaskDocument(t *domain.Task) taskDocument {
	return taskDocument{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssignedTo:  t.AssignedTo.String(),
		CreatedBy:   t.CreatedBy.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDocument) toDomain() (*domain.Task, error) {
	var ids [3]uuid.UUID
	for i, raw := range []string{d.ID, d.AssignedTo, d.CreatedBy} {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt task reference %q: %w", raw, err)
		}
		ids[i] = id
	}
	return &domain.Task{
		ID:          ids[0],
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate.UTC(),
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.TaskPriority(d.Priority),
		AssignedTo:  ids[1],
		CreatedBy:   ids[2],
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

// taskFilter renders a store filter as a query document.
func taskFilter(f store.TaskFilter) bson.D {
	q := bson.D{}
	if f.AssignedTo != nil {
		q = append(q, bson.E{Key: "assignedTo", Value: f.AssignedTo.String()})
	}
	if f.Status != nil {
		q = append(q, bson.E{Key: "status", Value: string(*f.Status)})
	}
	if f.Priority != nil {
		q = append(q, bson.E{Key: "priority", Value: string(*f.Priority)})
	}
	return q
}

// newestFirst is the sort order shared by every list query.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// mapError translates driver errors into store sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case mongo.IsDuplicateKeyError(err):
		msg := err.Error()
		switch {
		case strings.Contains(msg, usernameIndex):
			return fmt.Errorf("%w: %v", store.ErrUsernameExists, err)
		case strings.Contains(msg, emailIndex):
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
