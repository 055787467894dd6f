package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore implements store.UserStore on MongoDB.
type UserStore struct {
	users  *mongo.Collection
	tasks  *mongo.Collection
	logger *slog.Logger
}

// NewUserStore returns a user store over db. If logger is nil, slog.Default() is used.
func NewUserStore(db *mongo.Database, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		users:  db.Collection(usersCollection),
		tasks:  db.Collection(tasksCollection),
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if _, err := s.users.InsertOne(ctx, newUserDocument(user)); err != nil {
		mapped := mapError(err)
		if !store.IsDuplicateError(mapped) {
			s.logger.ErrorContext(ctx, "failed to insert user", slog.String("error", err.Error()))
		}
		return mapped
	}
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: domain.NormalizeEmail(email)}})
}

// GetByIDs implements store.UserStore.GetByIDs.
func (s *UserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	out := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	users, err := s.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: keys}}}}, nil)
	if err != nil {
		return nil, store.NewStoreError("user", "get_by_ids", "query failed", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// List implements store.UserStore.List.
func (s *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.find(ctx, bson.D{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, store.NewStoreError("user", "list", "query failed", err)
	}
	return users, nil
}

// Delete implements store.UserStore.Delete. Standalone servers have no
// multi-document transactions, so tasks go first and the user last; a
// failure in between leaves the user in place to retry against.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	key := id.String()
	n, err := s.users.CountDocuments(ctx, bson.D{{Key: "_id", Value: key}})
	if err != nil {
		return 0, mapError(err)
	}
	if n == 0 {
		return 0, store.ErrUserNotFound
	}

	res, err := s.tasks.DeleteMany(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "assignedTo", Value: key}},
		bson.D{{Key: "createdBy", Value: key}},
	}}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks of user: %w", mapError(err))
	}

	del, err := s.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	if err != nil {
		return 0, mapError(err)
	}
	if del.DeletedCount == 0 {
		return 0, store.ErrUserNotFound
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", key),
		slog.Int64("tasks_removed", res.DeletedCount))
	return res.DeletedCount, nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrUserNotFound
		}
		return nil, mapError(err)
	}
	return doc.toDomain()
}

func (s *UserStore) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*domain.User, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.users.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, mapError(err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError(err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}
