package mongodb

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskStore implements store.TaskStore on MongoDB.
type TaskStore struct {
	tasks  *mongo.Collection
	users  *mongo.Collection
	logger *slog.Logger
}

// NewTaskStore returns a task store over db. If logger is nil, slog.Default() is used.
func NewTaskStore(db *mongo.Database, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		tasks:  db.Collection(tasksCollection),
		users:  db.Collection(usersCollection),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if err := s.checkRefs(ctx, task); err != nil {
		return err
	}
	if _, err := s.tasks.InsertOne(ctx, newTaskDocument(task)); err != nil {
		s.logger.ErrorContext(ctx, "failed to insert task", slog.String("error", err.Error()))
		return mapError(err)
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDocument
	if err := s.tasks.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrTaskNotFound
		}
		return nil, mapError(err)
	}
	return doc.toDomain()
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if err := s.checkRefs(ctx, task); err != nil {
		return err
	}

	res, err := s.tasks.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: task.ID.String()}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "title", Value: task.Title},
			{Key: "description", Value: task.Description},
			{Key: "dueDate", Value: task.DueDate},
			{Key: "status", Value: string(task.Status)},
			{Key: "priority", Value: string(task.Priority)},
			{Key: "assignedTo", Value: task.AssignedTo.String()},
			{Key: "updatedAt", Value: task.UpdatedAt},
		}}},
	)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.tasks.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// List implements store.TaskStore.List.
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, int, error) {
	q := taskFilter(filter)
	total, err := s.tasks.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, store.NewStoreError("task", "list", "count failed", mapError(err))
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))
	tasks, err := s.find(ctx, q, opts)
	if err != nil {
		return nil, 0, store.NewStoreError("task", "list", "query failed", err)
	}
	return tasks, int(total), nil
}

// ListAll implements store.TaskStore.ListAll.
func (s *TaskStore) ListAll(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	tasks, err := s.find(ctx, taskFilter(filter), options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, store.NewStoreError("task", "list_all", "query failed", err)
	}
	return tasks, nil
}

// Stats implements store.TaskStore.Stats.
func (s *TaskStore) Stats(ctx context.Context, filter store.TaskFilter) (*domain.TaskStats, error) {
	cur, err := s.tasks.Aggregate(ctx, statsPipeline(filter))
	if err != nil {
		return nil, store.NewStoreError("task", "stats", "aggregate failed", mapError(err))
	}
	var rows []domain.TaskStats
	if err := cur.All(ctx, &rows); err != nil {
		return nil, store.NewStoreError("task", "stats", "decode failed", mapError(err))
	}
	if len(rows) == 0 {
		return &domain.TaskStats{}, nil
	}
	return &rows[0], nil
}

// statsPipeline groups every matching task into one document whose field
// names line up with domain.TaskStats.
func statsPipeline(filter store.TaskFilter) mongo.Pipeline {
	count := func(field, value string) bson.D {
		return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$" + field, value}}}, 1, 0,
		}}}}}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: taskFilter(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "pending", Value: count("status", string(domain.TaskStatusPending))},
			{Key: "inprogress", Value: count("status", string(domain.TaskStatusInProgress))},
			{Key: "completed", Value: count("status", string(domain.TaskStatusCompleted))},
			{Key: "low", Value: count("priority", string(domain.TaskPriorityLow))},
			{Key: "medium", Value: count("priority", string(domain.TaskPriorityMedium))},
			{Key: "high", Value: count("priority", string(domain.TaskPriorityHigh))},
			{Key: "urgent", Value: count("priority", string(domain.TaskPriorityUrgent))},
		}}},
	}
}

// checkRefs stands in for the foreign keys MongoDB does not have.
func (s *TaskStore) checkRefs(ctx context.Context, task *domain.Task) error {
	ids := []string{task.AssignedTo.String()}
	if task.CreatedBy != task.AssignedTo {
		ids = append(ids, task.CreatedBy.String())
	}
	n, err := s.users.CountDocuments(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return mapError(err)
	}
	if int(n) != len(ids) {
		return store.NewStoreError("task", "write", "referenced user does not exist", store.ErrInvalidEntity)
	}
	return nil
}

func (s *TaskStore) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*domain.Task, error) {
	cur, err := s.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(err)
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError(err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		t, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
