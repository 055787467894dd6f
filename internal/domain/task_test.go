package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskDefaults(t *testing.T) {
	assignee, creator := uuid.New(), uuid.New()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	task, err := NewTask("Write report", "Quarterly numbers", due, "", assignee, creator)
	require.NoError(t, err)

	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, TaskPriorityMedium, task.Priority)
	assert.Equal(t, assignee, task.AssignedTo)
	assert.Equal(t, creator, task.CreatedBy)
	assert.Equal(t, due, task.DueDate)
}

func TestNewTaskValidation(t *testing.T) {
	due := time.Now()
	id := uuid.New()

	_, err := NewTask("", "desc", due, TaskPriorityLow, id, id)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewTask("title", "desc", time.Time{}, TaskPriorityLow, id, id)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewTask("title", "desc", due, TaskPriority("someday"), id, id)
	assert.ErrorIs(t, err, ErrInvalidTaskPriority)

	_, err = NewTask("title", "desc", due, TaskPriorityLow, uuid.Nil, id)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestParseEnums(t *testing.T) {
	for _, s := range TaskStatuses {
		got, err := ParseTaskStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseTaskStatus("done")
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus))

	for _, p := range TaskPriorities {
		got, err := ParseTaskPriority(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err = ParseTaskPriority("critical")
	assert.True(t, errors.Is(err, ErrInvalidTaskPriority))
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 4, TaskPriorityUrgent.Rank())
	assert.Equal(t, 3, TaskPriorityHigh.Rank())
	assert.Equal(t, 2, TaskPriorityMedium.Rank())
	assert.Equal(t, 1, TaskPriorityLow.Rank())
	assert.Equal(t, 0, TaskPriority("").Rank())
}

func TestTaskPatchAppliesOnlyPresentFields(t *testing.T) {
	task, err := NewTask("Original", "Keep me", time.Now(), TaskPriorityLow, uuid.New(), uuid.New())
	require.NoError(t, err)
	before := *task

	title := "Renamed"
	status := TaskStatusCompleted
	err = TaskPatch{Title: &title, Status: &status}.Apply(task)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", task.Title)
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Equal(t, before.Description, task.Description)
	assert.Equal(t, before.Priority, task.Priority)
	assert.Equal(t, before.AssignedTo, task.AssignedTo)
	assert.False(t, task.UpdatedAt.Before(before.UpdatedAt))
}

func TestTaskPatchRejectsInvalidStatus(t *testing.T) {
	task, err := NewTask("t", "d", time.Now(), TaskPriorityLow, uuid.New(), uuid.New())
	require.NoError(t, err)

	bogus := TaskStatus("archived")
	err = TaskPatch{Status: &bogus}.Apply(task)
	assert.ErrorIs(t, err, ErrInvalidTaskStatus)
}

func TestTaskStatsAdd(t *testing.T) {
	var stats TaskStats
	stats.Add(TaskStatusCompleted, TaskPriorityHigh)
	stats.Add(TaskStatusPending, TaskPriorityHigh)
	stats.Add(TaskStatusInProgress, TaskPriorityUrgent)

	assert.Equal(t, TaskStats{
		Total: 3, Pending: 1, InProgress: 1, Completed: 1,
		High: 2, Urgent: 1,
	}, stats)
}
