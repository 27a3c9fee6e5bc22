package repository

import (
	"context"

	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/storage"
)

const taskCollection = "tasks"

// TaskRepository persists tasks. Tasks belong exclusively to their program
// and are deleted only through program deletion.
type TaskRepository struct {
	*Repository[*domain.Task]
}

// NewTaskRepository creates a TaskRepository on the given port.
func NewTaskRepository(port storage.Port) *TaskRepository {
	r := New(port, taskCollection,
		func() *domain.Task { return &domain.Task{} },
		domain.ErrTaskNotFound)
	r.normalize = normalizeTask
	return &TaskRepository{Repository: r}
}

// normalizeTask repairs legacy records: missing status means pending, and
// title/instructions maps are always usable.
func normalizeTask(t *domain.Task) {
	if t.Status == "" {
		t.Status = domain.TaskStatusPending
	}
	if t.Title == nil {
		t.Title = domain.LocalizedText{}
	}
	if t.Instructions == nil {
		t.Instructions = domain.LocalizedText{}
	}
	if t.AttemptCount < 0 {
		t.AttemptCount = 0
	}
}

// FindByProgram returns a program's tasks in template order.
func (r *TaskRepository) FindByProgram(ctx context.Context, programID string) ([]*domain.Task, error) {
	return r.FindMany(ctx, Filter{"programId": programID}, QueryOptions{
		OrderBy: "scenarioTaskIndex",
	})
}

// FindByProgramAndIndex returns the task at one template position.
func (r *TaskRepository) FindByProgramAndIndex(ctx context.Context, programID string, index int) (*domain.Task, error) {
	return r.FindOne(ctx, Filter{
		"programId":         programID,
		"scenarioTaskIndex": index,
	})
}

// DeleteByProgram removes all tasks of a program. Used by cascading program
// deletion; tasks are never deleted independently.
func (r *TaskRepository) DeleteByProgram(ctx context.Context, programID string) (int, error) {
	tasks, err := r.FindByProgram(ctx, programID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, task := range tasks {
		ok, err := r.Delete(ctx, task.ID)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}
