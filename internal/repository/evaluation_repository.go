package repository

import (
	"context"

	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/storage"
)

const evaluationCollection = "evaluations"

// EvaluationRepository persists evaluations.
type EvaluationRepository struct {
	*Repository[*domain.Evaluation]
}

// NewEvaluationRepository creates an EvaluationRepository on the given port.
func NewEvaluationRepository(port storage.Port) *EvaluationRepository {
	r := New(port, evaluationCollection,
		func() *domain.Evaluation { return &domain.Evaluation{} },
		domain.ErrEvaluationNotFound)
	r.normalize = normalizeEvaluation
	return &EvaluationRepository{Repository: r}
}

// normalizeEvaluation repairs legacy records: an absent type means a task
// evaluation, and MaxScore defaults to the conventional 100-point scale.
func normalizeEvaluation(e *domain.Evaluation) {
	if e.EvaluationType == "" {
		e.EvaluationType = domain.EvalTypeTask
	}
	if e.MaxScore == 0 && e.Score > 0 {
		e.MaxScore = 100
	}
}

// FindByTask returns a task's evaluations, oldest first.
func (r *EvaluationRepository) FindByTask(ctx context.Context, taskID string) ([]*domain.Evaluation, error) {
	return r.FindMany(ctx, Filter{"taskId": taskID}, QueryOptions{
		OrderBy: "createdAt",
	})
}

// FindByProgram returns every evaluation belonging to a program, oldest
// first. Task-level evaluations carry the program id as well, so this is the
// aggregation read.
func (r *EvaluationRepository) FindByProgram(ctx context.Context, programID string) ([]*domain.Evaluation, error) {
	return r.FindMany(ctx, Filter{"programId": programID}, QueryOptions{
		OrderBy: "createdAt",
	})
}

// FindByType returns evaluations of one type for a program.
func (r *EvaluationRepository) FindByType(ctx context.Context, programID string, typ domain.EvaluationType) ([]*domain.Evaluation, error) {
	return r.FindMany(ctx, Filter{
		"programId":      programID,
		"evaluationType": string(typ),
	}, QueryOptions{
		OrderBy: "createdAt",
	})
}

// FindProgramCompletion returns the program-level completion evaluation, or
// domain.ErrEvaluationNotFound when the program has not been completed. At
// most one completion record exists per program.
func (r *EvaluationRepository) FindProgramCompletion(ctx context.Context, programID string) (*domain.Evaluation, error) {
	evals, err := r.FindByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	for _, e := range evals {
		if e.EvaluationType.IsCompletion() {
			return e, nil
		}
	}
	return nil, domain.ErrEvaluationNotFound
}

// FindTaskEvaluations returns the task-scoped evaluations of a program in
// creation order, excluding any completion record.
func (r *EvaluationRepository) FindTaskEvaluations(ctx context.Context, programID string) ([]*domain.Evaluation, error) {
	evals, err := r.FindByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	tasks := make([]*domain.Evaluation, 0, len(evals))
	for _, e := range evals {
		if !e.EvaluationType.IsCompletion() {
			tasks = append(tasks, e)
		}
	}
	return tasks, nil
}
