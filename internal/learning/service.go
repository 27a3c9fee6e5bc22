// Package learning implements the orchestration state machine that drives a
// learner through a program. It is request-scoped and stateless between
// calls: every operation loads what it needs from the repositories, mutates
// in memory, and writes back. Concurrency control is a storage concern; the
// service holds no long-lived per-program state.
package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/feedback"
	"github.com/pathwayhq/pathway/internal/repository"
	"github.com/pathwayhq/pathway/internal/scoring"
)

// Service orchestrates programs, tasks, and evaluations.
type Service struct {
	scenarios   *repository.ScenarioRepository
	programs    *repository.ProgramRepository
	tasks       *repository.TaskRepository
	evaluations *repository.EvaluationRepository

	hooks     Hooks
	generator feedback.Generator // Optional: qualitative feedback on demand
	logger    *slog.Logger

	now func() time.Time
}

// NewService creates a learning service over the given repositories.
func NewService(
	scenarios *repository.ScenarioRepository,
	programs *repository.ProgramRepository,
	tasks *repository.TaskRepository,
	evaluations *repository.EvaluationRepository,
) *Service {
	return &Service{
		scenarios:   scenarios,
		programs:    programs,
		tasks:       tasks,
		evaluations: evaluations,
		hooks:       NopHooks{},
		logger:      slog.Default(),
		now:         time.Now,
	}
}

// SetHooks installs the post-transition hooks.
func (s *Service) SetHooks(h Hooks) {
	if h == nil {
		h = NopHooks{}
	}
	s.hooks = h
}

// SetFeedbackGenerator installs the AI feedback generator used by
// GetEvaluationFeedback.
func (s *Service) SetFeedbackGenerator(g feedback.Generator) {
	s.generator = g
}

// SetLogger overrides the default logger.
func (s *Service) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// StartOptions tunes program creation.
type StartOptions struct {
	// StartedAt overrides the program start timestamp. Zero means now.
	// Used when importing programs begun elsewhere.
	StartedAt time.Time
}

// StartLearning creates a program for the scenario and eagerly materializes
// one task per template, the first active and the rest pending.
//
// This is deliberately not idempotent: a learner may attempt a scenario more
// than once, so callers that want a single active program per scenario must
// check FindActiveByUserAndScenario themselves before calling.
func (s *Service) StartLearning(ctx context.Context, userID, scenarioID string, opts StartOptions) (*domain.Program, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Field: "userId", Reason: "required"}
	}

	scenario, err := s.scenarios.FindByID(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	if !scenario.IsActive() {
		return nil, fmt.Errorf("scenario %s is %s: %w", scenarioID, scenario.Status, domain.ErrScenarioNotFound)
	}

	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = s.now().UTC()
	}

	program, err := s.programs.Create(ctx, &domain.Program{
		ScenarioID:       scenarioID,
		UserID:           userID,
		Mode:             scenario.Mode,
		Status:           domain.ProgramStatusActive,
		CurrentTaskIndex: 0,
		TotalTaskCount:   len(scenario.TaskTemplates),
		StartedAt:        startedAt,
		LastActivityAt:   startedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	taskIDs := make([]string, 0, len(scenario.TaskTemplates))
	for i, tpl := range scenario.TaskTemplates {
		status := domain.TaskStatusPending
		if i == 0 {
			status = domain.TaskStatusActive
		}
		task, err := s.tasks.Create(ctx, &domain.Task{
			ProgramID:         program.ID,
			ScenarioTaskIndex: i,
			TemplateID:        tpl.ID,
			Type:              tpl.Type,
			Title:             tpl.Title,
			Instructions:      tpl.Instructions,
			Status:            status,
			MaxScore:          tpl.MaxScore,
			Domains:           tpl.Domains,
		})
		if err != nil {
			return nil, fmt.Errorf("materialize task %d: %w", i, err)
		}
		taskIDs = append(taskIDs, task.ID)
	}

	program, err = s.programs.Update(ctx, program.ID, func(p *domain.Program) {
		p.TaskIDs = taskIDs
	})
	if err != nil {
		return nil, fmt.Errorf("attach tasks: %w", err)
	}

	s.logger.Info("program started",
		"program_id", program.ID,
		"user_id", userID,
		"scenario_id", scenarioID,
		"mode", program.Mode,
		"tasks", len(taskIDs),
	)

	return program, nil
}

// TaskScoring carries the scored outcome a caller supplies when completing a
// task. MaxScore defaults to the task's own maximum, then 100.
type TaskScoring struct {
	Score        float64
	MaxScore     float64
	DomainScores map[string]float64
	ActualXP     *int
	XPEarned     *int
	Feedback     json.RawMessage
}

// CompleteTask records the response, marks the task completed, and creates
// its evaluation. It does not advance the program's active pointer; that is
// the caller's call via AdvanceTask or ActivateTask, so both sequential and
// freely-navigable client flows work.
func (s *Service) CompleteTask(ctx context.Context, taskID, userID string, response json.RawMessage, sc TaskScoring) (*domain.Evaluation, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	program, err := s.programs.FindByID(ctx, task.ProgramID)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		// Ownership failures are indistinguishable from absence to callers.
		return nil, fmt.Errorf("task %s not owned by %s: %w", taskID, userID, domain.ErrTaskNotFound)
	}

	now := s.now().UTC()
	wasCompleted := task.Status == domain.TaskStatusCompleted

	task, err = s.tasks.Update(ctx, taskID, func(t *domain.Task) {
		if response != nil {
			t.AppendInteraction(domain.Interaction{
				Role:      "learner",
				Content:   response,
				Timestamp: now,
			})
		}
		t.Status = domain.TaskStatusCompleted
		t.Score = sc.Score
		t.AttemptCount++
		t.CompletedAt = &now
	})
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}

	maxScore := sc.MaxScore
	if maxScore == 0 {
		maxScore = task.MaxScore
	}
	if maxScore == 0 {
		maxScore = 100
	}

	eval, err := s.evaluations.Create(ctx, &domain.Evaluation{
		EvaluationType:   domain.EvalTypeTask,
		TaskID:           taskID,
		ProgramID:        program.ID,
		UserID:           userID,
		Score:            sc.Score,
		MaxScore:         maxScore,
		DomainScores:     sc.DomainScores,
		ActualXP:         sc.ActualXP,
		XPEarned:         sc.XPEarned,
		TimeSpentSeconds: task.TimeSpentSeconds(),
		CompletedAt:      &now,
		Feedback:         sc.Feedback,
	})
	if err != nil {
		return nil, fmt.Errorf("create task evaluation: %w", err)
	}

	_, err = s.programs.Update(ctx, program.ID, func(p *domain.Program) {
		if !wasCompleted && p.CompletedTaskCount < p.TotalTaskCount {
			p.CompletedTaskCount++
		}
		p.LastActivityAt = now
	})
	if err != nil {
		return nil, fmt.Errorf("update program progress: %w", err)
	}

	if err := s.hooks.AfterTaskComplete(ctx, task, eval); err != nil {
		s.logger.Warn("task completion hook failed",
			"task_id", taskID,
			"program_id", program.ID,
			"error", err,
		)
	}

	return eval, nil
}

// CompleteOptions tunes program completion.
type CompleteOptions struct {
	// Summary overrides the aggregate computed from task evaluations.
	// Modes with their own scoring (timed assessments) supply one.
	Summary *scoring.Summary

	// Feedback is an optional qualitative blob stored on the completion
	// record, keyed by FeedbackLanguage when set.
	Feedback         json.RawMessage
	FeedbackLanguage string
}

// CompletionResult pairs the completed program with its completion record.
type CompletionResult struct {
	Program    *domain.Program
	Evaluation *domain.Evaluation
}

// CompleteProgram aggregates the program's task evaluations into a single
// completion evaluation and marks the program completed.
//
// Completion is idempotent: if a completion evaluation already exists it is
// returned unchanged and nothing is written. Partial completion is allowed;
// tasks the caller never completed simply contribute nothing. Stricter
// policies belong to callers.
func (s *Service) CompleteProgram(ctx context.Context, programID, userID string, opts CompleteOptions) (*CompletionResult, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		return nil, fmt.Errorf("program %s not owned by %s: %w", programID, userID, domain.ErrProgramNotFound)
	}

	existing, err := s.evaluations.FindProgramCompletion(ctx, programID)
	if err == nil {
		return &CompletionResult{Program: program, Evaluation: existing}, nil
	}
	if !errors.Is(err, domain.ErrEvaluationNotFound) {
		return nil, fmt.Errorf("check completion: %w", err)
	}

	summary := opts.Summary
	if summary == nil {
		taskEvals, err := s.evaluations.FindTaskEvaluations(ctx, programID)
		if err != nil {
			return nil, fmt.Errorf("load task evaluations: %w", err)
		}
		agg := scoring.Aggregate(program.StartedAt, taskEvals)
		summary = &agg
	}

	now := s.now().UTC()
	totalXP := summary.TotalXP

	eval := &domain.Evaluation{
		EvaluationType:   program.Mode.CompletionEvaluationType(),
		ProgramID:        programID,
		UserID:           userID,
		Score:            float64(summary.AverageScore),
		MaxScore:         100,
		DomainScores:     summary.DomainScores,
		XPEarned:         &totalXP,
		TimeSpentSeconds: summary.TimeSpentSeconds,
		CompletedAt:      &now,
		Feedback:         opts.Feedback,
	}
	if opts.Feedback != nil && opts.FeedbackLanguage != "" {
		eval.SetFeedbackFor(opts.FeedbackLanguage, opts.Feedback)
	}

	eval, err = s.evaluations.Create(ctx, eval)
	if err != nil {
		return nil, fmt.Errorf("create completion evaluation: %w", err)
	}

	program, err = s.programs.Update(ctx, programID, func(p *domain.Program) {
		p.Status = domain.ProgramStatusCompleted
		p.CompletedAt = &now
		p.LastActivityAt = now
		p.TotalScore = summary.AverageScore
		p.DomainScores = summary.DomainScores
		p.XPEarned = summary.TotalXP
	})
	if err != nil {
		return nil, fmt.Errorf("mark program completed: %w", err)
	}

	if err := s.hooks.AfterProgramComplete(ctx, program, eval); err != nil {
		s.logger.Warn("program completion hook failed",
			"program_id", programID,
			"error", err,
		)
	}

	s.logger.Info("program completed",
		"program_id", programID,
		"user_id", userID,
		"average_score", summary.AverageScore,
		"total_xp", summary.TotalXP,
		"completed_tasks", program.CompletedTaskCount,
		"total_tasks", program.TotalTaskCount,
	)

	return &CompletionResult{Program: program, Evaluation: eval}, nil
}

// Progress is a learner's in-flight work.
type Progress struct {
	ActivePrograms []*domain.Program `json:"activePrograms"`
}

// GetLearningProgress returns the learner's active programs, most recently
// touched first. Pure read, no state transition.
func (s *Service) GetLearningProgress(ctx context.Context, userID string) (*Progress, error) {
	active, err := s.programs.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load active programs: %w", err)
	}
	return &Progress{ActivePrograms: active}, nil
}

// ProgramView combines a program with its tasks in scenario order.
type ProgramView struct {
	Program *domain.Program `json:"program"`
	Tasks   []*domain.Task  `json:"tasks"`
}

// GetProgramStatus returns the program and its ordered tasks. Pure read.
func (s *Service) GetProgramStatus(ctx context.Context, programID string) (*ProgramView, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return &ProgramView{Program: program, Tasks: tasks}, nil
}

// AdvanceTask moves the program's active pointer to the next task and marks
// that task active. The current task's status is left alone; a learner may
// advance past a task without completing it. Fails with ErrInvalidState on a
// terminal program or when no next task exists.
func (s *Service) AdvanceTask(ctx context.Context, programID, userID string) (*domain.Task, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		return nil, fmt.Errorf("program %s not owned by %s: %w", programID, userID, domain.ErrProgramNotFound)
	}
	if program.IsTerminal() {
		return nil, fmt.Errorf("program %s is %s: %w", programID, program.Status, domain.ErrInvalidState)
	}

	next := program.CurrentTaskIndex + 1
	if next >= program.TotalTaskCount {
		return nil, fmt.Errorf("program %s has no task after index %d: %w", programID, program.CurrentTaskIndex, domain.ErrInvalidState)
	}

	return s.activate(ctx, program, next)
}

// ActivateTask moves the program's active pointer to an arbitrary task
// index, for freely-navigable clients.
func (s *Service) ActivateTask(ctx context.Context, programID, userID string, index int) (*domain.Task, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		return nil, fmt.Errorf("program %s not owned by %s: %w", programID, userID, domain.ErrProgramNotFound)
	}
	if program.IsTerminal() {
		return nil, fmt.Errorf("program %s is %s: %w", programID, program.Status, domain.ErrInvalidState)
	}
	if index < 0 || index >= program.TotalTaskCount {
		return nil, fmt.Errorf("task index %d out of range: %w", index, domain.ErrTaskNotFound)
	}

	return s.activate(ctx, program, index)
}

func (s *Service) activate(ctx context.Context, program *domain.Program, index int) (*domain.Task, error) {
	task, err := s.tasks.FindByProgramAndIndex(ctx, program.ID, index)
	if err != nil {
		return nil, err
	}

	if task.Status == domain.TaskStatusPending {
		task, err = s.tasks.Update(ctx, task.ID, func(t *domain.Task) {
			t.Status = domain.TaskStatusActive
		})
		if err != nil {
			return nil, fmt.Errorf("activate task: %w", err)
		}
	}

	now := s.now().UTC()
	if _, err := s.programs.Update(ctx, program.ID, func(p *domain.Program) {
		p.CurrentTaskIndex = index
		p.LastActivityAt = now
	}); err != nil {
		return nil, fmt.Errorf("move active pointer: %w", err)
	}

	return task, nil
}

// AbandonProgram is the explicit administrative transition to the abandoned
// terminal state. It is never triggered by normal task completion.
func (s *Service) AbandonProgram(ctx context.Context, programID, userID string) (*domain.Program, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		return nil, fmt.Errorf("program %s not owned by %s: %w", programID, userID, domain.ErrProgramNotFound)
	}
	if program.IsTerminal() {
		return nil, fmt.Errorf("program %s is already %s: %w", programID, program.Status, domain.ErrInvalidState)
	}

	now := s.now().UTC()
	program, err = s.programs.Update(ctx, programID, func(p *domain.Program) {
		p.Status = domain.ProgramStatusAbandoned
		p.LastActivityAt = now
	})
	if err != nil {
		return nil, fmt.Errorf("abandon program: %w", err)
	}

	s.logger.Info("program abandoned", "program_id", programID, "user_id", userID)
	return program, nil
}

// GetEvaluationFeedback returns the qualitative feedback blob for an
// evaluation in the requested language. A cached blob is returned as-is;
// otherwise the configured generator produces one, which is stored back on
// the evaluation before returning. Generation happens here, outside any
// state transition, so slow model calls never block the state machine.
func (s *Service) GetEvaluationFeedback(ctx context.Context, evaluationID, lang string) (json.RawMessage, error) {
	eval, err := s.evaluations.FindByID(ctx, evaluationID)
	if err != nil {
		return nil, err
	}

	if fb, ok := eval.FeedbackFor(lang); ok {
		return fb, nil
	}

	if s.generator == nil {
		if eval.Feedback != nil {
			return eval.Feedback, nil
		}
		return nil, fmt.Errorf("no feedback generator configured and evaluation %s has no stored feedback", evaluationID)
	}

	evalCtx := feedback.EvaluationContext{
		ProgramID:    eval.ProgramID,
		Score:        eval.Score,
		MaxScore:     eval.MaxScore,
		DomainScores: eval.DomainScores,
	}
	if eval.ProgramID != "" {
		if program, perr := s.programs.FindByID(ctx, eval.ProgramID); perr == nil {
			evalCtx.Mode = program.Mode
			evalCtx.ScenarioID = program.ScenarioID
			evalCtx.TaskCount = program.TotalTaskCount
		}
	}

	fb, err := s.generator.Generate(ctx, evalCtx, lang)
	if err != nil {
		return nil, fmt.Errorf("generate feedback: %w", err)
	}

	if _, err := s.evaluations.Update(ctx, evaluationID, func(e *domain.Evaluation) {
		e.SetFeedbackFor(lang, fb)
	}); err != nil {
		// The blob was produced; failing to cache it should not fail the read.
		s.logger.Warn("store generated feedback failed",
			"evaluation_id", evaluationID,
			"language", lang,
			"error", err,
		)
	}

	return fb, nil
}
