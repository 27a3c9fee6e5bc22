package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pathwayhq/pathway/internal/domain"
)

// jsonPublisher is the slice of Connection the publisher needs.
type jsonPublisher interface {
	PublishJSON(ctx context.Context, queue string, data any) error
}

// Publisher emits learning lifecycle events. It satisfies the learning
// service's Hooks interface; the service logs and swallows publish
// failures, so a broker outage never fails a learner's request.
type Publisher struct {
	conn jsonPublisher
	now  func() time.Time
}

// NewPublisher creates a publisher on the given connection.
func NewPublisher(conn *Connection) *Publisher {
	return &Publisher{conn: conn, now: time.Now}
}

// AfterTaskComplete publishes a task.completed event.
func (p *Publisher) AfterTaskComplete(ctx context.Context, task *domain.Task, eval *domain.Evaluation) error {
	event := TaskCompletedEvent{
		EventType:    EventTaskCompleted,
		TaskID:       task.ID,
		ProgramID:    task.ProgramID,
		UserID:       eval.UserID,
		EvaluationID: eval.ID,
		Score:        eval.Score,
		OccurredAt:   p.now().UTC(),
	}

	if err := p.conn.PublishJSON(ctx, LearningQueueName, event); err != nil {
		return fmt.Errorf("failed to publish task completed event: %w", err)
	}

	slog.Debug("published task completed event",
		"task_id", task.ID,
		"program_id", task.ProgramID,
		"score", eval.Score,
	)

	return nil
}

// AfterProgramComplete publishes a program.completed event.
func (p *Publisher) AfterProgramComplete(ctx context.Context, program *domain.Program, eval *domain.Evaluation) error {
	event := ProgramCompletedEvent{
		EventType:    EventProgramCompleted,
		ProgramID:    program.ID,
		ScenarioID:   program.ScenarioID,
		UserID:       program.UserID,
		Mode:         string(program.Mode),
		EvaluationID: eval.ID,
		AverageScore: eval.Score,
		XPEarned:     program.XPEarned,
		DomainScores: eval.DomainScores,
		OccurredAt:   p.now().UTC(),
	}

	if err := p.conn.PublishJSON(ctx, LearningQueueName, event); err != nil {
		return fmt.Errorf("failed to publish program completed event: %w", err)
	}

	slog.Info("published program completed event",
		"program_id", program.ID,
		"user_id", program.UserID,
		"average_score", eval.Score,
		"xp_earned", program.XPEarned,
	)

	return nil
}
