package learning

import (
	"context"

	"github.com/pathwayhq/pathway/internal/domain"
)

// Hooks is the collaborator point for mode-specific side effects after
// state transitions. Implementations must be safe for concurrent use.
// Hook failures are logged by the service, never propagated to callers.
type Hooks interface {
	AfterTaskComplete(ctx context.Context, task *domain.Task, eval *domain.Evaluation) error
	AfterProgramComplete(ctx context.Context, program *domain.Program, eval *domain.Evaluation) error
}

// NopHooks is the default no-op Hooks implementation.
type NopHooks struct{}

func (NopHooks) AfterTaskComplete(context.Context, *domain.Task, *domain.Evaluation) error {
	return nil
}

func (NopHooks) AfterProgramComplete(context.Context, *domain.Program, *domain.Evaluation) error {
	return nil
}

var _ Hooks = NopHooks{}
