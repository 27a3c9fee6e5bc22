package repository

import (
	"context"

	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/storage"
)

const programCollection = "programs"

// ProgramRepository persists programs.
type ProgramRepository struct {
	*Repository[*domain.Program]
}

// NewProgramRepository creates a ProgramRepository on the given port.
func NewProgramRepository(port storage.Port) *ProgramRepository {
	r := New(port, programCollection,
		func() *domain.Program { return &domain.Program{} },
		domain.ErrProgramNotFound)
	r.normalize = normalizeProgram
	return &ProgramRepository{Repository: r}
}

// normalizeProgram repairs legacy records: missing status means active,
// and aggregate counters never exceed their invariant bounds.
func normalizeProgram(p *domain.Program) {
	if p.Status == "" {
		p.Status = domain.ProgramStatusActive
	}
	if p.TotalTaskCount < 0 {
		p.TotalTaskCount = 0
	}
	if p.CompletedTaskCount < 0 {
		p.CompletedTaskCount = 0
	}
	if p.CompletedTaskCount > p.TotalTaskCount {
		p.CompletedTaskCount = p.TotalTaskCount
	}
	if p.LastActivityAt.IsZero() {
		p.LastActivityAt = p.StartedAt
	}
}

// FindByUser returns all programs of a user, most recently started first.
func (r *ProgramRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Program, error) {
	return r.FindMany(ctx, Filter{"userId": userID}, QueryOptions{
		OrderBy:        "startedAt",
		OrderDirection: storage.Descending,
	})
}

// FindByScenario returns all programs started from a scenario.
func (r *ProgramRepository) FindByScenario(ctx context.Context, scenarioID string) ([]*domain.Program, error) {
	return r.FindMany(ctx, Filter{"scenarioId": scenarioID}, QueryOptions{
		OrderBy:        "startedAt",
		OrderDirection: storage.Descending,
	})
}

// FindActiveByUser returns a user's in-flight programs, most recently
// active first.
func (r *ProgramRepository) FindActiveByUser(ctx context.Context, userID string) ([]*domain.Program, error) {
	return r.FindMany(ctx, Filter{
		"userId": userID,
		"status": string(domain.ProgramStatusActive),
	}, QueryOptions{
		OrderBy:        "lastActivityAt",
		OrderDirection: storage.Descending,
	})
}

// FindActiveByUserAndScenario returns a user's active programs for one
// scenario. The learning service never calls this itself; it exists so
// callers that want a one-active-program policy can check before starting.
func (r *ProgramRepository) FindActiveByUserAndScenario(ctx context.Context, userID, scenarioID string) ([]*domain.Program, error) {
	return r.FindMany(ctx, Filter{
		"userId":     userID,
		"scenarioId": scenarioID,
		"status":     string(domain.ProgramStatusActive),
	}, QueryOptions{
		OrderBy:        "startedAt",
		OrderDirection: storage.Descending,
	})
}
