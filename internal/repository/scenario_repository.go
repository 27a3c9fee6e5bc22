package repository

import (
	"context"

	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/storage"
)

const scenarioCollection = "scenarios"

// ScenarioRepository persists scenarios. Scenarios are authored content;
// the orchestration core only reads them.
type ScenarioRepository struct {
	*Repository[*domain.Scenario]
}

// NewScenarioRepository creates a ScenarioRepository on the given port.
func NewScenarioRepository(port storage.Port) *ScenarioRepository {
	r := New(port, scenarioCollection,
		func() *domain.Scenario { return &domain.Scenario{} },
		domain.ErrScenarioNotFound)
	r.normalize = normalizeScenario
	return &ScenarioRepository{Repository: r}
}

// normalizeScenario repairs records written before the status field and
// localized titles existed.
func normalizeScenario(s *domain.Scenario) {
	if s.Status == "" {
		s.Status = domain.ScenarioStatusActive
	}
	if s.Title == nil {
		s.Title = domain.LocalizedText{}
	}
	if s.Description == nil {
		s.Description = domain.LocalizedText{}
	}
	for i := range s.TaskTemplates {
		if s.TaskTemplates[i].Type == "" {
			s.TaskTemplates[i].Type = domain.TaskTypeQuestion
		}
	}
}

// FindByMode returns all scenarios of one mode, newest first.
func (r *ScenarioRepository) FindByMode(ctx context.Context, mode domain.Mode) ([]*domain.Scenario, error) {
	return r.FindMany(ctx, Filter{"mode": string(mode)}, QueryOptions{
		OrderBy:        "createdAt",
		OrderDirection: storage.Descending,
	})
}

// FindActiveByMode returns the active scenarios of one mode, newest first.
// This is the catalog read path.
func (r *ScenarioRepository) FindActiveByMode(ctx context.Context, mode domain.Mode) ([]*domain.Scenario, error) {
	return r.FindMany(ctx, Filter{
		"mode":   string(mode),
		"status": string(domain.ScenarioStatusActive),
	}, QueryOptions{
		OrderBy:        "createdAt",
		OrderDirection: storage.Descending,
	})
}
