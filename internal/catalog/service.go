package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwayhq/pathway/internal/cache"
	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/repository"
)

// Summary is one catalog entry, localized for a single language. It is what
// anonymous browsers of the catalog see; nothing here is user-specific, so
// serving it stale is safe.
type Summary struct {
	ID          string `json:"id"`
	Mode        string `json:"mode"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TaskCount   int    `json:"taskCount"`
	Language    string `json:"language"`
}

// Service serves the public catalog read path through the stale-while-
// revalidate cache. Reads keyed by a user's identity must never go through
// here; per-user data bypasses the cache entirely.
type Service struct {
	scenarios *repository.ScenarioRepository
	cache     *cache.Cache
	ttl       time.Duration
	swr       time.Duration
}

// NewService creates a catalog service. ttl and swr control cache freshness;
// zero values fall back to one minute fresh, ten minutes stale.
func NewService(scenarios *repository.ScenarioRepository, c *cache.Cache, ttl, swr time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if swr <= 0 {
		swr = 10 * time.Minute
	}
	return &Service{scenarios: scenarios, cache: c, ttl: ttl, swr: swr}
}

// ListByMode returns active scenarios of a mode as localized summaries.
func (s *Service) ListByMode(ctx context.Context, mode domain.Mode, lang string) ([]Summary, error) {
	if !mode.Valid() {
		return nil, &domain.ValidationError{Field: "mode", Reason: "unknown mode " + string(mode)}
	}

	key := fmt.Sprintf("catalog:%s:%s", mode, lang)
	return cache.GetWithRevalidation(ctx, s.cache, key, func(ctx context.Context) ([]Summary, error) {
		return s.listByMode(ctx, mode, lang)
	}, cache.Options{
		TTL:                  s.ttl,
		StaleWhileRevalidate: s.swr,
	})
}

func (s *Service) listByMode(ctx context.Context, mode domain.Mode, lang string) ([]Summary, error) {
	scenarios, err := s.scenarios.FindActiveByMode(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}

	summaries := make([]Summary, 0, len(scenarios))
	for _, sc := range scenarios {
		summary := Summary{
			ID:        sc.ID,
			Mode:      string(sc.Mode),
			Title:     sc.Title.Resolve(lang),
			TaskCount: len(sc.TaskTemplates),
			Language:  lang,
		}
		if len(sc.Description) > 0 {
			summary.Description = sc.Description.Resolve(lang)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
