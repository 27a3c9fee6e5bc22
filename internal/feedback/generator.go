// Package feedback defines the AI feedback generation port the learning
// service consumes. The core treats generated feedback as an opaque,
// cacheable blob keyed by language inside evaluation metadata; prompt and
// model mechanics live behind the Generator interface.
package feedback

import (
	"context"
	"encoding/json"

	"github.com/pathwayhq/pathway/internal/domain"
)

// EvaluationContext is what a generator may look at when producing
// qualitative feedback.
type EvaluationContext struct {
	Mode         domain.Mode        `json:"mode"`
	ScenarioID   string             `json:"scenarioId"`
	ProgramID    string             `json:"programId"`
	Score        float64            `json:"score"`
	MaxScore     float64            `json:"maxScore"`
	DomainScores map[string]float64 `json:"domainScores,omitempty"`
	TaskCount    int                `json:"taskCount"`
}

// Generator produces qualitative feedback for an evaluation in the
// requested language.
type Generator interface {
	Generate(ctx context.Context, evalCtx EvaluationContext, language string) (json.RawMessage, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, evalCtx EvaluationContext, language string) (json.RawMessage, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, evalCtx EvaluationContext, language string) (json.RawMessage, error) {
	return f(ctx, evalCtx, language)
}
