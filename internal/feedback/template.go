package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pathwayhq/pathway/internal/domain"
)

// TemplateGenerator produces rule-based qualitative feedback from score
// bands. It is the built-in fallback provider; model-backed generators plug
// in behind the same Generator interface.
type TemplateGenerator struct{}

// NewTemplateGenerator creates the rule-based generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// templateFeedback is the blob shape the template generator emits.
type templateFeedback struct {
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
	Language     string   `json:"language"`
}

var summaryByBand = map[string]domain.LocalizedText{
	"excellent": {
		"en": "Excellent work. You handled this with confidence.",
		"de": "Ausgezeichnete Arbeit. Du hast das souverän gelöst.",
	},
	"good": {
		"en": "Good work. Solid understanding with room to refine details.",
		"de": "Gute Arbeit. Solides Verständnis mit Luft nach oben im Detail.",
	},
	"fair": {
		"en": "A reasonable attempt. Revisit the core concepts and try again.",
		"de": "Ein brauchbarer Versuch. Wiederhole die Kernkonzepte und versuche es erneut.",
	},
	"poor": {
		"en": "This needs more practice. Work through the material once more.",
		"de": "Hier braucht es mehr Übung. Arbeite das Material noch einmal durch.",
	},
}

var strengthTemplate = domain.LocalizedText{
	"en": "Strong performance in %s.",
	"de": "Starke Leistung in %s.",
}

var improvementTemplate = domain.LocalizedText{
	"en": "Focus your next sessions on %s.",
	"de": "Konzentriere dich in den nächsten Einheiten auf %s.",
}

// Generate implements Generator. It never fails; the resilience wrapper
// around it exists for model-backed providers swapped in later.
func (g *TemplateGenerator) Generate(_ context.Context, evalCtx EvaluationContext, language string) (json.RawMessage, error) {
	ratio := 0.0
	if evalCtx.MaxScore > 0 {
		ratio = evalCtx.Score / evalCtx.MaxScore
	}

	band := "poor"
	switch {
	case ratio >= 0.9:
		band = "excellent"
	case ratio >= 0.7:
		band = "good"
	case ratio >= 0.5:
		band = "fair"
	}

	fb := templateFeedback{
		Summary:  summaryByBand[band].Resolve(language),
		Language: language,
	}

	// Deterministic domain order keeps the blob stable for caching.
	domains := make([]string, 0, len(evalCtx.DomainScores))
	for name := range evalCtx.DomainScores {
		domains = append(domains, name)
	}
	sort.Strings(domains)

	for _, name := range domains {
		if evalCtx.DomainScores[name] >= 75 {
			fb.Strengths = append(fb.Strengths, fmt.Sprintf(strengthTemplate.Resolve(language), name))
		} else {
			fb.Improvements = append(fb.Improvements, fmt.Sprintf(improvementTemplate.Resolve(language), name))
		}
	}

	return json.Marshal(fb)
}

var _ Generator = (*TemplateGenerator)(nil)
