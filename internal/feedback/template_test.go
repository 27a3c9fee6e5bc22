package feedback

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestTemplateGeneratorBands(t *testing.T) {
	g := NewTemplateGenerator()

	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"excellent", 95, "Excellent"},
		{"good", 75, "Good"},
		{"fair", 55, "reasonable"},
		{"poor", 20, "practice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := g.Generate(context.Background(), EvaluationContext{Score: tt.score, MaxScore: 100}, "en")
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			var fb struct {
				Summary string `json:"summary"`
			}
			if err := json.Unmarshal(raw, &fb); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !strings.Contains(fb.Summary, tt.want) {
				t.Errorf("Summary = %q, want it to mention %q", fb.Summary, tt.want)
			}
		})
	}
}

func TestTemplateGeneratorDomains(t *testing.T) {
	g := NewTemplateGenerator()

	raw, err := g.Generate(context.Background(), EvaluationContext{
		Score:    80,
		MaxScore: 100,
		DomainScores: map[string]float64{
			"engaging": 90,
			"managing": 40,
		},
	}, "de")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var fb struct {
		Summary      string   `json:"summary"`
		Strengths    []string `json:"strengths"`
		Improvements []string `json:"improvements"`
		Language     string   `json:"language"`
	}
	if err := json.Unmarshal(raw, &fb); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fb.Language != "de" {
		t.Errorf("Language = %q, want de", fb.Language)
	}
	if len(fb.Strengths) != 1 || !strings.Contains(fb.Strengths[0], "engaging") {
		t.Errorf("Strengths = %v, want one entry naming engaging", fb.Strengths)
	}
	if len(fb.Improvements) != 1 || !strings.Contains(fb.Improvements[0], "managing") {
		t.Errorf("Improvements = %v, want one entry naming managing", fb.Improvements)
	}
	if !strings.Contains(fb.Summary, "Gute") {
		t.Errorf("Summary = %q, want German text", fb.Summary)
	}
}

func TestTemplateGeneratorZeroMaxScore(t *testing.T) {
	g := NewTemplateGenerator()
	raw, err := g.Generate(context.Background(), EvaluationContext{Score: 50}, "en")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(raw) == 0 {
		t.Error("Generate() returned empty blob for zero max score")
	}
}
