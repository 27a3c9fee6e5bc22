package domain

import (
	"errors"
	"testing"
)

func validScenario() *Scenario {
	return &Scenario{
		Mode:   ModePBL,
		Status: ScenarioStatusActive,
		Title:  LocalizedText{"en": "Incident Response"},
		TaskTemplates: []TaskTemplate{
			{ID: "t1", Type: TaskTypeQuestion, Title: LocalizedText{"en": "Triage"}},
			{ID: "t2", Type: TaskTypeChat, Title: LocalizedText{"en": "Escalate"}},
		},
		PBL: &PBLPayload{KSAMapping: map[string][]string{"engaging": {"K1.1"}}},
	}
}

func TestScenarioValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := validScenario().Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		s := validScenario()
		s.Mode = "quiz"
		if err := s.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate() error = %v, want ErrValidation", err)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		s := validScenario()
		s.Title = nil
		if err := s.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate() error = %v, want ErrValidation", err)
		}
	})

	t.Run("no templates", func(t *testing.T) {
		s := validScenario()
		s.TaskTemplates = nil
		if err := s.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate() error = %v, want ErrValidation", err)
		}
	})

	t.Run("duplicate template id", func(t *testing.T) {
		s := validScenario()
		s.TaskTemplates[1].ID = "t1"
		if err := s.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate() error = %v, want ErrValidation", err)
		}
	})

	t.Run("payload mode mismatch", func(t *testing.T) {
		s := validScenario()
		s.Discovery = &DiscoveryPayload{CareerPath: "robotics"}
		if err := s.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate() error = %v, want ErrValidation", err)
		}
	})
}

func TestModeCompletionEvaluationType(t *testing.T) {
	cases := []struct {
		mode Mode
		want EvaluationType
	}{
		{ModePBL, EvalTypePBLComplete},
		{ModeAssessment, EvalTypeAssessmentComplete},
		{ModeDiscovery, EvalTypeDiscoveryComplete},
		{Mode("other"), EvalTypeProgram},
	}
	for _, c := range cases {
		if got := c.mode.CompletionEvaluationType(); got != c.want {
			t.Errorf("%s.CompletionEvaluationType() = %s, want %s", c.mode, got, c.want)
		}
	}
}

func TestProgramIsTerminal(t *testing.T) {
	p := &Program{Status: ProgramStatusActive}
	if p.IsTerminal() {
		t.Error("active program should not be terminal")
	}
	p.Status = ProgramStatusCompleted
	if !p.IsTerminal() {
		t.Error("completed program should be terminal")
	}
	p.Status = ProgramStatusAbandoned
	if !p.IsTerminal() {
		t.Error("abandoned program should be terminal")
	}
}
