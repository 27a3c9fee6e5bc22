package domain

import "fmt"

// Mode identifies the pedagogical mode of a scenario and the programs
// started from it.
type Mode string

const (
	ModePBL        Mode = "pbl"
	ModeAssessment Mode = "assessment"
	ModeDiscovery  Mode = "discovery"
)

// Valid reports whether the mode is one of the known values.
func (m Mode) Valid() bool {
	switch m {
	case ModePBL, ModeAssessment, ModeDiscovery:
		return true
	}
	return false
}

// CompletionEvaluationType returns the evaluation type recorded when a
// program in this mode is completed.
func (m Mode) CompletionEvaluationType() EvaluationType {
	switch m {
	case ModePBL:
		return EvalTypePBLComplete
	case ModeAssessment:
		return EvalTypeAssessmentComplete
	case ModeDiscovery:
		return EvalTypeDiscoveryComplete
	}
	return EvalTypeProgram
}

// ScenarioStatus is the lifecycle state of a scenario.
type ScenarioStatus string

const (
	ScenarioStatusDraft    ScenarioStatus = "draft"
	ScenarioStatusActive   ScenarioStatus = "active"
	ScenarioStatusArchived ScenarioStatus = "archived"
)

// Scenario is the authored definition of a learning unit. Scenarios are
// created by content ingestion and are read-only to the orchestration core.
type Scenario struct {
	Record
	Mode          Mode           `json:"mode"`
	Status        ScenarioStatus `json:"status"`
	Title         LocalizedText  `json:"title"`
	Description   LocalizedText  `json:"description"`
	TaskTemplates []TaskTemplate `json:"taskTemplates"`

	// Exactly one payload matching Mode is set; the others stay nil.
	PBL        *PBLPayload        `json:"pbl,omitempty"`
	Assessment *AssessmentPayload `json:"assessment,omitempty"`
	Discovery  *DiscoveryPayload  `json:"discovery,omitempty"`
}

// TaskTemplate is one authored step of a scenario. Templates are copied into
// tasks at program creation, so later edits never affect in-flight programs.
type TaskTemplate struct {
	ID           string        `json:"id"`
	Type         TaskType      `json:"type"`
	Title        LocalizedText `json:"title"`
	Instructions LocalizedText `json:"instructions"`
	MaxScore     float64       `json:"maxScore,omitempty"`
	Domains      []string      `json:"domains,omitempty"`
}

// PBLPayload carries problem-based-learning specifics.
type PBLPayload struct {
	// KSAMapping maps a competency domain to the knowledge/skill/attitude
	// codes it exercises.
	KSAMapping map[string][]string `json:"ksaMapping"`
}

// AssessmentPayload carries timed-assessment specifics.
type AssessmentPayload struct {
	PassingScore     int `json:"passingScore"`
	TimeLimitSeconds int `json:"timeLimitSeconds,omitempty"`
}

// DiscoveryPayload carries career-discovery specifics.
type DiscoveryPayload struct {
	CareerPath   string `json:"careerPath"`
	WorldSetting string `json:"worldSetting,omitempty"`
}

// IsActive reports whether the scenario can start new programs.
func (s *Scenario) IsActive() bool { return s.Status == ScenarioStatusActive }

// Validate checks structural integrity of an authored scenario.
func (s *Scenario) Validate() error {
	if !s.Mode.Valid() {
		return &ValidationError{Field: "mode", Reason: "unknown mode " + string(s.Mode)}
	}
	if len(s.Title) == 0 {
		return &ValidationError{Field: "title", Reason: "at least one language required"}
	}
	if len(s.TaskTemplates) == 0 {
		return &ValidationError{Field: "taskTemplates", Reason: "at least one task template required"}
	}
	seen := make(map[string]struct{}, len(s.TaskTemplates))
	for i, tpl := range s.TaskTemplates {
		if tpl.ID == "" {
			return &ValidationError{Field: "taskTemplates", Reason: fmt.Sprintf("template id missing at index %d", i)}
		}
		if _, dup := seen[tpl.ID]; dup {
			return &ValidationError{Field: "taskTemplates", Reason: "duplicate template id " + tpl.ID}
		}
		seen[tpl.ID] = struct{}{}
	}
	switch s.Mode {
	case ModePBL:
		if s.Assessment != nil || s.Discovery != nil {
			return &ValidationError{Field: "pbl", Reason: "payload does not match mode"}
		}
	case ModeAssessment:
		if s.PBL != nil || s.Discovery != nil {
			return &ValidationError{Field: "assessment", Reason: "payload does not match mode"}
		}
	case ModeDiscovery:
		if s.PBL != nil || s.Assessment != nil {
			return &ValidationError{Field: "discovery", Reason: "payload does not match mode"}
		}
	}
	return nil
}
