package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// EvaluationType classifies what an evaluation judges.
type EvaluationType string

const (
	EvalTypeTask    EvaluationType = "task"
	EvalTypeProgram EvaluationType = "program"

	// Mode-specific program completion records.
	EvalTypePBLComplete        EvaluationType = "pbl_complete"
	EvalTypeAssessmentComplete EvaluationType = "assessment_complete"
	EvalTypeDiscoveryComplete  EvaluationType = "discovery_complete"
)

// IsCompletion reports whether the type marks a program-level completion
// record. At most one completion evaluation may exist per program.
func (t EvaluationType) IsCompletion() bool {
	return t == EvalTypeProgram || strings.HasSuffix(string(t), "_complete")
}

// Evaluation is the scored outcome of a task, or the summative record of a
// completed program. Qualitative feedback is an opaque blob, cached per
// target language in FeedbackByLanguage.
type Evaluation struct {
	Record
	EvaluationType EvaluationType `json:"evaluationType"`
	TaskID         string         `json:"taskId,omitempty"`
	ProgramID      string         `json:"programId,omitempty"`
	UserID         string         `json:"userId,omitempty"`

	Score        float64            `json:"score"`
	MaxScore     float64            `json:"maxScore"`
	DomainScores map[string]float64 `json:"domainScores,omitempty"`

	// XP fields; aggregation precedence is ActualXP, then XPEarned, then Score.
	ActualXP *int `json:"actualXP,omitempty"`
	XPEarned *int `json:"xpEarned,omitempty"`

	TimeSpentSeconds int        `json:"timeSpentSeconds,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`

	Feedback           json.RawMessage            `json:"feedback,omitempty"`
	FeedbackByLanguage map[string]json.RawMessage `json:"feedbackByLanguage,omitempty"`
}

// FeedbackFor returns the cached feedback blob for a language, if present.
func (e *Evaluation) FeedbackFor(lang string) (json.RawMessage, bool) {
	fb, ok := e.FeedbackByLanguage[lang]
	return fb, ok
}

// SetFeedbackFor caches a feedback blob for a language.
func (e *Evaluation) SetFeedbackFor(lang string, fb json.RawMessage) {
	if e.FeedbackByLanguage == nil {
		e.FeedbackByLanguage = make(map[string]json.RawMessage)
	}
	e.FeedbackByLanguage[lang] = fb
}

// AwardedXP resolves the XP this evaluation contributes, falling back
// through ActualXP, XPEarned, the raw score, then zero.
func (e *Evaluation) AwardedXP() int {
	if e.ActualXP != nil {
		return *e.ActualXP
	}
	if e.XPEarned != nil {
		return *e.XPEarned
	}
	if e.Score > 0 {
		return int(e.Score)
	}
	return 0
}
