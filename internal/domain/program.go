package domain

import "time"

// ProgramStatus is the lifecycle state of a program.
type ProgramStatus string

const (
	ProgramStatusActive    ProgramStatus = "active"
	ProgramStatusCompleted ProgramStatus = "completed"
	ProgramStatusAbandoned ProgramStatus = "abandoned"
)

// Program is one learner's attempt at a scenario. It is created by the
// learning service and mutated only through it; completed and abandoned are
// terminal states.
type Program struct {
	Record
	ScenarioID string        `json:"scenarioId"`
	UserID     string        `json:"userId"`
	Mode       Mode          `json:"mode"`
	Status     ProgramStatus `json:"status"`

	TaskIDs          []string `json:"taskIds"`
	CurrentTaskIndex int      `json:"currentTaskIndex"`

	CompletedTaskCount int                `json:"completedTaskCount"`
	TotalTaskCount     int                `json:"totalTaskCount"`
	TotalScore         int                `json:"totalScore"`
	DomainScores       map[string]float64 `json:"domainScores,omitempty"`
	XPEarned           int                `json:"xpEarned"`

	StartedAt      time.Time  `json:"startedAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// IsTerminal reports whether the program has reached a terminal state.
func (p *Program) IsTerminal() bool {
	return p.Status == ProgramStatusCompleted || p.Status == ProgramStatusAbandoned
}

// CompletionRatio returns completed tasks over total tasks in [0,1].
func (p *Program) CompletionRatio() float64 {
	if p.TotalTaskCount == 0 {
		return 0
	}
	return float64(p.CompletedTaskCount) / float64(p.TotalTaskCount)
}
