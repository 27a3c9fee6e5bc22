package domain

import (
	"encoding/json"
	"time"
)

// TaskType classifies the kind of work a task asks of the learner.
type TaskType string

const (
	TaskTypeQuestion    TaskType = "question"
	TaskTypeChat        TaskType = "chat"
	TaskTypeCreation    TaskType = "creation"
	TaskTypeAnalysis    TaskType = "analysis"
	TaskTypeExploration TaskType = "exploration"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// Task is one unit of work within a program, instantiated from a scenario
// task template at program creation. Title and instructions are snapshots of
// the template, so template edits never change in-flight programs.
type Task struct {
	Record
	ProgramID         string        `json:"programId"`
	ScenarioTaskIndex int           `json:"scenarioTaskIndex"`
	TemplateID        string        `json:"templateId"`
	Type              TaskType      `json:"type"`
	Title             LocalizedText `json:"title"`
	Instructions      LocalizedText `json:"instructions"`
	Status            TaskStatus    `json:"status"`
	Score             float64       `json:"score"`
	MaxScore          float64       `json:"maxScore,omitempty"`
	Domains           []string      `json:"domains,omitempty"`
	AttemptCount      int           `json:"attemptCount"`
	Interactions      []Interaction `json:"interactions,omitempty"`
	CompletedAt       *time.Time    `json:"completedAt,omitempty"`
}

// Interaction is one entry in a task's append-only interaction log.
type Interaction struct {
	Role            string          `json:"role"` // learner, system
	Content         json.RawMessage `json:"content,omitempty"`
	DurationSeconds int             `json:"durationSeconds,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// AppendInteraction adds an entry to the interaction log. The log is
// append-only; existing entries are never rewritten.
func (t *Task) AppendInteraction(in Interaction) {
	t.Interactions = append(t.Interactions, in)
}

// TimeSpentSeconds sums the recorded interaction durations.
func (t *Task) TimeSpentSeconds() int {
	total := 0
	for _, in := range t.Interactions {
		if in.DurationSeconds > 0 {
			total += in.DurationSeconds
		}
	}
	return total
}
