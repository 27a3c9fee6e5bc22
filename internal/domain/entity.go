package domain

import "time"

// Entity is implemented by every persisted aggregate. The generic repository
// uses it to assign identifiers and maintain timestamps without knowing the
// concrete entity shape.
type Entity interface {
	EntityID() string
	SetEntityID(id string)
	Stamp(createdAt, updatedAt time.Time)
	Touch(updatedAt time.Time)
}

// Record is the embeddable persistence identity shared by all entities.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntityID returns the record's identifier.
func (r *Record) EntityID() string { return r.ID }

// SetEntityID assigns the record's identifier.
func (r *Record) SetEntityID(id string) { r.ID = id }

// Stamp sets both creation and update timestamps.
func (r *Record) Stamp(createdAt, updatedAt time.Time) {
	r.CreatedAt = createdAt
	r.UpdatedAt = updatedAt
}

// Touch updates the modification timestamp.
func (r *Record) Touch(updatedAt time.Time) { r.UpdatedAt = updatedAt }
