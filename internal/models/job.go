package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job is an open position candidates interview for.
type Job struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Title        string                      `gorm:"size:255;not null" json:"title"`
	Department   string                      `gorm:"size:128" json:"department,omitempty"`
	Description  string                      `gorm:"type:text" json:"description,omitempty"`
	Requirements datatypes.JSONSlice[string] `json:"requirements,omitempty"`
	Status       string                      `gorm:"size:32;not null;default:open" json:"status"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

const (
	// JobStatusOpen marks a position accepting interviews.
	JobStatusOpen = "open"
	// JobStatusClosed marks a filled or withdrawn position.
	JobStatusClosed = "closed"
)
