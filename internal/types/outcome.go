package types

import (
	"time"

	"github.com/google/uuid"
)

// Status is the final state of one application attempt.
type Status string

const (
	// StatusSuccess means the platform strategy completed without error
	StatusSuccess Status = "success"
	// StatusFailed means the strategy returned an error or panicked
	StatusFailed Status = "failed"
)

// Outcome records one attempted application.
type Outcome struct {
	RunID     uuid.UUID `json:"run_id"`
	JobKey    string    `json:"job_key"`
	Company   string    `json:"company"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Platform  string    `json:"platform"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
