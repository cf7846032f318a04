package domain

import "time"

// RunStatus represents the status of a harvest run.
// Values include RunStatusRunning, RunStatusCompleted, RunStatusContinuation,
// and RunStatusFailed.
type RunStatus string

const (
	RunStatusRunning      RunStatus = "running"
	RunStatusCompleted    RunStatus = "completed"
	RunStatusContinuation RunStatus = "needs_continuation"
	RunStatusFailed       RunStatus = "failed"
)

// HarvestRun represents a single harvester invocation and its progress
// metadata. One row is written per process run so operators can gauge how
// far a multi-hour harvest has progressed across invocations.
type HarvestRun struct {
	ID                string      `gorm:"type:text;primaryKey" json:"id"`
	Mode              HarvestMode `gorm:"type:text;not null;index" json:"mode"`
	Status            RunStatus   `gorm:"default:running" json:"status"`
	Batches           int         `gorm:"default:0" json:"batches"`
	RecordsHarvested  int         `gorm:"default:0" json:"records_harvested"`
	DatesCompleted    int         `gorm:"default:0" json:"dates_completed"`
	NeedsContinuation bool        `gorm:"default:false" json:"needs_continuation"`
	StartedAt         *time.Time  `json:"started_at,omitempty"`
	FinishedAt        *time.Time  `json:"finished_at,omitempty"`
	ErrorLog          string      `json:"error_log,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// TableName returns the database table name for HarvestRun.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (HarvestRun) TableName() string {
	return "harvest_runs"
}
