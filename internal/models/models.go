package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder is a user folder mails are classified into.
type Folder struct {
	ID        int64     `db:"id" json:"id"`
	Path      string    `db:"path" json:"path"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Mail is a stored mail record. Classification fields stay null until a
// classification has been applied.
type Mail struct {
	ID           string     `db:"id" json:"id"`
	Subject      string     `db:"subject" json:"subject"`
	Sender       string     `db:"sender" json:"sender"`
	Snippet      string     `db:"snippet" json:"snippet"`
	FolderID     *int64     `db:"folder_id" json:"folder_id,omitempty"`
	FolderPath   *string    `db:"folder_path" json:"folder_path,omitempty"`
	IsNewFolder  bool       `db:"is_new_folder" json:"is_new_folder"`
	Confidence   *float64   `db:"confidence" json:"confidence,omitempty"`
	Reason       *string    `db:"reason" json:"reason,omitempty"`
	ClassifiedAt *time.Time `db:"classified_at" json:"classified_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// SyncJob tracks one background classification sweep.
type SyncJob struct {
	ID         uuid.UUID  `db:"id" json:"sync_id"`
	Status     string     `db:"status" json:"status"`
	Total      int        `db:"total" json:"total"`
	Processed  int        `db:"processed" json:"processed"`
	Error      *string    `db:"error" json:"error,omitempty"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// Sync job status constants. A job moves running -> completed|failed, or
// running -> stopping -> stopped when a stop was requested.
const (
	SyncStatusRunning   = "running"
	SyncStatusStopping  = "stopping"
	SyncStatusStopped   = "stopped"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// Live reports whether the job still occupies the single sync slot.
func (j *SyncJob) Live() bool {
	return j.Status == SyncStatusRunning || j.Status == SyncStatusStopping
}
