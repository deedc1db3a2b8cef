package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TypeSyncSweep is the background classification sweep over
	// unclassified mails.
	TypeSyncSweep = "sync:sweep"
)

// SyncSweepPayload identifies which sync job a sweep task belongs to.
type SyncSweepPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

func NewSyncSweepTask(jobID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncSweepPayload{JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sync sweep payload: %w", err)
	}
	return asynq.NewTask(TypeSyncSweep, payload), nil
}

func ParseSyncSweepPayload(task *asynq.Task) (SyncSweepPayload, error) {
	var payload SyncSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SyncSweepPayload{}, fmt.Errorf("failed to unmarshal sync sweep payload: %w", err)
	}
	return payload, nil
}
