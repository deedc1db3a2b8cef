package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/services"
	"mailsift/internal/store"
	"mailsift/internal/tasks"
	"mailsift/pkg/classifier"
)

// SweepHandler processes sync sweep tasks: it walks the unclassified
// backlog in batches until nothing is left or a stop was requested.
type SweepHandler struct {
	classification *services.ClassificationService
	syncStore      store.SyncStore
}

func NewSweepHandler(cs *services.ClassificationService, ss store.SyncStore) *SweepHandler {
	return &SweepHandler{classification: cs, syncStore: ss}
}

// Register attaches the handler's task types to the mux.
func (h *SweepHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeSyncSweep, h.HandleSyncSweep)
}

func (h *SweepHandler) HandleSyncSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := tasks.ParseSyncSweepPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	job, err := h.syncStore.GetSyncJob(ctx, payload.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Job purged underneath us (soft reset); nothing to sweep.
			log.Warnf("Sync job '%s' no longer exists, skipping sweep", payload.JobID)
			return nil
		}
		return err
	}
	if !job.Live() {
		log.Warnf("Sync job '%s' is already %s, skipping sweep", job.ID, job.Status)
		return nil
	}

	log.Infof("Sweep started for sync job '%s' (%d mails pending)", job.ID, job.Total)

	processed := job.Processed
	for {
		current, err := h.syncStore.GetSyncJob(ctx, job.ID)
		if err != nil {
			return err
		}
		if current.Status == models.SyncStatusStopping {
			log.Infof("Sync job '%s' stopped after %d mails", job.ID, processed)
			return h.syncStore.FinishSyncJob(ctx, job.ID, models.SyncStatusStopped, "")
		}

		applied, err := h.classification.ClassifyPending(ctx, classifier.MaxBatchSize)
		if err != nil {
			log.Errorf("Sweep for sync job '%s' failed: %v", job.ID, err)
			if finishErr := h.syncStore.FinishSyncJob(ctx, job.ID, models.SyncStatusFailed, err.Error()); finishErr != nil {
				log.Errorf("Failed to mark sync job '%s' failed: %v", job.ID, finishErr)
			}
			// The job row carries the failure; retrying the task would race
			// a fresh Start.
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if applied == 0 {
			log.Infof("Sweep completed for sync job '%s' (%d mails classified)", job.ID, processed)
			return h.syncStore.FinishSyncJob(ctx, job.ID, models.SyncStatusCompleted, "")
		}

		processed += applied
		if err := h.syncStore.UpdateSyncProgress(ctx, job.ID, processed); err != nil {
			return err
		}
	}
}
