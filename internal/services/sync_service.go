package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/store"
)

// SyncService owns the background classification sweep state machine. At
// most one sweep is live at a time; Start conflicts while one is running.
type SyncService struct {
	syncStore store.SyncStore
	mailStore store.MailStore
	jobClient store.JobClient
}

func NewSyncService(ss store.SyncStore, ms store.MailStore, jc store.JobClient) *SyncService {
	return &SyncService{
		syncStore: ss,
		mailStore: ms,
		jobClient: jc,
	}
}

// Start creates a sync job and enqueues the sweep task. Returns
// models.ErrSyncAlreadyRunning (with the live job) when a sweep is in
// flight.
func (s *SyncService) Start(ctx context.Context) (*models.SyncJob, error) {
	if live, err := s.syncStore.GetLiveSyncJob(ctx); err == nil {
		return live, models.ErrSyncAlreadyRunning
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	total, err := s.mailStore.CountUnclassified(ctx)
	if err != nil {
		return nil, err
	}

	job := &models.SyncJob{
		ID:     uuid.New(),
		Status: models.SyncStatusRunning,
		Total:  total,
	}
	if err := s.syncStore.CreateSyncJob(ctx, job); err != nil {
		return nil, err
	}

	if err := s.jobClient.EnqueueSyncSweep(ctx, job.ID); err != nil {
		// The job row exists but no worker will pick it up; fail it so the
		// slot frees up.
		if finishErr := s.syncStore.FinishSyncJob(ctx, job.ID, models.SyncStatusFailed, err.Error()); finishErr != nil {
			log.Errorf("Failed to mark sync job '%s' failed after enqueue error: %v", job.ID, finishErr)
		}
		return nil, fmt.Errorf("failed to enqueue sync sweep: %w", err)
	}

	log.Infof("Started sync job '%s' (%d unclassified mails)", job.ID, total)
	return job, nil
}

// Status returns the live job if one exists, otherwise the most recent one.
// store.ErrNotFound when no sync ever ran.
func (s *SyncService) Status(ctx context.Context) (*models.SyncJob, error) {
	job, err := s.syncStore.GetLiveSyncJob(ctx)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.syncStore.GetLatestSyncJob(ctx)
}

// Stop requests the live sweep to halt. The worker observes the flag
// between batches, so the job finishes as stopped with a partial count.
func (s *SyncService) Stop(ctx context.Context) (*models.SyncJob, error) {
	job, err := s.syncStore.GetLiveSyncJob(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.syncStore.RequestSyncStop(ctx, job.ID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Already stopping or finished between the read and the update.
			return s.syncStore.GetSyncJob(ctx, job.ID)
		}
		return nil, err
	}
	log.Infof("Requested stop for sync job '%s'", job.ID)
	return s.syncStore.GetSyncJob(ctx, job.ID)
}

// Reset clears every folder assignment and purges sync history. Refuses to
// run while a sweep is live.
func (s *SyncService) Reset(ctx context.Context) (int64, error) {
	if _, err := s.syncStore.GetLiveSyncJob(ctx); err == nil {
		return 0, models.ErrSyncAlreadyRunning
	} else if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	cleared, err := s.mailStore.ClearClassifications(ctx)
	if err != nil {
		return 0, err
	}
	purged, err := s.syncStore.PurgeSyncJobs(ctx)
	if err != nil {
		return cleared, err
	}
	log.Infof("Soft reset: cleared %d mail classifications, purged %d sync jobs", cleared, purged)
	return cleared, nil
}
