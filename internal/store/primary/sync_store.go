package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mailsift/internal/models"
	"mailsift/internal/store"
)

const syncJobColumns = `id, status, total, processed, error, started_at, finished_at`

func scanSyncJob(row pgx.Row, dest *models.SyncJob) error {
	return row.Scan(
		&dest.ID,
		&dest.Status,
		&dest.Total,
		&dest.Processed,
		&dest.Error,
		&dest.StartedAt,
		&dest.FinishedAt,
	)
}

func (s *StoreImpl) CreateSyncJob(ctx context.Context, job *models.SyncJob) error {
	query := `
		INSERT INTO sync_jobs (id, status, total, processed, started_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING started_at`

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	err := s.db.QueryRow(ctx, query,
		job.ID, job.Status, job.Total, job.Processed, time.Now(),
	).Scan(&job.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sync job: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetSyncJob(ctx context.Context, id uuid.UUID) (*models.SyncJob, error) {
	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE id = $1`
	job := &models.SyncJob{}
	if err := scanSyncJob(s.db.QueryRow(ctx, query, id), job); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sync job '%s': %w", id, err)
	}
	return job, nil
}

func (s *StoreImpl) GetLiveSyncJob(ctx context.Context) (*models.SyncJob, error) {
	query := `
		SELECT ` + syncJobColumns + `
		FROM sync_jobs
		WHERE status IN ($1, $2)
		ORDER BY started_at DESC
		LIMIT 1`

	job := &models.SyncJob{}
	err := scanSyncJob(s.db.QueryRow(ctx, query, models.SyncStatusRunning, models.SyncStatusStopping), job)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get live sync job: %w", err)
	}
	return job, nil
}

func (s *StoreImpl) GetLatestSyncJob(ctx context.Context) (*models.SyncJob, error) {
	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs ORDER BY started_at DESC LIMIT 1`
	job := &models.SyncJob{}
	if err := scanSyncJob(s.db.QueryRow(ctx, query), job); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest sync job: %w", err)
	}
	return job, nil
}

func (s *StoreImpl) UpdateSyncProgress(ctx context.Context, id uuid.UUID, processed int) error {
	query := `UPDATE sync_jobs SET processed = $2 WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, processed)
	if err != nil {
		return fmt.Errorf("failed to update sync progress for '%s': %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) RequestSyncStop(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sync_jobs SET status = $2 WHERE id = $1 AND status = $3`
	tag, err := s.db.Exec(ctx, query, id, models.SyncStatusStopping, models.SyncStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to request stop for sync job '%s': %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConflict
	}
	return nil
}

func (s *StoreImpl) FinishSyncJob(ctx context.Context, id uuid.UUID, status string, errMsg string) error {
	query := `
		UPDATE sync_jobs
		SET status = $2, error = NULLIF($3, ''), finished_at = $4
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, status, errMsg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to finish sync job '%s': %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) PurgeSyncJobs(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sync_jobs`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sync jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}
