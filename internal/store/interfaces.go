package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"mailsift/internal/models"
)

// --- Job Client ---

type JobClient interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueSyncSweep(ctx context.Context, jobID uuid.UUID) error
	Close() error
}

// --- Folder Store ---

type FolderStore interface {
	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolderByPath(ctx context.Context, path string) (*models.Folder, error)
	// GetOrCreateFolder is what classification uses when the model proposes
	// a new folder; racing creators converge on the same row.
	GetOrCreateFolder(ctx context.Context, path string) (*models.Folder, error)
	ListFolders(ctx context.Context) ([]*models.Folder, error)

	Ping(ctx context.Context) error
}

// --- Mail Store ---

type MailStore interface {
	UpsertMail(ctx context.Context, mail *models.Mail) error
	GetMail(ctx context.Context, id string) (*models.Mail, error)
	ListMails(ctx context.Context, limit, offset int) ([]*models.Mail, error)
	// ListUnclassified returns mails with no folder assignment, oldest first.
	ListUnclassified(ctx context.Context, limit int) ([]*models.Mail, error)
	CountUnclassified(ctx context.Context) (int, error)
	// AssignFolder records a classification outcome on a mail. isNewFolder
	// tracks whether the model proposed the folder rather than picking an
	// existing one.
	AssignFolder(ctx context.Context, mailID string, folderID int64, isNewFolder bool, confidence float64, reason string) error
	// ClearClassifications detaches every mail from its folder. Used by the
	// soft reset.
	ClearClassifications(ctx context.Context) (int64, error)
}

// --- Sync Store ---

type SyncStore interface {
	CreateSyncJob(ctx context.Context, job *models.SyncJob) error
	GetSyncJob(ctx context.Context, id uuid.UUID) (*models.SyncJob, error)
	// GetLiveSyncJob returns the running or stopping job, or ErrNotFound.
	GetLiveSyncJob(ctx context.Context) (*models.SyncJob, error)
	// GetLatestSyncJob returns the most recently started job, or ErrNotFound.
	GetLatestSyncJob(ctx context.Context) (*models.SyncJob, error)
	UpdateSyncProgress(ctx context.Context, id uuid.UUID, processed int) error
	// RequestSyncStop flips a running job to stopping. ErrConflict when the
	// job is no longer running.
	RequestSyncStop(ctx context.Context, id uuid.UUID) error
	// FinishSyncJob records the terminal status; errMsg may be empty.
	FinishSyncJob(ctx context.Context, id uuid.UUID, status string, errMsg string) error
	// PurgeSyncJobs deletes all job rows. Used by the soft reset.
	PurgeSyncJobs(ctx context.Context) (int64, error)
}
