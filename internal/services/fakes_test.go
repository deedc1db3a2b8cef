package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"mailsift/internal/models"
	"mailsift/internal/store"
	"mailsift/pkg/classifier"
)

// --- In-memory store fakes ---

type fakeFolderStore struct {
	folders map[string]*models.Folder
	nextID  int64
}

func newFakeFolderStore(paths ...string) *fakeFolderStore {
	fs := &fakeFolderStore{folders: make(map[string]*models.Folder)}
	for _, p := range paths {
		fs.GetOrCreateFolder(context.Background(), p)
	}
	return fs
}

func (fs *fakeFolderStore) CreateFolder(ctx context.Context, folder *models.Folder) error {
	if _, ok := fs.folders[folder.Path]; ok {
		return store.ErrDuplicate
	}
	fs.nextID++
	folder.ID = fs.nextID
	folder.CreatedAt = time.Now()
	fs.folders[folder.Path] = folder
	return nil
}

func (fs *fakeFolderStore) GetFolderByPath(ctx context.Context, path string) (*models.Folder, error) {
	folder, ok := fs.folders[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	return folder, nil
}

func (fs *fakeFolderStore) GetOrCreateFolder(ctx context.Context, path string) (*models.Folder, error) {
	if folder, ok := fs.folders[path]; ok {
		return folder, nil
	}
	folder := &models.Folder{Path: path}
	if err := fs.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (fs *fakeFolderStore) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	paths := make([]string, 0, len(fs.folders))
	for p := range fs.folders {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	folders := make([]*models.Folder, len(paths))
	for i, p := range paths {
		folders[i] = fs.folders[p]
	}
	return folders, nil
}

func (fs *fakeFolderStore) Ping(ctx context.Context) error { return nil }

type fakeMailStore struct {
	mails map[string]*models.Mail
	order []string
}

func newFakeMailStore(mails ...*models.Mail) *fakeMailStore {
	ms := &fakeMailStore{mails: make(map[string]*models.Mail)}
	for _, m := range mails {
		ms.mails[m.ID] = m
		ms.order = append(ms.order, m.ID)
	}
	return ms
}

func (ms *fakeMailStore) UpsertMail(ctx context.Context, mail *models.Mail) error {
	if _, ok := ms.mails[mail.ID]; !ok {
		ms.order = append(ms.order, mail.ID)
	}
	ms.mails[mail.ID] = mail
	return nil
}

func (ms *fakeMailStore) GetMail(ctx context.Context, id string) (*models.Mail, error) {
	mail, ok := ms.mails[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return mail, nil
}

func (ms *fakeMailStore) ListMails(ctx context.Context, limit, offset int) ([]*models.Mail, error) {
	var mails []*models.Mail
	for _, id := range ms.order {
		mails = append(mails, ms.mails[id])
	}
	if offset > len(mails) {
		offset = len(mails)
	}
	mails = mails[offset:]
	if limit < len(mails) {
		mails = mails[:limit]
	}
	return mails, nil
}

func (ms *fakeMailStore) ListUnclassified(ctx context.Context, limit int) ([]*models.Mail, error) {
	var mails []*models.Mail
	for _, id := range ms.order {
		if ms.mails[id].FolderID == nil {
			mails = append(mails, ms.mails[id])
		}
		if len(mails) == limit {
			break
		}
	}
	return mails, nil
}

func (ms *fakeMailStore) CountUnclassified(ctx context.Context) (int, error) {
	count := 0
	for _, mail := range ms.mails {
		if mail.FolderID == nil {
			count++
		}
	}
	return count, nil
}

func (ms *fakeMailStore) AssignFolder(ctx context.Context, mailID string, folderID int64, isNewFolder bool, confidence float64, reason string) error {
	mail, ok := ms.mails[mailID]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now()
	mail.FolderID = &folderID
	mail.IsNewFolder = isNewFolder
	mail.Confidence = &confidence
	mail.Reason = &reason
	mail.ClassifiedAt = &now
	return nil
}

func (ms *fakeMailStore) ClearClassifications(ctx context.Context) (int64, error) {
	var cleared int64
	for _, mail := range ms.mails {
		if mail.FolderID != nil {
			mail.FolderID = nil
			mail.Confidence = nil
			mail.Reason = nil
			mail.ClassifiedAt = nil
			cleared++
		}
	}
	return cleared, nil
}

type fakeSyncStore struct {
	jobs  map[uuid.UUID]*models.SyncJob
	order []uuid.UUID
}

func newFakeSyncStore() *fakeSyncStore {
	return &fakeSyncStore{jobs: make(map[uuid.UUID]*models.SyncJob)}
}

func (ss *fakeSyncStore) CreateSyncJob(ctx context.Context, job *models.SyncJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.StartedAt = time.Now()
	ss.jobs[job.ID] = job
	ss.order = append(ss.order, job.ID)
	return nil
}

func (ss *fakeSyncStore) GetSyncJob(ctx context.Context, id uuid.UUID) (*models.SyncJob, error) {
	job, ok := ss.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (ss *fakeSyncStore) GetLiveSyncJob(ctx context.Context) (*models.SyncJob, error) {
	for i := len(ss.order) - 1; i >= 0; i-- {
		if job := ss.jobs[ss.order[i]]; job.Live() {
			copied := *job
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (ss *fakeSyncStore) GetLatestSyncJob(ctx context.Context) (*models.SyncJob, error) {
	if len(ss.order) == 0 {
		return nil, store.ErrNotFound
	}
	copied := *ss.jobs[ss.order[len(ss.order)-1]]
	return &copied, nil
}

func (ss *fakeSyncStore) UpdateSyncProgress(ctx context.Context, id uuid.UUID, processed int) error {
	job, ok := ss.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.Processed = processed
	return nil
}

func (ss *fakeSyncStore) RequestSyncStop(ctx context.Context, id uuid.UUID) error {
	job, ok := ss.jobs[id]
	if !ok || job.Status != models.SyncStatusRunning {
		return store.ErrConflict
	}
	job.Status = models.SyncStatusStopping
	return nil
}

func (ss *fakeSyncStore) FinishSyncJob(ctx context.Context, id uuid.UUID, status string, errMsg string) error {
	job, ok := ss.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.Status = status
	if errMsg != "" {
		job.Error = &errMsg
	}
	now := time.Now()
	job.FinishedAt = &now
	return nil
}

func (ss *fakeSyncStore) PurgeSyncJobs(ctx context.Context) (int64, error) {
	purged := int64(len(ss.jobs))
	ss.jobs = make(map[uuid.UUID]*models.SyncJob)
	ss.order = nil
	return purged, nil
}

type fakeJobClient struct {
	enqueued []uuid.UUID
	err      error
}

func (jc *fakeJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return nil, jc.err
}

func (jc *fakeJobClient) EnqueueSyncSweep(ctx context.Context, jobID uuid.UUID) error {
	if jc.err != nil {
		return jc.err
	}
	jc.enqueued = append(jc.enqueued, jobID)
	return nil
}

func (jc *fakeJobClient) Close() error { return nil }

// --- Classifier fake ---

type fakeClassifier struct {
	result       classifier.Result
	batchResults []classifier.BatchResult
	err          error
	lastMails    []classifier.Mail
	lastFolders  []classifier.Folder
	batchCalls   int
}

func (fc *fakeClassifier) ClassifyOne(ctx context.Context, mail classifier.Mail, folders []classifier.Folder) (classifier.Result, error) {
	fc.lastMails = []classifier.Mail{mail}
	fc.lastFolders = folders
	return fc.result, fc.err
}

func (fc *fakeClassifier) ClassifyBatch(ctx context.Context, mails []classifier.Mail, folders []classifier.Folder) ([]classifier.BatchResult, error) {
	fc.batchCalls++
	fc.lastMails = mails
	fc.lastFolders = folders
	if fc.err != nil {
		return nil, fc.err
	}
	return fc.batchResults, nil
}
