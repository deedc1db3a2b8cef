package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/store"
	"mailsift/pkg/classifier"
)

// MailClassifier is the slice of the classifier the service depends on.
type MailClassifier interface {
	ClassifyOne(ctx context.Context, mail classifier.Mail, folders []classifier.Folder) (classifier.Result, error)
	ClassifyBatch(ctx context.Context, mails []classifier.Mail, folders []classifier.Folder) ([]classifier.BatchResult, error)
}

// ClassificationService classifies stored mails and applies the outcome:
// folder creation for new proposals, folder assignment on the mail row.
type ClassificationService struct {
	classifier  MailClassifier
	mailStore   store.MailStore
	folderStore store.FolderStore
}

func NewClassificationService(c MailClassifier, ms store.MailStore, fs store.FolderStore) *ClassificationService {
	return &ClassificationService{
		classifier:  c,
		mailStore:   ms,
		folderStore: fs,
	}
}

// ClassifyAdhoc classifies mail data that is not in the store and applies
// nothing. Used by the API and CLI for one-off classification.
func (s *ClassificationService) ClassifyAdhoc(ctx context.Context, mail classifier.Mail) (classifier.Result, error) {
	folders, err := s.currentFolders(ctx)
	if err != nil {
		return classifier.Result{}, err
	}
	return s.classifier.ClassifyOne(ctx, mail, folders)
}

// ClassifyMail classifies one stored mail and applies the result.
func (s *ClassificationService) ClassifyMail(ctx context.Context, mailID string) (*models.Mail, error) {
	mail, err := s.mailStore.GetMail(ctx, mailID)
	if err != nil {
		return nil, err
	}
	folders, err := s.currentFolders(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.classifier.ClassifyOne(ctx, toClassifierMail(mail), folders)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, mail.ID, result); err != nil {
		return nil, err
	}
	return s.mailStore.GetMail(ctx, mailID)
}

// ClassifyPending classifies up to limit unclassified mails in one batch
// call and applies every result the model returned. Mails the model skipped
// stay unclassified and are picked up by the next sweep; no backfill
// happens here.
func (s *ClassificationService) ClassifyPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 || limit > classifier.MaxBatchSize {
		limit = classifier.MaxBatchSize
	}

	mails, err := s.mailStore.ListUnclassified(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(mails) == 0 {
		return 0, nil
	}

	folders, err := s.currentFolders(ctx)
	if err != nil {
		return 0, err
	}

	batch := make([]classifier.Mail, len(mails))
	known := make(map[string]bool, len(mails))
	for i, mail := range mails {
		batch[i] = toClassifierMail(mail)
		known[mail.ID] = true
	}

	results, err := s.classifier.ClassifyBatch(ctx, batch, folders)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, result := range results {
		// Correlate strictly by mail id; ignore ids we never sent.
		if !known[result.MailID] {
			log.Warnf("Batch result references unknown mail id '%s', skipping", result.MailID)
			continue
		}
		if err := s.apply(ctx, result.MailID, result.Result); err != nil {
			log.Errorf("Failed to apply classification for mail '%s': %v", result.MailID, err)
			continue
		}
		applied++
	}
	return applied, nil
}

// apply resolves the folder path to a folder row (creating it when the
// model proposed a new one) and records the assignment.
func (s *ClassificationService) apply(ctx context.Context, mailID string, result classifier.Result) error {
	folder, err := s.folderStore.GetOrCreateFolder(ctx, result.FolderPath)
	if err != nil {
		return fmt.Errorf("failed to resolve folder '%s': %w", result.FolderPath, err)
	}
	if err := s.mailStore.AssignFolder(ctx, mailID, folder.ID, result.IsNewFolder, result.Confidence, result.Reason); err != nil {
		return err
	}
	log.Infof("Classified mail '%s' into '%s' (confidence %.2f)", mailID, folder.Path, result.Confidence)
	return nil
}

func (s *ClassificationService) currentFolders(ctx context.Context) ([]classifier.Folder, error) {
	stored, err := s.folderStore.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	folders := make([]classifier.Folder, len(stored))
	for i, f := range stored {
		folders[i] = classifier.Folder{Path: f.Path}
	}
	return folders, nil
}

func toClassifierMail(mail *models.Mail) classifier.Mail {
	return classifier.Mail{
		ID:      mail.ID,
		Subject: mail.Subject,
		Sender:  mail.Sender,
		Snippet: mail.Snippet,
	}
}
