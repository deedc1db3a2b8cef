package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsift/internal/models"
	"mailsift/pkg/classifier"
)

func TestClassifyMail_AppliesResult(t *testing.T) {
	folderStore := newFakeFolderStore("Receipts", "Work")
	mailStore := newFakeMailStore(&models.Mail{ID: "m1", Subject: "Invoice", Sender: "billing@example.com"})
	fc := &fakeClassifier{result: classifier.Result{FolderPath: "Receipts", Confidence: 0.9, Reason: "invoice"}}

	svc := NewClassificationService(fc, mailStore, folderStore)
	mail, err := svc.ClassifyMail(context.Background(), "m1")

	require.NoError(t, err)
	require.NotNil(t, mail.FolderID)
	assert.Equal(t, 0.9, *mail.Confidence)
	assert.Equal(t, "invoice", *mail.Reason)
	assert.NotNil(t, mail.ClassifiedAt)

	// Classifier saw the current folder list.
	require.Len(t, fc.lastFolders, 2)
	assert.Equal(t, "Receipts", fc.lastFolders[0].Path)
}

func TestClassifyMail_CreatesProposedFolder(t *testing.T) {
	folderStore := newFakeFolderStore()
	mailStore := newFakeMailStore(&models.Mail{ID: "m1", Subject: "Weekly digest"})
	fc := &fakeClassifier{result: classifier.Result{FolderPath: "Newsletters", IsNewFolder: true, Confidence: 0.7}}

	svc := NewClassificationService(fc, mailStore, folderStore)
	_, err := svc.ClassifyMail(context.Background(), "m1")

	require.NoError(t, err)
	folder, err := folderStore.GetFolderByPath(context.Background(), "Newsletters")
	require.NoError(t, err)
	assert.Equal(t, "Newsletters", folder.Path)

	mail, err := mailStore.GetMail(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, mail.IsNewFolder)
}

func TestClassifyMail_UnknownMail(t *testing.T) {
	svc := NewClassificationService(&fakeClassifier{}, newFakeMailStore(), newFakeFolderStore())

	_, err := svc.ClassifyMail(context.Background(), "missing")

	require.Error(t, err)
}

func TestClassifyMail_ClassifierErrorSurfaces(t *testing.T) {
	mailStore := newFakeMailStore(&models.Mail{ID: "m1"})
	fc := &fakeClassifier{err: classifier.ErrClassifyFailed}

	svc := NewClassificationService(fc, mailStore, newFakeFolderStore())
	_, err := svc.ClassifyMail(context.Background(), "m1")

	assert.ErrorIs(t, err, classifier.ErrClassifyFailed)
}

func TestClassifyPending_AppliesReturnedResults(t *testing.T) {
	folderStore := newFakeFolderStore("Receipts")
	mailStore := newFakeMailStore(
		&models.Mail{ID: "m1"},
		&models.Mail{ID: "m2"},
		&models.Mail{ID: "m3"},
	)
	// Model returned results for two of three mails; the third stays
	// unclassified for a later sweep.
	fc := &fakeClassifier{batchResults: []classifier.BatchResult{
		{MailID: "m2", Result: classifier.Result{FolderPath: "Receipts", Confidence: 0.8}},
		{MailID: "m1", Result: classifier.Result{FolderPath: "Receipts", Confidence: 0.9}},
	}}

	svc := NewClassificationService(fc, mailStore, folderStore)
	applied, err := svc.ClassifyPending(context.Background(), 20)

	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	remaining, _ := mailStore.CountUnclassified(context.Background())
	assert.Equal(t, 1, remaining)
}

func TestClassifyPending_IgnoresUnknownMailIDs(t *testing.T) {
	mailStore := newFakeMailStore(&models.Mail{ID: "m1"})
	fc := &fakeClassifier{batchResults: []classifier.BatchResult{
		{MailID: "hallucinated", Result: classifier.Result{FolderPath: "Receipts"}},
		{MailID: "m1", Result: classifier.Result{FolderPath: "Receipts", Confidence: 0.9}},
	}}

	svc := NewClassificationService(fc, mailStore, newFakeFolderStore())
	applied, err := svc.ClassifyPending(context.Background(), 20)

	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestClassifyPending_NothingToDo(t *testing.T) {
	fc := &fakeClassifier{}
	svc := NewClassificationService(fc, newFakeMailStore(), newFakeFolderStore())

	applied, err := svc.ClassifyPending(context.Background(), 20)

	require.NoError(t, err)
	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, fc.batchCalls, "no model call for an empty backlog")
}

func TestClassifyPending_LimitCapped(t *testing.T) {
	mails := make([]*models.Mail, 30)
	for i := range mails {
		mails[i] = &models.Mail{ID: string(rune('a' + i))}
	}
	mailStore := newFakeMailStore(mails...)
	fc := &fakeClassifier{}

	svc := NewClassificationService(fc, mailStore, newFakeFolderStore())
	_, err := svc.ClassifyPending(context.Background(), 100)

	require.NoError(t, err)
	assert.Len(t, fc.lastMails, classifier.MaxBatchSize)
}

func TestClassifyAdhoc(t *testing.T) {
	folderStore := newFakeFolderStore("Receipts")
	fc := &fakeClassifier{result: classifier.Result{FolderPath: "Receipts", Confidence: 0.95}}

	svc := NewClassificationService(fc, newFakeMailStore(), folderStore)
	result, err := svc.ClassifyAdhoc(context.Background(), classifier.Mail{Subject: "Invoice"})

	require.NoError(t, err)
	assert.Equal(t, "Receipts", result.FolderPath)
}

func TestClassifyPending_BatchErrorSurfaces(t *testing.T) {
	mailStore := newFakeMailStore(&models.Mail{ID: "m1"})
	boom := errors.New("all providers exhausted")
	fc := &fakeClassifier{err: boom}

	svc := NewClassificationService(fc, mailStore, newFakeFolderStore())
	_, err := svc.ClassifyPending(context.Background(), 20)

	assert.ErrorIs(t, err, boom)
}
