package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(primary, fallback Provider) *Classifier {
	engine := NewEngine(&ProviderSet{primary: primary, fallback: fallback})
	engine.sleep = func(time.Duration) {}
	return &Classifier{engine: engine}
}

func TestClassifier_ClassifyOne(t *testing.T) {
	primary := &scriptedProvider{
		name:    "gemini",
		replies: []string{`{"folder_path": "Receipts", "is_new_folder": false, "confidence": 0.92, "reason": "invoice from a known vendor"}`},
	}
	c := newTestClassifier(primary, nil)

	mail := Mail{ID: "m1", Subject: "Invoice #1234", Sender: "billing@example.com", Snippet: "Your invoice is attached"}
	result, err := c.ClassifyOne(context.Background(), mail, []Folder{{Path: "Receipts"}})

	require.NoError(t, err)
	assert.Equal(t, "Receipts", result.FolderPath)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, "gemini", c.LastProvider())

	require.Len(t, primary.prompts, 1)
	assert.Contains(t, primary.prompts[0], "Invoice #1234")
	assert.Contains(t, primary.prompts[0], "- Receipts")
}

func TestClassifier_ClassifyOne_MalformedResponseNeverErrors(t *testing.T) {
	primary := &scriptedProvider{name: "gemini", replies: []string{"no json here, sorry"}}
	c := newTestClassifier(primary, nil)

	result, err := c.ClassifyOne(context.Background(), Mail{ID: "m1"}, nil)

	require.NoError(t, err, "parsing never escalates to the caller")
	assert.Equal(t, FallbackFolder, result.FolderPath)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestClassifier_ClassifyOne_ExhaustedProvidersSurfaceOneError(t *testing.T) {
	boom := errors.New("service unavailable")
	primary := &scriptedProvider{name: "gemini", errs: []error{boom, boom}}
	c := newTestClassifier(primary, nil)

	_, err := c.ClassifyOne(context.Background(), Mail{ID: "m1"}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClassifyFailed)
	assert.Contains(t, err.Error(), "service unavailable", "original message carried for diagnostics")
}

func TestClassifier_ClassifyBatch_TruncatesToCap(t *testing.T) {
	primary := &scriptedProvider{name: "gemini", replies: []string{"not an array"}}
	c := newTestClassifier(primary, nil)

	mails := make([]Mail, 25)
	for i := range mails {
		mails[i] = Mail{ID: string(rune('A' + i))}
	}

	results, err := c.ClassifyBatch(context.Background(), mails, nil)

	require.NoError(t, err)
	assert.Len(t, results, MaxBatchSize, "only the first 20 mails are sent and reflected")
	require.Len(t, primary.prompts, 1)
	assert.Equal(t, MaxBatchSize, strings.Count(primary.prompts[0], "### Email #"))
}

func TestClassifier_ClassifyBatch_Success(t *testing.T) {
	primary := &scriptedProvider{
		name: "gemini",
		replies: []string{`[
			{"mail_id": "m2", "folder_path": "Newsletters", "confidence": 0.7},
			{"mail_id": "m1", "folder_path": "Receipts", "confidence": 0.9}
		]`},
	}
	c := newTestClassifier(primary, nil)

	mails := []Mail{{ID: "m1"}, {ID: "m2"}}
	results, err := c.ClassifyBatch(context.Background(), mails, []Folder{{Path: "Receipts"}})

	require.NoError(t, err)
	require.Len(t, results, 2)
	// Output order is the model's, not the input's.
	assert.Equal(t, "m2", results[0].MailID)
	assert.Equal(t, "m1", results[1].MailID)
}
