package classifier

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Mail is the slice of a mail record the classifier looks at.
type Mail struct {
	ID      string
	Subject string
	Sender  string
	Snippet string
}

// Folder is an existing folder the model may classify into.
type Folder struct {
	Path string
}

// Result is a single classification decision.
type Result struct {
	FolderPath  string  `json:"folder_path"`
	IsNewFolder bool    `json:"is_new_folder"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

// BatchResult ties a Result to the mail it belongs to. Batch output order is
// whatever the model produced; callers correlate by MailID.
type BatchResult struct {
	Result
	MailID string `json:"mail_id"`
}

// ErrClassifyFailed wraps a provider error that survived the full
// retry/fallback budget.
var ErrClassifyFailed = errors.New("classification failed")

// MaxBatchSize is the hard cap on mails per batch prompt. Excess input is
// silently dropped.
const MaxBatchSize = 20

// Classifier turns mails into folder assignments by asking an LLM backend.
type Classifier struct {
	engine *Engine
}

// New builds a Classifier from provider credentials. It fails with
// ErrNotConfigured when no usable provider could be constructed.
func New(cfg Config) (*Classifier, error) {
	set, err := NewProviderSet(cfg)
	if err != nil {
		return nil, err
	}
	return &Classifier{engine: NewEngine(set)}, nil
}

// ClassifyOne classifies a single mail against the given folder list.
// Malformed model output never surfaces as an error; it degrades to the
// low-confidence fallback result.
func (c *Classifier) ClassifyOne(ctx context.Context, mail Mail, folders []Folder) (Result, error) {
	if c == nil {
		return Result{}, ErrNotConfigured
	}
	prompt := renderSingle(folders, mail)

	raw, err := c.engine.Invoke(ctx, systemPrompt, prompt)
	if err != nil {
		log.Errorf("Mail classification failed: %v", err)
		return Result{}, fmt.Errorf("%w: %v", ErrClassifyFailed, err)
	}
	return ParseSingle(raw), nil
}

// ClassifyBatch classifies up to MaxBatchSize mails in one model call. The
// result set may omit mails the model skipped; gap-filling is left to the
// caller.
func (c *Classifier) ClassifyBatch(ctx context.Context, mails []Mail, folders []Folder) ([]BatchResult, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if len(mails) > MaxBatchSize {
		mails = mails[:MaxBatchSize]
	}
	prompt := renderBatch(folders, mails)

	raw, err := c.engine.Invoke(ctx, systemPrompt, prompt)
	if err != nil {
		log.Errorf("Mail batch classification failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrClassifyFailed, err)
	}
	return ParseBatch(raw, mails), nil
}

// LastProvider reports which provider served the most recent successful
// invocation. Advisory only; see Engine.LastProvider.
func (c *Classifier) LastProvider() string {
	if c == nil {
		return ""
	}
	return c.engine.LastProvider()
}
