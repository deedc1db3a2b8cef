package classifier

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
)

// DefaultMaxAttempts is the per-provider attempt budget.
const DefaultMaxAttempts = 2

// retriableKeywords is the substring heuristic applied when a provider error
// carries no structured HTTP status. Matched case-insensitively against the
// error text.
var retriableKeywords = []string{
	"429",
	"rate",
	"resource_exhausted",
	"quota",
	"connection",
	"timeout",
}

// Engine runs a single prompt against the provider set with retries,
// exponential backoff and primary-to-fallback failover.
type Engine struct {
	set          *ProviderSet
	maxAttempts  int
	sleep        func(time.Duration)
	lastProvider atomic.Value // string
}

// NewEngine wraps a provider set with the default attempt budget.
func NewEngine(set *ProviderSet) *Engine {
	return &Engine{
		set:         set,
		maxAttempts: DefaultMaxAttempts,
		sleep:       time.Sleep,
	}
}

// Invoke sends the prompt to the primary provider, retrying with backoff,
// then to the fallback if one is configured. Each provider gets the full
// attempt budget even on errors classified as non-retriable; only the sleep
// between attempts differs. On total exhaustion the most recent error is
// returned. The sleeps are real blocking waits on the calling goroutine.
func (e *Engine) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error

	primary := e.set.Primary()
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		raw, err := primary.Invoke(ctx, systemPrompt, userPrompt)
		if err == nil {
			e.lastProvider.Store(primary.Name())
			return raw, nil
		}
		lastErr = err
		log.Warnf("Primary provider %s attempt %d failed: %v", primary.Name(), attempt+1, err)

		if isRetriable(err) {
			wait := time.Duration(1<<attempt) * 2 * time.Second
			log.Infof("Retriable error from %s, waiting %s before retry", primary.Name(), wait)
			e.sleep(wait)
		} else {
			e.sleep(time.Second)
		}
	}

	if fallback := e.set.Fallback(); fallback != nil {
		log.Infof("Switching to fallback provider %s", fallback.Name())
		for attempt := 0; attempt < e.maxAttempts; attempt++ {
			raw, err := fallback.Invoke(ctx, systemPrompt, userPrompt)
			if err == nil {
				e.lastProvider.Store(fallback.Name())
				return raw, nil
			}
			lastErr = err
			log.Warnf("Fallback provider %s attempt %d failed: %v", fallback.Name(), attempt+1, err)
			e.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}

	return "", lastErr
}

// LastProvider names the provider that served the most recent successful
// invocation. The field is advisory: under concurrent calls its value is
// whichever call won the race, which is fine for diagnostics.
func (e *Engine) LastProvider() string {
	name, _ := e.lastProvider.Load().(string)
	return name
}

// isRetriable classifies a provider error. Structured HTTP statuses from the
// provider SDKs are preferred; the keyword scan over the error text is the
// fallback for opaque errors.
func isRetriable(err error) bool {
	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		return retriableStatus(openaiErr.HTTPStatusCode)
	}
	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		return retriableStatus(googleErr.Code)
	}

	msg := strings.ToLower(err.Error())
	for _, keyword := range retriableKeywords {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}

func retriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
