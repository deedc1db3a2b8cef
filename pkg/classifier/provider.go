package classifier

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

// Provider is an opaque text-in/text-out LLM backend.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrNotConfigured indicates that neither provider credential yielded a
// usable backend. The classifier cannot be used.
var ErrNotConfigured = errors.New("no classification provider is configured (set GOOGLE_API_KEY or OPENAI_API_KEY)")

// Config holds the credentials and model names for the two provider slots.
// Gemini is the preferred provider, OpenAI the secondary.
type Config struct {
	GoogleAPIKey string
	OpenAIAPIKey string
	GeminiModel  string
	OpenAIModel  string
}

// ProviderSet holds the primary and optional fallback provider. Which
// configured provider occupies primary is decided exactly once, at
// construction; the set is immutable afterwards.
type ProviderSet struct {
	primary  Provider
	fallback Provider
}

// NewProviderSet attempts to construct both providers independently. A
// construction failure is logged and the slot left empty, not fatal. If the
// preferred provider is unavailable but the secondary succeeded, the
// secondary is promoted to primary and the fallback slot cleared. No network
// calls happen here.
func NewProviderSet(cfg Config) (*ProviderSet, error) {
	var primary, fallback Provider

	if cfg.GoogleAPIKey != "" {
		p, err := NewGeminiProvider(cfg.GoogleAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warnf("Failed to initialize Gemini provider: %v", err)
		} else {
			primary = p
			log.Infof("Primary classification provider: %s (%s)", p.Name(), p.ModelName())
		}
	}

	if cfg.OpenAIAPIKey != "" {
		p, err := NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			log.Warnf("Failed to initialize OpenAI provider: %v", err)
		} else {
			fallback = p
			log.Infof("Fallback classification provider: %s (%s)", p.Name(), p.ModelName())
		}
	}

	// Promotion happens once, here. No runtime re-evaluation.
	if primary == nil && fallback != nil {
		primary = fallback
		fallback = nil
		log.Infof("Promoted %s to primary (preferred provider unavailable)", primary.Name())
	}

	if primary == nil {
		return nil, ErrNotConfigured
	}
	return &ProviderSet{primary: primary, fallback: fallback}, nil
}

// Primary returns the provider tried first on every invocation.
func (s *ProviderSet) Primary() Provider { return s.primary }

// Fallback returns the second-chance provider, or nil when only one slot was
// configurable.
func (s *ProviderSet) Fallback() Provider { return s.fallback }
