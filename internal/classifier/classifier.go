// Package classifier suggests a ticket priority from its title and
// description. A configured LLM provider is tried first; the keyword rules are
// the fallback whenever the provider is absent or its answer is unusable.
package classifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/llm"
)

// Result is a priority suggestion together with its provenance.
type Result struct {
	Priority    domain.TicketPriority
	Explanation string
	Origin      domain.ClassificationOrigin
}

// Options tunes model requests.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Status describes which classification path is active.
type Status struct {
	Mode     domain.ClassificationOrigin `json:"mode"`
	Provider string                      `json:"provider,omitempty"`
	Model    string                      `json:"model,omitempty"`
}

// Classifier produces priority suggestions.
type Classifier struct {
	provider llm.Provider
	opts     Options
	logger   *zap.Logger
}

// New builds a classifier. provider may be nil, in which case every call uses
// the keyword rules.
func New(provider llm.Provider, opts Options, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 150
	}
	return &Classifier{provider: provider, opts: opts, logger: logger}
}

// FromConfig builds a classifier backed by OpenAI when a key is configured and
// by the keyword rules otherwise.
func FromConfig(cfg config.ClassifierConfig, logger *zap.Logger) *Classifier {
	var provider llm.Provider
	if cfg.ModelEnabled() {
		provider = llm.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	}
	return New(provider, Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, logger)
}

// Classify never fails: provider errors and unparseable answers fall back to
// the keyword rules.
func (c *Classifier) Classify(ctx context.Context, title, description string) Result {
	if c.provider == nil {
		return Rules(title, description)
	}

	result, err := c.classifyWithModel(ctx, title, description)
	if err != nil {
		c.logger.Warn("model classification failed; using rules",
			zap.String("provider", c.provider.Name()),
			zap.Error(err))
		return Rules(title, description)
	}
	c.logger.Debug("model classification",
		zap.String("priority", string(result.Priority)),
		zap.String("provider", c.provider.Name()))
	return result
}

func (c *Classifier) classifyWithModel(ctx context.Context, title, description string) (Result, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildUserPrompt(title, description)},
		},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
	if err != nil {
		return Result{}, err
	}
	return parseModelResponse(resp.Content)
}

// Status reports whether the model path is configured.
func (c *Classifier) Status() Status {
	if c.provider == nil {
		return Status{Mode: domain.OriginRules}
	}
	return Status{Mode: domain.OriginModel, Provider: c.provider.Name(), Model: c.opts.Model}
}

// Manual wraps caller-supplied values.
func Manual(priority domain.TicketPriority, explanation string) Result {
	return Result{Priority: priority, Explanation: explanation, Origin: domain.OriginManual}
}
