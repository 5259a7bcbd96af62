package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"headliner/internal/core"
	"headliner/internal/llm"
	"headliner/internal/logger"
)

// Failure indicates every summarization attempt for a URL returned
// empty output. Terminal for that URL, non-fatal to the batch.
type Failure struct {
	Attempts int
}

func (f *Failure) Error() string {
	return fmt.Sprintf("no usable summary after %d attempts", f.Attempts)
}

// Accountant records token usage and cost for each completion attempt.
type Accountant interface {
	CountTokens(text, model string) int
	EstimateCost(model string, promptTokens, outputTokens int) float64
	Record(rec core.UsageRecord)
}

// Options configures the orchestrator behavior.
type Options struct {
	Temperature float32       // Completion temperature
	MaxTokens   int           // Completion output cap
	MaxRetries  int           // Extra attempts after the first empty result
	RetryDelay  time.Duration // Pause between attempts
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Temperature: 0.3,
		MaxTokens:   1000,
		MaxRetries:  2,
		RetryDelay:  time.Second,
	}
}

// Orchestrator turns extracted article metadata into a SummaryResult
// via the completion collaborator, retrying on empty output up to a
// bound and recording usage per attempt.
type Orchestrator struct {
	completer  llm.Completer
	accountant Accountant
	options    Options
	log        *slog.Logger
}

// New creates an Orchestrator.
func New(completer llm.Completer, accountant Accountant, options Options) *Orchestrator {
	return &Orchestrator{
		completer:  completer,
		accountant: accountant,
		options:    options,
		log:        logger.Get(),
	}
}

// Summarize generates a summary for the article described by meta.
// Each attempt is accounted in the usage ledger, including retries.
// An attempt succeeds iff the returned text is non-empty after
// trimming; a completion error is returned as this URL's error.
func (o *Orchestrator) Summarize(ctx context.Context, meta core.ArticleMetadata, model string) (core.SummaryResult, error) {
	messages := BuildMessages(meta)

	for attempt := 0; attempt <= o.options.MaxRetries; attempt++ {
		promptTokens := 0
		for _, m := range messages {
			promptTokens += o.accountant.CountTokens(m.Content, model)
		}

		text, err := o.completer.Complete(ctx, model, messages, o.options.Temperature, o.options.MaxTokens)
		if err != nil {
			return core.SummaryResult{}, fmt.Errorf("error processing article: %w", err)
		}

		summary := strings.TrimSpace(text)
		outputTokens := o.accountant.CountTokens(summary, model)
		totalTokens := promptTokens + outputTokens
		cost := o.accountant.EstimateCost(model, promptTokens, outputTokens)

		o.accountant.Record(core.UsageRecord{
			Timestamp:    time.Now().UTC(),
			Model:        model,
			PromptTokens: promptTokens,
			OutputTokens: outputTokens,
			TotalTokens:  totalTokens,
			CostUSD:      cost,
		})

		o.log.Debug("summarization attempt",
			"url", meta.URL, "attempt", attempt+1,
			"prompt_tokens", promptTokens, "output_tokens", outputTokens, "cost_usd", cost)

		if summary != "" {
			return core.SummaryResult{
				URL:             meta.URL,
				Headline:        meta.Headline,
				PublicationDate: meta.PublicationDate,
				Source:          meta.Source,
				Summary:         summary,
				TokensUsed:      totalTokens,
				CostUSD:         cost,
			}, nil
		}

		o.log.Warn("summary was empty, retrying", "url", meta.URL, "attempt", attempt+1)
		if attempt < o.options.MaxRetries {
			time.Sleep(o.options.RetryDelay)
		}
	}

	return core.SummaryResult{}, &Failure{Attempts: o.options.MaxRetries + 1}
}
