package usage

import (
	"log/slog"

	"headliner/internal/core"
	"headliner/internal/logger"
)

// Accountant ties token counting and cost estimation to the usage
// ledger. Recording is a side effect only: a ledger failure is logged
// and never aborts summarization.
type Accountant struct {
	tokenizer Tokenizer
	ledger    *Ledger
	log       *slog.Logger
}

// NewAccountant creates an Accountant. ledger may be nil, in which
// case records are dropped (useful for dry runs and tests).
func NewAccountant(tokenizer Tokenizer, ledger *Ledger) *Accountant {
	return &Accountant{
		tokenizer: tokenizer,
		ledger:    ledger,
		log:       logger.Get(),
	}
}

// CountTokens returns the deterministic token count of text for model.
func (a *Accountant) CountTokens(text, model string) int {
	return a.tokenizer.Count(text, model)
}

// EstimateCost converts token counts into a cost estimate for a model.
func (a *Accountant) EstimateCost(model string, promptTokens, outputTokens int) float64 {
	return EstimateCost(model, promptTokens, outputTokens)
}

// Record appends one usage record to the ledger. Never returns an
// error: logging failure must not abort the caller's hot path.
func (a *Accountant) Record(rec core.UsageRecord) {
	if a.ledger == nil {
		return
	}
	if err := a.ledger.Append(rec); err != nil {
		a.log.Error("failed to record usage", "error", err.Error(), "model", rec.Model)
	}
}
