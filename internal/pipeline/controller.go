package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"headliner/internal/core"
	"headliner/internal/logger"
)

// MaxBatchSize caps the number of URLs accepted per batch.
const MaxBatchSize = 10

// InvalidInputError rejects a malformed batch before any work starts:
// empty batch or oversized batch. It is a caller error, not a partial
// failure.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// Extractor produces article metadata for a URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (core.ArticleMetadata, error)
}

// Summarizer produces a summary for extracted metadata.
type Summarizer interface {
	Summarize(ctx context.Context, meta core.ArticleMetadata, model string) (core.SummaryResult, error)
}

// Storer persists finished summaries.
type Storer interface {
	Upsert(ctx context.Context, result core.SummaryResult) error
}

// Controller sequences extraction, summarization, and storage for each
// URL in a batch. Per-URL failures are isolated: one URL's error never
// stops processing of the rest.
type Controller struct {
	extractor  Extractor
	summarizer Summarizer
	store      Storer
	log        *slog.Logger
}

// New creates a Controller. store may be nil when persistence is not
// configured; storeResults then has no effect.
func New(extractor Extractor, summarizer Summarizer, store Storer) *Controller {
	return &Controller{
		extractor:  extractor,
		summarizer: summarizer,
		store:      store,
		log:        logger.Get(),
	}
}

// Run processes a batch of URLs and aggregates per-URL outcomes with
// batch totals. Batch totals accumulate over successes only. The
// context deadline bounds the whole batch; a URL exceeding it records
// its own timeout error.
func (c *Controller) Run(ctx context.Context, urls []string, model string, storeResults bool) (core.BatchResult, error) {
	if len(urls) == 0 {
		return core.BatchResult{}, &InvalidInputError{Reason: "no URLs provided"}
	}
	if len(urls) > MaxBatchSize {
		return core.BatchResult{}, &InvalidInputError{
			Reason: fmt.Sprintf("maximum %d URLs allowed per batch", MaxBatchSize),
		}
	}

	batch := core.BatchResult{Results: make(map[string]core.URLResult, len(urls))}

	for _, url := range urls {
		if !hasHTTPScheme(url) {
			batch.Results[url] = core.URLResult{Error: "invalid URL format"}
			continue
		}

		c.log.Info("processing article", "url", url, "model", model)

		result, err := c.process(ctx, url, model, storeResults)
		if err != nil {
			c.log.Warn("article processing failed", "url", url, "error", err.Error())
			batch.Results[url] = core.URLResult{Error: err.Error()}
			continue
		}

		batch.Results[url] = core.URLResult{Summary: &result}
		batch.TotalTokens += result.TokensUsed
		batch.TotalCostUSD += result.CostUSD
	}

	return batch, nil
}

// process runs one URL through extraction, summarization, and optional
// storage. A storage failure is logged but does not invalidate the
// already-produced summary.
func (c *Controller) process(ctx context.Context, url, model string, storeResults bool) (core.SummaryResult, error) {
	meta, err := c.extractor.Extract(ctx, url)
	if err != nil {
		return core.SummaryResult{}, err
	}

	result, err := c.summarizer.Summarize(ctx, meta, model)
	if err != nil {
		return core.SummaryResult{}, err
	}

	if storeResults && c.store != nil {
		if err := c.store.Upsert(ctx, result); err != nil {
			c.log.Error("failed to store summary", "url", url, "error", err.Error())
		}
	}

	return result, nil
}

// hasHTTPScheme reports whether the URL uses an http or https scheme.
// Entries failing this check are recorded as per-URL errors without
// invoking the extractor.
func hasHTTPScheme(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
