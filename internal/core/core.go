package core

import "time"

// ArticleMetadata represents the extracted metadata and body text for a
// single article URL. It is transient: produced by the extractor and
// consumed by the summarizer within one pipeline run.
type ArticleMetadata struct {
	URL             string `json:"url"`              // The article URL, unique key
	Text            string `json:"text"`             // Cleaned body text, non-empty after trim
	Headline        string `json:"headline"`         // Article headline, sentinel when absent
	PublicationDate string `json:"publication_date"` // AP-formatted date (e.g. "Feb. 21, 2025"), never empty
	Source          string `json:"source"`           // Normalized apex-like domain (e.g. "ithacavoice.com")
}

// UsageRecord captures token and cost accounting for one completion
// attempt. One record is appended to the usage ledger per attempt,
// including retries.
type UsageRecord struct {
	Timestamp    time.Time `json:"timestamp"`     // When the attempt finished
	Model        string    `json:"model"`         // Model used for the completion
	PromptTokens int       `json:"prompt_tokens"` // Tokens in the prompt messages
	OutputTokens int       `json:"output_tokens"` // Tokens in the returned text
	TotalTokens  int       `json:"total_tokens"`  // Prompt + output
	CostUSD      float64   `json:"cost_usd"`      // Estimated cost, non-negative
}

// SummaryResult is a finished article summary, ready for persistence.
type SummaryResult struct {
	URL             string  `json:"url"`
	Headline        string  `json:"headline"`
	PublicationDate string  `json:"publication_date"`
	Source          string  `json:"source"`
	Summary         string  `json:"summary"`     // 3 paragraphs, date-first, source-credit line
	TokensUsed      int     `json:"tokens_used"` // Total tokens of the successful attempt
	CostUSD         float64 `json:"cost_usd"`    // Cost of the successful attempt
}

// URLResult is the outcome slot for a single URL in a batch: either a
// summary or a human-readable error string, never both.
type URLResult struct {
	Summary *SummaryResult `json:"summary,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// BatchResult aggregates per-URL outcomes and running totals for one
// submitted batch. Totals accumulate over successful URLs only.
type BatchResult struct {
	Results      map[string]URLResult `json:"results"`
	TotalTokens  int                  `json:"total_tokens"`
	TotalCostUSD float64              `json:"total_cost_usd"`
}
