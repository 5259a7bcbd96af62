package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"headliner/internal/core"
)

type mockExtractor struct {
	calls  []string
	failOn map[string]error
}

func (m *mockExtractor) Extract(_ context.Context, url string) (core.ArticleMetadata, error) {
	m.calls = append(m.calls, url)
	if err, ok := m.failOn[url]; ok {
		return core.ArticleMetadata{}, err
	}
	return core.ArticleMetadata{
		URL:             url,
		Text:            "article body",
		Headline:        "Headline for " + url,
		PublicationDate: "Feb. 21, 2025",
		Source:          "example.com",
	}, nil
}

type mockSummarizer struct {
	calls  int
	failOn map[string]error
}

func (m *mockSummarizer) Summarize(_ context.Context, meta core.ArticleMetadata, _ string) (core.SummaryResult, error) {
	m.calls++
	if err, ok := m.failOn[meta.URL]; ok {
		return core.SummaryResult{}, err
	}
	return core.SummaryResult{
		URL:             meta.URL,
		Headline:        meta.Headline,
		PublicationDate: meta.PublicationDate,
		Source:          meta.Source,
		Summary:         "summary of " + meta.URL,
		TokensUsed:      100,
		CostUSD:         0.001,
	}, nil
}

type mockStorer struct {
	upserts []core.SummaryResult
	err     error
}

func (m *mockStorer) Upsert(_ context.Context, result core.SummaryResult) error {
	m.upserts = append(m.upserts, result)
	return m.err
}

func newTestController() (*Controller, *mockExtractor, *mockSummarizer, *mockStorer) {
	extractor := &mockExtractor{failOn: map[string]error{}}
	summarizer := &mockSummarizer{failOn: map[string]error{}}
	storer := &mockStorer{}
	return New(extractor, summarizer, storer), extractor, summarizer, storer
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	c, _, _, _ := newTestController()

	_, err := c.Run(context.Background(), nil, "gpt-4o-mini", true)
	if err == nil {
		t.Fatal("expected error for empty batch")
	}
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidInputError, got %T", err)
	}
}

func TestRunRejectsOversizedBatch(t *testing.T) {
	c, extractor, _, _ := newTestController()

	urls := make([]string, MaxBatchSize+1)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/%d", i)
	}

	_, err := c.Run(context.Background(), urls, "gpt-4o-mini", true)
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidInputError, got %T: %v", err, err)
	}
	// Validation happens before any work.
	if len(extractor.calls) != 0 {
		t.Errorf("expected no extraction for rejected batch, got %d calls", len(extractor.calls))
	}
}

func TestRunAcceptsFullBatch(t *testing.T) {
	c, _, _, _ := newTestController()

	urls := make([]string, MaxBatchSize)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/%d", i)
	}

	batch, err := c.Run(context.Background(), urls, "gpt-4o-mini", true)
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if len(batch.Results) != MaxBatchSize {
		t.Errorf("expected %d results, got %d", MaxBatchSize, len(batch.Results))
	}
}

func TestRunSkipsInvalidURLFormat(t *testing.T) {
	c, extractor, _, _ := newTestController()

	batch, err := c.Run(context.Background(), []string{
		"https://example.com/good",
		"ftp://example.com/bad",
		"not-a-url",
	}, "gpt-4o-mini", true)
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}

	if batch.Results["ftp://example.com/bad"].Error != "invalid URL format" {
		t.Errorf("expected invalid URL error, got %+v", batch.Results["ftp://example.com/bad"])
	}
	if batch.Results["not-a-url"].Error != "invalid URL format" {
		t.Errorf("expected invalid URL error, got %+v", batch.Results["not-a-url"])
	}
	if batch.Results["https://example.com/good"].Summary == nil {
		t.Error("expected valid URL to be processed")
	}
	// Malformed entries never reach the extractor.
	if len(extractor.calls) != 1 {
		t.Errorf("expected 1 extraction call, got %d", len(extractor.calls))
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	c, extractor, summarizer, _ := newTestController()
	extractor.failOn["https://example.com/broken"] = errors.New("connection refused")
	summarizer.failOn["https://example.com/empty"] = errors.New("no usable summary after 3 attempts")

	batch, err := c.Run(context.Background(), []string{
		"https://example.com/broken",
		"https://example.com/empty",
		"https://example.com/fine",
	}, "gpt-4o-mini", true)
	if err != nil {
		t.Fatalf("expected success with per-URL errors, got: %v", err)
	}

	if batch.Results["https://example.com/broken"].Error == "" {
		t.Error("expected extraction failure recorded")
	}
	if batch.Results["https://example.com/empty"].Error == "" {
		t.Error("expected summarization failure recorded")
	}
	good := batch.Results["https://example.com/fine"]
	if good.Summary == nil || good.Error != "" {
		t.Errorf("expected healthy URL to succeed, got %+v", good)
	}
}

func TestRunTotalsOverSuccessesOnly(t *testing.T) {
	c, extractor, _, _ := newTestController()
	extractor.failOn["https://example.com/broken"] = errors.New("timeout")

	batch, err := c.Run(context.Background(), []string{
		"https://example.com/a",
		"https://example.com/broken",
		"https://example.com/b",
	}, "gpt-4o-mini", true)
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}

	if batch.TotalTokens != 200 {
		t.Errorf("expected totals over 2 successes, got %d tokens", batch.TotalTokens)
	}
	if batch.TotalCostUSD != 0.002 {
		t.Errorf("expected total cost 0.002, got %f", batch.TotalCostUSD)
	}
}

func TestRunStoreFailureDoesNotFailURL(t *testing.T) {
	c, _, _, storer := newTestController()
	storer.err = errors.New("neo4j down")

	batch, err := c.Run(context.Background(), []string{"https://example.com/a"}, "gpt-4o-mini", true)
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}

	result := batch.Results["https://example.com/a"]
	if result.Summary == nil || result.Error != "" {
		t.Errorf("store failure must not invalidate the summary, got %+v", result)
	}
	if len(storer.upserts) != 1 {
		t.Errorf("expected 1 upsert attempt, got %d", len(storer.upserts))
	}
}

func TestRunStoreDisabled(t *testing.T) {
	c, _, _, storer := newTestController()

	_, err := c.Run(context.Background(), []string{"https://example.com/a"}, "gpt-4o-mini", false)
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if len(storer.upserts) != 0 {
		t.Errorf("expected no upserts with storage disabled, got %d", len(storer.upserts))
	}
}

func TestRunNilStore(t *testing.T) {
	extractor := &mockExtractor{failOn: map[string]error{}}
	summarizer := &mockSummarizer{failOn: map[string]error{}}
	c := New(extractor, summarizer, nil)

	batch, err := c.Run(context.Background(), []string{"https://example.com/a"}, "gpt-4o-mini", true)
	if err != nil {
		t.Fatalf("expected success with nil store, got: %v", err)
	}
	if batch.Results["https://example.com/a"].Summary == nil {
		t.Error("expected summary despite nil store")
	}
}
