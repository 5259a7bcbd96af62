package usage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"headliner/internal/core"
)

func TestEstimateCostKnownModel(t *testing.T) {
	// gpt-4o-mini: $0.15 input, $0.60 output per 1M tokens.
	cost := EstimateCost("gpt-4o-mini", 1_000_000, 1_000_000)
	expected := 0.15 + 0.60
	if cost != expected {
		t.Errorf("expected cost %f, got %f", expected, cost)
	}
}

func TestEstimateCostUnknownModelUsesDefaultTier(t *testing.T) {
	cost := EstimateCost("some-future-model", 500_000, 500_000)
	expected := 0.5*1.00 + 0.5*1.00
	if cost != expected {
		t.Errorf("expected default-tier cost %f, got %f", expected, cost)
	}
}

func TestEstimateCostMonotonic(t *testing.T) {
	models := []string{"gpt-4o-mini", "gpt-4o", "unknown-model"}
	counts := []int{0, 1, 100, 10_000, 1_000_000}

	for _, model := range models {
		for i := 1; i < len(counts); i++ {
			lowPrompt := EstimateCost(model, counts[i-1], 1000)
			highPrompt := EstimateCost(model, counts[i], 1000)
			if highPrompt < lowPrompt {
				t.Errorf("%s: cost decreased with prompt tokens: %f -> %f", model, lowPrompt, highPrompt)
			}

			lowOutput := EstimateCost(model, 1000, counts[i-1])
			highOutput := EstimateCost(model, 1000, counts[i])
			if highOutput < lowOutput {
				t.Errorf("%s: cost decreased with output tokens: %f -> %f", model, lowOutput, highOutput)
			}
		}
	}
}

func TestEstimateCostNonNegative(t *testing.T) {
	if cost := EstimateCost("gpt-4o", 0, 0); cost != 0 {
		t.Errorf("expected zero cost for zero tokens, got %f", cost)
	}
}

func TestPricingForFallback(t *testing.T) {
	known := PricingFor("gpt-4o")
	if known.InputPerMTokens != 2.50 || known.OutputPerMTokens != 10.00 {
		t.Errorf("unexpected gpt-4o pricing: %+v", known)
	}

	unknown := PricingFor("never-heard-of-it")
	fallback := PricingFor(DefaultPricingKey)
	if unknown != fallback {
		t.Errorf("expected default tier for unknown model, got %+v", unknown)
	}
}

func TestModelsIncludesDefaultTier(t *testing.T) {
	models := Models()
	found := false
	for _, m := range models {
		if m == DefaultPricingKey {
			found = true
		}
	}
	if !found {
		t.Error("expected default tier in model list")
	}
}

func TestHeuristicTokenCount(t *testing.T) {
	if got := heuristicTokenCount(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}

	short := heuristicTokenCount("a few words")
	long := heuristicTokenCount("a few words plus quite a bit of extra text on top")
	if long <= short {
		t.Errorf("expected longer text to count more tokens: %d vs %d", short, long)
	}
}

func TestLedgerAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token_usage.csv")
	ledger := NewLedger(path)

	rec := core.UsageRecord{
		Timestamp:    time.Date(2025, 2, 21, 12, 0, 0, 0, time.UTC),
		Model:        "gpt-4o-mini",
		PromptTokens: 120,
		OutputTokens: 80,
		TotalTokens:  200,
		CostUSD:      0.000066,
	}

	if err := ledger.Append(rec); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := ledger.Append(rec); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}

	// Header once, then one row per append.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (header + 2 records), got %d", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][5] != "cost_usd" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != "gpt-4o-mini" || rows[1][4] != "200" {
		t.Errorf("unexpected data row: %v", rows[1])
	}
	if rows[1][5] != "0.000066" {
		t.Errorf("expected 6-decimal cost, got %q", rows[1][5])
	}
}

type stubTokenizer struct{}

func (stubTokenizer) Count(text, model string) int { return len(text) }

func TestAccountantRecordSurvivesLedgerFailure(t *testing.T) {
	// A ledger pointed at an unwritable path must not panic or abort.
	ledger := NewLedger(filepath.Join(t.TempDir(), "missing", "nested", "usage.csv"))
	accountant := NewAccountant(stubTokenizer{}, ledger)

	accountant.Record(core.UsageRecord{Timestamp: time.Now(), Model: "gpt-4o-mini"})
}

func TestAccountantNilLedger(t *testing.T) {
	accountant := NewAccountant(stubTokenizer{}, nil)
	accountant.Record(core.UsageRecord{Timestamp: time.Now(), Model: "gpt-4o-mini"})

	if got := accountant.CountTokens("abcd", "gpt-4o-mini"); got != 4 {
		t.Errorf("expected tokenizer passthrough, got %d", got)
	}
}
