package usage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"headliner/internal/core"
)

var ledgerHeader = []string{"timestamp", "model", "prompt_tokens", "output_tokens", "total_tokens", "cost_usd"}

// Ledger is an append-only CSV record of token usage and cost, one row
// per completion attempt. Appends are serialized; each write is a
// single atomic row.
type Ledger struct {
	mu   sync.Mutex
	path string
}

// NewLedger creates a ledger writing to the given CSV file path. The
// file is created with a header row on first append.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string { return l.path }

// Append writes one usage record to the ledger file.
func (l *Ledger) Append(rec core.UsageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open usage ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(ledgerHeader); err != nil {
			return fmt.Errorf("failed to write ledger header: %w", err)
		}
	}

	row := []string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Model,
		strconv.Itoa(rec.PromptTokens),
		strconv.Itoa(rec.OutputTokens),
		strconv.Itoa(rec.TotalTokens),
		strconv.FormatFloat(rec.CostUSD, 'f', 6, 64),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger: %w", err)
	}
	return nil
}
