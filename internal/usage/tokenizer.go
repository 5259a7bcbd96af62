package usage

import (
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models without a registered tiktoken
// encoding (Gemini models, unknown names).
const fallbackEncoding = "cl100k_base"

// Tokenizer counts tokens for a model. Counts must be deterministic
// and stable for a given model/text pair; they feed both the usage
// ledger and cost estimates.
type Tokenizer interface {
	Count(text, model string) int
}

// TiktokenTokenizer counts tokens with the model's BPE encoding,
// caching encodings per model.
type TiktokenTokenizer struct {
	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
}

// NewTokenizer creates a TiktokenTokenizer.
func NewTokenizer() *TiktokenTokenizer {
	return &TiktokenTokenizer{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// Count returns the token count of text under the model's encoding.
// When no encoding can be loaded at all it falls back to a character
// heuristic so accounting keeps working offline.
func (t *TiktokenTokenizer) Count(text, model string) int {
	enc := t.encodingFor(model)
	if enc == nil {
		return heuristicTokenCount(text)
	}
	return len(enc.Encode(text, nil, nil))
}

func (t *TiktokenTokenizer) encodingFor(model string) *tiktoken.Tiktoken {
	t.mu.Lock()
	defer t.mu.Unlock()

	if enc, ok := t.encodings[model]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			enc = nil
		}
	}
	t.encodings[model] = enc
	return enc
}

// heuristicTokenCount approximates a token count from the rune count,
// roughly one token per 3.5 characters of English text.
func heuristicTokenCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	charCount := utf8.RuneCountInString(text)
	return int(math.Ceil(float64(charCount) / 3.5))
}
