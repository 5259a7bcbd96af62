package llm

import (
	"context"
	"fmt"
	"strings"
)

// Message roles for completion requests.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message in a completion request.
type Message struct {
	Role    string
	Content string
}

// Completer is the completion collaborator: model + messages in, text
// out. An empty returned string with a nil error means the model
// produced no usable text; retry policy belongs to the caller.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message, temperature float32, maxTokens int) (string, error)
}

// Router dispatches completion requests to a provider by model name:
// "gemini*" models go to the Gemini provider, everything else to the
// OpenAI provider.
type Router struct {
	openai Completer
	gemini Completer
}

// NewRouter creates a Router over the given providers. Either may be
// nil when the corresponding API key is not configured.
func NewRouter(openai, gemini Completer) *Router {
	return &Router{openai: openai, gemini: gemini}
}

// Complete routes the request to the provider for model.
func (r *Router) Complete(ctx context.Context, model string, messages []Message, temperature float32, maxTokens int) (string, error) {
	provider := r.openai
	if strings.HasPrefix(model, "gemini") {
		provider = r.gemini
	}
	if provider == nil {
		return "", fmt.Errorf("no completion provider configured for model %q", model)
	}
	return provider.Complete(ctx, model, messages, temperature, maxTokens)
}
