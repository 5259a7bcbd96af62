package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient is the Gemini completion provider.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini provider with the given API key.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Complete runs one generation. System messages become the system
// instruction; the remaining messages are concatenated into the user
// content. An empty candidate returns "" with a nil error.
func (c *GeminiClient) Complete(ctx context.Context, model string, messages []Message, temperature float32, maxTokens int) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxTokens),
	}

	var userParts []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: m.Content}},
			}
			continue
		}
		userParts = append(userParts, m.Content)
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: strings.Join(userParts, "\n\n")}},
		Role:  genai.RoleUser,
	}}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	return resp.Text(), nil
}
