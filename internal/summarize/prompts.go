package summarize

import (
	"fmt"

	"headliner/internal/core"
	"headliner/internal/llm"
)

// systemPrompt enforces the house summary format: AP style, three
// paragraphs of 2-4 sentences, date first, headline at the top, and a
// trailing source-credit line.
const systemPrompt = `
Style: Write in AP style. Be concise, factual, and avoid opinion or interpretation.

Length: Summaries must be 3 paragraphs. Each paragraph should be 2-4 sentences. Each summary must begin with the article's published date in AP date format (e.g., Feb. 21, 2025).

Tone: Neutral and professional. Do not insert analysis, speculation, or commentary.

Content: Capture the main developments, essential context, and key quotes or statistics if available. Avoid minor details or redundancy.

Headline: Use the exact headline provided in the prompt for the article and place it at the top of the summary.

Sources: At the end of every summary, include a source line crediting the publisher.
- Use the exact source provided in the prompt.
- Do not invent sources. Do not omit sources.
- Always output in plain text, not markdown or hyperlinks.
`

// BuildMessages builds the fixed two-message prompt for an article.
func BuildMessages(meta core.ArticleMetadata) []llm.Message {
	user := fmt.Sprintf(
		"Summarize the following article in 3 concise paragraphs under 250 words. "+
			"The summary must begin with the publication date: %s, "+
			"include the headline at the top: %s, "+
			"and a source line crediting: %s\n\n%s",
		meta.PublicationDate, meta.Headline, meta.Source, meta.Text,
	)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: user},
	}
}
