package answer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiComposer drafts free-text answers with the Gemini API. It is wired
// in only when an API key is configured; the engine treats every failure as
// "no draft" and falls back to its canned answer.
type GeminiComposer struct {
	client *genai.Client
	model  string
}

// NewGeminiComposer builds a composer for the given model. model defaults to
// gemini-2.0-flash when empty.
func NewGeminiComposer(ctx context.Context, apiKey, model string) (*GeminiComposer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiComposer{client: client, model: model}, nil
}

const composePrompt = "You are completing a job application form. Answer the following " +
	"screening question in at most three sentences of plain professional prose, with no " +
	"preamble and no markdown. Question: %s"

// Compose asks the model for a short professional answer to the question.
func (c *GeminiComposer) Compose(ctx context.Context, label string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(fmt.Sprintf(composePrompt, label)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty answer")
	}
	return text, nil
}
