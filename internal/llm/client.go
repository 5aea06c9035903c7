package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const systemPrompt = `You are an assistant for a campus asset inventory system.
Answer questions about the inventory using only the JSON context provided with
each question. Amounts are in Indian rupees. Be concise; when the context does
not contain the answer, say so instead of guessing.`

// Client wraps the Gemini API for inventory questions
type Client struct {
	model  string
	apiKey string
}

// New returns a client, or nil when no API key is configured. Callers treat
// a nil client as "chat disabled".
func New(apiKey, model string) *Client {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{model: model, apiKey: apiKey}
}

// Ask sends one question plus its inventory context and returns the reply.
func (c *Client) Ask(ctx context.Context, question, contextJSON string) (string, error) {
	if c == nil {
		return "", errors.New("chat is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		},
	}

	prompt := fmt.Sprintf("Inventory context:\n%s\n\nQuestion: %s", contextJSON, question)
	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("empty reply from model")
	}
	return text, nil
}

// Summarize produces a short executive summary for the PDF report. Failures
// are tolerated by the caller; the report ships without a summary.
func (c *Client) Summarize(ctx context.Context, statsJSON string) (string, error) {
	if c == nil {
		return "", errors.New("summaries are not configured")
	}
	prompt := fmt.Sprintf(
		"Write a short executive summary (at most 120 words, plain text) of this campus asset inventory:\n%s",
		statsJSON)
	return c.Ask(ctx, prompt, statsJSON)
}
