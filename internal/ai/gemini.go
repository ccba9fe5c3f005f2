package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

type GeminiClient struct {
	APIKey string
	Model  string
	// BaseURL overrides the SDK endpoint; empty means Google's default.
	BaseURL string
	HTTP    *http.Client
}

func NewGemini(apiKey, model string, hc *http.Client) *GeminiClient {
	return &GeminiClient{
		APIKey: apiKey,
		Model:  model,
		HTTP:   hc,
	}
}

// GenerateJSON builds the SDK client per call so a missing key surfaces as
// a failed request rather than a startup error.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.HTTP,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.BaseURL},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: new client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if schema != nil {
		cfg.ResponseSchema = geminiSchema(schema)
	}

	res, err := client.Models.GenerateContent(ctx, c.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", geminiError(err)
	}

	if len(res.Candidates) == 0 {
		if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked (%s): %w", res.PromptFeedback.BlockReason, ErrEmptyResponse)
		}
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: finish reason %q: %w", res.Candidates[0].FinishReason, ErrEmptyResponse)
	}
	return text, nil
}

// geminiError maps SDK HTTP errors onto *APIError.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: "gemini", StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &APIError{Provider: "gemini", StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini: %w", err)
}
