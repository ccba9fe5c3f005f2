package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const openAIBaseURL = "https://api.openai.com/v1"

type OpenAIClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func NewOpenAI(apiKey, model string, hc *http.Client) *OpenAIClient {
	return &OpenAIClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: openAIBaseURL,
		HTTP:    hc,
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat map[string]any  `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	req := openAIRequest{
		Model:    c.Model,
		Messages: []openAIMessage{{Role: "user", Content: prompt}},
	}
	if schema != nil {
		req.ResponseFormat = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "response",
				"strict": true,
				"schema": openAISchema(schema),
			},
		}
	} else {
		req.ResponseFormat = map[string]any{"type": "json_object"}
	}

	var res openAIResponse
	err := postJSON(ctx, c.HTTP, "openai", strings.TrimRight(c.BaseURL, "/")+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.APIKey}, req, &res)
	if err != nil {
		return "", err
	}

	if len(res.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	msg := res.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("openai: refused: %s", msg.Refusal)
	}
	if msg.Content == "" {
		return "", fmt.Errorf("openai: finish reason %q: %w", res.Choices[0].FinishReason, ErrEmptyResponse)
	}
	return msg.Content, nil
}
