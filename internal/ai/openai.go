package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type openAI struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func openOpenAI(_ context.Context, cfg *Config) (provider, error) {
	return &openAI{
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// invoke returns the first choice object undecoded beyond a map, so the
// caller sees {"message": {"content": ...}}.
func (o *openAI) invoke(ctx context.Context, prompt, image string, opts Options) (any, error) {
	var content any = prompt
	if image != "" {
		content = []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: image}},
		}
	}

	body, err := json.Marshal(map[string]any{
		"model":       opts.Model,
		"messages":    []chatMessage{{Role: "user", Content: content}},
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var response struct {
		Choices []map[string]any `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned from openai", ErrTransport)
	}

	return response.Choices[0], nil
}

func (o *openAI) close() error {
	o.client.CloseIdleConnections()
	return nil
}
