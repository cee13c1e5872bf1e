package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sapulidi/sapulidi/pkg/formatting"
)

type gemini struct {
	client *genai.Client
}

func openGemini(ctx context.Context, cfg *Config) (provider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &gemini{client: client}, nil
}

// invoke returns the concatenated text of the first candidate.
func (g *gemini) invoke(ctx context.Context, prompt, image string, opts Options) (any, error) {
	model := g.client.GenerativeModel(opts.Model)
	model.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}

	parts := []genai.Part{genai.Text(prompt)}
	if image != "" {
		uri, err := formatting.ParseDataURI(image)
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.ImageData(strings.TrimPrefix(uri.MimeType, "image/"), uri.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate: %w", ErrTransport, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates returned from gemini", ErrTransport)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty content returned from gemini", ErrTransport)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

func (g *gemini) close() error {
	return g.client.Close()
}
