package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider asks a Gemini model through the official SDK.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider builds the SDK client. With an empty key it returns a
// provider whose calls fail with ErrNotConfigured.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	p := &GeminiProvider{modelName: modelName}
	if apiKey == "" {
		return p, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}
	p.client = client
	return p, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	if p.client == nil {
		return "", ErrNotConfigured
	}

	model := p.client.GenerativeModel(p.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(2500)
	model.ResponseMIMEType = "application/json"

	slog.Info("Sending Gemini request", "model", p.modelName, "prompt_length", len(prompt))
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned from AI")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("response part is not text, received %T", resp.Candidates[0].Content.Parts[0])
	}
	return b.String(), nil
}

func (p *GeminiProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
