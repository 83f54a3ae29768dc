package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// OpenRouterProvider calls an OpenAI-compatible chat completions endpoint.
type OpenRouterProvider struct {
	baseURL string
	apiKey  string
	model   string
	referer string
	title   string
	http    *resty.Client
}

type OpenRouterOptions struct {
	BaseURL string
	APIKey  string
	Model   string
	Referer string
	Title   string
	Timeout time.Duration
}

func NewOpenRouterProvider(opts OpenRouterOptions) *OpenRouterProvider {
	return &OpenRouterProvider{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		referer: opts.Referer,
		title:   opts.Title,
		http:    resty.New().SetTimeout(opts.Timeout),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

func (p *OpenRouterProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	const op = "OpenRouterProvider.Complete"
	log := slog.With("operation", op, "model", p.model)

	if p.apiKey == "" {
		return "", ErrNotConfigured
	}

	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2500,
	}

	start := time.Now()
	resp, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", p.referer).
		SetHeader("X-Title", p.title).
		SetBody(body).
		Post(p.baseURL + "/chat/completions")
	if err != nil {
		log.Error("Completion request failed", "error", err, "elapsed_time", time.Since(start))
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	log.Info("Completion response received", "status_code", resp.StatusCode(), "elapsed_time", time.Since(start))

	if !resp.IsSuccess() {
		return "", fmt.Errorf("openrouter returned %s: %s", resp.Status(), truncate(resp.String(), 300))
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("decode openrouter response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrInvalidResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
