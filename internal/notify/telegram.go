package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// TelegramNotifier posts messages through the Bot API.
type TelegramNotifier struct {
	apiURL string
	token  string
	chatID string
	http   *resty.Client
}

func NewTelegramNotifier(apiURL, token, chatID string, timeout time.Duration) *TelegramNotifier {
	return &TelegramNotifier{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		chatID: chatID,
		http:   resty.New().SetTimeout(timeout),
	}
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.apiURL, t.token, method)
}

func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	log := slog.With("operation", "TelegramNotifier.Send")

	if t.token == "" || t.chatID == "" {
		return ErrNotConfigured
	}

	resp, err := t.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"chat_id":              t.chatID,
			"text":                 text,
			"parse_mode":           "HTML",
			"disable_notification": false,
		}).
		Post(t.endpoint("sendMessage"))
	if err != nil {
		log.Error("Telegram request failed", "error", err)
		return fmt.Errorf("telegram request: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("telegram API error: %s", describe(resp))
	}

	log.Info("Telegram message sent", "length", len(text))
	return nil
}

// TestConnection calls getMe and returns the bot username.
func (t *TelegramNotifier) TestConnection(ctx context.Context) (string, error) {
	if t.token == "" {
		return "", ErrNotConfigured
	}

	resp, err := t.http.R().SetContext(ctx).Get(t.endpoint("getMe"))
	if err != nil {
		return "", fmt.Errorf("telegram request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("telegram bot unreachable: %s", describe(resp))
	}

	var body telegramResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decode getMe response: %w", err)
	}
	var bot struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body.Result, &bot); err != nil {
		return "", fmt.Errorf("decode getMe result: %w", err)
	}
	slog.Info("Telegram bot connected", "username", bot.Username)
	return bot.Username, nil
}

// describe prefers Telegram's own description over the HTTP status text.
func describe(resp *resty.Response) string {
	var body telegramResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Description != "" {
		return body.Description
	}
	return resp.Status()
}
