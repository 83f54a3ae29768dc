// Package recommend produces fertilizer recommendations for a soil reading,
// asking a language model first and falling back to local templates.
package recommend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

var (
	// ErrNotConfigured means the provider has no API key.
	ErrNotConfigured = errors.New("recommendation provider not configured")
	// ErrInvalidResponse means the model's answer held no usable recommendation.
	ErrInvalidResponse = errors.New("recommendation response is not valid")
)

// Provider sends a system instruction and a prompt to a language model and
// returns its raw text answer.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Advisor always returns a recommendation.
type Advisor struct {
	provider Provider
}

func NewAdvisor(provider Provider) *Advisor {
	return &Advisor{provider: provider}
}

// Recommend asks the provider and validates the answer. Any failure, whether
// transport, status, missing key or unparseable content, yields Fallback.
func (a *Advisor) Recommend(ctx context.Context, reading data.SensorReading) data.Recommendation {
	log := slog.With("operation", "recommend.Recommend")

	if a.provider == nil {
		log.Warn("No recommendation provider, using fallback")
		return Fallback(reading)
	}
	log = log.With("provider", a.provider.Name())

	content, err := a.provider.Complete(ctx, SystemInstruction, BuildPrompt(reading))
	if err != nil {
		log.Error("Recommendation provider failed, using fallback", "error", err)
		return Fallback(reading)
	}

	rec, err := ParseResponse(content)
	if err != nil {
		log.Warn("Unusable recommendation response, using fallback", "error", err, "content_length", len(content))
		return Fallback(reading)
	}
	log.Info("Recommendation received", "name", rec.Name)
	return rec
}
