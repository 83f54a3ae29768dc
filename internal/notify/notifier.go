// Package notify formats monitoring messages and delivers them to an
// operator channel.
package notify

import (
	"context"
	"errors"
)

// ErrNotConfigured means the channel lacks credentials or a destination.
var ErrNotConfigured = errors.New("notification channel not configured")

// Notifier delivers one HTML-formatted message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// ConnectionTester is implemented by channels that can verify their
// credentials without sending a message.
type ConnectionTester interface {
	TestConnection(ctx context.Context) (string, error)
}
