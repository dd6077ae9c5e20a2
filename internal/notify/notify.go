// Package notify delivers the composed digest to a chat endpoint. The
// concrete transport is chosen once at startup; a no-op stub stands in when
// delivery is disabled.
package notify

import (
	"context"

	"github.com/rewired-gh/marketbrief/internal/logger"
)

// Notifier sends one plain-text message to the configured chat.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Noop discards messages. Used when delivery is disabled.
type Noop struct{}

// Send logs the message instead of delivering it.
func (Noop) Send(_ context.Context, text string) error {
	logger.Info("delivery disabled, digest follows:\n%s", text)
	return nil
}
