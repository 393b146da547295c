package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Dispatcher delivers a message preview to a user's device. Delivery is
// best-effort: implementations log failures and never surface them to the
// sender.
type Dispatcher interface {
	Notify(ctx context.Context, userID, preview string, data map[string]string)
}

// LogDispatcher is the Dispatcher used when push delivery is disabled; it
// records previews in the log and does nothing else.
type LogDispatcher struct{}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// Notify logs the preview instead of dispatching it.
func (d *LogDispatcher) Notify(ctx context.Context, userID, preview string, data map[string]string) {
	log.Info().
		Str("user", userID).
		Str("preview", preview).
		Msg("push disabled, notification logged")
}
