package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier shows desktop notifications. Failures are logged and dropped.
type Notifier struct {
	logger *slog.Logger
	send   func(title, message string) error
}

func New(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger: logger,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

func (n *Notifier) Notify(title, message string) {
	n.logger.Info("notification", "title", title, "message", message)
	if err := n.send(title, message); err != nil {
		n.logger.Warn("desktop notification failed", "err", err)
	}
}
