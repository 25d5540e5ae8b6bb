// Package notify delivers lifecycle daemon alerts to operators. Alerts fan
// out to every configured sender; a failing channel never blocks the rest.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender is a single notification channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Notifier dispatches alerts to one or more Senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier over the given senders. An empty sender
// list produces a no-op notifier.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Alert sends a notification to every sender. Errors from individual senders
// are collected into a combined error after all deliveries were attempted.
func (n *Notifier) Alert(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "alert sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
