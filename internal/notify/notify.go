package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/scheduler"
)

func record(ctx context.Context, m *instrumentation.Metrics, name string, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	m.RecordNotification(ctx, name, status)
}

// Log writes summaries at info level.
type Log struct {
	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

var _ scheduler.Notifier = (*Log)(nil)

func (n *Log) Notify(ctx context.Context, text string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "booking summary", slog.String("summary", text))
	record(ctx, n.Metrics, "log", nil)
	return nil
}

// SignalSender is the subset of the Signal client used for notifications.
type SignalSender interface {
	SendMessage(ctx context.Context, recipient, message string) error
	SendGroupMessage(ctx context.Context, groupName, message string) error
}

// Signal sends summaries to a recipient or, when Group is set, to a group.
type Signal struct {
	Sender    SignalSender
	Recipient string
	Group     string
	Metrics   *instrumentation.Metrics
}

var _ scheduler.Notifier = (*Signal)(nil)

func (n *Signal) Notify(ctx context.Context, text string) error {
	var err error
	if n.Group != "" {
		err = n.Sender.SendGroupMessage(ctx, n.Group, text)
	} else {
		err = n.Sender.SendMessage(ctx, n.Recipient, text)
	}
	record(ctx, n.Metrics, "signal", err)
	if err != nil {
		return fmt.Errorf("failed to send signal notification: %w", err)
	}
	return nil
}

// Multi delivers to every notifier and joins their errors.
type Multi []scheduler.Notifier

func (m Multi) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
