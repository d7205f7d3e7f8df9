package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/invitebooker/internal/calendar"
	"github.com/teemow/invitebooker/internal/gmail"
	"github.com/teemow/invitebooker/internal/google"
	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/notify"
	"github.com/teemow/invitebooker/internal/scheduler"
	"github.com/teemow/invitebooker/internal/signal"
	"github.com/teemow/invitebooker/internal/store"
)

// services holds the collaborators behind the orchestrator.
type services struct {
	store        store.Store
	mail         *gmail.Client
	orchestrator *scheduler.Orchestrator
}

func (s *services) Close() error {
	return s.store.Close()
}

// buildServices connects to Google, opens the store and assembles the
// orchestrator for the configured account.
func buildServices(ctx context.Context, s *settings, provider google.TokenProvider, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger, logger *slog.Logger) (*services, error) {
	cfg := s.cfg

	mail, err := gmail.NewClientForAccount(ctx, provider, cfg.Account, metrics, logger)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.NewClientForAccount(ctx, provider, cfg.Account, metrics, logger)
	if err != nil {
		return nil, err
	}

	notifier, err := buildNotifier(s, metrics, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	orch, err := scheduler.New(scheduler.Config{
		Parser:              s.parser(nil),
		Mail:                mail,
		Calendar:            cal,
		Seen:                st,
		Notifier:            notifier,
		Location:            s.loc,
		WorkStart:           s.workStart,
		WorkEnd:             s.workEnd,
		Buffer:              cfg.Buffer(),
		Step:                cfg.Step(),
		RescheduleDaysAhead: cfg.RescheduleDaysAhead,
		RescheduleLimit:     cfg.RescheduleLimit,
		Lookback:            cfg.Lookback(),
		Lookahead:           cfg.Lookahead(),
		Conference:          cfg.Conference,
		Metrics:             metrics,
		Audit:               audit,
		Logger:              logger,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &services{store: st, mail: mail, orchestrator: orch}, nil
}

// buildNotifier always logs summaries and additionally sends them over
// Signal when that is enabled.
func buildNotifier(s *settings, metrics *instrumentation.Metrics, logger *slog.Logger) (scheduler.Notifier, error) {
	notifiers := notify.Multi{&notify.Log{Logger: logger, Metrics: metrics}}

	sc := s.cfg.Notify.Signal
	if !sc.Enabled {
		return notifiers, nil
	}
	client, err := signal.NewClient(sc.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to set up signal notifications: %w", err)
	}
	return append(notifiers, &notify.Signal{
		Sender:    client,
		Recipient: sc.Recipient,
		Group:     sc.Group,
		Metrics:   metrics,
	}), nil
}
