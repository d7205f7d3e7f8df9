package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/logging"
)

// DefaultQuery selects recent invitations that carry a calendar file.
const DefaultQuery = `in:anywhere newer_than:1d ` +
	`(subject:("Invitation:" OR "Updated invitation:" OR "Rescheduled") ` +
	`OR body:("When" OR "Date" OR "Time" OR "Join with Google Meet")) ` +
	`has:attachment filename:ics`

const (
	DefaultMaxMessages = 10
	DefaultOverlap     = time.Second
	checkpointPrefix   = "last_checked:"
)

// PollerConfig wires a Poller.
type PollerConfig struct {
	Orchestrator *Orchestrator
	Mail         Mail
	Checkpoints  Checkpoints
	// Schedule decides when the next cycle starts.
	Schedule cron.Schedule

	Query       string
	MaxMessages int
	// Account namespaces the checkpoint key.
	Account string
	// Lookback applies when no checkpoint exists yet.
	Lookback time.Duration
	// Overlap is subtracted from the checkpoint so boundary messages are
	// fetched again; the seen store filters them.
	Overlap time.Duration

	// OnCycle is called after every cycle.
	OnCycle func(CycleReport, error)

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

// CycleReport summarizes one poll cycle.
type CycleReport struct {
	Started time.Time
	Since   time.Time
	Query   string
	Fetched int
	Results []Result
}

// Counts tallies results by outcome.
func (r CycleReport) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}

// Poller fetches candidate messages and feeds them to an Orchestrator, one
// at a time, on a fixed schedule.
type Poller struct {
	cfg    PollerConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewPoller validates cfg and fills in defaults.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.Orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	if cfg.Mail == nil {
		return nil, errors.New("mail collaborator is required")
	}
	if cfg.Checkpoints == nil {
		return nil, errors.New("checkpoint store is required")
	}
	if cfg.Schedule == nil {
		cfg.Schedule = cron.Every(time.Minute)
	}
	if strings.TrimSpace(cfg.Query) == "" {
		cfg.Query = DefaultQuery
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = DefaultMaxMessages
	}
	if cfg.Account == "" {
		cfg.Account = "default"
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.Overlap <= 0 {
		cfg.Overlap = DefaultOverlap
	}

	p := &Poller{cfg: cfg, logger: cfg.Logger, now: cfg.Now}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = logging.WithAccount(logging.WithOperation(p.logger, "poll"), cfg.Account)
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Run polls until ctx is cancelled. Cancellation takes effect between
// cycles; a cycle in progress runs to completion.
func (p *Poller) Run(ctx context.Context) error {
	for {
		report, err := p.RunOnce(context.WithoutCancel(ctx))
		if err != nil {
			p.logger.Warn("poll cycle failed", logging.Err(err))
		} else {
			p.logger.Info("poll cycle completed",
				slog.Int("fetched", report.Fetched),
				slog.Int("processed", len(report.Results)))
		}

		now := p.now()
		wait := p.cfg.Schedule.Next(now).Sub(now)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce performs a single fetch-process-checkpoint cycle.
func (p *Poller) RunOnce(ctx context.Context) (report CycleReport, err error) {
	ctx, span := instrumentation.StartSpan(ctx, "scheduler.poll",
		attribute.String(instrumentation.SpanAttrAccount, p.cfg.Account))
	defer span.End()

	started := p.now()
	report.Started = started
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		p.cfg.Metrics.RecordPollCycleWithAccount(ctx, status, p.cfg.Account, len(report.Results), p.now().Sub(started))
		if p.cfg.OnCycle != nil {
			p.cfg.OnCycle(report, err)
		}
	}()

	key := checkpointPrefix + p.cfg.Account
	since := started.Add(-p.cfg.Lookback)
	last, ok, cerr := p.cfg.Checkpoints.LastChecked(ctx, key)
	switch {
	case cerr != nil:
		p.logger.Warn("failed to read checkpoint, using lookback", logging.Err(cerr))
	case ok:
		since = last
	}
	report.Since = since
	report.Query = fmt.Sprintf("%s after:%d", p.cfg.Query, since.Unix())

	summaries, err := p.cfg.Mail.FetchCandidates(ctx, report.Query, p.cfg.MaxMessages)
	if err != nil {
		return report, fmt.Errorf("failed to fetch candidate messages: %w", err)
	}
	report.Fetched = len(summaries)

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].InternalDate.After(summaries[j].InternalDate)
	})

	handled := make(map[string]struct{}, len(summaries))
	for _, s := range summaries {
		if s.ID == "" {
			continue
		}
		if _, dup := handled[s.ID]; dup {
			continue
		}
		handled[s.ID] = struct{}{}
		report.Results = append(report.Results, p.cfg.Orchestrator.Process(ctx, s.ID))
	}

	if err := p.cfg.Checkpoints.SetLastChecked(ctx, key, started.Add(-p.cfg.Overlap)); err != nil {
		return report, fmt.Errorf("failed to store checkpoint: %w", err)
	}
	return report, nil
}
