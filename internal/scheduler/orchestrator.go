package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/invite"
	"github.com/teemow/invitebooker/internal/logging"
	"github.com/teemow/invitebooker/internal/slots"
)

// Default scheduling policy.
const (
	DefaultBuffer              = 10 * time.Minute
	DefaultRescheduleDaysAhead = 7
	DefaultRescheduleLimit     = 3
	DefaultLookback            = 24 * time.Hour
	DefaultLookahead           = 30 * 24 * time.Hour
)

// Config wires an Orchestrator.
type Config struct {
	Parser   *invite.Parser
	Mail     Mail
	Calendar Calendar
	Seen     SeenStore
	// Notifier is optional.
	Notifier Notifier

	// Location is the zone busy intervals and bookings are expressed in.
	Location  *time.Location
	WorkStart slots.Clock
	WorkEnd   slots.Clock
	Buffer    time.Duration
	Step      time.Duration
	// RescheduleDaysAhead and RescheduleLimit bound the alternate-slot search.
	RescheduleDaysAhead int
	RescheduleLimit     int
	// Lookback and Lookahead bound the busy-time window around now.
	Lookback  time.Duration
	Lookahead time.Duration
	// Conference requests a video conference on created events.
	Conference bool

	Metrics *instrumentation.Metrics
	// Audit receives one record per calendar write. Optional.
	Audit  *instrumentation.AuditLogger
	Logger *slog.Logger
	Now    func() time.Time
}

// Orchestrator runs the per-message scheduling state machine.
type Orchestrator struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New validates cfg and fills in defaults.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Parser == nil {
		return nil, errors.New("invite parser is required")
	}
	if cfg.Mail == nil {
		return nil, errors.New("mail collaborator is required")
	}
	if cfg.Calendar == nil {
		return nil, errors.New("calendar collaborator is required")
	}
	if cfg.Seen == nil {
		return nil, errors.New("seen store is required")
	}
	if !(cfg.WorkStart.Minutes() < cfg.WorkEnd.Minutes()) {
		return nil, fmt.Errorf("work start %s must be before work end %s", cfg.WorkStart, cfg.WorkEnd)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Buffer < 0 {
		cfg.Buffer = DefaultBuffer
	}
	if cfg.Step <= 0 {
		cfg.Step = slots.DefaultStep
	}
	if cfg.RescheduleDaysAhead <= 0 {
		cfg.RescheduleDaysAhead = DefaultRescheduleDaysAhead
	}
	if cfg.RescheduleLimit <= 0 {
		cfg.RescheduleLimit = DefaultRescheduleLimit
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = DefaultLookahead
	}

	o := &Orchestrator{cfg: cfg, logger: cfg.Logger, now: cfg.Now}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// Process runs one message through the state machine. It never returns an
// error: failures are reported in Result.Err so a batch can continue.
func (o *Orchestrator) Process(ctx context.Context, messageID string) (res Result) {
	ctx, span := instrumentation.StartSpan(ctx, "scheduler.process",
		attribute.String(instrumentation.SpanAttrResourceType, "message"),
		attribute.String(instrumentation.SpanAttrResourceID, messageID))
	defer span.End()

	logger := logging.WithMessage(o.logger, messageID)
	res = Result{MessageID: messageID}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("panic while processing message: %v", r)
		}
		if res.Err != nil {
			res.Error = res.Err.Error()
			instrumentation.SetSpanError(span, res.Err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.SetAttributes(attribute.String(instrumentation.SpanAttrOutcome, string(res.Outcome)))
		o.cfg.Metrics.RecordInviteOutcome(ctx, string(res.Outcome))
		o.log(logger, res)
	}()

	seen, err := o.cfg.Seen.HasSeen(ctx, messageID)
	if err != nil {
		res.Outcome = OutcomeFetchFailed
		res.Err = fmt.Errorf("failed to check seen store: %w", err)
		return res
	}
	if seen {
		res.Outcome = OutcomeSkippedDuplicate
		return res
	}
	// Marked up front so a message that fails midway is not retried forever.
	if err := o.cfg.Seen.MarkSeen(ctx, messageID); err != nil {
		logger.Warn("failed to mark message as seen", logging.Err(err))
	}

	msg, err := o.cfg.Mail.FetchMessage(ctx, messageID)
	if err != nil {
		res.Outcome = OutcomeFetchFailed
		res.Err = fmt.Errorf("failed to fetch message: %w", err)
		return res
	}
	if msg.ID == "" {
		msg.ID = messageID
	}

	o.schedule(ctx, logger, msg, &res)
	return res
}

func (o *Orchestrator) schedule(ctx context.Context, logger *slog.Logger, msg Message, res *Result) {
	loc := o.cfg.Location

	inv := o.cfg.Parser.Parse(msg.invite())
	res.Invite = &inv
	requested, ok := inv.Window()
	if !ok {
		res.Outcome = OutcomeSkippedNoTime
		return
	}
	requested = requested.In(loc)
	res.Requested = &requested

	calendarID, err := o.pickCalendar(ctx)
	if err != nil || calendarID == "" {
		res.Outcome = OutcomeSkippedNoCalendar
		res.Err = err
		return
	}
	res.CalendarID = calendarID

	now := o.now().In(loc)
	events, err := o.cfg.Calendar.ListEvents(ctx, calendarID, now.Add(-o.cfg.Lookback), now.Add(o.cfg.Lookahead))
	if err != nil {
		// A failed fetch yields no busy time rather than aborting the message.
		logger.Warn("failed to list calendar events, assuming no busy time", logging.Err(err))
		events = nil
	}
	busy := slots.DeriveBusy(events, loc)

	conflict, clash := slots.FirstConflict(requested, busy)
	if !clash {
		desc := fmt.Sprintf("Scheduled from email (message_id=%s).", msg.ID)
		o.book(ctx, inv, calendarID, requested, desc, OutcomeBookedAtProposed, res)
		return
	}
	res.Conflict = &conflict

	search := slots.Search(busy, now, slots.Options{
		WorkStart: o.cfg.WorkStart,
		WorkEnd:   o.cfg.WorkEnd,
		Duration:  requested.Duration(),
		Buffer:    o.cfg.Buffer,
		Step:      o.cfg.Step,
		DaysAhead: o.cfg.RescheduleDaysAhead,
		Limit:     o.cfg.RescheduleLimit,
	})
	res.SlotCandidates = search.Examined
	res.Alternatives = search.Slots
	o.cfg.Metrics.RecordSlotSearch(ctx, search.Examined, len(search.Slots))
	if len(search.Slots) == 0 {
		res.Outcome = OutcomeSkippedNoSlot
		return
	}

	desc := fmt.Sprintf("Rescheduled from email (message_id=%s).", msg.ID)
	o.book(ctx, inv, calendarID, search.Slots[0], desc, OutcomeBookedAtAlternate, res)
}

// pickCalendar returns the primary calendar, or the first one listed.
func (o *Orchestrator) pickCalendar(ctx context.Context) (string, error) {
	cals, err := o.cfg.Calendar.ListCalendars(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", nil
	}
	for _, c := range cals {
		if c.Primary {
			return c.ID, nil
		}
	}
	return cals[0].ID, nil
}

func (o *Orchestrator) book(ctx context.Context, inv invite.Invite, calendarID string, slot slots.Interval, desc string, outcome Outcome, res *Result) {
	created, err := o.cfg.Calendar.CreateEvent(ctx, calendarID, NewEvent{
		SourceID:    res.MessageID,
		Title:       inv.Title,
		Description: desc,
		Start:       slot.Start,
		End:         slot.End,
		TimeZone:    o.cfg.Location.String(),
		Attendees:   inv.Attendees,
		Conference:  o.cfg.Conference,
	})

	record := &instrumentation.BookingRecord{
		MessageID:   res.MessageID,
		CalendarID:  calendarID,
		EventID:     created.ID,
		Title:       inv.Title,
		Start:       slot.Start,
		End:         slot.End,
		Attendees:   inv.Attendees,
		Rescheduled: outcome == OutcomeBookedAtAlternate,
	}
	if err != nil {
		record.Error = err.Error()
	}
	o.cfg.Audit.LogBooking(ctx, record.WithSpanContext(ctx))

	if err != nil {
		res.Outcome = OutcomeBookingFailed
		res.Err = fmt.Errorf("failed to create event: %w", err)
		return
	}

	res.Outcome = outcome
	res.Booked = &slot
	res.EventID = created.ID
	res.Summary = Summary(inv.Title, slot, o.cfg.Location)

	if o.cfg.Notifier != nil {
		if err := o.cfg.Notifier.Notify(ctx, res.Summary); err != nil {
			o.logger.Warn("failed to send booking notification",
				logging.MessageID(res.MessageID), logging.Err(err))
		}
	}
}

// Summary renders a booking for people.
func Summary(title string, slot slots.Interval, loc *time.Location) string {
	return fmt.Sprintf("%s: %s", title, slots.HumanSlot(slot.In(loc), loc.String()))
}

func (o *Orchestrator) log(logger *slog.Logger, res Result) {
	attrs := []any{logging.Outcome(string(res.Outcome))}
	if res.Invite != nil {
		attrs = append(attrs,
			slog.String("strategy", string(res.Invite.Strategy)),
			slog.Int("attendees", len(res.Invite.Attendees)))
	}
	if res.Requested != nil {
		attrs = append(attrs, slog.String("requested", res.Requested.String()))
	}
	if res.Booked != nil {
		attrs = append(attrs, slog.String("booked", res.Booked.String()))
	}
	if res.SlotCandidates > 0 {
		attrs = append(attrs, slog.Int("slot_candidates", res.SlotCandidates))
	}
	attrs = append(attrs, logging.Err(res.Err))

	switch {
	case res.Outcome == OutcomeBookingFailed || res.Outcome == OutcomeFetchFailed || res.Outcome == OutcomeFailed:
		logger.Warn("invite not booked", attrs...)
	case res.Outcome.Booked():
		logger.Info("invite booked", attrs...)
	case res.Outcome == OutcomeSkippedDuplicate:
		logger.Debug("invite already processed", attrs...)
	case res.Err != nil:
		logger.Warn("invite skipped", attrs...)
	default:
		logger.Info("invite skipped", attrs...)
	}
}
