package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/invitebooker/internal/google"
	"github.com/teemow/invitebooker/internal/instrumentation"
	"github.com/teemow/invitebooker/internal/logging"
	"github.com/teemow/invitebooker/internal/scheduler"
	"github.com/teemow/invitebooker/internal/slots"
)

// Client wraps the Google Calendar service for one account.
type Client struct {
	svc     *calendar.Service
	account string
	caller  google.Caller
	logger  *slog.Logger
}

var _ scheduler.Calendar = (*Client)(nil)

// NewClient wraps an existing service.
func NewClient(svc *calendar.Service, account string, metrics *instrumentation.Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithAccount(logging.WithService(logger, instrumentation.ServiceCalendar), account)
	return &Client{
		svc:     svc,
		account: account,
		caller:  google.Caller{Service: instrumentation.ServiceCalendar, Metrics: metrics},
		logger:  logger,
	}
}

// NewClientForAccount builds a client authenticated with provider's token
// for account.
func NewClientForAccount(ctx context.Context, provider google.TokenProvider, account string, metrics *instrumentation.Metrics, logger *slog.Logger) (*Client, error) {
	httpClient, err := google.HTTPClientForAccount(ctx, provider, account)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return NewClient(svc, account, metrics, logger), nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// ListCalendars returns the calendars the account can write to.
func (c *Client) ListCalendars(ctx context.Context) ([]scheduler.CalendarInfo, error) {
	var out []scheduler.CalendarInfo
	pageToken := ""
	for {
		call := c.svc.CalendarList.List().MinAccessRole("writer")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := google.Call(ctx, c.caller, instrumentation.OperationList, func(ctx context.Context) (*calendar.CalendarList, error) {
			return call.Context(ctx).Do()
		})
		if err != nil {
			return nil, &APIError{Op: "list calendars", Err: err}
		}
		for _, entry := range list.Items {
			if entry.Deleted || !writableRoles[entry.AccessRole] {
				continue
			}
			out = append(out, toCalendarInfo(entry))
		}
		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}
	if len(out) == 0 {
		return nil, ErrNoCalendars
	}
	return out, nil
}

// ListEvents returns the events overlapping [timeMin, timeMax], with
// recurring events expanded into instances.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]slots.Event, error) {
	var out []slots.Event
	pageToken := ""
	for {
		call := c.svc.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		events, err := google.Call(ctx, c.caller, instrumentation.OperationList, func(ctx context.Context) (*calendar.Events, error) {
			return call.Context(ctx).Do()
		})
		if err != nil {
			return nil, &APIError{Op: "list events", Err: err}
		}
		for _, ev := range events.Items {
			if ev.Status == "cancelled" {
				continue
			}
			out = append(out, toEvent(ev))
		}
		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}
	c.logger.DebugContext(ctx, "listed calendar events", logging.Calendar(calendarID), slog.Int("count", len(out)))
	return out, nil
}

// CreateEvent inserts an event and emails every attendee. The event id
// derives from SourceID, so an insert that already landed, whether from an
// earlier retry or an earlier run, answers 409 and is returned as booked.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, in scheduler.NewEvent) (scheduler.CreatedEvent, error) {
	ev := toAPIEvent(in)
	call := c.svc.Events.Insert(calendarID, ev).SendUpdates("all")
	if ev.ConferenceData != nil {
		call = call.ConferenceDataVersion(1)
	}

	created, err := google.Call(ctx, c.caller, instrumentation.OperationCreate, func(ctx context.Context) (*calendar.Event, error) {
		return call.Context(ctx).Do()
	})
	if err != nil && ev.Id != "" && google.StatusCode(err) == http.StatusConflict {
		return c.existingEvent(ctx, calendarID, ev.Id)
	}
	if err != nil {
		return scheduler.CreatedEvent{}, &APIError{Op: "create event", Err: err}
	}
	c.logger.InfoContext(ctx, "created calendar event", logging.Calendar(calendarID), slog.String("event_id", created.Id))
	return scheduler.CreatedEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

// existingEvent loads an event whose insert collided with an earlier one.
// A cancelled event keeps its id, so it cannot be booked again.
func (c *Client) existingEvent(ctx context.Context, calendarID, id string) (scheduler.CreatedEvent, error) {
	ev, err := google.Call(ctx, c.caller, instrumentation.OperationGet, func(ctx context.Context) (*calendar.Event, error) {
		return c.svc.Events.Get(calendarID, id).Context(ctx).Do()
	})
	if err != nil {
		return scheduler.CreatedEvent{}, &APIError{Op: "get event", Err: err}
	}
	if ev.Status == "cancelled" {
		return scheduler.CreatedEvent{}, &APIError{Op: "create event", Err: fmt.Errorf("event %s was cancelled", id)}
	}
	c.logger.InfoContext(ctx, "calendar event already booked", logging.Calendar(calendarID), slog.String("event_id", ev.Id))
	return scheduler.CreatedEvent{ID: ev.Id, HTMLLink: ev.HtmlLink}, nil
}
