package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/invitebooker/internal/scheduler"
	"github.com/teemow/invitebooker/internal/slots"
)

const base = "/calendar/v3"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(srv.URL+base+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	c := NewClient(svc, "work", nil, nil)
	c.caller.NewBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListCalendars(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, base+"/users/me/calendarList", r.URL.Path)
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(t, w, &calendar.CalendarList{
				Items: []*calendar.CalendarListEntry{
					{Id: "team", Summary: "Team", AccessRole: "writer"},
					{Id: "holidays", AccessRole: "reader"},
				},
				NextPageToken: "p2",
			})
			return
		}
		writeJSON(t, w, &calendar.CalendarList{
			Items: []*calendar.CalendarListEntry{
				{Id: "me@example.com", Primary: true, AccessRole: "owner", TimeZone: "Asia/Kolkata"},
				{Id: "old", AccessRole: "owner", Deleted: true},
			},
		})
	}))

	got, err := c.ListCalendars(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []scheduler.CalendarInfo{
		{ID: "team", Summary: "Team"},
		{ID: "me@example.com", Primary: true, TimeZone: "Asia/Kolkata"},
	}, got)
}

func TestListCalendars_NoneWritable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, &calendar.CalendarList{Items: []*calendar.CalendarListEntry{{Id: "x", AccessRole: "freeBusyReader"}}})
	}))
	_, err := c.ListCalendars(context.Background())
	assert.ErrorIs(t, err, ErrNoCalendars)
}

func TestListCalendars_APIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	_, err := c.ListCalendars(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "list calendars", apiErr.Op)
	var gErr *googleapi.Error
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, http.StatusForbidden, gErr.Code)
}

func TestListEvents(t *testing.T) {
	timeMin := time.Date(2025, 10, 19, 8, 0, 0, 0, time.UTC)
	timeMax := time.Date(2025, 11, 19, 8, 0, 0, 0, time.UTC)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, base+"/calendars/primary/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "2025-10-19T08:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "2025-11-19T08:00:00Z", q.Get("timeMax"))
		writeJSON(t, w, &calendar.Events{Items: []*calendar.Event{
			{
				Id: "a", Summary: "Standup",
				Start: &calendar.EventDateTime{DateTime: "2025-10-21T10:00:00+05:30"},
				End:   &calendar.EventDateTime{DateTime: "2025-10-21T10:15:00+05:30"},
			},
			{Id: "b", Status: "cancelled"},
			{
				Id:    "c",
				Start: &calendar.EventDateTime{Date: "2025-10-22"},
				End:   &calendar.EventDateTime{Date: "2025-10-23"},
			},
		}})
	}))

	got, err := c.ListEvents(context.Background(), "primary", timeMin, timeMax)
	require.NoError(t, err)
	assert.Equal(t, []slots.Event{
		{
			ID: "a", Summary: "Standup",
			Start: slots.EventTime{DateTime: "2025-10-21T10:00:00+05:30"},
			End:   slots.EventTime{DateTime: "2025-10-21T10:15:00+05:30"},
		},
		{ID: "c", Start: slots.EventTime{Date: "2025-10-22"}, End: slots.EventTime{Date: "2025-10-23"}},
	}, got)
}

func TestCreateEvent(t *testing.T) {
	var attempts atomic.Int32
	var requestIDs []string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, base+"/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))
		assert.Equal(t, "1", r.URL.Query().Get("conferenceDataVersion"))

		var ev calendar.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		requestIDs = append(requestIDs, ev.ConferenceData.CreateRequest.RequestId)

		if attempts.Add(1) == 1 {
			http.Error(w, `{"error":{"code":500,"message":"oops"}}`, http.StatusInternalServerError)
			return
		}
		assert.Equal(t, "Sync", ev.Summary)
		assert.Equal(t, "2025-10-21T10:00:00+05:30", ev.Start.DateTime)
		assert.Equal(t, "Asia/Kolkata", ev.Start.TimeZone)
		assert.Equal(t, "2025-10-21T10:30:00+05:30", ev.End.DateTime)
		require.Len(t, ev.Attendees, 2)
		assert.Equal(t, "hangoutsMeet", ev.ConferenceData.CreateRequest.ConferenceSolutionKey.Type)

		ev.Id = "evt1"
		ev.HtmlLink = "https://calendar.example/evt1"
		writeJSON(t, w, &ev)
	}))

	start := time.Date(2025, 10, 21, 4, 30, 0, 0, time.UTC)
	got, err := c.CreateEvent(context.Background(), "primary", scheduler.NewEvent{
		Title:       "Sync",
		Description: "Scheduled from email (message_id=m1).",
		Start:       start,
		End:         start.Add(30 * time.Minute),
		TimeZone:    "Asia/Kolkata",
		Attendees:   []string{"a@example.com", "b@example.com"},
		Conference:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, scheduler.CreatedEvent{ID: "evt1", HTMLLink: "https://calendar.example/evt1"}, got)
	require.Len(t, requestIDs, 2)
	assert.Equal(t, requestIDs[0], requestIDs[1], "retry reuses the conference request id")
	assert.NotEmpty(t, requestIDs[0])
}

func TestCreateEvent_WithoutConference(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("conferenceDataVersion"))
		http.Error(w, `{"error":{"code":400,"message":"bad"}}`, http.StatusBadRequest)
	}))
	_, err := c.CreateEvent(context.Background(), "primary", scheduler.NewEvent{Title: "x"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "create event", apiErr.Op)
	assert.Contains(t, err.Error(), "calendar create event:")
}

func TestCreateEvent_RetryAfterCommittedInsert(t *testing.T) {
	committed := map[string]*calendar.Event{}
	var insertIDs []string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var ev calendar.Event
			require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
			insertIDs = append(insertIDs, ev.Id)
			if _, ok := committed[ev.Id]; ok {
				http.Error(w, `{"error":{"code":409,"message":"The requested identifier already exists."}}`, http.StatusConflict)
				return
			}
			ev.HtmlLink = "https://calendar.example/" + ev.Id
			committed[ev.Id] = &ev
			// The insert lands but the response is lost.
			http.Error(w, `{"error":{"code":503,"message":"unavailable"}}`, http.StatusServiceUnavailable)
		case http.MethodGet:
			id := strings.TrimPrefix(r.URL.Path, base+"/calendars/primary/events/")
			ev, ok := committed[id]
			if !ok {
				http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
				return
			}
			writeJSON(t, w, ev)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))

	start := time.Date(2025, 10, 21, 4, 30, 0, 0, time.UTC)
	got, err := c.CreateEvent(context.Background(), "primary", scheduler.NewEvent{
		SourceID: "m1",
		Title:    "Sync",
		Start:    start,
		End:      start.Add(30 * time.Minute),
	})
	require.NoError(t, err)

	assert.Len(t, committed, 1)
	require.Len(t, insertIDs, 2)
	assert.Equal(t, insertIDs[0], insertIDs[1])
	assert.Equal(t, eventID("m1"), got.ID)
	assert.Equal(t, "https://calendar.example/"+got.ID, got.HTMLLink)
}

func TestCreateEvent_ConflictWithCancelledEvent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.Error(w, `{"error":{"code":409,"message":"exists"}}`, http.StatusConflict)
			return
		}
		writeJSON(t, w, &calendar.Event{Id: eventID("m1"), Status: "cancelled"})
	}))

	_, err := c.CreateEvent(context.Background(), "primary", scheduler.NewEvent{SourceID: "m1", Title: "Sync"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestEventID(t *testing.T) {
	valid := regexp.MustCompile(`^[a-v0-9]{5,1000}[a-v0-9]{0,24}$`)

	tests := []struct {
		name   string
		source string
	}{
		{"gmail id", "18c2f0a9b1d2e3f4"},
		{"mixed case", "AbC-XyZ_123"},
		{"single char", "m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := eventID(tt.source)
			assert.Regexp(t, valid, id)
			assert.Equal(t, id, eventID(tt.source))
		})
	}
	assert.NotEqual(t, eventID("a"), eventID("b"))
	assert.Empty(t, eventID(""))
}

func TestToAPIEvent_DefaultsToUTC(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.FixedZone("X", 3600))
	ev := toAPIEvent(scheduler.NewEvent{Start: start, End: start.Add(time.Hour)})
	assert.Equal(t, "UTC", ev.Start.TimeZone)
	assert.Equal(t, "2025-01-06T09:00:00Z", ev.Start.DateTime)
	assert.Nil(t, ev.ConferenceData)
	assert.Empty(t, ev.Attendees)
	assert.Empty(t, ev.Id)
}

func TestConvertNil(t *testing.T) {
	assert.Equal(t, scheduler.CalendarInfo{}, toCalendarInfo(nil))
	assert.Equal(t, slots.Event{}, toEvent(nil))
}
