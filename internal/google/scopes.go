package google

import (
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// DefaultOAuthScopes cover reading invitations and writing calendar events.
var DefaultOAuthScopes = []string{
	gmail.GmailReadonlyScope,
	calendar.CalendarScope,
}
