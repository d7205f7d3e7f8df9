// Package calendar reads busy time from and books events on Google Calendar.
//
// Client implements the scheduler's Calendar collaborator. Listed events are
// reduced to slots.Event with the start and end kept in their original
// shape (dateTime or all-day date). Created events carry the attendees, an
// optional Google Meet conference request and notify every guest.
//
// Example usage:
//
//	client, err := calendar.NewClientForAccount(ctx, google.NewFileTokenProvider(), "default", nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	events, err := client.ListEvents(ctx, "primary", time.Now(), time.Now().AddDate(0, 0, 7))
package calendar
