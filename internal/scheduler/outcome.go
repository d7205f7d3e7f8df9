package scheduler

import (
	"github.com/teemow/invitebooker/internal/invite"
	"github.com/teemow/invitebooker/internal/slots"
)

// Outcome is the terminal state of processing one message.
type Outcome string

const (
	OutcomeSkippedDuplicate  Outcome = "skipped_duplicate"
	OutcomeSkippedNoTime     Outcome = "skipped_no_time"
	OutcomeSkippedNoCalendar Outcome = "skipped_no_calendar"
	OutcomeSkippedNoSlot     Outcome = "skipped_no_slot"
	OutcomeBookedAtProposed  Outcome = "booked_at_proposed"
	OutcomeBookedAtAlternate Outcome = "booked_at_alternate"
	OutcomeBookingFailed     Outcome = "booking_failed"
	OutcomeFetchFailed       Outcome = "fetch_failed"
	// OutcomeFailed covers unexpected failures such as a recovered panic.
	OutcomeFailed Outcome = "failed"
)

// Booked reports whether an event was created.
func (o Outcome) Booked() bool {
	return o == OutcomeBookedAtProposed || o == OutcomeBookedAtAlternate
}

// Skipped reports whether the message was deliberately left alone.
func (o Outcome) Skipped() bool {
	switch o {
	case OutcomeSkippedDuplicate, OutcomeSkippedNoTime, OutcomeSkippedNoCalendar, OutcomeSkippedNoSlot:
		return true
	}
	return false
}

// Result describes what happened to one message.
type Result struct {
	MessageID string         `json:"message_id"`
	Outcome   Outcome        `json:"outcome"`
	Invite    *invite.Invite `json:"invite,omitempty"`
	// Requested is the window stated in the email.
	Requested *slots.Interval `json:"requested,omitempty"`
	// Conflict is the first busy interval that overlapped Requested.
	Conflict *slots.Interval `json:"conflict,omitempty"`
	// Alternatives are the free slots proposed after a conflict.
	Alternatives []slots.Interval `json:"alternatives,omitempty"`
	// SlotCandidates counts the candidates examined by the slot search.
	SlotCandidates int             `json:"slot_candidates"`
	Booked         *slots.Interval `json:"booked,omitempty"`
	CalendarID     string          `json:"calendar_id,omitempty"`
	EventID        string          `json:"event_id,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	// Error mirrors Err for serialized results.
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}
