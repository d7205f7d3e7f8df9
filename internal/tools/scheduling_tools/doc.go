// Package scheduling_tools exposes the scheduling core as MCP tools.
//
// Available tools:
//   - parse_invite: extract the title, time window, duration and attendees
//     from an email
//   - check_conflict: test a window against busy intervals
//   - suggest_slots: propose free weekday slots within work hours
//   - process_message: run the booking flow for one Gmail message. It is
//     registered only when the server has Google credentials and writes are
//     allowed.
//
// Busy time is passed as a JSON array whose items are either intervals
// ({"start": "...", "end": "..."}) or calendar events
// ({"start": {"dateTime": "..."}, "end": {"date": "..."}}).
package scheduling_tools
