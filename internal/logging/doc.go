// Package logging holds the structured logging conventions for invitebooker.
//
// Every component logs through log/slog. This package fixes the attribute
// keys, builds the root handler from command-line flags, and keeps personal
// data out of log lines.
//
// Attach context once and reuse the logger:
//
//	logger := logging.WithMessage(logging.WithOperation(slog.Default(), "process"), id)
//	logger.Info("invite booked", logging.Outcome("booked_at_proposed"))
//
// Attendee addresses are never logged in clear text:
//
//	logger.Debug("attendee found", logging.UserHash(addr))
package logging
