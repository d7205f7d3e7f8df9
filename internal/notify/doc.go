// Package notify delivers booking summaries.
//
// Log writes the summary to a slog logger, Signal sends it through
// signal-cli and Multi fans out to several notifiers, reporting every
// failure. All of them count deliveries in the notifications metric.
package notify
