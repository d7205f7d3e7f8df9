// Package scheduler books meetings requested by invitation emails.
//
// An Orchestrator handles one message at a time:
//
//	NEW -> PARSED -> skipped_no_time
//	              -> booked_at_proposed
//	              -> conflict -> slots proposed -> booked_at_alternate
//	                                            -> skipped_no_slot
//
// Collaborators (Mail, Calendar, Notifier, SeenStore) are interfaces so the
// Google adapters, the storage backends and test fakes plug in the same way.
//
// A Poller drives the Orchestrator from a single goroutine: fetch candidate
// messages, process them in order, record a checkpoint, then wait for the
// next tick of a cron schedule.
package scheduler
