// Package invite extracts a candidate meeting window from an invitation email.
//
// A Parser turns a subject, a body, header fields and any attached
// text/calendar parts into an Invite. Strategies are tried in order and the
// first one that produces a start time wins:
//
//  1. a structured subject line ("Tue Oct 28, 2025 5:45pm - 7:45pm")
//  2. the first VEVENT of an attached calendar file
//  3. a free-text date/time phrase handed to a PhraseResolver
//  4. a date without a clock time ("@ Thu Oct 16, 2025"), at work start
//  5. schema.org microdata (itemprop="startDate" datetime="YYYYMMDD"), at work start
//
// Parsing never fails. A message without a recognizable time yields an Invite
// whose HardStart is nil.
package invite
