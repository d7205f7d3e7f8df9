// Package gmail reads invitation emails through the Gmail API.
//
// Client implements the scheduler's Mail collaborator. FetchCandidates runs
// a search query and returns message ids with their internal dates.
// FetchMessage returns the subject, a header map, the plain text body (HTML
// when no plain part exists) and the bytes of any text/calendar attachment.
//
// Every API call goes through google.Call, so transient failures are retried
// and each call gets a span and operation metrics.
package gmail
