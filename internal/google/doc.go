// Package google supplies OAuth2 tokens for the Gmail and Calendar clients.
//
// Tokens live one file per account under the user cache directory
// (invitebooker/google-<account>.token). The OAuth client ID and secret come
// from GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
//
// TokenProvider lets callers swap the file store for another source.
package google
