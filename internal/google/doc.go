// Package google manages OAuth2 tokens for the Google Calendar event source.
//
// Tokens are stored per account under the user cache directory and requested
// with the read-only calendar scope. The TokenProvider interface lets callers
// substitute another token source.
package google
