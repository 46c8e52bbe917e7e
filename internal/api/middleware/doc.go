// Package middleware provides the HTTP middleware of the desktop API:
// CORS, per-client and global rate limiting, and session authentication.
//
// Session resolves the signed token in the X-Desk-Session header (or the
// desk_session cookie) to the caller's desktop; handlers fetch it with
// Desktop(c).
package middleware
