// Package auth provides cookie-based login sessions and CSRF tokens
// for the admin console.
//
// The Provider adapts a session.Store to HTTP middleware: it reads the
// session cookie, validates the stored record, and injects it into the
// request context. CSRF uses the double-submit-cookie pattern with an
// HMAC-signed token so mutating form posts can be verified without
// server-side token storage.
package auth
