// Package api provides the HTTP client for the inventory API.
//
// # Overview
//
// Client is the single request facade used by every resource collection. It
// resolves paths against a configured base URL (default
// http://localhost:5050/api), encodes request bodies as JSON and decodes
// responses into caller-provided values.
//
// # Interception
//
// Two hooks run around every request:
//
//   - Outbound: the bearer token from the injected Credentials is attached as
//     "Authorization: Bearer <token>", except for /auth/login and
//     /auth/register which are always sent unauthenticated.
//   - Inbound: a 401 or 403 from any non-/auth path, outside of the login
//     location, clears the credentials and calls the session-expired hook.
//     The caller still receives the error, with SessionInvalidated set.
//
// OPTIONS preflight requests are never treated as session invalidation.
//
// # Errors
//
// Every failure is an *Error:
//
//   - KindNetwork: no response reached the client (dial, timeout, cancellation)
//   - KindHTTP: status >= 400, Message holds the server detail when provided
//   - KindDecode: the response body was not valid JSON for the destination
//
// The client never retries.
package api
