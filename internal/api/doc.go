// Package api is the HTTP client for the bus-booking backend.
//
// # Overview
//
// The package owns everything that touches the wire: base URL handling,
// the Authorization header, body encoding, the response envelope, and the
// error taxonomy screens branch on. It holds no resource state; that lives
// in the state package.
//
// # Architecture
//
//   - client.go: Client, Call, and the single Do entry point
//   - payload.go: JSON and multipart body encoding
//   - envelope.go: list and single-item envelope decoding
//   - errors.go: NetworkError, ValidationError, ServerError
//   - endpoints.go: per-resource endpoint table
//   - resource.go: generic CRUD calls bound to an endpoint
//   - auth.go: login, logout, ping
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: busadmin/0.1
//   - Carry an X-Request-ID (UUID) that is also logged
//   - Attach the Authorization header per endpoint group
//
// # Authorization
//
// Endpoint groups map to a scheme through Options.SchemeFor. "bearer" sends
// "Bearer <token>"; "raw" sends the token as is. The backend expects
// different forms on different route prefixes and nothing here normalizes
// that.
//
// # Body Encoding
//
// A payload with any file attached is sent as multipart/form-data. An
// endpoint may also force multipart for its writes (MultipartWrite) or send
// list filters as a multipart POST (MultipartList). Everything else is JSON.
// Multipart flattens nested values as name[en] and seats[]; booleans become
// "1" and "0".
//
// # Envelope
//
//	list:   {"data": {"items": [...], "data": {"current_page", "last_page", "total"}}}
//	single: {"data": {"item": {...}}}
//
// The nesting is extracted with gjson paths and decoded into typed records.
//
// # Error Handling
//
//   - *NetworkError: no HTTP response (refused, timeout, cancelled)
//   - *ValidationError: non-2xx with an errors object; each field's value
//     is a string or an array of strings joined with a space
//   - *ServerError: any other non-2xx, with the server's message or the
//     status text
//
// FieldErrorsOf and Message give screens the two presentations: per-field
// text or one global notification.
//
// # Design Rationale
//
//   - No retries (every retry is an operator action)
//   - No caching (collections own state)
//   - Update is POST <path>/update with the id in the body because that is
//     what the backend accepts
package api
