// Package server serves the loan application form over HTTP.
//
// The server exposes four surfaces on one gin engine:
//
//   - GET /         renders the form page
//   - GET /ws       runs one form session per WebSocket connection
//   - POST /api/predict  validates and submits a JSON object of field values
//   - GET /metrics  Prometheus metrics; GET /health is a liveness probe
//
// # WebSocket Sessions
//
// The page sends "change", "blur" and "submit" messages as the applicant
// types. Each message is applied to the connection's form session and every
// resulting state, including the one produced when the prediction settles,
// is pushed back as a "state" message carrying a form snapshot:
//
//	{"type":"change","field":"age","value":"30"}
//	{"type":"state","sessionId":"...","state":{"values":{...},"errors":{},"loading":false,...}}
//
// # JSON API
//
// POST /api/predict answers with the final snapshot. The status code tells
// callers what to do next:
//
//   - 200: the prediction succeeded, see "result" and "display"
//   - 422: the applicant must fix the fields listed in "errors"
//   - 502: the prediction service answered with a failure
//   - 503: the prediction service could not be reached
//
// # Graceful Shutdown
//
// Start blocks until its context is canceled, then:
//  1. Withdraws the mDNS advertisement
//  2. Stops accepting new connections
//  3. Closes open WebSocket sessions
//  4. Waits for in-flight predictions to settle
package server
