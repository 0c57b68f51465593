// Package logging provides structured logging for loanform.
//
// This package wraps a zap logger with convenience functions for the events
// the form produces: submissions, prediction requests, web requests and web
// form sessions.
//
// # Silent by Default
//
// Logging is off unless a level is given, either through Options.Level (the
// --log-level flag and log.level config key) or the LOANFORM_LOG_LEVEL
// environment variable:
//
//	LOANFORM_LOG_LEVEL=debug loanform serve
//
// # Log Levels
//
//   - Debug: session events, cache hits
//   - Info: submissions, completed predictions, HTTP requests
//   - Warn: failed predictions, cache errors
//   - Error: server failures
//
// # Terminal Form
//
// The terminal form owns the screen, so it should log to a file:
//
//	logging.Initialize(logging.Options{Level: "debug", File: "loanform.log"})
//	defer logging.Sync()
//
// # Specialized Logging
//
//	logging.LogSubmission("web", sessionID, len(errs), sent)
//	logging.LogPrediction(requestID, endpoint, 200, elapsed, nil)
//	logging.LogHTTPRequest(remoteAddr, "POST", "/api/predict", 200, elapsed)
//	logging.LogSessionEvent(sessionID, "opened")
//
// All functions are safe for concurrent use.
package logging
