// Package predict submits loan applications to the remote prediction service.
//
// The service accepts a JSON object whose keys are fixed (see form.Payload)
// and answers with an opaque body that is shown to the applicant as-is.
//
// # Usage Example
//
//	client := predict.NewClient(predict.DefaultEndpoint, 30*time.Second)
//
//	result, err := client.Predict(ctx, payload)
//	outcome := predict.Settle(result, err)
//	state, _ = form.Reduce(state, form.Settled{Outcome: outcome})
//
// # Error Handling
//
// Every failure is an *Error carrying a Kind:
//   - KindServer: the service answered with a non-2xx status. A body of the
//     form {"error": {...}} is kept as a field error map and shown verbatim.
//   - KindNetwork: the request was sent but no response arrived. Shown as
//     "Network error, please try again later."
//   - KindClient: the request could not be built or was canceled.
//
// Settle maps a (result, error) pair onto the form.Outcome recorded by the
// form state machine.
//
// # Caching
//
// CachingPredictor wraps any Predictor and serves repeated payloads from
// Redis. Keys are the SHA-256 of the payload JSON. Only successful results
// are cached and cache failures never fail a prediction.
//
// # Tracing
//
// Client starts an OpenTelemetry client span per request using the global
// tracer provider and sends an X-Request-ID header that also appears in the
// logs.
package predict
