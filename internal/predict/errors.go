package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/solutyics/loanform/internal/form"
)

// NetworkErrorMessage is shown when a request was sent but no response came back.
const NetworkErrorMessage = "Network error, please try again later."

// Kind is the category of a submission failure
type Kind int

const (
	// KindClient indicates the request could not be built or sent
	KindClient Kind = iota
	// KindNetwork indicates the request was sent but no response was received
	KindNetwork
	// KindServer indicates the service answered with a non-2xx status
	KindServer
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindClient:
		return "Client Error"
	case KindNetwork:
		return "Network Error"
	case KindServer:
		return "Server Error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Network failure reasons, used for logs and metric labels.
const (
	ReasonTimeout           = "timeout"
	ReasonDNS               = "dns"
	ReasonConnectionRefused = "connection_refused"
	ReasonGeneral           = "general"
)

// Error represents a failed prediction request
type Error struct {
	Kind       Kind        // Category of failure
	Message    string      // Human-readable message
	StatusCode int         // HTTP status code (server errors only)
	Fields     form.Errors // Structured error map returned by the service
	Reason     string      // Network failure reason (network errors only)
	Err        error       // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Description is the text shown to the user for this failure.
func (e *Error) Description() string {
	if e.Err != nil && e.Kind == KindClient {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// NewClientError creates an error for a request that never left the process
func NewClientError(message string, err error) *Error {
	return &Error{
		Kind:    KindClient,
		Message: message,
		Err:     err,
	}
}

// NewNetworkError creates an error for a request that got no response
func NewNetworkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: NetworkErrorMessage,
		Reason:  classifyNetworkError(err),
		Err:     err,
	}
}

// NewServerError creates an error from a non-2xx response. A body of the
// form {"error": {...}} is decoded into Fields; a string "error" becomes the
// message; anything else falls back to a message naming the status code.
func NewServerError(statusCode int, body []byte) *Error {
	e := &Error{
		Kind:       KindServer,
		Message:    fmt.Sprintf("Request failed with status code %d", statusCode),
		StatusCode: statusCode,
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return e
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(envelope.Error, &fields); err == nil && len(fields) > 0 {
		e.Fields = make(form.Errors, len(fields))
		for k, v := range fields {
			e.Fields[k] = stringify(v)
		}
		return e
	}

	var msg string
	if err := json.Unmarshal(envelope.Error, &msg); err == nil && msg != "" {
		e.Message = msg
	}
	return e
}

// stringify keeps string messages as they are and renders anything else as JSON.
func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func classifyNetworkError(err error) string {
	if err == nil {
		return ReasonGeneral
	}
	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ReasonTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonConnectionRefused
	}
	return ReasonGeneral
}

func kindOf(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsClientError checks if an error is a client error
func IsClientError(err error) bool {
	pe, ok := kindOf(err)
	return ok && pe.Kind == KindClient
}

// IsNetworkError checks if an error is a network error
func IsNetworkError(err error) bool {
	pe, ok := kindOf(err)
	return ok && pe.Kind == KindNetwork
}

// IsServerError checks if an error is a server error
func IsServerError(err error) bool {
	pe, ok := kindOf(err)
	return ok && pe.Kind == KindServer
}

// Settle converts the result of a Predict call into the outcome recorded by
// the form. Errors that are not an *Error are treated as client errors.
func Settle(result *form.Result, err error) form.Outcome {
	if err == nil {
		if result == nil {
			result = &form.Result{}
		}
		return form.Outcome{Result: result}
	}

	pe, ok := kindOf(err)
	if !ok {
		return form.Outcome{General: err.Error()}
	}

	switch pe.Kind {
	case KindServer:
		if len(pe.Fields) > 0 {
			return form.Outcome{Errors: pe.Fields.Clone()}
		}
		return form.Outcome{General: pe.Message}
	case KindNetwork:
		return form.Outcome{General: NetworkErrorMessage}
	default:
		return form.Outcome{General: pe.Description()}
	}
}

// ShortMessage returns a one-line message suitable for a status bar
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}
	pe, ok := kindOf(err)
	if !ok {
		return err.Error()
	}
	switch pe.Kind {
	case KindNetwork:
		switch pe.Reason {
		case ReasonTimeout:
			return "Prediction service timed out"
		case ReasonDNS:
			return "Prediction service host not found"
		case ReasonConnectionRefused:
			return "Prediction service refused connection"
		}
		return "Prediction service unreachable"
	case KindServer:
		return fmt.Sprintf("Prediction service returned %d", pe.StatusCode)
	default:
		return pe.Description()
	}
}
