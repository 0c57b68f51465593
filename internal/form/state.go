package form

import (
	"bytes"
	"encoding/json"
)

// Phase is the submission phase derived from a State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEditing
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the prediction service's response, kept opaque.
type Result struct {
	StatusCode  int    `json:"statusCode"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body"`
}

// JSON returns the body as a JSON value. Bodies that are not valid JSON are
// returned as a JSON string.
func (r *Result) JSON() json.RawMessage {
	if r == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(r.Body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(r.Body))
	return quoted
}

// Display returns the body formatted for people: JSON is indented with two
// spaces, a JSON string is shown without quotes and anything else verbatim.
func (r *Result) Display() string {
	if r == nil {
		return ""
	}
	trimmed := bytes.TrimSpace(r.Body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return string(r.Body)
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(r.Body)
	}
	return buf.String()
}

// Outcome is how a submission ended. Exactly one of Result, Errors or General
// is meaningful: Result on success, Errors when the service rejected the
// request with a structured error map, General otherwise.
type Outcome struct {
	Result  *Result
	Errors  Errors
	General string
}

// State is an immutable snapshot of a form session. Reduce never modifies
// the State it is given.
type State struct {
	Values    Fields
	Errors    Errors
	Submitted bool
	Loading   bool
	// Settled is set once a submission has ended, successfully or not, and
	// cleared by the next edit.
	Settled bool
	Result  *Result
}

// NewState returns an empty form.
func NewState() State {
	return State{Errors: Errors{}}
}

// Phase derives the submission phase.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseSubmitting
	case s.Settled && s.Result != nil:
		return PhaseSucceeded
	case s.Settled:
		return PhaseFailed
	case s.Submitted || !s.Values.IsEmpty() || len(s.Errors) > 0:
		return PhaseEditing
	default:
		return PhaseIdle
	}
}

// CanSubmit reports whether a Submit event would be acted on.
func (s State) CanSubmit() bool {
	return !s.Loading
}

// Snapshot is the serialisable view of a State used by the web page, the
// HTTP API and the command line output.
type Snapshot struct {
	Values    Fields          `json:"values"`
	Errors    Errors          `json:"errors"`
	Submitted bool            `json:"submitted"`
	Loading   bool            `json:"loading"`
	Phase     string          `json:"phase"`
	Result    json.RawMessage `json:"result,omitempty"`
	Display   string          `json:"display,omitempty"`
}

// Snapshot returns the serialisable view of s.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Values:    s.Values,
		Errors:    s.Errors.Clone(),
		Submitted: s.Submitted,
		Loading:   s.Loading,
		Phase:     s.Phase().String(),
		Result:    s.Result.JSON(),
		Display:   s.Result.Display(),
	}
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Change records a new value typed into a field.
type Change struct {
	Field Field
	Value string
}

// Blur records that a field lost focus.
type Blur struct {
	Field Field
}

// Submit requests submission of the form.
type Submit struct{}

// Settled records the end of the request started by a Submit.
type Settled struct {
	Outcome Outcome
}

func (Change) isEvent()  {}
func (Blur) isEvent()    {}
func (Submit) isEvent()  {}
func (Settled) isEvent() {}

// Reduce applies ev to s and returns the next state. When ev is a Submit that
// passes validation, the returned payload is non-nil and the caller must send
// it and report back with a Settled event.
func Reduce(s State, ev Event) (State, *Payload) {
	switch ev := ev.(type) {
	case Change:
		return onChange(s, ev), nil
	case Blur:
		return onBlur(s, ev), nil
	case Submit:
		return onSubmit(s)
	case Settled:
		return onSettled(s, ev), nil
	}
	return s, nil
}

func onChange(s State, ev Change) State {
	if !ev.Field.Valid() {
		return s
	}
	next := s
	next.Values = s.Values.With(ev.Field, ev.Value)
	next.Errors = s.Errors.Clone()

	if s.Settled {
		next.Settled = false
		next.Result = nil
		delete(next.Errors, GeneralKey)
	}
	if s.Submitted {
		setFieldError(next.Errors, ev.Field, ValidateField(ev.Field, ev.Value))
	}
	return next
}

func onBlur(s State, ev Blur) State {
	if !ev.Field.Valid() {
		return s
	}
	next := s
	next.Errors = s.Errors.Clone()
	setFieldError(next.Errors, ev.Field, ValidateField(ev.Field, s.Values.Get(ev.Field)))
	return next
}

func onSubmit(s State) (State, *Payload) {
	if s.Loading {
		return s, nil
	}
	next := s
	next.Submitted = true

	errs := ValidateAll(s.Values)
	if len(errs) > 0 {
		next.Errors = errs
		return next, nil
	}

	payload, err := BuildPayload(s.Values)
	if err != nil {
		next.Errors = Errors{GeneralKey: err.Error()}
		next.Result = nil
		next.Settled = true
		return next, nil
	}

	next.Errors = Errors{}
	next.Result = nil
	next.Settled = false
	next.Loading = true
	return next, &payload
}

func onSettled(s State, ev Settled) State {
	if !s.Loading {
		return s
	}
	next := s
	next.Loading = false
	next.Settled = true

	switch out := ev.Outcome; {
	case out.Result != nil:
		next.Result = out.Result
		next.Errors = Errors{}
	case len(out.Errors) > 0:
		next.Result = nil
		next.Errors = out.Errors.Clone()
	default:
		msg := out.General
		if msg == "" {
			msg = "Submission failed"
		}
		next.Result = nil
		next.Errors = Errors{GeneralKey: msg}
	}
	return next
}

func setFieldError(errs Errors, field Field, msg string) {
	if msg == "" {
		delete(errs, string(field))
		return
	}
	errs[string(field)] = msg
}
