// Package form holds the loan applicant form: its fields, the per-field
// validation rules, the submit state machine and the payload sent to the
// prediction service.
//
// # State machine
//
// The form is modelled as a pure reducer over immutable snapshots:
//
//	next, payload := form.Reduce(state, form.Change{Field: form.FieldAge, Value: "30"})
//
// Four events drive it:
//
//   - Change sets a field's value. Once a submit has been attempted the field
//     is revalidated on every change.
//   - Blur revalidates a single field using its current value.
//   - Submit validates every field. When all pass, the returned payload is
//     non-nil and the state is marked as loading. The caller owns the request.
//   - Settled records the outcome of that request and clears loading.
//
// Submit is ignored while a request is in flight, so at most one request is
// outstanding per form.
//
// # Phases
//
// The submission phase is derived, never stored:
//
//	Idle -> Editing -> Submitting -> Succeeded | Failed -> Editing
//
// The first edit after a request settles clears the previous result and the
// general error.
//
// # Validation
//
// Field rules are expressed with ozzo-validation. Every rule set starts with a
// required check against the trimmed value, so whitespace-only input is
// reported as missing. Messages are user facing and fixed:
//
//	form.ValidateField(form.FieldAge, "19") // "Age must be between 20 and 65."
//
// # Payload
//
// BuildPayload converts the raw text values to the wire record expected by
// the prediction service, whose JSON keys contain spaces:
//
//	{"Age":30,"Source of Income":"Salary","No of Dependents":2, ...}
package form
