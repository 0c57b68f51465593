package form

import (
	"testing"
)

func fill(s State, values Fields) State {
	for _, f := range AllFields {
		s, _ = Reduce(s, Change{Field: f, Value: values.Get(f)})
	}
	return s
}

// TestChangeBeforeSubmit checks edits do not validate until a submit attempt
func TestChangeBeforeSubmit(t *testing.T) {
	s, payload := Reduce(NewState(), Change{Field: FieldAge, Value: "abc"})
	if payload != nil {
		t.Fatal("Change must not produce a payload")
	}
	if s.Values.Age != "abc" {
		t.Errorf("Values.Age = %q, want %q", s.Values.Age, "abc")
	}
	if len(s.Errors) != 0 {
		t.Errorf("Errors = %v, want none before submit", s.Errors)
	}
	if s.Phase() != PhaseEditing {
		t.Errorf("Phase() = %v, want editing", s.Phase())
	}
}

// TestBlurValidates checks blur validates the current value
func TestBlurValidates(t *testing.T) {
	s, _ := Reduce(NewState(), Blur{Field: FieldAge})
	if got := s.Errors.Field(FieldAge); got != "Age is required" {
		t.Errorf("after blur on empty age: %q", got)
	}

	s, _ = Reduce(s, Change{Field: FieldAge, Value: "40"})
	if got := s.Errors.Field(FieldAge); got != "Age is required" {
		t.Errorf("change before submit must not revalidate, got %q", got)
	}

	s, _ = Reduce(s, Blur{Field: FieldAge})
	if _, ok := s.Errors[string(FieldAge)]; ok {
		t.Errorf("blur on valid age must clear the error, got %v", s.Errors)
	}
}

// TestReduceDoesNotMutateInput checks snapshots stay immutable
func TestReduceDoesNotMutateInput(t *testing.T) {
	before, _ := Reduce(NewState(), Blur{Field: FieldDTI})
	_, _ = Reduce(before, Change{Field: FieldDTI, Value: "12"})
	_, _ = Reduce(before, Blur{Field: FieldAge})

	if before.Values.DTI != "" {
		t.Errorf("input values changed: %+v", before.Values)
	}
	if len(before.Errors) != 1 {
		t.Errorf("input errors changed: %v", before.Errors)
	}
}

// TestSubmitInvalid checks an invalid form produces no payload
func TestSubmitInvalid(t *testing.T) {
	s := fill(NewState(), sampleFields().With(FieldAge, "19"))

	s, payload := Reduce(s, Submit{})
	if payload != nil {
		t.Fatal("invalid form must not produce a payload")
	}
	if !s.Submitted {
		t.Error("Submitted must be set after a submit attempt")
	}
	if s.Loading {
		t.Error("Loading must stay false when validation fails")
	}
	if got := s.Errors.Field(FieldAge); got != "Age must be between 20 and 65." {
		t.Errorf("age error = %q", got)
	}

	// After a submit attempt every change revalidates.
	s, _ = Reduce(s, Change{Field: FieldAge, Value: "25"})
	if _, ok := s.Errors[string(FieldAge)]; ok {
		t.Errorf("fixing age must clear its error, got %v", s.Errors)
	}
	s, _ = Reduce(s, Change{Field: FieldPurpose, Value: "Car 2"})
	if got := s.Errors.Field(FieldPurpose); got != "Purpose must contain only letters and spaces." {
		t.Errorf("purpose error = %q", got)
	}
}

// TestSubmitValid checks the happy path through to a stored result
func TestSubmitValid(t *testing.T) {
	s := fill(NewState(), sampleFields())

	s, payload := Reduce(s, Submit{})
	if payload == nil {
		t.Fatal("valid form must produce a payload")
	}
	if payload.Age != 30 || payload.DTI != 35.5 || payload.IncomeSource != "Salary" {
		t.Errorf("payload = %+v", *payload)
	}
	if !s.Loading || s.Phase() != PhaseSubmitting {
		t.Errorf("Loading = %v, Phase() = %v; want submitting", s.Loading, s.Phase())
	}

	// A second submit while loading is ignored.
	again, second := Reduce(s, Submit{})
	if second != nil {
		t.Error("Submit while loading must not produce a payload")
	}
	if !again.Loading {
		t.Error("Submit while loading must not change loading")
	}

	result := &Result{StatusCode: 200, Body: []byte(`{"prediction":"Approved"}`)}
	s, _ = Reduce(s, Settled{Outcome: Outcome{Result: result}})
	if s.Loading {
		t.Error("Loading must be cleared on success")
	}
	if s.Phase() != PhaseSucceeded {
		t.Errorf("Phase() = %v, want succeeded", s.Phase())
	}
	if s.Result != result {
		t.Error("Result must be stored as received")
	}
}

// TestSettledBranches checks loading is cleared and errors are set for every exit
func TestSettledBranches(t *testing.T) {
	tests := []struct {
		name       string
		outcome    Outcome
		wantPhase  Phase
		wantErrors Errors
	}{
		{
			name:       "Success",
			outcome:    Outcome{Result: &Result{StatusCode: 200, Body: []byte(`"ok"`)}},
			wantPhase:  PhaseSucceeded,
			wantErrors: Errors{},
		},
		{
			name:       "Structured server error",
			outcome:    Outcome{Errors: Errors{"age": "Too young", "credit": "Bad"}},
			wantPhase:  PhaseFailed,
			wantErrors: Errors{"age": "Too young", "credit": "Bad"},
		},
		{
			name:       "Network error",
			outcome:    Outcome{General: "Network error, please try again later."},
			wantPhase:  PhaseFailed,
			wantErrors: Errors{GeneralKey: "Network error, please try again later."},
		},
		{
			name:       "Client error",
			outcome:    Outcome{General: "request canceled"},
			wantPhase:  PhaseFailed,
			wantErrors: Errors{GeneralKey: "request canceled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fill(NewState(), sampleFields())
			s, _ = Reduce(s, Blur{Field: FieldAge})
			s, payload := Reduce(s, Submit{})
			if payload == nil || !s.Loading {
				t.Fatal("expected submission to start")
			}

			s, _ = Reduce(s, Settled{Outcome: tt.outcome})
			if s.Loading {
				t.Error("Loading must be cleared")
			}
			if s.Phase() != tt.wantPhase {
				t.Errorf("Phase() = %v, want %v", s.Phase(), tt.wantPhase)
			}
			if len(s.Errors) != len(tt.wantErrors) {
				t.Fatalf("Errors = %v, want %v", s.Errors, tt.wantErrors)
			}
			for k, v := range tt.wantErrors {
				if s.Errors[k] != v {
					t.Errorf("Errors[%s] = %q, want %q", k, s.Errors[k], v)
				}
			}
		})
	}
}

// TestSettledWithoutLoading checks a stray outcome is ignored
func TestSettledWithoutLoading(t *testing.T) {
	s := NewState()
	next, _ := Reduce(s, Settled{Outcome: Outcome{General: "late"}})
	if next.Settled || len(next.Errors) != 0 {
		t.Errorf("stray Settled changed state: %+v", next)
	}
}

// TestEditAfterSettleClearsResult checks the first edit returns to editing
func TestEditAfterSettleClearsResult(t *testing.T) {
	s := fill(NewState(), sampleFields())
	s, _ = Reduce(s, Submit{})
	s, _ = Reduce(s, Settled{Outcome: Outcome{General: "Network error, please try again later."}})
	if s.Phase() != PhaseFailed {
		t.Fatalf("Phase() = %v, want failed", s.Phase())
	}

	s, _ = Reduce(s, Change{Field: FieldDTI, Value: "30"})
	if s.Phase() != PhaseEditing {
		t.Errorf("Phase() = %v, want editing", s.Phase())
	}
	if s.Errors.General() != "" {
		t.Errorf("general error must be cleared, got %q", s.Errors.General())
	}
	if s.Result != nil {
		t.Error("result must be cleared")
	}
}

// TestSubmitBuildFailure checks an unrepresentable value becomes a general error
func TestSubmitBuildFailure(t *testing.T) {
	s := fill(NewState(), sampleFields().With(FieldAnnualIncome, "99999999999999999999999999"))

	s, payload := Reduce(s, Submit{})
	if payload != nil {
		t.Fatal("build failure must not produce a payload")
	}
	if s.Loading {
		t.Error("Loading must stay false")
	}
	if s.Errors.General() == "" {
		t.Error("expected a general error")
	}
	if s.Errors.HasFieldErrors() {
		t.Errorf("expected only a general error, got %v", s.Errors)
	}
}

// TestPhaseIdle checks an untouched form is idle
func TestPhaseIdle(t *testing.T) {
	if p := NewState().Phase(); p != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", p)
	}
}

// TestResultDisplay tests how response bodies are rendered
func TestResultDisplay(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"JSON object", `{"prediction":"Approved"}`, "{\n  \"prediction\": \"Approved\"\n}"},
		{"JSON string", `"Approved"`, "Approved"},
		{"Plain text", `Approved`, "Approved"},
		{"Empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{StatusCode: 200, Body: []byte(tt.body)}
			if got := r.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}
