package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestHeader_Render(t *testing.T) {
	h := NewHeader("Loan Prediction", "loanform predict",
		Param{Key: "Endpoint", Value: "http://localhost:5000/predict"},
		Param{Key: "Applicant", Value: "applicant.yaml"},
	).SetWidth(80)

	out := h.Render()
	for _, want := range []string{"LOAN PREDICTION", "loanform predict", "Endpoint:", "http://localhost:5000/predict", "applicant.yaml"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Endpoint:") > strings.Index(out, "Applicant:") {
		t.Error("params should keep their order")
	}
}

func TestHeader_NoParams(t *testing.T) {
	out := NewHeader("Validate", "loanform validate").SetWidth(10).Render()
	if !strings.Contains(out, "VALIDATE") {
		t.Errorf("header missing title:\n%s", out)
	}
	// Border, title, command, border
	if lines := strings.Count(out, "\n") + 1; lines != 4 {
		t.Errorf("header without params has %d lines, want 4:\n%s", lines, out)
	}
}

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Prediction received", "{\n  \"prediction\": \"Approved\"\n}"),
			want:   []string{SuccessMarker, "SUCCESS", "Prediction received", `"prediction": "Approved"`},
		},
		{
			name: "failure",
			result: NewFailureResult("Submission failed", errors.New("Network error, please try again later."),
				[]string{"Check the endpoint"}),
			want: []string{FailureMarker, "FAILED", "Error: Network error, please try again later.", "Troubleshooting:", "• Check the endpoint"},
		},
		{
			name:   "warning",
			result: NewWarningResult("Applicant has invalid fields", Param{Key: "Age", Value: "Age is required"}).AddDetail("DTI (Debt-to-Income)", "DTI is required"),
			want:   []string{WarningMarker, "INVALID", "Age:", "Age is required", "DTI (Debt-to-Income):"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(90).String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("result missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.SetWidth(20)
	if p.Width() != MinTerminalWidth {
		t.Errorf("Width() = %d, want clamp to %d", p.Width(), MinTerminalWidth)
	}

	p.PrintHeader(NewHeader("Loan Prediction", "loanform predict"))
	p.PrintResult(NewSuccessResult("Prediction received", "ok"))

	out := buf.String()
	if !strings.Contains(out, "LOAN PREDICTION") || !strings.Contains(out, "SUCCESS") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output should end with a newline")
	}
}
