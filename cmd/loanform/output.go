package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/predict"
	"github.com/solutyics/loanform/internal/ui"
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (expected text, json or yaml)", format)
}

// loadApplicant reads field values from a YAML or JSON file. "-" reads stdin.
func loadApplicant(path string) (form.Fields, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return form.Fields{}, fmt.Errorf("failed to read applicant file: %w", err)
	}
	return parseApplicant(data)
}

// parseApplicant decodes field values. JSON is accepted as YAML.
func parseApplicant(data []byte) (form.Fields, error) {
	var values form.Fields
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&values); err != nil {
		return form.Fields{}, fmt.Errorf("failed to parse applicant file: %w", err)
	}
	return values, nil
}

// report is the printable outcome of a submission
type report struct {
	Phase  string      `json:"phase" yaml:"phase"`
	Values form.Fields `json:"values" yaml:"values"`
	Errors form.Errors `json:"errors,omitempty" yaml:"errors,omitempty"`
	Result interface{} `json:"result,omitempty" yaml:"result,omitempty"`
}

func newReport(st form.State) report {
	r := report{
		Phase:  st.Phase().String(),
		Values: st.Values,
		Errors: st.Errors.Clone(),
	}
	if len(r.Errors) == 0 {
		r.Errors = nil
	}
	if raw := st.Result.JSON(); raw != nil {
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err == nil {
			r.Result = decoded
		}
	}
	return r
}

// writeFormatted writes v as indented JSON or YAML
func writeFormatted(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return checkFormat(format)
}

// writeErrors lists errors in field order with their labels
func writeErrors(w io.Writer, errs form.Errors) {
	for _, key := range errs.Keys() {
		label := key
		if f, ok := form.ParseField(key); ok {
			label = f.Label()
		} else if key == form.GeneralKey {
			label = "Error"
		}
		fmt.Fprintf(w, "  %s: %s\n", label, errs[key])
	}
}

// writeState prints the settled state of a submission
func writeState(w io.Writer, format string, st form.State) error {
	if format != formatText {
		return writeFormatted(w, format, newReport(st))
	}

	if st.Result != nil {
		fmt.Fprintln(w, "Prediction:")
		for _, line := range strings.Split(st.Result.Display(), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
		return nil
	}
	if len(st.Errors) > 0 {
		fmt.Fprintln(w, "Submission failed:")
		writeErrors(w, st.Errors)
	}
	return nil
}

// errorDetails turns form errors into labelled lines in field order
func errorDetails(errs form.Errors) []ui.Param {
	details := make([]ui.Param, 0, len(errs))
	for _, key := range errs.Keys() {
		if key == form.GeneralKey {
			continue
		}
		label := key
		if f, ok := form.ParseField(key); ok {
			label = f.Label()
		}
		details = append(details, ui.Param{Key: label, Value: errs[key]})
	}
	return details
}

// resultBox summarises a settled submission for a terminal
func resultBox(st form.State, lastErr error) *ui.Result {
	if st.Result != nil {
		return ui.NewSuccessResult("Prediction received", st.Result.Display())
	}

	if st.Errors.HasFieldErrors() {
		title := "Applicant has invalid fields"
		if lastErr != nil {
			title = "Prediction service rejected the applicant"
		}
		return ui.NewWarningResult(title, errorDetails(st.Errors)...)
	}

	msg := st.Errors.General()
	if msg == "" {
		msg = "Submission failed"
	}
	if lastErr == nil {
		return ui.NewFailureResult("Applicant could not be sent", errors.New(msg), nil)
	}
	return ui.NewFailureResult("Submission failed", errors.New(msg), troubleshooting(lastErr))
}

// troubleshooting suggests next steps for a failed request
func troubleshooting(err error) []string {
	var pe *predict.Error
	if !errors.As(err, &pe) {
		return nil
	}
	switch pe.Kind {
	case predict.KindNetwork:
		tips := []string{
			"Check the prediction service URL (--endpoint or predict.endpoint)",
			"Verify this machine can reach the service",
		}
		if pe.Reason == predict.ReasonTimeout {
			tips = append(tips, "Increase --timeout for slow responses")
		}
		return tips
	case predict.KindServer:
		return []string{
			fmt.Sprintf("The service answered with status %d", pe.StatusCode),
			"Run with --log-level debug to see the request id",
		}
	}
	return nil
}
