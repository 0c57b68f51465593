package form

import (
	"encoding/json"
	"strings"
	"testing"
)

func sampleFields() Fields {
	return Fields{
		Age:          "30",
		IncomeSource: "Salary",
		Dependents:   "2",
		AnnualIncome: "50000",
		CreditScore:  "720",
		DTI:          "35.5",
		Purpose:      "Home Renovation",
	}
}

// TestBuildPayloadWireFormat checks the exact JSON sent to the service
func TestBuildPayloadWireFormat(t *testing.T) {
	p, err := BuildPayload(sampleFields())
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	want := `{"Age":30,"Source of Income":"Salary","No of Dependents":2,"Annual Income":50000,"Credit Score":720,"DTI":35.5,"Purpose":"Home Renovation"}`
	if string(data) != want {
		t.Errorf("payload JSON =\n%s\nwant\n%s", data, want)
	}
}

// TestBuildPayloadConversions tests numeric conversion edge cases
func TestBuildPayloadConversions(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		check   func(Payload) bool
		wantErr string
	}{
		{
			name:   "Leading zeros are dropped",
			fields: sampleFields().With(FieldAge, "030"),
			check:  func(p Payload) bool { return p.Age == 30 },
		},
		{
			name:   "Decimal credit score",
			fields: sampleFields().With(FieldCreditScore, "712.25"),
			check:  func(p Payload) bool { return p.CreditScore == 712.25 },
		},
		{
			name:   "Text is passed through",
			fields: sampleFields().With(FieldPurpose, "Debt  Consolidation"),
			check:  func(p Payload) bool { return p.Purpose == "Debt  Consolidation" },
		},
		{
			name:    "Income overflows int",
			fields:  sampleFields().With(FieldAnnualIncome, "99999999999999999999999999"),
			wantErr: "Annual Income",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildPayload(tt.fields)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("BuildPayload() expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("BuildPayload() error = %v, want it to mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildPayload() error = %v", err)
			}
			if !tt.check(p) {
				t.Errorf("BuildPayload() = %+v", p)
			}
		})
	}
}
