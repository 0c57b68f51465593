package form

import "sort"

// Field identifies one input of the applicant form.
type Field string

const (
	FieldAge          Field = "age"
	FieldIncomeSource Field = "incomeSource"
	FieldDependents   Field = "dependents"
	FieldAnnualIncome Field = "annualIncome"
	FieldCreditScore  Field = "creditScore"
	FieldDTI          Field = "dti"
	FieldPurpose      Field = "purpose"
)

// GeneralKey is the Errors key for a message that is not tied to a field.
const GeneralKey = "general"

// AllFields lists every field in display order.
var AllFields = []Field{
	FieldAge,
	FieldIncomeSource,
	FieldDependents,
	FieldAnnualIncome,
	FieldCreditScore,
	FieldDTI,
	FieldPurpose,
}

var fieldLabels = map[Field]string{
	FieldAge:          "Age",
	FieldIncomeSource: "Source of Income",
	FieldDependents:   "Number of Dependents",
	FieldAnnualIncome: "Annual Income",
	FieldCreditScore:  "Credit Score",
	FieldDTI:          "DTI (Debt-to-Income)",
	FieldPurpose:      "Purpose of Loan",
}

// Label returns the human readable name shown next to the input.
func (f Field) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// Placeholder returns the hint text shown in an empty input.
func (f Field) Placeholder() string {
	if f == FieldAge {
		return "Enter Age"
	}
	return f.Label()
}

// Valid reports whether f is one of the form's fields.
func (f Field) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// ParseField returns the Field named name.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	return f, f.Valid()
}

// Fields holds the raw text of every input. Values stay text until a payload
// is built at submission time.
type Fields struct {
	Age          string `json:"age" yaml:"age"`
	IncomeSource string `json:"incomeSource" yaml:"incomeSource"`
	Dependents   string `json:"dependents" yaml:"dependents"`
	AnnualIncome string `json:"annualIncome" yaml:"annualIncome"`
	CreditScore  string `json:"creditScore" yaml:"creditScore"`
	DTI          string `json:"dti" yaml:"dti"`
	Purpose      string `json:"purpose" yaml:"purpose"`
}

// Get returns the value of field.
func (v Fields) Get(field Field) string {
	switch field {
	case FieldAge:
		return v.Age
	case FieldIncomeSource:
		return v.IncomeSource
	case FieldDependents:
		return v.Dependents
	case FieldAnnualIncome:
		return v.AnnualIncome
	case FieldCreditScore:
		return v.CreditScore
	case FieldDTI:
		return v.DTI
	case FieldPurpose:
		return v.Purpose
	}
	return ""
}

// With returns a copy of v with field set to value. Unknown fields leave the
// copy unchanged.
func (v Fields) With(field Field, value string) Fields {
	switch field {
	case FieldAge:
		v.Age = value
	case FieldIncomeSource:
		v.IncomeSource = value
	case FieldDependents:
		v.Dependents = value
	case FieldAnnualIncome:
		v.AnnualIncome = value
	case FieldCreditScore:
		v.CreditScore = value
	case FieldDTI:
		v.DTI = value
	case FieldPurpose:
		v.Purpose = value
	}
	return v
}

// IsEmpty reports whether no field has been filled in.
func (v Fields) IsEmpty() bool {
	return v == Fields{}
}

// Errors maps a field name, or GeneralKey, to a message. A missing key means
// the field is currently valid.
type Errors map[string]string

// Clone returns an independent copy of e. The copy is never nil.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Field returns the message recorded for field, or "".
func (e Errors) Field(field Field) string {
	return e[string(field)]
}

// General returns the message that is not tied to a field, or "".
func (e Errors) General() string {
	return e[GeneralKey]
}

// HasFieldErrors reports whether any key other than GeneralKey is present.
func (e Errors) HasFieldErrors() bool {
	for k := range e {
		if k != GeneralKey {
			return true
		}
	}
	return false
}

// Keys returns the error keys in a stable order: form fields first in display
// order, then any other keys alphabetically.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	seen := make(map[string]bool, len(e))
	for _, f := range AllFields {
		if _, ok := e[string(f)]; ok {
			keys = append(keys, string(f))
			seen[string(f)] = true
		}
	}
	var rest []string
	for k := range e {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
