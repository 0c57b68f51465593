package form

import (
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Age limits, inclusive.
const (
	MinAge = 20
	MaxAge = 65
)

var (
	digitsPattern  = regexp.MustCompile(`^\d+$`)
	lettersPattern = regexp.MustCompile(`^[A-Za-z ]+$`)
	decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

var errAgeRange = validation.NewError("validation_age_range", "Age must be between 20 and 65.")

// fieldRules pairs the required check, run against the trimmed value, with the
// format checks, run against the value as typed.
type fieldRules struct {
	required validation.Rule
	format   []validation.Rule
}

var rules = map[Field]fieldRules{
	FieldAge: {
		required: validation.Required.Error("Age is required"),
		format: []validation.Rule{
			validation.Match(digitsPattern).Error("Age must be a number"),
			validation.By(ageInRange),
		},
	},
	FieldIncomeSource: {
		required: validation.Required.Error("Income Source is required"),
		format: []validation.Rule{
			validation.Match(lettersPattern).Error("Income Source must contain only letters and spaces."),
		},
	},
	FieldDependents: {
		required: validation.Required.Error("Number of dependents is required"),
		format: []validation.Rule{
			validation.Match(digitsPattern).Error("Number of dependents must be a number"),
		},
	},
	FieldAnnualIncome: {
		required: validation.Required.Error("Annual Income is required"),
		format: []validation.Rule{
			validation.Match(digitsPattern).Error("Annual Income must be a number"),
		},
	},
	FieldCreditScore: {
		required: validation.Required.Error("Credit Score is required"),
		format: []validation.Rule{
			validation.Match(decimalPattern).Error("Credit Score must be a number"),
		},
	},
	FieldDTI: {
		required: validation.Required.Error("DTI is required"),
		format: []validation.Rule{
			validation.Match(decimalPattern).Error("DTI must be a number"),
		},
	},
	FieldPurpose: {
		required: validation.Required.Error("Purpose of loan is required"),
		format: []validation.Rule{
			validation.Match(lettersPattern).Error("Purpose must contain only letters and spaces."),
		},
	},
}

// ageInRange runs after the digits check, so a parse failure can only mean the
// number is too large to represent.
func ageInRange(value interface{}) error {
	s, _ := value.(string)
	age, err := strconv.Atoi(s)
	if err != nil || age < MinAge || age > MaxAge {
		return errAgeRange
	}
	return nil
}

// ValidateField checks value against field's rules and returns the first
// failing rule's message, or "" when the value is valid. Unknown fields are
// always valid.
func ValidateField(field Field, value string) string {
	r, ok := rules[field]
	if !ok {
		return ""
	}
	if err := validation.Validate(strings.TrimSpace(value), r.required); err != nil {
		return err.Error()
	}
	if err := validation.Validate(value, r.format...); err != nil {
		return err.Error()
	}
	return ""
}

// ValidateAll checks every field and returns the failing ones. The result
// never contains GeneralKey and is empty when the form is valid.
func ValidateAll(values Fields) Errors {
	errs := Errors{}
	for _, f := range AllFields {
		if msg := ValidateField(f, values.Get(f)); msg != "" {
			errs[string(f)] = msg
		}
	}
	return errs
}
