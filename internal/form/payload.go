package form

import (
	"fmt"
	"strconv"
)

// Payload is the record posted to the prediction service. The JSON keys are
// fixed by the service and must not change.
type Payload struct {
	Age          int     `json:"Age" yaml:"Age"`
	IncomeSource string  `json:"Source of Income" yaml:"Source of Income"`
	Dependents   int     `json:"No of Dependents" yaml:"No of Dependents"`
	AnnualIncome int     `json:"Annual Income" yaml:"Annual Income"`
	CreditScore  float64 `json:"Credit Score" yaml:"Credit Score"`
	DTI          float64 `json:"DTI" yaml:"DTI"`
	Purpose      string  `json:"Purpose" yaml:"Purpose"`
}

// BuildPayload converts validated field text into a Payload. Text fields are
// passed through unchanged. An error is returned only for values the
// validator accepts but Go cannot represent, such as an annual income that
// overflows int.
func BuildPayload(values Fields) (Payload, error) {
	var (
		p   Payload
		err error
	)

	if p.Age, err = parseInt(FieldAge, values.Age); err != nil {
		return Payload{}, err
	}
	if p.Dependents, err = parseInt(FieldDependents, values.Dependents); err != nil {
		return Payload{}, err
	}
	if p.AnnualIncome, err = parseInt(FieldAnnualIncome, values.AnnualIncome); err != nil {
		return Payload{}, err
	}
	if p.CreditScore, err = parseFloat(FieldCreditScore, values.CreditScore); err != nil {
		return Payload{}, err
	}
	if p.DTI, err = parseFloat(FieldDTI, values.DTI); err != nil {
		return Payload{}, err
	}
	p.IncomeSource = values.IncomeSource
	p.Purpose = values.Purpose

	return p, nil
}

func parseInt(field Field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: cannot convert %q to an integer: %w", field.Label(), value, err)
	}
	return n, nil
}

func parseFloat(field Field, value string) (float64, error) {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: cannot convert %q to a number: %w", field.Label(), value, err)
	}
	return n, nil
}
