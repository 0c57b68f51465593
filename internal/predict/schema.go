package predict

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/solutyics/loanform/internal/form"
)

//go:embed payload.schema.json
var payloadSchemaJSON string

var (
	payloadSchema     *gojsonschema.Schema
	payloadSchemaErr  error
	payloadSchemaOnce sync.Once
)

func loadPayloadSchema() (*gojsonschema.Schema, error) {
	payloadSchemaOnce.Do(func() {
		payloadSchema, payloadSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(payloadSchemaJSON))
	})
	return payloadSchema, payloadSchemaErr
}

// ValidatePayload checks p against the request contract of the prediction
// service. The form validator already enforces the same rules, so a failure
// here means the payload was assembled outside the form.
func ValidatePayload(p form.Payload) error {
	schema, err := loadPayloadSchema()
	if err != nil {
		return NewClientError("payload schema could not be loaded", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(p))
	if err != nil {
		return NewClientError("payload could not be checked", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return NewClientError("payload does not match the request contract", fmt.Errorf("%s", strings.Join(errs, "; ")))
	}
	return nil
}
