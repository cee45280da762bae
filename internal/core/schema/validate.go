package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const resourceURL = "https://github.com/artpar/di/schema.json"

// =============================================================================
// Validation
// =============================================================================

// Validate checks doc against s. Fragments without `$schema` are interpreted
// as draft 4. Documents are normalized through JSON first so that any Go
// numeric kind is accepted where the schema asks for a number.
func Validate(doc any, s Schema) error {
	schemaDoc, err := normalize(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft4)
	if err := compiler.AddResource(resourceURL, schemaDoc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	instance, err := normalize(doc)
	if err != nil {
		return &ValidationError{Causes: []string{err.Error()}}
	}

	err = compiled.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &ValidationError{Causes: []string{err.Error()}}
	}
	return &ValidationError{Causes: causes(verr)}
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// causes flattens the validator's multi-line report into one entry per
// violated constraint.
func causes(verr *jsonschema.ValidationError) []string {
	lines := strings.Split(verr.Error(), "\n")
	var out []string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		out = append(out, strings.TrimSpace(lines[0]))
	}
	return out
}
