package apispec

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// fieldError is one schema violation, located by JSON pointer segments.
type fieldError struct {
	path   []string
	reason string
}

// validateValue checks value against schema and returns every violation in the order the
// schema validator reported them.
func validateValue(schema *openapi3.Schema, value any) []fieldError {
	err := schema.VisitJSON(jsonValue(value), openapi3.MultiErrors(), openapi3.VisitAsResponse())
	if err == nil {
		return nil
	}
	return flattenSchemaErrors(err, nil)
}

// jsonValue converts value to the shapes encoding/json produces, which are the ones the
// schema validator understands. Values that cannot be encoded are passed through.
func jsonValue(value any) any {
	switch value.(type) {
	case nil, bool, float64, string:
		return value
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return value
	}
	return out
}

func flattenSchemaErrors(err error, out []fieldError) []fieldError {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			out = flattenSchemaErrors(inner, out)
		}
		return out
	case *openapi3.SchemaError:
		return append(out, fieldError{path: e.JSONPointer(), reason: schemaErrorReason(e)})
	}
	if inner := errors.Unwrap(err); inner != nil {
		return flattenSchemaErrors(inner, out)
	}
	return append(out, fieldError{reason: err.Error()})
}

func schemaErrorReason(e *openapi3.SchemaError) string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Origin != nil:
		return e.Origin.Error()
	default:
		return fmt.Sprintf("doesn't match schema %q", e.SchemaField)
	}
}

// fieldPath renders pointer segments under root, e.g. response.items[0].name.
func fieldPath(root string, segments []string) string {
	var b strings.Builder
	b.WriteString(root)
	for _, seg := range segments {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		b.WriteString("." + seg)
	}
	return b.String()
}

// responseWord matches the word "response" in validator reasons.
var responseWord = regexp.MustCompile(`\bresponse\b`)

func joinFieldErrors(errs []fieldError, root string) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fieldPath(root, e.path)+" "+e.reason)
	}
	return strings.Join(parts, ", ")
}
