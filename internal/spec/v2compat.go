package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// v2OperationKeys are the path item keys that hold operations in a Swagger 2.0 document.
var v2OperationKeys = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true,
}

// preprocessV2ForCompatibility rewrites request parameter shapes that Swagger 2.0 tooling
// tolerates but the v2→v3 converter rejects. Only request-side constructs are touched;
// responses and definitions pass through untouched, so the result validates the same
// response bodies as the input.
//
//   - several "in: body" parameters are merged into one object-typed body parameter
//   - body parameters next to formData parameters become formData parameters
//
// On error the input bytes are returned unchanged with changed=false.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, _ := doc["paths"].(map[string]any)
	changed := false
	for _, item := range paths {
		pathItem, _ := item.(map[string]any)
		for key, raw := range pathItem {
			if !v2OperationKeys[strings.ToLower(key)] {
				continue
			}
			op, _ := raw.(map[string]any)
			if op == nil {
				continue
			}
			if rewriteV2Parameters(op) {
				changed = true
			}
		}
	}
	if !changed {
		return data, false, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func rewriteV2Parameters(op map[string]any) bool {
	params, _ := op["parameters"].([]any)
	var bodies, rest []map[string]any
	hasForm := false
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		switch in := stringValue(pm["in"]); {
		case strings.EqualFold(in, "body"):
			bodies = append(bodies, pm)
		case strings.EqualFold(in, "formData"):
			hasForm = true
			rest = append(rest, pm)
		default:
			rest = append(rest, pm)
		}
	}

	switch {
	case len(bodies) > 0 && hasForm:
		for _, b := range bodies {
			rest = append(rest, bodyAsFormField(b))
		}
		consumes, _ := op["consumes"].([]any)
		if !containsValue(consumes, "multipart/form-data") {
			op["consumes"] = append(consumes, "multipart/form-data")
		}
	case len(bodies) > 1:
		rest = append([]map[string]any{mergeBodies(bodies)}, rest...)
	default:
		return false
	}

	out := make([]any, 0, len(rest))
	for _, p := range rest {
		out = append(out, p)
	}
	op["parameters"] = out
	return true
}

func mergeBodies(bodies []map[string]any) map[string]any {
	props := map[string]any{}
	var required []any
	for _, b := range bodies {
		name := paramName(b)
		props[name] = paramSchema(b)
		if req, _ := b["required"].(bool); req {
			required = append(required, name)
		}
	}
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return map[string]any{"in": "body", "name": "body", "schema": schema}
}

func bodyAsFormField(body map[string]any) map[string]any {
	field := map[string]any{"in": "formData", "name": paramName(body)}
	if desc := stringValue(body["description"]); desc != "" {
		field["description"] = desc
	}
	if req, ok := body["required"].(bool); ok {
		field["required"] = req
	}
	// formData can only carry primitives and arrays; referenced objects degrade to string.
	schema := paramSchema(body)
	typ := stringValue(schema["type"])
	if typ == "" || typ == "object" {
		typ = "string"
	}
	field["type"] = typ
	if items, ok := schema["items"]; ok && typ == "array" {
		field["items"] = items
	}
	if format := stringValue(schema["format"]); format != "" {
		field["format"] = format
	}
	return field
}

func paramName(p map[string]any) string {
	if name := stringValue(p["name"]); name != "" {
		return name
	}
	return "field"
}

// paramSchema returns the parameter's schema, synthesizing one from type/items/format.
func paramSchema(p map[string]any) map[string]any {
	if schema, ok := p["schema"].(map[string]any); ok {
		return schema
	}
	typ := stringValue(p["type"])
	if typ == "" {
		return map[string]any{"type": "string"}
	}
	schema := map[string]any{"type": typ}
	if items, ok := p["items"]; ok {
		schema["items"] = items
	}
	if format := stringValue(p["format"]); format != "" {
		schema["format"] = format
	}
	return schema
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func containsValue(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}
