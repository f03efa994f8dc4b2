// Package diagnostics turns validation results into the messages shown to users.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/openapi-validator/internal/actual"
	"github.com/mark3labs/openapi-validator/internal/apispec"
)

// ResponseMessage explains why resp does not satisfy s. verr is the result of
// s.ValidateResponse(resp).
func ResponseMessage(s apispec.Spec, resp actual.Response, verr *apispec.ValidationError) string {
	req := resp.Request()
	pathname := apispec.Pathname(req.Path)
	status := resp.Status()

	var b strings.Builder
	b.WriteString("expected res to satisfy API spec\n\n")

	switch verr.Code {
	case apispec.ServerNotFound:
		fmt.Fprintf(&b, "expected res to satisfy a '%d' response defined for endpoint '%s %s' in your API spec\n", status, req.Method, pathname)
		fmt.Fprintf(&b, "res had request path '%s', but your API spec has no matching servers\n\n", pathname)
		fmt.Fprintf(&b, "Servers found in API spec: %s", strings.Join(s.ServerURLs(), ", "))

	case apispec.BasePathNotFound:
		fmt.Fprintf(&b, "expected res to satisfy a '%d' response defined for endpoint '%s %s' in your API spec\n", status, req.Method, pathname)
		fmt.Fprintf(&b, "res had request path '%s', but your API spec has basePath '%s'", pathname, s.BasePath())

	case apispec.PathNotFound:
		fmt.Fprintf(&b, "expected res to satisfy a '%d' response defined for endpoint '%s %s' in your API spec\n", status, req.Method, pathname)
		fmt.Fprintf(&b, "res had request path '%s', but no path matching it was found in your API spec\n\n", pathname)
		b.WriteString(pathsHint(s, pathname))

	case apispec.MethodNotFound:
		item, err := s.FindExpectedPathItem(req)
		if err != nil {
			b.WriteString(verr.Error())
			break
		}
		fmt.Fprintf(&b, "expected res to satisfy a '%d' response defined for endpoint '%s %s' in your API spec\n", status, req.Method, item.Path)
		fmt.Fprintf(&b, "res had request method '%s', but your API spec has no '%s' operation defined for path '%s'\n\n", req.Method, req.Method, item.Path)
		fmt.Fprintf(&b, "Request operations found for path '%s' in API spec: %s", item.Path, strings.Join(item.Methods, ", "))

	case apispec.StatusNotFound:
		op, err := s.FindExpectedResponseOperation(req)
		if err != nil || op == nil {
			b.WriteString(verr.Error())
			break
		}
		endpoint := op.Method + " " + op.Path
		fmt.Fprintf(&b, "expected res to satisfy a '%d' response defined for endpoint '%s' in your API spec\n", status, endpoint)
		fmt.Fprintf(&b, "res had status '%d', but your API spec has no '%d' or 'default' response defined for endpoint '%s'\n\n", status, status, endpoint)
		fmt.Fprintf(&b, "Response statuses found for endpoint '%s' in API spec: %s", endpoint, strings.Join(op.Statuses, ", "))

	case apispec.InvalidBody:
		def, err := s.FindExpectedResponse(resp)
		if err != nil {
			b.WriteString(verr.Error())
			break
		}
		endpoint := endpointOf(s, req)
		fmt.Fprintf(&b, "expected res to satisfy the '%s' response defined for endpoint '%s' in your API spec\n", def.Key, endpoint)
		fmt.Fprintf(&b, "res did not satisfy it because: %s\n\n", verr.Message)
		fmt.Fprintf(&b, "res contained: %s\n\n", indentJSON(resp.Summary()))
		fmt.Fprintf(&b, "The '%s' response defined for endpoint '%s' in API spec: %s", def.Key, endpoint, indentJSON(definitionOf(def)))

	default:
		b.WriteString(verr.Error())
	}
	return b.String()
}

// NegatedResponseMessage explains that resp satisfies s although it was expected not to.
func NegatedResponseMessage(s apispec.Spec, resp actual.Response) string {
	req := resp.Request()
	var b strings.Builder
	b.WriteString("expected res not to satisfy API spec\n\n")
	def, err := s.FindExpectedResponse(resp)
	if err != nil {
		fmt.Fprintf(&b, "res contained: %s", indentJSON(resp.Summary()))
		return b.String()
	}
	endpoint := endpointOf(s, req)
	fmt.Fprintf(&b, "expected res not to satisfy the '%s' response defined for endpoint '%s' in your API spec\n\n", def.Key, endpoint)
	fmt.Fprintf(&b, "res contained: %s\n\n", indentJSON(resp.Summary()))
	fmt.Fprintf(&b, "The '%s' response defined for endpoint '%s' in API spec: %s", def.Key, endpoint, indentJSON(definitionOf(def)))
	return b.String()
}

// SchemaMessage explains the outcome of validating obj against the named schema. A nil
// verr produces the negated form.
func SchemaMessage(s apispec.Spec, name string, obj any, verr *apispec.ValidationError) string {
	schema, _ := s.SchemaObject(name)
	var b strings.Builder
	if verr == nil {
		fmt.Fprintf(&b, "expected object not to satisfy the '%s' schema defined in your API spec\n", name)
		fmt.Fprintf(&b, "object passed validation\n\n")
	} else {
		fmt.Fprintf(&b, "expected object to satisfy the '%s' schema defined in your API spec\n", name)
		fmt.Fprintf(&b, "object did not satisfy it because: %s\n\n", verr.Message)
	}
	fmt.Fprintf(&b, "object was: %s\n\n", indentJSON(obj))
	fmt.Fprintf(&b, "The '%s' schema in API spec (%s): %s", name, s.ComponentDefinitions(), indentJSON(schema))
	return b.String()
}

// MissingSchemaMessage reports a schema name the document does not define.
func MissingSchemaMessage(s apispec.Spec, name string) string {
	return fmt.Sprintf("The '%s' schema is not defined in your API spec (%s)", name, s.ComponentDefinitions())
}

func pathsHint(s apispec.Spec, pathname string) string {
	paths := strings.Join(s.Paths(), ", ")
	if !s.DefinesServers() {
		return "Paths found in API spec: " + paths
	}
	servers := strings.Join(s.MatchingServerURLs(pathname), ", ")
	return fmt.Sprintf("Paths found in API spec: %s\n\n'%s' matches servers %s but no <server/endpointPath> combinations", paths, pathname, servers)
}

func endpointOf(s apispec.Spec, req actual.Request) string {
	if path, err := s.FindOpenAPIPathMatchingRequest(req); err == nil {
		return req.Method + " " + path
	}
	return req.Method + " " + apispec.Pathname(req.Path)
}

func definitionOf(def *apispec.ResponseDefinition) any {
	if def.Definition != nil {
		return def.Definition
	}
	return map[string]any{"description": def.Description}
}

func indentJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}
