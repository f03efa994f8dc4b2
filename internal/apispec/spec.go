// Package apispec resolves observed responses against a loaded OpenAPI 2 or 3 document
// and validates their bodies against the resolved schema.
package apispec

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/openapi-validator/internal/actual"
	"github.com/mark3labs/openapi-validator/internal/spec"
)

// Spec answers resolution and validation questions about one document. Implementations
// are read-only after construction and safe for concurrent use.
type Spec interface {
	Version() spec.Version
	// Paths lists the path templates in declaration order.
	Paths() []string
	ServerURLs() []string
	MatchingServerURLs(pathname string) []string
	DefinesServers() bool
	BasePath() string

	FindOpenAPIPathMatchingPathname(pathname string) (string, error)
	FindOpenAPIPathMatchingRequest(req actual.Request) (string, error)
	FindExpectedPathItem(req actual.Request) (*PathItem, error)
	FindExpectedResponseOperation(req actual.Request) (*Operation, error)
	FindExpectedResponse(resp actual.Response) (*ResponseDefinition, error)

	ValidateResponse(resp actual.Response) (*ValidationError, error)
	ValidateObject(obj any, schema *openapi3.Schema) (*ValidationError, error)

	SchemaObject(name string) (*openapi3.Schema, bool)
	ComponentDefinitions() string
}

// PathItem is the matched path template and the methods it declares.
type PathItem struct {
	Path string
	// Methods are upper-case, in spec.Methods order.
	Methods []string
}

// Operation is one method of a matched path template.
type Operation struct {
	Path   string
	Method string
	// Statuses are the keys of the operation's responses, sorted.
	Statuses []string
}

// ResponseDefinition is the response object that an actual response is checked against.
type ResponseDefinition struct {
	// Status is the actual status code that was looked up.
	Status int
	// Key is the responses key that matched: the literal status, a range such as "2XX",
	// or "default".
	Key string
	// Ref is the reference the definition was reached through, if any.
	Ref         string
	Description string
	// Schemas maps media types to body schemas; OpenAPI 2 uses the single key "".
	// A nil schema means the media type declares no body schema.
	Schemas map[string]*openapi3.Schema
	// Definition is the raw response object, for diagnostics.
	Definition any
}

// variant is the version-specific half of a Spec.
type variant interface {
	findPathMatchingPathname(pathname string) (string, error)
	methods(path string) []string
	statuses(path, method string) ([]string, bool)
	responseDefinition(path, method, key string) (*ResponseDefinition, error)
	rangeKeys() bool
}

// base carries the algorithm shared by both versions.
type base struct {
	version  spec.Version
	paths    []string
	matchers matcherSet
	v        variant
}

func newBase(version spec.Version, paths []string) (base, error) {
	matchers, err := newMatcherSet(paths)
	if err != nil {
		return base{}, err
	}
	return base{version: version, paths: paths, matchers: matchers}, nil
}

func (b *base) Version() spec.Version { return b.version }

func (b *base) Paths() []string {
	return append([]string(nil), b.paths...)
}

func (b *base) FindOpenAPIPathMatchingPathname(pathname string) (string, error) {
	return b.v.findPathMatchingPathname(pathname)
}

func (b *base) FindOpenAPIPathMatchingRequest(req actual.Request) (string, error) {
	return b.v.findPathMatchingPathname(Pathname(req.Path))
}

func (b *base) FindExpectedPathItem(req actual.Request) (*PathItem, error) {
	path, err := b.FindOpenAPIPathMatchingRequest(req)
	if err != nil {
		return nil, err
	}
	return &PathItem{Path: path, Methods: b.v.methods(path)}, nil
}

// FindExpectedResponseOperation returns nil without error when the matched path declares
// no operation for the request method.
func (b *base) FindExpectedResponseOperation(req actual.Request) (*Operation, error) {
	path, err := b.FindOpenAPIPathMatchingRequest(req)
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(req.Method)
	statuses, ok := b.v.statuses(path, method)
	if !ok {
		return nil, nil
	}
	return &Operation{Path: path, Method: method, Statuses: statuses}, nil
}

func (b *base) FindExpectedResponse(resp actual.Response) (*ResponseDefinition, error) {
	req := resp.Request()
	op, err := b.FindExpectedResponseOperation(req)
	if err != nil {
		return nil, err
	}
	if op == nil {
		path, _ := b.FindOpenAPIPathMatchingRequest(req)
		return nil, newValidationError(MethodNotFound,
			fmt.Sprintf("%s has no %s operation", path, strings.ToUpper(req.Method)))
	}
	key, ok := responseKey(op.Statuses, resp.Status(), b.v.rangeKeys())
	if !ok {
		return nil, newValidationError(StatusNotFound,
			fmt.Sprintf("%s %s has no response for status %d", op.Method, op.Path, resp.Status()))
	}
	def, err := b.v.responseDefinition(op.Path, op.Method, key)
	if err != nil {
		return nil, err
	}
	def.Status = resp.Status()
	return def, nil
}

// ValidateResponse returns a ValidationError when resp does not satisfy the document. The
// error return is reserved for malformed documents.
func (b *base) ValidateResponse(resp actual.Response) (*ValidationError, error) {
	def, err := b.FindExpectedResponse(resp)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return verr, nil
		}
		return nil, err
	}
	schema := def.SchemaFor(resp.ContentType())
	if schema == nil {
		return nil, nil
	}
	if errs := validateValue(schema, resp.BodyForValidation()); len(errs) > 0 {
		return newValidationError(InvalidBody, joinFieldErrors(errs, "response")), nil
	}
	return nil, nil
}

// ValidateObject validates obj as if it were the body of a 200 response declaring schema.
func (b *base) ValidateObject(obj any, schema *openapi3.Schema) (*ValidationError, error) {
	def := &ResponseDefinition{
		Status:  200,
		Key:     "200",
		Schemas: map[string]*openapi3.Schema{"": schema},
	}
	s := def.SchemaFor("")
	if s == nil {
		return nil, nil
	}
	if errs := validateValue(s, obj); len(errs) > 0 {
		for i := range errs {
			errs[i].reason = responseWord.ReplaceAllString(errs[i].reason, "object")
		}
		return newValidationError(InvalidObject, joinFieldErrors(errs, "object")), nil
	}
	return nil, nil
}

// responseKey picks the responses key for status: the literal code, then (when allowed)
// its range key such as "2XX", then "default".
func responseKey(keys []string, status int, ranges bool) (string, bool) {
	has := make(map[string]bool, len(keys))
	for _, k := range keys {
		has[k] = true
	}
	literal := strconv.Itoa(status)
	if has[literal] {
		return literal, true
	}
	if ranges && status >= 100 && status < 600 {
		digit := strconv.Itoa(status / 100)
		for _, k := range []string{digit + "XX", digit + "xx"} {
			if has[k] {
				return k, true
			}
		}
	}
	if has["default"] {
		return "default", true
	}
	return "", false
}

// SchemaFor picks the body schema for a response with the given content type: an exact
// media type match, then a wildcard such as "application/*", then application/json, then
// any JSON media type, then the first media type in sorted order.
func (d *ResponseDefinition) SchemaFor(contentType string) *openapi3.Schema {
	if len(d.Schemas) == 0 {
		return nil
	}
	if s, ok := d.Schemas[""]; ok && len(d.Schemas) == 1 {
		return s
	}
	keys := make([]string, 0, len(d.Schemas))
	byLower := make(map[string]*openapi3.Schema, len(d.Schemas))
	for k, s := range d.Schemas {
		lk := strings.ToLower(k)
		keys = append(keys, lk)
		byLower[lk] = s
	}
	sort.Strings(keys)

	if mt := mediaType(contentType); mt != "" {
		if s, ok := byLower[mt]; ok {
			return s
		}
		for _, k := range keys {
			if wildcardMatches(k, mt) {
				return byLower[k]
			}
		}
	}
	if s, ok := byLower["application/json"]; ok {
		return s
	}
	for _, k := range keys {
		if strings.Contains(k, "json") {
			return byLower[k]
		}
	}
	return byLower[keys[0]]
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func wildcardMatches(pattern, mt string) bool {
	if pattern == "*/*" {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, "/*")
	return ok && strings.HasPrefix(mt, prefix+"/")
}

// canonicalMethods filters declared upper-case methods into spec.Methods order.
func canonicalMethods(declared map[string]bool) []string {
	out := make([]string, 0, len(declared))
	for _, m := range spec.Methods {
		if u := strings.ToUpper(string(m)); declared[u] {
			out = append(out, u)
		}
	}
	return out
}
