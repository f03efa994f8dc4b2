// Package apiassert provides testify-style assertions that HTTP responses and values
// satisfy an OpenAPI 2 or 3 document.
//
//	api := apiassert.New(t, "testdata/openapi.yaml")
//	resp, _ := http.Get(srv.URL + "/items/42")
//	api.SatisfiesAPISpec(resp)
package apiassert

import (
	"context"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/openapi-validator/internal/actual"
	"github.com/mark3labs/openapi-validator/internal/apispec"
	"github.com/mark3labs/openapi-validator/internal/diagnostics"
	"github.com/mark3labs/openapi-validator/internal/spec"
)

// Response is the normalized response model accepted by the assertions, alongside
// *http.Response and client-shaped maps.
type Response = actual.Response

// Option configures how the document is loaded.
type Option = spec.Option

// Re-exported loader options.
var (
	WithLogger      = spec.WithLogger
	WithHTTPTimeout = spec.WithHTTPTimeout
	WithMaxRetries  = spec.WithMaxRetries
)

type tHelper interface {
	Helper()
}

// Asserter checks values against one loaded document.
type Asserter struct {
	t    require.TestingT
	spec apispec.Spec
}

// New loads the document at path (a file or http(s) URL) and fails the test immediately
// if it cannot be loaded or is not a valid OpenAPI document.
func New(t require.TestingT, path string, opts ...Option) *Asserter {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	doc, err := spec.Load(context.Background(), path, opts...)
	if err != nil {
		require.NoError(t, err, "load API spec %s", path)
		return nil
	}
	return NewFromDocument(t, doc)
}

// NewFromDocument wraps an already loaded document.
func NewFromDocument(t require.TestingT, doc *spec.Document) *Asserter {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	s, err := apispec.New(doc)
	if err != nil {
		require.NoError(t, err, "build API spec")
		return nil
	}
	return &Asserter{t: t, spec: s}
}

// Spec exposes the resolved document for custom checks.
func (a *Asserter) Spec() apispec.Spec { return a.spec }

// SatisfiesAPISpec asserts that raw matches a response declared by the document: its
// server, path, method and status are declared and its body satisfies the schema.
// raw may be a *http.Response, a Response, or a client-shaped map.
func (a *Asserter) SatisfiesAPISpec(raw any, msgAndArgs ...any) bool {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	resp, verr, ok := a.validate(raw)
	if !ok {
		return false
	}
	if verr != nil {
		return assert.Fail(a.t, diagnostics.ResponseMessage(a.spec, resp, verr), msgAndArgs...)
	}
	return true
}

// NotSatisfiesAPISpec asserts that raw fails validation at any stage.
func (a *Asserter) NotSatisfiesAPISpec(raw any, msgAndArgs ...any) bool {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	resp, verr, ok := a.validate(raw)
	if !ok {
		return false
	}
	if verr == nil {
		return assert.Fail(a.t, diagnostics.NegatedResponseMessage(a.spec, resp), msgAndArgs...)
	}
	return true
}

// SatisfiesSchemaInAPISpec asserts that obj satisfies the named schema. An undefined
// schema name stops the test.
func (a *Asserter) SatisfiesSchemaInAPISpec(obj any, name string, msgAndArgs ...any) bool {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	verr, ok := a.validateObject(obj, name)
	if !ok {
		return false
	}
	if verr != nil {
		return assert.Fail(a.t, diagnostics.SchemaMessage(a.spec, name, obj, verr), msgAndArgs...)
	}
	return true
}

// NotSatisfiesSchemaInAPISpec asserts that obj does not satisfy the named schema.
func (a *Asserter) NotSatisfiesSchemaInAPISpec(obj any, name string, msgAndArgs ...any) bool {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	verr, ok := a.validateObject(obj, name)
	if !ok {
		return false
	}
	if verr == nil {
		return assert.Fail(a.t, diagnostics.SchemaMessage(a.spec, name, obj, nil), msgAndArgs...)
	}
	return true
}

func (a *Asserter) validate(raw any) (actual.Response, *apispec.ValidationError, bool) {
	resp, err := actual.New(raw)
	if err != nil {
		return nil, nil, assert.NoError(a.t, err)
	}
	verr, err := a.spec.ValidateResponse(resp)
	if err != nil {
		return nil, nil, assert.NoError(a.t, err, "malformed API spec")
	}
	return resp, verr, true
}

func (a *Asserter) validateObject(obj any, name string) (*apispec.ValidationError, bool) {
	schema, ok := a.spec.SchemaObject(name)
	if !ok {
		require.Fail(a.t, diagnostics.MissingSchemaMessage(a.spec, name))
		return nil, false
	}
	verr, err := a.spec.ValidateObject(obj, schema)
	if err != nil {
		return nil, assert.NoError(a.t, err)
	}
	return verr, true
}
