package apispec

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/openapi-validator/internal/spec"
)

const v2ResponsesPrefix = "#/responses/"

// OpenAPI2Spec resolves responses against a Swagger 2.0 document.
type OpenAPI2Spec struct {
	base
	doc *openapi2.T
}

func newOpenAPI2Spec(doc *spec.Document) (*OpenAPI2Spec, error) {
	b, err := newBase(spec.V2, documentPaths(doc.PathOrder, doc.V2.Paths))
	if err != nil {
		return nil, err
	}
	s := &OpenAPI2Spec{base: b, doc: doc.V2}
	s.base.v = s
	return s, nil
}

// BasePath returns the declared basePath, or "" when the document declares none.
func (s *OpenAPI2Spec) BasePath() string { return s.doc.BasePath }

func (s *OpenAPI2Spec) ServerURLs() []string               { return nil }
func (s *OpenAPI2Spec) MatchingServerURLs(string) []string { return nil }
func (s *OpenAPI2Spec) DefinesServers() bool               { return false }
func (s *OpenAPI2Spec) ComponentDefinitions() string       { return "definitions" }
func (s *OpenAPI2Spec) rangeKeys() bool                    { return false }

func (s *OpenAPI2Spec) SchemaObject(name string) (*openapi3.Schema, bool) {
	ref, ok := s.doc.Definitions[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, false
	}
	return ref.Value, true
}

func (s *OpenAPI2Spec) findPathMatchingPathname(pathname string) (string, error) {
	basePath := strings.TrimRight(s.doc.BasePath, "/")
	if basePath != "" {
		if !strings.HasPrefix(pathname, basePath) {
			return "", newValidationError(BasePathNotFound,
				fmt.Sprintf("%s does not start with basePath %s", pathname, s.doc.BasePath))
		}
		pathname = stripBasePath(pathname, basePath)
	}
	path, ok := s.matchers.find([]string{pathname})
	if !ok {
		return "", newValidationError(PathNotFound, fmt.Sprintf("no path matches %s", pathname))
	}
	return path, nil
}

func (s *OpenAPI2Spec) operation(path, method string) *openapi2.Operation {
	item := s.doc.Paths[path]
	if item == nil {
		return nil
	}
	return item.Operations()[method]
}

func (s *OpenAPI2Spec) methods(path string) []string {
	declared := map[string]bool{}
	if item := s.doc.Paths[path]; item != nil {
		for m := range item.Operations() {
			declared[m] = true
		}
	}
	return canonicalMethods(declared)
}

func (s *OpenAPI2Spec) statuses(path, method string) ([]string, bool) {
	op := s.operation(path, method)
	if op == nil {
		return nil, false
	}
	return sortedKeys(op.Responses), true
}

func (s *OpenAPI2Spec) responseDefinition(path, method, key string) (*ResponseDefinition, error) {
	resp := s.operation(path, method).Responses[key]
	def := &ResponseDefinition{Key: key}
	if resp != nil && resp.Ref != "" {
		def.Ref = resp.Ref
		name, ok := strings.CutPrefix(resp.Ref, v2ResponsesPrefix)
		target := s.doc.Responses[name]
		if !ok || target == nil {
			return nil, fmt.Errorf("%s %s: response %s: unresolved reference %q", method, path, key, resp.Ref)
		}
		resp = target
	}
	if resp == nil {
		return nil, fmt.Errorf("%s %s: response %s is empty", method, path, key)
	}
	def.Description = resp.Description
	def.Definition = resp
	if resp.Schema != nil {
		if resp.Schema.Value == nil {
			return nil, fmt.Errorf("%s %s: response %s: unresolved schema reference %q", method, path, key, resp.Schema.Ref)
		}
		def.Schemas = map[string]*openapi3.Schema{"": resp.Schema.Value}
	}
	return def, nil
}
