package apispec

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/openapi-validator/internal/spec"
)

const v3ResponsesPrefix = "#/components/responses/"

// OpenAPI3Spec resolves responses against an OpenAPI 3.x document.
type OpenAPI3Spec struct {
	base
	doc *openapi3.T
}

func newOpenAPI3Spec(doc *spec.Document) (*OpenAPI3Spec, error) {
	b, err := newBase(spec.V3, documentPaths(doc.PathOrder, doc.V3.Paths))
	if err != nil {
		return nil, err
	}
	s := &OpenAPI3Spec{base: b, doc: doc.V3}
	s.base.v = s
	return s, nil
}

func (s *OpenAPI3Spec) BasePath() string             { return "" }
func (s *OpenAPI3Spec) ComponentDefinitions() string { return "components" }
func (s *OpenAPI3Spec) rangeKeys() bool              { return true }

// DefinesServers reports whether the document declares at least one server.
func (s *OpenAPI3Spec) DefinesServers() bool { return len(s.doc.Servers) > 0 }

// ServerURLs lists the effective server URLs as declared, variables unexpanded.
func (s *OpenAPI3Spec) ServerURLs() []string {
	servers := effectiveServers(s.doc.Servers)
	urls := make([]string, 0, len(servers))
	for _, server := range servers {
		urls = append(urls, server.URL)
	}
	return urls
}

func (s *OpenAPI3Spec) MatchingServerURLs(pathname string) []string {
	var urls []string
	for _, m := range MatchingServers(effectiveServers(s.doc.Servers), pathname) {
		urls = append(urls, m.URL)
	}
	return urls
}

func (s *OpenAPI3Spec) SchemaObject(name string) (*openapi3.Schema, bool) {
	if s.doc.Components == nil {
		return nil, false
	}
	ref, ok := s.doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, false
	}
	return ref.Value, true
}

func (s *OpenAPI3Spec) findPathMatchingPathname(pathname string) (string, error) {
	matches := MatchingServers(effectiveServers(s.doc.Servers), pathname)
	if len(matches) == 0 {
		return "", newValidationError(ServerNotFound, fmt.Sprintf("no server matches %s", pathname))
	}
	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, stripBasePath(pathname, m.BasePath))
	}
	path, ok := s.matchers.find(candidates)
	if !ok {
		return "", newValidationError(PathNotFound, fmt.Sprintf("no path matches %s", pathname))
	}
	return path, nil
}

func (s *OpenAPI3Spec) operation(path, method string) *openapi3.Operation {
	item := s.doc.Paths[path]
	if item == nil {
		return nil
	}
	return item.Operations()[method]
}

func (s *OpenAPI3Spec) methods(path string) []string {
	declared := map[string]bool{}
	if item := s.doc.Paths[path]; item != nil {
		for m := range item.Operations() {
			declared[m] = true
		}
	}
	return canonicalMethods(declared)
}

func (s *OpenAPI3Spec) statuses(path, method string) ([]string, bool) {
	op := s.operation(path, method)
	if op == nil {
		return nil, false
	}
	return sortedKeys(op.Responses), true
}

func (s *OpenAPI3Spec) responseDefinition(path, method, key string) (*ResponseDefinition, error) {
	ref := s.operation(path, method).Responses[key]
	if ref == nil {
		return nil, fmt.Errorf("%s %s: response %s is empty", method, path, key)
	}
	def := &ResponseDefinition{Key: key, Ref: ref.Ref}
	resp := ref.Value
	if ref.Ref != "" {
		if name, ok := strings.CutPrefix(ref.Ref, v3ResponsesPrefix); ok && s.doc.Components != nil {
			if target := s.doc.Components.Responses[name]; target != nil && target.Value != nil {
				resp = target.Value
			}
		}
	}
	if resp == nil {
		return nil, fmt.Errorf("%s %s: response %s: unresolved reference %q", method, path, key, ref.Ref)
	}
	if resp.Description != nil {
		def.Description = *resp.Description
	}
	def.Definition = resp
	if len(resp.Content) > 0 {
		def.Schemas = make(map[string]*openapi3.Schema, len(resp.Content))
		for mt, media := range resp.Content {
			var schema *openapi3.Schema
			if media != nil && media.Schema != nil {
				if media.Schema.Value == nil {
					return nil, fmt.Errorf("%s %s: response %s: unresolved schema reference %q", method, path, key, media.Schema.Ref)
				}
				schema = media.Schema.Value
			}
			def.Schemas[mt] = schema
		}
	}
	return def, nil
}
