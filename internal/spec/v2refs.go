package spec

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
)

const v2DefinitionsPrefix = "#/definitions/"

// linkV2Refs points every "#/definitions/..." schema reference in doc at its target so the
// schemas can be walked and validated in place. x-nullable is applied as Nullable.
func linkV2Refs(doc *openapi2.T) error {
	l := &v2Linker{defs: doc.Definitions, seen: map[*openapi3.Schema]bool{}}
	for _, name := range sortedKeys(doc.Definitions) {
		if err := l.link(doc.Definitions[name], 0); err != nil {
			return fmt.Errorf("definitions/%s: %w", name, err)
		}
	}
	for _, name := range sortedKeys(doc.Responses) {
		if r := doc.Responses[name]; r != nil {
			if err := l.link(r.Schema, 0); err != nil {
				return fmt.Errorf("responses/%s: %w", name, err)
			}
		}
	}
	for _, path := range sortedKeys(doc.Paths) {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			for status, r := range op.Responses {
				if r == nil {
					continue
				}
				if err := l.link(r.Schema, 0); err != nil {
					return fmt.Errorf("paths/%s/%s/responses/%s: %w", path, strings.ToLower(method), status, err)
				}
			}
		}
	}
	return nil
}

type v2Linker struct {
	defs map[string]*openapi3.SchemaRef
	seen map[*openapi3.Schema]bool
}

// maxRefChain bounds definitions that only alias other definitions.
const maxRefChain = 32

func (l *v2Linker) link(ref *openapi3.SchemaRef, depth int) error {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" && ref.Value == nil {
		if !strings.HasPrefix(ref.Ref, v2DefinitionsPrefix) {
			return fmt.Errorf("unsupported schema reference %q", ref.Ref)
		}
		if depth > maxRefChain {
			return fmt.Errorf("reference cycle at %q", ref.Ref)
		}
		target, ok := l.defs[strings.TrimPrefix(ref.Ref, v2DefinitionsPrefix)]
		if !ok || target == nil {
			return fmt.Errorf("unresolved reference %q", ref.Ref)
		}
		if err := l.link(target, depth+1); err != nil {
			return err
		}
		ref.Value = target.Value
		return nil
	}
	return l.walk(ref.Value)
}

func (l *v2Linker) walk(s *openapi3.Schema) error {
	if s == nil || l.seen[s] {
		return nil
	}
	l.seen[s] = true

	if v, ok := s.Extensions["x-nullable"]; ok {
		s.Nullable, _ = v.(bool)
	}

	children := make([]*openapi3.SchemaRef, 0, 2+len(s.Properties)+len(s.AllOf)+len(s.AnyOf)+len(s.OneOf))
	children = append(children, s.Items, s.Not, s.AdditionalProperties.Schema)
	for _, name := range sortedKeys(s.Properties) {
		children = append(children, s.Properties[name])
	}
	children = append(children, s.AllOf...)
	children = append(children, s.AnyOf...)
	children = append(children, s.OneOf...)
	for _, child := range children {
		if err := l.link(child, 0); err != nil {
			return err
		}
	}
	return nil
}
