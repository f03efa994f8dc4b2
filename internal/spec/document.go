package spec

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Document is a loaded, structurally valid OpenAPI document. Exactly one of V2 and V3 is
// set, matching Version.
type Document struct {
	Version Version
	V2      *openapi2.T
	V3      *openapi3.T
	// PathOrder lists the keys of the paths object in declaration order. kin-openapi keeps
	// paths in Go maps, so the order is recovered from the raw document.
	PathOrder []string
	// Location is the file path or URL the document was read from, if any.
	Location string
}

// declaredPathOrder returns the keys of the top-level "paths" mapping in the order they
// appear in data. It returns nil when data cannot be parsed or has no paths.
func declaredPathOrder(data []byte) []string {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != "paths" {
			continue
		}
		paths := top.Content[i+1]
		if paths.Kind != yaml.MappingNode {
			return nil
		}
		keys := make([]string, 0, len(paths.Content)/2)
		for j := 0; j+1 < len(paths.Content); j += 2 {
			keys = append(keys, paths.Content[j].Value)
		}
		return keys
	}
	return nil
}

// orderPaths keeps the declared keys that exist, then appends any remaining keys sorted.
func orderPaths(declared, present []string) []string {
	have := make(map[string]bool, len(present))
	for _, k := range present {
		have[k] = true
	}
	out := make([]string, 0, len(present))
	used := make(map[string]bool, len(present))
	for _, k := range declared {
		if have[k] && !used[k] {
			out = append(out, k)
			used[k] = true
		}
	}
	var rest []string
	for _, k := range present {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
