package apispec

import (
	"context"
	"fmt"

	"github.com/mark3labs/openapi-validator/internal/spec"
)

// New returns the Spec for doc, chosen once by document version.
func New(doc *spec.Document) (Spec, error) {
	if doc == nil {
		return nil, fmt.Errorf("apispec: nil document")
	}
	switch {
	case doc.Version == spec.V2 && doc.V2 != nil:
		return newOpenAPI2Spec(doc)
	case doc.Version == spec.V3 && doc.V3 != nil:
		return newOpenAPI3Spec(doc)
	default:
		return nil, fmt.Errorf("apispec: unsupported document (%s)", doc.Version)
	}
}

// Load reads and validates the document at input and wraps it in a Spec.
func Load(ctx context.Context, input string, opts ...spec.Option) (Spec, error) {
	doc, err := spec.Load(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return New(doc)
}

// documentPaths returns the declared path order when it covers every path, and the
// sorted path keys otherwise.
func documentPaths[V any](order []string, paths map[string]V) []string {
	if len(order) == len(paths) {
		complete := true
		for _, p := range order {
			if _, ok := paths[p]; !ok {
				complete = false
				break
			}
		}
		if complete {
			return append([]string(nil), order...)
		}
	}
	return sortedKeys(paths)
}
