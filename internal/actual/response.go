// Package actual normalizes observed HTTP responses from different client shapes into
// one Response model that the validator consumes.
package actual

import (
	"fmt"
	"net/http"
)

// Request is the request that produced a response. Path may carry a query string and
// may be an absolute URL.
type Request struct {
	Method string
	Path   string
}

// Response is the canonical view of an observed response.
type Response interface {
	Status() int
	Request() Request
	ContentType() string
	// BodyForValidation returns the decoded body, or nil when the response has no body.
	BodyForValidation() any
	// Summary returns the parts of the response worth printing in a diagnostic.
	Summary() map[string]any
}

// New wraps raw in the matching Response variant.
//
// Maps are told apart by shape: a "data" key marks a decoded-body response, a "status"
// key a response carrying both raw text and a parsed body, and anything else a
// server-side response carrying "statusCode".
func New(raw any) (Response, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("actual: response is nil")
	case Response:
		return v, nil
	case *http.Response:
		return newHTTPResponse(v)
	case map[string]any:
		if _, ok := v["data"]; ok {
			return newDataResponse(v)
		}
		if _, ok := v["status"]; ok {
			return newStatusResponse(v)
		}
		return newStatusCodeResponse(v)
	default:
		return nil, fmt.Errorf("actual: unsupported response type %T", raw)
	}
}
