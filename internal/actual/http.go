package actual

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
)

// httpResponse wraps a *http.Response. The body is read once at construction and put back
// so the caller can still read it.
type httpResponse struct {
	status      int
	req         Request
	contentType string
	text        string
}

func newHTTPResponse(resp *http.Response) (*httpResponse, error) {
	r := &httpResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
	}
	if resp.Request != nil {
		r.req.Method = resp.Request.Method
		if resp.Request.URL != nil {
			r.req.Path = resp.Request.URL.RequestURI()
		}
	}
	if resp.Body != nil {
		raw, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("actual: read response body: %w", err)
		}
		resp.Body = io.NopCloser(bytes.NewReader(raw))
		r.text = string(raw)
	}
	return r, nil
}

// FromRecorder adapts a recorded handler response. req is the request the handler served.
func FromRecorder(req *http.Request, rec *httptest.ResponseRecorder) (Response, error) {
	resp := rec.Result()
	resp.Request = req
	return newHTTPResponse(resp)
}

func (r *httpResponse) Status() int         { return r.status }
func (r *httpResponse) Request() Request    { return r.req }
func (r *httpResponse) ContentType() string { return r.contentType }

func (r *httpResponse) BodyForValidation() any {
	if r.req.Method == http.MethodHead {
		return nil
	}
	return bodyFromText(r.text, r.contentType)
}

func (r *httpResponse) Summary() map[string]any {
	return map[string]any{"status": r.status, "req": requestSummary(r.req), "body": r.text}
}
