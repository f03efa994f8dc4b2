package actual

import "net/http"

// dataResponse holds an already decoded body: {status, headers, data, request}.
type dataResponse struct {
	status      int
	req         Request
	contentType string
	data        any
}

func newDataResponse(raw map[string]any) (*dataResponse, error) {
	status, err := statusFrom(raw, "status")
	if err != nil {
		return nil, err
	}
	return &dataResponse{
		status:      status,
		req:         requestFrom(raw),
		contentType: headerValue(raw["headers"], "content-type"),
		data:        raw["data"],
	}, nil
}

func (r *dataResponse) Status() int         { return r.status }
func (r *dataResponse) Request() Request    { return r.req }
func (r *dataResponse) ContentType() string { return r.contentType }

func (r *dataResponse) BodyForValidation() any {
	switch d := r.data.(type) {
	case string:
		return bodyFromText(d, r.contentType)
	case []byte:
		return bodyFromText(string(d), r.contentType)
	default:
		return d
	}
}

func (r *dataResponse) Summary() map[string]any {
	return map[string]any{"status": r.status, "req": requestSummary(r.req), "body": r.data}
}

// statusResponse carries raw text next to a parsed body: {status, header(s), body, text, req}.
// body is the client's parsed guess and text the raw payload.
type statusResponse struct {
	status      int
	req         Request
	contentType string
	body        any
	text        string
	hasText     bool
}

func newStatusResponse(raw map[string]any) (*statusResponse, error) {
	status, err := statusFrom(raw, "status")
	if err != nil {
		return nil, err
	}
	headers := raw["headers"]
	if headers == nil {
		headers = raw["header"]
	}
	text, hasText := raw["text"].(string)
	return &statusResponse{
		status:      status,
		req:         requestFrom(raw),
		contentType: headerValue(headers, "content-type"),
		body:        raw["body"],
		text:        text,
		hasText:     hasText,
	}, nil
}

func (r *statusResponse) Status() int         { return r.status }
func (r *statusResponse) Request() Request    { return r.req }
func (r *statusResponse) ContentType() string { return r.contentType }

func (r *statusResponse) BodyForValidation() any {
	if r.hasText && r.text == "" && r.contentType == "" {
		return nil
	}
	// An empty parsed body next to a real text payload means the client did not parse it.
	if isEmptyObject(r.body) && r.text != "" && r.text != "{}" {
		return r.text
	}
	if s, ok := r.body.(string); ok {
		return bodyFromText(s, r.contentType)
	}
	return r.body
}

func (r *statusResponse) Summary() map[string]any {
	s := map[string]any{"status": r.status, "req": requestSummary(r.req), "body": r.body}
	if r.hasText {
		s["text"] = r.text
	}
	return s
}

// statusCodeResponse is a request-style response: {statusCode, headers, body, req}, where
// body is usually the undecoded payload.
type statusCodeResponse struct {
	status      int
	req         Request
	contentType string
	body        any
}

func newStatusCodeResponse(raw map[string]any) (*statusCodeResponse, error) {
	status, err := statusFrom(raw, "statusCode")
	if err != nil {
		return nil, err
	}
	return &statusCodeResponse{
		status:      status,
		req:         requestFrom(raw),
		contentType: headerValue(raw["headers"], "content-type"),
		body:        raw["body"],
	}, nil
}

func (r *statusCodeResponse) Status() int         { return r.status }
func (r *statusCodeResponse) Request() Request    { return r.req }
func (r *statusCodeResponse) ContentType() string { return r.contentType }

func (r *statusCodeResponse) BodyForValidation() any {
	if r.req.Method == http.MethodHead {
		return nil
	}
	switch b := r.body.(type) {
	case nil:
		return nil
	case string:
		return bodyFromText(b, r.contentType)
	case []byte:
		return bodyFromText(string(b), r.contentType)
	default:
		return b
	}
}

func (r *statusCodeResponse) Summary() map[string]any {
	return map[string]any{"status": r.status, "req": requestSummary(r.req), "body": r.body}
}
