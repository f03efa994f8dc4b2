package actual

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// bodyFromText derives the body for validation from a raw textual body.
func bodyFromText(text, contentType string) any {
	if text == "" && contentType == "" {
		return nil
	}
	if looksLikeJSON(text) {
		var v any
		if err := json.Unmarshal([]byte(text), &v); err == nil {
			return v
		}
	}
	return text
}

func looksLikeJSON(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	switch t[0] {
	case '{', '[', '"', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	return t == "null" || t == "true" || t == "false"
}

func isEmptyObject(v any) bool {
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}

// headerValue finds name case-insensitively in a decoded headers value.
func headerValue(headers any, name string) string {
	switch h := headers.(type) {
	case http.Header:
		return h.Get(name)
	case map[string]string:
		for k, v := range h {
			if strings.EqualFold(k, name) {
				return v
			}
		}
	case map[string]any:
		for k, v := range h {
			if !strings.EqualFold(k, name) {
				continue
			}
			switch vv := v.(type) {
			case string:
				return vv
			case []any:
				if len(vv) > 0 {
					s, _ := vv[0].(string)
					return s
				}
			case []string:
				if len(vv) > 0 {
					return vv[0]
				}
			}
		}
	}
	return ""
}

// requestFrom reads {method, path} from the "req" or "request" entry of a raw response.
func requestFrom(raw map[string]any) Request {
	var r map[string]any
	for _, key := range []string{"req", "request", "config"} {
		if m, ok := raw[key].(map[string]any); ok {
			r = m
			break
		}
	}
	if r == nil {
		return Request{}
	}
	req := Request{Method: strings.ToUpper(stringOf(r["method"]))}
	for _, key := range []string{"path", "url", "uri"} {
		if p := stringOf(r[key]); p != "" {
			req.Path = p
			break
		}
	}
	return req
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func statusFrom(raw map[string]any, key string) (int, error) {
	v, ok := raw[key]
	if !ok {
		return 0, fmt.Errorf("actual: response has no %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("actual: %q is not an integer: %v", key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("actual: %q: %w", key, err)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("actual: %q: %w", key, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("actual: %q has unsupported type %T", key, v)
	}
}

func requestSummary(r Request) map[string]any {
	return map[string]any{"method": r.Method, "path": r.Path}
}
