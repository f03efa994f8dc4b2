package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError       ErrorCode = "InputError"
	NetworkError     ErrorCode = "NetworkError"
	ParseError       ErrorCode = "ParseError"
	InvalidSpecError ErrorCode = "InvalidSpecError"
	ConversionError  ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs controls whether file:// refs are allowed for external references.
	// Default false, but automatically allowed when the root input is a local file
	// to enable typical multi-file specs.
	AllowFileRefs bool
	// Logger receives loader diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout:   10 * time.Second,
		MaxRetries:    3,
		BackoffBase:   200 * time.Millisecond,
		AllowFileRefs: false,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option    { return func(s *Settings) { s.AllowFileRefs = allow } }
func WithLogger(logger *slog.Logger) Option  { return func(s *Settings) { s.Logger = logger } }

func newSettings(opts []Option) Settings {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = DefaultSettings().Logger
	}
	return settings
}

// Load reads, validates, and returns an OpenAPI 2.0 or 3.x document.
//
// input may be a filesystem path or an http/https URL. file:// URLs are blocked
// by default (use WithAllowFileRefs(true) when loading from local files and you
// want to permit file-based external refs).
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := newSettings(opts)

	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked by default", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}

		raw, fetchErr := fetchWithRetry(ctx, input, settings)
		if fetchErr != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, fetchErr), Location: input, Cause: fetchErr}
		}
		return loadData(ctx, raw, u, false, settings)
	}

	// Treat as local filesystem path.
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, rerr := os.ReadFile(abs)
	if rerr != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, rerr), Location: abs, Cause: rerr}
	}
	return loadData(ctx, raw, &url.URL{Path: filepath.ToSlash(abs)}, true, settings)
}

// LoadFromData parses and validates an in-memory JSON or YAML document.
// location is used in error messages and may be empty.
func LoadFromData(ctx context.Context, data []byte, location string, opts ...Option) (*Document, error) {
	settings := newSettings(opts)
	var loc *url.URL
	if location != "" {
		loc = &url.URL{Path: filepath.ToSlash(location)}
	}
	return loadData(ctx, data, loc, false, settings)
}

// FromObject loads a document that has already been decoded into plain Go values,
// e.g. the result of unmarshalling a spec file into map[string]any.
func FromObject(ctx context.Context, obj map[string]any, opts ...Option) (*Document, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: encode document: %v", err), Cause: err}
	}
	return LoadFromData(ctx, data, "", opts...)
}

// FromV2 wraps a Swagger 2.0 document built in code. The document is re-encoded so the
// caller's value is never modified.
func FromV2(ctx context.Context, doc *openapi2.T, opts ...Option) (*Document, error) {
	if doc == nil {
		return nil, &SpecError{Code: InputError, Message: "spec: nil document"}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: encode document: %v", err), Cause: err}
	}
	return LoadFromData(ctx, data, "", opts...)
}

// FromV3 wraps an OpenAPI 3 document built in code. The document is re-encoded so the
// caller's value is never modified.
func FromV3(ctx context.Context, doc *openapi3.T, opts ...Option) (*Document, error) {
	if doc == nil {
		return nil, &SpecError{Code: InputError, Message: "spec: nil document"}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: encode document: %v", err), Cause: err}
	}
	return LoadFromData(ctx, data, "", opts...)
}

func loadData(ctx context.Context, raw []byte, location *url.URL, rootIsFile bool, settings Settings) (*Document, error) {
	where := ""
	if location != nil {
		where = location.String()
	}
	logger := settings.Logger.With("location", where)

	version, derr := detectSpecVersion(raw)
	if derr != nil {
		return nil, &SpecError{Code: ParseError, Message: derr.Error(), Location: where, Cause: derr}
	}
	logger.Debug("detected spec version", "version", version.String())

	declared := declaredPathOrder(raw)

	switch version {
	case V3:
		loader := newLoader(settings, rootIsFile)
		var doc *openapi3.T
		var err error
		if location != nil {
			doc, err = loader.LoadFromDataWithPath(raw, location)
		} else {
			doc, err = loader.LoadFromData(raw)
		}
		if err != nil {
			return nil, mapValidateOrParseErr(err, where)
		}
		if err := doc.Validate(ctx); err != nil {
			return nil, mapValidateOrParseErr(err, where)
		}
		d := &Document{Version: V3, V3: doc, Location: where}
		d.PathOrder = orderPaths(declared, sortedKeys(doc.Paths))
		logger.Debug("loaded document", "paths", len(d.PathOrder), "servers", len(doc.Servers))
		return d, nil
	case V2:
		if err := validateV2(ctx, raw, where); err != nil {
			return nil, err
		}
		var doc openapi2.T
		if err := sigsyaml.Unmarshal(raw, &doc); err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Location: where, Cause: err}
		}
		if err := linkV2Refs(&doc); err != nil {
			return nil, &SpecError{Code: InvalidSpecError, Message: err.Error(), Location: where, Cause: err}
		}
		d := &Document{Version: V2, V2: &doc, Location: where}
		d.PathOrder = orderPaths(declared, sortedKeys(doc.Paths))
		logger.Debug("loaded document", "paths", len(d.PathOrder), "basePath", doc.BasePath)
		return d, nil
	default:
		return nil, &SpecError{Code: ParseError, Message: "spec: unknown or unsupported OpenAPI/Swagger version", Location: where}
	}
}

// validateV2 checks a Swagger 2.0 document structurally by converting a private copy to
// OpenAPI 3 and running the v3 validator over it.
func validateV2(ctx context.Context, raw []byte, where string) error {
	// Preprocess incompatible v2 constructs to improve conversion success.
	if fixed, changed, _ := preprocessV2ForCompatibility(raw); changed {
		raw = fixed
	}
	v3doc, err := convertV2ToV3(raw)
	if err != nil {
		return &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: where, Cause: err}
	}
	// The converter leaves Paths nil for "paths: {}", which the v3 validator rejects.
	if v3doc.Paths == nil {
		v3doc.Paths = openapi3.Paths{}
	}
	if err := v3doc.Validate(ctx); err != nil {
		return mapValidateOrParseErr(err, where)
	}
	return nil
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	// Allow file refs only when configured or when loading from a local file root.
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(path)
		case "http", "https":
			req, err := http.NewRequest(http.MethodGet, uri.String(), nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// detectSpecVersion returns V3 for OpenAPI v3, V2 for Swagger v2, else error.
func detectSpecVersion(data []byte) (Version, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse spec: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return V3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return V2, nil
		}
	}
	return 0, fmt.Errorf("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

// convertV2ToV3 decodes a fresh copy of the document on every call: openapi2conv rewrites
// schema refs in place.
func convertV2ToV3(data []byte) (*openapi3.T, error) {
	var v2 openapi2.T
	if err := sigsyaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return fmt.Errorf("transient http error %d", resp.StatusCode)
			}
			if resp.StatusCode >= 300 {
				snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				return retry.Unrecoverable(fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
			}
			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			settings.Logger.Warn("spec fetch failed", "url", rawURL, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := InvalidSpecError
	// Heuristics: some loader errors are parse errors.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") || strings.Contains(lower, "unmarshal") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	// Fallback: parse from error message if a pointer literal appears.
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}
