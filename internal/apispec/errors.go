package apispec

// ErrorCode names the resolution stage at which a response failed validation. Codes are
// ordered by stage; only the first failing stage is ever reported.
type ErrorCode int

const (
	ServerNotFound ErrorCode = iota + 1
	BasePathNotFound
	PathNotFound
	MethodNotFound
	StatusNotFound
	InvalidBody
	InvalidObject
)

func (c ErrorCode) String() string {
	switch c {
	case ServerNotFound:
		return "SERVER_NOT_FOUND"
	case BasePathNotFound:
		return "BASE_PATH_NOT_FOUND"
	case PathNotFound:
		return "PATH_NOT_FOUND"
	case MethodNotFound:
		return "METHOD_NOT_FOUND"
	case StatusNotFound:
		return "STATUS_NOT_FOUND"
	case InvalidBody:
		return "INVALID_BODY"
	case InvalidObject:
		return "INVALID_OBJECT"
	default:
		return "UNKNOWN"
	}
}

// ValidationError reports why a response or object does not satisfy the document.
// Message is an optional detail, e.g. the joined schema violations for InvalidBody.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

func newValidationError(code ErrorCode, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
