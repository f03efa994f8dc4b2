package spec

import "strconv"

// Version is the OpenAPI major version of a loaded document.
type Version int

const (
	V2 Version = 2
	V3 Version = 3
)

func (v Version) String() string {
	switch v {
	case V2:
		return "OpenAPI 2.0"
	case V3:
		return "OpenAPI 3.x"
	default:
		return "unknown version " + strconv.Itoa(int(v))
	}
}

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// Methods lists the operation keys of a path item in the order diagnostics print them.
var Methods = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}
