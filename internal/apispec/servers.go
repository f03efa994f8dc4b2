package apispec

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ServerMatch is a declared server whose base path prefixes a request pathname.
type ServerMatch struct {
	// URL is the server URL as declared, variables unexpanded.
	URL string
	// BasePath is the first concrete base path of the server that prefixed the pathname.
	BasePath string
}

// defaultServers stands in for an absent or empty servers list.
var defaultServers = openapi3.Servers{{URL: "/"}}

func effectiveServers(servers openapi3.Servers) openapi3.Servers {
	if len(servers) == 0 {
		return defaultServers
	}
	return servers
}

// ConcreteURLs expands the server's {variable} placeholders into every combination of
// values. Each variable contributes its default followed by its enum, deduplicated;
// variables are expanded in name order.
func ConcreteURLs(server *openapi3.Server) []string {
	if server == nil {
		return nil
	}
	urls := []string{server.URL}
	for _, name := range sortedKeys(server.Variables) {
		values := variableValues(server.Variables[name])
		if len(values) == 0 {
			continue
		}
		placeholder := "{" + name + "}"
		next := make([]string, 0, len(urls)*len(values))
		for _, u := range urls {
			for _, value := range values {
				next = append(next, strings.ReplaceAll(u, placeholder, value))
			}
		}
		urls = next
	}
	return urls
}

func variableValues(v *openapi3.ServerVariable) []string {
	if v == nil {
		return nil
	}
	candidates := v.Enum
	if v.Default != "" || len(v.Enum) == 0 {
		candidates = append([]string{v.Default}, v.Enum...)
	}
	seen := make(map[string]bool, len(candidates))
	var values []string
	for _, value := range candidates {
		if !seen[value] {
			seen[value] = true
			values = append(values, value)
		}
	}
	return values
}

// serverBasePath extracts the path of a concrete server URL: whatever follows the
// authority of an absolute URL, or the whole string of a relative one.
func serverBasePath(concrete string) string {
	p := concrete
	if i := strings.Index(concrete, "//"); i >= 0 {
		rest := concrete[i+2:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			p = rest[j:]
		} else {
			p = ""
		}
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}

// MatchingServers returns, in declaration order, the servers with a concrete base path
// that prefixes pathname.
func MatchingServers(servers openapi3.Servers, pathname string) []ServerMatch {
	var matches []ServerMatch
	for _, server := range servers {
		for _, concrete := range ConcreteURLs(server) {
			if bp := serverBasePath(concrete); strings.HasPrefix(pathname, bp) {
				matches = append(matches, ServerMatch{URL: server.URL, BasePath: bp})
				break
			}
		}
	}
	return matches
}

// stripBasePath removes basePath from the front of pathname; "/" strips nothing.
func stripBasePath(pathname, basePath string) string {
	if basePath == "/" || basePath == "" {
		return pathname
	}
	return strings.TrimPrefix(pathname, basePath)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
