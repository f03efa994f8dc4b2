package apispec

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// templateMatcher tests pathnames against one OpenAPI path template.
type templateMatcher struct {
	template string
	regex    *regexp.Regexp
}

// compileTemplate turns "/pets/{petId}" into ^/pets/[^/]+/?$. Literal text is quoted and
// an optional trailing slash is accepted.
func compileTemplate(template string) (*templateMatcher, error) {
	var buf strings.Builder
	buf.WriteString("^")
	rest := template
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			buf.WriteString(regexp.QuoteMeta(rest))
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			// An unclosed brace is plain text.
			buf.WriteString(regexp.QuoteMeta(rest))
			break
		}
		buf.WriteString(regexp.QuoteMeta(rest[:open]))
		buf.WriteString("[^/]+")
		rest = rest[open+end+1:]
	}
	if !strings.HasSuffix(template, "/") {
		buf.WriteString("/?")
	}
	buf.WriteString("$")
	re, err := regexp.Compile(buf.String())
	if err != nil {
		return nil, fmt.Errorf("compile path template %q: %w", template, err)
	}
	return &templateMatcher{template: template, regex: re}, nil
}

// literal reports whether pathname equals the template, allowing the same optional
// trailing slash the pattern accepts.
func (m *templateMatcher) literal(pathname string) bool {
	if m.template == pathname {
		return true
	}
	return pathname != "/" && !strings.HasSuffix(m.template, "/") &&
		m.template == strings.TrimSuffix(pathname, "/")
}

func (m *templateMatcher) match(pathname string) bool {
	return m.regex.MatchString(pathname)
}

// matcherSet holds the compiled templates of one document in declaration order.
type matcherSet []*templateMatcher

func newMatcherSet(templates []string) (matcherSet, error) {
	set := make(matcherSet, 0, len(templates))
	for _, t := range templates {
		m, err := compileTemplate(t)
		if err != nil {
			return nil, err
		}
		set = append(set, m)
	}
	return set, nil
}

// find applies the matching rules of MatchTemplate to precompiled templates.
func (set matcherSet) find(pathnames []string) (string, bool) {
	var found string
	ok := false
	for _, p := range pathnames {
		if p == "" {
			p = "/"
		}
		for _, m := range set {
			if m.literal(p) {
				return m.template, true
			}
			if m.match(p) {
				found, ok = m.template, true
			}
		}
	}
	return found, ok
}

// MatchTemplate returns the template among templates that matches one of pathnames.
//
// An exact literal match returns at once. Otherwise the last template that matches,
// scanning pathnames in order and templates in declaration order, wins; declaration
// order, not specificity, breaks ties between templated matches.
func MatchTemplate(pathnames, templates []string) (string, bool) {
	set, err := newMatcherSet(templates)
	if err != nil {
		return "", false
	}
	return set.find(pathnames)
}

// Pathname returns the path component of a request path, which may be an absolute URL and
// may carry a query string or fragment.
func Pathname(path string) string {
	// "//a/b" has no scheme, so it is a path and not a network-path reference.
	if strings.HasPrefix(path, "//") {
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			return path[:i]
		}
		return path
	}
	if u, err := url.Parse(path); err == nil {
		return u.EscapedPath()
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}
