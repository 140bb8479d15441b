package web

import (
	"net/url"
	"strings"
)

// segmentKind classifies one segment of a route pattern. The ordering of the
// constants encodes match specificity: literal segments outrank named
// parameters, which outrank wildcards.
type segmentKind uint8

const (
	segmentWildcard segmentKind = iota
	segmentParam
	segmentLiteral
)

// segment is one compiled element of a route pattern: a literal string, a
// named parameter (":id"), or a trailing wildcard ("*rest").
type segment struct {
	kind segmentKind

	// value is the literal text for literal segments, or the capture
	// identifier for param and wildcard segments.
	value string
}

// pattern is a compiled route pattern. Patterns are compiled once at
// registration and are read-only afterwards, so concurrent matching needs
// no synchronization.
type pattern struct {
	raw      string
	segments []segment

	// wildcard reports whether the final segment captures the remaining
	// path suffix, including an empty suffix.
	wildcard bool
}

// parsePattern compiles a route pattern string. Supported segment forms:
//
//	/users          literal
//	/users/:id      named parameter, matches one non-empty segment
//	/files/*rest    wildcard, must be last, captures the joined remainder
//
// It returns an InvalidPatternError when the pattern does not start with
// "/", a parameter or wildcard identifier is empty or malformed, a wildcard
// is not in final position, or two captures share an identifier.
func parsePattern(raw string) (*pattern, error) {
	if raw == "" || raw[0] != '/' {
		return nil, &InvalidPatternError{Pattern: raw, Reason: "must start with /"}
	}

	p := &pattern{raw: raw}
	seen := make(map[string]struct{})

	parts := splitPath(raw)
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if err := checkIdentifier(raw, name); err != nil {
				return nil, err
			}
			if _, dup := seen[name]; dup {
				return nil, &InvalidPatternError{Pattern: raw, Reason: "duplicate identifier " + name}
			}
			seen[name] = struct{}{}
			p.segments = append(p.segments, segment{kind: segmentParam, value: name})

		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return nil, &InvalidPatternError{Pattern: raw, Reason: "wildcard must be the final segment"}
			}
			name := part[1:]
			if err := checkIdentifier(raw, name); err != nil {
				return nil, err
			}
			if _, dup := seen[name]; dup {
				return nil, &InvalidPatternError{Pattern: raw, Reason: "duplicate identifier " + name}
			}
			seen[name] = struct{}{}
			p.segments = append(p.segments, segment{kind: segmentWildcard, value: name})
			p.wildcard = true

		default:
			p.segments = append(p.segments, segment{kind: segmentLiteral, value: part})
		}
	}

	return p, nil
}

// checkIdentifier validates a capture identifier: non-empty, restricted to
// letters, digits and underscore.
func checkIdentifier(pattern, name string) error {
	if name == "" {
		return &InvalidPatternError{Pattern: pattern, Reason: "empty identifier"}
	}
	for _, r := range name {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return &InvalidPatternError{Pattern: pattern, Reason: "invalid identifier " + name}
		}
	}
	return nil
}

// splitPath splits a request path or pattern into segments. A single leading
// empty segment from the absolute-path slash and a single trailing empty
// segment from a trailing slash are dropped, so "" and "/" both yield zero
// segments. Interior consecutive slashes are NOT collapsed: they produce
// empty segments, which only fail to match (literals never equal them and
// parameters reject empty captures).
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// match matches request path segments against the pattern, returning the
// captured parameter bindings. Parameter values are percent-decoded per
// RFC 3986 Section 2.1; an undecodable or empty value fails the match.
// A wildcard binds the joined remaining suffix, which may be empty.
func (p *pattern) match(segs []string) (map[string]string, bool) {
	if p.wildcard {
		if len(segs) < len(p.segments)-1 {
			return nil, false
		}
	} else if len(segs) != len(p.segments) {
		return nil, false
	}

	var params map[string]string
	bind := func(name, value string) {
		if params == nil {
			params = make(map[string]string)
		}
		params[name] = value
	}

	for i, spec := range p.segments {
		switch spec.kind {
		case segmentLiteral:
			if segs[i] != spec.value {
				return nil, false
			}

		case segmentParam:
			if segs[i] == "" {
				return nil, false
			}
			value, err := url.PathUnescape(segs[i])
			if err != nil {
				return nil, false
			}
			bind(spec.value, value)

		case segmentWildcard:
			bind(spec.value, strings.Join(segs[i:], "/"))
			return params, true
		}
	}

	return params, true
}

// rankEnd is the virtual rank of a pattern position past an exact (non
// wildcard) pattern end. Exact termination outranks every segment kind, so
// "/files" beats "/files/*rest" for the path "/files".
const rankEnd = 3

// rankAt returns the specificity rank of pattern position i. Positions past
// the end of a wildcard pattern keep the wildcard rank, since the wildcard
// consumes them; positions past an exact pattern end rank highest.
func (p *pattern) rankAt(i int) int {
	if i < len(p.segments) {
		return int(p.segments[i].kind)
	}
	if p.wildcard {
		return int(segmentWildcard)
	}
	return rankEnd
}

// compareSpecificity orders two patterns by match precedence: segment kinds
// are compared left to right and the first point of difference wins, with
// literal outranking parameter outranking wildcard. Returns a positive value
// when p is more specific than q, negative when less, and zero when the
// patterns are indistinguishable under this ordering.
func (p *pattern) compareSpecificity(q *pattern) int {
	n := max(len(p.segments), len(q.segments))
	for i := 0; i < n; i++ {
		if d := p.rankAt(i) - q.rankAt(i); d != 0 {
			return d
		}
	}
	return 0
}

// conflicts reports whether two patterns are ambiguous: a request path could
// match both with neither outranking the other. This requires identical
// shape (length and wildcard-ness), identical segment kinds at every
// position, and identical literal values. Parameter and wildcard identifier
// names do not disambiguate: "/a/:x/b" conflicts with "/a/:y/b".
func (p *pattern) conflicts(q *pattern) bool {
	if len(p.segments) != len(q.segments) || p.wildcard != q.wildcard {
		return false
	}
	for i, spec := range p.segments {
		other := q.segments[i]
		if spec.kind != other.kind {
			return false
		}
		if spec.kind == segmentLiteral && spec.value != other.value {
			return false
		}
	}
	return true
}

// String returns the original pattern text.
func (p *pattern) String() string {
	return p.raw
}
