package share

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher filters remote paths with a shell-style glob. The glob is
// compiled without separator runes, so `*` crosses directory boundaries —
// the same semantics as fnmatch, which existing filter patterns rely on.
type Matcher struct {
	pattern string
	g       glob.Glob
}

// NewMatcher compiles pattern. The empty pattern matches every path.
func NewMatcher(pattern string) (*Matcher, error) {
	m := &Matcher{pattern: pattern}
	if pattern == "" {
		return m, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	m.g = g
	return m, nil
}

// Match reports whether remotePath satisfies the pattern. A single leading
// slash is stripped before matching, so patterns are written against
// root-relative paths. Matching is case-sensitive.
func (m *Matcher) Match(remotePath string) bool {
	if m.g == nil {
		return true
	}
	return m.g.Match(strings.TrimPrefix(remotePath, "/"))
}

// Pattern returns the original pattern text, empty for match-all.
func (m *Matcher) Pattern() string {
	return m.pattern
}
