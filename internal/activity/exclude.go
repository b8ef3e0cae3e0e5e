package activity

import (
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a path is excluded from tracking.
//
// A plain rule such as "/admin" matches that path and everything below it
// ("/admin", "/admin/users") but not "/administer". Rules containing glob
// metacharacters are matched with doublestar ("/account/**", "/*/edit").
type Matcher struct {
	prefixes []string
	globs    []string
}

// NewMatcher compiles rules. Empty rules are ignored; invalid globs are
// logged and skipped.
func NewMatcher(rules []string, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Matcher{}
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		if strings.ContainsAny(rule, "*?[{") {
			if !strings.HasPrefix(rule, "/") {
				rule = "/" + rule
			}
			if !doublestar.ValidatePattern(rule) {
				logger.Warn("skipping invalid exclude pattern", "pattern", rule)
				continue
			}
			m.globs = append(m.globs, rule)
			continue
		}
		m.prefixes = append(m.prefixes, NormalizePath(rule))
	}
	return m
}

// Match reports whether the normalized path p is excluded.
func (m *Matcher) Match(p string) bool {
	if m == nil {
		return false
	}
	for _, prefix := range m.prefixes {
		if p == prefix {
			return true
		}
		if prefix != "/" && strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	for _, g := range m.globs {
		if ok, _ := doublestar.Match(g, p); ok {
			return true
		}
	}
	return false
}

// Rules returns the compiled rules, plain prefixes first.
func (m *Matcher) Rules() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.prefixes)+len(m.globs))
	out = append(out, m.prefixes...)
	return append(out, m.globs...)
}
