package activity

import (
	"net/url"
	"path"
	"strings"
)

// NormalizePath reduces p to the form records are keyed by: query and
// fragment removed, leading slash ensured, duplicate slashes and dot
// segments cleaned, no trailing slash except for "/". An empty or
// whitespace-only input yields "".
func NormalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Classify derives the group and page type of a normalized path.
//
//	/                   root   index
//	/blog               blog   index
//	/blog/create        blog   create
//	/blog/42            blog   show
//	/blog/42/edit       blog   edit
//	/blog/42/comments   blog   index
func Classify(p string) (group, typ string) {
	segs := segments(p)
	if len(segs) == 0 {
		return GroupRoot, TypeIndex
	}

	group = segs[0]
	last := segs[len(segs)-1]
	switch {
	case len(segs) > 1 && (last == "create" || last == "new"):
		typ = TypeCreate
	case len(segs) > 1 && last == "edit":
		typ = TypeEdit
	case len(segs)%2 == 1:
		typ = TypeIndex
	default:
		typ = TypeShow
	}
	return group, typ
}

func segments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// ParseRoute builds a Route from a raw path or URL, splitting off the
// query string. Fragments are dropped. Only input with a "scheme://" prefix
// is parsed as a URL; anything else is taken as path text, so "//a/b" and
// "blog:1" keep their path.
func ParseRoute(raw string) Route {
	raw = strings.TrimSpace(raw)
	if hasScheme(raw) {
		if u, err := url.Parse(raw); err == nil {
			r := Route{Path: u.Path, Query: parseQuery(u.RawQuery)}
			if r.Path == "" {
				r.Path = "/"
			}
			return r
		}
	}

	raw, _, _ = strings.Cut(raw, "#")
	p, rawQuery, _ := strings.Cut(raw, "?")
	return Route{Path: p, Query: parseQuery(rawQuery)}
}

func hasScheme(raw string) bool {
	i := strings.Index(raw, "://")
	return i > 0 && !strings.ContainsAny(raw[:i], "/?#")
}

// parseQuery keeps whatever pairs parse; nil when there are none.
func parseQuery(rawQuery string) Query {
	q, _ := url.ParseQuery(rawQuery)
	if len(q) == 0 {
		return nil
	}
	return Query(q)
}
