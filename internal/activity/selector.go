package activity

import "strings"

// SelectorKind tags the variant held by a Selector.
type SelectorKind int

const (
	SelectNone      SelectorKind = iota // unrecognized input, matches nothing
	SelectAll                           // ""
	SelectGroup                         // "blog"
	SelectType                          // "@show"
	SelectGroupType                     // "blog@show"
	SelectPath                          // "/blog/42"
)

func (k SelectorKind) String() string {
	switch k {
	case SelectAll:
		return "all"
	case SelectGroup:
		return "group"
	case SelectType:
		return "type"
	case SelectGroupType:
		return "group+type"
	case SelectPath:
		return "path"
	default:
		return "none"
	}
}

// Selector is a parsed query scope.
type Selector struct {
	Kind  SelectorKind
	Group string
	Type  string
	Path  string
}

// ParseSelector parses the query grammar:
//
//	""            all records
//	"blog"        group blog
//	"@show"       type show
//	"blog@show"   group blog and type show
//	"/blog/42"    the record for that path ("blog/42" is the same path)
//
// Anything else parses to SelectNone.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{Kind: SelectAll}
	}
	// Any slash makes it a path, so "blog/1" finds what Track("blog/1") stored.
	if strings.Contains(s, "/") {
		return Selector{Kind: SelectPath, Path: NormalizePath(s)}
	}

	group, typ, hasAt := strings.Cut(s, "@")
	if !hasAt {
		if !validToken(group) {
			return Selector{}
		}
		return Selector{Kind: SelectGroup, Group: group}
	}
	if !validToken(typ) {
		return Selector{}
	}
	if group == "" {
		return Selector{Kind: SelectType, Type: typ}
	}
	if !validToken(group) {
		return Selector{}
	}
	return Selector{Kind: SelectGroupType, Group: group, Type: typ}
}

func validToken(s string) bool {
	return s != "" && !strings.ContainsAny(s, "/@?# \t\r\n")
}

// Match reports whether r falls inside the selector's scope.
func (sel Selector) Match(r Record) bool {
	switch sel.Kind {
	case SelectAll:
		return true
	case SelectGroup:
		return r.Group == sel.Group
	case SelectType:
		return r.Type == sel.Type
	case SelectGroupType:
		return r.Group == sel.Group && r.Type == sel.Type
	case SelectPath:
		return r.Path == sel.Path
	default:
		return false
	}
}

// String renders the selector back in query grammar. SelectNone renders as "!".
func (sel Selector) String() string {
	switch sel.Kind {
	case SelectAll:
		return ""
	case SelectGroup:
		return sel.Group
	case SelectType:
		return "@" + sel.Type
	case SelectGroupType:
		return sel.Group + "@" + sel.Type
	case SelectPath:
		return sel.Path
	default:
		return "!"
	}
}
