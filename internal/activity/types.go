// Package activity records page visits into a bounded, backend-persisted
// set and answers scoped queries ranked by a frequency/recency score.
package activity

import (
	"encoding/json"
	"time"
)

// Page roles reported in Record.Type.
const (
	TypeIndex  = "index"
	TypeShow   = "show"
	TypeCreate = "create"
	TypeEdit   = "edit"
)

// GroupRoot is the group of the root path "/".
const GroupRoot = "root"

// Record is the stored state of one visited path.
type Record struct {
	Path        string    `json:"path"`
	Count       int       `json:"count"`
	LastVisited time.Time `json:"lastVisited"`
	Meta        Meta      `json:"meta"`
	Group       string    `json:"group"`
	Type        string    `json:"type"`

	// Score is computed when records are read through a Scope; it is never persisted.
	Score float64 `json:"score"`
}

// Records maps normalized paths to their record.
type Records map[string]Record

// Meta describes the visited route. It is passed through untouched.
type Meta struct {
	Name   string            `json:"name,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Query  Query             `json:"query,omitempty"`
}

// Query holds route query parameters. It decodes both {"k":"v"} and
// {"k":["v","w"]} forms.
type Query map[string][]string

func (q *Query) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*q = nil
		return nil
	}

	out := make(Query, len(raw))
	for k, v := range raw {
		var many []string
		if err := json.Unmarshal(v, &many); err == nil {
			out[k] = many
			continue
		}
		var one *string
		if err := json.Unmarshal(v, &one); err != nil {
			return err
		}
		if one == nil {
			out[k] = nil
		} else {
			out[k] = []string{*one}
		}
	}
	*q = out
	return nil
}

// Route is the descriptor passed to Tracker.Track. Only Path is required.
type Route struct {
	Path   string            `json:"path"`
	Name   string            `json:"name,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Query  Query             `json:"query,omitempty"`
}

// meta copies the route's descriptive fields so the stored record never
// aliases caller-owned maps.
func (r Route) meta() Meta {
	m := Meta{Name: r.Name}
	if len(r.Params) > 0 {
		m.Params = make(map[string]string, len(r.Params))
		for k, v := range r.Params {
			m.Params[k] = v
		}
	}
	if len(r.Query) > 0 {
		m.Query = make(Query, len(r.Query))
		for k, v := range r.Query {
			m.Query[k] = append([]string(nil), v...)
		}
	}
	return m
}

// Stats summarizes the stored records.
type Stats struct {
	Total       int
	Max         int
	Visits      int64
	OldestVisit time.Time
	NewestVisit time.Time
	Groups      []GroupCount
}

// GroupCount pairs a group with the number of records in it.
type GroupCount struct {
	Group string
	Count int
}
