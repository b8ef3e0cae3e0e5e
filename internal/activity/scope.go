package activity

import "context"

// Scope is a read view over the records matching a Selector. It holds no
// records itself; every call reads the store and scores at the current time.
type Scope struct {
	store *Store
	sel   Selector
}

// Selector returns the parsed selector behind the scope.
func (sc *Scope) Selector() Selector { return sc.sel }

// Get returns the matching records, best first, at most limit of them when
// limit > 0. The result is never nil.
func (sc *Scope) Get(ctx context.Context, limit int) []Record {
	if sc.sel.Kind == SelectNone {
		return []Record{}
	}
	recs := sc.store.Load(ctx)
	ranked := sc.store.rank(recs, sc.store.now(), sc.sel.Match)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// IDs returns the paths of Get in the same order.
func (sc *Scope) IDs(ctx context.Context, limit int) []string {
	recs := sc.Get(ctx, limit)
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.Path
	}
	return ids
}

// Count returns the number of matching records.
func (sc *Scope) Count(ctx context.Context) int {
	if sc.sel.Kind == SelectNone {
		return 0
	}
	n := 0
	for _, r := range sc.store.Load(ctx) {
		if sc.sel.Match(r) {
			n++
		}
	}
	return n
}

// Remove deletes every record in scope and returns how many were deleted.
// Storage failures are logged and reported as zero.
func (sc *Scope) Remove(ctx context.Context) int {
	if sc.sel.Kind == SelectNone {
		return 0
	}
	n, err := sc.store.removeWhere(ctx, sc.sel.Match)
	if err != nil {
		sc.store.logger.Warn("activity remove failed", "selector", sc.sel.String(), "error", err)
		return 0
	}
	return n
}
