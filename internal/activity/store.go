package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultKey is the storage slot used when Options.Key is empty.
const DefaultKey = "activity"

var errNoBackend = errors.New("no storage backend configured")

// Backend is the key-value contract the store persists through.
// storage.Backend implementations satisfy it.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Options configures a Store.
type Options struct {
	Key      string        // storage slot, DefaultKey when empty
	Max      int           // record cap, 0 means unlimited
	Exclude  []string      // see Matcher
	HalfLife time.Duration // score half-life, DefaultHalfLife when zero

	Now    func() time.Time
	Logger *slog.Logger
}

// Store is the bounded set of activity records persisted under one
// backend key. Every mutation reads the slot, applies the change and
// writes the whole set back; a mutex serializes those cycles within the
// process. Writers in other processes are not coordinated.
type Store struct {
	backend  Backend
	key      string
	max      int
	halfLife time.Duration
	exclude  *Matcher
	now      func() time.Time
	logger   *slog.Logger

	mu sync.Mutex
}

// NewStore creates a Store over backend. A nil backend yields a store whose
// reads are empty and whose writes fail.
func NewStore(backend Backend, opts Options) *Store {
	s := &Store{
		backend:  backend,
		key:      opts.Key,
		max:      opts.Max,
		halfLife: opts.HalfLife,
		now:      opts.Now,
		logger:   opts.Logger,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.max < 0 {
		s.max = 0
	}
	if s.halfLife <= 0 {
		s.halfLife = DefaultHalfLife
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "activity", "key", s.key)
	s.exclude = NewMatcher(opts.Exclude, s.logger)
	return s
}

// Key returns the storage slot name.
func (s *Store) Key() string { return s.key }

// ExcludeRules returns the exclusion rules in effect; invalid globs are not included.
func (s *Store) ExcludeRules() []string { return s.exclude.Rules() }

// Excluded reports whether path would be skipped by Upsert.
func (s *Store) Excluded(path string) bool {
	return s.exclude.Match(NormalizePath(path))
}

// Load returns all stored records. Missing, unreadable or malformed data
// yields an empty set.
func (s *Store) Load(ctx context.Context) Records {
	recs, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("activity load failed, treating store as empty", "error", err)
		return Records{}
	}
	return recs
}

// Save overwrites the slot with recs.
func (s *Store) Save(ctx context.Context, recs Records) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, recs)
}

// Upsert records a visit to path. An existing record has its count
// incremented and lastVisited refreshed; a new one starts at count 1, after
// evicting the lowest-scoring records if the store is full. Excluded or
// empty paths are not recorded and report false with a nil error. If the
// slot cannot be read, nothing is written.
func (s *Store) Upsert(ctx context.Context, path string, meta Meta) (Record, bool, error) {
	path = NormalizePath(path)
	if path == "" || s.exclude.Match(path) {
		return Record{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx)
	if err != nil {
		return Record{}, false, err
	}

	now := s.now().UTC()
	rec, exists := recs[path]
	if exists {
		rec.Count++
		rec.LastVisited = now
		rec.Meta = meta
		// max may have been lowered since the set was saved.
		s.evictFor(recs, now, path, 0)
	} else {
		s.evictFor(recs, now, path, 1)
		group, typ := Classify(path)
		rec = Record{
			Path:        path,
			Count:       1,
			LastVisited: now,
			Meta:        meta,
			Group:       group,
			Type:        typ,
		}
	}
	recs[path] = rec

	if err := s.save(ctx, recs); err != nil {
		return Record{}, false, err
	}

	rec.Score = Score(rec.Count, rec.LastVisited, now, s.halfLife)
	return rec, true, nil
}

// evictFor drops the lowest-ranked records other than keep until the set
// has room for extra more under max.
func (s *Store) evictFor(recs Records, now time.Time, keep string, extra int) {
	if s.max == 0 || len(recs)+extra <= s.max {
		return
	}
	ranked := s.rank(recs, now, func(r Record) bool { return r.Path != keep })
	for len(recs)+extra > s.max && len(ranked) > 0 {
		victim := ranked[len(ranked)-1]
		ranked = ranked[:len(ranked)-1]
		delete(recs, victim.Path)
		s.logger.Debug("evicted activity record", "path", victim.Path, "score", victim.Score)
	}
}

// Remove deletes the given paths and returns how many existed.
func (s *Store) Remove(ctx context.Context, paths []string) (int, error) {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[NormalizePath(p)] = struct{}{}
	}
	return s.removeWhere(ctx, func(r Record) bool {
		_, ok := set[r.Path]
		return ok
	})
}

// removeWhere deletes every record matching pred in one read-modify-write cycle.
func (s *Store) removeWhere(ctx context.Context, pred func(Record) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for p, r := range recs {
		if pred(r) {
			delete(recs, p)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.save(ctx, recs); err != nil {
		return 0, err
	}
	return n, nil
}

// Stats summarizes the stored records.
func (s *Store) Stats(ctx context.Context) Stats {
	recs := s.Load(ctx)
	st := Stats{Total: len(recs), Max: s.max}

	groups := make(map[string]int)
	for _, r := range recs {
		st.Visits += int64(r.Count)
		if st.OldestVisit.IsZero() || r.LastVisited.Before(st.OldestVisit) {
			st.OldestVisit = r.LastVisited
		}
		if r.LastVisited.After(st.NewestVisit) {
			st.NewestVisit = r.LastVisited
		}
		groups[r.Group]++
	}

	for g, c := range groups {
		st.Groups = append(st.Groups, GroupCount{Group: g, Count: c})
	}
	sort.Slice(st.Groups, func(i, j int) bool {
		if st.Groups[i].Count != st.Groups[j].Count {
			return st.Groups[i].Count > st.Groups[j].Count
		}
		return st.Groups[i].Group < st.Groups[j].Group
	})
	return st
}

// rank scores the records accepted by keep (all when nil) at now and sorts
// them best first: score descending, then most recent visit, then path.
func (s *Store) rank(recs Records, now time.Time, keep func(Record) bool) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if keep != nil && !keep(r) {
			continue
		}
		r.Score = Score(r.Count, r.LastVisited, now, s.halfLife)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastVisited.Equal(b.LastVisited) {
			return a.LastVisited.After(b.LastVisited)
		}
		return a.Path < b.Path
	})
	return out
}

// storedRecord is the persisted form of a Record.
type storedRecord struct {
	Path        string    `json:"path"`
	Count       int       `json:"count"`
	LastVisited time.Time `json:"lastVisited"`
	Meta        Meta      `json:"meta"`
	Group       string    `json:"group"`
	Type        string    `json:"type"`
}

func (s *Store) load(ctx context.Context) (Records, error) {
	if s.backend == nil {
		return nil, errNoBackend
	}

	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", s.key, err)
	}
	if !ok || raw == "" {
		return Records{}, nil
	}

	recs, err := decodeRecords(raw)
	if err != nil {
		s.logger.Warn("discarding malformed activity data", "error", err, "bytes", len(raw))
		return Records{}, nil
	}
	return recs, nil
}

func (s *Store) save(ctx context.Context, recs Records) error {
	if s.backend == nil {
		return errNoBackend
	}

	data, err := encodeRecords(recs)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("write slot %q: %w", s.key, err)
	}
	return nil
}

func encodeRecords(recs Records) (string, error) {
	stored := make(map[string]storedRecord, len(recs))
	for p, r := range recs {
		stored[p] = storedRecord{
			Path:        p,
			Count:       r.Count,
			LastVisited: r.LastVisited,
			Meta:        r.Meta,
			Group:       r.Group,
			Type:        r.Type,
		}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeRecords parses a stored slot. Keys are re-normalized and group and
// type re-derived, so data written by older versions converges on the
// current rules; entries that normalize to the same path are merged.
func decodeRecords(raw string) (Records, error) {
	var stored map[string]storedRecord
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, err
	}

	recs := make(Records, len(stored))
	for key, sr := range stored {
		p := NormalizePath(key)
		if p == "" || sr.Count < 1 {
			continue
		}
		group, typ := Classify(p)
		rec := Record{
			Path:        p,
			Count:       sr.Count,
			LastVisited: sr.LastVisited,
			Meta:        sr.Meta,
			Group:       group,
			Type:        typ,
		}
		if prev, ok := recs[p]; ok {
			rec.Count += prev.Count
			if prev.LastVisited.After(rec.LastVisited) {
				rec.LastVisited = prev.LastVisited
				rec.Meta = prev.Meta
			}
		}
		recs[p] = rec
	}
	return recs, nil
}
