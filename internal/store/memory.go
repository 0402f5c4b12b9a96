package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"snapcheck/internal/model"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string]*model.Snapshot  // keyed by stamp
	reports   map[string]model.DiffReport // keyed by stamp
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*model.Snapshot),
		reports:   make(map[string]model.DiffReport),
	}
}

// Latest implements Store.
func (s *MemoryStore) Latest() (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *model.Snapshot
	for _, snap := range s.snapshots {
		if latest == nil || snap.CreatedAt.After(latest.CreatedAt) {
			latest = snap
		}
	}
	if latest == nil {
		return nil, nil
	}
	return cloneSnapshot(latest), nil
}

// Persist implements Store.
func (s *MemoryStore) Persist(snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := Stamp(snap.CreatedAt)
	if _, ok := s.snapshots[stamp]; ok {
		return fmt.Errorf("%s: %w", stamp, ErrSnapshotExists)
	}
	s.snapshots[stamp] = cloneSnapshot(snap)
	return nil
}

// PersistReport implements Store.
func (s *MemoryStore) PersistReport(report *model.DiffReport, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[Stamp(createdAt)] = *report
	return nil
}

// List implements Store.
func (s *MemoryStore) List() ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := make([]time.Time, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		stamps = append(stamps, snap.CreatedAt)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	return stamps, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Report returns the stored report for a creation time, for test assertions.
func (s *MemoryStore) Report(createdAt time.Time) (model.DiffReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[Stamp(createdAt)]
	return r, ok
}

func cloneSnapshot(snap *model.Snapshot) *model.Snapshot {
	c := model.NewSnapshot(snap.CreatedAt)
	for k, v := range snap.Records {
		c.Records[k] = v
	}
	return c
}
