// Package store persists snapshots of an archive's known file state.
// The history is append-only: snapshots are written once, named by their
// creation timestamp, and never rewritten or deleted. "Latest" is always a
// fresh query against the store, never cached process state.
package store

import (
	"errors"
	"time"

	"snapcheck/internal/model"
)

// ErrSnapshotExists is returned when persisting a snapshot whose creation
// timestamp collides with one already stored.
var ErrSnapshotExists = errors.New("snapshot with this timestamp already exists")

// Store is the snapshot persistence interface.
type Store interface {
	// Latest returns the snapshot with the greatest creation time, or
	// (nil, nil) when the archive has never been updated.
	Latest() (*model.Snapshot, error)

	// Persist writes a new immutable snapshot. The write is all-or-nothing:
	// a failure leaves no partial snapshot behind.
	Persist(s *model.Snapshot) error

	// PersistReport writes the New/Missing/Modified classifications as
	// auxiliary artifacts tied to the same timestamp, only for the
	// categories that are non-empty.
	PersistReport(report *model.DiffReport, createdAt time.Time) error

	// List returns the creation times of all stored snapshots, ascending.
	List() ([]time.Time, error)

	// Close releases any underlying resources.
	Close() error
}

// stampFormat derives a snapshot's persisted name from its creation time.
// Lexical order of stamps equals chronological order.
const stampFormat = "20060102 150405"

// Stamp formats a creation time as a snapshot name.
func Stamp(t time.Time) string { return t.Format(stampFormat) }

// ParseStamp recovers a creation time from a snapshot name.
func ParseStamp(s string) (time.Time, error) {
	return time.ParseInLocation(stampFormat, s, time.Local)
}
