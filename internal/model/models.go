package model

import "time"

// DigestSize is the length in bytes of a content digest (SHA-256).
const DigestSize = 32

// Digest is the SHA-256 fingerprint of a file's full content.
type Digest [DigestSize]byte

// FileRecord is one file's known state at a point in time.
type FileRecord struct {
	Identity   string    // Normalized relative path, forward-slash separated. Unique per snapshot.
	Size       int64     // Byte count
	ModifiedAt time.Time // Last modification time, platform-native precision
	Digest     Digest    // SHA-256 of the file content
	FullyRead  time.Time // When the content was last read end-to-end and hashed
	LastSeen   time.Time // When the file was last observed on disk
}

// Snapshot is an immutable set of FileRecords representing the archive's
// believed state at one timestamp. Snapshots are created once per update,
// persisted, and superseded (never mutated) by the next update.
type Snapshot struct {
	CreatedAt time.Time
	Records   map[string]FileRecord // keyed by Identity
}

// NewSnapshot creates an empty snapshot with the given creation time.
func NewSnapshot(createdAt time.Time) *Snapshot {
	return &Snapshot{
		CreatedAt: createdAt,
		Records:   make(map[string]FileRecord),
	}
}

// ScanEntry is one regular file observed by the scan producer.
// AbsPath is where the file can be opened; Identity is its stable key.
type ScanEntry struct {
	Identity   string
	AbsPath    string
	Size       int64
	ModifiedAt time.Time
}

// ModifiedPair holds the previous and current record of a modified file.
type ModifiedPair struct {
	Previous FileRecord
	Current  FileRecord
}

// FileError is a per-file failure that degraded classification without
// aborting the run.
type FileError struct {
	Identity string
	Err      error
}

// DiffReport classifies every identity from the union of the previous
// snapshot and a fresh scan. New, Unchanged, Modified and Missing partition
// that union; Renamed is populated only when rename suppression is enabled,
// in which case those identities are absent from Missing.
type DiffReport struct {
	New       []FileRecord
	Unchanged []FileRecord
	Modified  []ModifiedPair
	Missing   []FileRecord
	Renamed   []FileRecord
	Errors    []FileError

	// FilesRead and BytesRead count the files whose content was actually
	// read and hashed this run (reused records cost no I/O).
	FilesRead int
	BytesRead int64
}

// HasFindings reports whether any category of concern is non-empty.
func (r *DiffReport) HasFindings() bool {
	return len(r.New) > 0 || len(r.Missing) > 0 || len(r.Modified) > 0 || len(r.Errors) > 0
}

// VerifyResult is the outcome of checking an external directory against the
// archive's latest snapshot.
type VerifyResult struct {
	// OK is true iff nothing is unmatched or mismatched, no per-file error
	// occurred, and (unless missing was ignored) nothing is missing from
	// the scan.
	OK bool

	// Unmatched are scanned identities with no acceptable counterpart in
	// the reference (exact mode: no record at that identity; content-only
	// mode: digest unknown to the archive).
	Unmatched []string

	// Mismatched are scanned identities whose reference record exists but
	// holds a different digest. Only produced in exact mode; counts as a
	// failure like Unmatched, reported separately.
	Mismatched []string

	// MissingFromReference are reference identities not represented in the
	// scan. Empty when the check is skipped via IgnoreMissing.
	MissingFromReference []string

	Errors []FileError

	// FilesRead and BytesRead count hashed files; verify always reads
	// everything it scans.
	FilesRead int
	BytesRead int64
}

// ContentIndex maps a digest to every identity holding that content in a
// snapshot. Derived per verify invocation; not persisted.
type ContentIndex map[Digest][]string

// BuildContentIndex indexes a snapshot's records by digest.
func BuildContentIndex(s *Snapshot) ContentIndex {
	idx := make(ContentIndex, len(s.Records))
	for identity, rec := range s.Records {
		idx[rec.Digest] = append(idx[rec.Digest], identity)
	}
	return idx
}

// Contains reports whether any record in the index holds the given digest.
func (idx ContentIndex) Contains(d Digest) bool {
	_, ok := idx[d]
	return ok
}
