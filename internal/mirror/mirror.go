// Package mirror pushes persisted snapshot artifacts to an optional
// off-site replica. The local store stays authoritative: a mirror failure
// is reported but never fails the update that produced the snapshot.
package mirror

import "io"

// Mirror is a write-only replica of snapshot artifacts.
type Mirror interface {
	// Put stores a named artifact. Storing the same name twice is an
	// error: mirrored snapshots are as append-only as local ones.
	// size is the number of bytes that will be read from r.
	Put(name string, r io.Reader, size int64) error

	// ValidateSetup verifies that the mirror is accessible and properly
	// configured.
	ValidateSetup() error
}
