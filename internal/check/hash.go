package check

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"snapcheck/internal/model"
)

// hashBufferSize is the read buffer each hash worker reuses across files.
const hashBufferSize = 4 * 1024 * 1024

// Hasher computes the content digest of a file. Implementations may keep
// internal buffers and are not safe for concurrent use; the worker pool
// creates one per worker.
type Hasher interface {
	// Hash reads the file end to end and returns its SHA-256 digest and
	// the number of bytes read. Partial or sampled hashing is never done.
	Hash(path string) (model.Digest, int64, error)
}

// SHA256Hasher is the standard full-content Hasher.
type SHA256Hasher struct {
	buf []byte
}

var _ Hasher = (*SHA256Hasher)(nil)

// NewSHA256Hasher creates a hasher with its own read buffer.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{buf: make([]byte, hashBufferSize)}
}

// Hash implements Hasher.
func (h *SHA256Hasher) Hash(path string) (model.Digest, int64, error) {
	var digest model.Digest

	f, err := os.Open(path)
	if err != nil {
		return digest, 0, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	n, err := io.CopyBuffer(hasher, f, h.buf)
	if err != nil {
		return digest, n, fmt.Errorf("reading %q: %w", path, err)
	}

	copy(digest[:], hasher.Sum(nil))
	return digest, n, nil
}

// hashResult pairs a scan entry with its resolved record or failure.
type hashResult struct {
	entry  model.ScanEntry
	record model.FileRecord
	err    error
}

// hashAll resolves records for all entries on a bounded worker pool.
// Each worker owns a hasher (and thus a buffer) and writes results into its
// own slots of a preallocated slice, so no locking is needed and completion
// order cannot affect the outcome. workers <= 0 means one per CPU.
func hashAll(entries []model.ScanEntry, workers int, now func() time.Time) []hashResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	results := make([]hashResult, len(entries))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hasher := NewSHA256Hasher()
			for i := range jobs {
				entry := entries[i]
				record, err := resolveRecord(hasher, entry, now)
				results[i] = hashResult{entry: entry, record: record, err: err}
			}
		}()
	}

	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// resolveRecord hashes one file and builds its fresh record. Metadata is
// re-read after hashing so the recorded size/mtime describe the bytes that
// were actually digested, as closely as the filesystem allows.
func resolveRecord(h Hasher, entry model.ScanEntry, now func() time.Time) (model.FileRecord, error) {
	digest, size, err := h.Hash(entry.AbsPath)
	if err != nil {
		return model.FileRecord{}, err
	}

	modifiedAt := entry.ModifiedAt
	if fi, err := os.Stat(entry.AbsPath); err == nil {
		modifiedAt = fi.ModTime()
	}

	t := now()
	return model.FileRecord{
		Identity:   entry.Identity,
		Size:       size,
		ModifiedAt: modifiedAt,
		Digest:     digest,
		FullyRead:  t,
		LastSeen:   t,
	}, nil
}
