package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"snapcheck/internal/model"
)

const (
	stateSuffix    = ".state"
	newSuffix      = ".new"
	modifiedSuffix = ".modified"
	missingSuffix  = ".missing"
)

// TextFileStore keeps each snapshot as one plain-text state file in the
// archive state directory, named by its creation timestamp, with optional
// sibling artifacts listing the New/Missing/Modified records of the update
// that created it.
type TextFileStore struct {
	dir string
}

var _ Store = (*TextFileStore)(nil)

// NewTextFileStore creates a store over the given state directory,
// creating the directory if needed.
func NewTextFileStore(dir string) (*TextFileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &TextFileStore{dir: dir}, nil
}

// Latest implements Store.
func (s *TextFileStore) Latest() (*model.Snapshot, error) {
	stamps, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(stamps) == 0 {
		return nil, nil
	}
	return s.load(stamps[len(stamps)-1])
}

// List implements Store.
func (s *TextFileStore) List() ([]time.Time, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing state directory %s: %w", s.dir, err)
	}

	var stamps []time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, stateSuffix) {
			continue
		}
		t, err := ParseStamp(strings.TrimSuffix(name, stateSuffix))
		if err != nil {
			return nil, fmt.Errorf("unrecognized state file name %q: %w", name, err)
		}
		stamps = append(stamps, t)
	}

	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	return stamps, nil
}

// load reads one snapshot file.
func (s *TextFileStore) load(createdAt time.Time) (*model.Snapshot, error) {
	path := filepath.Join(s.dir, Stamp(createdAt)+stateSuffix)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening state file: %w", err)
	}
	defer f.Close()

	snap := model.NewSnapshot(createdAt)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		rec, err := parseRecord(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("reading state from %s: %w", path, err)
		}
		snap.Records[rec.Identity] = rec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading state from %s: %w", path, err)
	}

	return snap, nil
}

// Persist implements Store. The snapshot is written to a temp file and
// linked into place under its final name; the link fails if the name is
// already taken, which covers both atomicity and timestamp collision.
func (s *TextFileStore) Persist(snap *model.Snapshot) error {
	records := make([]model.FileRecord, 0, len(snap.Records))
	for _, rec := range snap.Records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Identity < records[j].Identity })

	return s.writeArtifact(Stamp(snap.CreatedAt)+stateSuffix, records)
}

// PersistReport implements Store.
func (s *TextFileStore) PersistReport(report *model.DiffReport, createdAt time.Time) error {
	stamp := Stamp(createdAt)

	if len(report.New) > 0 {
		if err := s.writeArtifact(stamp+newSuffix, report.New); err != nil {
			return err
		}
	}
	if len(report.Missing) > 0 {
		if err := s.writeArtifact(stamp+missingSuffix, report.Missing); err != nil {
			return err
		}
	}
	if len(report.Modified) > 0 {
		previous := make([]model.FileRecord, 0, len(report.Modified))
		for _, pair := range report.Modified {
			previous = append(previous, pair.Previous)
		}
		if err := s.writeArtifact(stamp+modifiedSuffix, previous); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Store.
func (s *TextFileStore) Close() error { return nil }

// writeArtifact writes records to a temp file and links it into place.
func (s *TextFileStore) writeArtifact(name string, records []model.FileRecord) error {
	finalPath := filepath.Join(s.dir, name)
	if _, err := os.Stat(finalPath); err == nil {
		return fmt.Errorf("%s: %w", name, ErrSnapshotExists)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriterSize(tmp, 1024*1024)
	for _, rec := range records {
		if _, err := w.WriteString(formatRecord(rec) + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	// Link, not rename: linking fails if the final name exists, so a
	// concurrent or clock-colliding writer cannot silently overwrite.
	if err := os.Link(tmpPath, finalPath); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s: %w", name, ErrSnapshotExists)
		}
		return fmt.Errorf("publishing %s: %w", name, err)
	}
	return nil
}
