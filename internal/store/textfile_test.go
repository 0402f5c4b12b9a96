package store

import (
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"snapcheck/internal/model"
)

func testSnapshot(createdAt time.Time, identities ...string) *model.Snapshot {
	snap := model.NewSnapshot(createdAt)
	for _, id := range identities {
		snap.Records[id] = model.FileRecord{
			Identity:   id,
			Size:       int64(len(id)),
			ModifiedAt: time.Unix(1700000000, 123456789),
			Digest:     sha256.Sum256([]byte(id)),
			FullyRead:  createdAt,
			LastSeen:   createdAt,
		}
	}
	return snap
}

func TestTextFileStore_RoundTrip(t *testing.T) {
	store, err := NewTextFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	snap := testSnapshot(at, "a.jpg", "2024/b.jpg", "has space.jpg")

	if err := store.Persist(snap); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	got, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got == nil {
		t.Fatal("Latest() = nil after Persist")
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, at)
	}
	if len(got.Records) != len(snap.Records) {
		t.Fatalf("loaded %d records, want %d", len(got.Records), len(snap.Records))
	}
	for id, want := range snap.Records {
		rec, ok := got.Records[id]
		if !ok {
			t.Errorf("record %q missing after round trip", id)
			continue
		}
		if rec.Digest != want.Digest || rec.Size != want.Size || !rec.ModifiedAt.Equal(want.ModifiedAt) {
			t.Errorf("record %q = %+v, want %+v", id, rec, want)
		}
	}
}

func TestTextFileStore_EmptyDirectory(t *testing.T) {
	store, err := NewTextFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	snap, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if snap != nil {
		t.Errorf("Latest() = %+v, want nil on empty store", snap)
	}

	stamps, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stamps) != 0 {
		t.Errorf("List() = %v, want empty", stamps)
	}
}

func TestTextFileStore_StampCollision(t *testing.T) {
	store, err := NewTextFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	if err := store.Persist(testSnapshot(at, "a.jpg")); err != nil {
		t.Fatal(err)
	}

	err = store.Persist(testSnapshot(at, "b.jpg"))
	if !errors.Is(err, ErrSnapshotExists) {
		t.Errorf("second Persist error = %v, want ErrSnapshotExists", err)
	}

	// The original snapshot survives the rejected write.
	got, err := store.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Records["a.jpg"]; !ok || len(got.Records) != 1 {
		t.Errorf("surviving records = %v, want exactly a.jpg", got.Records)
	}
}

func TestTextFileStore_ListOrdersByCreation(t *testing.T) {
	store, err := NewTextFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Persist out of chronological order.
	times := []time.Time{
		time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local),
		time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local),
		time.Date(2026, 8, 30, 8, 30, 0, 0, time.Local),
	}
	for _, at := range times {
		if err := store.Persist(testSnapshot(at, "a.jpg")); err != nil {
			t.Fatal(err)
		}
	}

	stamps, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(stamps) != 3 {
		t.Fatalf("List() returned %d stamps, want 3", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if !stamps[i-1].Before(stamps[i]) {
			t.Errorf("List() not ascending: %v", stamps)
		}
	}

	latest, err := store.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if !latest.CreatedAt.Equal(times[0]) {
		t.Errorf("Latest().CreatedAt = %v, want %v", latest.CreatedAt, times[0])
	}
}

func TestTextFileStore_PersistReport(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTextFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	snap := testSnapshot(at, "fresh.jpg", "mod.jpg")
	prev := testSnapshot(at.Add(-time.Hour), "mod.jpg", "gone.jpg")

	report := &model.DiffReport{
		New:     []model.FileRecord{snap.Records["fresh.jpg"]},
		Missing: []model.FileRecord{prev.Records["gone.jpg"]},
		Modified: []model.ModifiedPair{{
			Previous: prev.Records["mod.jpg"],
			Current:  snap.Records["mod.jpg"],
		}},
	}

	if err := store.PersistReport(report, at); err != nil {
		t.Fatalf("PersistReport() error = %v", err)
	}

	stamp := Stamp(at)
	for _, suffix := range []string{newSuffix, missingSuffix, modifiedSuffix} {
		if _, err := os.Stat(filepath.Join(dir, stamp+suffix)); err != nil {
			t.Errorf("side file %s%s not written: %v", stamp, suffix, err)
		}
	}

	// Modified side files hold the previous record, the one the archive
	// is about to lose.
	data, err := os.ReadFile(filepath.Join(dir, stamp+modifiedSuffix))
	if err != nil {
		t.Fatal(err)
	}
	rec, err := parseRecord(string(data[:len(data)-1]))
	if err != nil {
		t.Fatalf("parsing modified side file: %v", err)
	}
	if rec.Digest != prev.Records["mod.jpg"].Digest {
		t.Error("modified side file holds the current digest, want the previous one")
	}
}

func TestTextFileStore_EmptyReportWritesNoSideFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTextFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	unchanged := testSnapshot(at, "a.jpg")
	report := &model.DiffReport{Unchanged: []model.FileRecord{unchanged.Records["a.jpg"]}}

	if err := store.Persist(unchanged); err != nil {
		t.Fatal(err)
	}
	if err := store.PersistReport(report, at); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("state directory = %v, want only the state file", names)
	}
}

func TestTextFileStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTextFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	if err := store.Persist(testSnapshot(at, "a.jpg")); err != nil {
		t.Fatal(err)
	}
	if err := store.PersistReport(&model.DiffReport{
		New: []model.FileRecord{testSnapshot(at, "a.jpg").Records["a.jpg"]},
	}, at); err != nil {
		t.Fatal(err)
	}

	stamps, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stamps) != 1 {
		t.Errorf("List() = %v, want only the snapshot itself", stamps)
	}
}
