package store

import (
	"crypto/sha256"
	"strings"
	"testing"
	"time"

	"snapcheck/internal/model"
)

func sampleRecord() model.FileRecord {
	return model.FileRecord{
		Identity:   "2024/vacation/img_0001.jpg",
		Size:       1234567,
		ModifiedAt: time.Unix(1700000000, 123456789),
		Digest:     sha256.Sum256([]byte("sample")),
		FullyRead:  time.Unix(1700000100, 0),
		LastSeen:   time.Unix(1700000200, 0),
	}
}

func TestRecordRoundTrip(t *testing.T) {
	for name, rec := range map[string]model.FileRecord{
		"plain":          sampleRecord(),
		"spaces and hash": func() model.FileRecord {
			r := sampleRecord()
			r.Identity = "has space/and #1 mark.jpg"
			return r
		}(),
		"zero size": func() model.FileRecord {
			r := sampleRecord()
			r.Size = 0
			return r
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			line := formatRecord(rec)
			got, err := parseRecord(line)
			if err != nil {
				t.Fatalf("parseRecord(%q) error = %v", line, err)
			}
			if got.Identity != rec.Identity {
				t.Errorf("Identity = %q, want %q", got.Identity, rec.Identity)
			}
			if got.Size != rec.Size {
				t.Errorf("Size = %d, want %d", got.Size, rec.Size)
			}
			if got.Digest != rec.Digest {
				t.Errorf("Digest = %x, want %x", got.Digest, rec.Digest)
			}
			if !got.ModifiedAt.Equal(rec.ModifiedAt) {
				t.Errorf("ModifiedAt = %v, want %v", got.ModifiedAt, rec.ModifiedAt)
			}
			if got.FullyRead.Unix() != rec.FullyRead.Unix() {
				t.Errorf("FullyRead = %v, want %v", got.FullyRead, rec.FullyRead)
			}
			if got.LastSeen.Unix() != rec.LastSeen.Unix() {
				t.Errorf("LastSeen = %v, want %v", got.LastSeen, rec.LastSeen)
			}
		})
	}
}

func TestFormatRecord(t *testing.T) {
	rec := sampleRecord()
	line := formatRecord(rec)

	want := " 2024/vacation/img_0001.jpg # mtime 1700000000.123456789 size 1234567 fully_read 1700000100 last_seen 1700000200"
	if !strings.HasSuffix(line, want) {
		t.Errorf("formatRecord() = %q, want suffix %q", line, want)
	}
	if len(line) != 64+len(want) {
		t.Errorf("digest prefix has %d chars, want 64", len(line)-len(want))
	}
}

func TestParseRecord(t *testing.T) {
	digest := strings.Repeat("ab", 32)

	t.Run("short fractional mtime scales to nanoseconds", func(t *testing.T) {
		rec, err := parseRecord(digest + " a.jpg # mtime 100.5 size 3 fully_read 200 last_seen 300")
		if err != nil {
			t.Fatal(err)
		}
		if want := time.Unix(100, 500000000); !rec.ModifiedAt.Equal(want) {
			t.Errorf("ModifiedAt = %v, want %v", rec.ModifiedAt, want)
		}
	})

	t.Run("leading slash on identity is stripped", func(t *testing.T) {
		rec, err := parseRecord(digest + " /a.jpg # mtime 100.0 size 3 fully_read 200 last_seen 300")
		if err != nil {
			t.Fatal(err)
		}
		if rec.Identity != "a.jpg" {
			t.Errorf("Identity = %q, want %q", rec.Identity, "a.jpg")
		}
	})

	t.Run("fractional read times are tolerated", func(t *testing.T) {
		rec, err := parseRecord(digest + " a.jpg # mtime 100.0 size 3 fully_read 200.25 last_seen 300.75")
		if err != nil {
			t.Fatal(err)
		}
		if rec.FullyRead.Unix() != 200 || rec.LastSeen.Unix() != 300 {
			t.Errorf("read times = %v %v, want seconds 200 300", rec.FullyRead, rec.LastSeen)
		}
	})

	for name, line := range map[string]string{
		"empty":            "",
		"garbage":          "not a state line",
		"short digest":     digest[:32] + " a.jpg # mtime 100.0 size 3 fully_read 200 last_seen 300",
		"uppercase digest": strings.ToUpper(digest) + " a.jpg # mtime 100.0 size 3 fully_read 200 last_seen 300",
		"missing size":     digest + " a.jpg # mtime 100.0 fully_read 200 last_seen 300",
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			if _, err := parseRecord(line); err == nil {
				t.Errorf("parseRecord(%q) succeeded, want error", line)
			}
		})
	}
}

func TestStampRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 30, 15, 4, 5, 0, time.Local)
	stamp := Stamp(at)
	if stamp != "20260830 150405" {
		t.Errorf("Stamp() = %q, want %q", stamp, "20260830 150405")
	}
	back, err := ParseStamp(stamp)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(at) {
		t.Errorf("ParseStamp(Stamp(t)) = %v, want %v", back, at)
	}

	if _, err := ParseStamp("not a stamp"); err == nil {
		t.Error("ParseStamp accepted garbage")
	}
}
