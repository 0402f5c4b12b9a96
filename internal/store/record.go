package store

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"snapcheck/internal/model"
)

// State files hold one record per line:
//
//	<64-hex-digest> <identity> # mtime <s>.<ns> size <n> fully_read <s> last_seen <s>
//
// The format is line-oriented text so a damaged state file can be inspected
// and repaired by hand. Identities are stored forward-slash separated, so
// state files written on one platform load on any other.
var recordLineRE = regexp.MustCompile(
	`^([a-f0-9]{64}) /?([^/].*) # mtime (\d+)\.(\d+) size (\d+) fully_read (\d+)(?:\.\d+)? last_seen (\d+)(?:\.\d+)?$`)

// formatRecord renders one state-file line, without trailing newline.
func formatRecord(rec model.FileRecord) string {
	return fmt.Sprintf("%s %s # mtime %d.%09d size %d fully_read %d last_seen %d",
		hex.EncodeToString(rec.Digest[:]),
		rec.Identity,
		rec.ModifiedAt.Unix(),
		rec.ModifiedAt.Nanosecond(),
		rec.Size,
		rec.FullyRead.Unix(),
		rec.LastSeen.Unix(),
	)
}

// parseRecord parses one state-file line.
func parseRecord(line string) (model.FileRecord, error) {
	var rec model.FileRecord

	m := recordLineRE.FindStringSubmatch(line)
	if m == nil {
		return rec, fmt.Errorf("invalid state line: %q", line)
	}

	if _, err := hex.Decode(rec.Digest[:], []byte(m[1])); err != nil {
		return rec, fmt.Errorf("invalid digest in state line %q: %w", line, err)
	}
	rec.Identity = m[2]

	mtimeSec, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("invalid mtime in state line %q: %w", line, err)
	}
	mtimeNS, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("invalid mtime in state line %q: %w", line, err)
	}
	// The fractional part may have fewer than nine digits.
	for i := len(m[4]); i < 9; i++ {
		mtimeNS *= 10
	}
	rec.ModifiedAt = time.Unix(mtimeSec, mtimeNS)

	if rec.Size, err = strconv.ParseInt(m[5], 10, 64); err != nil {
		return rec, fmt.Errorf("invalid size in state line %q: %w", line, err)
	}

	fullyRead, err := strconv.ParseInt(m[6], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("invalid fully_read in state line %q: %w", line, err)
	}
	rec.FullyRead = time.Unix(fullyRead, 0)

	lastSeen, err := strconv.ParseInt(m[7], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("invalid last_seen in state line %q: %w", line, err)
	}
	rec.LastSeen = time.Unix(lastSeen, 0)

	return rec, nil
}
