package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"snapcheck/internal/model"
	"snapcheck/internal/store/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore keeps all snapshots in one sqlite database inside the archive
// state directory. Rows are only ever inserted; the snapshot history stays
// append-only like the textfile backend.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the snapshot database at path and brings
// its schema up to date. path can be ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The sqlite driver cannot share one on-disk connection across
	// goroutines writing concurrently; the store is written by a single
	// goroutine, but limit the pool anyway so :memory: databases keep a
	// single coherent connection.
	db.SetMaxOpenConns(1)

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating snapshot database: %w", err)
	}
	if err := migrations.Check(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot database schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Latest implements Store.
func (s *SQLiteStore) Latest() (*model.Snapshot, error) {
	var createdNS int64
	err := s.db.QueryRow(`SELECT created_at_ns FROM snapshots ORDER BY created_at_ns DESC LIMIT 1`).Scan(&createdNS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}

	snap := model.NewSnapshot(time.Unix(0, createdNS))
	rows, err := s.db.Query(
		`SELECT identity, size, modified_at_ns, digest, fully_read_ns, last_seen_ns
		 FROM file_records WHERE snapshot_ns = ?`, createdNS)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.FileRecord
		var modifiedNS, fullyReadNS, lastSeenNS int64
		var digest []byte
		if err := rows.Scan(&rec.Identity, &rec.Size, &modifiedNS, &digest, &fullyReadNS, &lastSeenNS); err != nil {
			return nil, fmt.Errorf("scanning snapshot record: %w", err)
		}
		if len(digest) != model.DigestSize {
			return nil, fmt.Errorf("corrupt digest for %q: %d bytes", rec.Identity, len(digest))
		}
		copy(rec.Digest[:], digest)
		rec.ModifiedAt = time.Unix(0, modifiedNS)
		rec.FullyRead = time.Unix(0, fullyReadNS)
		rec.LastSeen = time.Unix(0, lastSeenNS)
		snap.Records[rec.Identity] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot records: %w", err)
	}

	return snap, nil
}

// Persist implements Store. The snapshot row and all its records are
// inserted in one transaction, so a failure leaves nothing behind.
func (s *SQLiteStore) Persist(snap *model.Snapshot) error {
	createdNS := snap.CreatedAt.UnixNano()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM snapshots WHERE created_at_ns = ?)`, createdNS).Scan(&exists); err != nil {
		return fmt.Errorf("checking for snapshot collision: %w", err)
	}
	if exists {
		return fmt.Errorf("%s: %w", Stamp(snap.CreatedAt), ErrSnapshotExists)
	}

	if _, err := tx.Exec(`INSERT INTO snapshots (created_at_ns, record_count) VALUES (?, ?)`,
		createdNS, len(snap.Records)); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO file_records (snapshot_ns, identity, size, modified_at_ns, digest, fully_read_ns, last_seen_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range snap.Records {
		if _, err := stmt.Exec(createdNS, rec.Identity, rec.Size, rec.ModifiedAt.UnixNano(),
			rec.Digest[:], rec.FullyRead.UnixNano(), rec.LastSeen.UnixNano()); err != nil {
			return fmt.Errorf("inserting record %q: %w", rec.Identity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// PersistReport implements Store.
func (s *SQLiteStore) PersistReport(report *model.DiffReport, createdAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO report_entries (snapshot_ns, category, identity, digest) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing report insert: %w", err)
	}
	defer stmt.Close()

	createdNS := createdAt.UnixNano()
	insert := func(category string, recs []model.FileRecord) error {
		for _, rec := range recs {
			if _, err := stmt.Exec(createdNS, category, rec.Identity, rec.Digest[:]); err != nil {
				return fmt.Errorf("inserting %s entry %q: %w", category, rec.Identity, err)
			}
		}
		return nil
	}

	if err := insert("new", report.New); err != nil {
		return err
	}
	if err := insert("missing", report.Missing); err != nil {
		return err
	}
	previous := make([]model.FileRecord, 0, len(report.Modified))
	for _, pair := range report.Modified {
		previous = append(previous, pair.Previous)
	}
	if err := insert("modified", previous); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing report: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]time.Time, error) {
	rows, err := s.db.Query(`SELECT created_at_ns FROM snapshots ORDER BY created_at_ns ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var ns int64
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("scanning snapshot timestamp: %w", err)
		}
		stamps = append(stamps, time.Unix(0, ns))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot timestamps: %w", err)
	}
	return stamps, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }
