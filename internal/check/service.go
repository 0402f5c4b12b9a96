package check

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"snapcheck/internal/encryption"
	"snapcheck/internal/mirror"
	"snapcheck/internal/model"
	"snapcheck/internal/store"
)

// Service is the orchestration layer that coordinates scanner, engines,
// store and mirror to perform the high-level operations needed by the CLI.
type Service struct {
	store     store.Store
	scanner   *Scanner
	mirror    mirror.Mirror // nil when mirroring is disabled
	encryptor encryption.Encryptor
	logger    Logger
	clock     Clock
}

// NewService creates a Service with the provided dependencies.
func NewService(st store.Store, scanner *Scanner, m mirror.Mirror, enc encryption.Encryptor, logger Logger, clock Clock) *Service {
	return &Service{
		store:     st,
		scanner:   scanner,
		mirror:    m,
		encryptor: enc,
		logger:    logger,
		clock:     clock,
	}
}

// Update scans archiveRoot, diffs it against the latest snapshot, persists
// the successor snapshot plus side reports, and pushes the artifacts to the
// mirror when one is configured. The returned report classifies every
// identity; per-file failures are inside it, not in the error return.
func (s *Service) Update(archiveRoot string, opts DiffOptions) (*model.DiffReport, error) {
	previous, err := s.store.Latest()
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	if previous == nil {
		s.logger.Info("no previous snapshot, treating every file as new")
	} else {
		s.logger.Info("loaded previous snapshot",
			"created_at", previous.CreatedAt, "files", len(previous.Records))
	}

	entries, scanErrs, err := s.scanner.Scan(archiveRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", archiveRoot, err)
	}

	snap, report := Diff(previous, entries, s.clock, opts)
	mergeErrors(&report.Errors, scanErrs)

	if err := s.store.Persist(snap); err != nil {
		return nil, fmt.Errorf("persisting snapshot: %w", err)
	}
	if err := s.store.PersistReport(report, snap.CreatedAt); err != nil {
		return nil, fmt.Errorf("persisting report: %w", err)
	}
	s.logger.Info("snapshot persisted",
		"created_at", snap.CreatedAt, "files", len(snap.Records))

	// The local store is authoritative; a mirror failure is reported but
	// does not fail the update.
	if s.mirror != nil {
		if err := s.pushToMirror(snap, report); err != nil {
			s.logger.Error("mirror push failed", "error", err)
		}
	}

	return report, nil
}

// Verify scans targetDir and checks its contents against the archive's
// latest snapshot. Mismatches are part of the result, not the error return.
func (s *Service) Verify(targetDir string, opts VerifyOptions) (*model.VerifyResult, error) {
	reference, err := s.store.Latest()
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	if reference == nil {
		return nil, fmt.Errorf("archive has never been updated, nothing to verify against")
	}
	s.logger.Info("loaded reference snapshot",
		"created_at", reference.CreatedAt, "files", len(reference.Records))

	entries, scanErrs, err := s.scanner.Scan(targetDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", targetDir, err)
	}

	result := Verify(reference, entries, s.clock, opts)
	mergeErrors(&result.Errors, scanErrs)
	if len(result.Errors) > 0 {
		result.OK = false
	}

	return result, nil
}

// History returns the creation times of all stored snapshots, ascending.
func (s *Service) History() ([]time.Time, error) {
	return s.store.List()
}

// pushToMirror renders the snapshot artifacts, encrypts each, and uploads.
func (s *Service) pushToMirror(snap *model.Snapshot, report *model.DiffReport) error {
	for _, artifact := range store.RenderArtifacts(snap, report) {
		var sealed bytes.Buffer
		if err := s.encryptor.Encrypt(bytes.NewReader(artifact.Data), &sealed); err != nil {
			return fmt.Errorf("encrypting %s: %w", artifact.Name, err)
		}

		name := artifact.Name + s.encryptor.Suffix()
		if err := s.mirror.Put(name, &sealed, int64(sealed.Len())); err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
		s.logger.Debug("artifact mirrored", "name", name)
	}
	return nil
}

// mergeErrors appends extra per-file failures and restores identity order.
func mergeErrors(dst *[]model.FileError, extra []model.FileError) {
	if len(extra) == 0 {
		return
	}
	*dst = append(*dst, extra...)
	sort.Slice(*dst, func(i, j int) bool { return (*dst)[i].Identity < (*dst)[j].Identity })
}
