package check

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"snapcheck/internal/exclude"
	"snapcheck/internal/model"
)

// Scanner walks a directory subtree and produces one ScanEntry per included
// regular file. Symlinks and other non-regular files are skipped. Traversal
// order is unspecified; nothing downstream depends on it.
type Scanner struct {
	excludes *exclude.Matcher
}

// NewScanner creates a Scanner applying the given exclusion rules.
func NewScanner(excludes *exclude.Matcher) *Scanner {
	return &Scanner{excludes: excludes}
}

// Scan walks root and returns the included entries. Per-entry failures
// (permission denied, broken link, vanished file) are collected and do not
// abort the walk; the returned error is non-nil only for scan-level failures
// such as an unreadable root.
func (s *Scanner) Scan(root string) ([]model.ScanEntry, []model.FileError, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("scan root %q is not a directory", root)
	}

	var entries []model.ScanEntry
	var failures []model.FileError

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			failures = append(failures, model.FileError{Identity: bestEffortIdentity(path, root), Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && s.excludes.MatchDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// Regular files only: symlinks, devices, sockets, fifos are skipped.
		if !d.Type().IsRegular() {
			return nil
		}
		if s.excludes.MatchFile(d.Name()) {
			return nil
		}

		identity, err := Normalize(path, root)
		if err != nil {
			failures = append(failures, model.FileError{Identity: bestEffortIdentity(path, root), Err: err})
			return nil
		}
		if s.excludes.MatchPath(identity) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			failures = append(failures, model.FileError{Identity: identity, Err: err})
			return nil
		}

		entries = append(entries, model.ScanEntry{
			Identity:   identity,
			AbsPath:    path,
			Size:       fi.Size(),
			ModifiedAt: fi.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, failures, fmt.Errorf("walking %q: %w", root, walkErr)
	}

	return entries, failures, nil
}

// bestEffortIdentity normalizes path for error reporting, falling back to
// the native path when normalization itself fails.
func bestEffortIdentity(path, root string) string {
	if identity, err := Normalize(path, root); err == nil {
		return identity
	}
	return filepath.ToSlash(path)
}
