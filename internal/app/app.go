// Package app is the application layer between the CLI and the integrity
// engine. It constructs all dependencies from config, exposes high-level
// operations, and manages the store and log file lifecycle on Close.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"snapcheck/internal/check"
	"snapcheck/internal/config"
	"snapcheck/internal/encryption"
	"snapcheck/internal/exclude"
	"snapcheck/internal/mirror"
	"snapcheck/internal/model"
	"snapcheck/internal/store"
)

// App wires the engine's dependencies for one CLI invocation against one
// archive state directory.
type App struct {
	cfg     *config.Config
	store   store.Store
	service *check.Service
	logFile *os.File
}

// NewApp creates a fully wired App from the given config and archive state
// directory. operation identifies the CLI command being run (e.g. "Update",
// "Verify"). extraExcludes are command-line rules merged with the config's
// standing ones. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, stateDir string, extraExcludes config.ExcludeConfig) (*App, error) {
	matcher, err := exclude.Compile(
		append(append([]string{}, cfg.Exclude.Directories...), extraExcludes.Directories...),
		append(append([]string{}, cfg.Exclude.Files...), extraExcludes.Files...),
		append(append([]string{}, cfg.Exclude.Paths...), extraExcludes.Paths...),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude rules: %w", err)
	}

	st, err := store.NewStoreFromConfig(cfg.Store, stateDir)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot store: %w", err)
	}

	m, err := mirror.NewMirrorFromConfig(context.Background(), cfg.Mirror)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating mirror: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := fmt.Sprintf("%s-%s", operation, check.UUIDGenerator{}.New()[:8])
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := check.NewService(st, check.NewScanner(matcher), m, enc, &slogAdapter{l: logger}, check.RealClock{})

	return &App{
		cfg:     cfg,
		store:   st,
		service: svc,
		logFile: logFile,
	}, nil
}

// Update records a new snapshot of archiveRoot and reports the changes
// since the previous one.
func (a *App) Update(archiveRoot string, forceRehash, detectRenames bool) (*model.DiffReport, error) {
	return a.service.Update(archiveRoot, check.DiffOptions{
		ForceRehash:   forceRehash,
		DetectRenames: detectRenames,
		Workers:       a.cfg.Threads,
	})
}

// Verify checks targetDir against the archive's latest snapshot.
func (a *App) Verify(targetDir string, ignoreMissing, onlyPresence bool) (*model.VerifyResult, error) {
	return a.service.Verify(targetDir, check.VerifyOptions{
		IgnoreMissing: ignoreMissing,
		OnlyPresence:  onlyPresence,
		Workers:       a.cfg.Threads,
	})
}

// History returns the creation times of all stored snapshots, ascending.
func (a *App) History() ([]time.Time, error) {
	return a.service.History()
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
