package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"twarchive/internal/archive"
	"twarchive/internal/blob"
	"twarchive/internal/config"
	"twarchive/internal/database"
	"twarchive/internal/encryption"
	"twarchive/internal/fetch"
	"twarchive/internal/metrics"
	"twarchive/internal/model"
)

// App is the application layer between the CLI and the archiving engine.
// It constructs all dependencies from config and manages the store
// lifecycle on Close.
type App struct {
	cfg       *config.Config
	store     archive.Store
	blobs     archive.BlobStore
	encryptor archive.Encryptor
	archiver  *archive.Archiver
	counters  *archive.Counters
	clock     archive.Clock
	idGen     archive.IDGenerator
	log       archive.Logger
	logFile   *os.File
}

// New creates a fully wired App from the given config.
// The caller must call Close when done.
func New(cfg *config.Config) (*App, error) {
	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	encryptor, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	blobs, err := blob.NewBlobStoreFromConfig(cfg.BlobStore, encryptor)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	fetcher := fetch.NewFetcherFromConfig(cfg.Fetch, log)
	downloader := fetch.NewHTTPDownloader(cfg.Fetch)
	transcoder, err := fetch.NewFFmpegTranscoder(cfg.Fetch, filepath.Join(cfg.BaseDir, "transcode"), log)
	if err != nil {
		logFile.Close()
		store.Close()
		return nil, fmt.Errorf("creating transcoder: %w", err)
	}

	counters := archive.NewCounters()
	media := archive.NewMediaResolver(store, blobs, downloader, transcoder, log, counters)
	resolver := archive.NewEntityResolver(store, media, fetcher, log, counters)
	walker := archive.NewWalker(store, fetcher, resolver, log, counters, cfg.Workers)
	archiver := archive.NewArchiver(walker, log, counters, archive.RealClock{}, cfg.GroupSize,
		time.Duration(cfg.ProgressSeconds)*time.Second)

	metrics.StartServer(cfg.Metrics.Addr, log)

	return &App{
		cfg:       cfg,
		store:     store,
		blobs:     blobs,
		encryptor: encryptor,
		archiver:  archiver,
		counters:  counters,
		clock:     archive.RealClock{},
		idGen:     archive.UUIDGenerator{},
		log:       log,
		logFile:   logFile,
	}, nil
}

// Run archives the given accounts, falling back to the configured account
// list when none are passed. One run row tracks the invocation and its
// final counters.
func (a *App) Run(ctx context.Context, accounts []string) error {
	if len(accounts) == 0 {
		accounts = a.cfg.Accounts
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no accounts to archive (pass them as arguments or set accounts in the config)")
	}

	run := &model.Run{
		ID:        a.idGen.New(),
		Accounts:  strings.Join(accounts, ","),
		StartedAt: a.clock.Now(),
		Status:    "running",
	}
	if err := a.store.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	runErr := a.archiver.Run(ctx, accounts)

	snap := a.counters.Snapshot()
	finished := a.clock.Now()
	run.FinishedAt = &finished
	run.Archived = snap.Archived
	run.Skipped = snap.Skipped
	run.Missing = snap.Missing
	run.Failed = snap.Failed
	if runErr != nil {
		run.Status = "error"
	} else {
		run.Status = "success"
	}
	if err := a.store.FinishRun(ctx, run); err != nil {
		a.log.Error("finishing run record", "run", run.ID, "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("finishing run record: %w", err)
		}
	}

	return runErr
}

// ListRuns returns the most recent runs, newest first.
func (a *App) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	return a.store.ListRuns(ctx, limit)
}

// SetupKeys performs one-time encryption key generation.
func (a *App) SetupKeys(passphrase string) error {
	if a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	return a.encryptor.Setup(passphrase)
}

// ExportMedia writes the bytes of an archived asset to outPath. passphrase
// is only needed when the blob store is encrypted.
func (a *App) ExportMedia(ctx context.Context, digest, outPath, passphrase string) error {
	// Embedded bytes take priority: they are the default storage mode.
	data, err := a.store.GetMediaBlob(ctx, digest)
	if err != nil {
		return err
	}
	if data != nil {
		return os.WriteFile(outPath, data, 0644)
	}

	if a.blobs == nil {
		return fmt.Errorf("media %s has no embedded bytes and no blob store is configured", digest)
	}

	blobs := a.blobs
	if enc, ok := blobs.(*blob.EncryptedStore); ok {
		if passphrase == "" {
			return fmt.Errorf("blob store is encrypted; a passphrase is required")
		}
		dec, err := a.encryptor.Unlock(passphrase)
		if err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
		blobs = enc.WithDecryption(dec)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := blobs.Get(digest, f); err != nil {
		return fmt.Errorf("exporting media %s: %w", digest, err)
	}
	return nil
}

// Close closes the store and the log file.
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
