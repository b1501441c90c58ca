// Package gc removes stale provisional records and their stored bytes.
//
// A file record is provisional between its insertion and the size commit
// that completes a creation. When the process crashes mid-creation, or the
// compensation path itself fails, the provisional record and any bytes
// already written are left behind. The sweeper finds provisional records
// older than a configurable age and removes both halves.
package gc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marmos91/attachfs/internal/logger"
	"github.com/marmos91/attachfs/pkg/attachment"
	"github.com/marmos91/attachfs/pkg/content"
)

// maxChainDepth bounds the parent-hash walk when reconstructing a
// physical path, guarding against corrupted records forming a cycle.
const maxChainDepth = 1024

// Config contains configuration for the provisional-record sweeper.
type Config struct {
	// Enabled controls whether sweeping is active (default: false)
	Enabled bool

	// Interval is how often to run a sweep (default: 1h)
	Interval time.Duration

	// MinAge is how old a provisional record must be before it is
	// considered stale (default: 1h). This must comfortably exceed the
	// longest plausible upload so in-flight creations are never touched.
	MinAge time.Duration

	// DryRun mode logs what would be removed without removing anything
	// (default: false)
	DryRun bool
}

// Sweeper periodically removes stale provisional records.
//
// Thread Safety: Safe for concurrent use.
type Sweeper struct {
	records attachment.RecordStore
	store   content.Store
	config  Config
	log     *logger.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSweeper creates a sweeper over the given record and byte stores.
//
// The sweeper is initialized but not started. Call Start to begin
// background sweeps, or RunNow for a single synchronous pass.
func NewSweeper(
	records attachment.RecordStore,
	store content.Store,
	config Config,
	log *logger.Logger,
) *Sweeper {
	if config.Interval == 0 {
		config.Interval = time.Hour
	}
	if config.MinAge == 0 {
		config.MinAge = time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Sweeper{
		records: records,
		store:   store,
		config:  config,
		log:     log,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins background sweeping at the configured interval.
//
// Safe to call when the sweeper is disabled (no-op).
func (s *Sweeper) Start() {
	if !s.config.Enabled {
		s.log.Info("provisional sweeper disabled")
		return
	}

	s.log.Info("starting provisional sweeper",
		"interval", s.config.Interval,
		"min_age", s.config.MinAge,
		"dry_run", s.config.DryRun)

	go s.worker()
}

// Stop stops the sweeper and waits for any in-progress pass to finish.
//
// Returns the context error if it expires before the worker exits.
func (s *Sweeper) Stop(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	close(s.stopCh)

	select {
	case <-s.doneCh:
		s.log.Info("provisional sweeper stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("provisional sweeper shutdown timeout")
		return ctx.Err()
	}
}

// RunNow triggers a single sweep immediately, regardless of Enabled.
//
// Blocks until the pass completes or the context is cancelled.
func (s *Sweeper) RunNow(ctx context.Context) (*Stats, error) {
	return s.sweep(ctx)
}

func (s *Sweeper) worker() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			stats, err := s.sweep(ctx)
			cancel()

			if err != nil {
				s.log.Error("provisional sweep failed", "error", err)
			} else if stats.ScannedCount > 0 {
				s.log.Info("provisional sweep completed", "summary", stats.Summary())
			}

		case <-s.stopCh:
			return
		}
	}
}

// sweep performs a single pass: list provisional records older than
// MinAge, then remove each record together with any bytes written at
// its physical path.
func (s *Sweeper) sweep(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	cutoff := time.Now().Add(-s.config.MinAge)
	stale, err := s.records.ListProvisional(ctx, cutoff)
	if err != nil {
		return stats, fmt.Errorf("listing provisional records: %w", err)
	}
	stats.ScannedCount = len(stale)

	if len(stale) == 0 {
		stats.EndTime = time.Now()
		return stats, nil
	}

	if s.config.DryRun {
		for _, record := range stale {
			s.log.Info("dry run: would remove stale provisional record",
				"hash", record.Hash,
				"owner", record.OwnerID,
				"name", record.Name,
				"created_at", record.CreatedAt)
		}
		stats.EndTime = time.Now()
		return stats, nil
	}

	for _, record := range stale {
		if err := ctx.Err(); err != nil {
			stats.EndTime = time.Now()
			return stats, err
		}

		if err := s.remove(ctx, record); err != nil {
			stats.FailedCount++
			s.log.Warn("failed to remove stale provisional record",
				"hash", record.Hash,
				"owner", record.OwnerID,
				"error", err)
			continue
		}

		stats.RemovedCount++
		s.log.Debug("removed stale provisional record",
			"hash", record.Hash,
			"owner", record.OwnerID,
			"name", record.Name)
	}

	stats.EndTime = time.Now()
	return stats, nil
}

// remove deletes a provisional record and any bytes already written at
// its physical path. The byte delete runs first so a failure leaves the
// record in place for the next pass; a missing physical path is fine
// since the crash may have happened before any bytes landed.
func (s *Sweeper) remove(ctx context.Context, record *attachment.Record) error {
	path, err := s.physicalPath(ctx, record)
	switch {
	case err != nil:
		// A broken parent chain means the path cannot be derived; the
		// record itself is still removable.
		s.log.Warn("cannot derive physical path for provisional record",
			"hash", record.Hash,
			"error", err)
	default:
		if err := s.store.Delete(ctx, path); err != nil {
			return fmt.Errorf("deleting content at %q: %w", path, err)
		}
	}

	if err := s.records.Delete(ctx, record.Hash); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// physicalPath reconstructs the slash-joined hash chain for a record by
// walking parent hashes up to the owner root.
func (s *Sweeper) physicalPath(ctx context.Context, record *attachment.Record) (string, error) {
	segments := []string{record.Hash}

	parent := record.ParentHash
	for depth := 0; parent != attachment.RootParentHash; depth++ {
		if depth >= maxChainDepth {
			return "", fmt.Errorf("parent chain for %q exceeds %d levels", record.Hash, maxChainDepth)
		}

		ancestor, err := s.records.GetByHash(ctx, parent)
		if err != nil {
			return "", fmt.Errorf("resolving ancestor %q: %w", parent, err)
		}

		segments = append([]string{ancestor.Hash}, segments...)
		parent = ancestor.ParentHash
	}

	return strings.Join(segments, "/"), nil
}

// Stats contains the outcome of a single sweep pass.
type Stats struct {
	StartTime    time.Time
	EndTime      time.Time
	ScannedCount int // stale provisional records found
	RemovedCount int // records removed together with their bytes
	FailedCount  int // records that could not be removed this pass
}

// Duration returns the total pass duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns a human-readable summary of the pass.
func (s *Stats) Summary() string {
	return fmt.Sprintf("scanned=%d removed=%d failed=%d duration=%s",
		s.ScannedCount, s.RemovedCount, s.FailedCount, s.Duration())
}
