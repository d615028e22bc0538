package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"CrateFM/logger"
	"CrateFM/model"

	"github.com/google/uuid"
)

// RemoteStore is the read side of the authoritative record store.
type RemoteStore interface {
	Count(ctx context.Context) (int, error)
	FetchAll(ctx context.Context) ([]model.AlbumRecord, error)
	FetchCreatedAfter(ctx context.Context, since time.Time) ([]model.AlbumRecord, error)
	FetchNewest(ctx context.Context, n int) ([]model.AlbumRecord, error)
}

// SnapshotStore persists the full working set between sessions.
type SnapshotStore interface {
	IsValid(ctx context.Context) bool
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, records []model.AlbumRecord, history []model.HistoryEntry) error
	Clear(ctx context.Context) error
}

// SyncEvent is one lifecycle notification pushed toward the UI.
type SyncEvent struct {
	Type    string `json:"type"` // started, adopted, fetched, offline, mismatch, done
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`
	Total   int    `json:"total,omitempty"`
}

// Notifier receives sync lifecycle events. Implementations must not block.
type Notifier interface {
	Notify(event SyncEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(SyncEvent) {}

// SyncResult summarizes one reconciliation run.
type SyncResult struct {
	Skipped       bool `json:"skipped"` // another sync was already running
	FromSnapshot  bool `json:"fromSnapshot"`
	Fetched       int  `json:"fetched"`
	FullRefetch   bool `json:"fullRefetch"`
	Mismatch      bool `json:"mismatch"` // unresolved after the retry
	Total         int  `json:"total"`
	Authoritative int  `json:"authoritative"`
}

// Syncer reconciles the local snapshot against the authoritative remote
// count, fetching only deltas where it can. It assumes it is the sole
// snapshot writer for the duration of one run; a single-flight guard
// coalesces concurrent calls instead of letting them overwrite each
// other's snapshot writes.
type Syncer struct {
	remote    RemoteStore
	snapshots SnapshotStore
	store     *Store
	notifier  Notifier

	// histMu guards history: batch ingests append to it from their own
	// goroutines (drop-folder watcher, scraper) while a sync may be
	// replacing it from an adopted snapshot.
	histMu   sync.Mutex
	history  []model.HistoryEntry
	inFlight atomic.Bool
}

// NewSyncer wires a syncer. notifier may be nil.
func NewSyncer(remote RemoteStore, snapshots SnapshotStore, store *Store, notifier Notifier) *Syncer {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Syncer{
		remote:    remote,
		snapshots: snapshots,
		store:     store,
		notifier:  notifier,
	}
}

// History returns the provenance entries adopted from the snapshot plus
// those appended by runs in this session.
func (s *Syncer) History() []model.HistoryEntry {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	out := make([]model.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// RecordHistory appends one provenance entry; the next snapshot write
// carries it. Entries without an ID get one assigned.
func (s *Syncer) RecordHistory(entry model.HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.histMu.Lock()
	s.history = append(s.history, entry)
	s.histMu.Unlock()
}

// Sync runs one reconciliation pass:
//
//  1. A valid snapshot is adopted immediately as the optimistic working set.
//  2. The remote store is asked for its authoritative count.
//  3. remote > local: fetch records created after the snapshot timestamp,
//     or the N newest when the timestamp is unusable.
//  4. remote < local: a remote deletion happened, incremental reasoning is
//     unsafe; full refetch as the new baseline.
//  5. equal: nothing to fetch.
//
// After any change the updated working set is persisted under a fresh
// timestamp. A post-sync size differing from the authoritative count gets
// one automatic full-refetch retry; a second mismatch is logged and the
// result used anyway. Count-query failures degrade to cache-as-is;
// full-fetch failures propagate so the caller can enter the offline
// fallback.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		logger.Warn("Sync coalesced", logger.ErrorField(ErrSyncInFlight))
		return SyncResult{Skipped: true}, nil
	}
	defer s.inFlight.Store(false)

	s.notifier.Notify(SyncEvent{Type: "started"})
	started := time.Now()

	var (
		result     SyncResult
		snapshotTS time.Time
	)

	if s.snapshots.IsValid(ctx) {
		snap, err := s.snapshots.Load(ctx)
		if err != nil {
			logger.Warn("Snapshot load failed, starting cold", logger.ErrorField(err))
		} else if snap != nil {
			s.store.Replace(snap.Albums)
			s.histMu.Lock()
			s.history = snap.History
			s.histMu.Unlock()
			snapshotTS = snap.Timestamp()
			result.FromSnapshot = true
			s.notifier.Notify(SyncEvent{Type: "adopted", Count: len(snap.Albums)})
			logger.Info("Adopted snapshot as optimistic working set",
				logger.Int("albums", len(snap.Albums)))
		}
	}

	var (
		authoritative int
		countErr      error
	)
	if s.remote == nil {
		countErr = ErrRemoteUnavailable
	} else {
		authoritative, countErr = s.remote.Count(ctx)
	}
	if err := countErr; err != nil {
		if result.FromSnapshot {
			// Offline with a usable cache: degrade to cache-as-is.
			logger.Warn("Remote count unavailable, using cache as-is", logger.ErrorField(err))
			s.notifier.Notify(SyncEvent{Type: "offline", Message: "remote unavailable, showing cached collection"})
			result.Total = s.store.Len()
			return result, nil
		}
		s.notifier.Notify(SyncEvent{Type: "offline", Message: "remote unavailable, collection empty"})
		return result, fmt.Errorf("%w: count query: %v", ErrRemoteUnavailable, err)
	}
	result.Authoritative = authoritative

	local := s.store.Len()
	changed := false

	switch {
	case authoritative > local:
		fetched, err := s.fetchDelta(ctx, snapshotTS, authoritative-local)
		if err != nil {
			if result.FromSnapshot {
				logger.Warn("Delta fetch failed, using cache as-is", logger.ErrorField(err))
				s.notifier.Notify(SyncEvent{Type: "offline", Message: "delta fetch failed, showing cached collection"})
				result.Total = s.store.Len()
				return result, nil
			}
			return result, err
		}
		result.Fetched = fetched
		changed = fetched > 0
		s.notifier.Notify(SyncEvent{Type: "fetched", Count: fetched, Total: authoritative})

	case authoritative < local:
		// Remote deletion: incremental reasoning is unsafe.
		logger.Info("Remote shrank below local, full refetch",
			logger.Int("local", local), logger.Int("authoritative", authoritative))
		if err := s.fullRefetch(ctx); err != nil {
			return result, err
		}
		result.FullRefetch = true
		changed = true
		s.notifier.Notify(SyncEvent{Type: "fetched", Count: s.store.Len(), Total: authoritative})
	}

	// Reconciliation check, with one automatic full-refetch retry.
	if s.store.Len() != authoritative {
		logger.Warn("Reconciliation mismatch, retrying with full refetch",
			logger.Int("workingSet", s.store.Len()),
			logger.Int("authoritative", authoritative))
		s.notifier.Notify(SyncEvent{Type: "mismatch", Count: s.store.Len(), Total: authoritative})

		if err := s.fullRefetch(ctx); err != nil {
			return result, err
		}
		result.FullRefetch = true
		changed = true

		if s.store.Len() != authoritative {
			// Soft-fail: the rest of the system stays usable.
			result.Mismatch = true
			logger.Error("Reconciliation mismatch persists after retry",
				logger.Int("workingSet", s.store.Len()),
				logger.Int("authoritative", authoritative),
				logger.ErrorField(ErrReconciliationMismatch))
		}
	}

	result.Total = s.store.Len()

	if changed {
		s.RecordHistory(model.HistoryEntry{
			StartedAt:  started,
			FinishedAt: time.Now(),
			Source:     "sync",
			Added:      result.Fetched,
			Total:      result.Total,
		})
		if err := s.snapshots.Save(ctx, s.store.WorkingSet(), s.History()); err != nil {
			// Persistence failure is never fatal; next start refetches.
			logger.Warn("Snapshot save failed", logger.ErrorField(err))
		}
	}

	s.notifier.Notify(SyncEvent{Type: "done", Total: result.Total})
	logger.Info("Sync finished",
		logger.Int("total", result.Total),
		logger.Int("fetched", result.Fetched),
		logger.Bool("fullRefetch", result.FullRefetch),
		logger.Duration("elapsed", time.Since(started)))
	return result, nil
}

// fetchDelta pulls only the records missing locally: those created after
// the snapshot timestamp, or the n newest when the timestamp is unusable.
func (s *Syncer) fetchDelta(ctx context.Context, since time.Time, n int) (int, error) {
	var (
		records []model.AlbumRecord
		err     error
	)
	if !since.IsZero() && since.Unix() > 0 {
		records, err = s.remote.FetchCreatedAfter(ctx, since)
	} else {
		records, err = s.remote.FetchNewest(ctx, n)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: delta fetch: %v", ErrRemoteUnavailable, err)
	}
	return s.store.AppendUnique(records), nil
}

// fullRefetch replaces the working set with the complete remote set.
func (s *Syncer) fullRefetch(ctx context.Context) error {
	records, err := s.remote.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: full fetch: %v", ErrRemoteUnavailable, err)
	}
	s.store.Replace(records)
	return nil
}
