package catalog

import (
	"context"
	"time"

	"CrateFM/logger"
	"CrateFM/model"

	"github.com/google/uuid"
)

// RemoteWriter is the write side of the authoritative record store.
type RemoteWriter interface {
	Insert(ctx context.Context, record *model.AlbumRecord) error
	Update(ctx context.Context, record *model.AlbumRecord) error
	Delete(ctx context.Context, id int64) error
}

// HistorySink persists provenance entries outside the snapshot (the
// scrape_history table). May be nil when running cache-only.
type HistorySink interface {
	Record(ctx context.Context, entry *model.HistoryEntry) error
}

// Manager owns the working set and routes every mutation through the
// store's own ingest/sync paths; nothing else writes album records.
type Manager struct {
	store     *Store
	views     *Materializer
	syncer    *Syncer
	snapshots SnapshotStore
	remote    RemoteWriter // nil = offline, skip write-through
	history   HistorySink  // nil = snapshot-only provenance
}

// NewManager wires the orchestrator.
func NewManager(store *Store, views *Materializer, syncer *Syncer, snapshots SnapshotStore, remote RemoteWriter, history HistorySink) *Manager {
	return &Manager{
		store:     store,
		views:     views,
		syncer:    syncer,
		snapshots: snapshots,
		remote:    remote,
		history:   history,
	}
}

// WorkingSet returns the current album records.
func (m *Manager) WorkingSet() []model.AlbumRecord {
	return m.store.WorkingSet()
}

// Artists returns the derived artist view.
func (m *Manager) Artists(ctx context.Context) ([]model.ArtistView, error) {
	return m.views.Artists(ctx, m.store.WorkingSet())
}

// Tracks returns the derived track view.
func (m *Manager) Tracks(ctx context.Context) ([]model.TrackView, error) {
	return m.views.Tracks(ctx, m.store.WorkingSet())
}

// Roles returns the derived role view.
func (m *Manager) Roles(ctx context.Context) ([]model.RoleView, error) {
	return m.views.Roles(ctx, m.store.WorkingSet())
}

// InvalidateDerivedViews drops the view memos; the next view call
// rescans the working set.
func (m *Manager) InvalidateDerivedViews() {
	m.views.Invalidate()
}

// Sync runs one drift reconciliation pass.
func (m *Manager) Sync(ctx context.Context) (SyncResult, error) {
	return m.syncer.Sync(ctx)
}

// Ingest routes one candidate through duplicate resolution and, when the
// working set changed, writes through to the remote store. Remote write
// failures are logged and tolerated: the next sync's count comparison
// surfaces any divergence.
func (m *Manager) Ingest(ctx context.Context, candidate *model.AlbumRecord) IngestResult {
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now()
	}
	candidate.UpdatedAt = time.Now()

	result := m.store.Ingest(candidate)

	switch {
	case result.Added:
		if m.remote != nil {
			if err := m.remote.Insert(ctx, candidate); err != nil {
				logger.Warn("Remote insert failed",
					logger.Int64("id", candidate.ID), logger.ErrorField(err))
			}
		}
	case result.Replaced:
		if m.remote != nil {
			if err := m.remote.Delete(ctx, result.PriorID); err != nil {
				logger.Warn("Remote delete of replaced record failed",
					logger.Int64("id", result.PriorID), logger.ErrorField(err))
			}
			if err := m.remote.Insert(ctx, candidate); err != nil {
				logger.Warn("Remote insert of replacement failed",
					logger.Int64("id", candidate.ID), logger.ErrorField(err))
			}
		}
	}

	if result.Added || result.Replaced {
		m.views.Invalidate()
	}
	return result
}

// BatchResult summarizes one bulk ingestion run.
type BatchResult struct {
	Added      int `json:"added"`
	Replaced   int `json:"replaced"`
	Duplicates int `json:"duplicates"`
	Failures   int `json:"failures"`
}

// IngestBatch ingests a batch of candidates, records provenance and
// persists a fresh snapshot. One bad candidate never aborts the rest;
// the caller passes parse failures it already counted via failed.
func (m *Manager) IngestBatch(ctx context.Context, candidates []model.AlbumRecord, source string, failed int) BatchResult {
	started := time.Now()
	batch := BatchResult{Failures: failed}

	for i := range candidates {
		result := m.Ingest(ctx, &candidates[i])
		switch {
		case result.Added:
			batch.Added++
		case result.Replaced:
			batch.Replaced++
		default:
			batch.Duplicates++
		}
	}

	m.recordRun(ctx, model.HistoryEntry{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Source:     source,
		Added:      batch.Added,
		Replaced:   batch.Replaced,
		Duplicates: batch.Duplicates,
		Failures:   batch.Failures,
		Total:      m.store.Len(),
	})

	if batch.Added > 0 || batch.Replaced > 0 {
		if err := m.Flush(ctx); err != nil {
			logger.Warn("Snapshot flush after batch failed", logger.ErrorField(err))
		}
	}

	logger.Info("Batch ingested",
		logger.String("source", source),
		logger.Int("added", batch.Added),
		logger.Int("replaced", batch.Replaced),
		logger.Int("duplicates", batch.Duplicates),
		logger.Int("failures", batch.Failures))
	return batch
}

// Flush persists the current working set and history as a fresh snapshot.
func (m *Manager) Flush(ctx context.Context) error {
	return m.snapshots.Save(ctx, m.store.WorkingSet(), m.syncer.History())
}

func (m *Manager) recordRun(ctx context.Context, entry model.HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	m.syncer.RecordHistory(entry)
	if m.history != nil {
		if err := m.history.Record(ctx, &entry); err != nil {
			logger.Warn("History record failed", logger.ErrorField(err))
		}
	}
}
