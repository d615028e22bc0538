package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"CrateFM/model"
)

type fakeRemote struct {
	records  []model.AlbumRecord
	countErr error

	countCalls  int
	allCalls    int
	afterCalls  int
	newestCalls int

	entered chan struct{} // signalled when Count starts, if non-nil
	gate    chan struct{} // Count blocks on this, if non-nil
}

func (f *fakeRemote) Count(ctx context.Context) (int, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.records), nil
}

func (f *fakeRemote) FetchAll(ctx context.Context) ([]model.AlbumRecord, error) {
	f.allCalls++
	out := make([]model.AlbumRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeRemote) FetchCreatedAfter(ctx context.Context, since time.Time) ([]model.AlbumRecord, error) {
	f.afterCalls++
	var out []model.AlbumRecord
	for _, r := range f.records {
		if r.CreatedAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRemote) FetchNewest(ctx context.Context, n int) ([]model.AlbumRecord, error) {
	f.newestCalls++
	if n >= len(f.records) {
		out := make([]model.AlbumRecord, len(f.records))
		copy(out, f.records)
		return out, nil
	}
	out := make([]model.AlbumRecord, n)
	copy(out, f.records[len(f.records)-n:])
	return out, nil
}

type fakeSnapshots struct {
	snap  *model.Snapshot
	valid bool

	saveCalls    int
	savedRecords []model.AlbumRecord
	savedHistory []model.HistoryEntry
}

func (f *fakeSnapshots) IsValid(ctx context.Context) bool {
	return f.valid && f.snap != nil
}

func (f *fakeSnapshots) Load(ctx context.Context) (*model.Snapshot, error) {
	return f.snap, nil
}

func (f *fakeSnapshots) Save(ctx context.Context, records []model.AlbumRecord, history []model.HistoryEntry) error {
	f.saveCalls++
	f.savedRecords = records
	f.savedHistory = history
	return nil
}

func (f *fakeSnapshots) Clear(ctx context.Context) error {
	f.snap = nil
	return nil
}

func makeRecords(n int, createdAt time.Time) []model.AlbumRecord {
	out := make([]model.AlbumRecord, n)
	for i := range out {
		out[i] = model.AlbumRecord{
			ID:        int64(i + 1),
			Title:     "Album",
			Artist:    "Artist",
			CreatedAt: createdAt,
		}
	}
	return out
}

func snapshotOf(records []model.AlbumRecord, at time.Time) *model.Snapshot {
	return &model.Snapshot{
		Version:     "2.1",
		TimestampMs: at.UnixMilli(),
		Albums:      records,
	}
}

func TestSyncEqualCountsIssuesNoFetches(t *testing.T) {
	t0 := time.Now().Add(-time.Hour)
	records := makeRecords(3, t0)

	remote := &fakeRemote{records: records}
	snapshots := &fakeSnapshots{snap: snapshotOf(records, t0), valid: true}
	store := NewStore()
	syncer := NewSyncer(remote, snapshots, store, nil)

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if remote.countCalls != 1 {
		t.Fatalf("count calls = %d, want 1", remote.countCalls)
	}
	if remote.allCalls+remote.afterCalls+remote.newestCalls != 0 {
		t.Fatalf("fetch calls = %d/%d/%d, want none",
			remote.allCalls, remote.afterCalls, remote.newestCalls)
	}
	if result.Total != 3 || !result.FromSnapshot {
		t.Fatalf("result = %+v, want total 3 from snapshot", result)
	}
	if snapshots.saveCalls != 0 {
		t.Fatalf("save calls = %d, want 0 (nothing changed)", snapshots.saveCalls)
	}
}

func TestSyncIncrementalEndToEnd(t *testing.T) {
	// Local cache: 100 records at T0. Remote: 103, of which 3 created
	// after T0. Sync must yield exactly 103 and persist a fresh snapshot.
	t0 := time.Now().Add(-2 * time.Hour)
	base := makeRecords(100, t0.Add(-time.Hour))

	remoteRecords := make([]model.AlbumRecord, 0, 103)
	remoteRecords = append(remoteRecords, base...)
	for i := 0; i < 3; i++ {
		remoteRecords = append(remoteRecords, model.AlbumRecord{
			ID:        int64(1000 + i),
			Title:     "New Arrival",
			Artist:    "Artist",
			CreatedAt: t0.Add(time.Duration(i+1) * time.Minute),
		})
	}

	remote := &fakeRemote{records: remoteRecords}
	snapshots := &fakeSnapshots{snap: snapshotOf(base, t0), valid: true}
	store := NewStore()
	syncer := NewSyncer(remote, snapshots, store, nil)

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if result.Total != 103 || result.Fetched != 3 {
		t.Fatalf("result = %+v, want total 103 fetched 3", result)
	}
	if remote.afterCalls != 1 || remote.allCalls != 0 || remote.newestCalls != 0 {
		t.Fatalf("fetch calls all/after/newest = %d/%d/%d, want 0/1/0",
			remote.allCalls, remote.afterCalls, remote.newestCalls)
	}
	if store.Len() != 103 {
		t.Fatalf("working set = %d, want 103", store.Len())
	}
	if snapshots.saveCalls != 1 || len(snapshots.savedRecords) != 103 {
		t.Fatalf("snapshot save calls = %d with %d records, want 1 with 103",
			snapshots.saveCalls, len(snapshots.savedRecords))
	}
	if len(snapshots.savedHistory) != 1 || snapshots.savedHistory[0].Source != "sync" {
		t.Fatalf("history = %+v, want one sync entry", snapshots.savedHistory)
	}
}

func TestSyncMissingTimestampFallsBackToNewest(t *testing.T) {
	records := makeRecords(5, time.Now().Add(-time.Hour))
	remote := &fakeRemote{records: records}
	// No valid snapshot: cold start, timestamp unusable.
	snapshots := &fakeSnapshots{}
	store := NewStore()
	syncer := NewSyncer(remote, snapshots, store, nil)

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if remote.newestCalls != 1 || remote.afterCalls != 0 {
		t.Fatalf("fetch calls after/newest = %d/%d, want 0/1",
			remote.afterCalls, remote.newestCalls)
	}
	if result.Total != 5 {
		t.Fatalf("total = %d, want 5", result.Total)
	}
}

func TestSyncRemoteShrankForcesFullRefetch(t *testing.T) {
	t0 := time.Now().Add(-time.Hour)
	local := makeRecords(5, t0)
	remote := &fakeRemote{records: local[:3]}
	snapshots := &fakeSnapshots{snap: snapshotOf(local, t0), valid: true}
	store := NewStore()
	syncer := NewSyncer(remote, snapshots, store, nil)

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if remote.allCalls != 1 {
		t.Fatalf("full fetch calls = %d, want 1", remote.allCalls)
	}
	if !result.FullRefetch || result.Total != 3 {
		t.Fatalf("result = %+v, want full refetch with total 3", result)
	}
	if snapshots.saveCalls != 1 {
		t.Fatalf("save calls = %d, want 1", snapshots.saveCalls)
	}
}

func TestSyncCountFailureDegradesToCache(t *testing.T) {
	t0 := time.Now().Add(-time.Hour)
	local := makeRecords(4, t0)
	remote := &fakeRemote{countErr: errors.New("connection refused")}
	snapshots := &fakeSnapshots{snap: snapshotOf(local, t0), valid: true}
	store := NewStore()
	syncer := NewSyncer(remote, snapshots, store, nil)

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync with cache must not fail: %v", err)
	}
	if result.Total != 4 || !result.FromSnapshot {
		t.Fatalf("result = %+v, want cached 4", result)
	}
}

func TestSyncCountFailureWithoutCacheIsOffline(t *testing.T) {
	remote := &fakeRemote{countErr: errors.New("connection refused")}
	snapshots := &fakeSnapshots{}
	store := NewStore()
	syncer := NewSyncer(remote, snapshots, store, nil)

	_, err := syncer.Sync(context.Background())
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("err = %v, want ErrRemoteUnavailable", err)
	}
}

func TestSyncMismatchRetriesOnceThenSoftFails(t *testing.T) {
	// Remote claims 10 records but only ever returns 8: the first pass
	// mismatches, the automatic full-refetch retry still mismatches, and
	// the result is used anyway.
	records := makeRecords(8, time.Now().Add(-time.Hour))
	remote := &fakeRemote{records: records}
	remote.countErr = nil
	snapshots := &fakeSnapshots{}
	store := NewStore()
	syncer := NewSyncer(&miscountingRemote{fakeRemote: remote, claimed: 10}, snapshots, store, nil)

	result, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if !result.Mismatch {
		t.Fatalf("result = %+v, want unresolved mismatch", result)
	}
	if remote.allCalls != 1 {
		t.Fatalf("full refetch retries = %d, want exactly 1", remote.allCalls)
	}
	if result.Total != 8 {
		t.Fatalf("total = %d, want the 8 actually available", result.Total)
	}
}

// miscountingRemote reports a count that its fetches never satisfy.
type miscountingRemote struct {
	*fakeRemote
	claimed int
}

func (m *miscountingRemote) Count(ctx context.Context) (int, error) {
	m.countCalls++
	return m.claimed, nil
}

func TestHistoryConcurrentAppends(t *testing.T) {
	// Drop-folder and scrape batches record provenance from their own
	// goroutines while a sync may be adopting a snapshot's history.
	records := makeRecords(2, time.Now().Add(-time.Hour))
	remote := &fakeRemote{records: records}
	snapshots := &fakeSnapshots{}
	store := NewStore()
	syncer := NewSyncer(remote, snapshots, store, nil)

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers + 1)
	go func() {
		defer wg.Done()
		if _, err := syncer.Sync(context.Background()); err != nil {
			t.Errorf("Sync: %v", err)
		}
	}()
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			syncer.RecordHistory(model.HistoryEntry{Source: "drop", Added: n})
			syncer.History()
		}(i)
	}
	wg.Wait()

	// The cold-start sync records one entry of its own.
	entries := syncer.History()
	if len(entries) != writers+1 {
		t.Fatalf("history has %d entries, want %d", len(entries), writers+1)
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			t.Fatal("history entry without an assigned id")
		}
		if _, dup := seen[e.ID]; dup {
			t.Fatalf("duplicate history id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
}

func TestSyncSingleFlight(t *testing.T) {
	records := makeRecords(2, time.Now().Add(-time.Hour))
	remote := &fakeRemote{
		records: records,
		entered: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	snapshots := &fakeSnapshots{}
	store := NewStore()
	syncer := NewSyncer(remote, snapshots, store, nil)

	done := make(chan error, 1)
	go func() {
		_, err := syncer.Sync(context.Background())
		done <- err
	}()

	// Wait for the first run to be inside the count query.
	<-remote.entered

	second, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if !second.Skipped {
		t.Fatalf("second result = %+v, want skipped", second)
	}

	close(remote.gate)
	if err := <-done; err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	if remote.countCalls != 1 {
		t.Fatalf("count calls = %d, want 1 (coalesced)", remote.countCalls)
	}
}
