package catalog

import (
	"sync"

	"CrateFM/model"
)

// Store is the primary record store: the in-memory album working set and
// the single source of truth during a session. All mutation goes through
// Ingest, Append and Replace; nothing outside this package writes to the
// slice directly.
type Store struct {
	mu      sync.RWMutex
	records []model.AlbumRecord
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// IngestResult reports what happened to one candidate. PriorID carries
// the identifier of the record a replacement displaced.
type IngestResult struct {
	Added     bool  `json:"added"`
	Replaced  bool  `json:"replaced"`
	Duplicate bool  `json:"duplicate"`
	PriorID   int64 `json:"-"`
}

// Ingest routes one candidate through the duplicate resolver and applies
// the verdict. Identifier uniqueness within the store is preserved.
func (s *Store) Ingest(candidate *model.AlbumRecord) IngestResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolution, idx := Resolve(s.records, candidate)
	switch resolution {
	case ResolutionNew:
		s.records = append(s.records, *candidate)
		return IngestResult{Added: true}
	case ResolutionReplace:
		prior := s.records[idx].ID
		s.records[idx] = *candidate
		return IngestResult{Replaced: true, PriorID: prior}
	default:
		return IngestResult{Duplicate: true}
	}
}

// WorkingSet returns a copy of the album slice. Record values are shared;
// callers must treat them as read-only.
func (s *Store) WorkingSet() []model.AlbumRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AlbumRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the working-set size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Replace adopts a new baseline wholesale (snapshot load, full refetch).
func (s *Store) Replace(records []model.AlbumRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]model.AlbumRecord, len(records))
	copy(s.records, records)
}

// AppendUnique appends records whose identifiers are not yet present and
// returns how many were actually added. Incremental sync batches can
// overlap the working set at the boundary timestamp.
func (s *Store) AppendUnique(records []model.AlbumRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]struct{}, len(s.records))
	for i := range s.records {
		seen[s.records[i].ID] = struct{}{}
	}

	added := 0
	for i := range records {
		if _, dup := seen[records[i].ID]; dup {
			continue
		}
		seen[records[i].ID] = struct{}{}
		s.records = append(s.records, records[i])
		added++
	}
	return added
}

// Fingerprint is the cheap cache-validity proxy for derived views:
// (count, first-id, last-id). It intentionally misses in-place field
// edits that change neither length nor endpoint identities; see the
// materializer notes.
type Fingerprint struct {
	Count   int
	FirstID int64
	LastID  int64
}

// Fingerprint computes the current working-set fingerprint.
func (s *Store) Fingerprint() Fingerprint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fingerprintOf(s.records)
}

func fingerprintOf(records []model.AlbumRecord) Fingerprint {
	fp := Fingerprint{Count: len(records)}
	if len(records) > 0 {
		fp.FirstID = records[0].ID
		fp.LastID = records[len(records)-1].ID
	}
	return fp
}
