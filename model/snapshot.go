package model

import "time"

// Snapshot is a versioned, timestamped full copy of the album set plus
// scrape-history provenance, persisted for fast restart. It is written
// wholesale on every sync and read once at startup.
type Snapshot struct {
	Version      string         `json:"version"`
	TimestampMs  int64          `json:"timestampEpochMs"`
	TimestampISO string         `json:"timestampISO"`
	Albums       []AlbumRecord  `json:"albums"`
	History      []HistoryEntry `json:"scrapeHistory"`
}

// Timestamp returns the snapshot creation time.
func (s *Snapshot) Timestamp() time.Time {
	return time.UnixMilli(s.TimestampMs)
}

// HistoryEntry records one scrape/sync run for provenance.
type HistoryEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Source     string    `json:"source" gorm:"size:32"` // "sync", "scrape", "drop"
	Added      int       `json:"added"`
	Replaced   int       `json:"replaced"`
	Duplicates int       `json:"duplicates"`
	Failures   int       `json:"failures"`
	Total      int       `json:"total"` // working-set size after the run
}

// TableName keeps the gorm table name in line with the snapshot field.
func (HistoryEntry) TableName() string {
	return "scrape_history"
}
