package repository

import (
	"context"
	"fmt"

	"CrateFM/model"

	"gorm.io/gorm"
)

// HistoryRepository persists scrape-run provenance in the scrape_history
// table. Goes through GORM; the table is auto-migrated at startup.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a GORM-backed history repository.
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record stores one provenance entry.
func (r *HistoryRepository) Record(ctx context.Context, entry *model.HistoryEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record history entry %s: %w", entry.ID, err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, n int) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(n).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load recent history: %w", err)
	}
	return entries, nil
}
