package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CrateFM/core/catalog"
	"CrateFM/logger"
	"CrateFM/model"

	"github.com/go-redis/redis/v8"
)

// SnapshotCache persists the full album working set as a single versioned
// JSON blob under one Redis key. The blob is written wholesale on every
// sync and read once at startup; a version-tag mismatch or an age at or
// past the TTL invalidates it.
type SnapshotCache struct {
	rdb     redis.Cmdable
	key     string
	version string
	ttl     time.Duration
	now     func() time.Time

	// loaded holds the last snapshot read by IsValid so a following
	// Load does not hit Redis twice.
	loaded *model.Snapshot
}

// NewSnapshotCache builds a snapshot cache over the given Redis client.
func NewSnapshotCache(rdb redis.Cmdable, key, version string, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		rdb:     rdb,
		key:     key,
		version: version,
		ttl:     ttl,
		now:     time.Now,
	}
}

// IsValid reports whether a usable snapshot exists. An invalid snapshot
// (version mismatch or expired) is deleted as a side effect. Storage
// failures count as "no snapshot" so callers fall back to a full fetch.
func (c *SnapshotCache) IsValid(ctx context.Context) bool {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logger.Warn("Snapshot cache unavailable, treating as empty", logger.ErrorField(err))
		return false
	}

	snap, err := decodeSnapshot(raw)
	if err != nil {
		logger.Warn("Snapshot cache corrupt, discarding", logger.ErrorField(err))
		c.drop(ctx)
		return false
	}

	if c.stale(snap) {
		logger.Info("Snapshot discarded, full refetch ahead",
			logger.ErrorField(catalog.ErrStaleSnapshot),
			logger.String("version", snap.Version),
			logger.Int64("timestampMs", snap.TimestampMs))
		c.drop(ctx)
		return false
	}

	c.loaded = snap
	return true
}

// Load returns the complete snapshot, never truncated. Returns nil when
// no snapshot exists.
func (c *SnapshotCache) Load(ctx context.Context) (*model.Snapshot, error) {
	if c.loaded != nil {
		snap := c.loaded
		c.loaded = nil
		return snap, nil
	}

	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", catalog.ErrStorageUnavailable, err)
	}
	return decodeSnapshot(raw)
}

// Save overwrites any prior snapshot with the given records and history
// under a fresh timestamp. One SET keeps the write a single logical
// transaction.
func (c *SnapshotCache) Save(ctx context.Context, records []model.AlbumRecord, history []model.HistoryEntry) error {
	now := c.now()
	snap := model.Snapshot{
		Version:      c.version,
		TimestampMs:  now.UnixMilli(),
		TimestampISO: now.UTC().Format(time.RFC3339),
		Albums:       records,
		History:      history,
	}

	raw, err := json.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("snapshot cache marshal: %w", err)
	}

	// Redis expiry is set slightly past the logical TTL; staleness is
	// decided by the embedded timestamp, the expiry only reclaims space.
	if err := c.rdb.Set(ctx, c.key, raw, c.ttl+time.Hour).Err(); err != nil {
		return fmt.Errorf("%w: save: %v", catalog.ErrStorageUnavailable, err)
	}

	c.loaded = nil
	logger.Info("Snapshot persisted",
		logger.Int("albums", len(records)),
		logger.Int("history", len(history)))
	return nil
}

// Clear removes the snapshot.
func (c *SnapshotCache) Clear(ctx context.Context) error {
	c.loaded = nil
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("%w: clear: %v", catalog.ErrStorageUnavailable, err)
	}
	return nil
}

// stale reports whether the snapshot fails the version or TTL check.
// A snapshot exactly at the TTL boundary is stale.
func (c *SnapshotCache) stale(snap *model.Snapshot) bool {
	if snap.Version != c.version {
		return true
	}
	age := c.now().Sub(snap.Timestamp())
	return age >= c.ttl
}

func (c *SnapshotCache) drop(ctx context.Context) {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		logger.Warn("Failed to drop invalid snapshot", logger.ErrorField(err))
	}
}

func decodeSnapshot(raw []byte) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("snapshot cache decode: %w", err)
	}
	return &snap, nil
}
