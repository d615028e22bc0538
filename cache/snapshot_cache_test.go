package cache

import (
	"testing"
	"time"

	"CrateFM/model"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestStaleTTLBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh", time.Hour, false},
		{"just under", ttl - time.Millisecond, false},
		{"exactly at boundary", ttl, true},
		{"past", ttl + time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &SnapshotCache{version: "2.1", ttl: ttl, now: fixedClock(now)}
			snap := &model.Snapshot{
				Version:     "2.1",
				TimestampMs: now.Add(-tt.age).UnixMilli(),
			}
			if got := c.stale(snap); got != tt.want {
				t.Fatalf("stale(age=%v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}

func TestStaleVersionMismatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &SnapshotCache{version: "2.1", ttl: 24 * time.Hour, now: fixedClock(now)}

	// Written seconds ago, so only the version tag can invalidate it.
	snap := &model.Snapshot{
		Version:     "2.0",
		TimestampMs: now.Add(-time.Second).UnixMilli(),
	}
	if !c.stale(snap) {
		t.Fatal("version mismatch not treated as stale")
	}

	snap.Version = "2.1"
	if c.stale(snap) {
		t.Fatal("matching version flagged stale")
	}
}

func TestDecodeSnapshotRejectsCorruptPayload(t *testing.T) {
	if _, err := decodeSnapshot([]byte("{not json")); err == nil {
		t.Fatal("corrupt payload decoded without error")
	}

	snap, err := decodeSnapshot([]byte(`{"version":"2.1","timestampEpochMs":1700000000000,"albums":[{"id":9,"title":"Kala"}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Version != "2.1" || len(snap.Albums) != 1 || snap.Albums[0].ID != 9 {
		t.Fatalf("decoded snapshot = %+v", snap)
	}
}
