// Package cache provides the Redis-backed free-slot cache.  The free/busy
// view directly gates the exclusivity invariant, so entries are invalidated
// by the reservation engine on every booking transition rather than relying
// on TTL expiry alone; the TTL is only a backstop against missed
// invalidations.  A nil Redis client degrades to a no-op cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deskhive/workspace-reservation/internal/schedule"
)

// SlotCache caches FreeSlots results per (workspace, date).
type SlotCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSlotCache builds a SlotCache.  rdb may be nil, in which case every Get
// misses and Set/Invalidate do nothing.
func NewSlotCache(rdb *redis.Client, prefix string, ttl time.Duration) *SlotCache {
	if prefix == "" {
		prefix = "avail"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SlotCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *SlotCache) key(workspaceID uint64, date string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, workspaceID, date)
}

// slotEntry is the serialized form of one free interval.
type slotEntry struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Get returns the cached free slots and true on a hit.  Any Redis or decode
// error is treated as a miss.
func (c *SlotCache) Get(ctx context.Context, workspaceID uint64, date string) ([]schedule.Interval, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key(workspaceID, date)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []slotEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	slots := make([]schedule.Interval, len(entries))
	for i, e := range entries {
		slots[i] = schedule.Interval{Start: e.Start, End: e.End}
	}
	return slots, true
}

// Set stores the free slots for a (workspace, date).  Failures are logged
// and ignored; the cache is best-effort.
func (c *SlotCache) Set(ctx context.Context, workspaceID uint64, date string, slots []schedule.Interval) {
	if c.rdb == nil {
		return
	}
	entries := make([]slotEntry, len(slots))
	for i, iv := range slots {
		entries[i] = slotEntry{Start: iv.Start, End: iv.End}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(workspaceID, date), raw, c.ttl).Err(); err != nil {
		log.Printf("slot-cache: set %s failed: %v", c.key(workspaceID, date), err)
	}
}

// Invalidate drops the cached view for a (workspace, date).  Called by the
// reservation engine on every booking transition for that key.
func (c *SlotCache) Invalidate(ctx context.Context, workspaceID uint64, date string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.key(workspaceID, date)).Err(); err != nil {
		log.Printf("slot-cache: invalidate %s failed: %v", c.key(workspaceID, date), err)
	}
}
