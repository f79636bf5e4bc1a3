package config

import (
	"os"
	"time"
)

// SlotCacheConfig defines settings for the Redis free-slot cache.  When
// Enabled is false or no Redis client is available, the availability
// endpoints fall through to the database on every request.  TTL is only a
// backstop; the reservation engine invalidates entries explicitly on every
// booking transition.
type SlotCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadSlotCacheConfig reads environment variables to build a
// SlotCacheConfig.  Defaults are used when variables are not set.
func LoadSlotCacheConfig() SlotCacheConfig {
	return SlotCacheConfig{
		Enabled: getenv("SLOT_CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("SLOT_CACHE_TTL", "5m")),
		Prefix:  getenv("SLOT_CACHE_PREFIX", "avail"),
	}
}

// Helper functions shared with redis.go and ratelimit.go.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
