package config

import "time"

// RosterCacheConfig defines settings for the upload-roster cache.
// When Enabled is false or no Redis client is available the cache is
// disabled and uploads must be re-submitted instead of replayed by id.
// TTL bounds how long a parsed upload stays addressable; Prefix
// namespaces the keys.
type RosterCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadRosterCacheConfig reads environment variables to build a
// RosterCacheConfig.  Defaults are used when variables are not set.
func LoadRosterCacheConfig() RosterCacheConfig {
	return RosterCacheConfig{
		Enabled: getenv("ROSTER_CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("ROSTER_CACHE_TTL", "30m")),
		Prefix:  getenv("ROSTER_CACHE_PREFIX", "roster"),
	}
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}
