package config

import (
	"strings"
	"time"
)

// CacheConfig configures the Redis response cache.  It is mounted on the
// experience list only: experiences do not change after seeding, whereas
// availability moves with every booking and is never cached.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // upper-case HTTP methods eligible for caching
	TTL          time.Duration
	KeyStrategy  string // route, route_query or method_route_query
	Prefix       string
	MaxBodyBytes int // larger responses are served but not stored
}

// Cacheable reports whether responses to method may be stored.
func (c CacheConfig) Cacheable(method string) bool {
	return c.Methods[strings.ToUpper(method)]
}

// LoadCacheConfig reads the CACHE_* variables.  CACHE_METHODS is a comma
// separated list and defaults to GET.
func LoadCacheConfig() CacheConfig {
	methods := parseMethods(envStr("CACHE_METHODS", "GET"))
	if len(methods) == 0 {
		methods = map[string]bool{"GET": true}
	}
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      methods,
		TTL:          envDur("CACHE_TTL", 5*time.Minute),
		KeyStrategy:  strings.ToLower(envStr("CACHE_KEY_STRATEGY", "route_query")),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: max(envInt("CACHE_MAX_BODY_BYTES", 1<<20), 0),
	}
}

func parseMethods(csv string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range strings.Split(csv, ",") {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			out[m] = true
		}
	}
	return out
}
