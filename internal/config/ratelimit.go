package config

import (
	"strings"
	"time"
)

// Key strategies understood by the booking rate limiter.
const (
	RateKeyIP      = "ip"
	RateKeyRoute   = "route"
	RateKeyIPRoute = "ip_route"
)

// RateLimitConfig configures the Redis token bucket in front of booking
// creation.  Capacity is the burst size and RefillTokens are added back
// every RefillInterval.  TTL is how long an idle bucket is kept.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.  RATE_LIMIT_BURST
// and RATE_LIMIT_REFILL_EVERY are shorthands for "burst of N, one token per
// period" and take precedence over the long form.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", RateKeyIPRoute),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if burst := envInt("RATE_LIMIT_BURST", 0); burst > 0 {
		cfg.Capacity = burst
	}
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		cfg.RefillTokens = 1
		cfg.RefillInterval = every
	}
	return cfg.normalized()
}

// normalized clamps values the bucket script cannot work with.  An idle
// bucket must outlive at least five refills or it would reset to full
// capacity between slow requests.
func (c RateLimitConfig) normalized() RateLimitConfig {
	c.Capacity = max(c.Capacity, 1)
	c.RefillTokens = max(c.RefillTokens, 1)
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	c.TTL = max(c.TTL, 5*c.RefillInterval)
	switch s := strings.ToLower(c.KeyStrategy); s {
	case RateKeyIP, RateKeyRoute, RateKeyIPRoute:
		c.KeyStrategy = s
	default:
		c.KeyStrategy = RateKeyIPRoute
	}
	return c
}
