package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is disabled.
// MaxBodyBytes bounds the size of a cached response.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	MethodList   []string      `env:"CACHE_METHODS" envSeparator:"," envDefault:"GET"`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`

	Methods map[string]bool // built from MethodList
}

func (c *CacheConfig) normalize() {
	c.Methods = map[string]bool{}
	for _, p := range c.MethodList {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			c.Methods[p] = true
		}
	}
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
}
