package cache

import "time"

// Engine names accepted by Config.Engine.
const (
	EngineMemory = "memory"
	EngineRedis  = "redis"
)

// Config selects and tunes a cache backend.
type Config struct {
	// Engine picks the backend implementation.
	Engine string `yaml:"engine" env:"cache_engine" default:"memory"`

	// DefaultTTL applies to Set calls passing a zero ttl.
	DefaultTTL time.Duration `yaml:"defaultTTL" env:"cache_default_ttl" default:"5m"`

	// CleanupInterval is how often the memory engine sweeps expired items.
	CleanupInterval time.Duration `yaml:"cleanupInterval" env:"cache_cleanup_interval" default:"1m"`

	// MaxItems caps the memory engine; zero means unlimited.
	MaxItems int `yaml:"maxItems" env:"cache_max_items" default:"10000"`

	// RedisURL is the redis:// connection URL for the redis engine.
	RedisURL string `yaml:"redisURL" env:"cache_redis_url" default:"redis://localhost:6379"`

	// RedisPassword overrides any password embedded in RedisURL.
	RedisPassword string `yaml:"redisPassword" env:"cache_redis_password"`

	// RedisDB selects the redis logical database.
	RedisDB int `yaml:"redisDB" env:"cache_redis_db"`
}

// ttlOrDefault maps the Set ttl convention onto a concrete expiry.
func (c *Config) ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return c.DefaultTTL
	}
	if ttl < 0 {
		return 0
	}
	return ttl
}
