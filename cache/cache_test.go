package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *Config {
	return &Config{
		Engine:          EngineMemory,
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: 10 * time.Millisecond,
		MaxItems:        100,
	}
}

func TestNewSelectsEngine(t *testing.T) {
	t.Parallel()

	engine, err := New(&Config{Engine: EngineMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, engine)

	engine, err = New(&Config{Engine: EngineRedis})
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, engine)

	// Empty engine falls back to memory.
	engine, err = New(&Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, engine)

	_, err = New(&Config{Engine: "memcached"})
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestMemorySetGetDelete(t *testing.T) {
	t.Parallel()

	engine := NewMemory(memoryConfig())
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	require.NoError(t, engine.Set(ctx, "greeting", "hello", time.Minute))

	value, found := engine.Get(ctx, "greeting")
	assert.True(t, found)
	assert.Equal(t, "hello", value)

	require.NoError(t, engine.Delete(ctx, "greeting"))
	_, found = engine.Get(ctx, "greeting")
	assert.False(t, found)

	// Deleting an absent key is not an error.
	assert.NoError(t, engine.Delete(ctx, "missing"))
}

func TestMemoryExpiration(t *testing.T) {
	t.Parallel()

	engine := NewMemory(memoryConfig())
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	require.NoError(t, engine.Set(ctx, "ephemeral", "value", 20*time.Millisecond))

	_, found := engine.Get(ctx, "ephemeral")
	assert.True(t, found)

	time.Sleep(50 * time.Millisecond)

	_, found = engine.Get(ctx, "ephemeral")
	assert.False(t, found, "expired item should not be returned")
}

func TestMemoryNegativeTTLNeverExpires(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.DefaultTTL = 10 * time.Millisecond
	engine := NewMemory(cfg)
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	require.NoError(t, engine.Set(ctx, "pinned", "value", -1))

	time.Sleep(30 * time.Millisecond)

	_, found := engine.Get(ctx, "pinned")
	assert.True(t, found, "negative TTL should pin the item")
}

func TestMemoryMaxItems(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.MaxItems = 2
	engine := NewMemory(cfg)
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	require.NoError(t, engine.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, engine.Set(ctx, "b", 2, time.Minute))

	err := engine.Set(ctx, "c", 3, time.Minute)
	assert.ErrorIs(t, err, ErrCacheFull)

	// Overwriting an existing key still works at capacity.
	assert.NoError(t, engine.Set(ctx, "a", 10, time.Minute))
}

func TestMemoryFlush(t *testing.T) {
	t.Parallel()

	engine := NewMemory(memoryConfig())
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	require.NoError(t, engine.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, engine.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, engine.Flush(ctx))

	_, found := engine.Get(ctx, "a")
	assert.False(t, found)
	_, found = engine.Get(ctx, "b")
	assert.False(t, found)
}

func TestMemorySweepRemovesExpired(t *testing.T) {
	t.Parallel()

	engine := NewMemory(memoryConfig())
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	require.NoError(t, engine.Set(ctx, "stale", "value", 5*time.Millisecond))

	// Give the sweep a couple of ticks to collect the item.
	assert.Eventually(t, func() bool {
		engine.mu.RLock()
		defer engine.mu.RUnlock()
		_, present := engine.items["stale"]
		return !present
	}, time.Second, 10*time.Millisecond, "sweep should remove the expired item")
}

func TestRedisOperations(t *testing.T) {
	t.Parallel()

	s := miniredis.RunT(t)

	engine := NewRedis(&Config{
		DefaultTTL: 5 * time.Minute,
		RedisURL:   "redis://" + s.Addr(),
	})
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	require.NoError(t, engine.Set(ctx, "greeting", "hello", time.Minute))

	value, found := engine.Get(ctx, "greeting")
	assert.True(t, found)
	assert.Equal(t, "hello", value)

	// Values round-trip through JSON, so numbers decode as float64.
	require.NoError(t, engine.Set(ctx, "count", 42, time.Minute))
	value, found = engine.Get(ctx, "count")
	assert.True(t, found)
	assert.Equal(t, float64(42), value)

	require.NoError(t, engine.Delete(ctx, "greeting"))
	_, found = engine.Get(ctx, "greeting")
	assert.False(t, found)

	require.NoError(t, engine.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, engine.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, engine.Flush(ctx))
	_, found = engine.Get(ctx, "a")
	assert.False(t, found)
}

func TestRedisExpiration(t *testing.T) {
	t.Parallel()

	s := miniredis.RunT(t)

	engine := NewRedis(&Config{
		DefaultTTL: 5 * time.Minute,
		RedisURL:   "redis://" + s.Addr(),
	})
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	require.NoError(t, engine.Set(ctx, "ephemeral", "value", time.Second))

	// miniredis does not tick wall-clock time on its own.
	s.FastForward(2 * time.Second)

	_, found := engine.Get(ctx, "ephemeral")
	assert.False(t, found)
}

func TestRedisConnectWithPassword(t *testing.T) {
	t.Parallel()

	s := miniredis.RunT(t)
	s.RequireAuth("test-password")

	engine := NewRedis(&Config{
		DefaultTTL:    5 * time.Minute,
		RedisURL:      "redis://" + s.Addr(),
		RedisPassword: "test-password",
		RedisDB:       1,
	})
	ctx := context.Background()

	err := engine.Connect(ctx)
	require.NoError(t, err, "expected successful connection to miniredis with auth")

	require.NoError(t, engine.Set(ctx, "pw-key", "pw-value", time.Minute))
	value, found := engine.Get(ctx, "pw-key")
	assert.True(t, found)
	assert.Equal(t, "pw-value", value)

	assert.NoError(t, engine.Close(ctx))
}

func TestRedisConnectFailure(t *testing.T) {
	t.Parallel()

	engine := NewRedis(&Config{RedisURL: "redis://127.0.0.1:1"})
	err := engine.Connect(context.Background())
	assert.Error(t, err)
}

func TestRedisRequiresConnection(t *testing.T) {
	t.Parallel()

	engine := NewRedis(&Config{RedisURL: "redis://localhost:6379"})
	ctx := context.Background()

	assert.ErrorIs(t, engine.Set(ctx, "k", "v", time.Minute), ErrNotConnected)
	assert.ErrorIs(t, engine.Delete(ctx, "k"), ErrNotConnected)
	assert.ErrorIs(t, engine.Flush(ctx), ErrNotConnected)

	_, found := engine.Get(ctx, "k")
	assert.False(t, found)
}

func TestRedisUnmarshalableValue(t *testing.T) {
	t.Parallel()

	s := miniredis.RunT(t)

	engine := NewRedis(&Config{
		DefaultTTL: 5 * time.Minute,
		RedisURL:   "redis://" + s.Addr(),
	})
	ctx := context.Background()
	require.NoError(t, engine.Connect(ctx))
	defer engine.Close(ctx)

	err := engine.Set(ctx, "bad", func() {}, time.Minute)
	assert.Error(t, err, "functions cannot be marshaled to JSON")

	// Raw non-JSON payloads read back as a miss rather than an error.
	s.Set("raw", "{not-json")
	_, found := engine.Get(ctx, "raw")
	assert.False(t, found)
}

func TestTTLOrDefault(t *testing.T) {
	t.Parallel()

	cfg := &Config{DefaultTTL: time.Minute}

	assert.Equal(t, time.Minute, cfg.ttlOrDefault(0))
	assert.Equal(t, time.Duration(0), cfg.ttlOrDefault(-1))
	assert.Equal(t, time.Second, cfg.ttlOrDefault(time.Second))
}
