package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginRequest_GeneratesIDWhenEmpty(t *testing.T) {
	c := New()

	scope := c.BeginRequest("")
	assert.NotEmpty(t, scope.ID())

	other := c.BeginRequest("")
	assert.NotEqual(t, scope.ID(), other.ID())

	named := c.BeginRequest("req-42")
	assert.Equal(t, "req-42", named.ID())
}

func TestRequestScope_ResolveSharesInstances(t *testing.T) {
	ctx := context.Background()
	c := New()

	builds := 0
	require.NoError(t, c.Register("session", func(deps ...any) (any, error) {
		builds++
		return builds, nil
	}, WithScope(ScopeRequest)))

	scope := c.BeginRequest("")
	first, err := scope.Resolve(ctx, "session")
	require.NoError(t, err)
	second, err := scope.Resolve(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A second scope gets its own instance.
	other := c.BeginRequest("")
	third, err := other.Resolve(ctx, "session")
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestRequestScope_CloseIdempotent(t *testing.T) {
	ctx := context.Background()
	c := New()

	destroys := 0
	require.NoError(t, c.Register("session", func(deps ...any) (any, error) {
		return "s", nil
	}, WithScope(ScopeRequest), WithLifecycle(Lifecycle{
		OnDestroy: func(ctx context.Context, instance any) error {
			destroys++
			return nil
		},
	})))

	scope := c.BeginRequest("req-1")
	_, err := scope.Resolve(ctx, "session")
	require.NoError(t, err)

	scope.Close(ctx)
	scope.Close(ctx)
	assert.Equal(t, 1, destroys, "second Close must not re-destroy")

	_, err = scope.Resolve(ctx, "session")
	require.ErrorIs(t, err, ErrScopeClosed)
}

func TestRequestScope_ContextRoundTrip(t *testing.T) {
	c := New()
	scope := c.BeginRequest("req-7")

	ctx := ContextWithScope(context.Background(), scope)
	got, ok := ScopeFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, scope, got)

	_, ok = ScopeFromContext(context.Background())
	assert.False(t, ok)
}
