package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMintCertificate(t *testing.T) {
	t.Parallel()

	client := NewNoop()

	cert, err := client.MintCertificate(context.Background(), "asset-7", map[string]string{"origin": "mill-3"})
	require.NoError(t, err)

	assert.NotEmpty(t, cert.ID)
	assert.Equal(t, "asset-7", cert.AssetID)
	assert.Equal(t, "noop:asset-7", cert.Reference)
	assert.False(t, cert.IssuedAt.IsZero())

	// Each mint gets a fresh id.
	again, err := client.MintCertificate(context.Background(), "asset-7", nil)
	require.NoError(t, err)
	assert.NotEqual(t, cert.ID, again.ID)
}

func TestNoopAssetStatus(t *testing.T) {
	t.Parallel()

	client := NewNoop()

	status, err := client.AssetStatus(context.Background(), "asset-7")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
}
