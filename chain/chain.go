// Package chain defines the blockchain collaborator contract. The platform
// only needs two operations from the ledger, so the surface stays small and
// the default client is a no-op that lets everything bootstrap without a
// node endpoint configured.
package chain

import (
	"context"
	"time"
)

// Status describes where an asset sits in its on-chain lifecycle.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusPending   Status = "pending"
	StatusTokenized Status = "tokenized"
	StatusRevoked   Status = "revoked"
)

// Certificate is the receipt for a minted provenance record.
type Certificate struct {
	ID        string    `json:"id"`
	AssetID   string    `json:"asset_id"`
	TxHash    string    `json:"tx_hash,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	Reference string    `json:"reference,omitempty"`
}

// Client talks to the ledger on behalf of the platform.
type Client interface {
	// MintCertificate anchors a provenance certificate for the asset.
	MintCertificate(ctx context.Context, assetID string, metadata map[string]string) (*Certificate, error)

	// AssetStatus reports the asset's current on-chain status.
	AssetStatus(ctx context.Context, assetID string) (Status, error)
}
