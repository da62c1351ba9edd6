package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Client = (*Noop)(nil)

// Noop satisfies Client without touching a ledger. Certificates get a
// synthetic id and every asset reads as pending, which is enough for
// development and for deployments that defer anchoring.
type Noop struct{}

// NewNoop creates a no-op chain client.
func NewNoop() *Noop {
	return &Noop{}
}

// MintCertificate fabricates a certificate receipt locally.
func (n *Noop) MintCertificate(_ context.Context, assetID string, _ map[string]string) (*Certificate, error) {
	return &Certificate{
		ID:        uuid.NewString(),
		AssetID:   assetID,
		IssuedAt:  time.Now().UTC(),
		Reference: fmt.Sprintf("noop:%s", assetID),
	}, nil
}

// AssetStatus always reports pending.
func (n *Noop) AssetStatus(_ context.Context, _ string) (Status, error) {
	return StatusPending, nil
}
