package casefile

import (
	"context"

	id "amlcase/pkg/domain"
)

// Store persists readiness snapshots. Latest returns CodeNotFound when the
// case has never been evaluated.
type Store interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	LatestSnapshot(ctx context.Context, customerID id.CustomerID) (Snapshot, error)
}
