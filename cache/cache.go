// Package cache keeps computed dashboards so repeated reads skip the fold.
// Entries expire after a TTL and are dropped explicitly whenever a write
// touches one of the users they belong to.
//
// Every user carries a generation that Invalidate bumps. A reader takes the
// generation before loading records and hands it back to Set, which stores
// nothing if a write has invalidated the user in between.
package cache

import (
	"context"

	"splitledger-backend/ledger"
)

type DashboardCache interface {
	// Get returns the cached dashboard for userID. ok is false on a miss.
	Get(ctx context.Context, userID string) (dashboard ledger.Dashboard, ok bool, err error)
	// Generation returns the user's current generation.
	Generation(ctx context.Context, userID string) (uint64, error)
	// Set stores dashboard only while the user is still at generation. stored
	// is false when a newer invalidation won.
	Set(ctx context.Context, userID string, generation uint64, dashboard ledger.Dashboard) (stored bool, err error)
	Invalidate(ctx context.Context, userIDs ...string) error
}

func key(userID string) string {
	return "splitledger:dashboard:" + userID
}

func generationKey(userID string) string {
	return "splitledger:dashboard-gen:" + userID
}
