package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ItemLocker serializes reconciliation per tenant and item. Two concurrent
// counts touching the same item must not interleave their batch walks.
type ItemLocker interface {
	// Acquire blocks until the key is held and returns a release function.
	// The release function must always be called, typically deferred.
	Acquire(ctx context.Context, key string) (func(), error)
}

// itemLockKey builds the lock key for one item within a tenant
func itemLockKey(tenantID, itemID uuid.UUID) string {
	return fmt.Sprintf("inventory:reconcile:%s:%s", tenantID, itemID)
}
