package depreciation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
)

// ProjectionKey identifies a cached projection
type ProjectionKey struct {
	OwnerID    uuid.UUID
	PropertyID uuid.UUID
	From       valueobject.FinancialYear
	To         valueobject.FinancialYear
}

// String renders the key as "<owner>:<property>:<from>-<to>"
func (k ProjectionKey) String() string {
	return fmt.Sprintf("%s%d-%d", PropertyKeyPrefix(k.OwnerID, k.PropertyID), k.From.Int(), k.To.Int())
}

// PropertyKeyPrefix is the common prefix of every projection key of a property
func PropertyKeyPrefix(ownerID, propertyID uuid.UUID) string {
	return ownerID.String() + ":" + propertyID.String() + ":"
}

// ProjectionCache stores built projections. Get returns nil rows on a miss.
type ProjectionCache interface {
	Get(ctx context.Context, key ProjectionKey) ([]ProjectionRow, error)
	Set(ctx context.Context, key ProjectionKey, rows []ProjectionRow, ttl time.Duration) error

	// InvalidateProperty drops every cached range of a property
	InvalidateProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error

	Close() error
}

// CacheUpdateMessage is broadcast to other instances when a property's
// projections go stale
type CacheUpdateMessage struct {
	OwnerID    string `json:"owner_id"`
	PropertyID string `json:"property_id"`
	Timestamp  int64  `json:"timestamp"`
}

// CacheInvalidator fans invalidations out across instances
type CacheInvalidator interface {
	Publish(ctx context.Context, msg CacheUpdateMessage) error

	// Subscribe blocks, invoking callback for each message, until ctx is done
	Subscribe(ctx context.Context, callback func(msg CacheUpdateMessage)) error

	Close() error
}
