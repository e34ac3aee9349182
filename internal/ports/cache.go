package ports

import (
	"context"
	"time"
)

// Cache defines a generic key-value capability for usecases. Adapters must
// be bounded: a full cache evicts, it never grows without limit.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
