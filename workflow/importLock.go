package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"github.com/collisionworks/bodyshop_backend/config"
)

const naturalKeyLockTTL = 10 * time.Second

// ObtainNaturalKeyLock serializes concurrent imports that would materialize
// the same entity, e.g. two estimates for the same customer uploaded at once.
// The unique indexes remain the backstop; the lock just turns most races into
// clean find-then-create sequences. A nil lock with nil error means redis is
// not configured and callers rely on the index alone.
func ObtainNaturalKeyLock(ctx context.Context, kind string, shopId string, key string) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("bms:%s:%s:%s", kind, shopId, key), naturalKeyLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if err != nil {
		return nil, err
	}
	return lock, nil
}
