package llm

import (
	"fmt"

	"github.com/archivecast/podcaster/internal/keypool"
)

// KeyChoice is the key resolved for one provider call plus the
// bookkeeping hooks to report its outcome.
type KeyChoice struct {
	Value   string
	poolKey *keypool.Key
	pool    *keypool.Pool
}

// reportSuccess and reportError are no-ops when the key did not come
// from the pool (explicit or environment keys carry no pool state).
func (k KeyChoice) reportSuccess() {
	if k.pool != nil && k.poolKey != nil {
		k.pool.MarkSuccess(k.poolKey)
	}
}

func (k KeyChoice) reportRateLimited() {
	if k.pool != nil && k.poolKey != nil {
		k.pool.MarkRateLimited(k.poolKey, 0)
	}
}

func (k KeyChoice) reportInvalid() {
	if k.pool != nil && k.poolKey != nil {
		k.pool.MarkError(k.poolKey, keypool.ErrInvalidKey)
	}
}

// resolveKey centralizes the precedence rule shared by every strategy:
// explicit client key → pool (if usePool and non-empty) → environment
// key. Returns an error only when no key can be resolved at all.
func resolveKey(explicit string, usePool bool, pool *keypool.Pool, envKey string) (KeyChoice, error) {
	if explicit != "" {
		return KeyChoice{Value: explicit}, nil
	}
	if usePool && pool != nil && pool.Len() > 0 {
		if k, ok := pool.Next(); ok {
			return KeyChoice{Value: k.Value(), poolKey: k, pool: pool}, nil
		}
	}
	if envKey != "" {
		return KeyChoice{Value: envKey}, nil
	}
	return KeyChoice{}, fmt.Errorf("no available key: NoAvailableKey")
}
