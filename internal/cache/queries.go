package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Resource key prefixes. Mutations invalidate by prefix so every parameter
// variant of a list drops together.
const (
	KeyPrefixPOList    = "purchase_orders:list"
	KeyPrefixDistricts = "purchase_orders:districts"
	KeyPrefixSummary   = "rolls_usage:summary"
)

// FetchFunc loads fresh bytes from the backend for one cache key.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Queries layers staleness windows and same-key de-duplication over a Store.
// Concurrent fetches for the same key collapse into a single upstream call;
// writes are last-response-wins.
type Queries struct {
	store Store
	group singleflight.Group
	now   func() time.Time
}

func NewQueries(store Store) *Queries {
	return &Queries{store: store, now: time.Now}
}

// Key builds a cache key from a resource prefix and serialized parameters.
// Parameters are hashed so arbitrary values stay safe as store keys.
func Key(prefix string, params ...string) string {
	if len(params) == 0 {
		return prefix + ":default"
	}
	raw := strings.Join(params, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Fetch returns the cached payload when it is younger than ttl, otherwise
// calls fetch and stores the result. A cache-store failure degrades to a
// direct fetch rather than failing the read.
func (q *Queries) Fetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	entry, ok, err := q.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, fetching directly")
	} else if ok && q.now().Sub(entry.FetchedAt) < ttl {
		return entry.Payload, nil
	}

	return q.refresh(ctx, key, ttl, fetch)
}

// Refresh bypasses the staleness window and always goes upstream. This backs
// the focus-style opportunistic refetch.
func (q *Queries) Refresh(ctx context.Context, key string, fetch FetchFunc) ([]byte, error) {
	return q.refresh(ctx, key, 0, fetch)
}

func (q *Queries) refresh(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	payload, err, _ := q.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have already
		// refreshed this key while we waited our turn.
		if ttl > 0 {
			if entry, ok, err := q.store.Get(ctx, key); err == nil && ok && q.now().Sub(entry.FetchedAt) < ttl {
				return entry.Payload, nil
			}
		}

		fresh, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		entry := &Entry{Payload: fresh, FetchedAt: q.now()}
		if err := q.store.Set(ctx, key, entry); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.([]byte), nil
}

// Invalidate drops every entry under the prefix. The next read refetches.
func (q *Queries) Invalidate(ctx context.Context, prefix string) error {
	return q.store.DeletePrefix(ctx, prefix)
}
