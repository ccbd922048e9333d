package alerts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "cg:alert:sent:" // cg:alert:sent:{user_id}:{hash}

// DedupeCache suppresses repeat finding alerts within a TTL window so a
// recurring finding does not page on every scan. Backed by Redis SETNX;
// a nil cache disables suppression entirely.
type DedupeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDedupeCache(client *redis.Client, ttl time.Duration) *DedupeCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &DedupeCache{client: client, ttl: ttl}
}

// MarkIfNew records the finding identity and reports true if it had not
// been alerted within the TTL window. Redis errors fail open: the alert
// is sent.
func (c *DedupeCache) MarkIfNew(ctx context.Context, userDBID, resource, title string) bool {
	if c == nil {
		return true
	}

	key := dedupeKeyPrefix + userDBID + ":" + fingerprint(resource, title)
	ok, err := c.client.SetNX(ctx, key, 1, c.ttl).Result()
	if err != nil {
		log.Printf("[warn] operation=alert_dedupe message=redis unavailable error=%v", err)
		return true
	}
	return ok
}

func fingerprint(resource, title string) string {
	sum := sha256.Sum256([]byte(resource + "\x00" + title))
	return hex.EncodeToString(sum[:8])
}
