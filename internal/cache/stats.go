package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/hngstage/profile-api/internal/ratelimit"
)

const (
	// statsPrefix is the Redis key prefix for rate limit statistics.
	statsPrefix = "ratelimit:stats"
	// defaultStatsTTL applies to per-minute and per-client keys. Totals never expire.
	defaultStatsTTL = 24 * time.Hour
	// minuteBucketLayout formats the per-minute bucket suffix.
	minuteBucketLayout = "200601021504"
)

// Record implements ratelimit.EventRecorder.
// Counters are incremented in one pipeline: totals per route, a per-minute
// bucket and a per-client hash keyed by the hashed client address.
func (c *Cache) Record(ctx context.Context, ev ratelimit.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := decisionField(ev.Allowed)

	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, totalKey(), ev.Route+":"+field, 1)

	bucket := minuteKey(at)
	pipe.HIncrBy(ctx, bucket, ev.Route+":"+field, 1)
	if c.statsTTL > 0 {
		pipe.Expire(ctx, bucket, c.statsTTL)
	}

	if ev.Client != "" {
		ck := clientKey(ev.Client)
		pipe.HIncrBy(ctx, ck, field, 1)
		if c.statsTTL > 0 {
			pipe.Expire(ctx, ck, c.statsTTL)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// RouteTotals returns cumulative allowed/denied counts for route.
func (c *Cache) RouteTotals(ctx context.Context, route string) (allowed, denied int64, err error) {
	vals, err := c.client.HMGet(ctx, totalKey(), route+":allowed", route+":denied").Result()
	if err != nil {
		return 0, 0, err
	}
	return toInt64(vals[0]), toInt64(vals[1]), nil
}

func decisionField(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func totalKey() string {
	return statsPrefix + ":total"
}

func minuteKey(at time.Time) string {
	return statsPrefix + ":minute:" + at.UTC().Format(minuteBucketLayout)
}

func clientKey(client string) string {
	return statsPrefix + ":client:" + hashIP(client)
}

// hashIP creates a truncated SHA256 hash of an IP address.
// Raw client addresses are never written to Redis.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}

func toInt64(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
