package roster

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cached is a read-through Redis cache in front of another Lookup. Misses
// and "not found" answers always go to the backing lookup, so a student added
// to the roster is visible on the next scan.
type Cached struct {
	next   Lookup
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    logrus.FieldLogger
}

// NewCached wraps next with a cache. A nil client disables caching.
func NewCached(next Lookup, client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Cached {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Cached{next: next, client: client, ttl: ttl, prefix: "roster:student:", log: log}
}

// Find serves from Redis when possible. Cache errors are logged and bypassed.
func (c *Cached) Find(ctx context.Context, id string) (Student, error) {
	if c.client == nil {
		return c.next.Find(ctx, id)
	}
	key := c.prefix + id
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var st Student
		if jerr := json.Unmarshal(raw, &st); jerr == nil {
			return st, nil
		}
		c.log.WithField("student_id", id).Warn("dropping undecodable roster cache entry")
	case err != redis.Nil:
		c.log.WithError(err).Debug("roster cache get failed")
	}

	st, err := c.next.Find(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if data, jerr := json.Marshal(st); jerr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.log.WithError(serr).Debug("roster cache set failed")
		}
	}
	return st, nil
}

// Invalidate drops a cached student, e.g. after a status change.
func (c *Cached) Invalidate(ctx context.Context, id string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.prefix+id).Err()
}
