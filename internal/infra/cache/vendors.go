// Package cache holds a redis read-through decorator for marketplace reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

const (
	DefaultTTL    = 5 * time.Minute
	defaultPrefix = "complyhub:"
)

// Config is the redis block of the configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient builds a go-redis client. It does not dial.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

// Source is the repository behind the cache. Approval status is re-read from it on
// every hit.
type Source interface {
	marketplace.Repository
	marketplace.ApprovalChecker
}

// VendorCache caches approved-vendor lists per category. Get is not cached: the
// comparator and the contact gate need the current approval status.
//
// A hit is checked against the live approval status, and vendors that lost approval
// are dropped along with the cached entry. Vendors approved after the entry was
// written, and edits to ratings or solutions, show up once the entry expires.
// Redis failures are logged and the call falls through to the wrapped repository.
type VendorCache struct {
	next   Source
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	log    logging.Logger
	group  singleflight.Group
}

var _ marketplace.Repository = (*VendorCache)(nil)

func NewVendorCache(next Source, rdb redis.Cmdable, ttl time.Duration, log logging.Logger) *VendorCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &VendorCache{next: next, rdb: rdb, ttl: ttl, prefix: defaultPrefix, log: logging.OrNop(log).Named("vendor_cache")}
}

func (c *VendorCache) categoryKey(cat assessment.Category) string {
	return c.prefix + "vendors:category:" + string(cat)
}

func (c *VendorCache) ListApprovedByCategory(ctx context.Context, cat assessment.Category) ([]*marketplace.Vendor, error) {
	key := c.categoryKey(cat)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []*marketplace.Vendor
		if err := json.Unmarshal(raw, &cached); err != nil {
			c.log.Warn("dropping undecodable cache entry", logging.String("key", key))
			break
		}
		if out, ok := c.revalidate(ctx, key, cached); ok {
			return out, nil
		}
	case !errors.Is(err, redis.Nil):
		c.log.Warn("vendor cache read failed", logging.String("key", key), logging.Err(err))
	}

	// the shared load must not fail for every waiter when the first caller goes away
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		list, err := c.next.ListApprovedByCategory(loadCtx, cat)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(list); err == nil {
			if err := c.rdb.Set(loadCtx, key, string(b), c.ttl).Err(); err != nil {
				c.log.Warn("vendor cache write failed", logging.String("key", key), logging.Err(err))
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*marketplace.Vendor), nil
}

// revalidate keeps the cached vendors that are still approved. It reports false when
// the live status could not be read.
func (c *VendorCache) revalidate(ctx context.Context, key string, cached []*marketplace.Vendor) ([]*marketplace.Vendor, bool) {
	if len(cached) == 0 {
		return cached, true
	}
	ids := make([]string, len(cached))
	for i, v := range cached {
		ids[i] = v.ID
	}
	live, err := c.next.ApprovedIDs(ctx, ids)
	if err != nil {
		c.log.Warn("vendor approval check failed", logging.String("key", key), logging.Err(err))
		return nil, false
	}

	out := cached[:0]
	for _, v := range cached {
		if live[v.ID] {
			out = append(out, v)
		}
	}
	if len(out) < len(cached) {
		c.log.Debug("cached vendors lost approval",
			logging.String("key", key),
			logging.Int("dropped", len(cached)-len(out)))
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			c.log.Warn("vendor cache delete failed", logging.String("key", key), logging.Err(err))
		}
	}
	return out, true
}

func (c *VendorCache) Get(ctx context.Context, id string) (*marketplace.Vendor, error) {
	return c.next.Get(ctx, id)
}

// Ping reports whether redis answers.
func (c *VendorCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
