// Package cache はユースケースのインターフェースにRedisキャッシュを付与するデコレーターを提供します。
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/branddna/usecase"
	"brandai_backend/internal/platform/metrics"
)

// CachingBrandRepository decorates a BrandScraper with Redis caching.
// Scraping is slow and billed per call, so the same site is analyzed
// at most once per TTL window.
type CachingBrandRepository struct {
	inner     usecase.BrandScraper
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.BrandScraper = (*CachingBrandRepository)(nil)

// NewCachingBrandRepository decorates a BrandScraper with Redis caching.
// If ttl is 0, entries expire at the next 08:00 local time. If namespace is empty, it uses "branddna".
// A nil rdb disables caching and every call goes to inner.
func NewCachingBrandRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BrandScraper, namespace string) *CachingBrandRepository {
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "branddna"
	}
	return &CachingBrandRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// ScrapeBrandInfo returns cached brand DNA for the URL, scraping on a miss.
func (c *CachingBrandRepository) ScrapeBrandInfo(ctx context.Context, rawURL string) (*entity.BrandInfo, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		metrics.BrandCacheLookups.WithLabelValues("bypass").Inc()
		return c.inner.ScrapeBrandInfo(ctx, rawURL)
	}

	// Invalid URLs are rejected by inner without touching Redis
	pageURL, err := usecase.ValidateURL(rawURL)
	if err != nil {
		return c.inner.ScrapeBrandInfo(ctx, rawURL)
	}
	key := c.cacheKey(pageURL)

	// 1) Check cache
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var out entity.BrandInfo
		if err := json.Unmarshal(b, &out); err == nil {
			metrics.BrandCacheLookups.WithLabelValues("hit").Inc()
			return &out, nil
		}
		// Delete corrupted cache entry
		metrics.BrandCacheLookups.WithLabelValues("corrupt").Inc()
		_ = c.rdb.Del(ctx, key).Err()
	case err != nil && !errors.Is(err, redis.Nil):
		slog.Warn("brand cache read failed", "url", pageURL, "error", err)
		metrics.BrandCacheLookups.WithLabelValues("error").Inc()
	default:
		metrics.BrandCacheLookups.WithLabelValues("miss").Inc()
	}

	// 2) Fallback to the model
	out, err := c.inner.ScrapeBrandInfo(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.expiry()).Err(); err != nil {
			slog.Warn("brand cache write failed", "url", pageURL, "error", err)
		}
	}

	return out, nil
}

// Invalidate removes the cached entry for the URL so the next call scrapes again.
func (c *CachingBrandRepository) Invalidate(ctx context.Context, rawURL string) error {
	if c.rdb == nil {
		return nil
	}
	pageURL, err := usecase.ValidateURL(rawURL)
	if err != nil {
		return err
	}
	return c.rdb.Del(ctx, c.cacheKey(pageURL)).Err()
}

// refreshHour はTTL未指定時にキャッシュが切れるローカル時刻です。
const refreshHour = 8

func (c *CachingBrandRepository) expiry() time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return TimeUntilNext(refreshHour, time.Local, c.now())
}

// cacheKey hashes the normalized URL so arbitrary URLs map to fixed-length keys.
func (c *CachingBrandRepository) cacheKey(pageURL string) string {
	sum := blake2b.Sum256([]byte(pageURL))
	return c.namespace + ":" + hex.EncodeToString(sum[:])
}
