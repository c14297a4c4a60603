package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_reporting_system/internal/metrics"
)

// CachedProvider оборачивает Provider кэшем результатов в Redis.
// Кэшируются только успешные ответы, чтобы временные сбои и пустые
// результаты можно было перепроверить.
type CachedProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedProvider создает кэширующую обертку над геокодером.
func NewCachedProvider(inner Provider, client *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedProvider) Geocode(ctx context.Context, query string) (Point, bool, error) {
	key := cacheKey(query)

	val, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var pt Point
		if err := json.Unmarshal(val, &pt); err == nil {
			metrics.GeocodeCacheLookups.WithLabelValues("hit").Inc()
			return pt, true, nil
		}
		// Битую запись просто перезапишем результатом свежего запроса
		c.logger.WithField("key", key).Warn("failed to unmarshal cached geocode result")
	} else if !errors.Is(err, redis.Nil) {
		// Недоступный Redis не должен ломать геокодирование
		c.logger.WithError(err).Warn("geocode cache lookup failed")
	}
	metrics.GeocodeCacheLookups.WithLabelValues("miss").Inc()

	pt, ok, err := c.inner.Geocode(ctx, query)
	if err != nil || !ok {
		return pt, ok, err
	}

	if payload, err := json.Marshal(pt); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.WithError(err).Warn("failed to store geocode result in cache")
		}
	}

	return pt, true, nil
}

func cacheKey(query string) string {
	return fmt.Sprintf("geocode:%s", query)
}
