package app

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"trip_hotels/internal/domain"
)

const (
	citiesCacheKey     = "cities"
	defaultHotelsLimit = 50
	maxHotelsLimit     = 200
)

func hotelsCacheKey(partition string, limit int) string {
	return fmt.Sprintf("hotels:%s:%d", partition, limit)
}

// hotelsIndexKey lists the limits currently cached for a partition.
func hotelsIndexKey(partition string) string {
	return fmt.Sprintf("hotels:%s:limits", partition)
}

// rememberLimit records limit in the partition's index so invalidation can find the page.
func rememberLimit(ctx context.Context, c domain.Cache, partition string, limit int, ttlSec int) {
	var lims []int
	_, _ = c.Get(ctx, hotelsIndexKey(partition), &lims)
	if slices.Contains(lims, limit) {
		return
	}
	_ = c.Set(ctx, hotelsIndexKey(partition), append(lims, limit), ttlSec)
}

// invalidateHotels drops the cities list and every cached hotels page of a partition.
func invalidateHotels(ctx context.Context, c domain.Cache, partition string) {
	_ = c.Del(ctx, citiesCacheKey)
	var lims []int
	_, _ = c.Get(ctx, hotelsIndexKey(partition), &lims)
	if !slices.Contains(lims, defaultHotelsLimit) {
		lims = append(lims, defaultHotelsLimit)
	}
	for _, lim := range lims {
		_ = c.Del(ctx, hotelsCacheKey(partition, lim))
	}
	_ = c.Del(ctx, hotelsIndexKey(partition))
}

type QueryService struct {
	repo     domain.HotelStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.HotelStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListCities(ctx context.Context) (domain.CitiesPage, error) {
	var out domain.CitiesPage
	if ok, _ := s.cache.Get(ctx, citiesCacheKey, &out); ok {
		return out, nil
	}
	parts, err := s.repo.ListPartitions(ctx)
	if err != nil {
		return domain.CitiesPage{}, err
	}
	out = domain.CitiesPage{Items: append([]string{}, parts...)}
	_ = s.cache.Set(ctx, citiesCacheKey, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// ListHotels serves one partition; city may be a raw city name or a partition key.
func (s *QueryService) ListHotels(ctx context.Context, city string, limit int) (domain.HotelsPage, error) {
	if limit <= 0 {
		limit = defaultHotelsLimit
	}
	if limit > maxHotelsLimit {
		limit = maxHotelsLimit
	}
	key := domain.PartitionKey(city)
	ck := hotelsCacheKey(key, limit)

	var out domain.HotelsPage
	if ok, _ := s.cache.Get(ctx, ck, &out); ok {
		return out, nil
	}

	hs, err := s.repo.ListHotels(ctx, key, limit)
	if err != nil {
		return domain.HotelsPage{}, err
	}
	// copy to avoid aliasing the repo's backing array
	out = domain.HotelsPage{Partition: key, Items: append([]domain.HotelRecord{}, hs...)}

	// optional size guard
	if b, _ := json.Marshal(out); len(b) < 1_000_000 {
		ttl := int(s.cacheTTL.Seconds())
		if err := s.cache.Set(ctx, ck, out, ttl); err == nil {
			// index outlives the page so a later invalidation still finds it
			rememberLimit(ctx, s.cache, key, limit, 2*ttl)
		}
	}
	return out, nil
}
