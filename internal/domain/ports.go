package domain

import "context"

type HotelStore interface {
	// Schema paths
	ListPartitions(ctx context.Context) ([]string, error)
	CreatePartition(ctx context.Context, key string) error

	// Write path: all records or none.
	InsertHotels(ctx context.Context, key string, hs []HotelRecord) error

	// Read path
	ListHotels(ctx context.Context, key string, limit int) ([]HotelRecord, error)
}

// PageFetcher retrieves a page body; non-2xx handling is left to the caller.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (body []byte, status int, err error)
}

// PayloadLocator pulls the embedded JSON payload out of a listing page.
type PayloadLocator interface {
	Locate(html string) (map[string]any, error)
}

type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) (path string, err error)
}

// Locker serializes work on a key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type HotelsPage struct {
	Partition string        `json:"partition"`
	Items     []HotelRecord `json:"items"`
}

type CitiesPage struct {
	Items []string `json:"items"`
}
