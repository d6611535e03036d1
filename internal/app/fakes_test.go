package app_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"trip_hotels/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu         sync.Mutex
	partitions map[string]bool
	inserted   map[string][]domain.HotelRecord
	creates    int32
	lists      int32
	insertErr  error
	listErr    error
}

func newFakeStore(existing ...string) *fakeStore {
	f := &fakeStore{partitions: map[string]bool{}, inserted: map[string][]domain.HotelRecord{}}
	for _, k := range existing {
		f.partitions[k] = true
	}
	return f
}

func (f *fakeStore) ListPartitions(ctx context.Context) ([]string, error) {
	atomic.AddInt32(&f.lists, 1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.partitions {
		out = append(out, k)
	}
	return out, nil
}

func (f *fakeStore) CreatePartition(ctx context.Context, key string) error {
	atomic.AddInt32(&f.creates, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partitions[key] = true
	return nil
}

func (f *fakeStore) InsertHotels(ctx context.Context, key string, hs []domain.HotelRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.partitions[key] {
		return errors.New("no such table " + key)
	}
	f.inserted[key] = append(f.inserted[key], hs...)
	return nil
}

func (f *fakeStore) ListHotels(ctx context.Context, key string, limit int) ([]domain.HotelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.partitions[key] {
		return nil, domain.ErrNotFound
	}
	hs := f.inserted[key]
	if len(hs) > limit {
		hs = hs[:limit]
	}
	return hs, nil
}

// memImages records saved file names.
type memImages struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (m *memImages) Save(ctx context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = data
	return "images/" + name, nil
}

// countingDoer answers with the status mapped to the URL (default 200; 0 means a
// transport error) and records the peak number of requests in flight.
type countingDoer struct {
	calls    int32
	inFlight int32
	peak     int32
	status   map[string]int
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&d.calls, 1)
	n := atomic.AddInt32(&d.inFlight, 1)
	defer atomic.AddInt32(&d.inFlight, -1)
	for {
		p := atomic.LoadInt32(&d.peak)
		if n <= p || atomic.CompareAndSwapInt32(&d.peak, p, n) {
			break
		}
	}
	code := http.StatusOK
	if c, ok := d.status[req.URL.String()]; ok {
		if c == 0 {
			return nil, errors.New("connection refused")
		}
		code = c
	}
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader("jpeg-bytes")),
		Header:     http.Header{},
		Request:    req,
	}, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.HotelsPage:
		*d = v.(domain.HotelsPage)
	case *domain.CitiesPage:
		*d = v.(domain.CitiesPage)
	case *[]int:
		*d = append([]int(nil), v.([]int)...)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// ---- raw record builder ----

func rawHotel(name, city string) map[string]any {
	basic := map[string]any{
		"hotelAddress": "1 Harbour Rd",
		"price":        "120.5",
		"originPrice":  "150",
		"hotelImg":     "https://img.example/" + strings.ReplaceAll(name, " ", "") + ".jpg",
	}
	if name != "" {
		basic["hotelName"] = name
	}
	return map[string]any{
		"hotelBasicInfo": basic,
		"commentInfo":    map[string]any{"commentScore": "8.7"},
		"positionInfo": map[string]any{
			"cityName": city,
			"mapCoordinate": []any{
				map[string]any{"latitude": "22.28", "longitude": "114.17"},
			},
		},
		"roomInfo": map[string]any{"physicalRoomName": "Deluxe Double"},
	}
}

func ptr[T any](v T) *T { return &v }
