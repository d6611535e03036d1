package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"trip_hotels/internal/adapters/observability"
	"trip_hotels/internal/domain"
)

type IngestionService struct {
	locator domain.PayloadLocator
	schemas *SchemaRegistry
	images  *ImageFetcher
	repo    domain.HotelStore
	cache   domain.Cache
	workers int64
}

func NewIngestionService(
	locator domain.PayloadLocator,
	schemas *SchemaRegistry,
	images *ImageFetcher,
	repo domain.HotelStore,
	cache domain.Cache,
	workers int,
) *IngestionService {
	if workers <= 0 {
		workers = 4
	}
	return &IngestionService{
		locator: locator,
		schemas: schemas,
		images:  images,
		repo:    repo,
		cache:   cache,
		workers: int64(workers),
	}
}

// IngestPage locates the hotel payload in a listing page and ingests it.
func (s *IngestionService) IngestPage(ctx context.Context, html string) (domain.IngestResult, error) {
	payload, err := s.locator.Locate(html)
	if err != nil {
		return domain.IngestResult{}, err
	}
	batch, err := HotelList(payload)
	if err != nil {
		return domain.IngestResult{}, err
	}
	return s.Ingest(ctx, batch)
}

// Ingest normalizes a batch, fetches images and persists the surviving records
// in one write. Bad records are skipped and reported; schema and persist
// failures abort the whole batch.
func (s *IngestionService) Ingest(ctx context.Context, batch domain.Batch) (domain.IngestResult, error) {
	// 1) Partition key from the first entry; without it the batch has nowhere to go.
	if len(batch) == 0 {
		return domain.IngestResult{}, fmt.Errorf("%w: empty batch", domain.ErrBatchRejected)
	}
	city := HotelCity(batch[0])
	if city == "" {
		return domain.IngestResult{}, fmt.Errorf("%w: first entry has no %s", domain.ErrBatchRejected, pathCity)
	}
	key := domain.PartitionKey(city)
	res := domain.IngestResult{Partition: key, Attempted: len(batch), Skipped: []domain.Skip{}}

	// 2) Table must exist before anything is written to it.
	status, err := s.schemas.EnsureSchema(ctx, key)
	if err != nil {
		return res, fmt.Errorf("%w: %w", domain.ErrSchema, err)
	}
	res.Schema = status

	// 3) Normalize; a broken record is dropped, the batch goes on.
	type pending struct {
		rec domain.HotelRecord
		img string
	}
	var ok []pending
	for i, raw := range batch {
		rec, err := NormalizeHotel(raw)
		if err != nil {
			// NormalizeHotel only fails with ErrFieldMissing
			res.Skipped = append(res.Skipped, domain.Skip{Index: i, Reason: domain.ReasonFieldMissing, Detail: err.Error()})
			observability.ObserveRecords("skipped", 1)
			log.Warn().Str("partition", key).Int("index", i).Err(err).Msg("record skipped")
			continue
		}
		ok = append(ok, pending{rec: rec, img: HotelImageURL(raw)})
	}

	// 4) Images on a bounded pool; results land by index so order is kept.
	records := make([]domain.HotelRecord, len(ok))
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	for i := range ok {
		records[i] = ok[i].rec
		if ok[i].img == "" {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			records[i].ImageRef = s.images.Fetch(ctx, ok[i].img, ok[i].rec.Title)
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// 5) One write for the batch.
	if len(records) > 0 {
		if err := s.repo.InsertHotels(ctx, key, records); err != nil {
			return res, fmt.Errorf("%w: %w", domain.ErrPersist, err)
		}
	}
	res.Persisted = len(records)
	observability.ObserveRecords("persisted", res.Persisted)

	if s.cache != nil && (res.Persisted > 0 || res.Schema == domain.SchemaCreated) {
		invalidateHotels(ctx, s.cache, key)
	}

	log.Info().
		Str("partition", key).
		Str("schema", string(res.Schema)).
		Int("attempted", res.Attempted).
		Int("persisted", res.Persisted).
		Int("skipped", len(res.Skipped)).
		Msg("batch ingested")
	return res, nil
}
