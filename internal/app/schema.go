package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"trip_hotels/internal/adapters/observability"
	"trip_hotels/internal/domain"
)

// SchemaRegistry makes sure each partition key has exactly one hotel table.
// Calls for the same key are serialized; different keys proceed in parallel.
type SchemaRegistry struct {
	store  domain.HotelStore
	locker domain.Locker // optional, cross-process

	mu    sync.Mutex
	known map[string]bool
	keys  map[string]*sync.Mutex
}

func NewSchemaRegistry(store domain.HotelStore, locker domain.Locker) *SchemaRegistry {
	return &SchemaRegistry{
		store:  store,
		locker: locker,
		known:  map[string]bool{},
		keys:   map[string]*sync.Mutex{},
	}
}

func (r *SchemaRegistry) EnsureSchema(ctx context.Context, key string) (domain.SchemaStatus, error) {
	km := r.keyMutex(key)
	km.Lock()
	defer km.Unlock()

	if r.isKnown(key) {
		observability.ObserveSchema(string(domain.SchemaAlreadyExists))
		return domain.SchemaAlreadyExists, nil
	}

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, "schema:"+key)
		if err != nil {
			return "", fmt.Errorf("lock schema %s: %w", key, err)
		}
		defer unlock()
	}

	// another process may have created it while we waited on the lock
	exists, err := r.refresh(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		observability.ObserveSchema(string(domain.SchemaAlreadyExists))
		log.Debug().Str("partition", key).Msg("table already exists")
		return domain.SchemaAlreadyExists, nil
	}

	if err := r.store.CreatePartition(ctx, key); err != nil {
		return "", fmt.Errorf("create partition %s: %w", key, err)
	}
	r.markKnown(key)
	observability.ObserveSchema(string(domain.SchemaCreated))
	log.Info().Str("partition", key).Msg("table created")
	return domain.SchemaCreated, nil
}

// refresh reloads the known set from storage and reports whether key is in it.
func (r *SchemaRegistry) refresh(ctx context.Context, key string) (bool, error) {
	parts, err := r.store.ListPartitions(ctx)
	if err != nil {
		return false, fmt.Errorf("list partitions: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range parts {
		r.known[p] = true
	}
	return r.known[key], nil
}

func (r *SchemaRegistry) keyMutex(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.keys[key]
	if !ok {
		m = &sync.Mutex{}
		r.keys[key] = m
	}
	return m
}

func (r *SchemaRegistry) isKnown(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.known[key]
}

func (r *SchemaRegistry) markKnown(key string) {
	r.mu.Lock()
	r.known[key] = true
	r.mu.Unlock()
}
