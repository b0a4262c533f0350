// Package memstore is an in-process Entity Store with the same referential
// behaviour as pgcargo: unique delivery per shipment, unique user email,
// routes in use cannot be deleted, shipment deletes unlink cargo and deliveries.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BearBump/CargoFlow/internal/models"
)

type table[T any] struct {
	rows   map[int64]T
	nextID int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T)}
}

func (t *table[T]) insert(v T) int64 {
	t.nextID++
	t.rows[t.nextID] = v
	return t.nextID
}

func (t *table[T]) ids() []int64 {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type MemoryStore struct {
	mu sync.RWMutex

	cargo      *table[models.Cargo]
	shipments  *table[models.Shipment]
	routes     *table[models.Route]
	vendors    *table[models.Vendor]
	deliveries *table[models.Delivery]
	users      *table[models.User]

	now func() time.Time
}

func New() *MemoryStore {
	return &MemoryStore{
		cargo:      newTable[models.Cargo](),
		shipments:  newTable[models.Shipment](),
		routes:     newTable[models.Route](),
		vendors:    newTable[models.Vendor](),
		deliveries: newTable[models.Delivery](),
		users:      newTable[models.User](),
		now:        time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() {}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

// checkCtx mirrors a driver call failing on a cancelled context.
func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
