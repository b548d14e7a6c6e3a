package storage

import (
	"context"
	"errors"

	"github.com/ridemart-lab/ridemart/internal/core/dimension"
	"github.com/ridemart-lab/ridemart/internal/core/fact"
)

// ErrDuplicate is returned when a fact record with the same record_id already exists.
var ErrDuplicate = errors.New("fact record already exists")

// WarehouseStore defines the interface for persisting and reading the star schema.
type WarehouseStore interface {
	// MaxSurrogateKey returns the current maximum surrogate key of a dimension
	// table (0 when empty). Seeds the resolver's allocation counter so that
	// re-runs continue the monotonic sequence instead of restarting it.
	MaxSurrogateKey(ctx context.Context, dimensionName string) (int64, error)

	// SaveDimensionEntry persists one dimension entry with insert-if-absent
	// semantics: an existing natural key is left untouched (first-write-wins).
	SaveDimensionEntry(ctx context.Context, dimensionName string, entry dimension.Entry) error

	// ListDimensionEntries returns all stored entries of a dimension. Hydrates
	// the in-memory resolver before a run so known natural keys keep their
	// surrogate keys across runs.
	ListDimensionEntries(ctx context.Context, dimensionName string) ([]dimension.Entry, error)

	// SaveFact appends one fact record. Returns ErrDuplicate when a record
	// with the same record_id already exists — re-running the pipeline must
	// not duplicate facts.
	SaveFact(ctx context.Context, record fact.Record) error

	// ListFacts returns the full fact record set ordered by record_id.
	ListFacts(ctx context.Context) ([]fact.Record, error)
}
