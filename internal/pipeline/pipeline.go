// Package pipeline orchestrates one warehouse run: build dimensions from raw
// source records, transform rides into facts, fill sequential gaps per driver
// partition, and persist the result.
//
// Per-record failures are recorded and excluded; the run continues. Only
// infrastructure failures (counter seeding, dimension persistence) abort the
// whole run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	v1 "github.com/ridemart-lab/ridemart/internal/api/v1"
	"github.com/ridemart-lab/ridemart/internal/core/dimension"
	"github.com/ridemart-lab/ridemart/internal/core/fact"
	"github.com/ridemart-lab/ridemart/internal/core/scan"
	"github.com/ridemart-lab/ridemart/internal/core/storage"
	"github.com/ridemart-lab/ridemart/internal/ingest"
)

const defaultWorkerCount = 8

// Exclusion reasons reported in RunSummary.Reasons.
const (
	ReasonInvalidInterval     = "invalid_interval"
	ReasonAmbiguousRating     = "ambiguous_rating"
	ReasonUnresolvedDimension = "unresolved_dimension"
	ReasonInvalidRecord       = "invalid_record"
	ReasonPartitionFailure    = "partition_failure"
)

// Options controls pipeline behavior for one run.
type Options struct {
	// WorkerCount bounds the number of driver partitions scanned and persisted
	// concurrently.
	WorkerCount int

	// StrictRatings rejects rides carrying more than one rating instead of
	// picking the first by rating record ID.
	StrictRatings bool
}

func (o Options) normalized() Options {
	n := o
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	return n
}

// PartitionFailure records one driver partition that could not be persisted.
type PartitionFailure struct {
	DriverKey int64  `json:"driver_key"`
	Records   int    `json:"records"`
	Reason    string `json:"reason"`
}

// RunSummary is the outcome of one pipeline run.
type RunSummary struct {
	RunID     uuid.UUID     `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	DimensionSizes map[string]int `json:"dimension_sizes"`

	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Excluded   int `json:"excluded"`

	Reasons            map[string]int     `json:"reasons"`
	ExcludedPartitions []PartitionFailure `json:"excluded_partitions,omitempty"`
}

// Pipeline runs the warehouse load against a WarehouseStore.
type Pipeline struct {
	store storage.WarehouseStore
	opts  Options
}

// New creates a pipeline. Zero-value options get safe defaults.
func New(store storage.WarehouseStore, opts Options) *Pipeline {
	return &Pipeline{store: store, opts: opts.normalized()}
}

// Run executes one full load of the dataset and returns its summary.
func (p *Pipeline) Run(ctx context.Context, ds *ingest.Dataset) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		Reasons:   make(map[string]int),
	}

	slog.Info("[Pipeline] Run starting",
		"run_id", summary.RunID,
		"rides", len(ds.Rides),
		"workers", p.opts.WorkerCount,
		"strict_ratings", p.opts.StrictRatings)

	users, err := p.buildDimension(ctx, "user", ds.Users)
	if err != nil {
		return nil, err
	}
	drivers, err := p.buildDimension(ctx, "driver", ds.Drivers)
	if err != nil {
		return nil, err
	}
	vehicles, err := p.buildDimension(ctx, "vehicle", ds.Vehicles)
	if err != nil {
		return nil, err
	}
	dates, err := p.buildDateDimension(ctx, ds.Rides)
	if err != nil {
		return nil, err
	}

	summary.DimensionSizes = map[string]int{
		"user":    users.Len(),
		"driver":  drivers.Len(),
		"vehicle": vehicles.Len(),
		"date":    dates.Len(),
	}

	transformer := fact.NewTransformer(users, drivers, dates, ds.Ratings, p.opts.StrictRatings)

	facts := make([]fact.Record, 0, len(ds.Rides))
	for _, raw := range ds.Rides {
		rec, err := transformer.Transform(raw)
		if err != nil {
			summary.Excluded++
			summary.Reasons[reasonFor(err)]++
			slog.Warn("[Pipeline] Ride excluded", "run_id", summary.RunID, "record_id", raw.ID, "error", err)
			continue
		}
		facts = append(facts, rec)
	}

	if err := p.persistDimensions(ctx, users, drivers, vehicles, dates); err != nil {
		return nil, err
	}

	p.scanAndPersist(ctx, facts, summary)

	summary.Duration = time.Since(summary.StartedAt)
	slog.Info("[Pipeline] Run complete",
		"run_id", summary.RunID,
		"accepted", summary.Accepted,
		"duplicates", summary.Duplicates,
		"excluded", summary.Excluded,
		"excluded_partitions", len(summary.ExcludedPartitions),
		"duration", summary.Duration)

	return summary, nil
}

// buildDimension seeds a dimension table from the warehouse, hydrates it with
// the stored entries, and resolves every raw record of that source into it.
// Seed failures are fatal: allocating surrogate keys without the stored
// maximum would break uniqueness.
func (p *Pipeline) buildDimension(ctx context.Context, name string, records []v1.RawRecord) (*dimension.Table, error) {
	table, err := p.hydrateDimension(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, raw := range records {
		if _, err := table.Resolve(raw.ID, stringAttributes(raw)); err != nil {
			return nil, fmt.Errorf("failed to resolve %s %q: %w", name, raw.ID, err)
		}
	}

	slog.Info("[Pipeline] Dimension built", "dimension", name, "entries", table.Len())
	return table, nil
}

// hydrateDimension creates an in-memory dimension table seeded from the
// warehouse: counter at the stored maximum, entries loaded so known natural
// keys keep their surrogate keys across runs.
func (p *Pipeline) hydrateDimension(ctx context.Context, name string) (*dimension.Table, error) {
	seed, err := p.store.MaxSurrogateKey(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to seed %s dimension counter: %w", name, err)
	}

	table := dimension.NewTable(name, seed)

	existing, err := p.store.ListDimensionEntries(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate %s dimension: %w", name, err)
	}
	for _, entry := range existing {
		table.Load(entry)
	}
	return table, nil
}

// buildDateDimension derives the date dimension from ride start times.
// Rides with unparseable start times are skipped here; the transformer rejects
// them with their own exclusion reason.
func (p *Pipeline) buildDateDimension(ctx context.Context, rides []v1.RawRecord) (*dimension.Table, error) {
	table, err := p.hydrateDimension(ctx, "date")
	if err != nil {
		return nil, err
	}
	for _, raw := range rides {
		start, err := raw.Time(v1.FieldStart)
		if err != nil {
			continue
		}
		if _, err := table.Resolve(dimension.DateKey(start), dimension.DateAttributes(start).Map()); err != nil {
			return nil, fmt.Errorf("failed to resolve date for ride %q: %w", raw.ID, err)
		}
	}

	slog.Info("[Pipeline] Dimension built", "dimension", "date", "entries", table.Len())
	return table, nil
}

// persistDimensions writes every entry of every dimension table.
// Insert-if-absent in the store makes this idempotent across runs. Any failure
// is fatal: facts must not reference surrogate keys the warehouse never saw.
func (p *Pipeline) persistDimensions(ctx context.Context, tables ...*dimension.Table) error {
	for _, table := range tables {
		for _, entry := range table.Entries() {
			if err := p.store.SaveDimensionEntry(ctx, table.Name(), entry); err != nil {
				return fmt.Errorf("failed to persist %s dimension: %w", table.Name(), err)
			}
		}
	}
	return nil
}

// scanAndPersist partitions the facts by driver, fills sequential gaps, and
// persists each partition under a bounded worker pool. A failing partition is
// recorded and excluded; the other partitions continue.
func (p *Pipeline) scanAndPersist(ctx context.Context, facts []fact.Record, summary *RunSummary) {
	partitions := scan.PartitionByDriver(facts)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.opts.WorkerCount)

	for driverKey, partition := range partitions {
		driverKey, partition := driverKey, partition
		g.Go(func() error {
			scanned := scan.Scan(partition)
			accepted, duplicates, err := p.persistFacts(ctx, scanned)

			mu.Lock()
			defer mu.Unlock()

			summary.Accepted += accepted
			summary.Duplicates += duplicates

			if err != nil {
				remaining := len(scanned) - accepted - duplicates
				summary.Excluded += remaining
				summary.Reasons[ReasonPartitionFailure] += remaining
				summary.ExcludedPartitions = append(summary.ExcludedPartitions, PartitionFailure{
					DriverKey: driverKey,
					Records:   remaining,
					Reason:    err.Error(),
				})
				slog.Error("[Pipeline] Partition excluded",
					"run_id", summary.RunID,
					"driver_key", driverKey,
					"records", remaining,
					"error", err)
			}
			return nil
		})
	}
	g.Wait()

	sort.Slice(summary.ExcludedPartitions, func(i, j int) bool {
		return summary.ExcludedPartitions[i].DriverKey < summary.ExcludedPartitions[j].DriverKey
	})
}

// persistFacts saves one scanned partition in order. Duplicates are counted
// and skipped (re-running a load must not duplicate facts); the first real
// storage error stops this partition.
func (p *Pipeline) persistFacts(ctx context.Context, records []fact.Record) (accepted, duplicates int, err error) {
	for _, rec := range records {
		switch err := p.store.SaveFact(ctx, rec); {
		case err == nil:
			accepted++
		case errors.Is(err, storage.ErrDuplicate):
			duplicates++
		default:
			return accepted, duplicates, err
		}
	}
	return accepted, duplicates, nil
}

// stringAttributes flattens a raw record's string fields into dimension
// attributes.
func stringAttributes(raw v1.RawRecord) map[string]string {
	attrs := make(map[string]string, len(raw.Fields))
	for name, value := range raw.Fields {
		s, ok := value.(string)
		if !ok || s == "" {
			continue
		}
		attrs[name] = s
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, fact.ErrInvalidInterval):
		return ReasonInvalidInterval
	case errors.Is(err, fact.ErrAmbiguousRating):
		return ReasonAmbiguousRating
	case errors.Is(err, dimension.ErrUnresolved):
		return ReasonUnresolvedDimension
	default:
		return ReasonInvalidRecord
	}
}
