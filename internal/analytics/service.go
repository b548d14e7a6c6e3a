// Package analytics serves on-demand window analytics over the stored fact
// set. Results are pure functions of the warehouse contents: nothing computed
// here is ever written back.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ridemart-lab/ridemart/internal/core/fact"
	"github.com/ridemart-lab/ridemart/internal/core/storage"
	"github.com/ridemart-lab/ridemart/internal/core/window"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid analytics query")

// Service implements the analytics query layer over a WarehouseStore.
type Service struct {
	store storage.WarehouseStore
}

// NewService creates a new analytics service.
func NewService(store storage.WarehouseStore) *Service {
	return &Service{store: store}
}

// Query runs one window function over the stored facts, partitioned and
// ordered as requested. An empty warehouse yields an empty partition list.
func (s *Service) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	req, err := normalizeAndValidate(req)
	if err != nil {
		return nil, err
	}

	fn, err := window.New(req.Function, window.Args{K: req.K, N: req.N})
	if err != nil {
		return nil, invalidQueryf("%s", err)
	}

	facts, err := s.store.ListFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load facts: %w", err)
	}

	resp := &QueryResponse{
		Function:    req.Function,
		PartitionBy: req.PartitionBy,
		OrderBy:     req.OrderBy,
		Desc:        req.Desc,
		Partitions:  []PartitionResult{},
	}

	for key, partition := range partitionFacts(facts, req.PartitionBy) {
		rows, metrics := orderedRows(partition, req.OrderBy, req.Desc)
		if len(rows) == 0 {
			continue
		}

		values := fn(rows)
		out := make([]AnalyticsRow, len(rows))
		for i, row := range rows {
			out[i] = AnalyticsRow{RecordID: row.ID, Metric: metrics[row.ID], Value: values[i]}
		}
		resp.Partitions = append(resp.Partitions, PartitionResult{PartitionKey: key, Rows: out})
	}

	sort.Slice(resp.Partitions, func(i, j int) bool {
		return resp.Partitions[i].PartitionKey < resp.Partitions[j].PartitionKey
	})

	return resp, nil
}

func normalizeAndValidate(req QueryRequest) (QueryRequest, error) {
	if req.PartitionBy == "" {
		req.PartitionBy = PartitionDriver
	}
	if req.OrderBy == "" {
		req.OrderBy = OrderFare
	}

	if !window.ValidFunction(req.Function) {
		return req, invalidQueryf("unknown window function %q", req.Function)
	}
	switch req.PartitionBy {
	case PartitionDriver, PartitionUser:
	default:
		return req, invalidQueryf("invalid partition_by %q (must be driver or user)", req.PartitionBy)
	}
	switch req.OrderBy {
	case OrderFare, OrderDuration, OrderDistance, OrderRating, OrderGap:
	default:
		return req, invalidQueryf("invalid order_by %q (must be fare, duration, distance, rating or gap)", req.OrderBy)
	}
	if req.Function == window.FnNtile && req.K < 1 {
		return req, invalidQueryf("ntile requires k >= 1")
	}
	if req.Function == window.FnNthValue && req.N < 1 {
		return req, invalidQueryf("nth_value requires n >= 1")
	}

	return req, nil
}

func partitionFacts(facts []fact.Record, partitionBy string) map[int64][]fact.Record {
	keyOf := func(r fact.Record) int64 { return r.DriverKey() }
	if partitionBy == PartitionUser {
		keyOf = func(r fact.Record) int64 { return r.UserKey() }
	}

	partitions := make(map[int64][]fact.Record)
	for _, r := range facts {
		partitions[keyOf(r)] = append(partitions[keyOf(r)], r)
	}
	return partitions
}

// orderedRows projects a partition onto the ordering metric and sorts it.
// Records whose metric is absent (unrated ride ordered by rating, first ride
// ordered by gap) are left out — there is no position for them in the order.
func orderedRows(partition []fact.Record, orderBy string, desc bool) ([]window.Row, map[string]decimal.Decimal) {
	rows := make([]window.Row, 0, len(partition))
	metrics := make(map[string]decimal.Decimal, len(partition))

	for _, r := range partition {
		value, ok := metricOf(r, orderBy)
		if !ok {
			continue
		}
		rows = append(rows, window.Row{ID: r.ID, Value: value})
		metrics[r.ID] = value
	}

	window.Sort(rows, desc)
	return rows, metrics
}

func metricOf(r fact.Record, orderBy string) (decimal.Decimal, bool) {
	switch orderBy {
	case OrderFare:
		return r.FareAmount, true
	case OrderDuration:
		return r.DurationMinutes, true
	case OrderDistance:
		return r.DistanceKM, true
	case OrderRating:
		return r.Rating.Decimal, r.Rating.Valid
	case OrderGap:
		return r.GapMinutes.Decimal, r.GapMinutes.Valid
	default:
		return decimal.Decimal{}, false
	}
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
