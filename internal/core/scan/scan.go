package scan

import (
	"sort"

	"github.com/ridemart-lab/ridemart/internal/core/fact"
	"github.com/shopspring/decimal"
)

var secondsPerMinute = decimal.NewFromInt(60)

// PartitionByDriver groups fact records by driver surrogate key and sorts each
// partition by (start_time, record_id) ascending. The record-id tie-break makes
// the order — and everything derived from it — deterministic across runs.
func PartitionByDriver(records []fact.Record) map[int64][]fact.Record {
	partitions := make(map[int64][]fact.Record)
	for _, r := range records {
		key := r.DriverKey()
		partitions[key] = append(partitions[key], r)
	}
	for key := range partitions {
		Order(partitions[key])
	}
	return partitions
}

// Order sorts a partition in place by (start_time, record_id) ascending.
func Order(partition []fact.Record) {
	sort.Slice(partition, func(i, j int) bool {
		if !partition[i].StartTime.Equal(partition[j].StartTime) {
			return partition[i].StartTime.Before(partition[j].StartTime)
		}
		return partition[i].ID < partition[j].ID
	})
}

// Scan walks one ordered partition and fills GapMinutes on every record:
// the minutes between a record's start and the previous record's end.
//
// The first record of the partition has no previous event, so its gap stays
// absent. Negative gaps (overlapping rides) are preserved, not clamped —
// overlap detection is a downstream analytical concern, not a
// transformation-time failure.
//
// A single linear pass carries forward the previous record's end time; the
// result is a pure function of (partition, order).
func Scan(partition []fact.Record) []fact.Record {
	out := make([]fact.Record, len(partition))
	copy(out, partition)

	for i := range out {
		if i == 0 {
			out[i].GapMinutes = decimal.NullDecimal{}
			continue
		}
		gapSeconds := decimal.NewFromFloat(out[i].StartTime.Sub(out[i-1].EndTime).Seconds())
		out[i].GapMinutes = decimal.NullDecimal{
			Decimal: gapSeconds.DivRound(secondsPerMinute, 2),
			Valid:   true,
		}
	}
	return out
}
