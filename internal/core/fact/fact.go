package fact

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dimension names referenced by fact records.
const (
	DimUser   = "user"
	DimDriver = "driver"
	DimDate   = "date"
)

// Record is one row of the fact table: a ride resolved to dimension surrogate
// keys plus its derived per-record metrics. Records are append-only and unique
// by ID; re-running the pipeline must not duplicate them.
type Record struct {
	// ID is the ride's natural identifier (unique).
	ID string

	// Keys maps dimension name to surrogate key. Every key present here has
	// resolved to an existing dimension entry — inner-join semantics; a record
	// with an unresolvable required dimension is rejected, never stored with a
	// null key.
	Keys map[string]int64

	StartTime time.Time
	EndTime   time.Time

	// DurationMinutes = (EndTime - StartTime) in minutes, 2-decimal precision.
	DurationMinutes decimal.Decimal

	DistanceKM decimal.Decimal
	FareAmount decimal.Decimal

	// IsPeak is true when the ride starts in a designated high-demand hour.
	IsPeak bool

	// Rating is the associated rider rating; absent when no rating exists
	// (outer-join semantics — the only optional reference).
	Rating decimal.NullDecimal

	// GapMinutes is filled by the sequential scanner: minutes between this
	// ride's start and the previous ride's end within the same driver
	// partition. Absent for the first ride of a partition. Negative values
	// (overlapping rides) are preserved.
	GapMinutes decimal.NullDecimal
}

// UserKey, DriverKey and DateKey are convenience accessors for the required
// dimension references.
func (r Record) UserKey() int64   { return r.Keys[DimUser] }
func (r Record) DriverKey() int64 { return r.Keys[DimDriver] }
func (r Record) DateKey() int64   { return r.Keys[DimDate] }
