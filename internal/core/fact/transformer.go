package fact

import (
	"fmt"
	"sort"

	v1 "github.com/ridemart-lab/ridemart/internal/api/v1"
	"github.com/ridemart-lab/ridemart/internal/core/dimension"
	"github.com/shopspring/decimal"
)

// peakHours are the designated high-demand hours-of-day (morning and evening
// rush). Hours are extracted in the record's naive local time — source
// timestamps are treated as already business-local.
var peakHours = map[int]bool{7: true, 8: true, 16: true, 17: true}

var secondsPerMinute = decimal.NewFromInt(60)

// ratingCandidate is one rating raw record associated with a ride.
type ratingCandidate struct {
	recordID string
	value    decimal.Decimal
}

// Transformer turns raw ride records into fact records.
// It reads the dimension tables but never mutates them.
type Transformer struct {
	users   *dimension.Table
	drivers *dimension.Table
	dates   *dimension.Table

	// ratings indexes rating candidates by ride ID, each slice sorted by
	// rating record ID ascending. The source assumes at most one rating per
	// ride; when that assumption is violated, strict mode rejects the record
	// and lenient mode deterministically takes the first candidate.
	ratings map[string][]ratingCandidate

	strictRatings bool
}

// NewTransformer builds a transformer over the three required dimension tables
// and the rating source records. strictRatings controls the ambiguous-rating
// policy (see Transform).
func NewTransformer(users, drivers, dates *dimension.Table, ratingRecords []v1.RawRecord, strictRatings bool) *Transformer {
	idx := make(map[string][]ratingCandidate)
	for _, r := range ratingRecords {
		rideID := r.String(v1.FieldRideID)
		if rideID == "" {
			continue
		}
		idx[rideID] = append(idx[rideID], ratingCandidate{recordID: r.ID, value: r.Decimal(v1.FieldRating)})
	}
	for rideID := range idx {
		candidates := idx[rideID]
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].recordID < candidates[j].recordID })
	}

	return &Transformer{
		users:         users,
		drivers:       drivers,
		dates:         dates,
		ratings:       idx,
		strictRatings: strictRatings,
	}
}

// Transform produces one fact record from one raw ride record.
//
// Failures are per-record: an unresolvable required dimension, an invalid
// time interval, or (in strict mode) an ambiguous rating all reject this
// record without touching any shared state.
func (t *Transformer) Transform(raw v1.RawRecord) (Record, error) {
	if raw.Source != v1.SourceRide {
		return Record{}, fmt.Errorf("record %s has source %q: %w", raw.ID, raw.Source, ErrNotARide)
	}

	start, err := raw.Time(v1.FieldStart)
	if err != nil {
		return Record{}, fmt.Errorf("ride %s: %w", raw.ID, err)
	}
	end, err := raw.Time(v1.FieldEnd)
	if err != nil {
		return Record{}, fmt.Errorf("ride %s: %w", raw.ID, err)
	}
	if end.Before(start) {
		return Record{}, fmt.Errorf("ride %s: %w", raw.ID, ErrInvalidInterval)
	}

	userKey, err := t.users.Lookup(raw.String(v1.FieldUserID))
	if err != nil {
		return Record{}, fmt.Errorf("ride %s: %w", raw.ID, err)
	}
	driverKey, err := t.drivers.Lookup(raw.String(v1.FieldDriverID))
	if err != nil {
		return Record{}, fmt.Errorf("ride %s: %w", raw.ID, err)
	}
	dateKey, err := t.dates.Lookup(dimension.DateKey(start))
	if err != nil {
		return Record{}, fmt.Errorf("ride %s: %w", raw.ID, err)
	}

	rating, err := t.resolveRating(raw.ID)
	if err != nil {
		return Record{}, err
	}

	seconds := decimal.NewFromFloat(end.Sub(start).Seconds())

	return Record{
		ID: raw.ID,
		Keys: map[string]int64{
			DimUser:   userKey,
			DimDriver: driverKey,
			DimDate:   dateKey,
		},
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: seconds.DivRound(secondsPerMinute, 2),
		DistanceKM:      raw.Decimal(v1.FieldDistance),
		FareAmount:      raw.Decimal(v1.FieldFare),
		IsPeak:          peakHours[start.Hour()],
		Rating:          rating,
	}, nil
}

// resolveRating applies the documented rating selection policy.
// No candidate: rating is absent, never zero. One candidate: taken as-is.
// Multiple candidates: strict mode rejects the record; lenient mode takes the
// candidate with the lowest rating record ID.
func (t *Transformer) resolveRating(rideID string) (decimal.NullDecimal, error) {
	candidates := t.ratings[rideID]
	switch {
	case len(candidates) == 0:
		return decimal.NullDecimal{}, nil
	case len(candidates) > 1 && t.strictRatings:
		return decimal.NullDecimal{}, fmt.Errorf("ride %s has %d ratings: %w", rideID, len(candidates), ErrAmbiguousRating)
	default:
		return decimal.NullDecimal{Decimal: candidates[0].value, Valid: true}, nil
	}
}
