package fact

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/ridemart-lab/ridemart/internal/api/v1"
	"github.com/ridemart-lab/ridemart/internal/core/dimension"
)

func newTestTables(t *testing.T) (users, drivers, dates *dimension.Table) {
	t.Helper()
	users = dimension.NewTable("user", 0)
	drivers = dimension.NewTable("driver", 0)
	dates = dimension.NewTable("date", 0)

	_, err := users.Resolve("u-1", nil)
	require.NoError(t, err)
	_, err = drivers.Resolve("d-1", nil)
	require.NoError(t, err)
	_, err = dates.Resolve("2024-03-15", dimension.DateAttributes(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)).Map())
	require.NoError(t, err)
	return users, drivers, dates
}

func rideRecord(id string, fields map[string]interface{}) v1.RawRecord {
	base := map[string]interface{}{
		v1.FieldUserID:   "u-1",
		v1.FieldDriverID: "d-1",
		v1.FieldStart:    "2024-03-15 07:30:00",
		v1.FieldEnd:      "2024-03-15 07:51:30",
		v1.FieldDistance: "12.4",
		v1.FieldFare:     "23.50",
	}
	for k, v := range fields {
		base[k] = v
	}
	return v1.RawRecord{Source: v1.SourceRide, ID: id, Fields: base}
}

func ratingRecord(id, rideID, value string) v1.RawRecord {
	return v1.RawRecord{
		Source: v1.SourceRating,
		ID:     id,
		Fields: map[string]interface{}{v1.FieldRideID: rideID, v1.FieldRating: value},
	}
}

func TestTransform_Derivations(t *testing.T) {
	users, drivers, dates := newTestTables(t)
	tr := NewTransformer(users, drivers, dates, []v1.RawRecord{ratingRecord("rat-1", "ride-1", "4.8")}, false)

	rec, err := tr.Transform(rideRecord("ride-1", nil))
	require.NoError(t, err)

	require.Equal(t, "ride-1", rec.ID)
	require.Equal(t, int64(1), rec.UserKey())
	require.Equal(t, int64(1), rec.DriverKey())
	require.Equal(t, int64(1), rec.DateKey())

	// 21m30s = 21.5 minutes, 2-decimal precision.
	require.True(t, decimal.RequireFromString("21.5").Equal(rec.DurationMinutes), "got %s", rec.DurationMinutes)
	require.True(t, decimal.RequireFromString("12.4").Equal(rec.DistanceKM))
	require.True(t, decimal.RequireFromString("23.50").Equal(rec.FareAmount))

	// 07:xx is a peak hour.
	require.True(t, rec.IsPeak)

	require.True(t, rec.Rating.Valid)
	require.True(t, decimal.RequireFromString("4.8").Equal(rec.Rating.Decimal))

	// Gap is a scanner concern; the transformer leaves it absent.
	require.False(t, rec.GapMinutes.Valid)
}

func TestTransform_PeakHours(t *testing.T) {
	users, drivers, dates := newTestTables(t)
	tr := NewTransformer(users, drivers, dates, nil, false)

	tests := []struct {
		start string
		end   string
		peak  bool
	}{
		{start: "2024-03-15 07:00:00", end: "2024-03-15 07:10:00", peak: true},
		{start: "2024-03-15 08:59:59", end: "2024-03-15 09:20:00", peak: true},
		{start: "2024-03-15 16:00:00", end: "2024-03-15 16:30:00", peak: true},
		{start: "2024-03-15 17:45:00", end: "2024-03-15 18:05:00", peak: true},
		{start: "2024-03-15 09:00:00", end: "2024-03-15 09:30:00", peak: false},
		{start: "2024-03-15 15:59:59", end: "2024-03-15 16:30:00", peak: false},
		{start: "2024-03-15 18:00:00", end: "2024-03-15 18:30:00", peak: false},
	}

	for _, tc := range tests {
		t.Run(tc.start, func(t *testing.T) {
			rec, err := tr.Transform(rideRecord("ride-x", map[string]interface{}{
				v1.FieldStart: tc.start,
				v1.FieldEnd:   tc.end,
			}))
			require.NoError(t, err)
			require.Equal(t, tc.peak, rec.IsPeak)
		})
	}
}

func TestTransform_InvalidInterval(t *testing.T) {
	users, drivers, dates := newTestTables(t)
	tr := NewTransformer(users, drivers, dates, nil, false)

	_, err := tr.Transform(rideRecord("ride-bad", map[string]interface{}{
		v1.FieldStart: "2024-03-15 10:00:00",
		v1.FieldEnd:   "2024-03-15 09:00:00",
	}))
	require.ErrorIs(t, err, ErrInvalidInterval)
	require.ErrorContains(t, err, "ride-bad")
}

func TestTransform_ZeroDurationAllowed(t *testing.T) {
	users, drivers, dates := newTestTables(t)
	tr := NewTransformer(users, drivers, dates, nil, false)

	rec, err := tr.Transform(rideRecord("ride-0", map[string]interface{}{
		v1.FieldStart: "2024-03-15 10:00:00",
		v1.FieldEnd:   "2024-03-15 10:00:00",
	}))
	require.NoError(t, err)
	require.True(t, rec.DurationMinutes.IsZero())
}

func TestTransform_UnresolvedDimensions(t *testing.T) {
	users, drivers, dates := newTestTables(t)
	tr := NewTransformer(users, drivers, dates, nil, false)

	tests := []struct {
		name   string
		fields map[string]interface{}
	}{
		{name: "unknown user", fields: map[string]interface{}{v1.FieldUserID: "u-ghost"}},
		{name: "unknown driver", fields: map[string]interface{}{v1.FieldDriverID: "d-ghost"}},
		{name: "unknown date", fields: map[string]interface{}{
			v1.FieldStart: "2030-01-01 10:00:00",
			v1.FieldEnd:   "2030-01-01 10:30:00",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tr.Transform(rideRecord("ride-1", tc.fields))
			require.ErrorIs(t, err, dimension.ErrUnresolved)
		})
	}
}

func TestTransform_RatingPolicy(t *testing.T) {
	ratings := []v1.RawRecord{
		ratingRecord("rat-2", "ride-multi", "3.0"),
		ratingRecord("rat-1", "ride-multi", "5.0"),
		ratingRecord("rat-3", "ride-single", "4.2"),
	}

	t.Run("absent rating stays absent, not zero", func(t *testing.T) {
		users, drivers, dates := newTestTables(t)
		tr := NewTransformer(users, drivers, dates, ratings, false)
		rec, err := tr.Transform(rideRecord("ride-unrated", nil))
		require.NoError(t, err)
		require.False(t, rec.Rating.Valid)
	})

	t.Run("single rating taken as-is", func(t *testing.T) {
		users, drivers, dates := newTestTables(t)
		tr := NewTransformer(users, drivers, dates, ratings, false)
		rec, err := tr.Transform(rideRecord("ride-single", nil))
		require.NoError(t, err)
		require.True(t, rec.Rating.Valid)
		require.True(t, decimal.RequireFromString("4.2").Equal(rec.Rating.Decimal))
	})

	t.Run("lenient picks lowest rating record id", func(t *testing.T) {
		users, drivers, dates := newTestTables(t)
		tr := NewTransformer(users, drivers, dates, ratings, false)
		rec, err := tr.Transform(rideRecord("ride-multi", nil))
		require.NoError(t, err)
		require.True(t, rec.Rating.Valid)
		require.True(t, decimal.RequireFromString("5.0").Equal(rec.Rating.Decimal), "got %s", rec.Rating.Decimal)
	})

	t.Run("strict rejects ambiguous rating", func(t *testing.T) {
		users, drivers, dates := newTestTables(t)
		tr := NewTransformer(users, drivers, dates, ratings, true)
		_, err := tr.Transform(rideRecord("ride-multi", nil))
		require.ErrorIs(t, err, ErrAmbiguousRating)
	})
}

func TestTransform_RejectsNonRideSource(t *testing.T) {
	users, drivers, dates := newTestTables(t)
	tr := NewTransformer(users, drivers, dates, nil, false)

	_, err := tr.Transform(v1.RawRecord{Source: v1.SourceUser, ID: "u-1"})
	require.ErrorIs(t, err, ErrNotARide)
}
