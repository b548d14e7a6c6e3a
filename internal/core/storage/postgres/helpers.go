package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/ridemart-lab/ridemart/internal/core/dimension"
	"github.com/ridemart-lab/ridemart/internal/core/fact"
)

// marshalAttributes marshals a dimension entry's attribute map to JSON.
// Nil/empty attributes produce nil (SQL NULL) rather than a JSON "null" string.
func marshalAttributes(attributes map[string]string) ([]byte, error) {
	if len(attributes) == 0 {
		return nil, nil
	}
	out, err := json.Marshal(attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanDimensionRow scans one dimension table row. A NULL attributes column
// yields a nil map.
func scanDimensionRow(row scanner) (dimension.Entry, error) {
	var entry dimension.Entry
	var attrsJSON []byte

	if err := row.Scan(&entry.SurrogateKey, &entry.NaturalKey, &attrsJSON); err != nil {
		return dimension.Entry{}, fmt.Errorf("failed to scan dimension row: %w", err)
	}
	if len(attrsJSON) > 0 {
		if err := json.Unmarshal(attrsJSON, &entry.Attributes); err != nil {
			return dimension.Entry{}, fmt.Errorf("failed to unmarshal attributes for %q: %w", entry.NaturalKey, err)
		}
	}
	return entry, nil
}

// scanFactRow scans a database row into a fact.Record.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanFactRow(row scanner) (fact.Record, error) {
	var rec fact.Record
	var userKey, driverKey, dateKey int64

	err := row.Scan(
		&rec.ID,
		&userKey,
		&driverKey,
		&dateKey,
		&rec.StartTime,
		&rec.EndTime,
		&rec.DurationMinutes,
		&rec.DistanceKM,
		&rec.FareAmount,
		&rec.IsPeak,
		&rec.Rating,
		&rec.GapMinutes,
	)
	if err != nil {
		return fact.Record{}, fmt.Errorf("failed to scan fact row: %w", err)
	}

	rec.Keys = map[string]int64{
		fact.DimUser:   userKey,
		fact.DimDriver: driverKey,
		fact.DimDate:   dateKey,
	}
	return rec, nil
}
