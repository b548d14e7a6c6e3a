package v1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Source types produced by the ingestion collaborator.
// Each source type is a flat mapping of named fields with no sort-order guarantee.
const (
	SourceUser    = "user"
	SourceDriver  = "driver"
	SourceVehicle = "vehicle"
	SourceRide    = "ride"
	SourceRating  = "rating"
)

// Well-known field names on ride and rating records.
const (
	FieldUserID   = "user_id"
	FieldDriverID = "driver_id"
	FieldRideID   = "ride_id"
	FieldStart    = "start_time"
	FieldEnd      = "end_time"
	FieldDistance = "distance_km"
	FieldFare     = "fare_amount"
	FieldRating   = "rating"
)

// RawRecord is the atomic unit consumed from ingestion.
// It separates the identity (Source + ID, the natural key) from the payload (Fields).
// RawRecords are produced once by the ingest collaborator and never mutated.
type RawRecord struct {
	// Source is the source table this record belongs to (user, driver, vehicle, ride, rating).
	Source string `json:"source"`

	// ID is the natural key: externally meaningful, unique within its source type.
	ID string `json:"id"`

	// Fields is the flat field mapping. Values are strings, numbers or booleans
	// as parsed from the source; typed access goes through the accessors below.
	Fields map[string]interface{} `json:"fields"`
}

// Validate ensures the record carries the required identity attributes.
func (r *RawRecord) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("source is required")
	}
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

// String returns the named field as a string, or "" when missing.
func (r *RawRecord) String(field string) string {
	v, ok := r.Fields[field]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Decimal pulls a numeric field by name.
// Returns decimal.Zero if the field is missing, empty, or not a recognized
// numeric type. JSON numbers unmarshal to float64 — that's the common path;
// NewFromFloat converts it to an exact decimal representation.
func (r *RawRecord) Decimal(field string) decimal.Decimal {
	v, ok := r.Fields[field]
	if !ok {
		return decimal.Zero
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val)
	case float32:
		return decimal.NewFromFloat(float64(val))
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case int32:
		return decimal.NewFromInt(int64(val))
	case string:
		d, err := decimal.NewFromString(val)
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}

// timestampLayouts are the accepted source timestamp shapes.
// Source timestamps are naive (already business-local); no timezone
// conversion is performed.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Time parses the named field as a timestamp.
// Returns an error when the field is missing or matches no accepted layout.
func (r *RawRecord) Time(field string) (time.Time, error) {
	v, ok := r.Fields[field]
	if !ok {
		return time.Time{}, fmt.Errorf("field %q is missing", field)
	}
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("field %q is not a timestamp", field)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("field %q: unrecognized timestamp %q", field, s)
}
