package fact

import "errors"

// Per-record transformation failures. Each is fatal for the offending record
// and non-fatal for the run: the pipeline records the reason, excludes the
// record and continues.
var (
	// ErrInvalidInterval marks a ride whose end_time precedes its start_time.
	ErrInvalidInterval = errors.New("end_time precedes start_time")

	// ErrAmbiguousRating marks a ride with more than one candidate rating
	// while strict rating mode is configured.
	ErrAmbiguousRating = errors.New("multiple ratings for ride")

	// ErrNotARide is returned when a non-ride raw record reaches the transformer.
	ErrNotARide = errors.New("raw record is not a ride")
)
