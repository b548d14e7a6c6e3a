package postgres

// SQL for the star schema: one table per dimension plus the fact table.

// dimTables maps dimension names to their physical tables. Table names are
// interpolated from this fixed map only — never from caller input.
var dimTables = map[string]string{
	"user":    "dim_user",
	"driver":  "dim_driver",
	"date":    "dim_date",
	"vehicle": "dim_vehicle",
}

const (
	// querySaveDimensionEntryTmpl inserts a dimension entry with
	// insert-if-absent semantics: resolving the same natural key twice must
	// not update the stored attributes (first-write-wins).
	querySaveDimensionEntryTmpl = `
		INSERT INTO %s (surrogate_key, natural_key, attributes)
		VALUES ($1, $2, $3)
		ON CONFLICT (natural_key) DO NOTHING
	`

	// queryMaxSurrogateKeyTmpl seeds the resolver counter from the current maximum.
	queryMaxSurrogateKeyTmpl = `SELECT COALESCE(MAX(surrogate_key), 0) FROM %s`

	// queryListDimensionEntriesTmpl hydrates the in-memory resolver with the
	// stored entries so known natural keys keep their surrogate keys.
	queryListDimensionEntriesTmpl = `
		SELECT surrogate_key, natural_key, attributes
		FROM %s
		ORDER BY surrogate_key ASC
	`

	// querySaveFact appends a fact record keyed by record_id.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for duplicates,
	// which the adapter maps to storage.ErrDuplicate.
	querySaveFact = `
		INSERT INTO fact_rides (
			record_id, user_key, driver_key, date_key,
			start_time, end_time, duration_minutes,
			distance_km, fare_amount, is_peak, rating, gap_minutes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (record_id) DO NOTHING
		RETURNING record_id
	`

	// queryListFacts returns the whole fact set in a stable order.
	queryListFacts = `
		SELECT
			record_id, user_key, driver_key, date_key,
			start_time, end_time, duration_minutes,
			distance_km, fare_amount, is_peak, rating, gap_minutes
		FROM fact_rides
		ORDER BY record_id ASC
	`
)
