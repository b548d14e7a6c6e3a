package analytics

import (
	"github.com/shopspring/decimal"
)

// Partition dimensions accepted by the query surface.
const (
	PartitionDriver = "driver"
	PartitionUser   = "user"
)

// Ordering metrics accepted by the query surface.
const (
	OrderFare     = "fare"
	OrderDuration = "duration"
	OrderDistance = "distance"
	OrderRating   = "rating"
	OrderGap      = "gap"
)

// QueryRequest describes one on-demand window analytics query.
type QueryRequest struct {
	Function    string `form:"-"`
	PartitionBy string `form:"partition_by"`
	OrderBy     string `form:"order_by"`
	Desc        bool   `form:"desc"`

	// K is the bucket count for ntile.
	K int `form:"k"`
	// N is the 1-based position for nth_value.
	N int `form:"n"`
}

// AnalyticsRow is one computed value for one fact record. Derived on demand,
// never persisted.
type AnalyticsRow struct {
	RecordID string              `json:"record_id"`
	Metric   decimal.Decimal     `json:"metric"`
	Value    decimal.NullDecimal `json:"value"`
}

// PartitionResult carries the rows of one partition in window order.
type PartitionResult struct {
	PartitionKey int64          `json:"partition_key"`
	Rows         []AnalyticsRow `json:"rows"`
}

// QueryResponse is the full result of one analytics query.
type QueryResponse struct {
	Function    string            `json:"function"`
	PartitionBy string            `json:"partition_by"`
	OrderBy     string            `json:"order_by"`
	Desc        bool              `json:"desc"`
	Partitions  []PartitionResult `json:"partitions"`
}
