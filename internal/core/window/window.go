package window

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Row is one fact projection inside a partition: the record it came from and
// the metric the window operation ranks or scans over.
type Row struct {
	ID    string
	Value decimal.Decimal
}

// Sort orders rows by metric value, descending when desc is set, with a
// deterministic tie-break on record ID ascending. Every ranking operation
// assumes its input went through Sort (or arrived in an equivalent explicit
// order such as chronological partition order).
func Sort(rows []Row, desc bool) {
	sort.Slice(rows, func(i, j int) bool {
		cmp := rows[i].Value.Cmp(rows[j].Value)
		if cmp != 0 {
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return rows[i].ID < rows[j].ID
	})
}

// RowNumber assigns 1..n in partition order: no gaps, no ties.
// Determinism comes from the explicit tie-break in Sort.
func RowNumber(rows []Row) []int64 {
	out := make([]int64, len(rows))
	for i := range rows {
		out[i] = int64(i + 1)
	}
	return out
}

// Rank assigns competition ranks: equal metric values share a rank, and the
// next distinct value's rank is (rows so far) + 1 — gaps appear after ties.
func Rank(rows []Row) []int64 {
	out := make([]int64, len(rows))
	for i := range rows {
		if i > 0 && rows[i].Value.Equal(rows[i-1].Value) {
			out[i] = out[i-1]
			continue
		}
		out[i] = int64(i + 1)
	}
	return out
}

// DenseRank assigns ranks with no gaps: equal values share a rank and each
// distinct-value boundary increases the rank by exactly 1, regardless of
// tie-group size.
func DenseRank(rows []Row) []int64 {
	out := make([]int64, len(rows))
	var rank int64
	for i := range rows {
		if i == 0 || !rows[i].Value.Equal(rows[i-1].Value) {
			rank++
		}
		out[i] = rank
	}
	return out
}

// PercentRank computes (r − 1) / (n − 1) for competition rank r over n rows.
// A single-row partition yields 0 — the n ≤ 1 guard avoids division by zero.
// Range [0.0, 1.0]; 0.0 is the best-ranked row.
func PercentRank(rows []Row) []decimal.Decimal {
	n := len(rows)
	out := make([]decimal.Decimal, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = decimal.Zero
		return out
	}

	ranks := Rank(rows)
	divisor := decimal.NewFromInt(int64(n - 1))
	for i := range rows {
		out[i] = decimal.NewFromInt(ranks[i] - 1).Div(divisor)
	}
	return out
}

// CumeDist computes, per row, the fraction of partition rows whose metric is
// at or before the row's metric in the ordering direction: (rows with value
// ≤ current, following the sort direction) / n. Range (0.0, 1.0].
func CumeDist(rows []Row) []decimal.Decimal {
	n := len(rows)
	out := make([]decimal.Decimal, n)
	if n == 0 {
		return out
	}

	total := decimal.NewFromInt(int64(n))
	// Walk tie groups: every row in a group shares the group's last index + 1.
	for start := 0; start < n; {
		end := start
		for end+1 < n && rows[end+1].Value.Equal(rows[start].Value) {
			end++
		}
		dist := decimal.NewFromInt(int64(end + 1)).Div(total)
		for i := start; i <= end; i++ {
			out[i] = dist
		}
		start = end + 1
	}
	return out
}

// Ntile divides n ordered rows into k buckets numbered 1..k, as evenly as
// possible: when n is not divisible by k, the first (n mod k) buckets receive
// one extra row. Bucket sizes never differ by more than 1.
func Ntile(rows []Row, k int) ([]int64, error) {
	if k < 1 {
		return nil, fmt.Errorf("ntile: bucket count must be >= 1, got %d", k)
	}
	n := len(rows)
	out := make([]int64, n)
	if n == 0 {
		return out, nil
	}

	base := n / k
	extra := n % k
	idx := 0
	for bucket := 1; bucket <= k && idx < n; bucket++ {
		size := base
		if bucket <= extra {
			size++
		}
		for j := 0; j < size; j++ {
			out[idx] = int64(bucket)
			idx++
		}
	}
	return out, nil
}

// Lag returns, per row, the metric of the row exactly one position earlier in
// partition order; absent for the first row.
func Lag(rows []Row) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(rows))
	for i := 1; i < len(rows); i++ {
		out[i] = decimal.NullDecimal{Decimal: rows[i-1].Value, Valid: true}
	}
	return out
}

// Lead returns, per row, the metric of the row exactly one position later in
// partition order; absent for the last row.
func Lead(rows []Row) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(rows))
	for i := 0; i+1 < len(rows); i++ {
		out[i] = decimal.NullDecimal{Decimal: rows[i+1].Value, Valid: true}
	}
	return out
}

// FirstValue broadcasts the metric of the partition's first row to every row.
func FirstValue(rows []Row) []decimal.NullDecimal {
	return NthValue(rows, 1)
}

// LastValue broadcasts the metric of the partition's final row to every row.
//
// The frame is the FULL partition span — unbounded preceding to unbounded
// following. A running (to-current-row) frame would silently degenerate
// last_value into the current row's own value; the whole-partition framing
// here is deliberate and load-bearing.
func LastValue(rows []Row) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(rows))
	if len(rows) == 0 {
		return out
	}
	last := decimal.NullDecimal{Decimal: rows[len(rows)-1].Value, Valid: true}
	for i := range out {
		out[i] = last
	}
	return out
}

// NthValue broadcasts the metric at fixed position n (1-based, whole-partition
// frame) to every row. When the partition has fewer than n rows the value is
// absent for all of them.
func NthValue(rows []Row, n int) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(rows))
	if n < 1 || n > len(rows) {
		return out
	}
	nth := decimal.NullDecimal{Decimal: rows[n-1].Value, Valid: true}
	for i := range out {
		out[i] = nth
	}
	return out
}
