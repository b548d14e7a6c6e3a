package window

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func rowsFromInts(values ...int64) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{ID: fmt.Sprintf("r-%02d", i+1), Value: decimal.NewFromInt(v)}
	}
	return rows
}

func decimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func requireDecimalsEqual(t *testing.T, want []decimal.Decimal, got []decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, want[i].Equal(got[i]), "index %d: want %s got %s", i, want[i], got[i])
	}
}

func TestSort_DescWithTieBreak(t *testing.T) {
	rows := []Row{
		{ID: "r-b", Value: decimal.NewFromInt(50)},
		{ID: "r-a", Value: decimal.NewFromInt(50)},
		{ID: "r-c", Value: decimal.NewFromInt(70)},
	}
	Sort(rows, true)
	require.Equal(t, "r-c", rows[0].ID)
	require.Equal(t, "r-a", rows[1].ID)
	require.Equal(t, "r-b", rows[2].ID)

	Sort(rows, false)
	require.Equal(t, "r-a", rows[0].ID)
	require.Equal(t, "r-b", rows[1].ID)
	require.Equal(t, "r-c", rows[2].ID)
}

func TestRowNumber(t *testing.T) {
	require.Equal(t, []int64{1, 2, 3}, RowNumber(rowsFromInts(10, 20, 30)))
	require.Empty(t, RowNumber(nil))
}

// Spec'd tie behavior: fares [50,50,50,40] descending-ordered.
func TestRank_TiesLeaveGaps(t *testing.T) {
	rows := rowsFromInts(50, 50, 50, 40)
	require.Equal(t, []int64{1, 1, 1, 4}, Rank(rows))
}

func TestDenseRank_NoGaps(t *testing.T) {
	rows := rowsFromInts(50, 50, 50, 40)
	require.Equal(t, []int64{1, 1, 1, 2}, DenseRank(rows))
}

func TestRanks_BoundaryMonotonicity(t *testing.T) {
	rows := rowsFromInts(90, 90, 80, 80, 80, 70, 60)

	dense := DenseRank(rows)
	comp := Rank(rows)

	for i := 1; i < len(rows); i++ {
		require.GreaterOrEqual(t, dense[i], dense[i-1])
		if !rows[i].Value.Equal(rows[i-1].Value) {
			// Dense rank increases by exactly 1 at each distinct-value boundary.
			require.Equal(t, dense[i-1]+1, dense[i])
			// Competition rank jumps to rows-so-far + 1 (gap equals tie-group size).
			require.Equal(t, int64(i+1), comp[i])
		} else {
			require.Equal(t, dense[i-1], dense[i])
			require.Equal(t, comp[i-1], comp[i])
		}
	}
}

func TestPercentRank(t *testing.T) {
	t.Run("best is exactly 0 and worst exactly 1", func(t *testing.T) {
		got := PercentRank(rowsFromInts(100, 80, 60, 40, 20))
		requireDecimalsEqual(t, decimals("0", "0.25", "0.5", "0.75", "1"), got)
	})

	t.Run("ties share percent rank", func(t *testing.T) {
		got := PercentRank(rowsFromInts(50, 50, 50, 40))
		// competition ranks [1,1,1,4] over n=4: (r-1)/3.
		requireDecimalsEqual(t, decimals("0", "0", "0", "1"), got)
	})

	t.Run("single row guards division", func(t *testing.T) {
		got := PercentRank(rowsFromInts(7))
		requireDecimalsEqual(t, decimals("0"), got)
	})

	t.Run("empty partition yields no rows", func(t *testing.T) {
		require.Empty(t, PercentRank(nil))
	})
}

func TestCumeDist(t *testing.T) {
	t.Run("distinct values", func(t *testing.T) {
		got := CumeDist(rowsFromInts(10, 20, 30, 40))
		requireDecimalsEqual(t, decimals("0.25", "0.5", "0.75", "1"), got)
	})

	t.Run("ties take the group's upper bound", func(t *testing.T) {
		got := CumeDist(rowsFromInts(50, 50, 50, 40))
		requireDecimalsEqual(t, decimals("0.75", "0.75", "0.75", "1"), got)
	})

	t.Run("last row is always exactly 1", func(t *testing.T) {
		got := CumeDist(rowsFromInts(5, 4, 3, 2, 1, 1))
		require.True(t, decimal.NewFromInt(1).Equal(got[len(got)-1]))
	})
}

func TestNtile(t *testing.T) {
	tests := []struct {
		n, k int
		want []int64
	}{
		{n: 8, k: 4, want: []int64{1, 1, 2, 2, 3, 3, 4, 4}},
		// n not divisible by k: the first (n mod k) buckets get one extra row.
		{n: 10, k: 4, want: []int64{1, 1, 1, 2, 2, 2, 3, 3, 4, 4}},
		{n: 3, k: 5, want: []int64{1, 2, 3}},
		{n: 1, k: 1, want: []int64{1}},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("n=%d k=%d", tc.n, tc.k), func(t *testing.T) {
			values := make([]int64, tc.n)
			for i := range values {
				values[i] = int64(100 - i)
			}
			got, err := Ntile(rowsFromInts(values...), tc.k)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)

			// Bucket sizes differ by at most 1.
			sizes := map[int64]int{}
			for _, b := range got {
				sizes[b]++
			}
			min, max := tc.n, 0
			for _, s := range sizes {
				if s < min {
					min = s
				}
				if s > max {
					max = s
				}
			}
			require.LessOrEqual(t, max-min, 1)
		})
	}

	_, err := Ntile(rowsFromInts(1, 2), 0)
	require.Error(t, err)
}

func TestLagLead(t *testing.T) {
	rows := rowsFromInts(10, 20, 30)

	lag := Lag(rows)
	require.False(t, lag[0].Valid)
	require.True(t, decimal.NewFromInt(10).Equal(lag[1].Decimal))
	require.True(t, decimal.NewFromInt(20).Equal(lag[2].Decimal))

	lead := Lead(rows)
	require.True(t, decimal.NewFromInt(20).Equal(lead[0].Decimal))
	require.True(t, decimal.NewFromInt(30).Equal(lead[1].Decimal))
	require.False(t, lead[2].Valid)
}

// Spec'd positional example: fares [10,20,30] in time order.
func TestPositionalValues_BroadcastWholePartition(t *testing.T) {
	rows := rowsFromInts(10, 20, 30)

	first := FirstValue(rows)
	last := LastValue(rows)
	for i := range rows {
		require.True(t, first[i].Valid)
		require.True(t, decimal.NewFromInt(10).Equal(first[i].Decimal))
		require.True(t, last[i].Valid)
		// Whole-partition frame: last_value is 30 for EVERY row, including
		// rows that are not last — never the current row's own value.
		require.True(t, decimal.NewFromInt(30).Equal(last[i].Decimal))
	}
	require.Equal(t, []int64{1, 2, 3}, RowNumber(rows))
}

func TestNthValue(t *testing.T) {
	rows := rowsFromInts(10, 20, 30)

	second := NthValue(rows, 2)
	for i := range rows {
		require.True(t, second[i].Valid)
		require.True(t, decimal.NewFromInt(20).Equal(second[i].Decimal))
	}

	// Position beyond the partition: absent for all rows.
	beyond := NthValue(rows, 10)
	for i := range rows {
		require.False(t, beyond[i].Valid)
	}
}

func TestEmptyPartitionYieldsNoRows(t *testing.T) {
	require.Empty(t, Rank(nil))
	require.Empty(t, DenseRank(nil))
	require.Empty(t, CumeDist(nil))
	require.Empty(t, Lag(nil))
	require.Empty(t, Lead(nil))
	require.Empty(t, FirstValue(nil))
	require.Empty(t, LastValue(nil))
	require.Empty(t, NthValue(nil, 1))
	buckets, err := Ntile(nil, 4)
	require.NoError(t, err)
	require.Empty(t, buckets)
}
