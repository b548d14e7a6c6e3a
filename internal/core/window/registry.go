package window

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Window function names accepted by the on-demand analytics surface.
const (
	FnRowNumber   = "row_number"
	FnRank        = "rank"
	FnDenseRank   = "dense_rank"
	FnPercentRank = "percent_rank"
	FnCumeDist    = "cume_dist"
	FnNtile       = "ntile"
	FnLag         = "lag"
	FnLead        = "lead"
	FnFirstValue  = "first_value"
	FnLastValue   = "last_value"
	FnNthValue    = "nth_value"
)

// Args carries the per-function parameters bound at construction time.
type Args struct {
	K int // ntile: bucket count
	N int // nth_value: 1-based position
}

// Function computes one window analytic over an ordered partition, returning
// one value per input row. An empty partition yields zero values — never a
// synthetic default row.
type Function func(rows []Row) []decimal.NullDecimal

// builders is the registry of all supported window functions.
// To add a function: implement it above and add an entry here — the service
// hot path stays a single map lookup, no switch.
var builders = map[string]func(Args) (Function, error){
	FnRowNumber:   func(Args) (Function, error) { return intFunction(RowNumber), nil },
	FnRank:        func(Args) (Function, error) { return intFunction(Rank), nil },
	FnDenseRank:   func(Args) (Function, error) { return intFunction(DenseRank), nil },
	FnPercentRank: func(Args) (Function, error) { return decimalFunction(PercentRank), nil },
	FnCumeDist:    func(Args) (Function, error) { return decimalFunction(CumeDist), nil },
	FnLag:         func(Args) (Function, error) { return Lag, nil },
	FnLead:        func(Args) (Function, error) { return Lead, nil },
	FnFirstValue:  func(Args) (Function, error) { return FirstValue, nil },
	FnLastValue:   func(Args) (Function, error) { return LastValue, nil },
	FnNtile: func(args Args) (Function, error) {
		if args.K < 1 {
			return nil, fmt.Errorf("ntile: bucket count must be >= 1, got %d", args.K)
		}
		return func(rows []Row) []decimal.NullDecimal {
			buckets, _ := Ntile(rows, args.K) // K validated above
			return intsToNullDecimals(buckets)
		}, nil
	},
	FnNthValue: func(args Args) (Function, error) {
		if args.N < 1 {
			return nil, fmt.Errorf("nth_value: position must be >= 1, got %d", args.N)
		}
		return func(rows []Row) []decimal.NullDecimal {
			return NthValue(rows, args.N)
		}, nil
	},
}

// New returns the named window function with its arguments bound.
func New(name string, args Args) (Function, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown window function %q", name)
	}
	return build(args)
}

// ValidFunction reports whether name is a registered window function.
func ValidFunction(name string) bool {
	_, ok := builders[name]
	return ok
}

func intFunction(fn func([]Row) []int64) Function {
	return func(rows []Row) []decimal.NullDecimal {
		return intsToNullDecimals(fn(rows))
	}
}

func decimalFunction(fn func([]Row) []decimal.Decimal) Function {
	return func(rows []Row) []decimal.NullDecimal {
		values := fn(rows)
		out := make([]decimal.NullDecimal, len(values))
		for i, v := range values {
			out[i] = decimal.NullDecimal{Decimal: v, Valid: true}
		}
		return out
	}
}

func intsToNullDecimals(values []int64) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(values))
	for i, v := range values {
		out[i] = decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
	}
	return out
}
