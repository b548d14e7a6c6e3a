package analytics

import (
	"context"
	"sort"

	"github.com/ridemart-lab/ridemart/internal/core/window"
)

// reportPresets binds business report names to preconfigured window queries.
// Each preset answers one recurring operations question over the fact set.
var reportPresets = map[string]QueryRequest{
	// Per-driver ride standings by revenue, best first.
	"driver-leaderboard": {Function: window.FnRowNumber, PartitionBy: PartitionDriver, OrderBy: OrderFare, Desc: true},

	// Revenue tiers: equal fares share a tier, the next tier accounts for the
	// tie group (competition ranking).
	"revenue-tiers": {Function: window.FnRank, PartitionBy: PartitionDriver, OrderBy: OrderFare, Desc: true},

	// Quality tiers over rated rides: consecutive tiers with no gaps.
	"quality-tiers": {Function: window.FnDenseRank, PartitionBy: PartitionDriver, OrderBy: OrderRating, Desc: true},

	// Relative fare standing within each driver's rides, 0 best to 1 worst.
	"commission-percentiles": {Function: window.FnPercentRank, PartitionBy: PartitionDriver, OrderBy: OrderFare, Desc: true},

	// Cumulative share of rides at or under each duration.
	"efficiency-quartiles": {Function: window.FnCumeDist, PartitionBy: PartitionDriver, OrderBy: OrderDuration},

	// Customer spend segments: four near-equal buckets per user by fare.
	"customer-segments": {Function: window.FnNtile, PartitionBy: PartitionUser, OrderBy: OrderFare, Desc: true, K: 4},

	// Idle-time outlook per driver: each ride paired with the next larger gap.
	"churn-risk": {Function: window.FnLead, PartitionBy: PartitionDriver, OrderBy: OrderGap, Desc: true},

	// Each driver's cheapest fare broadcast beside every ride.
	"driver-progression": {Function: window.FnFirstValue, PartitionBy: PartitionDriver, OrderBy: OrderFare},

	// Each driver's best rating broadcast beside every rated ride.
	"quality-trend": {Function: window.FnLastValue, PartitionBy: PartitionDriver, OrderBy: OrderRating},

	// The tenth-highest fare per user, where it exists.
	"lifecycle-milestones": {Function: window.FnNthValue, PartitionBy: PartitionUser, OrderBy: OrderFare, Desc: true, N: 10},
}

// ReportNames returns the available report names, sorted.
func ReportNames() []string {
	names := make([]string, 0, len(reportPresets))
	for name := range reportPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report runs a named preset query. Returns (nil, false, nil) for an unknown
// report name.
func (s *Service) Report(ctx context.Context, name string) (*QueryResponse, bool, error) {
	preset, ok := reportPresets[name]
	if !ok {
		return nil, false, nil
	}
	resp, err := s.Query(ctx, preset)
	return resp, true, err
}
