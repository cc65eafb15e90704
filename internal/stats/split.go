package stats

import "github.com/gkobilansky/abreport/internal/store"

// SplitFor returns the split that sends a percent of traffic to variant A
// and the rest to B. Out-of-range input is clamped to [0, 100] so neither
// share can go negative.
func SplitFor(a int) store.TrafficSplit {
	a = min(max(a, 0), 100)
	return store.TrafficSplit{VariantA: a, VariantB: 100 - a}
}
