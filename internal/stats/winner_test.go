package stats_test

import (
	"testing"

	"github.com/gkobilansky/abreport/internal/stats"
	"github.com/gkobilansky/abreport/internal/store"
)

func TestWinnerText(t *testing.T) {
	withOverall := func(o store.OverallResult) *store.Results {
		return &store.Results{Overall: o}
	}

	tests := []struct {
		name    string
		results *store.Results
		want    string
	}{
		{"no results", nil, "No winner yet"},
		{"no winner tag", withOverall(store.OverallResult{ConfidenceLevel: 0.95}), "No winner yet"},
		{"tie", withOverall(store.OverallResult{Winner: store.WinnerTie, ConfidenceLevel: 0.6}), "Tie"},
		{"A with confidence", withOverall(store.OverallResult{Winner: store.WinnerA, ConfidenceLevel: 0.95}), "Variant A won (95% confidence)"},
		{"B with fractional confidence", withOverall(store.OverallResult{Winner: store.WinnerB, ConfidenceLevel: 0.975}), "Variant B won (97.5% confidence)"},
		{"B without confidence", withOverall(store.OverallResult{Winner: store.WinnerB}), "Variant B won"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stats.WinnerText(tt.results); got != tt.want {
				t.Errorf("WinnerText() = %q, want %q", got, tt.want)
			}
		})
	}
}
