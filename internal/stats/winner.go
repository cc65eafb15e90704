package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gkobilansky/abreport/internal/store"
)

const noWinner = "No winner yet"

// WinnerText describes the outcome of a test for display. Missing results
// or a missing winner tag are normal for running tests.
func WinnerText(results *store.Results) string {
	if results == nil {
		return noWinner
	}

	overall := results.Overall
	switch overall.Winner {
	case store.WinnerNone:
		return noWinner
	case store.WinnerTie:
		return "Tie"
	}

	text := fmt.Sprintf("Variant %s won", overall.Winner)
	if overall.ConfidenceLevel > 0 {
		text += fmt.Sprintf(" (%s%% confidence)", confidencePercent(overall.ConfidenceLevel))
	}
	return text
}

// confidencePercent renders a 0-1 confidence as a percentage with at most
// one decimal: 0.95 -> "95", 0.955 -> "95.5".
func confidencePercent(level float64) string {
	pct := math.Round(level*1000) / 10
	return strconv.FormatFloat(pct, 'f', -1, 64)
}
