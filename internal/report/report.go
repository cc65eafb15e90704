// Package report projects a test into the preformatted view shown on the
// report page, in downloads and on the terminal. Nothing here computes
// statistics; every number comes from the stored results.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gkobilansky/abreport/internal/stats"
	"github.com/gkobilansky/abreport/internal/store"
)

const dateLayout = "Jan 2, 2006"

// Format selects which sections of the report are shown.
type Format string

const (
	FormatDetailed  Format = "detailed"
	FormatSummary   Format = "summary"
	FormatExecutive Format = "executive"
)

// Formats lists every report format in selector order.
var Formats = []Format{FormatDetailed, FormatSummary, FormatExecutive}

// ParseFormat maps a user-supplied name to a Format, falling back to
// FormatDetailed for anything it does not recognise.
func ParseFormat(s string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSummary, FormatExecutive:
		return f
	default:
		return FormatDetailed
	}
}

// Sections reports which blocks a format includes.
type Sections struct {
	KeyMetrics      bool
	Analysis        bool
	Overall         bool
	KeyFindings     bool
	Recommendations bool
	Limitations     bool
	NextSteps       bool
}

func (f Format) Sections() Sections {
	switch f {
	case FormatSummary:
		return Sections{KeyMetrics: true, Recommendations: true}
	case FormatExecutive:
		return Sections{Overall: true, NextSteps: true}
	default:
		return Sections{
			KeyMetrics: true, Analysis: true, Overall: true, KeyFindings: true,
			Recommendations: true, Limitations: true, NextSteps: true,
		}
	}
}

type View struct {
	ID          string
	Title       string
	Description string
	Period      string
	Status      stats.TestStatus
	Winner      string
	Audience    []string
	Split       string

	HasResults bool
	KeyMetrics []MetricRow
	Variants   []VariantView
	Overall    OverallView

	ExecutiveSummary string
	KeyFindings      []string
	Recommendations  []string
	Limitations      []string
	NextSteps        []string
}

// MetricRow is one line of the key metrics table. Change is B minus A.
type MetricRow struct {
	Metric     string
	VariantA   string
	VariantB   string
	Change     string
	Confidence string
}

type VariantView struct {
	ID                 store.VariantID
	Name               string
	Description        string
	SampleSize         string
	ConfidenceInterval string
	StatisticalPower   string
	MinDetectable      string
	TotalRevenue       string
	Metrics            []MetricDetail
}

type MetricDetail struct {
	Name        string
	Value       string
	Change      string
	PValue      string
	Significant bool
}

type OverallView struct {
	Significant       string
	ConfidenceLevel   string
	RecommendedAction string
	RevenueImpact     string
	Risk              string
}

// Build projects t as seen at now. It is total: a test without results or
// a report yields a view with HasResults unset and empty lists.
func Build(t *store.Test, now time.Time) View {
	v := View{
		ID:          t.ID,
		Title:       t.Name,
		Description: t.Description,
		Period:      Period(t.StartDate, t.EndDate),
		Status:      stats.Status(t.StartDate, t.EndDate, now),
		Winner:      stats.WinnerText(t.Results),
		Audience:    t.TargetAudience,
		Split:       Split(t.TrafficSplit),
	}

	if r := t.Results; r != nil {
		v.HasResults = true
		v.KeyMetrics = keyMetrics(r)
		v.Variants = []VariantView{
			variantView(t.Variants.A, r.VariantA),
			variantView(t.Variants.B, r.VariantB),
		}
		v.Overall = OverallView{
			Significant:       yesNo(r.Overall.Significant),
			ConfidenceLevel:   FormatPercent(r.Overall.ConfidenceLevel),
			RecommendedAction: humanizeEnum(string(r.Overall.RecommendedAction)),
			RevenueImpact:     FormatCurrency(r.Overall.EstimatedRevenueImpact),
			Risk:              humanizeEnum(string(r.Overall.RiskAssessment)),
		}
	}

	if rep := t.Report; rep != nil {
		v.ExecutiveSummary = rep.ExecutiveSummary
		v.KeyFindings = rep.KeyFindings
		v.Recommendations = rep.Recommendations
		v.Limitations = rep.Limitations
		v.NextSteps = rep.NextSteps
	}

	return v
}

func keyMetrics(r *store.Results) []MetricRow {
	confidence := FormatPercent(r.Overall.ConfidenceLevel)
	a, b := r.VariantA, r.VariantB

	return []MetricRow{
		{
			Metric:     "Conversion Rate",
			VariantA:   FormatPercent(a.ConversionRate),
			VariantB:   FormatPercent(b.ConversionRate),
			Change:     FormatPercent(b.ConversionRate - a.ConversionRate),
			Confidence: confidence,
		},
		{
			Metric:     "Revenue per User",
			VariantA:   FormatCurrency(a.RevenuePerUser),
			VariantB:   FormatCurrency(b.RevenuePerUser),
			Change:     FormatCurrency(b.RevenuePerUser - a.RevenuePerUser),
			Confidence: confidence,
		},
	}
}

func variantView(def store.Variant, res store.VariantResult) VariantView {
	metrics := make([]MetricDetail, len(res.Metrics))
	for i, m := range res.Metrics {
		metrics[i] = MetricDetail{
			Name:        m.Name,
			Value:       formatValue(m.Value, m.Unit),
			Change:      formatValue(m.Change, m.Unit),
			PValue:      fmt.Sprintf("%.3f", m.PValue),
			Significant: m.Significant,
		}
	}

	return VariantView{
		ID:                 res.VariantID,
		Name:               def.Name,
		Description:        def.Description,
		SampleSize:         humanize.Comma(int64(res.SampleSize)),
		ConfidenceInterval: FormatPercent(res.ConfidenceInterval.Lower) + " - " + FormatPercent(res.ConfidenceInterval.Upper),
		StatisticalPower:   FormatPercent(res.StatisticalPower),
		MinDetectable:      FormatPercent(res.MinimumDetectableEffect),
		TotalRevenue:       FormatCurrency(res.TotalRevenue),
		Metrics:            metrics,
	}
}

// FormatPercent renders a fraction as a percentage with two decimals:
// 0.025 -> "2.50%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatCurrency renders an amount in dollars with two decimals:
// 10.5 -> "$10.50".
func FormatCurrency(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Period renders a test window the way the dashboard cards show it.
func Period(start, end time.Time) string {
	return start.Format(dateLayout) + " - " + end.Format(dateLayout)
}

func Split(s store.TrafficSplit) string {
	return fmt.Sprintf("%d%% A / %d%% B", s.VariantA, s.VariantB)
}

// formatValue applies a metric's unit: "%" values are fractions, "$" values
// are currency, anything else is printed with the unit appended.
func formatValue(v float64, unit string) string {
	switch unit {
	case "%":
		return FormatPercent(v)
	case "$":
		return FormatCurrency(v)
	case "":
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.2f %s", v, unit)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// humanizeEnum turns "keep_original" into "Keep original".
func humanizeEnum(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
