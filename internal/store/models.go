package store

import "time"

type DataSource string

const (
	DataSourceManual      DataSource = "manual"
	DataSourceIntegration DataSource = "integration"
)

type VariantID string

const (
	VariantA VariantID = "A"
	VariantB VariantID = "B"
)

type RecommendedAction string

const (
	ActionImplement       RecommendedAction = "implement"
	ActionKeepOriginal    RecommendedAction = "keep_original"
	ActionContinueTesting RecommendedAction = "continue_testing"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Winner tags the outcome of a finished test. The zero value means no
// winner has been declared.
type Winner string

const (
	WinnerNone Winner = ""
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerTie  Winner = "tie"
)

type Test struct {
	ID             string       `json:"id" yaml:"id"`
	Name           string       `json:"name" yaml:"name" validate:"required"`
	Description    string       `json:"description" yaml:"description"`
	StartDate      time.Time    `json:"start_date" yaml:"start_date"`
	EndDate        time.Time    `json:"end_date" yaml:"end_date"`
	TestURL        string       `json:"test_url" yaml:"test_url" validate:"required,url"`
	DataSource     DataSource   `json:"data_source" yaml:"data_source" validate:"oneof=manual integration"`
	TargetAudience []string     `json:"target_audience" yaml:"target_audience" validate:"dive,required"`
	TrafficSplit   TrafficSplit `json:"traffic_split" yaml:"traffic_split"`
	Variants       Variants     `json:"variants" yaml:"variants"`
	Results        *Results     `json:"results,omitempty" yaml:"results,omitempty"`
	Report         *Report      `json:"report,omitempty" yaml:"report,omitempty"`
	CreatedAt      time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" yaml:"updated_at"`
}

// TrafficSplit holds the percentage of traffic sent to each variant.
type TrafficSplit struct {
	VariantA int `json:"variant_a" yaml:"variant_a" validate:"min=0,max=100"`
	VariantB int `json:"variant_b" yaml:"variant_b" validate:"min=0,max=100"`
}

type Variants struct {
	A Variant `json:"a" yaml:"a"`
	B Variant `json:"b" yaml:"b"`
}

// Get returns the variant definition for id. Unknown ids return the zero
// Variant and false.
func (v Variants) Get(id VariantID) (Variant, bool) {
	switch id {
	case VariantA:
		return v.A, true
	case VariantB:
		return v.B, true
	}
	return Variant{}, false
}

type Variant struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description" yaml:"description"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty" validate:"omitempty,url"`
	SampleSize  int    `json:"sample_size,omitempty" yaml:"sample_size,omitempty" validate:"min=0"`
}

type Results struct {
	VariantA VariantResult `json:"variant_a" yaml:"variant_a"`
	VariantB VariantResult `json:"variant_b" yaml:"variant_b"`
	Overall  OverallResult `json:"overall" yaml:"overall"`
}

type VariantResult struct {
	VariantID               VariantID `json:"variant_id" yaml:"variant_id"`
	SampleSize              int       `json:"sample_size" yaml:"sample_size" validate:"min=0"`
	ConversionRate          float64   `json:"conversion_rate" yaml:"conversion_rate"`
	RevenuePerUser          float64   `json:"revenue_per_user" yaml:"revenue_per_user"`
	TotalRevenue            float64   `json:"total_revenue" yaml:"total_revenue"`
	Metrics                 []Metric  `json:"metrics" yaml:"metrics" validate:"dive"`
	ConfidenceInterval      Interval  `json:"confidence_interval" yaml:"confidence_interval"`
	StatisticalPower        float64   `json:"statistical_power" yaml:"statistical_power"`
	MinimumDetectableEffect float64   `json:"minimum_detectable_effect" yaml:"minimum_detectable_effect"`
}

type Metric struct {
	Name        string  `json:"name" yaml:"name" validate:"required"`
	Value       float64 `json:"value" yaml:"value"`
	Unit        string  `json:"unit" yaml:"unit"`
	Change      float64 `json:"change" yaml:"change"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
	PValue      float64 `json:"p_value" yaml:"p_value"`
	Significant bool    `json:"statistical_significance" yaml:"statistical_significance"`
}

type Interval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

type OverallResult struct {
	Significant            bool              `json:"statistical_significance" yaml:"statistical_significance"`
	ConfidenceLevel        float64           `json:"confidence_level" yaml:"confidence_level" validate:"min=0,max=1"`
	RecommendedAction      RecommendedAction `json:"recommended_action" yaml:"recommended_action" validate:"oneof=implement keep_original continue_testing"`
	EstimatedRevenueImpact float64           `json:"estimated_revenue_impact" yaml:"estimated_revenue_impact"`
	RiskAssessment         RiskLevel         `json:"risk_assessment" yaml:"risk_assessment" validate:"oneof=low medium high"`
	Winner                 Winner            `json:"winner,omitempty" yaml:"winner,omitempty" validate:"omitempty,oneof=A B tie"`
}

type Report struct {
	ExecutiveSummary string   `json:"executive_summary" yaml:"executive_summary"`
	KeyFindings      []string `json:"key_findings" yaml:"key_findings"`
	Recommendations  []string `json:"recommendations" yaml:"recommendations"`
	Limitations      []string `json:"limitations" yaml:"limitations"`
	NextSteps        []string `json:"next_steps" yaml:"next_steps"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (t *Test) Clone() *Test {
	c := *t
	c.TargetAudience = cloneStrings(t.TargetAudience)

	if t.Results != nil {
		r := *t.Results
		r.VariantA.Metrics = cloneMetrics(t.Results.VariantA.Metrics)
		r.VariantB.Metrics = cloneMetrics(t.Results.VariantB.Metrics)
		c.Results = &r
	}

	if t.Report != nil {
		r := Report{
			ExecutiveSummary: t.Report.ExecutiveSummary,
			KeyFindings:      cloneStrings(t.Report.KeyFindings),
			Recommendations:  cloneStrings(t.Report.Recommendations),
			Limitations:      cloneStrings(t.Report.Limitations),
			NextSteps:        cloneStrings(t.Report.NextSteps),
		}
		c.Report = &r
	}

	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneMetrics(m []Metric) []Metric {
	if m == nil {
		return nil
	}
	out := make([]Metric, len(m))
	copy(out, m)
	return out
}
