package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText renders v for a terminal, showing the sections f selects.
func WriteText(w io.Writer, v View, f Format) error {
	sections := f.Sections()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "A/B TEST REPORT: %s\n", v.Title)
	if v.Description != "" {
		fmt.Fprintln(tw, v.Description)
	}
	fmt.Fprintf(tw, "PERIOD: %s\n", v.Period)
	fmt.Fprintf(tw, "STATUS: %s\n", strings.ToUpper(string(v.Status)))
	fmt.Fprintf(tw, "SPLIT: %s\n", v.Split)
	fmt.Fprintf(tw, "OUTCOME: %s\n", v.Winner)

	if v.ExecutiveSummary != "" {
		heading(tw, "EXECUTIVE SUMMARY")
		fmt.Fprintln(tw, v.ExecutiveSummary)
	}

	if v.HasResults {
		writeResults(tw, v, sections)
	} else {
		heading(tw, "RESULTS")
		fmt.Fprintln(tw, "No results recorded yet.")
	}

	if sections.KeyFindings {
		list(tw, "KEY FINDINGS", v.KeyFindings)
	}
	if sections.Recommendations {
		list(tw, "RECOMMENDATIONS", v.Recommendations)
	}
	if sections.Limitations {
		list(tw, "LIMITATIONS", v.Limitations)
	}
	if sections.NextSteps {
		list(tw, "NEXT STEPS", v.NextSteps)
	}

	return tw.Flush()
}

func writeResults(tw io.Writer, v View, sections Sections) {
	if sections.KeyMetrics {
		heading(tw, "KEY METRICS")
		fmt.Fprintln(tw, "METRIC\tVARIANT A\tVARIANT B\tCHANGE\tCONFIDENCE")
		for _, row := range v.KeyMetrics {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Metric, row.VariantA, row.VariantB, row.Change, row.Confidence)
		}
	}

	if sections.Analysis {
		heading(tw, "STATISTICAL ANALYSIS")
		fmt.Fprintln(tw, "VARIANT\tSAMPLE SIZE\tCONFIDENCE INTERVAL\tPOWER\tMDE")
		for _, vv := range v.Variants {
			fmt.Fprintf(tw, "%s (%s)\t%s\t%s\t%s\t%s\n", vv.ID, vv.Name, vv.SampleSize, vv.ConfidenceInterval, vv.StatisticalPower, vv.MinDetectable)
		}
	}

	if sections.Overall {
		heading(tw, "OVERALL")
		fmt.Fprintf(tw, "Significant:\t%s\n", v.Overall.Significant)
		fmt.Fprintf(tw, "Confidence level:\t%s\n", v.Overall.ConfidenceLevel)
		fmt.Fprintf(tw, "Recommended action:\t%s\n", v.Overall.RecommendedAction)
		fmt.Fprintf(tw, "Revenue impact:\t%s\n", v.Overall.RevenueImpact)
		fmt.Fprintf(tw, "Risk:\t%s\n", v.Overall.Risk)
	}
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("─", 60))
}

func list(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	heading(w, title)
	for i, item := range items {
		fmt.Fprintf(w, "%d. %s\n", i+1, item)
	}
}
