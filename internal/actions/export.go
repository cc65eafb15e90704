package actions

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gkobilansky/abreport/internal/report"
	"github.com/gkobilansky/abreport/internal/store"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// ExportDownloader writes the key metrics table as CSV or the whole test
// document as JSON. PDF output is not available yet.
type ExportDownloader struct {
	Now func() time.Time
}

func NewExportDownloader() *ExportDownloader {
	return &ExportDownloader{Now: time.Now}
}

func (d *ExportDownloader) Download(ctx context.Context, w io.Writer, t *store.Test, format string) error {
	switch format {
	case FormatCSV:
		return exportCSV(w, report.Build(t, d.Now()))
	case FormatJSON:
		return exportJSON(w, t)
	case FormatPDF:
		return ErrNotImplemented
	default:
		return fmt.Errorf("invalid format %q: must be 'csv' or 'json'", format)
	}
}

func (d *ExportDownloader) ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func exportCSV(w io.Writer, v report.View) error {
	cw := csv.NewWriter(w)

	// Write header
	if err := cw.Write([]string{"metric", "variant_a", "variant_b", "change", "confidence"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write rows
	for _, row := range v.KeyMetrics {
		if err := cw.Write([]string{row.Metric, row.VariantA, row.VariantB, row.Change, row.Confidence}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportJSON(w io.Writer, t *store.Test) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(t)
}
