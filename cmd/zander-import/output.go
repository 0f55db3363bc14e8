package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/zander/internal/core"
)

func writePreview(w io.Writer, results []core.ValidationResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tNAME\tSKU\tSTATUS\tDETAILS")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Row, r.Data.Name(), r.Data.SKU(), rowStatus(r), rowDetails(r))
	}
	tw.Flush()
}

func rowStatus(r core.ValidationResult) string {
	var tags []string
	switch {
	case r.HasErrors():
		tags = append(tags, "ERROR")
	case len(r.Warnings) > 0:
		tags = append(tags, "WARNING")
	default:
		tags = append(tags, "OK")
	}
	if r.IsDuplicate {
		tags = append(tags, "DUPLICATE")
	}
	return strings.Join(tags, ",")
}

func rowDetails(r core.ValidationResult) string {
	msgs := append(append([]string{}, r.Errors...), r.Warnings...)
	return strings.Join(msgs, "; ")
}

func writeSummary(w io.Writer, s core.ValidationSummary) {
	fmt.Fprintf(w, "\n%d rows: %d valid, %d with errors, %d duplicates, %d with warnings\n",
		s.Total, s.Valid, s.Invalid, s.Duplicates, s.HasWarnings)
}

func writeResult(w io.Writer, r *core.ImportResult) {
	fmt.Fprintf(w, "\nimported %d, updated %d, skipped %d, errors %d\n", r.Imported, r.Updated, r.Skipped, r.Errors)
	for _, d := range r.Details {
		if d.Status == core.StatusSkipped || d.Status == core.StatusError {
			fmt.Fprintf(w, "  row %d %s: %s %s\n", d.Row, d.Name, d.Status, d.Message)
		}
	}
}
