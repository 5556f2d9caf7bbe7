package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lifeos-app/lifeos/internal/models"
)

func formatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func formatTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			width := 0
			if i < len(widths) {
				width = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", width, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)

	seps := make([]string, len(headers))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width)
	}
	printRow(seps)

	for _, row := range rows {
		printRow(row)
	}
}

// printImportResult lists only kinds the import touched, in import order.
func printImportResult(w io.Writer, format string, r *models.ImportResult) error {
	if format == "json" {
		return formatJSON(w, r)
	}

	var rows [][]string
	for _, k := range models.Kinds {
		er, ok := r.Results[k]
		if !ok || er.Imported+er.Skipped+er.Errors == 0 {
			continue
		}
		rows = append(rows, []string{string(k), strconv.Itoa(er.Imported), strconv.Itoa(er.Skipped), strconv.Itoa(er.Errors)})
	}
	rows = append(rows, []string{"TOTAL", strconv.Itoa(r.TotalImported), strconv.Itoa(r.TotalSkipped), strconv.Itoa(r.TotalErrors)})

	formatTable(w, []string{"KIND", "IMPORTED", "SKIPPED", "ERRORS"}, rows)

	dry := ""
	if r.IsDryRun {
		dry = " (dry run, nothing written)"
	}
	fmt.Fprintf(w, "\n%s: mode=%s schema=%s %dms%s\n", r.Status, r.Mode, r.SchemaVersion, r.DurationMs, dry)

	for _, k := range models.Kinds {
		for _, d := range r.Results[k].ErrorDetails {
			fmt.Fprintf(w, "  %s: %s\n", k, d)
		}
	}

	return nil
}

func printReport(w io.Writer, format string, r *models.ValidationReport) error {
	if format == "json" {
		return formatJSON(w, r)
	}

	var rows [][]string
	for _, k := range models.Kinds {
		if n := r.EntityCounts[k]; n > 0 {
			rows = append(rows, []string{string(k), strconv.Itoa(n)})
		}
	}

	formatTable(w, []string{"KIND", "ROWS"}, rows)

	fmt.Fprintf(w, "\nschema %s compatible=%t valid=%t\n", r.SchemaVersion, r.Compatible, r.Valid)

	for _, p := range r.Problems {
		fmt.Fprintf(w, "  problem: %s\n", p)
	}

	return nil
}
