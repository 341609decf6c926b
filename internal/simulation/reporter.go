package simulation

import (
	"encoding/csv"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/pitwall/internal/models"
)

// CSVHeader is the column layout of the summary export
var CSVHeader = []string{"Car", "Win %", "Podium %", "DNF %", "Avg time (s)"}

// GenerateConsoleReport formats the summary table for terminal output
func GenerateConsoleReport(result MonteCarloResult) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("==== Monte Carlo Summary (%d races) ====\n", result.Iterations))
	builder.WriteString(fmt.Sprintf("%-12s %8s %9s %7s %13s\n", CSVHeader[0], CSVHeader[1], CSVHeader[2], CSVHeader[3], CSVHeader[4]))
	for _, row := range result.Rows {
		cells := formatRow(row)
		builder.WriteString(fmt.Sprintf("%-12s %8s %9s %7s %13s\n", cells[0], cells[1], cells[2], cells[3], displayAvg(cells[4])))
	}
	return builder.String()
}

// GenerateCSVExport writes the summary table to outputPath
func GenerateCSVExport(result MonteCarloResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create csv export: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range result.Rows {
		if err := writer.Write(formatRow(row)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", row.Car, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// GenerateJSONExport writes the full result as JSON
func GenerateJSONExport(result MonteCarloResult, outputPath string) error {
	data, err := result.ExportJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// GenerateHTMLReport creates a simple HTML report
func GenerateHTMLReport(result MonteCarloResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	var rows strings.Builder
	for _, row := range result.Rows {
		cells := formatRow(row)
		rows.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(cells[0]), cells[1], cells[2], cells[3], displayAvg(cells[4])))
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Monte Carlo Race Summary</title></head>
<body>
<h1>Monte Carlo Race Summary</h1>
<p><strong>Races:</strong> %d</p>
<p><strong>Seed:</strong> %d</p>
<p><strong>Circuit:</strong> %d laps of %.0f m (%.0f m)</p>
<table>
<tr><th>Car</th><th>Win %%</th><th>Podium %%</th><th>DNF %%</th><th>Avg time (s)</th></tr>
%s</table>
</body>
</html>`,
		result.Iterations,
		result.Seed,
		result.Circuit.NLaps,
		result.Circuit.LapLength,
		result.Circuit.Distance(),
		rows.String(),
	)

	return os.WriteFile(outputPath, []byte(page), 0o644)
}

// formatRow renders a row with two decimal places. A missing average is empty.
func formatRow(row models.SummaryRow) []string {
	avg := ""
	if row.AvgFinishTime != nil {
		avg = round2(*row.AvgFinishTime)
	}
	return []string{
		row.Car,
		round2(row.WinPercent),
		round2(row.PodiumPercent),
		round2(row.DNFPercent),
		avg,
	}
}

func round2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func displayAvg(avg string) string {
	if avg == "" {
		return "-"
	}
	return avg
}
