package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/internal/parquet"
	"github.com/huangsam/burndown/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteProgressResults outputs the progress records, dispatching based on the output format configured.
func WriteProgressResults(progress []schema.EnvironmentProgress, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForProgress(w, progress)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForProgress(w, progress, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertProgress(progress, cfg.Now))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProgressTable(progress, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

// writeProgressTable generates and writes the human-readable table.
func writeProgressTable(progress []schema.EnvironmentProgress, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Env", "Status", "Progress", "SPA", "MS", "Burn/Day", "Confidence", "Projected", "Target", "Days Left"}
	if cfg.Detail {
		headers = append(headers, "SPA Status", "MS Status", "SPA Projected", "MS Projected", "Trend")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 2. Populate Rows
	barWidth := getProgressBarWidth(cfg)
	var data [][]string
	for i, p := range progress {
		row := []string{
			strconv.Itoa(i + 1), // Rank
			p.Env,
			statusLabel(p.Status, cfg.UseColors),
			renderProgressBar(p.OverallProgress, barWidth, p.Status, cfg.UseColors),
			fmt.Sprintf("%d/%d", p.CurrentSpa, p.TotalSpa), // Remaining over scope
			fmt.Sprintf("%d/%d", p.CurrentMs, p.TotalMs),
			fmtFloat(p.BurnRate),
			formatConfidence(p.Confidence, fmtFloat),
			orDash(p.ProjectedCompletion),
			formatTargets(p.TargetSpa, p.TargetMs),
			formatDays(p.DaysToTarget),
		}
		if cfg.Detail {
			row = append(
				row,
				statusLabel(p.SpaStatus, cfg.UseColors),
				statusLabel(p.MsStatus, cfg.UseColors),
				projectedOf(p.SpaProjection),
				projectedOf(p.MsProjection),
				fmt.Sprintf("%s/%s", trendOf(p.SpaProjection), trendOf(p.MsProjection)),
			)
		}
		data = append(data, row)
	}

	// 3. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Summary stats
	atRisk := 0
	for _, p := range progress {
		if p.Status == schema.AtRiskStatus || p.Status == schema.MissedStatus {
			atRisk++
		}
	}
	if _, err := fmt.Fprintf(writer, "Showing %d environments (%d at risk or missed)\n", len(progress), atRisk); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForProgress writes the progress records in CSV format.
func writeCSVResultsForProgress(w io.Writer, progress []schema.EnvironmentProgress, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank",
		"env",
		"status",
		"spa_status",
		"ms_status",
		"current_spa",
		"total_spa",
		"spa_progress",
		"current_ms",
		"total_ms",
		"ms_progress",
		"overall_progress",
		"burn_rate",
		"confidence",
		"confidence_band",
		"projected_completion",
		"target_spa",
		"target_ms",
		"days_to_target",
		"last_observed",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, p := range progress {
			days := ""
			if p.DaysToTarget != nil {
				days = fmt.Sprintf(intFmt, *p.DaysToTarget)
			}
			rec := []string{
				strconv.Itoa(i + 1),
				p.Env,
				string(p.Status),
				string(p.SpaStatus),
				string(p.MsStatus),
				fmt.Sprintf(intFmt, p.CurrentSpa),
				fmt.Sprintf(intFmt, p.TotalSpa),
				fmt.Sprintf(intFmt, p.SpaProgress),
				fmt.Sprintf(intFmt, p.CurrentMs),
				fmt.Sprintf(intFmt, p.TotalMs),
				fmt.Sprintf(intFmt, p.MsProgress),
				fmt.Sprintf(intFmt, p.OverallProgress),
				fmtFloat(p.BurnRate),
				fmtFloat(p.Confidence),
				string(schema.GetConfidenceBand(p.Confidence)),
				p.ProjectedCompletion,
				p.TargetSpa,
				p.TargetMs,
				days,
				p.LastObserved,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForProgress writes the progress records in JSON format.
func writeJSONResultsForProgress(w io.Writer, progress []schema.EnvironmentProgress) error {
	type JSONProgress struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.EnvironmentProgress
	}

	output := make([]JSONProgress, len(progress))
	for i, p := range progress {
		output[i] = JSONProgress{
			Rank:                i + 1,
			Label:               schema.GetPlainLabel(p.Status),
			EnvironmentProgress: p,
		}
	}
	return writeJSON(w, output)
}

// formatConfidence renders a confidence score with its band.
func formatConfidence(confidence float64, fmtFloat func(float64) string) string {
	return fmt.Sprintf("%s (%s)", fmtFloat(confidence), schema.GetConfidenceBand(confidence))
}

func projectedOf(p *schema.Projection) string {
	if p == nil {
		return "-"
	}
	return orDash(p.ProjectedCompletion)
}

func trendOf(p *schema.Projection) string {
	if p == nil {
		return string(schema.TrendStable)
	}
	return string(p.Trend)
}
