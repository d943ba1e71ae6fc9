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

// seriesColumns are shared by the table and CSV renderings.
var seriesColumns = []string{"env", "date", "spa_actual", "spa_planned", "ms_actual", "ms_planned", "spa_total", "ms_total", "combined_actual", "combined_planned"}

// WriteSeriesResults outputs the normalized series, dispatching based on the output format configured.
func WriteSeriesResults(series []schema.EnvironmentSeries, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.SeriesOutput{Environments: series})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, seriesColumns, func(cw *csv.Writer) error {
				for _, s := range series {
					for _, p := range s.Points {
						if err := cw.Write(seriesRow(s.Env, p, "")); err != nil {
							return err
						}
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertSeries(series))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesTable(series, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeSeriesTable renders every point of every environment in one table.
func writeSeriesTable(series []schema.EnvironmentSeries, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Env", "Date", "SPA Actual", "SPA Planned", "MS Actual", "MS Planned", "SPA Total", "MS Total", "Combined Actual", "Combined Planned"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	points := 0
	for _, s := range series {
		for _, p := range s.Points {
			data = append(data, seriesRow(s.Env, p, "-"))
		}
		points += len(s.Points)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d points across %d environments\n", points, len(series)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Normalization completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// seriesRow flattens one point. Missing counts render as missing.
func seriesRow(env string, p schema.BurndownPoint, missing string) []string {
	opt := func(v *int) string {
		if v == nil {
			return missing
		}
		return formatOptionalCount(v)
	}
	return []string{
		env,
		p.Date,
		opt(p.SpaActual),
		opt(p.SpaPlanned),
		opt(p.MsActual),
		opt(p.MsPlanned),
		opt(p.SpaTotal),
		opt(p.MsTotal),
		strconv.Itoa(p.CombinedActual),
		strconv.Itoa(p.CombinedPlanned),
	}
}
