package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/schema"
)

// WriteCheckResult outputs the gate verdict, dispatching based on the output format configured.
func WriteCheckResult(result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		header := []string{"env", "status", "spa_status", "ms_status", "overall_progress", "days_to_target", "failed"}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, e := range result.Environments {
					days := ""
					if e.DaysToTarget != nil {
						days = strconv.Itoa(*e.DaysToTarget)
					}
					rec := []string{
						e.Env,
						string(e.Status),
						string(e.SpaStatus),
						string(e.MsStatus),
						strconv.Itoa(e.OverallProgress),
						days,
						strconv.FormatBool(e.Failed),
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for check results")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckText(result, cfg, duration, w)
		}, "Wrote check")
	}
}

// writeCheckText prints the check result in a concise format suitable for CI/CD.
func writeCheckText(result *schema.CheckResult, cfg *contract.Config, duration time.Duration, w io.Writer) error {
	failOn := make([]string, len(result.FailOn))
	for i, s := range result.FailOn {
		failOn[i] = string(s)
	}

	var b strings.Builder
	b.WriteString("Burndown Check Results:\n")
	fmt.Fprintf(&b, "  %-9s %s\n", "As of:", result.Now.Format(contract.DateTimeFormat))
	fmt.Fprintf(&b, "  %-9s %s\n\n", "Fail on:", strings.Join(failOn, ", "))
	fmt.Fprintf(&b, "Checked %d environments in %v\n\n", len(result.Environments), duration)

	for _, e := range result.Environments {
		mark := "✅"
		if e.Failed {
			mark = "❌"
		}
		fmt.Fprintf(&b, "  %s %-8s %s (progress %d%%, days left: %s)\n",
			mark, e.Env, statusLabel(e.Status, cfg.UseColors), e.OverallProgress, formatDays(e.DaysToTarget))
	}
	b.WriteString("\n")

	if result.Passed {
		fmt.Fprintf(&b, "✅ All %d environments passed\n", len(result.Environments))
	} else {
		fmt.Fprintf(&b, "❌ Check failed: %d environment(s) in a failing status: %s\n",
			len(result.Failed), strings.Join(result.Failed, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
