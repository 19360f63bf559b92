package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/ironclock/internal/report"
)

var (
	reportFrom    string
	reportTo      string
	reportWeek    bool
	reportProject string
	reportView    string
	reportFormat  string
	reportOutput  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show duration reports",
	Long: `Show duration reports over a date range. Days are keyed by the
date their workday started. Without a range, today is reported.

Views: daily (sessions of the range), project (one project's sessions),
timesheet (multi-day with day totals), summary (per-project totals).

Examples:
  clock report
  clock report --week
  clock report --from 2025-03-01 --to 2025-03-15 --view summary
  clock report --project "Report" --format csv --output report.csv`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD)")
	reportCmd.Flags().BoolVarP(&reportWeek, "week", "w", false, "Report the current week (Monday through today)")
	reportCmd.Flags().StringVarP(&reportProject, "project", "p", "", "Only this project")
	reportCmd.Flags().StringVar(&reportView, "view", "", "View: daily, project, timesheet or summary")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "F", "table", "Format: table, csv, json or markdown")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write to file instead of stdout")
}

// reportRange resolves the flags into [from, to] bounds
func reportRange() (time.Time, time.Time, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if reportWeek {
		if reportFrom != "" || reportTo != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--week cannot be combined with --from/--to")
		}
		// back to Monday
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), today, nil
	}

	from, to := today, today
	var err error
	if reportFrom != "" {
		if from, err = time.Parse("2006-01-02", reportFrom); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if reportTo != "" {
		if to, err = time.Parse("2006-01-02", reportTo); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
	}
	return from, to, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	from, to, err := reportRange()
	if err != nil {
		return err
	}

	view := reportView
	if view == "" {
		switch {
		case reportProject != "":
			view = "project"
		case from.Equal(to):
			view = "daily"
		default:
			view = "timesheet"
		}
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	rep, err := s.Report(from, to, reportProject)
	if err != nil {
		return err
	}

	var out string
	switch view {
	case "daily":
		out, err = report.Daily(rep, format)
	case "project":
		if reportProject == "" {
			return fmt.Errorf("--view project requires --project")
		}
		out, err = report.Project(rep, reportProject, format)
	case "timesheet":
		out, err = report.Timesheet(rep, format)
	case "summary":
		out, err = report.Summary(rep, format)
	default:
		return fmt.Errorf("unknown view %q (want daily, project, timesheet or summary)", view)
	}
	if err != nil {
		return err
	}

	if reportOutput != "" {
		if err := os.WriteFile(reportOutput, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("✓ Report written to %s\n", reportOutput)
		return nil
	}
	fmt.Print(out)

	if n := len(rep.Faults); n > 0 {
		fmt.Printf("\nWarning: %d events outside any workday were skipped\n", n)
	}
	for _, d := range rep.Days {
		for _, f := range d.Faults {
			fmt.Printf("Warning: %s: %s\n", d.Date, f.Reason)
		}
	}
	return nil
}
