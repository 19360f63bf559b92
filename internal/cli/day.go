package cli

import (
	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Open and close workdays",
}

var dayStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new workday",
	Long: `Start a new workday. Tracked time is attributed to the day the
workday was started with, even when work runs past midnight.`,
	Args: cobra.NoArgs,
	RunE: runDayStart,
}

var dayEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the workday and print its summary",
	Long: `End the workday. An open break and a running project are closed
first, then the day's duration summary is printed.`,
	Args: cobra.NoArgs,
	RunE: runDayEnd,
}

func init() {
	dayCmd.AddCommand(dayStartCmd)
	dayCmd.AddCommand(dayEndCmd)
}

func runDayStart(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	out, err := s.StartDay()
	if err != nil {
		return err
	}
	printLines(out.Lines)
	return nil
}

func runDayEnd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	dc, err := s.EndDay()
	if err != nil {
		return err
	}
	printLines(dc.Outcome.Lines)
	return nil
}
