package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/ironclock/internal/track"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current tracking state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.Status()
	if err != nil {
		return err
	}

	fmt.Printf("User: %s <%s>\n", st.User.DisplayName(), st.User.Email)

	if !st.Projection.DayOpen {
		fmt.Println("No workday open. Start one with 'clock day start'.")
		return nil
	}

	fmt.Printf("Workday open since %s\n", track.FormatClock(st.Projection.DayStartedAt))

	switch {
	case st.Projection.BreakOpen:
		fmt.Printf("On break since %s", track.FormatClock(st.Projection.BreakStartedAt))
		if st.Projection.BreakNote != "" {
			fmt.Printf(" (%s)", st.Projection.BreakNote)
		}
		fmt.Printf(", %q suspended\n", st.SuspendedProject)
	case st.ActiveProject != "":
		fmt.Printf("Working on %q since %s\n", st.ActiveProject, track.FormatClock(st.Projection.ProjectStartedAt))
	default:
		fmt.Println("No project active.")
	}

	if st.Today != nil {
		fmt.Printf("\nToday: %s worked", track.FormatDuration(st.Today.WorkTotal()))
		if bt := st.Today.BreakTotal(); bt > 0 {
			fmt.Printf(", %s on break", track.FormatDuration(bt))
		}
		fmt.Println()
		for _, pt := range st.Today.ProjectTotals() {
			fmt.Printf("  %s: %s\n", pt.Project, track.FormatDuration(pt.Total))
		}
	}

	if n := len(st.Projection.Faults); n > 0 {
		fmt.Printf("\nWarning: %d log inconsistencies found, see 'clock report'\n", n)
	}
	return nil
}
