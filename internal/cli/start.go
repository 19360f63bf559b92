package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/ironclock/internal/track"
)

var (
	startNoCreate bool
	startForce    bool
)

var startCmd = &cobra.Command{
	Use:   "start [project]",
	Short: "Start working on a project",
	Long: `Start working on a project. Unknown projects are created unless
--no-create is given. When another project is running you are asked to
confirm the handover; --force switches without asking.

Examples:
  clock start "Report"
  clock start "Standup" --force`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startNoCreate, "no-create", false, "Fail when the project does not exist")
	startCmd.Flags().BoolVarP(&startForce, "force", "f", false, "Switch from a running project without confirmation")
}

func runStart(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	name := args[0]
	res, err := s.Activate(name, !startNoCreate, startForce)
	if err != nil {
		return err
	}

	if res.Confirm != nil {
		if !confirmHandover(res.Confirm) {
			fmt.Println("Aborted.")
			return nil
		}
		if res, err = s.Activate(name, !startNoCreate, true); err != nil {
			return err
		}
	}

	printLines(res.Outcome.Lines)
	return nil
}

// confirmHandover asks before switching away from a running project
func confirmHandover(c *track.Confirmation) bool {
	fmt.Printf("Currently working on %q since %s (%s tracked today).\n",
		c.Project, track.FormatClock(c.Since), track.FormatDuration(c.Elapsed))
	fmt.Print("Switch project? [y/N] ")

	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
