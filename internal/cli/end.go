package cli

import (
	"github.com/spf13/cobra"
)

var endNext string

var endCmd = &cobra.Command{
	Use:   "end [project]",
	Short: "Stop working on the active project",
	Long: `Stop working on the active project. Naming a project guards
against ending the wrong one: the command fails when it is not the
active project. With --next the named project starts at the same instant.

Examples:
  clock end
  clock end "Report"
  clock end --next "Standup"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnd,
}

func init() {
	endCmd.Flags().StringVarP(&endNext, "next", "n", "", "Project to start at the same instant")
}

func runEnd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	out, err := s.EndProject(name, endNext)
	if err != nil {
		return err
	}
	printLines(out.Lines)
	return nil
}
