package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var breakCmd = &cobra.Command{
	Use:   "break [note]",
	Short: "Take a break",
	Long: `Suspend the active project for a break. Break time is excluded
from every project total. An optional note says what the break was for.

Examples:
  clock break
  clock break lunch`,
	RunE: runBreak,
}

var continueCmd = &cobra.Command{
	Use:   "continue",
	Short: "End the break and resume the suspended project",
	Args:  cobra.NoArgs,
	RunE:  runContinue,
}

func runBreak(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	out, err := s.Break(strings.Join(args, " "))
	if err != nil {
		return err
	}
	printLines(out.Lines)
	return nil
}

func runContinue(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	out, err := s.Continue()
	if err != nil {
		return err
	}
	printLines(out.Lines)
	return nil
}
