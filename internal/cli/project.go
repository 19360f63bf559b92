package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `List, archive and restore the projects tracked time is attributed to.`,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

var projectAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a project without starting it",
	Long: `Create a project without starting it. 'clock start' creates
unknown projects on the fly; add is for setting projects up ahead of time.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectAdd,
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive [name]",
	Short: "Archive a project",
	Long: `Archive a project so it refuses new tracking. Its logged time
stays in every report. The active project cannot be archived.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectArchive,
}

var projectRestoreCmd = &cobra.Command{
	Use:   "restore [name]",
	Short: "Restore an archived project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRestore,
}

var (
	projectListAll  bool
	projectListSort string
)

func init() {
	projectListCmd.Flags().BoolVarP(&projectListAll, "all", "a", false, "Include archived projects")
	projectListCmd.Flags().StringVar(&projectListSort, "sort", "name", "Sort order: name or created")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectArchiveCmd)
	projectCmd.AddCommand(projectRestoreCmd)
}

func runProjectList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	projects, err := s.ListProjects(projectListAll)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		fmt.Println("No projects yet. 'clock start <name>' creates one.")
		return nil
	}

	switch projectListSort {
	case "name":
	case "created":
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].CreatedAt.Before(projects[j].CreatedAt)
		})
	default:
		return fmt.Errorf("unknown sort %q (want name or created)", projectListSort)
	}

	fmt.Println()
	fmt.Printf("  %-30s  %s\n", "Name", "State")
	fmt.Println(strings.Repeat("─", 42))
	for _, p := range projects {
		fmt.Printf("  %-30s  %s\n", p.Name, p.State)
	}
	fmt.Println()
	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.CreateProject(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("✓ Created project %q\n", p.Name)
	return nil
}

func runProjectArchive(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ArchiveProject(args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Archived project %q\n", args[0])
	return nil
}

func runProjectRestore(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.RestoreProject(args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Restored project %q\n", args[0])
	return nil
}
