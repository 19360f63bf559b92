package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/existflow/ironclock/internal/config"
	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/tui"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	userFlag   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "clock",
	Short: "IronClock - Terminal work time tracker",
	Long: `IronClock tracks your working time as an append-only event log:
start your day, switch between projects, take breaks, and get duration
reports per project and per day.

Run 'clock' without arguments to launch the interactive dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			cfg = config.DefaultConfig()
		}

		// Flags override the config for this invocation only
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
		}
		if cmd.Flags().Changed("user") {
			cfg.User = userFlag
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}
		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("IronClock started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		logger.Info("Launching TUI")
		m := tui.NewModel(s, s.UserLabel())
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run dashboard: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("IronClock exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "Act as this user (email)")

	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(breakCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(authCmd)
}

// printLines prints an operation's status lines
func printLines(lines []string) {
	for _, line := range lines {
		fmt.Println(line)
	}
}
