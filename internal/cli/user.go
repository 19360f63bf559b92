package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/ironclock/internal/db"
	"github.com/existflow/ironclock/internal/track"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local users",
	Long: `Manage the users of the local database. In remote mode accounts
live on the server; use 'clock auth register' instead.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add [email]",
	Short: "Add a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE:    runUserList,
}

var userSelectCmd = &cobra.Command{
	Use:   "select [email]",
	Short: "Select the user tracking verbs act for",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserSelect,
}

var userDeleteCmd = &cobra.Command{
	Use:     "delete [email]",
	Aliases: []string{"rm"},
	Short:   "Delete a user and their entire event log",
	Args:    cobra.ExactArgs(1),
	RunE:    runUserDelete,
}

var (
	userFirstName string
	userLastName  string
	userDeleteYes bool
)

func init() {
	userAddCmd.Flags().StringVar(&userFirstName, "first", "", "First name")
	userAddCmd.Flags().StringVar(&userLastName, "last", "", "Last name")
	userDeleteCmd.Flags().BoolVarP(&userDeleteYes, "yes", "y", false, "Skip the confirmation prompt")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userSelectCmd)
	userCmd.AddCommand(userDeleteCmd)
}

// openUserDB opens the local database for user management
func openUserDB() (*db.DB, error) {
	if cfg.ServerURL != "" {
		return nil, errors.New("user management is local-only; use 'clock auth register' for the server")
	}
	path := cfg.DBPath
	if path == "" {
		var err error
		if path, err = db.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	database, err := openUserDB()
	if err != nil {
		return err
	}
	defer database.Close()

	u, err := database.CreateUser(context.Background(), userFirstName, userLastName, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Added user %s <%s>\n", u.DisplayName(), u.Email)
	if cfg.User == "" {
		cfg.User = u.Email
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("✓ Selected %s\n", u.Email)
	}
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	database, err := openUserDB()
	if err != nil {
		return err
	}
	defer database.Close()

	users, err := database.ListUsers(context.Background())
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users yet. 'clock user add <email>' creates one.")
		return nil
	}

	fmt.Println()
	fmt.Printf("  %-30s  %-25s  %s\n", "Email", "Name", "Last active")
	fmt.Println(strings.Repeat("─", 70))
	for _, u := range users {
		marker := " "
		if u.Email == cfg.User {
			marker = "*"
		}
		lastActive := "never"
		if u.LastActive != nil {
			lastActive = u.LastActive.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%s %-30s  %-25s  %s\n", marker, u.Email, u.DisplayName(), lastActive)
	}
	fmt.Println()
	return nil
}

func runUserSelect(cmd *cobra.Command, args []string) error {
	database, err := openUserDB()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	u, err := database.UserByEmail(ctx, args[0])
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%q: %w", args[0], track.ErrUserNotFound)
	}

	if err := database.TouchUser(ctx, u.ID, time.Now()); err != nil {
		return err
	}

	cfg.User = u.Email
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("✓ Selected %s\n", u.Email)
	return nil
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	database, err := openUserDB()
	if err != nil {
		return err
	}
	defer database.Close()

	email := args[0]
	if !userDeleteYes {
		fmt.Printf("This deletes %s together with all projects and tracked time.\n", email)
		fmt.Print("Continue? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := database.DeleteUser(context.Background(), email); err != nil {
		return err
	}

	if cfg.User == email {
		cfg.User = ""
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	fmt.Printf("✓ Deleted user %s\n", email)
	return nil
}
