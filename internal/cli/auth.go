package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/ironclock/internal/client"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with an ironclock server for remote mode.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the server",
	RunE:  runRegister,
}

var serverCmd = &cobra.Command{
	Use:   "server [url]",
	Short: "Show or set the server URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServer,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(serverCmd)
}

func promptLine(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(passwordBytes)
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := client.NewClient()
	if err != nil {
		return err
	}

	email := promptLine("Email: ")
	password := promptPassword("Password: ")

	if err := c.Login(email, password); err != nil {
		return err
	}

	fmt.Println("✓ Logged in.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := client.NewClient()
	if err != nil {
		return err
	}

	if !c.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := c.Logout(); err != nil {
		return err
	}

	fmt.Println("✓ Logged out.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	c, err := client.NewClient()
	if err != nil {
		return err
	}

	firstName := promptLine("First name: ")
	lastName := promptLine("Last name: ")
	email := promptLine("Email: ")
	password := promptPassword("Password: ")
	confirm := promptPassword("Confirm password: ")

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := c.Register(firstName, lastName, email, password); err != nil {
		return err
	}

	fmt.Println("✓ Account created and logged in.")
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	c, err := client.NewClient()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Printf("Server: %s\n", c.Server())
		return nil
	}

	url := strings.TrimRight(args[0], "/")
	if err := c.SetServer(url); err != nil {
		return err
	}

	cfg.ServerURL = url
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✓ Server set to %s (remote mode enabled)\n", url)
	return nil
}
