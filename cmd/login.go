package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rmsbilling/internal/logger"
	"rmsbilling/pkg/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the billing backend",
	Long: `Exchange your email and password for a bearer token pair. The tokens
are stored in a local file with owner-only permissions and attached to
every subsequent request until you log out.`,
	Example: `  # Log in with flags
  billing login --email admin@example.com --password secret

  # Log in, prompting for the password
  billing login --email admin@example.com`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a backend account and log in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored bearer tokens",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().String("email", "", "Account email address")
	loginCmd.Flags().String("password", "", "Account password (prompted if omitted)")
	loginCmd.Flags().Int("timeout", 30, "Request timeout in seconds")

	registerCmd.Flags().String("name", "", "Account display name")
	registerCmd.Flags().String("email", "", "Account email address")
	registerCmd.Flags().String("password", "", "Account password (prompted if omitted)")
	registerCmd.Flags().Int("timeout", 30, "Request timeout in seconds")
}

func runLogin(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("login")

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if email == "" {
		return fmt.Errorf("--email is required")
	}
	if password == "" {
		var err error
		password, err = promptSecret("Password: ")
		if err != nil {
			return err
		}
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	log.Info().Str("email", email).Msg("Logging in")

	if _, err := client.Login(ctx, models.LoginRequest{Email: email, Password: password}); err != nil {
		return handleSubmitError(err, log)
	}

	fmt.Println("Logged in.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("register")

	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if name == "" || email == "" {
		return fmt.Errorf("--name and --email are required")
	}
	if password == "" {
		var err error
		password, err = promptSecret("Password: ")
		if err != nil {
			return err
		}
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	log.Info().Str("email", email).Msg("Registering account")

	if _, err := client.Register(ctx, models.RegisterRequest{Name: name, Email: email, Password: password}); err != nil {
		return handleSubmitError(err, log)
	}

	fmt.Println("Account created and logged in.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("logout")

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}
	if err := client.Logout(); err != nil {
		log.Error().Err(err).Msg("Failed to clear tokens")
		return err
	}

	fmt.Println("Logged out.")
	return nil
}

// promptSecret reads a line from stdin. The terminal echo is left on; use the
// --password flag in scripts.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
