package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"threadgrab/pkg/auth"
	"threadgrab/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored API key",
	Long: `Manage the API key used for status lookups.

The key is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - THREADGRAB_API_KEY (read only)

--api-key and THREADGRAB_API_KEY always take precedence over a stored key.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the API key",
	Long: `Store the API key in the system keychain or the encrypted file.

The key is read without echo when stdin is a terminal, and as a single line
otherwise:

  echo "$TOKEN" | threadgrab auth login`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API key comes from",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		auth.ShowAPIKeyGuide(cmd.ErrOrStderr())
		fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
	}

	key, err := readAPIKey(cmd.InOrStdin(), interactive)
	if interactive {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		return fmt.Errorf("failed to read api key: %w", err)
	}
	if key == "" {
		return errors.New("api key is empty")
	}

	where, err := manager.Store(&auth.Credential{Profile: auth.DefaultProfile, APIKey: key})
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("API key %s stored in %s", auth.Sanitize(&auth.Credential{APIKey: key}).APIKey, where))
	return nil
}

// readAPIKey reads the key without echo from a terminal, or one line from
// anything else
func readAPIKey(in io.Reader, interactive bool) (string, error) {
	if interactive {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(auth.DefaultProfile); err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			ui.PrintWarning("No stored API key")
			return nil
		}
		return err
	}

	ui.PrintSuccess("Stored API key removed")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "stores: %s\n", strings.Join(manager.Stores(), ", "))

	cred, source, err := manager.Retrieve(auth.DefaultProfile)
	if err != nil {
		fmt.Fprintln(out, "api key: not stored")
		return nil
	}

	masked := auth.Sanitize(cred)
	fmt.Fprintf(out, "api key: %s (%s)\n", masked.APIKey, source)
	if !masked.LastModified.IsZero() {
		fmt.Fprintf(out, "updated: %s\n", masked.LastModified.Format("2006-01-02 15:04"))
	}
	return nil
}
