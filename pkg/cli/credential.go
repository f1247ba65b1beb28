package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/flowcanvas/pkg/checklist"
	"github.com/dshills/flowcanvas/pkg/storage"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const maxCredentialSize = 1 << 20 // 1MB limit for all credential inputs

// readPassword is replaced in tests
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// isOnlyWhitespace checks if a byte slice contains only Unicode whitespace characters
// without allocating strings. Returns true if empty or whitespace-only.
func isOnlyWhitespace(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			// Invalid UTF-8 is treated as non-whitespace
			return false
		}
		if !unicode.IsSpace(r) {
			return false
		}
		i += size
	}
	return true
}

// NewCredentialCommand creates the credential management command
func NewCredentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the checklist service API token",
		Long: `Manage the API token sent to the checklist service.
The token is stored in your system's native credential store (Keychain on macOS,
Credential Manager on Windows, Secret Service on Linux) and never in plain text files.
Without a token, requests are sent anonymously.`,
	}

	cmd.AddCommand(newCredentialSetCommand())
	cmd.AddCommand(newCredentialDeleteCommand())
	cmd.AddCommand(newCredentialListCommand())

	return cmd
}

func newCredentialSetCommand() *cobra.Command {
	var (
		value    string
		useStdin bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API token",
		Long: `Store the bearer token used for checklist service requests.

Examples:
  # Interactive prompt (recommended for local use)
  flowcanvas credential set

  # From stdin (recommended for automation)
  printf '%s' "$FLOWCANVAS_TOKEN" | flowcanvas credential set --stdin

  # Inline (NOT recommended - visible in shell history)
  flowcanvas credential set --value s3cret

Note:
  - All input methods have a 1MB maximum size limit
  - Only trailing CR/LF characters are removed from --stdin input
  - Whitespace-only tokens are rejected`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			switch {
			case useStdin:
				data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxCredentialSize+1))
				if err != nil {
					return fmt.Errorf("failed to read from stdin: %w", err)
				}
				raw = bytes.TrimRight(data, "\r\n")
			case value != "":
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), "Warning: Using --value flag exposes the token in shell history.")
				raw = []byte(value)
			default:
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Enter API token: ")
				data, err := readPassword()
				_, _ = fmt.Fprintln(cmd.OutOrStdout()) // New line after hidden input
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				raw = data
			}

			// Zero the buffer on all exit paths
			defer func() {
				for i := range raw {
					raw[i] = 0
				}
			}()

			if len(raw) > maxCredentialSize {
				return fmt.Errorf("token exceeds maximum size of %d bytes", maxCredentialSize)
			}
			if len(raw) == 0 {
				return fmt.Errorf("token cannot be empty")
			}
			if isOnlyWhitespace(raw) {
				return fmt.Errorf("token cannot contain only whitespace characters")
			}

			if err := storage.NewKeyringStore().Set(checklist.TokenKey, raw); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ API token stored")
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Token value (optional - will prompt securely if omitted)")
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "Read the token from stdin")
	cmd.MarkFlagsMutuallyExclusive("stdin", "value")

	return cmd
}

func newCredentialDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.NewKeyringStore().Remove(checklist.TokenKey); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ API token removed")
			return nil
		},
	}
}

func newCredentialListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which credentials are stored",
		Long: `List stored credential names. Values are never displayed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storage.NewKeyringStore()
			keys, err := store.List()
			if err != nil {
				return fmt.Errorf("failed to list credentials: %w", err)
			}

			if len(keys) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials configured.")
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nStore a token with: flowcanvas credential set")
				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configured Credentials:")
			for _, k := range keys {
				status := "(set)"
				if _, err := store.Get(k); errors.Is(err, storage.ErrNotFound) {
					status = "(missing)"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %s %s\n", strings.TrimSpace(k), status)
			}
			return nil
		},
	}
}
