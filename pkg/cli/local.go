package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/editor"
	"github.com/spf13/cobra"
)

// NewLocalCommand creates the local working copy command
func NewLocalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Manage the local working copy",
		Long: `Save, load and reset the locally stored flowchart.

The working copy lives in the configured store (a directory of files, or
flowcanvas.db when store: sqlite is set in config.yaml).`,
	}

	cmd.AddCommand(newLocalSaveCommand())
	cmd.AddCommand(newLocalLoadCommand())
	cmd.AddCommand(newLocalResetCommand())

	return cmd
}

// stdinConfirmer asks a yes/no question on out and reads the answer from in
func stdinConfirmer(in io.Reader, out io.Writer) editor.ConfirmFunc {
	return func(prompt string) bool {
		_, _ = fmt.Fprintf(out, "%s [y/N]: ", prompt)

		var response string
		_, _ = fmt.Fscanln(in, &response)
		response = strings.ToLower(strings.TrimSpace(response))
		return response == "y" || response == "yes"
	}
}

func newLocalSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <diagram-file>",
		Short: "Save a flowchart file as the local working copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := LoadDiagramFromFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			store, release, err := openLocalStore()
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer release()

			ed := editor.New(
				editor.WithInitial(d.Nodes, d.Connections),
				editor.WithStore(store),
				editor.WithLogger(logger()),
			)
			if err := ed.SaveLocal(); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Flowchart saved")
			return nil
		},
	}
}

func newLocalLoadCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Print the local working copy",
		Long: `Print the locally saved flowchart in the JSON wire format.

Examples:
  flowcanvas local load
  flowcanvas local load -o decision-flowchart.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, release, err := openLocalStore()
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer release()

			ed := editor.New(editor.WithStore(store), editor.WithLogger(logger()))
			if err := ed.LoadLocal(); err != nil {
				return err
			}

			// A missing save is reported as a notice rather than an error
			if n := ed.Notification(); n != nil && n.Level == editor.LevelInfo {
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), n.Message)
				return nil
			}

			data, err := diagram.Marshal(ed.Diagram())
			if err != nil {
				return err
			}
			if err := writeOutput(outputPath, data, cmd.OutOrStdout()); err != nil {
				return err
			}
			if outputPath != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Flowchart written to: %s\n", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")

	return cmd
}

func newLocalResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the local working copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, release, err := openLocalStore()
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer release()

			confirm := stdinConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = func(string) bool { return true }
			}

			ed := editor.New(
				editor.WithStore(store),
				editor.WithConfirmer(confirm),
				editor.WithLogger(logger()),
			)
			if !ed.ResetAll() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Local working copy removed")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
