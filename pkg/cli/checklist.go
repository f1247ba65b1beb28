package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/flowcanvas/pkg/checklist"
	"github.com/dshills/flowcanvas/pkg/validation"
	"github.com/spf13/cobra"
)

// NewChecklistCommand creates the checklist service command
func NewChecklistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Work with flowcharts stored in the checklist service",
		Long: `Fetch, render and update the flowcharts embedded in decision checklists.

The service URL is api_base_url in config.yaml. Requests carry the token set
with 'flowcanvas credential set', or are anonymous when none is stored.`,
	}

	cmd.AddCommand(newChecklistGetCommand())
	cmd.AddCommand(newChecklistFlowchartCommand())
	cmd.AddCommand(newChecklistSetFlowchartCommand())
	cmd.AddCommand(newChecklistCreateCommand())

	return cmd
}

func newChecklistGetCommand() *cobra.Command {
	var platform bool

	cmd := &cobra.Command{
		Use:   "get <checklist-id>",
		Short: "Show a checklist and its question tree",
		Long: `Show a checklist's questions with the follow-ups reached by each option,
and summarize its flowchart.

Examples:
  flowcanvas checklist get 7
  flowcanvas checklist get 1 --platform`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newChecklistClient()
			if err != nil {
				return err
			}

			view := checklist.NewView(client, settings().ViewSize(), logger())
			if err := view.Load(cmd.Context(), args[0], platform); err != nil {
				return fmt.Errorf("failed to load checklist %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			c := view.Checklist()
			_, _ = fmt.Fprintf(out, "%s\n", c.Name)
			if c.Description != "" {
				_, _ = fmt.Fprintf(out, "%s\n", c.Description)
			}

			_, _ = fmt.Fprintln(out, "\nQuestions:")
			for _, q := range rootQuestions(view.Questions()) {
				printQuestion(out, view, q, 1, map[int]bool{})
			}

			ed := view.Editor()
			t := ed.Transform()
			_, _ = fmt.Fprintf(out, "\nFlowchart: %d node(s), %d connection(s)\n", len(ed.Nodes()), len(ed.Connections()))
			_, _ = fmt.Fprintf(out, "View: offset (%g,%g) scale %g\n", t.TranslateX, t.TranslateY, t.Scale)
			return nil
		},
	}

	cmd.Flags().BoolVar(&platform, "platform", false, "Fetch a platform checklist instead of a published one")

	return cmd
}

// rootQuestions returns the questions that are not a follow-up of another
// question. When every question is a follow-up, all are returned.
func rootQuestions(questions []checklist.Question) []checklist.Question {
	followUp := make(map[int]bool)
	for _, q := range questions {
		for _, ids := range q.FollowUpQuestions {
			for _, id := range ids {
				followUp[id] = true
			}
		}
	}

	roots := make([]checklist.Question, 0, len(questions))
	for _, q := range questions {
		if q.ID == 0 || !followUp[q.ID] {
			roots = append(roots, q)
		}
	}
	if len(roots) == 0 {
		return questions
	}
	return roots
}

func printQuestion(out io.Writer, view *checklist.View, q checklist.Question, depth int, seen map[int]bool) {
	indent := strings.Repeat("  ", depth)
	_, _ = fmt.Fprintf(out, "%s? %s\n", indent, q.Question)

	if q.ID != 0 {
		if seen[q.ID] {
			return
		}
		seen[q.ID] = true
		defer delete(seen, q.ID)
	}

	for i, option := range q.Options {
		_, _ = fmt.Fprintf(out, "%s  - %s\n", indent, option)
		for _, child := range view.ChildQuestions(q, i) {
			printQuestion(out, view, child, depth+2, seen)
		}
	}
}

func newChecklistFlowchartCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "flowchart <checklist-id>",
		Short: "Download a platform checklist's flowchart as PNG",
		Long: `Render a platform checklist's flowchart as a 2x PNG on a dark background.

The file is named after the checklist unless -o is given.

Examples:
  flowcanvas checklist flowchart 1
  flowcanvas checklist flowchart 1 -o hiring.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newChecklistClient()
			if err != nil {
				return err
			}

			detail := checklist.NewDetail(client, logger())
			if err := detail.Load(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to load checklist %s: %w", args[0], err)
			}

			filename, data, err := detail.DownloadPNG(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to render flowchart: %w", err)
			}
			if outputPath != "" {
				filename = outputPath
			} else {
				// The default name comes from the service, so keep it inside the working directory
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				if filename, err = validation.ValidateSecurePath(cwd, filename); err != nil {
					return fmt.Errorf("refusing to write download: %w", err)
				}
			}

			if err := writeOutput(filename, data, cmd.OutOrStdout()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Flowchart downloaded to: %s\n", filename)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: <name>_flowchart.png)")

	return cmd
}

func newChecklistSetFlowchartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-flowchart <checklist-id> <diagram-file>",
		Short: "Replace a platform checklist's flowchart",
		Long: `Replace the flowchart of a platform checklist with a diagram file.

The checklist's name, description and question texts are kept.

Examples:
  flowcanvas checklist set-flowchart 1 decision-flowchart.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, path := args[0], args[1]

			d, err := LoadDiagramFromFile(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			client, err := newChecklistClient()
			if err != nil {
				return err
			}

			form := checklist.NewForm(client, logger())
			if err := form.Load(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to load checklist %s: %w", id, err)
			}
			form.OnFlowChange(d.Nodes, d.Connections)

			if _, err := form.Submit(cmd.Context()); err != nil {
				return fmt.Errorf("failed to update checklist %s: %w", id, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Checklist %s updated with %d node(s), %d connection(s)\n",
				id, len(d.Nodes), len(d.Connections))
			return nil
		},
	}
}

func newChecklistCreateCommand() *cobra.Command {
	var (
		name        string
		description string
		questions   []string
	)

	cmd := &cobra.Command{
		Use:   "create <diagram-file>",
		Short: "Create a platform checklist from a flowchart",
		Long: `Create a platform checklist with a flowchart and optional questions.

Examples:
  flowcanvas checklist create flow.json --name "Hiring Decision Flow" \
    --question "Is the role budgeted?" --question "Is there a referral?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("checklist name is required (use --name flag)")
			}

			d, err := LoadDiagramFromFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			client, err := newChecklistClient()
			if err != nil {
				return err
			}

			form := checklist.NewForm(client, logger())
			form.Name = name
			form.Description = description
			if len(questions) > 0 {
				form.Questions = make([]checklist.Question, 0, len(questions))
				for _, text := range questions {
					form.Questions = append(form.Questions, checklist.Question{Question: text})
				}
			}
			form.OnFlowChange(d.Nodes, d.Connections)

			saved, err := form.Submit(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to create checklist: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Checklist %d created: %s\n", saved.ID, saved.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Checklist name (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Checklist description")
	cmd.Flags().StringArrayVarP(&questions, "question", "q", nil, "Question text (repeatable)")

	return cmd
}
