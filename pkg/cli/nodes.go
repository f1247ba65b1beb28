package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/spf13/cobra"
)

// NewNodesCommand creates the nodes listing command
func NewNodesCommand() *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:   "nodes <diagram-file>",
		Short: "List the nodes of a flowchart",
		Long: `List nodes, optionally filtered by an expression.

Filter variables: id, number, text, x, y, width, height, incoming, outgoing.

Examples:
  flowcanvas nodes flow.json
  # Leaf outcomes
  flowcanvas nodes flow.json --where 'outgoing == 0'
  # Questions mentioning budget
  flowcanvas nodes flow.json --where 'text contains "budget" && outgoing > 1'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := LoadDiagramFromFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			nodes := d.Nodes
			if where != "" {
				q, err := diagram.CompileQuery(where)
				if err != nil {
					return err
				}
				if nodes, err = q.Filter(d); err != nil {
					return err
				}
			}

			if len(nodes) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No matching nodes.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "#\tID\tPOSITION\tSIZE\tTEXT")
			_, _ = fmt.Fprintln(w, "─\t──\t────────\t────\t────")
			for _, n := range nodes {
				_, _ = fmt.Fprintf(w, "%d\t%s\t(%g,%g)\t%gx%g\t%s\n",
					n.NodeNumber, n.ID, n.X, n.Y, n.Width, n.Height, oneLine(n.Text))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "Filter expression, e.g. 'outgoing == 0'")

	return cmd
}

// oneLine flattens multi-line node text for tabular output
func oneLine(text string) string {
	return strings.ReplaceAll(text, "\n", " ⏎ ")
}
