package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/editor"
	"github.com/dshills/flowcanvas/pkg/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatPNG  = "png"
	FormatSVG  = "svg"
)

// clipboardWrite is replaced in tests
var clipboardWrite = clipboard.WriteAll

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var (
		outputPath  string
		format      string
		toClipboard bool
		dark        bool
		scale       float64
	)

	cmd := &cobra.Command{
		Use:   "export <diagram-file>",
		Short: "Export a flowchart as JSON, YAML, PNG or SVG",
		Long: `Export a flowchart document to another format.

Images are captured without selection highlights or anchor handles. PNG
exports use the configured pixel ratio (2x by default).

Examples:
  # Re-encode to canonical JSON on stdout
  flowcanvas export flow.yaml

  # Copy YAML to the clipboard
  flowcanvas export flow.json --format yaml --clipboard

  # Render a dark PNG at 2x
  flowcanvas export flow.json --format png --dark -o flow.png

  # Render SVG
  flowcanvas export flow.json --format svg -o flow.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)

			d, err := LoadDiagramFromFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case FormatJSON:
				data, err = diagram.Marshal(d)
			case FormatYAML:
				data, err = diagram.MarshalYAML(d)
			case FormatPNG:
				data, err = exportPNG(cmd, d, scale, dark)
			case FormatSVG:
				data, err = exportSVG(d, dark)
			default:
				return fmt.Errorf("unknown format %q (want json, yaml, png or svg)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to export diagram: %w", err)
			}

			if toClipboard {
				if format != FormatJSON && format != FormatYAML {
					return fmt.Errorf("--clipboard only supports json and yaml")
				}
				if err := clipboardWrite(string(data)); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Copied %s to clipboard\n", format)
				return nil
			}

			if err := writeOutput(outputPath, data, cmd.OutOrStdout()); err != nil {
				return err
			}
			if outputPath != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Flowchart exported successfully to: %s\n", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "Output format: json, yaml, png or svg")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "Copy json or yaml output to the clipboard")
	cmd.Flags().BoolVar(&dark, "dark", false, "Use the dark theme for images")
	cmd.Flags().Float64Var(&scale, "scale", 0, "PNG pixel ratio (default from config)")

	return cmd
}

// captureEditor loads a diagram into a read-only editor for rendering
func captureEditor(d diagram.Diagram) *editor.Editor {
	return editor.New(
		editor.WithInitial(d.Nodes, d.Connections),
		editor.WithReadOnly(true),
		editor.WithLogger(logger()),
	)
}

func imageTheme(dark bool) render.Theme {
	if dark {
		return render.DarkTheme()
	}
	theme := render.DefaultTheme()
	if bg := settings().Export.Background; bg != "" {
		theme.Background = bg
	}
	return theme
}

func exportPNG(cmd *cobra.Command, d diagram.Diagram, scale float64, dark bool) ([]byte, error) {
	if scale <= 0 {
		scale = settings().Export.Scale
	}

	results := captureEditor(d).ExportPNG(cmd.Context(), render.PNGOptions{
		PixelRatio: scale,
		Padding:    render.DefaultPadding,
		Theme:      imageTheme(dark),
	})
	res := <-results
	if res.Err != nil {
		logger().Error("PNG export failed", zap.Error(res.Err))
		return nil, res.Err
	}
	return res.Data, nil
}

func exportSVG(d diagram.Diagram, dark bool) ([]byte, error) {
	var buf bytes.Buffer
	err := render.RenderSVG(&buf, captureEditor(d).CaptureScene(), render.SVGOptions{
		Padding: render.DefaultPadding,
		Theme:   imageTheme(dark),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
