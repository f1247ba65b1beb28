package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dshills/flowcanvas/pkg/render"
	"github.com/dshills/goterm"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Keys understood by the preview
const (
	keyCtrlC  = 3
	keyEscape = 27
)

// NewShowCommand creates the terminal preview command
func NewShowCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "show <diagram-file>",
		Short: "Preview a flowchart in the terminal",
		Long: `Draw a flowchart with box-drawing characters.

Keys:
  r       redraw
  q, Esc  quit

With --watch the preview is redrawn whenever the file changes.

Examples:
  flowcanvas show decision-flowchart.json
  flowcanvas show flow.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if path == "-" {
				return fmt.Errorf("show needs a file; stdin is used for keyboard input")
			}

			// Fail before taking over the terminal
			if _, err := LoadDiagramFromFile(path, nil); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var (
				changes <-chan fsnotify.Event
				errs    <-chan error
			)
			if watch {
				watcher, err := fsnotify.NewWatcher()
				if err != nil {
					return fmt.Errorf("failed to start file watcher: %w", err)
				}
				defer func() { _ = watcher.Close() }()

				// Editors often replace the file, so the directory is watched
				if err := watcher.Add(filepath.Dir(path)); err != nil {
					return fmt.Errorf("failed to watch %s: %w", path, err)
				}
				changes, errs = watcher.Events, watcher.Errors
			}

			screen, err := goterm.Init()
			if err != nil {
				return fmt.Errorf("failed to initialize terminal: %w", err)
			}
			defer func() { _ = screen.Close() }()

			p := &preview{path: path, screen: screen, watching: watch, logger: logger()}
			p.redraw()
			return p.run(ctx, readKeys(ctx, os.Stdin), changes, errs)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Redraw when the file changes")

	return cmd
}

// preview draws one diagram file onto a screen
type preview struct {
	path     string
	screen   render.Screen
	watching bool
	logger   *zap.Logger
}

// draw renders the file and a status line. Load errors are shown on screen
// and returned.
func (p *preview) draw() error {
	_, height := p.screen.Size()
	fg, bg := goterm.ColorDefault(), goterm.ColorDefault()

	d, err := LoadDiagramFromFile(p.path, nil)
	if err != nil {
		p.screen.Clear()
		p.screen.DrawText(0, 0, err.Error(), fg, bg, goterm.StyleBold)
		p.status(height, "error")
		if showErr := p.screen.Show(); showErr != nil {
			return showErr
		}
		return err
	}

	if err := render.NewTerminalRenderer(p.screen).Render(captureEditor(d).CaptureScene()); err != nil {
		return err
	}
	p.status(height, fmt.Sprintf("%d node(s), %d connection(s)", len(d.Nodes), len(d.Connections)))
	return p.screen.Show()
}

func (p *preview) status(height int, detail string) {
	line := fmt.Sprintf("%s | %s | r: redraw  q: quit", filepath.Base(p.path), detail)
	if p.watching {
		line += "  (watching)"
	}
	p.screen.DrawText(0, height-1, line, goterm.ColorDefault(), goterm.ColorDefault(), goterm.StyleDim)
}

func (p *preview) redraw() {
	if err := p.draw(); err != nil {
		p.logger.Debug("preview draw failed", zap.String("path", p.path), zap.Error(err))
	}
}

// run handles keys and file changes until the user quits or ctx ends
func (p *preview) run(ctx context.Context, keys <-chan []byte, changes <-chan fsnotify.Event, errs <-chan error) error {
	target := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case input, ok := <-keys:
			if !ok {
				return nil
			}
			// A lone escape is the Esc key; longer sequences are arrows and the like
			if len(input) == 1 && input[0] == keyEscape {
				return nil
			}
			switch input[0] {
			case 'q', 'Q', keyCtrlC:
				return nil
			case 'r', 'R':
				p.redraw()
			}

		case ev, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				p.redraw()
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			p.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// readKeys forwards each non-empty read from r until ctx ends or r is exhausted
func readKeys(ctx context.Context, r io.Reader) <-chan []byte {
	keys := make(chan []byte)

	go func() {
		defer close(keys)
		buf := make([]byte, 32)
		for {
			// Blocking read; the terminal is already in raw mode from goterm
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case keys <- append([]byte(nil), buf[:n]...):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	return keys
}
