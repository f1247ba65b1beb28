package checklist

import (
	"context"
	"errors"

	"github.com/dshills/flowcanvas/pkg/editor"
	"github.com/dshills/flowcanvas/pkg/render"
	"go.uber.org/zap"
)

// ErrNotLoaded is returned by hosts used before Load succeeded
var ErrNotLoaded = errors.New("checklist not loaded")

// Detail shows a platform checklist's flowchart read-only and offers a PNG download
type Detail struct {
	notices
	repo   Repository
	logger *zap.Logger

	checklist *Checklist
	editor    *editor.Editor
}

// NewDetail creates a detail view
func NewDetail(repo Repository, logger *zap.Logger) *Detail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detail{notices: newNotices(), repo: repo, logger: logger}
}

// Load fetches the checklist and builds the read-only editor
func (d *Detail) Load(ctx context.Context, id string, opts ...editor.Option) error {
	c, err := d.repo.GetPlatformChecklist(ctx, id)
	if err != nil {
		d.logger.Error("error fetching checklist", zap.String("id", id), zap.Error(err))
		d.publish(editor.LevelError, "Failed to load checklist")
		return err
	}

	flow := ParseFlowchart(c.FlowchartJSON, d.logger)
	base := []editor.Option{
		editor.WithInitial(flow.Nodes, flow.Connections),
		editor.WithLogger(d.logger),
	}
	d.checklist = c
	d.editor = editor.New(append(base, append(opts, editor.WithReadOnly(true))...)...)
	return nil
}

// Checklist returns the loaded record, or nil
func (d *Detail) Checklist() *Checklist { return d.checklist }

// Editor returns the read-only editor, or nil before Load
func (d *Detail) Editor() *editor.Editor { return d.editor }

// DownloadPNG renders the flowchart at 2x on the dark background. It blocks
// until the export finishes or ctx is done.
func (d *Detail) DownloadPNG(ctx context.Context) (string, []byte, error) {
	if d.editor == nil {
		return "", nil, ErrNotLoaded
	}

	results := d.editor.ExportPNG(ctx, render.PNGOptions{
		PixelRatio: render.DefaultPixelRatio,
		Padding:    render.DefaultPadding,
		Theme:      render.DarkTheme(),
		Background: render.DarkBackground,
	})

	select {
	case res := <-results:
		if res.Err != nil {
			d.logger.Error("error generating flowchart image", zap.Error(res.Err))
			d.publish(editor.LevelError, "Failed to generate flowchart image")
			return "", nil, res.Err
		}
		return PNGFilename(d.checklist.Name), res.Data, nil
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}
