package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dshills/flowcanvas/pkg/render"
	"go.uber.org/zap"
)

// ErrExportInProgress is returned when a PNG export is requested while one is running
var ErrExportInProgress = errors.New("export already in progress")

var renderPNG = render.RenderPNG

// hideOverlays removes interaction decorations from the scene until the
// returned release func runs
func (e *Editor) hideOverlays() (release func()) {
	prev := e.overlaysOff
	e.overlaysOff = true
	return func() {
		e.overlaysOff = prev
	}
}

// CaptureScene builds the scene without selection, anchors or previews
func (e *Editor) CaptureScene() render.Scene {
	release := e.hideOverlays()
	defer release()
	return e.Scene()
}

// Exporting reports whether a PNG export is running
func (e *Editor) Exporting() bool {
	return e.exporting.Load()
}

// ExportPNG captures the diagram now and rasterizes it on a separate
// goroutine. The channel yields exactly one result and is then closed.
func (e *Editor) ExportPNG(ctx context.Context, opts render.PNGOptions) <-chan render.Result {
	out := make(chan render.Result, 1)
	if !e.exporting.CompareAndSwap(false, true) {
		out <- render.Result{Err: ErrExportInProgress}
		close(out)
		return out
	}

	scene := e.CaptureScene()
	logger := e.logger

	go func() {
		defer close(out)
		defer e.exporting.Store(false)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("PNG export panicked", zap.Any("panic", r))
				out <- render.Result{Err: fmt.Errorf("failed to render PNG: %v", r)}
			}
		}()

		if err := ctx.Err(); err != nil {
			out <- render.Result{Err: err}
			return
		}

		var buf bytes.Buffer
		if err := renderPNG(&buf, scene, opts); err != nil {
			logger.Error("PNG export failed", zap.Error(err))
			out <- render.Result{Err: fmt.Errorf("failed to render PNG: %w", err)}
			return
		}
		out <- render.Result{Data: buf.Bytes()}
	}()

	return out
}
