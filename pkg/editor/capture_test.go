package editor

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"testing"

	"github.com/dshills/flowcanvas/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ch <-chan render.Result) []render.Result {
	var results []render.Result
	for r := range ch {
		results = append(results, r)
	}
	return results
}

func TestExportPNG(t *testing.T) {
	nodes, conns := twoNodes()
	e, _ := newTestEditor(t, WithInitial(nodes, conns))
	require.True(t, e.SelectNode("node-1"))
	e.SetTool(ToolArrow)

	results := collect(e.ExportPNG(context.Background(), render.PNGOptions{
		PixelRatio: 1,
		Padding:    20,
		Background: render.DarkBackground,
	}))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.True(t, bytes.HasPrefix(results[0].Data, []byte("\x89PNG\r\n\x1a\n")))

	img, err := png.Decode(bytes.NewReader(results[0].Data))
	require.NoError(t, err)
	// Nodes span (50,50)-(600,110), padded by 20
	assert.Equal(t, 590, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	assert.False(t, e.Exporting())

	// Overlays are back after the capture
	scene := e.Scene()
	assert.True(t, scene.Nodes[0].Selected)
	assert.Len(t, scene.Anchors, 8)
}

func TestExportPNGCancelled(t *testing.T) {
	nodes, _ := twoNodes()
	e, _ := newTestEditor(t, WithInitial(nodes, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := collect(e.ExportPNG(ctx, render.PNGOptions{}))
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.Nil(t, results[0].Data)
	assert.False(t, e.Exporting())
}

func TestExportPNGFarAwayNodeFailsCleanly(t *testing.T) {
	e, _ := newTestEditor(t)
	require.NoError(t, e.ImportFile([]byte(`{
		"nodes": [
			{"id": "node-1", "x": 0, "y": 0, "width": 200, "height": 60, "text": "Start", "nodeNumber": 1},
			{"id": "node-2", "x": 1e17, "y": 0, "width": 200, "height": 60, "text": "Far", "nodeNumber": 2}
		],
		"connections": []
	}`)))

	results := collect(e.ExportPNG(context.Background(), render.PNGOptions{}))
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, render.ErrImageTooLarge)
	assert.Nil(t, results[0].Data)
	assert.False(t, e.Exporting())
}

func TestExportPNGRecoversFromRendererPanic(t *testing.T) {
	orig := renderPNG
	renderPNG = func(io.Writer, render.Scene, render.PNGOptions) error {
		panic("rasterizer exploded")
	}
	t.Cleanup(func() { renderPNG = orig })

	nodes, _ := twoNodes()
	e, _ := newTestEditor(t, WithInitial(nodes, nil))

	results := collect(e.ExportPNG(context.Background(), render.PNGOptions{}))
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "rasterizer exploded")
	assert.False(t, e.Exporting())
}

func TestExportPNGWhileExporting(t *testing.T) {
	e, _ := newTestEditor(t)
	e.exporting.Store(true)

	results := collect(e.ExportPNG(context.Background(), render.PNGOptions{}))
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrExportInProgress)
	assert.True(t, e.Exporting(), "a rejected export leaves the running one alone")
}

func TestCaptureSceneKeepsDraftOut(t *testing.T) {
	nodes, _ := twoNodes()
	e, _ := newTestEditor(t, WithInitial(nodes, nil))
	require.True(t, e.StartEditing("node-1"))
	e.SetDraft("unsaved")

	capture := e.CaptureScene()
	assert.NotEqual(t, "unsaved", capture.Nodes[0].Text)
	assert.False(t, capture.Nodes[0].Editing)
	assert.Equal(t, "unsaved", e.Scene().Nodes[0].Text)
}
