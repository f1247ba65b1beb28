package editor

import (
	"errors"
	"testing"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/dshills/flowcanvas/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation
type brokenStore struct{}

func (brokenStore) Get(string) ([]byte, error) { return nil, errors.New("disk unavailable") }
func (brokenStore) Set(string, []byte) error    { return errors.New("disk unavailable") }
func (brokenStore) Remove(string) error         { return errors.New("disk unavailable") }

func TestSaveAndLoadLocal(t *testing.T) {
	nodes, conns := twoNodes()
	store := storage.NewMemoryStore()
	e, _ := newTestEditor(t, WithInitial(nodes, conns), WithStore(store))
	saved := e.Diagram()

	require.NoError(t, e.SaveLocal())
	data, err := store.Get(LocalStorageKey)
	require.NoError(t, err)
	onDisk, err := diagram.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, saved, onDisk)

	require.True(t, e.DeleteNode("node-2"))
	require.True(t, e.CanUndo())
	require.True(t, e.SelectNode("node-1"))

	require.NoError(t, e.LoadLocal())
	assert.Equal(t, saved, e.Diagram())
	assert.Empty(t, e.SelectedNodeID())
	assert.False(t, e.CanUndo(), "loading discards undo history")
	assert.Equal(t, 3, e.NextNodeNumber())

	note := e.Notification()
	require.NotNil(t, note)
	assert.Equal(t, LevelSuccess, note.Level)
	assert.Equal(t, "Flowchart loaded", note.Message)
}

func TestLoadLocalWithoutSave(t *testing.T) {
	nodes, _ := twoNodes()
	e, _ := newTestEditor(t, WithInitial(nodes, nil))

	require.NoError(t, e.LoadLocal())
	assert.Len(t, e.Nodes(), 2)

	note := e.Notification()
	require.NotNil(t, note)
	assert.Equal(t, LevelInfo, note.Level)
	assert.Equal(t, "No saved flowchart found", note.Message)
}

func TestLoadLocalCorrupt(t *testing.T) {
	nodes, _ := twoNodes()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(LocalStorageKey, []byte(`{"nodes":`)))
	e, _ := newTestEditor(t, WithInitial(nodes, nil), WithStore(store))

	err := e.LoadLocal()
	require.Error(t, err)
	assert.True(t, diagram.IsParseError(err))
	assert.Len(t, e.Nodes(), 2)
	assert.Equal(t, LevelError, e.Notification().Level)
}

func TestStoreFailures(t *testing.T) {
	e, _ := newTestEditor(t, WithStore(brokenStore{}))

	err := e.SaveLocal()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk unavailable")
	assert.Equal(t, "Save failed: disk unavailable", e.Notification().Message)

	require.Error(t, e.LoadLocal())
	assert.Equal(t, LevelError, e.Notification().Level)

	// Reset still clears the canvas when the local copy cannot be removed
	assert.True(t, e.ResetAll())
	assert.Equal(t, "Canvas reset", e.Notification().Message)
}

func TestImportFile(t *testing.T) {
	store := storage.NewMemoryStore()
	e, _ := newTestEditor(t, WithStore(store))

	doc := []byte(`{
		"nodes": [
			{"id": "node-5", "x": 10, "y": 20, "width": 200, "height": 60, "text": "Start", "nodeNumber": 5},
			{"id": "node-2", "x": 300, "y": 20, "width": 200, "height": 60, "text": "End", "nodeNumber": 2}
		],
		"connections": [
			{"id": "conn-1", "from": {"nodeId": "node-5", "anchorPosition": "right"}, "to": {"nodeId": "node-2", "anchorPosition": "left"}}
		]
	}`)

	require.NoError(t, e.ImportFile(doc))
	assert.Len(t, e.Nodes(), 2)
	assert.Len(t, e.Connections(), 1)
	assert.Equal(t, 6, e.NextNodeNumber())
	assert.Equal(t, "Flowchart imported", e.Notification().Message)

	// The local copy is refreshed with the imported diagram
	data, err := store.Get(LocalStorageKey)
	require.NoError(t, err)
	stored, err := diagram.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, e.Diagram(), stored)

	e.SetTool(ToolText)
	n, ok := e.CreateNode(geom.Pt(0, 200))
	require.True(t, ok)
	assert.Equal(t, 6, n.NodeNumber)
}

func TestImportFileWithoutConnections(t *testing.T) {
	e, _ := newTestEditor(t)

	require.NoError(t, e.ImportFile([]byte(`{"nodes":[{"id":"node-1","x":0,"y":0,"width":200,"height":60,"text":"A","nodeNumber":1}]}`)))
	assert.Len(t, e.Nodes(), 1)
	assert.NotNil(t, e.Connections())
	assert.Empty(t, e.Connections())
}

func TestImportFileRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"nodes": [`},
		{"not an object", `[1, 2, 3]`},
		{"nodes missing", `{"connections": []}`},
		{"nodes not an array", `{"nodes": {"id": "node-1"}}`},
		{"wrong field type", `{"nodes": [{"id": 7}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, conns := twoNodes()
			e, _ := newTestEditor(t, WithInitial(nodes, conns))
			before := e.Diagram()

			err := e.ImportFile([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, diagram.IsParseError(err))
			assert.Equal(t, before, e.Diagram())

			note := e.Notification()
			require.NotNil(t, note)
			assert.Equal(t, LevelError, note.Level)
			assert.Contains(t, note.Message, "Import failed")
		})
	}
}

func TestExportMatchesSerialize(t *testing.T) {
	nodes, conns := twoNodes()
	e, _ := newTestEditor(t, WithInitial(nodes, conns))

	name, data, err := e.ExportFile()
	require.NoError(t, err)
	assert.Equal(t, ExportFilename, name)

	serialized, err := e.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, string(serialized), string(data))
	assert.Contains(t, string(data), `"nodeNumber": 1`)
	assert.Contains(t, string(data), `"anchorPosition": "right"`)
}

func TestResetAll(t *testing.T) {
	nodes, conns := twoNodes()
	store := storage.NewMemoryStore()
	confirm := &recordingConfirmer{answer: false}
	e, _ := newTestEditor(t, WithInitial(nodes, conns), WithStore(store), WithConfirmer(confirm))
	require.NoError(t, e.SaveLocal())

	assert.False(t, e.ResetAll())
	assert.Equal(t, []string{"Reset the canvas? All unsaved data will be lost."}, confirm.prompts)
	assert.Len(t, e.Nodes(), 2)

	confirm.answer = true
	require.True(t, e.ResetAll())
	assert.Empty(t, e.Nodes())
	assert.Empty(t, e.Connections())
	assert.Equal(t, 1, e.NextNodeNumber())

	_, err := store.Get(LocalStorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPersistenceAllowedReadOnly(t *testing.T) {
	nodes, conns := twoNodes()
	store := storage.NewMemoryStore()
	e, _ := newTestEditor(t, WithInitial(nodes, conns), WithStore(store), WithReadOnly(true))

	require.NoError(t, e.SaveLocal())
	_, data, err := e.ExportFile()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Loading into a read-only canvas is ignored
	require.NoError(t, store.Set(LocalStorageKey, []byte(`{"nodes":[]}`)))
	require.NoError(t, e.LoadLocal())
	assert.Len(t, e.Nodes(), 2)
}
