package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against a fresh configuration directory
// set by the caller with FLOWCANVAS_CONFIG_DIR
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	GlobalConfig = &Config{}
	cmd := NewRootCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// useConfigDir points the CLI at a temporary configuration directory
func useConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)
	return dir
}

func sampleDiagram() diagram.Diagram {
	start := diagram.NewNode(1, geom.Pt(0, 0))
	start.Text = "Start"
	done := diagram.NewNode(2, geom.Pt(300, 0))
	done.Text = "Done?"
	return diagram.FromParts([]diagram.Node{start, done}, []diagram.Connection{{
		ID:   "conn-1",
		From: diagram.Endpoint{NodeID: "node-1", AnchorPosition: diagram.AnchorRight},
		To:   diagram.Endpoint{NodeID: "node-2", AnchorPosition: diagram.AnchorLeft},
	}})
}

func writeDiagram(t *testing.T, dir, name string, d diagram.Diagram) string {
	t.Helper()
	var (
		data []byte
		err  error
	)
	if isYAMLPath(name) {
		data, err = diagram.MarshalYAML(d)
	} else {
		data, err = diagram.Marshal(d)
	}
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeRaw(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFirstRunWritesDefaultConfig(t *testing.T) {
	dir := useConfigDir(t)
	path := writeDiagram(t, t.TempDir(), "flow.json", sampleDiagram())

	_, err := runCLI(t, "", "validate", path)
	require.NoError(t, err)

	config, err := LoadFileConfig(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFileConfig(), config)
	assert.Equal(t, geom.Size{Width: 800, Height: 600}, config.ViewSize())
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		content   string
		wantStore string
		wantErr   string
	}{
		{name: "sqlite store", content: "store: sqlite\n", wantStore: StoreSQLite},
		{name: "missing store falls back to files", content: "store: \"\"\n", wantStore: StoreFile},
		{name: "unknown store", content: "store: redis\n", wantErr: "unknown store"},
		{name: "malformed yaml", content: "store: [\n", wantErr: "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRaw(t, dir, "config.yaml", tt.content)
			config, err := LoadFileConfig(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStore, config.Store)
			assert.Equal(t, DefaultFileConfig().APIBaseURL, config.APIBaseURL)
		})
	}
}

func TestValidateCommand(t *testing.T) {
	useConfigDir(t)
	dir := t.TempDir()

	selfLoop := sampleDiagram()
	selfLoop.Connections[0].To.NodeID = "node-1"

	tests := []struct {
		name       string
		path       string
		args       []string
		wantErr    bool
		wantOutput []string
	}{
		{
			name:       "valid json",
			path:       writeDiagram(t, dir, "flow.json", sampleDiagram()),
			wantOutput: []string{"✓ Diagram validation passed", "2 node(s), 1 connection(s)", "✓ All connections routed clear of nodes"},
		},
		{
			name:       "valid yaml",
			path:       writeDiagram(t, dir, "flow.yaml", sampleDiagram()),
			wantOutput: []string{"✓ Schema valid", "✓ Diagram validation passed"},
		},
		{
			name:       "malformed json",
			path:       writeRaw(t, dir, "broken.json", "{nodes"),
			args:       []string{"-v"},
			wantErr:    true,
			wantOutput: []string{"✗ Failed to parse diagram", "malformed JSON"},
		},
		{
			name:       "schema violation",
			path:       writeRaw(t, dir, "zero.json", `{"nodes":[{"id":"node-1","x":0,"y":0,"width":0,"height":60,"text":"","nodeNumber":1}]}`),
			wantErr:    true,
			wantOutput: []string{"✗ Schema validation failed"},
		},
		{
			name:       "self-loop",
			path:       writeDiagram(t, dir, "loop.json", selfLoop),
			args:       []string{"--verbose"},
			wantErr:    true,
			wantOutput: []string{"✗ Diagram structure invalid", "self-loop"},
		},
		{
			name:       "missing file",
			path:       filepath.Join(dir, "nope.json"),
			wantErr:    true,
			wantOutput: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", append([]string{"validate", tt.path}, tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			for _, want := range tt.wantOutput {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestValidateFromStdin(t *testing.T) {
	useConfigDir(t)
	data, err := diagram.Marshal(sampleDiagram())
	require.NoError(t, err)

	out, err := runCLI(t, string(data), "validate", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Diagram validation passed")
}

func TestValidateWarnsOnCrossingRoute(t *testing.T) {
	useConfigDir(t)

	// node-3 sits right on top of node-1's right anchor, so no detour is clear
	d := sampleDiagram()
	blocker := diagram.NewNode(3, geom.Pt(180, -200))
	blocker.Height = 500
	blocker.Width = 100
	d.Nodes = append(d.Nodes, blocker)
	path := writeDiagram(t, t.TempDir(), "blocked.json", d)

	out, err := runCLI(t, "", "validate", path, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection conn-1 crosses a node")
	assert.Contains(t, out, "⚠ 1 connection(s) could not be routed around nodes")
}

func TestExportCommand(t *testing.T) {
	useConfigDir(t)
	dir := t.TempDir()
	path := writeDiagram(t, dir, "flow.json", sampleDiagram())

	t.Run("json to file", func(t *testing.T) {
		target := filepath.Join(dir, "out.json")
		out, err := runCLI(t, "", "export", path, "-o", target)
		require.NoError(t, err)
		assert.Contains(t, out, "✓ Flowchart exported successfully to: "+target)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		d, err := diagram.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, sampleDiagram(), d)
	})

	t.Run("yaml to stdout", func(t *testing.T) {
		out, err := runCLI(t, "", "export", path, "--format", "YAML")
		require.NoError(t, err)
		d, err := diagram.UnmarshalYAML([]byte(out))
		require.NoError(t, err)
		assert.Len(t, d.Nodes, 2)
	})

	t.Run("png uses configured scale", func(t *testing.T) {
		target := filepath.Join(dir, "out.png")
		_, err := runCLI(t, "", "export", path, "-f", "png", "-o", target)
		require.NoError(t, err)

		f, err := os.Open(target)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		cfg, err := png.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, 1080, cfg.Width)
		assert.Equal(t, 200, cfg.Height)
	})

	t.Run("png with explicit scale", func(t *testing.T) {
		out, err := runCLI(t, "", "export", path, "-f", "png", "--scale", "1", "--dark")
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(strings.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 540, cfg.Width)
		assert.Equal(t, 100, cfg.Height)
	})

	t.Run("svg", func(t *testing.T) {
		out, err := runCLI(t, "", "export", path, "-f", "svg")
		require.NoError(t, err)
		assert.Contains(t, out, "<svg")
		assert.Contains(t, out, "Start")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runCLI(t, "", "export", path, "-f", "pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})
}

func TestExportToClipboard(t *testing.T) {
	useConfigDir(t)
	path := writeDiagram(t, t.TempDir(), "flow.json", sampleDiagram())

	var copied string
	orig := clipboardWrite
	clipboardWrite = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { clipboardWrite = orig })

	out, err := runCLI(t, "", "export", path, "--clipboard")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Copied json to clipboard")
	assert.Contains(t, copied, `"nodeNumber": 1`)

	_, err = runCLI(t, "", "export", path, "-f", "png", "--clipboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--clipboard only supports json and yaml")
}

func TestNodesCommand(t *testing.T) {
	useConfigDir(t)
	path := writeDiagram(t, t.TempDir(), "flow.json", sampleDiagram())

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		wantErr bool
	}{
		{name: "all nodes", want: []string{"node-1", "node-2", "(300,0)", "200x60"}},
		{name: "leaves", args: []string{"--where", "outgoing == 0"}, want: []string{"node-2", "Done?"}, notWant: []string{"node-1"}},
		{name: "by text", args: []string{"--where", `text contains "Sta"`}, want: []string{"Start"}, notWant: []string{"node-2"}},
		{name: "no match", args: []string{"--where", "number > 10"}, want: []string{"No matching nodes."}},
		{name: "bad expression", args: []string{"--where", "number +"}, wantErr: true},
		{name: "non-boolean expression", args: []string{"--where", "number"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", append([]string{"nodes", path}, tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestNodesFlattensMultilineText(t *testing.T) {
	assert.Equal(t, "Yes ⏎ No", oneLine("Yes\nNo"))
}

func TestRouteCommand(t *testing.T) {
	useConfigDir(t)
	dir := t.TempDir()

	out, err := runCLI(t, "", "route", writeDiagram(t, dir, "flow.json", sampleDiagram()))
	require.NoError(t, err)
	assert.Contains(t, out, "conn-1")
	assert.Contains(t, out, "node-1.right")
	assert.Contains(t, out, "node-2.left")
	assert.Contains(t, out, "100.0")
	assert.Contains(t, out, "clear")
	assert.Contains(t, out, "(200,30) → (300,30)")

	empty := diagram.FromParts(sampleDiagram().Nodes, nil)
	out, err = runCLI(t, "", "route", writeDiagram(t, dir, "empty.json", empty))
	require.NoError(t, err)
	assert.Contains(t, out, "No connections.")
}
