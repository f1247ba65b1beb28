package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/flowcanvas/pkg/diagram"
)

// readInput reads a file, or stdin when path is "-"
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("diagram file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read diagram file: %w", err)
	}
	return data, nil
}

// isYAMLPath reports whether a path names a YAML document
func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// decodeDiagram parses JSON, or YAML when path has a YAML extension
func decodeDiagram(path string, data []byte) (diagram.Diagram, error) {
	if isYAMLPath(path) {
		return diagram.UnmarshalYAML(data)
	}
	return diagram.Unmarshal(data)
}

// LoadDiagramFromFile loads a diagram from a JSON or YAML file ("-" reads JSON from stdin)
func LoadDiagramFromFile(path string, stdin io.Reader) (diagram.Diagram, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return diagram.Diagram{}, err
	}

	d, err := decodeDiagram(path, data)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("failed to load diagram: %w", err)
	}
	return d, nil
}

// writeOutput writes data to path, or to w when path is empty
func writeOutput(path string, data []byte, w io.Writer) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
