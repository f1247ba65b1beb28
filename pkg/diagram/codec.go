package diagram

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ParseError reports a malformed diagram document. Callers keep their
// previous state when they receive one.
type ParseError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid diagram: %s: %v", e.Reason, e.Err)
	}
	return "invalid diagram: " + e.Reason
}

// Unwrap returns the underlying decode error, if any
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// MarshalJSON emits empty arrays instead of null for missing slices
func (d Diagram) MarshalJSON() ([]byte, error) {
	type Alias Diagram
	out := Alias(d)
	if out.Nodes == nil {
		out.Nodes = make([]Node, 0)
	}
	if out.Connections == nil {
		out.Connections = make([]Connection, 0)
	}
	return json.Marshal(out)
}

// Marshal serializes a diagram to indented JSON
func Marshal(d Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagram: %w", err)
	}
	return data, nil
}

// Unmarshal parses a diagram document. The top-level nodes field must be an
// array; a missing connections field decodes as empty.
func Unmarshal(data []byte) (Diagram, error) {
	if !gjson.ValidBytes(data) {
		return Diagram{}, &ParseError{Reason: "malformed JSON"}
	}
	if !gjson.GetBytes(data, "nodes").IsArray() {
		return Diagram{}, &ParseError{Reason: "missing nodes array"}
	}

	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, &ParseError{Reason: "decode failed", Err: err}
	}
	normalize(&d)
	return d, nil
}

// MarshalYAML serializes a diagram to YAML
func MarshalYAML(d Diagram) ([]byte, error) {
	normalize(&d)
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagram to YAML: %w", err)
	}
	return data, nil
}

// UnmarshalYAML parses a YAML diagram document
func UnmarshalYAML(data []byte) (Diagram, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Diagram{}, &ParseError{Reason: "malformed YAML", Err: err}
	}
	if _, ok := raw["nodes"].([]interface{}); !ok {
		return Diagram{}, &ParseError{Reason: "missing nodes array"}
	}

	var d Diagram
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Diagram{}, &ParseError{Reason: "decode failed", Err: err}
	}
	normalize(&d)
	return d, nil
}

func normalize(d *Diagram) {
	if d.Nodes == nil {
		d.Nodes = make([]Node, 0)
	}
	if d.Connections == nil {
		d.Connections = make([]Connection, 0)
	}
}
