package diagram

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// NodeEnv is the environment a node query expression is evaluated against
type NodeEnv struct {
	ID     string  `expr:"id"`
	Number int     `expr:"number"`
	Text   string  `expr:"text"`
	X      float64 `expr:"x"`
	Y      float64 `expr:"y"`
	Width  float64 `expr:"width"`
	Height float64 `expr:"height"`
	In     int     `expr:"incoming"`
	Out    int     `expr:"outgoing"`
}

// Query is a compiled boolean node filter, e.g. `outgoing == 0 && text contains "Yes"`
type Query struct {
	source  string
	program *vm.Program
}

// CompileQuery compiles a node filter expression
func CompileQuery(source string) (*Query, error) {
	program, err := expr.Compile(source, expr.Env(NodeEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid node query %q: %w", source, err)
	}
	return &Query{source: source, program: program}, nil
}

// String returns the query source
func (q *Query) String() string {
	return q.source
}

// Filter returns the nodes matching the query, in diagram order
func (q *Query) Filter(d Diagram) ([]Node, error) {
	in := make(map[string]int, len(d.Nodes))
	out := make(map[string]int, len(d.Nodes))
	for _, c := range d.Connections {
		out[c.From.NodeID]++
		in[c.To.NodeID]++
	}

	matches := make([]Node, 0)
	for _, n := range d.Nodes {
		env := NodeEnv{
			ID:     n.ID,
			Number: n.NodeNumber,
			Text:   n.Text,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
			In:     in[n.ID],
			Out:    out[n.ID],
		}
		result, err := expr.Run(q.program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluating query on %s: %w", n.ID, err)
		}
		if ok, _ := result.(bool); ok {
			matches = append(matches, n)
		}
	}
	return matches, nil
}
