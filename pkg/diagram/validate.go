package diagram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidationError collects every problem found in a diagram
type ValidationError struct {
	Problems []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("diagram has %d problem(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks field rules and referential integrity: unique node IDs and
// numbers, connections referencing existing nodes and no self-loops.
func Validate(d Diagram) error {
	problems := make([]string, 0)

	if err := structValidator.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	nodeIDs := make(map[string]bool, len(d.Nodes))
	numbers := make(map[int]string, len(d.Nodes))
	for _, n := range d.Nodes {
		if nodeIDs[n.ID] {
			problems = append(problems, fmt.Sprintf("duplicate node ID %s", n.ID))
		}
		nodeIDs[n.ID] = true
		if other, exists := numbers[n.NodeNumber]; exists && n.NodeNumber != 0 {
			problems = append(problems, fmt.Sprintf("node number %d used by %s and %s", n.NodeNumber, other, n.ID))
		}
		numbers[n.NodeNumber] = n.ID
	}

	connIDs := make(map[string]bool, len(d.Connections))
	for _, c := range d.Connections {
		if connIDs[c.ID] {
			problems = append(problems, fmt.Sprintf("duplicate connection ID %s", c.ID))
		}
		connIDs[c.ID] = true
		if err := c.Validate(); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if !nodeIDs[c.From.NodeID] {
			problems = append(problems, fmt.Sprintf("connection %s references missing node %s", c.ID, c.From.NodeID))
		}
		if !nodeIDs[c.To.NodeID] {
			problems = append(problems, fmt.Sprintf("connection %s references missing node %s", c.ID, c.To.NodeID))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
