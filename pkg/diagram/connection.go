package diagram

import (
	"errors"
	"fmt"
)

// Endpoint identifies an anchor on a specific node
type Endpoint struct {
	NodeID         string `json:"nodeId" yaml:"nodeId" validate:"required"`
	AnchorPosition Anchor `json:"anchorPosition" yaml:"anchorPosition" validate:"oneof=top right bottom left"`
}

// Connection represents a directed edge between two anchors
type Connection struct {
	ID   string   `json:"id" yaml:"id" validate:"required"`
	From Endpoint `json:"from" yaml:"from"`
	To   Endpoint `json:"to" yaml:"to"`
}

// Validate checks if the connection is structurally valid
func (c Connection) Validate() error {
	if c.ID == "" {
		return errors.New("connection: empty connection ID")
	}
	if c.From.NodeID == "" {
		return errors.New("connection: empty from node")
	}
	if c.To.NodeID == "" {
		return errors.New("connection: empty to node")
	}
	if c.From.NodeID == c.To.NodeID {
		return fmt.Errorf("connection: self-loop detected (node %s to itself)", c.From.NodeID)
	}
	return nil
}

// Touches reports whether the connection references the node
func (c Connection) Touches(nodeID string) bool {
	return c.From.NodeID == nodeID || c.To.NodeID == nodeID
}
