package diagram

import (
	"fmt"
	"strconv"
)

// Anchor names one of the four fixed attachment points on a node's bounding box
type Anchor string

const (
	// AnchorTop is the midpoint of the top edge
	AnchorTop Anchor = "top"
	// AnchorRight is the midpoint of the right edge
	AnchorRight Anchor = "right"
	// AnchorBottom is the midpoint of the bottom edge
	AnchorBottom Anchor = "bottom"
	// AnchorLeft is the midpoint of the left edge
	AnchorLeft Anchor = "left"
)

// Anchors lists every anchor in hit-test order
var Anchors = []Anchor{AnchorTop, AnchorRight, AnchorBottom, AnchorLeft}

// Valid reports whether a is one of the four known anchors
func (a Anchor) Valid() bool {
	switch a {
	case AnchorTop, AnchorRight, AnchorBottom, AnchorLeft:
		return true
	}
	return false
}

// ParseAnchor converts a string to an Anchor
func ParseAnchor(s string) (Anchor, error) {
	a := Anchor(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown anchor position: %q", s)
	}
	return a, nil
}

// Node defaults applied when a node is created from a pointer action
const (
	DefaultNodeWidth  = 200
	DefaultNodeHeight = 60
	DefaultNodeText   = "Double-click to edit"
)

// NodeIDFor returns the stable node ID for a node number
func NodeIDFor(nodeNumber int) string {
	return "node-" + strconv.Itoa(nodeNumber)
}

// ConnectionIDFor returns the connection ID for a creation timestamp in milliseconds
func ConnectionIDFor(unixMillis int64) string {
	return "conn-" + strconv.FormatInt(unixMillis, 10)
}
