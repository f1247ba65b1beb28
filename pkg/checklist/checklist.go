// Package checklist hosts the flowchart editor inside checklist screens: the
// editable form, the read-only detail view with PNG download and the
// question view. Checklists come from a REST service that stores the
// diagram as an opaque JSON string.
package checklist

import (
	"regexp"
	"strconv"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"go.uber.org/zap"
)

// Checklist is a checklist record as served by the REST collaborator
type Checklist struct {
	ID          int        `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	// FlowchartJSON holds the serialized diagram. The field name is historical.
	FlowchartJSON string `json:"mermaid_code"`
}

// Question is one entry of a checklist's question tree
type Question struct {
	ID          int      `json:"id,omitempty"`
	Question    string   `json:"question"`
	Description string   `json:"description"`
	Options     []string `json:"options,omitempty"`
	// FollowUpQuestions maps an option index to the IDs of the questions it leads to
	FollowUpQuestions map[string][]int `json:"follow_up_questions,omitempty"`
}

// FollowUps returns the question IDs reached by choosing the option at index
func (q Question) FollowUps(optionIndex int) []int {
	if q.FollowUpQuestions == nil {
		return nil
	}
	return q.FollowUpQuestions[strconv.Itoa(optionIndex)]
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// PNGFilename returns the download name of a checklist's flowchart image
func PNGFilename(checklistName string) string {
	return whitespaceRun.ReplaceAllString(checklistName, "_") + "_flowchart.png"
}

// ParseFlowchart decodes the embedded diagram. A missing or malformed
// document yields an empty diagram; the failure is logged, not returned.
func ParseFlowchart(code string, logger *zap.Logger) diagram.Diagram {
	if code == "" {
		return diagram.New()
	}

	d, err := diagram.Unmarshal([]byte(code))
	if err != nil {
		if logger != nil {
			logger.Warn("failed to parse flow data", zap.Error(err))
		}
		return diagram.New()
	}
	return d
}

// EncodeFlowchart serializes a diagram for the mermaid_code field
func EncodeFlowchart(d diagram.Diagram) (string, error) {
	data, err := diagram.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
