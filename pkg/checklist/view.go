package checklist

import (
	"context"

	"github.com/dshills/flowcanvas/pkg/editor"
	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/dshills/flowcanvas/pkg/viewport"
	"go.uber.org/zap"
)

// DefaultViewSize is the viewport assumed when the host does not report one
var DefaultViewSize = geom.Size{Width: 800, Height: 600}

// View shows a checklist's question tree next to its read-only flowchart
type View struct {
	notices
	repo   Repository
	logger *zap.Logger
	size   geom.Size

	checklist *Checklist
	editor    *editor.Editor
	expanded  map[int]bool
}

// NewView creates a question view for a viewport of the given size
func NewView(repo Repository, size geom.Size, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultViewSize
	}
	return &View{
		notices:  newNotices(),
		repo:     repo,
		logger:   logger,
		size:     size,
		expanded: make(map[int]bool),
	}
}

// Load fetches a published or platform checklist, builds the read-only
// editor and fits the view to the flowchart
func (v *View) Load(ctx context.Context, id string, platform bool, opts ...editor.Option) error {
	var (
		c   *Checklist
		err error
	)
	if platform {
		c, err = v.repo.GetPlatformChecklist(ctx, id)
	} else {
		c, err = v.repo.GetChecklist(ctx, id)
	}
	if err != nil {
		v.logger.Error("error fetching checklist details", zap.String("id", id), zap.Error(err))
		v.publish(editor.LevelError, "Failed to load checklist")
		return err
	}

	flow := ParseFlowchart(c.FlowchartJSON, v.logger)
	base := []editor.Option{
		editor.WithInitial(flow.Nodes, flow.Connections),
		editor.WithLogger(v.logger),
	}
	v.checklist = c
	v.expanded = make(map[int]bool)
	v.editor = editor.New(append(base, append(opts, editor.WithReadOnly(true))...)...)

	if len(flow.Nodes) > 0 {
		t := viewport.Identity()
		t.FitToContent(flow.NodeRects(), v.size, viewport.DefaultFitPadding)
		v.editor.Apply(viewport.SetTransformCommand(t))
	}
	return nil
}

// Checklist returns the loaded record, or nil
func (v *View) Checklist() *Checklist { return v.checklist }

// Editor returns the read-only editor, or nil before Load
func (v *View) Editor() *editor.Editor { return v.editor }

// Questions returns the loaded questions
func (v *View) Questions() []Question {
	if v.checklist == nil {
		return nil
	}
	return v.checklist.Questions
}

// ChildQuestions returns the questions reached from q by choosing the option at optionIndex
func (v *View) ChildQuestions(q Question, optionIndex int) []Question {
	ids := q.FollowUps(optionIndex)
	if len(ids) == 0 {
		return nil
	}

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	children := make([]Question, 0, len(ids))
	for _, candidate := range v.Questions() {
		if wanted[candidate.ID] {
			children = append(children, candidate)
		}
	}
	return children
}

// ToggleQuestion flips whether a question's follow-ups are shown
func (v *View) ToggleQuestion(id int) {
	v.expanded[id] = !v.expanded[id]
}

// Expanded reports whether a question's follow-ups are shown
func (v *View) Expanded(id int) bool {
	return v.expanded[id]
}
