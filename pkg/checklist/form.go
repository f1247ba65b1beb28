package checklist

import (
	"context"
	"fmt"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/editor"
	"go.uber.org/zap"
)

// Form edits a platform checklist: its metadata, its question list and its
// flowchart. A form without an ID creates a new checklist on Submit.
type Form struct {
	notices
	repo   Repository
	logger *zap.Logger

	id          string
	Name        string
	Description string
	Questions   []Question
	flow        diagram.Diagram
}

// NewForm creates an empty form with one blank question
func NewForm(repo Repository, logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form{
		notices:   newNotices(),
		repo:      repo,
		logger:    logger,
		Questions: []Question{{}},
		flow:      diagram.New(),
	}
}

// ID returns the checklist being updated, or "" when creating
func (f *Form) ID() string { return f.id }

// Flow returns a copy of the last diagram reported by the editor
func (f *Form) Flow() diagram.Diagram { return f.flow.Clone() }

// Load fetches a checklist for update. Question metadata beyond the text and
// description is not edited by the form and is dropped. A flowchart that
// fails to parse becomes an empty diagram.
func (f *Form) Load(ctx context.Context, id string) error {
	c, err := f.repo.GetPlatformChecklist(ctx, id)
	if err != nil {
		f.logger.Error("failed to fetch checklist", zap.String("id", id), zap.Error(err))
		f.publish(editor.LevelError, "Failed to load checklist")
		return err
	}

	f.id = id
	f.Name = c.Name
	f.Description = c.Description
	f.Questions = make([]Question, len(c.Questions))
	for i, q := range c.Questions {
		f.Questions[i] = Question{Question: q.Question, Description: q.Description}
	}
	f.flow = ParseFlowchart(c.FlowchartJSON, f.logger)
	return nil
}

// NewEditor creates an editor seeded with the form's flowchart whose changes
// flow back into the form
func (f *Form) NewEditor(opts ...editor.Option) *editor.Editor {
	base := []editor.Option{
		editor.WithInitial(f.flow.Nodes, f.flow.Connections),
		editor.WithLogger(f.logger),
	}
	return editor.New(append(base, append(opts, editor.WithOnChange(f.OnFlowChange))...)...)
}

// OnFlowChange receives the editor's diagram after every mutation
func (f *Form) OnFlowChange(nodes []diagram.Node, connections []diagram.Connection) {
	f.flow = diagram.FromParts(nodes, connections)
}

// AddQuestion appends a blank question
func (f *Form) AddQuestion() {
	f.Questions = append(f.Questions, Question{})
}

// RemoveQuestion deletes the question at index
func (f *Form) RemoveQuestion(index int) bool {
	if index < 0 || index >= len(f.Questions) {
		return false
	}
	f.Questions = append(f.Questions[:index], f.Questions[index+1:]...)
	return true
}

// SetQuestion replaces the text of the question at index
func (f *Form) SetQuestion(index int, text string) bool {
	if index < 0 || index >= len(f.Questions) {
		return false
	}
	f.Questions[index].Question = text
	return true
}

// SetQuestionDescription replaces the description of the question at index
func (f *Form) SetQuestionDescription(index int, description string) bool {
	if index < 0 || index >= len(f.Questions) {
		return false
	}
	f.Questions[index].Description = description
	return true
}

// MoveUp swaps the question at index with its predecessor
func (f *Form) MoveUp(index int) bool {
	if index <= 0 || index >= len(f.Questions) {
		return false
	}
	f.Questions[index-1], f.Questions[index] = f.Questions[index], f.Questions[index-1]
	return true
}

// MoveDown swaps the question at index with its successor
func (f *Form) MoveDown(index int) bool {
	if index < 0 || index >= len(f.Questions)-1 {
		return false
	}
	f.Questions[index+1], f.Questions[index] = f.Questions[index], f.Questions[index+1]
	return true
}

// Submit creates or updates the checklist with the current flowchart
func (f *Form) Submit(ctx context.Context) (*Checklist, error) {
	code, err := EncodeFlowchart(f.flow)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flowchart: %w", err)
	}

	req := &Checklist{
		Name:          f.Name,
		Description:   f.Description,
		Questions:     f.Questions,
		FlowchartJSON: code,
	}

	var saved *Checklist
	if f.id != "" {
		saved, err = f.repo.UpdatePlatformChecklist(ctx, f.id, req)
	} else {
		saved, err = f.repo.CreatePlatformChecklist(ctx, req)
	}
	if err != nil {
		f.logger.Error("error saving checklist", zap.String("id", f.id), zap.Error(err))
		f.publish(editor.LevelError, "Failed to save checklist")
		return nil, err
	}

	f.logger.Info("checklist saved", zap.String("id", f.id), zap.Int("nodes", len(f.flow.Nodes)))
	f.publish(editor.LevelSuccess, "Checklist saved")
	return saved, nil
}
