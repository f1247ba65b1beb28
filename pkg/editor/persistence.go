package editor

import (
	"errors"
	"fmt"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/storage"
	"go.uber.org/zap"
)

// LocalStorageKey is the fixed key holding the last locally saved diagram
const LocalStorageKey = "decisionFlowData"

// ExportFilename is the download name of an exported diagram
const ExportFilename = "decision-flowchart.json"

// Serialize encodes the current diagram in the wire format
func (e *Editor) Serialize() ([]byte, error) {
	return diagram.Marshal(e.doc)
}

// SaveLocal writes the diagram under LocalStorageKey
func (e *Editor) SaveLocal() error {
	data, err := e.Serialize()
	if err == nil {
		err = e.store.Set(LocalStorageKey, data)
	}
	if err != nil {
		e.logger.Error("save failed", zap.Error(err))
		e.notify(LevelError, "Save failed: "+err.Error())
		return fmt.Errorf("failed to save diagram: %w", err)
	}

	e.notify(LevelSuccess, "Flowchart saved")
	return nil
}

// LoadLocal replaces the diagram with the locally saved one. A missing save
// is reported as an info notice, not an error.
func (e *Editor) LoadLocal() error {
	if e.readOnly {
		return nil
	}

	data, err := e.store.Get(LocalStorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			e.notify(LevelInfo, "No saved flowchart found")
			return nil
		}
		e.logger.Error("load failed", zap.Error(err))
		e.notify(LevelError, "Load failed: "+err.Error())
		return fmt.Errorf("failed to load diagram: %w", err)
	}

	d, err := diagram.Unmarshal(data)
	if err != nil {
		e.notify(LevelError, "Load failed: "+err.Error())
		return err
	}

	e.replace(d)
	e.notify(LevelSuccess, "Flowchart loaded")
	e.changed()
	return nil
}

// ExportFile returns the download name and contents of the diagram
func (e *Editor) ExportFile() (string, []byte, error) {
	data, err := e.Serialize()
	if err != nil {
		e.notify(LevelError, "Export failed: "+err.Error())
		return "", nil, fmt.Errorf("failed to export diagram: %w", err)
	}

	e.notify(LevelSuccess, "Flowchart exported")
	return ExportFilename, data, nil
}

// ImportFile replaces the whole diagram with file contents and refreshes the
// local copy. On a parse error the current state is kept.
func (e *Editor) ImportFile(data []byte) error {
	if e.readOnly {
		return nil
	}

	d, err := diagram.Unmarshal(data)
	if err != nil {
		e.notify(LevelError, "Import failed: "+err.Error())
		return err
	}

	e.replace(d)

	if saved, err := diagram.Marshal(d); err == nil {
		if err := e.store.Set(LocalStorageKey, saved); err != nil {
			e.logger.Warn("failed to refresh local copy", zap.Error(err))
		}
	}

	e.notify(LevelSuccess, "Flowchart imported")
	e.changed()
	return nil
}

// ResetAll clears the canvas and the local copy after the user confirms
func (e *Editor) ResetAll() bool {
	if e.readOnly {
		return false
	}
	if !e.confirmed("Reset the canvas? All unsaved data will be lost.") {
		return false
	}

	e.replace(diagram.New())
	if err := e.store.Remove(LocalStorageKey); err != nil {
		e.logger.Warn("failed to remove local copy", zap.Error(err))
	}

	e.notify(LevelInfo, "Canvas reset")
	e.changed()
	return true
}
