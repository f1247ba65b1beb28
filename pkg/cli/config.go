package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/flowcanvas/pkg/checklist"
	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/dshills/flowcanvas/pkg/render"
	"github.com/dshills/flowcanvas/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Store backends selectable in config.yaml
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// FileConfig is the contents of config.yaml
type FileConfig struct {
	Version    string         `yaml:"version"`
	APIBaseURL string         `yaml:"api_base_url"`
	Store      string         `yaml:"store"`
	Viewport   ViewportConfig `yaml:"viewport"`
	Export     ExportConfig   `yaml:"export"`
}

// ViewportConfig is the view size used for fitting read-only previews
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ExportConfig holds image export defaults
type ExportConfig struct {
	Scale      float64 `yaml:"scale"`
	Background string  `yaml:"background"`
}

// DefaultFileConfig returns the configuration written on first run
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Version:    "1.0",
		APIBaseURL: "http://localhost:8080",
		Store:      StoreFile,
		Viewport: ViewportConfig{
			Width:  checklist.DefaultViewSize.Width,
			Height: checklist.DefaultViewSize.Height,
		},
		Export: ExportConfig{
			Scale:      render.DefaultPixelRatio,
			Background: render.DefaultTheme().Background,
		},
	}
}

// LoadFileConfig reads config.yaml, filling unset fields with defaults
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultFileConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	switch config.Store {
	case "":
		config.Store = StoreFile
	case StoreFile, StoreSQLite:
	default:
		return nil, fmt.Errorf("unknown store %q in %s (want %s or %s)", config.Store, path, StoreFile, StoreSQLite)
	}
	return config, nil
}

// SaveFileConfig writes config.yaml atomically
func SaveFileConfig(path string, config *FileConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// ViewSize returns the configured viewport size
func (c *FileConfig) ViewSize() geom.Size {
	return geom.Size{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// openLocalStore opens the configured backend for the local working copy.
// The returned func releases it.
func openLocalStore() (storage.KeyValueStore, func(), error) {
	dir := GetConfigDir()

	switch settings().Store {
	case StoreSQLite:
		store, err := storage.NewSQLiteStoreWithPath(filepath.Join(dir, "flowcanvas.db"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store, err := storage.NewFileStoreWithPath(dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// newChecklistClient builds the REST client from config.yaml and the keyring token
func newChecklistClient() (*checklist.Client, error) {
	return checklist.NewClient(checklist.ClientConfig{
		BaseURL:     settings().APIBaseURL,
		Credentials: storage.NewKeyringStore(),
		Logger:      logger(),
	})
}
