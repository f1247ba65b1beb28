package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultMaxPathLen bounds the length of a validated name
const DefaultMaxPathLen = 1024

var windowsReserved = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// PathValidator confines relative names to a base directory. It is safe for
// concurrent use.
type PathValidator struct {
	basePath     string
	resolvedBase string
	maxPathLen   int
}

// PathError reports a rejected name
type PathError struct {
	Name     string
	Reason   string
	Resolved string
}

// Error implements the error interface
func (e *PathError) Error() string {
	if e.Resolved != "" {
		return fmt.Sprintf("path validation failed: %s (input: %s, resolved: %s)", e.Reason, e.Name, e.Resolved)
	}
	return fmt.Sprintf("path validation failed: %s (input: %s)", e.Reason, e.Name)
}

// NewPathValidator creates a validator for an existing absolute directory
func NewPathValidator(basePath string) (*PathValidator, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if !filepath.IsAbs(basePath) {
		return nil, fmt.Errorf("base path must be absolute: %s", basePath)
	}

	info, err := os.Stat(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("base path does not exist: %s", basePath)
		}
		return nil, fmt.Errorf("cannot access base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path is not a directory: %s", basePath)
	}

	resolvedBase, err := filepath.EvalSymlinks(basePath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve symbolic links in base path: %w", err)
	}

	return &PathValidator{
		basePath:     basePath,
		resolvedBase: resolvedBase,
		maxPathLen:   DefaultMaxPathLen,
	}, nil
}

// Validate returns the absolute, symlink-resolved location of name inside the
// base directory. The file itself need not exist, but its parent must.
func (v *PathValidator) Validate(name string) (string, error) {
	if name == "" {
		return "", &PathError{Name: name, Reason: "path cannot be empty"}
	}
	if len(name) > v.maxPathLen {
		return "", &PathError{Name: name, Reason: fmt.Sprintf("path length exceeds maximum of %d bytes", v.maxPathLen)}
	}

	// Rejects absolute paths and anything climbing out with ".."
	if !filepath.IsLocal(name) {
		return "", &PathError{Name: name, Reason: "path escapes allowed directory"}
	}

	clean := filepath.Clean(name)
	if runtime.GOOS == "windows" {
		if part, ok := reservedComponent(clean); ok {
			return "", &PathError{Name: name, Reason: "Windows reserved name not allowed: " + part}
		}
	}

	full := filepath.Join(v.basePath, clean)
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		// New files are resolved through their parent directory
		parent, parentErr := filepath.EvalSymlinks(filepath.Dir(full))
		if parentErr != nil {
			return "", &PathError{Name: name, Reason: "cannot resolve path"}
		}
		resolved = filepath.Join(parent, filepath.Base(full))
	}

	rel, err := filepath.Rel(v.resolvedBase, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathError{Name: name, Reason: "resolved path escapes base directory", Resolved: resolved}
	}
	return resolved, nil
}

// reservedComponent returns the first path component that names a Windows device
func reservedComponent(path string) (string, bool) {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		base := strings.ToUpper(part)
		if idx := strings.Index(base, "."); idx != -1 {
			base = base[:idx]
		}
		if windowsReserved[base] {
			return part, true
		}
	}
	return "", false
}

// ValidateSecurePath validates a single name without keeping a validator
func ValidateSecurePath(basePath, name string) (string, error) {
	validator, err := NewPathValidator(basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	return validator.Validate(name)
}
