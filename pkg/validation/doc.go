// Package validation guards file paths that are not chosen by the user.
//
// Flowchart downloads are named after the checklist returned by the service,
// so the name is untrusted input. PathValidator confines such names to a base
// directory:
//
//   - Lexical validation rejects absolute paths and ".." components
//   - Symbolic links are resolved before the containment check
//   - Windows reserved device names are rejected on Windows
//
// Usage:
//
//	safePath, err := validation.ValidateSecurePath(cwd, checklist.PNGFilename(name))
//	if err != nil {
//	    return fmt.Errorf("refusing to write download: %w", err)
//	}
package validation
