package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines the server's file access to one configured
// directory. Unlike a read-only document server, the form tools also
// write completed documents, so output paths get the same confinement
// plus a writability check on the parent directory.
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a validator rooted at the given directory.
// The directory does not have to exist yet; confinement is skipped
// until it does, so placeholder configurations still start up.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathValidator{configuredDirectory: configuredDirectory}, nil
}

// ConfiguredDirectory returns the directory paths are confined to.
func (v *PathValidator) ConfiguredDirectory() string {
	return v.configuredDirectory
}

// ValidatePath checks that an input path stays within the configured
// directory, after resolving symlinks on both sides.
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if _, err := os.Stat(v.configuredDirectory); os.IsNotExist(err) {
		return nil
	}

	within, err := v.isWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}
	return nil
}

// ValidateOutputPath checks that a path about to be written stays
// within the configured directory and that its parent directory exists.
// The file itself may or may not exist.
func (v *PathValidator) ValidateOutputPath(path string) error {
	if err := v.ValidatePath(path); err != nil {
		return err
	}

	parent := filepath.Dir(path)
	info, err := os.Stat(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", parent)
		}
		return fmt.Errorf("cannot access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output parent is not a directory: %s", parent)
	}
	return nil
}

// ValidateDirectory checks that a directory path is within bounds and,
// if present, actually a directory.
func (v *PathValidator) ValidateDirectory(dirPath string) error {
	if err := v.ValidatePath(dirPath); err != nil {
		return err
	}
	if _, err := os.Stat(v.configuredDirectory); os.IsNotExist(err) {
		return nil
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dirPath)
	}
	return nil
}

// isWithinDirectory reports whether a path is inside the configured
// directory. Both the literal path and its symlink-resolved form have
// to land inside; a symlink pointing out of the directory fails even
// though its own location is inside.
func (v *PathValidator) isWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(v.configuredDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absDir)

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}
	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	return (inside(cleanPath, cleanDir) || inside(cleanPath, realDir)) &&
		(inside(realPath, cleanDir) || inside(realPath, realDir)), nil
}

// inside reports whether path equals dir or sits below it.
func inside(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
