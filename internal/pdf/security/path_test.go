package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{
			name:      "valid directory",
			dir:       tempDir,
			wantError: false,
		},
		{
			name:      "empty directory",
			dir:       "",
			wantError: true,
		},
		{
			// Placeholder directories are accepted; confinement starts
			// once the directory exists.
			name:      "non-existent directory",
			dir:       "/non/existent/path",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dir, validator.ConfiguredDirectory())
		})
	}
}

func TestPathValidator_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()

	subDir := filepath.Join(tempDir, "subdir")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	validFile := filepath.Join(tempDir, "form.pdf")
	subFile := filepath.Join(subDir, "nested.pdf")
	require.NoError(t, os.WriteFile(validFile, []byte("test"), 0o644))
	require.NoError(t, os.WriteFile(subFile, []byte("test"), 0o644))

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name:      "empty path",
			path:      "",
			wantError: true,
		},
		{
			name:      "file in root",
			path:      validFile,
			wantError: false,
		},
		{
			name:      "file in subdirectory",
			path:      subFile,
			wantError: false,
		},
		{
			name:      "file outside directory",
			path:      "/etc/passwd",
			wantError: true,
		},
		{
			name:      "parent directory traversal",
			path:      filepath.Join(tempDir, "..", "outside.pdf"),
			wantError: true,
		},
		{
			name:      "dot segment within directory",
			path:      filepath.Join(tempDir, ".", "form.pdf"),
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePath(tt.path)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathValidator_ValidatePathSymlinkEscape(t *testing.T) {
	tempDir := t.TempDir()
	outsideDir := t.TempDir()

	outsideFile := filepath.Join(outsideDir, "secret.pdf")
	require.NoError(t, os.WriteFile(outsideFile, []byte("test"), 0o644))

	link := filepath.Join(tempDir, "escape.pdf")
	if err := os.Symlink(outsideFile, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	// The link itself sits inside, but its target does not.
	assert.Error(t, validator.ValidatePath(link))

	insideFile := filepath.Join(tempDir, "target.pdf")
	require.NoError(t, os.WriteFile(insideFile, []byte("test"), 0o644))
	insideLink := filepath.Join(tempDir, "alias.pdf")
	require.NoError(t, os.Symlink(insideFile, insideLink))
	assert.NoError(t, validator.ValidatePath(insideLink))
}

func TestPathValidator_ValidateOutputPath(t *testing.T) {
	tempDir := t.TempDir()

	subDir := filepath.Join(tempDir, "out")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name:      "new file in root",
			path:      filepath.Join(tempDir, "filled.pdf"),
			wantError: false,
		},
		{
			name:      "new file in subdirectory",
			path:      filepath.Join(subDir, "filled.pdf"),
			wantError: false,
		},
		{
			name:      "missing parent directory",
			path:      filepath.Join(tempDir, "missing", "filled.pdf"),
			wantError: true,
		},
		{
			name:      "outside configured directory",
			path:      "/tmp/filled.pdf",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateOutputPath(tt.path)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	tempDir := t.TempDir()

	subDir := filepath.Join(tempDir, "subdir")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	testFile := filepath.Join(tempDir, "form.pdf")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0o644))

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{
			name:      "valid subdirectory",
			path:      subDir,
			wantError: false,
		},
		{
			name:      "file instead of directory",
			path:      testFile,
			wantError: true,
		},
		{
			name:      "non-existent directory",
			path:      filepath.Join(tempDir, "nonexistent"),
			wantError: false,
		},
		{
			name:      "directory outside bounds",
			path:      "/tmp",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateDirectory(tt.path)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
