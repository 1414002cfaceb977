package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.NotEmpty(t, cfg.PDFDirectory)
	assert.Empty(t, cfg.FontPaths)
	assert.Equal(t, "mcp-pdf-forms", cfg.ServerName)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()

	fontFile := filepath.Join(tempDir, "coverage.ttf")
	require.NoError(t, os.WriteFile(fontFile, []byte("stub"), 0o644))

	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.PDFDirectory = tempDir
		return cfg
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		contains string
	}{
		{
			name:   "valid stdio config",
			mutate: func(*Config) {},
		},
		{
			name: "valid server config",
			mutate: func(c *Config) {
				c.Mode = ModeServer
				c.Port = 9090
			},
		},
		{
			name: "valid with font path",
			mutate: func(c *Config) {
				c.FontPaths = []string{fontFile}
			},
		},
		{
			name:     "invalid mode",
			mutate:   func(c *Config) { c.Mode = "http" },
			contains: "mode must be either",
		},
		{
			name: "invalid server port",
			mutate: func(c *Config) {
				c.Mode = ModeServer
				c.Port = 0
			},
			contains: "port must be between",
		},
		{
			name: "port ignored in stdio mode",
			mutate: func(c *Config) {
				c.Port = 0
			},
		},
		{
			name:     "empty directory",
			mutate:   func(c *Config) { c.PDFDirectory = "" },
			contains: "PDF directory cannot be empty",
		},
		{
			name: "missing font file",
			mutate: func(c *Config) {
				c.FontPaths = []string{filepath.Join(tempDir, "missing.ttf")}
			},
			contains: "cannot access font file",
		},
		{
			name: "font path is a directory",
			mutate: func(c *Config) {
				c.FontPaths = []string{tempDir}
			},
			contains: "font path is a directory",
		},
		{
			name:     "zero max file size",
			mutate:   func(c *Config) { c.MaxFileSize = 0 },
			contains: "maximum file size must be positive",
		},
		{
			name:     "negative max file size",
			mutate:   func(c *Config) { c.MaxFileSize = -1 },
			contains: "maximum file size must be positive",
		},
		{
			name:     "invalid log level",
			mutate:   func(c *Config) { c.LogLevel = "trace" },
			contains: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.contains == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestConfigValidateCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "forms", "inbox")

	cfg := DefaultConfig()
	cfg.PDFDirectory = target
	require.NoError(t, cfg.Validate())

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())

	cfg = &Config{Host: "0.0.0.0", Port: 9090}
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
}

func TestConfigModeHelpers(t *testing.T) {
	stdio := &Config{Mode: ModeStdio}
	assert.True(t, stdio.IsStdioMode())
	assert.False(t, stdio.IsServerMode())

	server := &Config{Mode: ModeServer}
	assert.True(t, server.IsServerMode())
	assert.False(t, server.IsStdioMode())
}

func TestConfigIsDebug(t *testing.T) {
	assert.True(t, (&Config{LogLevel: "debug"}).IsDebug())
	assert.False(t, (&Config{LogLevel: "info"}).IsDebug())
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:         ModeStdio,
		Host:         "127.0.0.1",
		Port:         8080,
		PDFDirectory: "/tmp/forms",
		LogLevel:     "info",
		MaxFileSize:  1024,
	}
	s := cfg.String()
	assert.Contains(t, s, "Mode: stdio")
	assert.Contains(t, s, "PDFDirectory: /tmp/forms")
	assert.Contains(t, s, "MaxFileSize: 1024")
}
