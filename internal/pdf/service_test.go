package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	svc, err := NewService(100*1024*1024, dir, nil)
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	assert.Equal(t, int64(100*1024*1024), svc.GetMaxFileSize())

	_, err := NewService(1024, "", nil)
	assert.Error(t, err)
}

func TestValidateConfiguration(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name        string
		maxFileSize int64
		wantError   bool
	}{
		{name: "valid size", maxFileSize: 1024, wantError: false},
		{name: "zero size", maxFileSize: 0, wantError: true},
		{name: "negative size", maxFileSize: -1, wantError: true},
		{name: "over one gigabyte", maxFileSize: 2 * 1024 * 1024 * 1024, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.maxFileSize, tempDir, nil)
			require.NoError(t, err)
			err = svc.ValidateConfiguration()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServiceRejectsPathsOutsideDirectory(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	_, err := svc.PDFDescribeForm(PDFDescribeFormRequest{Path: "/etc/passwd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security validation failed")

	_, err = svc.PDFDetectFormFields(PDFDetectFormFieldsRequest{Path: "/etc/passwd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security validation failed")

	_, err = svc.PDFValidateLayout(PDFValidateLayoutRequest{LayoutPath: "/etc/layout.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security validation failed")
}

func TestPDFFillFormRejectsEmptyBatch(t *testing.T) {
	tempDir := t.TempDir()
	svc := newTestService(t, tempDir)

	input := filepath.Join(tempDir, "form.pdf")
	require.NoError(t, os.WriteFile(input, []byte("%PDF-1.7 stub"), 0o644))

	_, err := svc.PDFFillForm(PDFFillFormRequest{
		Path:       input,
		OutputPath: filepath.Join(tempDir, "out.pdf"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fill instructions given")
}

func TestPDFValidateLayout(t *testing.T) {
	tempDir := t.TempDir()
	svc := newTestService(t, tempDir)

	layoutPath := filepath.Join(tempDir, "layout.json")
	layoutJSON := `{
		"field_entries": [
			{
				"description": "Name",
				"page_num": 1,
				"label_bounds": [10, 10, 60, 24],
				"entry_bounds": [70, 10, 200, 30]
			}
		],
		"page_dimensions": [
			{"page_num": 1, "img_width": 1700, "img_height": 2200}
		]
	}`
	require.NoError(t, os.WriteFile(layoutPath, []byte(layoutJSON), 0o644))

	result, err := svc.PDFValidateLayout(PDFValidateLayoutRequest{LayoutPath: layoutPath})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, "Read 1 field entries", result.Messages[0])
	assert.Equal(t, "SUCCESS: all bounding boxes are valid", result.Messages[1])
}

func TestPDFValidateLayoutFailing(t *testing.T) {
	tempDir := t.TempDir()
	svc := newTestService(t, tempDir)

	layoutPath := filepath.Join(tempDir, "layout.json")
	layoutJSON := `{
		"field_entries": [
			{
				"description": "Name",
				"page_num": 1,
				"label_bounds": [10, 10, 100, 30],
				"entry_bounds": [50, 10, 200, 30]
			}
		],
		"page_dimensions": []
	}`
	require.NoError(t, os.WriteFile(layoutPath, []byte(layoutJSON), 0o644))

	result, err := svc.PDFValidateLayout(PDFValidateLayoutRequest{LayoutPath: layoutPath})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Messages[1], "FAIL:")
}

func TestLayoutPassed(t *testing.T) {
	assert.True(t, layoutPassed([]string{"Read 2 field entries", "SUCCESS: all bounding boxes are valid"}))
	assert.False(t, layoutPassed([]string{"Read 2 field entries", "FAIL: something overlaps"}))
	// A truncated stream never passes, even with no FAIL line visible.
	assert.False(t, layoutPassed([]string{"Read 2 field entries",
		"Aborting remaining checks; fix the bounding boxes and retry"}))
	assert.False(t, layoutPassed(nil))
}

func TestPDFServerInfo(t *testing.T) {
	tempDir := t.TempDir()
	svc := newTestService(t, tempDir)

	result, err := svc.PDFServerInfo(PDFServerInfoRequest{}, "mcp-pdf-forms", "1.0.0", tempDir)
	require.NoError(t, err)
	assert.Equal(t, "mcp-pdf-forms", result.ServerName)
	assert.Equal(t, tempDir, result.DefaultDirectory)

	var names []string
	for _, tool := range result.AvailableTools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"pdf_detect_form_fields",
		"pdf_describe_form",
		"pdf_fill_form",
		"pdf_validate_layout",
		"pdf_apply_overlays",
		"pdf_page_geometry",
		"pdf_server_info",
	}, names)

	assert.Contains(t, result.UsageGuidance, "DETECT THE WORKFLOW")
	assert.Contains(t, result.UsageGuidance, "TEXT OVERLAY WORKFLOW")
}
