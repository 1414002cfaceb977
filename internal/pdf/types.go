package pdf

import (
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/forms"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/overlay"
)

// Request Types

// PDFDetectFormFieldsRequest represents a request to detect interactive form fields
type PDFDetectFormFieldsRequest struct {
	Path string `json:"path"`
}

// PDFDescribeFormRequest represents a request to describe a document's form model
type PDFDescribeFormRequest struct {
	Path string `json:"path"`
}

// PDFFillFormRequest represents a request to fill form fields
type PDFFillFormRequest struct {
	Path         string                  `json:"path"`
	OutputPath   string                  `json:"output_path"`
	Instructions []forms.FillInstruction `json:"instructions"`
}

// PDFValidateLayoutRequest represents a request to validate an overlay layout description
type PDFValidateLayoutRequest struct {
	LayoutPath string `json:"layout_path"`
}

// PDFApplyOverlaysRequest represents a request to render text overlays onto a document
type PDFApplyOverlaysRequest struct {
	Path       string `json:"path"`
	LayoutPath string `json:"layout_path"`
	OutputPath string `json:"output_path"`
}

// PDFPageGeometryRequest represents a request for page dimensions
type PDFPageGeometryRequest struct {
	Path string `json:"path"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct {
	// No parameters needed for server info
}

// Response Types

// PDFDetectFormFieldsResult represents the result of workflow detection
type PDFDetectFormFieldsResult struct {
	Path                 string `json:"path"`
	HasInteractiveFields bool   `json:"has_interactive_fields"`
	FieldCount           int    `json:"field_count"`
	HasText              bool   `json:"has_text"`
	Recommendation       string `json:"recommendation"`
}

// PDFDescribeFormResult represents the extracted form model of a document
type PDFDescribeFormResult struct {
	Path         string              `json:"path"`
	Elements     []forms.FormElement `json:"elements"`
	ElementCount int                 `json:"element_count"`
	Warnings     []string            `json:"warnings,omitempty"`
}

// PDFFillFormResult represents the result of a form fill operation
type PDFFillFormResult struct {
	Path        string   `json:"path"`
	OutputPath  string   `json:"output_path,omitempty"`
	Success     bool     `json:"success"`
	FilledCount int      `json:"filled_count"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// PDFValidateLayoutResult represents the diagnostic stream of a layout validation
type PDFValidateLayoutResult struct {
	LayoutPath string   `json:"layout_path"`
	Valid      bool     `json:"valid"`
	Messages   []string `json:"messages"`
}

// PDFApplyOverlaysResult represents the result of an overlay render
type PDFApplyOverlaysResult struct {
	Path         string           `json:"path"`
	OutputPath   string           `json:"output_path,omitempty"`
	Success      bool             `json:"success"`
	Strategy     overlay.Strategy `json:"strategy,omitempty"`
	OverlayCount int              `json:"overlay_count"`
	FontName     string           `json:"font_name,omitempty"`
	Messages     []string         `json:"messages,omitempty"`
}

// PageDimensions represents the extent of one page in PDF units
type PageDimensions struct {
	PageNum int     `json:"page_num"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// PDFPageGeometryResult represents page geometry results
type PDFPageGeometryResult struct {
	Path  string           `json:"path"`
	Pages []PageDimensions `json:"pages"`
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName       string     `json:"server_name"`
	Version          string     `json:"version"`
	DefaultDirectory string     `json:"default_directory"`
	MaxFileSize      int64      `json:"max_file_size"`
	AvailableTools   []ToolInfo `json:"available_tools"`
	UsageGuidance    string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
